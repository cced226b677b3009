// Package lending implements the domain core of the catalog: entity
// CRUD, the borrow/return state machine, and teacher/student
// supervision links, all composed with the cache-aside layer.
//
// # Consistency model
//
// The persistent store is the source of truth; the cache holds derived
// snapshots with a uniform TTL. Reads go through the cache and prefer a
// hit even when the store has since changed. Mutations write to the
// store and then delete the affected cache keys before returning, so an
// invalidated key never serves a pre-mutation value.
//
// The invalidation sets are deliberately narrow. A borrow or return
// deletes only "student:{id}:books" and "book:{id}"; the "books"
// collection and "student:{id}" entries keep serving until their TTL.
// List views may therefore show stale availability while the item view
// is fresh: read-your-list-stale, read-your-item-fresh.
//
// # Borrow/return state machine
//
// Per (student, book) pair the states are NotBorrowed -> Borrowed ->
// NotBorrowed, with no persisted intermediate. The availability check
// and decrement run as one atomic conditional update at the store
// (store.Books.AdjustAvailable), which closes the race where two
// concurrent borrows both observe a last copy; the loser reports
// PreconditionFailed. The student's relationship list is updated after
// the decrement and compensated when that write fails, so the book
// invariant 0 <= availableQuantity <= quantity holds at rest under any
// interleaving.
//
// # Cache failures
//
// The cache is an optimization, never a dependency: any cache error is
// absorbed at this boundary — treated as a miss on read, a no-op on
// populate and invalidation — logged, and kept out of the caller's
// result.
//
// # Policy options
//
// A permissive return path would increment availability on any return,
// without checking possession or capping at quantity. Both safeguards
// are explicit Options here, enabled by DefaultOptions and
// independently testable; disabling both yields the permissive
// behavior.
package lending
