// Package cache provides the cache-aside layer the lending core reads
// through and invalidates on write.
//
// # Overview
//
// The package exports three things:
//
//   - Store: a byte-oriented key/value contract (Get/Set/Delete) with a
//     uniform per-store TTL
//   - the key-space builders (KeyBooks, KeyBook, ...) that define every
//     cache key this module ever uses
//   - GetOrFetch: a generic, strict read-through helper plus the
//     Marshal/Unmarshal codec used for all cached snapshots
//
// Values are opaque serialized blobs to the Store; the lending core
// owns (de)serialization via Marshal/Unmarshal (msgpack).
//
// # Key space
//
// The invalidation contract depends on exact key strings, so keys are
// never assembled ad hoc. Use the builders:
//
//	cache.KeyBook(id)           // "book:{id}"
//	cache.KeyStudentBooks(id)   // "student:{id}:books"
//
// # Read-through
//
//	book, err := cache.GetOrFetch(ctx, store, cache.KeyBook(id),
//		func(ctx context.Context) (*catalog.Book, error) {
//			return books.GetByID(ctx, id)
//		})
//
// GetOrFetch propagates cache failures; the lending core wraps it with
// its own absorption policy (cache errors are logged and treated as
// misses, never surfaced to callers). A cache hit is always preferred
// over the source of truth: staleness up to the TTL is an accepted
// trade-off, not a bug.
//
// # Invalidation
//
// Mutations never update an entry in place; they Delete the affected
// keys so the next read repopulates from the store. The set of keys a
// given mutation must delete is owned by the lending core.
//
// # Configuration
//
// Config mirrors the internal sturdyc adapter configuration and ships
// defaults via DefaultConfig, including the 3600 second TTL every entry
// shares. NewStore builds the default sturdyc-backed implementation.
package cache
