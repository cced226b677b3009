// Package memstore provides the in-memory persistent store backend.
// It keeps one concurrent map per record kind, hands out defensive
// copies on every read and write, and serializes writes to the same
// record through the map's per-key compute primitive, which is what
// makes the conditional availability update atomic.
package memstore

import (
	"context"
	"sort"

	"github.com/goliatone/go-lending-catalog/catalog"
	"github.com/goliatone/go-lending-catalog/store"
	"github.com/puzpuzpuz/xsync/v3"
)

// record ties the store contract to the clone support the catalog types
// provide, so the map never leaks aliased state to callers.
type record[T any] interface {
	store.Record
	Clone() T
}

// Collection is an in-memory repository for one record kind.
type Collection[T record[T]] struct {
	entity    string
	records   *xsync.MapOf[string, T]
	unique    *xsync.MapOf[string, string]
	uniqueKey func(T) string
}

// NewCollection builds an empty collection. uniqueKey, when non-nil,
// extracts the value (for example an email) that Insert and Update
// enforce uniqueness on; records yielding an empty key are exempt.
func NewCollection[T record[T]](entity string, uniqueKey func(T) string) *Collection[T] {
	return &Collection[T]{
		entity:    entity,
		records:   xsync.NewMapOf[string, T](),
		unique:    xsync.NewMapOf[string, string](),
		uniqueKey: uniqueKey,
	}
}

// List returns every record, ordered by id for deterministic reads.
func (c *Collection[T]) List(ctx context.Context) ([]T, error) {
	var out []T
	c.records.Range(func(_ string, rec T) bool {
		out = append(out, rec.Clone())
		return true
	})
	sort.Slice(out, func(i, j int) bool { return out[i].GetID() < out[j].GetID() })
	return out, nil
}

// GetByID returns a copy of the record with the given id.
func (c *Collection[T]) GetByID(ctx context.Context, id string) (T, error) {
	rec, ok := c.records.Load(id)
	if !ok {
		var zero T
		return zero, catalog.NotFound(c.entity, id)
	}
	return rec.Clone(), nil
}

// Insert persists a new record, assigning an id when absent.
func (c *Collection[T]) Insert(ctx context.Context, rec T) (T, error) {
	var zero T

	stored := rec.Clone()
	if stored.GetID() == "" {
		stored.SetID(catalog.NewID())
	}

	if err := c.claimUnique(stored); err != nil {
		return zero, err
	}

	if _, loaded := c.records.LoadOrStore(stored.GetID(), stored); loaded {
		c.releaseUnique(stored)
		return zero, catalog.Conflict(c.entity, stored.GetID(), c.entity+" id already exists")
	}
	return stored.Clone(), nil
}

// Update replaces the record with the given id.
func (c *Collection[T]) Update(ctx context.Context, id string, rec T) (T, error) {
	var zero T

	stored := rec.Clone()
	stored.SetID(id)

	prev, ok := c.records.Load(id)
	if !ok {
		return zero, catalog.NotFound(c.entity, id)
	}

	if c.uniqueKey != nil && c.uniqueKey(stored) != c.uniqueKey(prev) {
		if err := c.claimUnique(stored); err != nil {
			return zero, err
		}
		c.releaseUnique(prev)
	}

	c.records.Store(id, stored)
	return stored.Clone(), nil
}

// Delete removes the record with the given id.
func (c *Collection[T]) Delete(ctx context.Context, id string) error {
	rec, ok := c.records.LoadAndDelete(id)
	if !ok {
		return catalog.NotFound(c.entity, id)
	}
	c.releaseUnique(rec)
	return nil
}

func (c *Collection[T]) claimUnique(rec T) error {
	if c.uniqueKey == nil {
		return nil
	}
	key := c.uniqueKey(rec)
	if key == "" {
		return nil
	}
	if owner, loaded := c.unique.LoadOrStore(key, rec.GetID()); loaded && owner != rec.GetID() {
		return catalog.Conflict(c.entity, rec.GetID(), c.entity+" email already in use")
	}
	return nil
}

func (c *Collection[T]) releaseUnique(rec T) {
	if c.uniqueKey == nil {
		return
	}
	if key := c.uniqueKey(rec); key != "" {
		c.unique.Delete(key)
	}
}

// Books is the in-memory book repository, including the atomic
// conditional availability update.
type Books struct {
	*Collection[*catalog.Book]
}

// NewBooks builds an empty book repository.
func NewBooks() *Books {
	return &Books{Collection: NewCollection[*catalog.Book]("book", nil)}
}

// AdjustAvailable implements store.Books. The whole check-and-apply
// runs inside the map's per-key compute, so two concurrent borrows of
// a last copy can never both pass the guard.
func (b *Books) AdjustAvailable(ctx context.Context, id string, delta int, clamp bool) (*catalog.Book, error) {
	var (
		updated *catalog.Book
		guarded bool
	)

	_, ok := b.records.Compute(id, func(old *catalog.Book, loaded bool) (*catalog.Book, bool) {
		if !loaded {
			return old, true
		}
		next := old.AvailableQuantity + delta
		if next < 0 || (clamp && next > old.Quantity) {
			guarded = true
			return old, false
		}
		cp := old.Clone()
		cp.AvailableQuantity = next
		updated = cp
		return cp, false
	})

	switch {
	case !ok:
		return nil, catalog.NotFound("book", id)
	case guarded:
		return nil, catalog.PreconditionFailed("book", id, "availability change lost to a concurrent update")
	default:
		return updated.Clone(), nil
	}
}

// NewStudents builds an empty student repository with the unique-email
// constraint.
func NewStudents() store.Students {
	return NewCollection[*catalog.Student]("student", (*catalog.Student).UniqueKey)
}

// NewTeachers builds an empty teacher repository with the unique-email
// constraint.
func NewTeachers() store.Teachers {
	return NewCollection[*catalog.Teacher]("teacher", (*catalog.Teacher).UniqueKey)
}

var _ store.Books = (*Books)(nil)
