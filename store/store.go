// Package store defines the persistent store adapter contracts the
// lending core composes. The store is the single source of truth;
// implementations must provide read-after-write consistency for a
// single key and serialize concurrent writes to the same record.
package store

import (
	"context"

	"github.com/goliatone/go-lending-catalog/catalog"
)

// Record is the minimal shape a persisted entity exposes.
type Record interface {
	GetID() string
	SetID(id string)
}

// Repository is the durable CRUD contract, generic over the record
// kind. Misses report catalog.KindNotFound; unique-constraint
// violations on insert report catalog.KindConflict; unexpected backend
// failures report catalog.KindUpstream.
type Repository[T Record] interface {
	// List returns every record of the kind.
	List(ctx context.Context) ([]T, error)
	// GetByID returns the record with the given id.
	GetByID(ctx context.Context, id string) (T, error)
	// Insert persists a new record, assigning an id when the record
	// carries none, and returns the stored form.
	Insert(ctx context.Context, rec T) (T, error)
	// Update replaces the record with the given id and returns the
	// stored form.
	Update(ctx context.Context, id string, rec T) (T, error)
	// Delete removes the record with the given id.
	Delete(ctx context.Context, id string) error
}

// Books extends the generic repository with the atomic conditional
// update the borrow/return state machine requires. Availability checks
// expressed as separate read-then-write steps race under concurrency;
// AdjustAvailable is the single-step alternative.
type Books interface {
	Repository[*catalog.Book]

	// AdjustAvailable atomically applies delta to the book's
	// AvailableQuantity, but only while the result stays >= 0 and,
	// when clamp is set, <= Quantity. A failed guard reports
	// catalog.KindPreconditionFailed; a missing book reports
	// catalog.KindNotFound. On success the updated book is returned.
	AdjustAvailable(ctx context.Context, id string, delta int, clamp bool) (*catalog.Book, error)
}

// Students is the student repository.
type Students interface {
	Repository[*catalog.Student]
}

// Teachers is the teacher repository.
type Teachers interface {
	Repository[*catalog.Teacher]
}
