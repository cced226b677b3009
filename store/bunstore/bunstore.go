// Package bunstore provides the durable persistent store backend on
// bun over SQLite. Conditional availability updates are expressed as
// guarded UPDATE statements, so the check-and-apply is atomic at the
// database and the lending invariant survives concurrent borrows.
package bunstore

import (
	"context"
	"database/sql"
	"errors"

	"github.com/goliatone/go-lending-catalog/catalog"
	"github.com/goliatone/go-lending-catalog/store"
	sqlite3 "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
)

// Open opens (or creates) the SQLite database at dsn and wraps it in a
// bun DB. Use ":memory:" or "file::memory:?cache=shared" for tests.
func Open(dsn string) (*bun.DB, error) {
	sqldb, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	// SQLite serializes writers; a single connection avoids
	// SQLITE_BUSY on concurrent guarded updates.
	sqldb.SetMaxOpenConns(1)
	return bun.NewDB(sqldb, sqlitedialect.New()), nil
}

// CreateSchema creates the catalog tables when they do not exist.
func CreateSchema(ctx context.Context, db *bun.DB) error {
	models := []any{
		(*catalog.Book)(nil),
		(*catalog.Student)(nil),
		(*catalog.Teacher)(nil),
	}
	for _, model := range models {
		if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Collection is a bun-backed repository for one record kind.
type Collection[T store.Record] struct {
	entity    string
	db        *bun.DB
	newRecord func() T
}

// NewCollection builds a repository over db. newRecord allocates an
// empty record for single-row scans.
func NewCollection[T store.Record](entity string, db *bun.DB, newRecord func() T) *Collection[T] {
	return &Collection[T]{entity: entity, db: db, newRecord: newRecord}
}

// List returns every record of the kind, ordered by id.
func (c *Collection[T]) List(ctx context.Context) ([]T, error) {
	var recs []T
	if err := c.db.NewSelect().Model(&recs).Order("id ASC").Scan(ctx); err != nil {
		return nil, catalog.Upstream(c.entity, err)
	}
	return recs, nil
}

// GetByID returns the record with the given id.
func (c *Collection[T]) GetByID(ctx context.Context, id string) (T, error) {
	rec := c.newRecord()
	err := c.db.NewSelect().Model(rec).Where("id = ?", id).Scan(ctx)
	if err != nil {
		var zero T
		if errors.Is(err, sql.ErrNoRows) {
			return zero, catalog.NotFound(c.entity, id)
		}
		return zero, catalog.Upstream(c.entity, err)
	}
	return rec, nil
}

// Insert persists a new record, assigning an id when absent.
func (c *Collection[T]) Insert(ctx context.Context, rec T) (T, error) {
	if rec.GetID() == "" {
		rec.SetID(catalog.NewID())
	}
	if _, err := c.db.NewInsert().Model(rec).Exec(ctx); err != nil {
		var zero T
		if isUniqueViolation(err) {
			return zero, catalog.Conflict(c.entity, rec.GetID(), c.entity+" email already in use")
		}
		return zero, catalog.Upstream(c.entity, err)
	}
	return rec, nil
}

// Update replaces the record with the given id.
func (c *Collection[T]) Update(ctx context.Context, id string, rec T) (T, error) {
	var zero T
	rec.SetID(id)

	res, err := c.db.NewUpdate().Model(rec).WherePK().Exec(ctx)
	if err != nil {
		if isUniqueViolation(err) {
			return zero, catalog.Conflict(c.entity, id, c.entity+" email already in use")
		}
		return zero, catalog.Upstream(c.entity, err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return zero, catalog.NotFound(c.entity, id)
	}
	return rec, nil
}

// Delete removes the record with the given id.
func (c *Collection[T]) Delete(ctx context.Context, id string) error {
	res, err := c.db.NewDelete().Model(c.newRecord()).Where("id = ?", id).Exec(ctx)
	if err != nil {
		return catalog.Upstream(c.entity, err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return catalog.NotFound(c.entity, id)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var serr sqlite3.Error
	return errors.As(err, &serr) && serr.ExtendedCode == sqlite3.ErrConstraintUnique
}

// Books is the bun-backed book repository, including the atomic
// conditional availability update.
type Books struct {
	*Collection[*catalog.Book]
}

// NewBooks builds the book repository over db.
func NewBooks(db *bun.DB) *Books {
	return &Books{Collection: NewCollection("book", db, func() *catalog.Book { return new(catalog.Book) })}
}

// AdjustAvailable implements store.Books with a guarded UPDATE: the
// row changes only while the adjusted availability stays within
// bounds, and the guard evaluates inside the statement.
func (b *Books) AdjustAvailable(ctx context.Context, id string, delta int, clamp bool) (*catalog.Book, error) {
	q := b.db.NewUpdate().
		Model((*catalog.Book)(nil)).
		Set("available_quantity = available_quantity + ?", delta).
		Where("id = ?", id).
		Where("available_quantity + ? >= 0", delta)
	if clamp {
		q = q.Where("available_quantity + ? <= quantity", delta)
	}

	res, err := q.Exec(ctx)
	if err != nil {
		return nil, catalog.Upstream("book", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		// Zero rows is either a missing book or a failed guard.
		if _, err := b.GetByID(ctx, id); err != nil {
			return nil, err
		}
		return nil, catalog.PreconditionFailed("book", id, "availability change lost to a concurrent update")
	}
	return b.GetByID(ctx, id)
}

// NewStudents builds the student repository over db.
func NewStudents(db *bun.DB) store.Students {
	return NewCollection("student", db, func() *catalog.Student { return new(catalog.Student) })
}

// NewTeachers builds the teacher repository over db.
func NewTeachers(db *bun.DB) store.Teachers {
	return NewCollection("teacher", db, func() *catalog.Teacher { return new(catalog.Teacher) })
}

var _ store.Books = (*Books)(nil)
