// Package di wires the cache, stores, and lending service together.
package di

import (
	"context"
	"log/slog"

	"github.com/goliatone/go-lending-catalog/cache"
	"github.com/goliatone/go-lending-catalog/lending"
	"github.com/goliatone/go-lending-catalog/store"
	"github.com/goliatone/go-lending-catalog/store/bunstore"
	"github.com/goliatone/go-lending-catalog/store/memstore"
	"github.com/uptrace/bun"
)

// Container provides dependency injection for the lending catalog. It
// manages singleton instances of the cache store and repositories and
// exposes the assembled lending service.
type Container struct {
	cacheStore cache.Store
	books      store.Books
	students   store.Students
	teachers   store.Teachers
	service    *lending.Service
	config     cache.Config
	db         *bun.DB
}

// NewMemory creates a container backed by the in-memory store. This is
// the configuration tests and embedded uses run with.
func NewMemory(cfg cache.Config, opts lending.Options, log *slog.Logger) (*Container, error) {
	cacheStore, err := cache.NewStore(cfg)
	if err != nil {
		return nil, err
	}

	c := &Container{
		cacheStore: cacheStore,
		books:      memstore.NewBooks(),
		students:   memstore.NewStudents(),
		teachers:   memstore.NewTeachers(),
		config:     cfg,
	}
	c.service = lending.New(c.books, c.students, c.teachers, cacheStore).
		WithOptions(opts).
		WithLogger(log)
	return c, nil
}

// NewSQLite creates a container backed by the SQLite store at dsn,
// creating the schema when needed.
func NewSQLite(ctx context.Context, dsn string, cfg cache.Config, opts lending.Options, log *slog.Logger) (*Container, error) {
	cacheStore, err := cache.NewStore(cfg)
	if err != nil {
		return nil, err
	}

	db, err := bunstore.Open(dsn)
	if err != nil {
		return nil, err
	}
	if err := bunstore.CreateSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	c := &Container{
		cacheStore: cacheStore,
		books:      bunstore.NewBooks(db),
		students:   bunstore.NewStudents(db),
		teachers:   bunstore.NewTeachers(db),
		config:     cfg,
		db:         db,
	}
	c.service = lending.New(c.books, c.students, c.teachers, cacheStore).
		WithOptions(opts).
		WithLogger(log)
	return c, nil
}

// NewMemoryWithDefaults is a convenience constructor using
// cache.DefaultConfig and lending.DefaultOptions.
func NewMemoryWithDefaults() (*Container, error) {
	return NewMemory(cache.DefaultConfig(), lending.DefaultOptions(), nil)
}

// Service returns the assembled lending service.
func (c *Container) Service() *lending.Service { return c.service }

// CacheStore returns the singleton cache store instance.
func (c *Container) CacheStore() cache.Store { return c.cacheStore }

// Books returns the book repository.
func (c *Container) Books() store.Books { return c.books }

// Students returns the student repository.
func (c *Container) Students() store.Students { return c.students }

// Teachers returns the teacher repository.
func (c *Container) Teachers() store.Teachers { return c.teachers }

// Config returns a copy of the cache configuration used by this
// container.
func (c *Container) Config() cache.Config { return c.config }

// Close releases the database handle when one is open.
func (c *Container) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}
