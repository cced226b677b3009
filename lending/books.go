package lending

import (
	"context"

	"github.com/goliatone/go-lending-catalog/cache"
	"github.com/goliatone/go-lending-catalog/catalog"
)

// ListBooks returns every book, served from the "books" cache entry
// when present. The list may lag behind borrow/return activity until
// its TTL expires; see Borrow for why.
func (s *Service) ListBooks(ctx context.Context) ([]*catalog.Book, error) {
	return readThrough(ctx, s, cache.KeyBooks(), func(ctx context.Context) ([]*catalog.Book, error) {
		return s.books.List(ctx)
	})
}

// GetBook returns the book with the given id, read through the
// "book:{id}" cache entry.
func (s *Service) GetBook(ctx context.Context, id string) (*catalog.Book, error) {
	return readThrough(ctx, s, cache.KeyBook(id), func(ctx context.Context) (*catalog.Book, error) {
		return s.books.GetByID(ctx, id)
	})
}

// CreateBook validates and persists a new book. Every copy starts
// available: availableQuantity = quantity.
func (s *Service) CreateBook(ctx context.Context, book *catalog.Book) (*catalog.Book, error) {
	if err := book.Validate(); err != nil {
		return nil, err
	}

	rec := book.Clone()
	rec.AvailableQuantity = rec.Quantity

	created, err := s.books.Insert(ctx, rec)
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, cache.KeyBooks(), cache.KeyBook(created.ID))
	return created, nil
}

// UpdateBook replaces the book's fields. The update resets
// availableQuantity to the new quantity, discarding in-flight loans.
func (s *Service) UpdateBook(ctx context.Context, id string, book *catalog.Book) (*catalog.Book, error) {
	if err := book.Validate(); err != nil {
		return nil, err
	}

	rec := book.Clone()
	rec.AvailableQuantity = rec.Quantity

	updated, err := s.books.Update(ctx, id, rec)
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, cache.KeyBooks(), cache.KeyBook(id))
	return updated, nil
}

// DeleteBook removes the book. Outstanding loans are not checked; a
// student list may keep referencing the deleted id, and StudentBooks
// skips unresolvable references.
func (s *Service) DeleteBook(ctx context.Context, id string) error {
	if err := s.books.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, cache.KeyBooks(), cache.KeyBook(id))
	return nil
}
