package lending

import (
	"context"

	"github.com/goliatone/go-lending-catalog/cache"
	"github.com/goliatone/go-lending-catalog/catalog"
)

// Borrow lends one copy of the book to the student.
//
// The availability change is a single atomic conditional update at the
// store, so two concurrent borrows of a last copy produce exactly one
// success; the student's relationship list is written afterwards and
// compensated if that write fails. Invalidation covers
// "student:{id}:books" and "book:{id}" only: the "books" and
// "student:{id}" entries intentionally keep serving until their TTL
// (read-your-list-stale, read-your-item-fresh).
func (s *Service) Borrow(ctx context.Context, studentID, bookID string) (*catalog.Student, error) {
	student, err := s.students.GetByID(ctx, studentID)
	if err != nil {
		return nil, err
	}
	book, err := s.books.GetByID(ctx, bookID)
	if err != nil {
		return nil, err
	}

	if book.AvailableQuantity <= 0 {
		return nil, catalog.Unavailable(bookID)
	}

	// Check-and-decrement happens inside the store; observing a copy
	// above does not reserve it. Losing the race here reports
	// PreconditionFailed.
	if _, err := s.books.AdjustAvailable(ctx, bookID, -1, false); err != nil {
		return nil, err
	}

	student.Books = append(student.Books, bookID)
	updated, err := s.students.Update(ctx, studentID, student)
	if err != nil {
		// Give the copy back so the book invariant holds even though
		// the loan was never recorded.
		if _, cerr := s.books.AdjustAvailable(ctx, bookID, 1, false); cerr != nil {
			s.log.ErrorContext(ctx, "borrow compensation failed, availability undercounted",
				"book", bookID, "error", cerr)
		}
		return nil, err
	}

	s.invalidate(ctx, cache.KeyStudentBooks(studentID), cache.KeyBook(bookID))
	return updated, nil
}

// Return hands one copy of the book back.
//
// With Options.RequirePossession the student must currently hold the
// book; otherwise the removal is a no-op and the availability increment
// still happens. With
// Options.ClampToQuantity the increment is guarded so availability
// never exceeds Quantity; a guard failure is a silent cap, since it can
// only arise after an explicit book update already reset availability.
func (s *Service) Return(ctx context.Context, studentID, bookID string) (*catalog.Student, error) {
	student, err := s.students.GetByID(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if _, err := s.books.GetByID(ctx, bookID); err != nil {
		return nil, err
	}

	books, removed := student.Books.RemoveOne(bookID)
	if s.opts.RequirePossession && !removed {
		return nil, catalog.Conflict("student", studentID, "student does not hold this book")
	}

	student.Books = books
	updated, err := s.students.Update(ctx, studentID, student)
	if err != nil {
		return nil, err
	}

	if _, err := s.books.AdjustAvailable(ctx, bookID, 1, s.opts.ClampToQuantity); err != nil {
		if catalog.KindOf(err) == catalog.KindPreconditionFailed {
			s.log.WarnContext(ctx, "return capped: availability already at quantity", "book", bookID)
		} else {
			return nil, err
		}
	}

	s.invalidate(ctx, cache.KeyStudentBooks(studentID), cache.KeyBook(bookID))
	return updated, nil
}
