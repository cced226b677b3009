package lending

import (
	"context"

	"github.com/goliatone/go-lending-catalog/cache"
	"github.com/goliatone/go-lending-catalog/catalog"
)

// ListStudents returns every student, read through the "students"
// cache entry.
func (s *Service) ListStudents(ctx context.Context) ([]*catalog.Student, error) {
	return readThrough(ctx, s, cache.KeyStudents(), func(ctx context.Context) ([]*catalog.Student, error) {
		return s.students.List(ctx)
	})
}

// GetStudent returns the student with the given id, read through the
// "student:{id}" cache entry.
func (s *Service) GetStudent(ctx context.Context, id string) (*catalog.Student, error) {
	return readThrough(ctx, s, cache.KeyStudent(id), func(ctx context.Context) (*catalog.Student, error) {
		return s.students.GetByID(ctx, id)
	})
}

// CreateStudent validates and persists a new student.
func (s *Service) CreateStudent(ctx context.Context, student *catalog.Student) (*catalog.Student, error) {
	if err := student.Validate(); err != nil {
		return nil, err
	}

	created, err := s.students.Insert(ctx, student.Clone())
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, cache.KeyStudents())
	return created, nil
}

// StudentBooks returns the books the student currently holds, read
// through the "student:{id}:books" projection. A book id that no
// longer resolves (the book was deleted while on loan) is skipped
// rather than failing the whole read.
func (s *Service) StudentBooks(ctx context.Context, studentID string) ([]*catalog.Book, error) {
	return readThrough(ctx, s, cache.KeyStudentBooks(studentID), func(ctx context.Context) ([]*catalog.Book, error) {
		student, err := s.students.GetByID(ctx, studentID)
		if err != nil {
			return nil, err
		}

		books := make([]*catalog.Book, 0, len(student.Books))
		for _, bookID := range student.Books {
			book, err := s.books.GetByID(ctx, bookID)
			if err != nil {
				if catalog.IsNotFound(err) {
					s.log.WarnContext(ctx, "loaned book no longer exists, skipping",
						"student", studentID, "book", bookID)
					continue
				}
				return nil, err
			}
			books = append(books, book)
		}
		return books, nil
	})
}
