package lending

import (
	"context"

	"github.com/goliatone/go-lending-catalog/cache"
	"github.com/goliatone/go-lending-catalog/catalog"
)

// ListTeachers returns every teacher, read through the "teachers"
// cache entry.
func (s *Service) ListTeachers(ctx context.Context) ([]*catalog.Teacher, error) {
	return readThrough(ctx, s, cache.KeyTeachers(), func(ctx context.Context) ([]*catalog.Teacher, error) {
		return s.teachers.List(ctx)
	})
}

// CreateTeacher validates and persists a new teacher.
func (s *Service) CreateTeacher(ctx context.Context, teacher *catalog.Teacher) (*catalog.Teacher, error) {
	if err := teacher.Validate(); err != nil {
		return nil, err
	}

	created, err := s.teachers.Insert(ctx, teacher.Clone())
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, cache.KeyTeachers())
	return created, nil
}

// TeacherStudents returns the students a teacher supervises, read
// through the "teacher:{id}:students" projection. Identifiers that no
// longer resolve are skipped.
func (s *Service) TeacherStudents(ctx context.Context, teacherID string) ([]*catalog.Student, error) {
	return readThrough(ctx, s, cache.KeyTeacherStudents(teacherID), func(ctx context.Context) ([]*catalog.Student, error) {
		teacher, err := s.teachers.GetByID(ctx, teacherID)
		if err != nil {
			return nil, err
		}

		students := make([]*catalog.Student, 0, len(teacher.Students))
		for _, studentID := range teacher.Students {
			student, err := s.students.GetByID(ctx, studentID)
			if err != nil {
				if catalog.IsNotFound(err) {
					s.log.WarnContext(ctx, "supervised student no longer exists, skipping",
						"teacher", teacherID, "student", studentID)
					continue
				}
				return nil, err
			}
			students = append(students, student)
		}
		return students, nil
	})
}

// AddStudentToTeacher links a student to a teacher's supervision list.
// Both must exist. Adding an already-linked student is idempotent: no
// duplicate, no error, and since nothing changed, no invalidation.
func (s *Service) AddStudentToTeacher(ctx context.Context, teacherID, studentID string) (*catalog.Teacher, error) {
	teacher, err := s.teachers.GetByID(ctx, teacherID)
	if err != nil {
		return nil, err
	}
	if _, err := s.students.GetByID(ctx, studentID); err != nil {
		return nil, err
	}

	if teacher.Students.Contains(studentID) {
		return teacher, nil
	}

	teacher.Students = append(teacher.Students, studentID)
	updated, err := s.teachers.Update(ctx, teacherID, teacher)
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, cache.KeyTeacherStudents(teacherID), cache.KeyTeachers())
	return updated, nil
}

// RemoveStudentFromTeacher unlinks a student. Removing an absent pair
// is a no-op, not an error; the teacher itself must exist.
func (s *Service) RemoveStudentFromTeacher(ctx context.Context, teacherID, studentID string) (*catalog.Teacher, error) {
	teacher, err := s.teachers.GetByID(ctx, teacherID)
	if err != nil {
		return nil, err
	}

	students, removed := teacher.Students.RemoveOne(studentID)
	if !removed {
		return teacher, nil
	}

	teacher.Students = students
	updated, err := s.teachers.Update(ctx, teacherID, teacher)
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, cache.KeyTeacherStudents(teacherID), cache.KeyTeachers())
	return updated, nil
}
