package httpapi

import (
	"net/http"

	"github.com/goliatone/go-lending-catalog/catalog"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"
)

type bookPayload struct {
	Title         string `json:"title"`
	Author        string `json:"author"`
	ISBN          string `json:"isbn"`
	PublishedYear int    `json:"publishedYear"`
	Quantity      int    `json:"quantity"`
}

func (p bookPayload) toBook() *catalog.Book {
	return &catalog.Book{
		Title:         p.Title,
		Author:        p.Author,
		ISBN:          p.ISBN,
		PublishedYear: p.PublishedYear,
		Quantity:      p.Quantity,
	}
}

func (s *Server) listBooks(c echo.Context) error {
	books, err := s.svc.ListBooks(c.Request().Context())
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(http.StatusOK, books)
}

func (s *Server) getBook(c echo.Context) error {
	book, err := s.svc.GetBook(c.Request().Context(), c.Param("id"))
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(http.StatusOK, book)
}

func (s *Server) createBook(c echo.Context) error {
	var p bookPayload
	if err := c.Bind(&p); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Message: "malformed book payload"})
	}
	book, err := s.svc.CreateBook(c.Request().Context(), p.toBook())
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(http.StatusCreated, book)
}

func (s *Server) updateBook(c echo.Context) error {
	var p bookPayload
	if err := c.Bind(&p); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Message: "malformed book payload"})
	}
	book, err := s.svc.UpdateBook(c.Request().Context(), c.Param("id"), p.toBook())
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(http.StatusOK, book)
}

func (s *Server) deleteBook(c echo.Context) error {
	if err := s.svc.DeleteBook(c.Request().Context(), c.Param("id")); err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Book deleted successfully"})
}

type studentPayload struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) listStudents(c echo.Context) error {
	students, err := s.svc.ListStudents(c.Request().Context())
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(http.StatusOK, students)
}

func (s *Server) getStudent(c echo.Context) error {
	student, err := s.svc.GetStudent(c.Request().Context(), c.Param("id"))
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(http.StatusOK, student)
}

func (s *Server) studentBooks(c echo.Context) error {
	books, err := s.svc.StudentBooks(c.Request().Context(), c.Param("id"))
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(http.StatusOK, books)
}

func (s *Server) createStudent(c echo.Context) error {
	var p studentPayload
	if err := c.Bind(&p); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Message: "malformed student payload"})
	}
	hash, err := hashPassword(p.Password)
	if err != nil {
		return s.respondError(c, err)
	}
	student, err := s.svc.CreateStudent(c.Request().Context(), &catalog.Student{
		Name:     p.Name,
		Email:    p.Email,
		Password: hash,
	})
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(http.StatusCreated, student)
}

func (s *Server) borrow(c echo.Context) error {
	student, err := s.svc.Borrow(c.Request().Context(), c.Param("id"), c.Param("bookId"))
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(http.StatusOK, student)
}

func (s *Server) returnBook(c echo.Context) error {
	_, err := s.svc.Return(c.Request().Context(), c.Param("id"), c.Param("bookId"))
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Book removed successfully"})
}

type teacherPayload struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Subject  string `json:"subject"`
	Phone    string `json:"phone"`
}

func (s *Server) listTeachers(c echo.Context) error {
	teachers, err := s.svc.ListTeachers(c.Request().Context())
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(http.StatusOK, teachers)
}

func (s *Server) teacherStudents(c echo.Context) error {
	students, err := s.svc.TeacherStudents(c.Request().Context(), c.Param("id"))
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(http.StatusOK, students)
}

func (s *Server) createTeacher(c echo.Context) error {
	var p teacherPayload
	if err := c.Bind(&p); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Message: "malformed teacher payload"})
	}
	hash, err := hashPassword(p.Password)
	if err != nil {
		return s.respondError(c, err)
	}
	teacher, err := s.svc.CreateTeacher(c.Request().Context(), &catalog.Teacher{
		Name:     p.Name,
		Email:    p.Email,
		Password: hash,
		Subject:  p.Subject,
		Phone:    p.Phone,
	})
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(http.StatusCreated, teacher)
}

func (s *Server) addStudent(c echo.Context) error {
	teacher, err := s.svc.AddStudentToTeacher(c.Request().Context(), c.Param("id"), c.Param("studentId"))
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(http.StatusOK, teacher)
}

func (s *Server) removeStudent(c echo.Context) error {
	teacher, err := s.svc.RemoveStudentFromTeacher(c.Request().Context(), c.Param("id"), c.Param("studentId"))
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(http.StatusOK, teacher)
}

func hashPassword(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
