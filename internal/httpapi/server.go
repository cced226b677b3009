// Package httpapi is the REST facade over the lending core. It parses
// requests, enforces bearer authentication on mutations, and maps
// error kinds onto status codes; every invariant lives below it.
package httpapi

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/goliatone/go-lending-catalog/catalog"
	"github.com/goliatone/go-lending-catalog/lending"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// Config carries the facade settings.
type Config struct {
	// JWTSecret signs and verifies bearer tokens.
	JWTSecret string
	// TokenTTL bounds issued token lifetime. Zero means 24h.
	TokenTTL time.Duration
}

// Server wires the lending service into an echo application.
type Server struct {
	svc *lending.Service
	cfg Config
	log *slog.Logger
}

// New builds the facade. A nil logger falls back to slog.Default.
func New(svc *lending.Service, cfg Config, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = 24 * time.Hour
	}
	return &Server{svc: svc, cfg: cfg, log: log}
}

// Echo returns the configured echo instance with all routes mounted.
func (s *Server) Echo() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())

	api := e.Group("/api")

	api.POST("/auth/login", s.login)

	api.GET("/books", s.listBooks)
	api.GET("/books/:id", s.getBook)
	api.GET("/students", s.listStudents)
	api.GET("/students/:id", s.getStudent)
	api.GET("/students/:id/books", s.studentBooks)
	api.GET("/teachers", s.listTeachers)
	api.GET("/teachers/:id/students", s.teacherStudents)

	mutating := api.Group("", s.requireAuth)
	mutating.POST("/books", s.createBook)
	mutating.PUT("/books/:id", s.updateBook)
	mutating.DELETE("/books/:id", s.deleteBook)
	mutating.POST("/students", s.createStudent)
	mutating.POST("/students/:id/books/:bookId", s.borrow)
	mutating.DELETE("/students/:id/books/:bookId", s.returnBook)
	mutating.POST("/teachers", s.createTeacher)
	mutating.POST("/teachers/:id/students/:studentId", s.addStudent)
	mutating.DELETE("/teachers/:id/students/:studentId", s.removeStudent)

	return e
}

// errorResponse is the uniform error payload.
type errorResponse struct {
	Message string `json:"message"`
}

// respondError maps the catalog error taxonomy onto HTTP statuses.
func (s *Server) respondError(c echo.Context, err error) error {
	status := http.StatusInternalServerError
	switch catalog.KindOf(err) {
	case catalog.KindNotFound:
		status = http.StatusNotFound
	case catalog.KindConflict, catalog.KindPreconditionFailed:
		status = http.StatusConflict
	case catalog.KindUnavailable, catalog.KindInvalid:
		status = http.StatusBadRequest
	case catalog.KindUpstream:
		s.log.Error("upstream failure", "error", err)
	default:
		s.log.Error("unclassified failure", "error", err)
	}
	return c.JSON(status, errorResponse{Message: err.Error()})
}
