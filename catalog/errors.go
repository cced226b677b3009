package catalog

import (
	"errors"
	"fmt"
)

// Kind classifies an operation failure. The facade maps kinds onto
// transport responses; the domain core only ever reasons about kinds.
type Kind int

const (
	// KindUnknown is the zero value; errors without a kind.
	KindUnknown Kind = iota
	// KindNotFound means a referenced record id does not exist.
	KindNotFound
	// KindConflict means a uniqueness or referential constraint was
	// violated.
	KindConflict
	// KindUnavailable means a borrow was requested with zero copies
	// remaining.
	KindUnavailable
	// KindPreconditionFailed means an atomic conditional update lost a
	// race with a concurrent writer.
	KindPreconditionFailed
	// KindInvalid means a record failed field validation.
	KindInvalid
	// KindUpstream means the persistent store failed unexpectedly.
	KindUpstream
)

// String returns the kind name used in error messages and logs.
func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not found"
	case KindConflict:
		return "conflict"
	case KindUnavailable:
		return "unavailable"
	case KindPreconditionFailed:
		return "precondition failed"
	case KindInvalid:
		return "invalid"
	case KindUpstream:
		return "upstream"
	default:
		return "unknown"
	}
}

// Error is the failure type every catalog operation returns. Entity and
// ID identify which referenced record the failure is about, so callers
// supplying several ids can tell which one was the problem.
type Error struct {
	Kind   Kind
	Entity string
	ID     string
	Msg    string
	Err    error
}

func (e *Error) Error() string {
	switch {
	case e.Msg != "" && e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	case e.Msg != "":
		return e.Msg
	case e.Err != nil:
		return fmt.Sprintf("%s %s: %v", e.Entity, e.Kind, e.Err)
	default:
		return fmt.Sprintf("%s %s", e.Entity, e.Kind)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// NotFound reports that the record of the given entity kind is absent.
func NotFound(entity, id string) *Error {
	return &Error{
		Kind:   KindNotFound,
		Entity: entity,
		ID:     id,
		Msg:    fmt.Sprintf("%s not found", entityLabel(entity)),
	}
}

// Conflict reports a violated uniqueness or referential constraint.
func Conflict(entity, id, msg string) *Error {
	return &Error{Kind: KindConflict, Entity: entity, ID: id, Msg: msg}
}

// Unavailable reports a borrow attempt with no copies left.
func Unavailable(bookID string) *Error {
	return &Error{
		Kind:   KindUnavailable,
		Entity: "book",
		ID:     bookID,
		Msg:    "book is not available",
	}
}

// PreconditionFailed reports a lost conditional update.
func PreconditionFailed(entity, id, msg string) *Error {
	return &Error{Kind: KindPreconditionFailed, Entity: entity, ID: id, Msg: msg}
}

// Invalid wraps a validation failure for the given entity.
func Invalid(entity string, err error) *Error {
	return &Error{
		Kind:   KindInvalid,
		Entity: entity,
		Msg:    fmt.Sprintf("invalid %s", entity),
		Err:    err,
	}
}

// Upstream wraps an unexpected persistent-store failure.
func Upstream(entity string, err error) *Error {
	return &Error{
		Kind:   KindUpstream,
		Entity: entity,
		Msg:    fmt.Sprintf("%s store failure", entity),
		Err:    err,
	}
}

// KindOf extracts the Kind from err, or KindUnknown when err is not a
// catalog error.
func KindOf(err error) Kind {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return KindUnknown
}

// IsNotFound reports whether err carries KindNotFound.
func IsNotFound(err error) bool { return KindOf(err) == KindNotFound }

// IsConflict reports whether err carries KindConflict.
func IsConflict(err error) bool { return KindOf(err) == KindConflict }

func entityLabel(entity string) string {
	switch entity {
	case "book":
		return "Book"
	case "student":
		return "Student"
	case "teacher":
		return "Teacher"
	default:
		return entity
	}
}
