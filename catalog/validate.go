package catalog

import (
	"regexp"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

var phonePattern = regexp.MustCompile(`^\+?[1-9]\d{1,14}$`)

// Validate checks the book's field invariants. AvailableQuantity is not
// validated against user input here; it is derived and the store keeps
// it within [0, Quantity].
func (b *Book) Validate() error {
	err := validation.ValidateStruct(b,
		validation.Field(&b.Title, validation.Required, validation.Length(1, 100)),
		validation.Field(&b.Author, validation.Required, validation.Length(2, 100)),
		validation.Field(&b.ISBN, validation.Required),
		validation.Field(&b.PublishedYear,
			validation.Required,
			validation.Min(1900),
			validation.Max(time.Now().Year()),
		),
		validation.Field(&b.Quantity, validation.Min(0)),
	)
	if err != nil {
		return Invalid("book", err)
	}
	return nil
}

// Validate checks the student's field invariants. Email is optional but
// must be well formed when present.
func (s *Student) Validate() error {
	err := validation.ValidateStruct(s,
		validation.Field(&s.Name, validation.Required, validation.Length(3, 50)),
		validation.Field(&s.Email, is.Email),
		validation.Field(&s.Password, validation.Required),
	)
	if err != nil {
		return Invalid("student", err)
	}
	return nil
}

// Validate checks the teacher's field invariants.
func (t *Teacher) Validate() error {
	err := validation.ValidateStruct(t,
		validation.Field(&t.Name, validation.Required, validation.Length(3, 50)),
		validation.Field(&t.Email, validation.Required, is.Email),
		validation.Field(&t.Password, validation.Required),
		validation.Field(&t.Subject, validation.Length(2, 50)),
		validation.Field(&t.Phone, validation.Match(phonePattern).Error("must be a valid phone number")),
	)
	if err != nil {
		return Invalid("teacher", err)
	}
	return nil
}
