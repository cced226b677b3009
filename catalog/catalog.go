package catalog

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// NewID returns a fresh opaque identifier for a catalog record.
func NewID() string {
	return uuid.NewString()
}

// IDList is an ordered list of record identifiers stored as a single
// JSON column. Order matters for students (duplicates of the same book
// are representable); teachers treat it as a set.
type IDList []string

// Value implements driver.Valuer so bun can persist the list.
func (l IDList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	data, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// Scan implements sql.Scanner.
func (l *IDList) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*l = nil
		return nil
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	default:
		return fmt.Errorf("idlist: cannot scan %T", src)
	}
}

// Contains reports whether id is present in the list.
func (l IDList) Contains(id string) bool {
	for _, v := range l {
		if v == id {
			return true
		}
	}
	return false
}

// RemoveOne returns a copy of the list with the first occurrence of id
// removed, and whether a removal happened.
func (l IDList) RemoveOne(id string) (IDList, bool) {
	for i, v := range l {
		if v == id {
			out := make(IDList, 0, len(l)-1)
			out = append(out, l[:i]...)
			out = append(out, l[i+1:]...)
			return out, true
		}
	}
	return append(IDList(nil), l...), false
}

// Book is a title the library owns copies of. AvailableQuantity is
// derived state: it moves by exactly one on each successful borrow or
// return and must stay within [0, Quantity].
type Book struct {
	bun.BaseModel `bun:"table:books,alias:b" json:"-" msgpack:"-"`

	ID                string `bun:"id,pk" json:"id" msgpack:"id"`
	Title             string `bun:"title,notnull" json:"title" msgpack:"title"`
	Author            string `bun:"author,notnull" json:"author" msgpack:"author"`
	ISBN              string `bun:"isbn,notnull" json:"isbn" msgpack:"isbn"`
	PublishedYear     int    `bun:"published_year,notnull" json:"publishedYear" msgpack:"publishedYear"`
	Quantity          int    `bun:"quantity,notnull" json:"quantity" msgpack:"quantity"`
	AvailableQuantity int    `bun:"available_quantity,notnull" json:"availableQuantity" msgpack:"availableQuantity"`
}

// GetID implements store.Record.
func (b *Book) GetID() string { return b.ID }

// SetID implements store.Record.
func (b *Book) SetID(id string) { b.ID = id }

// Clone returns an independent copy.
func (b *Book) Clone() *Book {
	cp := *b
	return &cp
}

// Student borrows books. Books holds the identifiers of the copies the
// student currently has out; the same book may appear more than once.
type Student struct {
	bun.BaseModel `bun:"table:students,alias:s" json:"-" msgpack:"-"`

	ID       string `bun:"id,pk" json:"id" msgpack:"id"`
	Name     string `bun:"name,notnull" json:"name" msgpack:"name"`
	Email    string `bun:"email,unique,nullzero" json:"email,omitempty" msgpack:"email,omitempty"`
	Password string `bun:"password,notnull" json:"-" msgpack:"-"`
	Books    IDList `bun:"books,type:text" json:"books" msgpack:"books"`
}

func (s *Student) GetID() string   { return s.ID }
func (s *Student) SetID(id string) { s.ID = id }

func (s *Student) Clone() *Student {
	cp := *s
	cp.Books = append(IDList(nil), s.Books...)
	return &cp
}

// UniqueKey is the value the store enforces uniqueness on. Empty means
// no constraint applies to this record.
func (s *Student) UniqueKey() string { return s.Email }

// Teacher supervises students. Students holds supervised student
// identifiers; adding is idempotent, so the list behaves as a set.
type Teacher struct {
	bun.BaseModel `bun:"table:teachers,alias:t" json:"-" msgpack:"-"`

	ID       string `bun:"id,pk" json:"id" msgpack:"id"`
	Name     string `bun:"name,notnull" json:"name" msgpack:"name"`
	Email    string `bun:"email,notnull,unique" json:"email" msgpack:"email"`
	Password string `bun:"password,notnull" json:"-" msgpack:"-"`
	Subject  string `bun:"subject" json:"subject" msgpack:"subject"`
	Phone    string `bun:"phone" json:"phone" msgpack:"phone"`
	Students IDList `bun:"students,type:text" json:"students" msgpack:"students"`
}

func (t *Teacher) GetID() string   { return t.ID }
func (t *Teacher) SetID(id string) { t.ID = id }

func (t *Teacher) Clone() *Teacher {
	cp := *t
	cp.Students = append(IDList(nil), t.Students...)
	return &cp
}

func (t *Teacher) UniqueKey() string { return t.Email }
