package di

import (
	"context"
	"testing"

	"github.com/goliatone/go-lending-catalog/cache"
	"github.com/goliatone/go-lending-catalog/catalog"
	"github.com/goliatone/go-lending-catalog/lending"
)

func TestNewMemoryWithDefaults(t *testing.T) {
	c, err := NewMemoryWithDefaults()
	if err != nil {
		t.Fatalf("NewMemoryWithDefaults: %v", err)
	}
	defer c.Close()

	if c.Service() == nil || c.CacheStore() == nil {
		t.Fatal("container should expose assembled components")
	}
	if c.Books() == nil || c.Students() == nil || c.Teachers() == nil {
		t.Fatal("container should expose repositories")
	}
	if got := c.Config().TTL; got != cache.DefaultConfig().TTL {
		t.Errorf("config TTL = %v, want default", got)
	}
}

func TestNewMemoryRejectsInvalidConfig(t *testing.T) {
	cfg := cache.DefaultConfig()
	cfg.Capacity = 0
	if _, err := NewMemory(cfg, lending.DefaultOptions(), nil); err == nil {
		t.Fatal("expected invalid cache config to be rejected")
	}
}

// End-to-end through the container: the wiring, not the domain logic,
// is what this verifies.
func TestContainerEndToEnd(t *testing.T) {
	c, err := NewMemoryWithDefaults()
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	ctx := context.Background()
	svc := c.Service()

	book, err := svc.CreateBook(ctx, &catalog.Book{
		Title: "The Go Programming Language", Author: "Donovan",
		ISBN: "978-0134190440", PublishedYear: 2015, Quantity: 1,
	})
	if err != nil {
		t.Fatalf("CreateBook: %v", err)
	}

	student, err := svc.CreateStudent(ctx, &catalog.Student{Name: "Ana Gomez", Password: "x"})
	if err != nil {
		t.Fatalf("CreateStudent: %v", err)
	}

	if _, err := svc.Borrow(ctx, student.ID, book.ID); err != nil {
		t.Fatalf("Borrow: %v", err)
	}

	got, err := svc.GetBook(ctx, book.ID)
	if err != nil {
		t.Fatalf("GetBook: %v", err)
	}
	if got.AvailableQuantity != 0 {
		t.Errorf("availableQuantity = %d, want 0", got.AvailableQuantity)
	}
}

func TestNewSQLiteInMemory(t *testing.T) {
	ctx := context.Background()
	c, err := NewSQLite(ctx, ":memory:", cache.DefaultConfig(), lending.DefaultOptions(), nil)
	if err != nil {
		t.Fatalf("NewSQLite: %v", err)
	}
	defer c.Close()

	if _, err := c.Service().ListBooks(ctx); err != nil {
		t.Fatalf("ListBooks on fresh schema: %v", err)
	}
}
