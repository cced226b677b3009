package lending

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/goliatone/go-lending-catalog/catalog"
	"github.com/goliatone/go-lending-catalog/store"
)

func TestBorrowHappyPath(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	book := env.createBook(t, 2)

	student, err := env.svc.Borrow(ctx, env.studentA.ID, book.ID)
	if err != nil {
		t.Fatalf("Borrow: %v", err)
	}
	if !student.Books.Contains(book.ID) {
		t.Error("borrow should record the book on the student")
	}

	got, err := env.svc.GetBook(ctx, book.ID)
	if err != nil {
		t.Fatalf("GetBook: %v", err)
	}
	if got.AvailableQuantity != 1 {
		t.Errorf("availableQuantity = %d, want 1", got.AvailableQuantity)
	}
}

func TestBorrowUnavailable(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	book := env.createBook(t, 1)

	if _, err := env.svc.Borrow(ctx, env.studentA.ID, book.ID); err != nil {
		t.Fatalf("first borrow: %v", err)
	}

	second, err := env.svc.CreateStudent(ctx, &catalog.Student{Name: "Ben Okafor", Password: "x"})
	if err != nil {
		t.Fatalf("seed second student: %v", err)
	}

	_, err = env.svc.Borrow(ctx, second.ID, book.ID)
	if catalog.KindOf(err) != catalog.KindUnavailable {
		t.Fatalf("expected Unavailable, got %v", err)
	}
}

func TestBorrowNotFoundNamesTheMissingEntity(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	book := env.createBook(t, 1)

	_, err := env.svc.Borrow(ctx, "missing-student", book.ID)
	if !catalog.IsNotFound(err) {
		t.Fatalf("expected NotFound, got %v", err)
	}
	if !strings.Contains(err.Error(), "Student") {
		t.Errorf("error should mention the student: %q", err.Error())
	}

	_, err = env.svc.Borrow(ctx, env.studentA.ID, "missing-book")
	if !catalog.IsNotFound(err) {
		t.Fatalf("expected NotFound, got %v", err)
	}
	if !strings.Contains(err.Error(), "Book") {
		t.Errorf("error should mention the book: %q", err.Error())
	}
}

func TestBorrowReturnRoundTrip(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	book := env.createBook(t, 3)

	if _, err := env.svc.Borrow(ctx, env.studentA.ID, book.ID); err != nil {
		t.Fatalf("Borrow: %v", err)
	}
	student, err := env.svc.Return(ctx, env.studentA.ID, book.ID)
	if err != nil {
		t.Fatalf("Return: %v", err)
	}
	if student.Books.Contains(book.ID) {
		t.Error("return should remove the book from the student")
	}

	got, err := env.svc.GetBook(ctx, book.ID)
	if err != nil {
		t.Fatalf("GetBook: %v", err)
	}
	if got.AvailableQuantity != 3 {
		t.Errorf("availableQuantity = %d, want the original 3", got.AvailableQuantity)
	}
}

func TestDuplicateBorrowsBySameStudent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	book := env.createBook(t, 5)

	for i := 0; i < 2; i++ {
		if _, err := env.svc.Borrow(ctx, env.studentA.ID, book.ID); err != nil {
			t.Fatalf("borrow %d: %v", i, err)
		}
	}

	held, err := env.svc.StudentBooks(ctx, env.studentA.ID)
	if err != nil {
		t.Fatalf("StudentBooks: %v", err)
	}
	if len(held) != 2 {
		t.Fatalf("expected two held copies, got %d", len(held))
	}

	// Returning removes one copy at a time.
	student, err := env.svc.Return(ctx, env.studentA.ID, book.ID)
	if err != nil {
		t.Fatalf("Return: %v", err)
	}
	if !student.Books.Contains(book.ID) {
		t.Error("one copy should remain after the first return")
	}

	got, _ := env.svc.GetBook(ctx, book.ID)
	if got.AvailableQuantity != 4 {
		t.Errorf("availableQuantity = %d, want 4", got.AvailableQuantity)
	}
}

// The defined consistency level: the "books" list may lag after a
// borrow, the "book:{id}" entry must not.
func TestBorrowStalenessContract(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	book := env.createBook(t, 2)

	// Populate both entries.
	if _, err := env.svc.ListBooks(ctx); err != nil {
		t.Fatal(err)
	}
	if _, err := env.svc.GetBook(ctx, book.ID); err != nil {
		t.Fatal(err)
	}

	if _, err := env.svc.Borrow(ctx, env.studentA.ID, book.ID); err != nil {
		t.Fatalf("Borrow: %v", err)
	}

	// Item view is fresh.
	item, err := env.svc.GetBook(ctx, book.ID)
	if err != nil {
		t.Fatal(err)
	}
	if item.AvailableQuantity != 1 {
		t.Errorf("item read served a pre-borrow value: %d", item.AvailableQuantity)
	}

	// List view still serves the cached, pre-borrow snapshot.
	list, err := env.svc.ListBooks(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 || list[0].AvailableQuantity != 2 {
		t.Errorf("list entry should lag until TTL, got %+v", list[0])
	}

	// Student projection was invalidated.
	held, err := env.svc.StudentBooks(ctx, env.studentA.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(held) != 1 {
		t.Errorf("student books projection should be fresh, got %d entries", len(held))
	}
}

func TestConcurrentBorrowsOfLastCopy(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	for run := 0; run < 20; run++ {
		book := env.createBook(t, 1)

		var wg sync.WaitGroup
		errs := make([]error, 2)
		for i := 0; i < 2; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, errs[i] = env.svc.Borrow(ctx, env.studentA.ID, book.ID)
			}(i)
		}
		wg.Wait()

		successes := 0
		for _, err := range errs {
			switch catalog.KindOf(err) {
			case catalog.KindUnknown:
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				successes++
			case catalog.KindUnavailable, catalog.KindPreconditionFailed:
				// the expected loser
			default:
				t.Fatalf("unexpected error kind: %v", err)
			}
		}
		if successes != 1 {
			t.Fatalf("run %d: %d successes, want exactly 1", run, successes)
		}

		got, err := env.svc.GetBook(ctx, book.ID)
		if err != nil {
			t.Fatal(err)
		}
		if got.AvailableQuantity != 0 {
			t.Fatalf("run %d: availableQuantity = %d, want 0", run, got.AvailableQuantity)
		}
	}
}

func TestBookInvariantUnderInterleaving(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	book := env.createBook(t, 3)

	const workers = 30
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := env.svc.Borrow(ctx, env.studentA.ID, book.ID); err == nil {
				_, _ = env.svc.Return(ctx, env.studentA.ID, book.ID)
			}
		}()
	}
	wg.Wait()

	got, err := env.svc.GetBook(ctx, book.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.AvailableQuantity < 0 || got.AvailableQuantity > got.Quantity {
		t.Fatalf("invariant violated: available=%d quantity=%d", got.AvailableQuantity, got.Quantity)
	}
}

func TestReturnPossessionPolicy(t *testing.T) {
	t.Run("enforced", func(t *testing.T) {
		env := newTestEnv(t)
		ctx := context.Background()
		book := env.createBook(t, 2)

		_, err := env.svc.Return(ctx, env.studentA.ID, book.ID)
		if !catalog.IsConflict(err) {
			t.Fatalf("expected Conflict for a return without possession, got %v", err)
		}

		got, _ := env.svc.GetBook(ctx, book.ID)
		if got.AvailableQuantity != 2 {
			t.Errorf("rejected return must not change availability, got %d", got.AvailableQuantity)
		}
	})

	t.Run("disabled allows permissive returns", func(t *testing.T) {
		env := newTestEnv(t)
		ctx := context.Background()
		book := env.createBook(t, 2)
		env.svc.WithOptions(Options{RequirePossession: false, ClampToQuantity: false})

		// Borrow one copy so there is headroom, then return twice.
		if _, err := env.svc.Borrow(ctx, env.studentA.ID, book.ID); err != nil {
			t.Fatal(err)
		}
		for i := 0; i < 2; i++ {
			if _, err := env.svc.Return(ctx, env.studentA.ID, book.ID); err != nil {
				t.Fatalf("unchecked return %d: %v", i, err)
			}
		}

		got, _ := env.svc.GetBook(ctx, book.ID)
		if got.AvailableQuantity != 3 {
			t.Errorf("unclamped returns should overshoot: available = %d, want 3", got.AvailableQuantity)
		}
	})
}

func TestReturnClampPolicy(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	book := env.createBook(t, 1)
	env.svc.WithOptions(Options{RequirePossession: false, ClampToQuantity: true})

	// Return without a prior borrow: removal is a no-op, the increment
	// is capped, availability stays within the invariant.
	if _, err := env.svc.Return(ctx, env.studentA.ID, book.ID); err != nil {
		t.Fatalf("capped return should not error: %v", err)
	}

	got, _ := env.svc.GetBook(ctx, book.ID)
	if got.AvailableQuantity != 1 {
		t.Errorf("clamp failed: available = %d, want 1", got.AvailableQuantity)
	}
}

// failingStudents wraps a student repository and fails Update, to
// exercise the borrow compensation path.
type failingStudents struct {
	store.Students
	updateErr error
}

func (f *failingStudents) Update(ctx context.Context, id string, rec *catalog.Student) (*catalog.Student, error) {
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	return f.Students.Update(ctx, id, rec)
}

func TestBorrowCompensatesWhenStudentWriteFails(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	book := env.createBook(t, 2)

	boom := catalog.Upstream("student", errors.New("write failed"))
	env.svc.students = &failingStudents{Students: env.svc.students, updateErr: boom}

	_, err := env.svc.Borrow(ctx, env.studentA.ID, book.ID)
	if catalog.KindOf(err) != catalog.KindUpstream {
		t.Fatalf("expected Upstream, got %v", err)
	}

	// The decrement was rolled back; the invariant holds and no copy
	// is lost.
	got, gerr := env.svc.GetBook(ctx, book.ID)
	if gerr != nil {
		t.Fatal(gerr)
	}
	if got.AvailableQuantity != 2 {
		t.Errorf("compensation failed: available = %d, want 2", got.AvailableQuantity)
	}
}
