package cache

import (
	"context"
	"errors"
	"sync"
	"testing"
)

// fakeStore is an in-memory Store with injectable failures, used to
// exercise the read-through helper without the sturdyc backend.
type fakeStore struct {
	mu      sync.Mutex
	entries map[string][]byte
	getErr  error
	setErr  error
}

func newFakeStore() *fakeStore {
	return &fakeStore{entries: make(map[string][]byte)}
}

func (f *fakeStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, false, f.getErr
	}
	v, ok := f.entries[key]
	return v, ok, nil
}

func (f *fakeStore) Set(ctx context.Context, key string, value []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.setErr != nil {
		return f.setErr
	}
	f.entries[key] = value
	return nil
}

func (f *fakeStore) Delete(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.entries, key)
	return nil
}

type snapshot struct {
	Name  string `msgpack:"name"`
	Count int    `msgpack:"count"`
}

func TestGetOrFetchPopulatesOnMiss(t *testing.T) {
	store := newFakeStore()
	ctx := context.Background()
	fetches := 0

	fetch := func(ctx context.Context) (snapshot, error) {
		fetches++
		return snapshot{Name: "books", Count: 3}, nil
	}

	got, err := GetOrFetch(ctx, store, "books", fetch)
	if err != nil {
		t.Fatalf("GetOrFetch error: %v", err)
	}
	if got.Count != 3 {
		t.Errorf("unexpected value: %+v", got)
	}
	if fetches != 1 {
		t.Fatalf("expected one fetch, got %d", fetches)
	}

	// Second read must be served from the cache.
	got, err = GetOrFetch(ctx, store, "books", fetch)
	if err != nil {
		t.Fatalf("GetOrFetch error: %v", err)
	}
	if got.Name != "books" || fetches != 1 {
		t.Errorf("expected cache hit without refetch, fetches = %d", fetches)
	}
}

func TestGetOrFetchHitBeatsSource(t *testing.T) {
	store := newFakeStore()
	ctx := context.Background()

	data, err := Marshal(snapshot{Name: "stale", Count: 1})
	if err != nil {
		t.Fatal(err)
	}
	if err := store.Set(ctx, "k", data); err != nil {
		t.Fatal(err)
	}

	got, err := GetOrFetch(ctx, store, "k", func(ctx context.Context) (snapshot, error) {
		t.Fatal("fetch must not run on a hit")
		return snapshot{}, nil
	})
	if err != nil {
		t.Fatalf("GetOrFetch error: %v", err)
	}
	if got.Name != "stale" {
		t.Errorf("hit should win over the source, got %+v", got)
	}
}

func TestGetOrFetchPropagatesErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("cache get failure", func(t *testing.T) {
		store := newFakeStore()
		store.getErr = errors.New("backend down")
		_, err := GetOrFetch(ctx, store, "k", func(ctx context.Context) (snapshot, error) {
			return snapshot{}, nil
		})
		if err == nil {
			t.Fatal("expected cache error to propagate from the strict helper")
		}
	})

	t.Run("fetch failure", func(t *testing.T) {
		store := newFakeStore()
		fetchErr := errors.New("store down")
		_, err := GetOrFetch(ctx, store, "k", func(ctx context.Context) (snapshot, error) {
			return snapshot{}, fetchErr
		})
		if !errors.Is(err, fetchErr) {
			t.Fatalf("expected fetch error, got %v", err)
		}
	})
}

func TestKeySpace(t *testing.T) {
	tests := []struct {
		got  string
		want string
	}{
		{KeyBooks(), "books"},
		{KeyBook("b-1"), "book:b-1"},
		{KeyStudents(), "students"},
		{KeyStudent("s-1"), "student:s-1"},
		{KeyStudentBooks("s-1"), "student:s-1:books"},
		{KeyTeachers(), "teachers"},
		{KeyTeacherStudents("t-1"), "teacher:t-1:students"},
	}

	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("key mismatch: got %q, want %q", tt.got, tt.want)
		}
	}
}
