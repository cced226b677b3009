package cache

import (
	"context"

	"github.com/vmihailenco/msgpack/v5"
)

// Store is the cache-aside contract the lending core consumes. Values
// are opaque serialized blobs at this layer; callers own the
// (de)serialization. Every entry shares the TTL the store was built
// with, and any entry may be silently absent.
type Store interface {
	// Get returns the cached value for key and whether it was present.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores value under key. The entry expires after the store's
	// configured TTL.
	Set(ctx context.Context, key string, value []byte) error
	// Delete removes the entry for key. Deleting an absent key is not
	// an error.
	Delete(ctx context.Context, key string) error
}

// FetchFn is the function signature read-through helpers expect when
// fetching from the source of truth.
type FetchFn[T any] func(ctx context.Context) (T, error)

// Marshal encodes a snapshot for caching. All cache values in this
// module go through msgpack so the encoding is uniform across entries.
func Marshal(v any) ([]byte, error) {
	return msgpack.Marshal(v)
}

// Unmarshal decodes a cached snapshot.
func Unmarshal(data []byte, v any) error {
	return msgpack.Unmarshal(data, v)
}

// GetOrFetch is the strict read-through helper: cache errors propagate.
// The lending core wraps it with its own absorption policy; callers
// that want cache failures surfaced use this directly.
func GetOrFetch[T any](ctx context.Context, store Store, key string, fetch FetchFn[T]) (T, error) {
	var zero T

	data, ok, err := store.Get(ctx, key)
	if err != nil {
		return zero, err
	}
	if ok {
		var out T
		if err := Unmarshal(data, &out); err != nil {
			return zero, err
		}
		return out, nil
	}

	out, err := fetch(ctx)
	if err != nil {
		return zero, err
	}

	data, err = Marshal(out)
	if err != nil {
		return zero, err
	}
	if err := store.Set(ctx, key, data); err != nil {
		return zero, err
	}
	return out, nil
}
