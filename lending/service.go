package lending

import (
	"context"
	"log/slog"

	"github.com/goliatone/go-lending-catalog/cache"
	"github.com/goliatone/go-lending-catalog/store"
)

// Options are the explicit policy choices for the return path. With
// both disabled, any return increments availability, with no possession
// check and no cap.
type Options struct {
	// RequirePossession rejects a return when the student does not
	// currently hold the book.
	RequirePossession bool
	// ClampToQuantity caps availability at Quantity on return instead
	// of incrementing unconditionally.
	ClampToQuantity bool
}

// DefaultOptions enables both safeguards, keeping the book invariant
// 0 <= availableQuantity <= quantity under every operation.
func DefaultOptions() Options {
	return Options{RequirePossession: true, ClampToQuantity: true}
}

// Service is the lending domain core. It composes the persistent store
// (source of truth) with the cache-aside layer: reads go through the
// cache, mutations write to the store and then invalidate the affected
// cache keys before returning.
type Service struct {
	books    store.Books
	students store.Students
	teachers store.Teachers
	cache    cache.Store
	opts     Options
	log      *slog.Logger
}

// New builds a Service with DefaultOptions and the default logger.
func New(books store.Books, students store.Students, teachers store.Teachers, cacheStore cache.Store) *Service {
	return &Service{
		books:    books,
		students: students,
		teachers: teachers,
		cache:    cacheStore,
		opts:     DefaultOptions(),
		log:      slog.Default(),
	}
}

// WithOptions overrides the return-path policy. Returns the service for
// chaining during construction.
func (s *Service) WithOptions(opts Options) *Service {
	s.opts = opts
	return s
}

// WithLogger replaces the logger. A nil logger restores the default.
func (s *Service) WithLogger(log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	s.log = log
	return s
}

// readThrough serves key from the cache when possible and falls back to
// fetch otherwise, populating the cache before returning. Cache
// failures are absorbed here: a failed read counts as a miss and a
// failed write is dropped, both logged, neither user-visible. The
// store, not the cache, decides whether the operation fails.
func readThrough[T any](ctx context.Context, s *Service, key string, fetch cache.FetchFn[T]) (T, error) {
	data, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		s.log.WarnContext(ctx, "cache read failed, treating as miss", "key", key, "error", err)
	} else if ok {
		var out T
		if derr := cache.Unmarshal(data, &out); derr == nil {
			return out, nil
		} else {
			s.log.WarnContext(ctx, "cache entry undecodable, treating as miss", "key", key, "error", derr)
		}
	}

	out, err := fetch(ctx)
	if err != nil {
		var zero T
		return zero, err
	}

	if data, merr := cache.Marshal(out); merr != nil {
		s.log.WarnContext(ctx, "cache encode failed, skipping populate", "key", key, "error", merr)
	} else if serr := s.cache.Set(ctx, key, data); serr != nil {
		s.log.WarnContext(ctx, "cache populate failed", "key", key, "error", serr)
	}
	return out, nil
}

// invalidate deletes the given cache keys. Invalidation is always
// delete, never update-in-place, and it runs before the mutation's
// result is returned to the caller. Failures are logged and dropped:
// the worst case is a stale entry that expires with its TTL.
func (s *Service) invalidate(ctx context.Context, keys ...string) {
	for _, key := range keys {
		if err := s.cache.Delete(ctx, key); err != nil {
			s.log.WarnContext(ctx, "cache invalidation failed", "key", key, "error", err)
		}
	}
}
