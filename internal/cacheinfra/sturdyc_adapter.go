package cacheinfra

import (
	"context"
	"strings"
	"time"

	"github.com/viccon/sturdyc"
)

// Config holds the configuration for the sturdyc cache adapter.
type Config struct {
	// Capacity defines the maximum number of entries the cache stores.
	// Must be greater than 0.
	Capacity int

	// NumShards determines the number of cache shards for concurrent
	// access. Higher values improve concurrency but increase memory
	// overhead. Must be greater than 0.
	NumShards int

	// TTL is the time-to-live shared by every cached entry. The lending
	// catalog fixes this at one hour by default.
	TTL time.Duration

	// EvictionPercentage specifies what percentage of entries to evict
	// when the cache reaches its capacity. Must be between 1-100.
	EvictionPercentage int

	// EvictionInterval sets how often the cache checks for expired
	// entries. Zero value uses the sturdyc default.
	EvictionInterval time.Duration
}

// DefaultConfig returns a Config with the defaults the lending catalog
// ships with. The 3600 second TTL matches the caching contract of the
// serving layer.
func DefaultConfig() Config {
	return Config{
		Capacity:           10000,
		NumShards:          256,
		TTL:                3600 * time.Second,
		EvictionPercentage: 10,
	}
}

// Validate checks if the configuration values are valid.
func (c Config) Validate() error {
	if c.Capacity <= 0 {
		return &ConfigError{Field: "Capacity", Message: "must be greater than 0"}
	}
	if c.NumShards <= 0 {
		return &ConfigError{Field: "NumShards", Message: "must be greater than 0"}
	}
	if c.TTL <= 0 {
		return &ConfigError{Field: "TTL", Message: "must be greater than 0"}
	}
	if c.EvictionPercentage < 1 || c.EvictionPercentage > 100 {
		return &ConfigError{Field: "EvictionPercentage", Message: "must be between 1 and 100"}
	}
	return nil
}

// toSturdycOptions maps config parameters that are not part of the
// sturdyc.New constructor signature.
func (c Config) toSturdycOptions() []sturdyc.Option {
	var options []sturdyc.Option
	if c.EvictionInterval > 0 {
		options = append(options, sturdyc.WithEvictionInterval(c.EvictionInterval))
	}
	return options
}

// ConfigError represents a configuration validation error.
type ConfigError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return "config error in field " + e.Field + ": " + e.Message
}

// sturdycStore implements cache.Store on top of a sturdyc client that
// holds opaque byte blobs. Entries expire after the configured TTL;
// expiry and capacity eviction are sturdyc's concern.
type sturdycStore struct {
	client *sturdyc.Client[[]byte]
}

// NewSturdycStore creates a new sturdyc-backed cache store. It
// validates the configuration and initializes the client with the
// provided settings.
//
// Version compatibility note: this implementation assumes sturdyc v1.x
// API. Monitor sturdyc version upgrades for potential option mapping
// changes.
func NewSturdycStore(cfg Config) (*sturdycStore, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	client := sturdyc.New[[]byte](
		cfg.Capacity,
		cfg.NumShards,
		cfg.TTL,
		cfg.EvictionPercentage,
		cfg.toSturdycOptions()...,
	)

	return &sturdycStore{client: client}, nil
}

// Get implements cache.Store.Get. A missing or expired entry reports
// found=false with no error.
func (s *sturdycStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	value, ok := s.client.Get(key)
	if !ok {
		return nil, false, nil
	}
	return value, true, nil
}

// Set implements cache.Store.Set. The entry expires after the TTL the
// store was constructed with.
func (s *sturdycStore) Set(ctx context.Context, key string, value []byte) error {
	s.client.Set(key, value)
	return nil
}

// Delete implements cache.Store.Delete. Subsequent reads of key miss
// until a read-through repopulates it.
func (s *sturdycStore) Delete(ctx context.Context, key string) error {
	s.client.Delete(key)
	return nil
}

// DeleteByPrefix removes all entries whose keys start with prefix.
// Useful for sweeping a record's relationship projections (for example
// every "student:{id}"-prefixed entry) in one call.
func (s *sturdycStore) DeleteByPrefix(ctx context.Context, prefix string) error {
	for _, key := range s.client.ScanKeys() {
		if strings.HasPrefix(key, prefix) {
			s.client.Delete(key)
		}
	}
	return nil
}
