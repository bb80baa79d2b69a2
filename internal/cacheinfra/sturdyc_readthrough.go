package cacheinfra

import (
	"context"
	"time"

	"github.com/viccon/sturdyc"
)

// ReadThroughConfig holds the configuration for the sturdyc read-through
// cache used for post detail lookups.
type ReadThroughConfig struct {
	// Capacity defines the maximum number of entries the cache can store.
	// Must be greater than 0.
	Capacity int

	// NumShards determines the number of cache shards for concurrent access.
	// Must be greater than 0.
	NumShards int

	// TTL is the time-to-live for cached entries. sturdyc applies it
	// client-wide; detail entries all share the same staleness bound.
	TTL time.Duration

	// EvictionPercentage specifies what percentage of entries to evict when
	// the cache reaches capacity. Must be between 1-100.
	EvictionPercentage int
}

// DefaultReadThroughConfig returns a ReadThroughConfig with sensible defaults.
func DefaultReadThroughConfig() ReadThroughConfig {
	return ReadThroughConfig{
		Capacity:           10000,
		NumShards:          64,
		TTL:                time.Hour,
		EvictionPercentage: 10,
	}
}

// Validate checks if the configuration values are valid.
func (c ReadThroughConfig) Validate() error {
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

// ConfigError represents a configuration validation error.
type ConfigError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return "config error in field " + e.Field + ": " + e.Message
}

// sturdycReadThrough wraps a sturdyc client behind cache.ReadThrough.
type sturdycReadThrough struct {
	client *sturdyc.Client[any]
}

// NewSturdycReadThrough creates a read-through cache backed by sturdyc. It
// validates the configuration and initializes the client with the provided
// settings. sturdyc deduplicates concurrent fetches for the same key, so a
// burst of detail requests for one post results in a single database read.
func NewSturdycReadThrough(cfg ReadThroughConfig) (*sturdycReadThrough, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	client := sturdyc.New[any](
		cfg.Capacity,
		cfg.NumShards,
		cfg.TTL,
		cfg.EvictionPercentage,
	)

	return &sturdycReadThrough{client: client}, nil
}

// GetOrFetch implements cache.ReadThrough. On a miss the fetch function runs
// and its result is stored under key until the client TTL expires or the key
// is forgotten.
func (s *sturdycReadThrough) GetOrFetch(ctx context.Context, key string, fetch func(context.Context) (any, error)) (any, error) {
	return s.client.GetOrFetch(ctx, key, fetch)
}

// Forget implements cache.ReadThrough. Subsequent GetOrFetch calls for the
// key will fetch fresh data from the source.
func (s *sturdycReadThrough) Forget(ctx context.Context, key string) error {
	s.client.Delete(key)
	return nil
}
