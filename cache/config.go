package cache

import "time"

// Defaults for the listing cache.
const (
	DefaultPageSize  = 10
	DefaultTTL       = 3600 * time.Second
	DefaultKeyPrefix = "posts"
)

// Config exposes the listing cache configuration options.
type Config struct {
	// PageSize is the number of posts per listing page when the caller does
	// not provide one.
	PageSize int

	// TTL is the fixed time-to-live applied to every cache entry on write.
	// Entries are never refreshed in place; they expire or are invalidated.
	TTL time.Duration

	// KeyPrefix namespaces every cache key, e.g. "posts".
	KeyPrefix string
}

// DefaultConfig returns a Config populated with the documented defaults.
func DefaultConfig() Config {
	return Config{
		PageSize:  DefaultPageSize,
		TTL:       DefaultTTL,
		KeyPrefix: DefaultKeyPrefix,
	}
}

// Validate checks whether the configuration values are valid.
func (c Config) Validate() error {
	if c.PageSize <= 0 {
		return &ConfigError{Field: "PageSize", Message: "must be greater than 0"}
	}

	if c.TTL <= 0 {
		return &ConfigError{Field: "TTL", Message: "must be greater than 0"}
	}

	if c.KeyPrefix == "" {
		return &ConfigError{Field: "KeyPrefix", Message: "must not be empty"}
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
