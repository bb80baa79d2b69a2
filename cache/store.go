package cache

import (
	"context"
	"time"
)

// Store is the key-value contract the listing layer caches through. Backends
// must provide atomic single-key operations; no cross-key transactions are
// assumed. Implementations translate the glob pattern passed to KeysMatching
// into whatever their backend supports so callers never see vendor syntax.
type Store interface {
	// Get returns the value stored under key and whether it was present.
	Get(ctx context.Context, key string) (string, bool, error)

	// SetWithTTL stores value under key, replacing any previous entry.
	// The entry expires ttl after the write.
	SetWithTTL(ctx context.Context, key, value string, ttl time.Duration) error

	// KeysMatching returns the live keys matching a glob pattern such as
	// "posts:page:*". An empty result is not an error.
	KeysMatching(ctx context.Context, pattern string) ([]string, error)

	// Delete removes the entry under key. Deleting an absent key is a no-op.
	Delete(ctx context.Context, key string) error
}
