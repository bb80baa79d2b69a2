package cacheinfra

import (
	"context"
	"path"
	"time"

	"github.com/puzpuzpuz/xsync/v3"
)

// entry is a stored value with an absolute expiry deadline.
type entry struct {
	value     string
	expiresAt time.Time
}

// MemoryStore is an in-process cache.Store backed by a sharded concurrent
// map. Expired entries are dropped lazily on read and scan; there is no
// background sweeper, which is fine for the listing workload where every key
// is revisited on the next page request.
type MemoryStore struct {
	entries *xsync.MapOf[string, entry]
	now     func() time.Time
}

// MemoryOption customizes a MemoryStore.
type MemoryOption func(*MemoryStore)

// WithClock overrides the time source. Tests use this to step through TTL
// expiry without sleeping.
func WithClock(now func() time.Time) MemoryOption {
	return func(s *MemoryStore) {
		s.now = now
	}
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore(opts ...MemoryOption) *MemoryStore {
	s := &MemoryStore{
		entries: xsync.NewMapOf[string, entry](),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get implements cache.Store.
func (s *MemoryStore) Get(ctx context.Context, key string) (string, bool, error) {
	e, ok := s.entries.Load(key)
	if !ok {
		return "", false, nil
	}

	if !e.expiresAt.After(s.now()) {
		s.entries.Delete(key)
		return "", false, nil
	}

	return e.value, true, nil
}

// SetWithTTL implements cache.Store. The previous entry, if any, is fully
// replaced.
func (s *MemoryStore) SetWithTTL(ctx context.Context, key, value string, ttl time.Duration) error {
	s.entries.Store(key, entry{
		value:     value,
		expiresAt: s.now().Add(ttl),
	})
	return nil
}

// KeysMatching implements cache.Store. The pattern uses path.Match glob
// syntax, the same subset Redis evaluates server-side for SCAN MATCH.
func (s *MemoryStore) KeysMatching(ctx context.Context, pattern string) ([]string, error) {
	now := s.now()

	var keys []string
	s.entries.Range(func(key string, e entry) bool {
		if !e.expiresAt.After(now) {
			return true
		}
		if ok, err := path.Match(pattern, key); err == nil && ok {
			keys = append(keys, key)
		}
		return true
	})

	return keys, nil
}

// Delete implements cache.Store. Deleting an absent key is a no-op.
func (s *MemoryStore) Delete(ctx context.Context, key string) error {
	s.entries.Delete(key)
	return nil
}

// Len reports the number of live entries, counting entries that expired but
// have not been swept yet. Used by tests and the demo.
func (s *MemoryStore) Len() int {
	return s.entries.Size()
}
