package listing

import (
	"context"

	"go.uber.org/zap"

	"github.com/goliatone/go-blog-cache/cache"
	"github.com/goliatone/go-blog-cache/pkg/errors"
)

// Scope identifies the listing dimension. The zero value is the all-posts
// listing; a non-empty Author narrows it to one author's posts.
type Scope struct {
	Author string
}

// All returns the scope covering every post.
func All() Scope {
	return Scope{}
}

// ByAuthor returns the scope covering one author's posts.
func ByAuthor(username string) Scope {
	return Scope{Author: username}
}

// Page is one page of a listing, the unit stored under a cache key. It is
// fully replaced on every populate, never patched.
type Page[T any] struct {
	Items      []T `msgpack:"items" json:"items"`
	Page       int `msgpack:"page" json:"page"`
	TotalPages int `msgpack:"total_pages" json:"total_pages"`
	TotalCount int `msgpack:"total_count" json:"total_count"`
}

// Source is the persistence surface the service reads through on a miss.
// FindPage must return items sorted by creation time descending; that
// ordering is part of the listing contract, not an implementation detail.
type Source[T any] interface {
	FindPage(ctx context.Context, scope Scope, offset, limit int) ([]T, error)
	Count(ctx context.Context, scope Scope) (int, error)
}

// Service serves paginated listings cache-aside: hits come straight from the
// cache store, misses query the source and populate the store with a fixed
// TTL. Cache store failures are absorbed here; callers only ever see source
// failures.
type Service[T any] struct {
	store  cache.Store
	source Source[T]
	keys   cache.Keys
	cfg    cache.Config
	log    *zap.Logger
}

// New creates a listing service. A nil logger is replaced with a nop logger.
func New[T any](store cache.Store, source Source[T], keys cache.Keys, cfg cache.Config, log *zap.Logger) (*Service[T], error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &Service[T]{
		store:  store,
		source: source,
		keys:   keys,
		cfg:    cfg,
		log:    log,
	}, nil
}

// GetPage returns one page of the listing identified by scope. Out-of-range
// page and pageSize values are normalized, not rejected: page < 1 becomes 1
// and pageSize < 1 falls back to the configured default.
//
// The cached and uncached paths produce identical results for a fixed
// database state; the cache only changes who answers, never the answer.
func (s *Service[T]) GetPage(ctx context.Context, scope Scope, page, pageSize int) (Page[T], error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = s.cfg.PageSize
	}

	key := s.pageKey(scope, page)

	raw, hit, err := s.store.Get(ctx, key)
	if err != nil {
		s.log.Warn("cache read failed, serving from source",
			zap.String("key", key),
			zap.Error(err))
	} else if hit {
		result, derr := decodePage[T](raw)
		if derr == nil {
			return result, nil
		}
		s.log.Warn("cache entry undecodable, refetching",
			zap.String("key", key),
			zap.Error(derr))
	}

	items, err := s.source.FindPage(ctx, scope, (page-1)*pageSize, pageSize)
	if err != nil {
		return Page[T]{}, errors.NewAppError(errors.ErrDataUnavailable, "listing page query failed", err)
	}

	totalCount, err := s.source.Count(ctx, scope)
	if err != nil {
		return Page[T]{}, errors.NewAppError(errors.ErrDataUnavailable, "listing count query failed", err)
	}

	result := Page[T]{
		Items:      items,
		Page:       page,
		TotalPages: totalPages(totalCount, pageSize),
		TotalCount: totalCount,
	}

	s.populate(ctx, key, result)

	return result, nil
}

// Invalidate purges every cache entry matching the glob pattern. Zero
// matches is a no-op and calling it twice leaves the same final state as
// calling it once. The error return carries a cache_unavailable code; write
// paths log it and continue, since the mutation already committed and the
// staleness self-heals at TTL expiry.
func (s *Service[T]) Invalidate(ctx context.Context, pattern string) error {
	keys, err := s.store.KeysMatching(ctx, pattern)
	if err != nil {
		return errors.NewAppError(errors.ErrCacheUnavailable, "cache key scan failed", err)
	}

	for _, key := range keys {
		if err := s.store.Delete(ctx, key); err != nil {
			return errors.NewAppError(errors.ErrCacheUnavailable, "cache key delete failed", err)
		}
	}

	return nil
}

// Keys exposes the key builder so write-side callers compose invalidation
// patterns against the same namespace the service populates.
func (s *Service[T]) Keys() cache.Keys {
	return s.keys
}

// populate writes a freshly fetched page to the cache store. Failure is
// logged and absorbed; the cache is an optimization, not a correctness
// dependency.
func (s *Service[T]) populate(ctx context.Context, key string, result Page[T]) {
	raw, err := encodePage(result)
	if err != nil {
		s.log.Warn("cache encode failed, skipping populate",
			zap.String("key", key),
			zap.Error(err))
		return
	}

	if err := s.store.SetWithTTL(ctx, key, raw, s.cfg.TTL); err != nil {
		s.log.Warn("cache populate failed",
			zap.String("key", key),
			zap.Error(err))
	}
}

func (s *Service[T]) pageKey(scope Scope, page int) string {
	if scope.Author == "" {
		return s.keys.Page(page)
	}
	return s.keys.AuthorPage(scope.Author, page)
}

// totalPages is ceil(totalCount / pageSize); an empty collection has zero
// pages, not one.
func totalPages(totalCount, pageSize int) int {
	if totalCount <= 0 {
		return 0
	}
	return (totalCount + pageSize - 1) / pageSize
}
