package cache

import (
	"context"
	"errors"
)

// ErrInvalidResultType is returned when a cached value does not match the
// type requested by the caller.
var ErrInvalidResultType = errors.New("cache: cached value has unexpected type")

// FetchFn is the function signature ReadThrough expects when fetching from
// the source of truth.
type FetchFn[T any] func(ctx context.Context) (T, error)

// ReadThrough exposes read-through caching for single-record lookups, such
// as post detail views. It is separate from Store: read-through backends own
// their TTL and never need pattern matching, while the listing Store is a
// plain key-value surface the invalidation primitive can sweep.
type ReadThrough interface {
	GetOrFetch(ctx context.Context, key string, fetch func(context.Context) (any, error)) (any, error)
	Forget(ctx context.Context, key string) error
}

// GetOrFetch is a type-safe wrapper around ReadThrough.GetOrFetch.
func GetOrFetch[T any](ctx context.Context, rt ReadThrough, key string, fetch FetchFn[T]) (T, error) {
	result, err := rt.GetOrFetch(ctx, key, func(ctx context.Context) (any, error) {
		return fetch(ctx)
	})
	if err != nil {
		var zero T
		return zero, err
	}

	if result == nil {
		var zero T
		return zero, nil
	}

	typed, ok := result.(T)
	if !ok {
		var zero T
		return zero, ErrInvalidResultType
	}
	return typed, nil
}
