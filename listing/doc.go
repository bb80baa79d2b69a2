// Package listing implements the cache-aside query service for paginated
// blog post listings.
//
// # Read path
//
// GetPage composes a deterministic key from the scope and page number and
// checks the cache store. A hit decodes and returns without touching the
// persistence layer. A miss queries the source for the page (sorted by
// creation time descending) and the total count, computes the page
// arithmetic, populates the store under a fixed TTL and returns the result.
//
// # Write path
//
// Mutations do not go through this package; write-side callers invoke
// Invalidate with a pattern after their mutation commits. Invalidation
// always deletes, never rewrites: the next read misses and repopulates.
//
// # Failure semantics
//
// The cache store is an optimization. Read, populate and decode failures are
// logged and absorbed, degrading to a direct source read. Source failures
// are the only errors GetPage returns, coded data_unavailable. Invalidation
// failures are returned coded cache_unavailable so the write side can log
// and continue; the write itself is never rolled back.
//
// # Known race
//
// A read that misses while a concurrent write+invalidate runs can repopulate
// the cache with pre-write data after the invalidation already swept the
// key, leaving the entry stale until its TTL expires. Closing the window
// would take per-key locking or versioned keys; neither is implemented and
// the race is accepted as bounded by the TTL.
package listing
