// Package cache defines the caching contracts and key composition used by
// the blog listing layer.
//
// # Overview
//
// The package exports two backend contracts and their supporting types:
//
//   - Store: a plain key-value surface with per-entry TTL and glob key
//     matching, used by the listing cache-aside service
//   - ReadThrough: a get-or-fetch surface for single-record lookups such as
//     post detail views
//
// Backends live in internal/cacheinfra; everything above them depends only
// on these interfaces so tests can substitute fakes.
//
// # Key composition
//
// Listing keys are fixed-shape strings built by Keys:
//
//	posts:page:3
//	posts:user:alice:page:2
//	posts:detail:1f1e...
//
// and the matching invalidation patterns:
//
//	posts:page:*
//	posts:user:alice:*
//
// User-supplied segments pass through Segment, which strips separator and
// glob characters so a hostile username cannot widen an invalidation
// pattern.
//
// # Invalidation model
//
// Entries are never rewritten in place. A write to the posts collection
// deletes every key matching the affected patterns; the next read misses and
// repopulates. Store backends only need Get, SetWithTTL, KeysMatching and
// Delete for this to work.
package cache
