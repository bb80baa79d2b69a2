package cache

import (
	"strconv"
	"strings"
)

// KeySeparator defines the delimiter used between cache key segments.
const KeySeparator = ":"

// Keys composes the fixed-shape cache keys and invalidation patterns used by
// the listing layer. Keys are deterministic: the same scope and page always
// produce the same key, on both the populate and the lookup path.
//
// Shapes:
//
//	<prefix>:page:<n>               all-posts listing page
//	<prefix>:user:<username>:page:<n>  author-scoped listing page
//	<prefix>:detail:<id>            single post detail
type Keys struct {
	prefix string
}

// NewKeys creates a key builder namespaced under prefix. An empty prefix
// falls back to DefaultKeyPrefix.
func NewKeys(prefix string) Keys {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return Keys{prefix: prefix}
}

// Page returns the key for a page of the all-posts listing.
func (k Keys) Page(page int) string {
	return k.join("page", strconv.Itoa(page))
}

// AuthorPage returns the key for a page of one author's listing.
func (k Keys) AuthorPage(username string, page int) string {
	return k.join("user", Segment(username), "page", strconv.Itoa(page))
}

// DetailKey returns the key for a single post detail entry.
func (k Keys) DetailKey(id string) string {
	return k.join("detail", Segment(id))
}

// AllPagesPattern matches every cached page of the all-posts listing.
func (k Keys) AllPagesPattern() string {
	return k.join("page", "*")
}

// AuthorPattern matches every cached entry scoped to username.
func (k Keys) AuthorPattern(username string) string {
	return k.join("user", Segment(username), "*")
}

func (k Keys) join(parts ...string) string {
	return k.prefix + KeySeparator + strings.Join(parts, KeySeparator)
}
