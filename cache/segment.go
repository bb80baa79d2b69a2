package cache

import "strings"

const hexDigits = "0123456789abcdef"

// Segment encodes a user-supplied value (usernames, IDs) into a safe cache
// key segment. Separator or glob characters leaking into a segment would
// break the pattern-based invalidation strategy, so every byte outside
// [A-Za-z0-9] is written as "_" followed by its two-digit hex code. The
// escape byte itself is escaped, which makes the encoding injective:
// usernames are identity, and two distinct authors must never share a key.
func Segment(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
			b.WriteByte(c)
		default:
			b.WriteByte('_')
			b.WriteByte(hexDigits[c>>4])
			b.WriteByte(hexDigits[c&0x0f])
		}
	}

	return b.String()
}
