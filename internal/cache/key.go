// Package cache provides the tuple-addressed client cache the dispatcher
// reconciles against. Keys are ordered scope tuples; invalidation matches
// by prefix, so invalidating ["series"] marks every cached series entry
// stale while invalidating ["series", "7"] touches a single one.
package cache

import (
	"strconv"
	"strings"
)

// Key is an ordered tuple of scope segments addressing one cached value.
type Key []string

// K builds a key from its segments.
func K(segments ...string) Key {
	return Key(segments)
}

// ID formats a numeric identifier as a key segment.
func ID(n int64) string {
	return strconv.FormatInt(n, 10)
}

// String renders the key for storage and logging.
func (k Key) String() string {
	return strings.Join(k, "/")
}

// HasPrefix reports whether k starts with the given prefix tuple.
func (k Key) HasPrefix(prefix Key) bool {
	if len(prefix) > len(k) {
		return false
	}
	for i, seg := range prefix {
		if k[i] != seg {
			return false
		}
	}
	return true
}
