package query

import "strings"

// Key identifies a cached resource, e.g. Key{"notes", videoID}.
type Key []string

// String joins the elements with ':'.
func (k Key) String() string {
	return strings.Join(k, ":")
}

// HasPrefix reports whether k starts with every element of prefix.
// An empty prefix matches every key.
func (k Key) HasPrefix(prefix Key) bool {
	if len(prefix) > len(k) {
		return false
	}
	for i := range prefix {
		if k[i] != prefix[i] {
			return false
		}
	}
	return true
}

// Equal reports element-wise equality.
func (k Key) Equal(other Key) bool {
	return len(k) == len(other) && k.HasPrefix(other)
}

func (k Key) clone() Key {
	out := make(Key, len(k))
	copy(out, k)
	return out
}

// mapKey is unambiguous even when elements contain ':'.
func (k Key) mapKey() string {
	return strings.Join(k, "\x00")
}
