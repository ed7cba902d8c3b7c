package aggregator

import "strings"

// Key identifies an aggregate group: a single value such as an IP or a
// command, or an ordered pair such as (username, password).
// Keys are compared by exact value.
type Key struct {
	values [2]string
	n      int
}

// Single returns a one-part key.
func Single(v string) Key {
	return Key{values: [2]string{v}, n: 1}
}

// Pair returns a two-part key.
func Pair(a, b string) Key {
	return Key{values: [2]string{a, b}, n: 2}
}

// Parts returns the key's values in order.
func (k Key) Parts() []string {
	parts := make([]string, k.n)
	copy(parts, k.values[:k.n])
	return parts
}

// Len returns the number of parts in the key.
func (k Key) Len() int {
	return k.n
}

// String joins the key parts with a single space.
func (k Key) String() string {
	return strings.Join(k.values[:k.n], " ")
}

// Less orders keys part by part, then by length.
func (k Key) Less(other Key) bool {
	for i := 0; i < k.n && i < other.n; i++ {
		if k.values[i] != other.values[i] {
			return k.values[i] < other.values[i]
		}
	}
	return k.n < other.n
}
