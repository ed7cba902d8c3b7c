package aggregator

import "github.com/ccollicutt/honeylog/pkg/extractor"

// UniqueCounter tracks the set of distinct members seen for each key and
// reports the size of each set.
type UniqueCounter struct {
	pair PairFunc
	sets map[Key]map[string]struct{}
}

// NewUniqueCounter creates a UniqueCounter using fn to pick the key and member.
func NewUniqueCounter(fn PairFunc) *UniqueCounter {
	return &UniqueCounter{
		pair: fn,
		sets: make(map[Key]map[string]struct{}),
	}
}

// Aggregate adds the event's member to its key's set. Repeated members are
// recorded once.
func (u *UniqueCounter) Aggregate(ev extractor.Event) {
	k, member, ok := u.pair(ev)
	if !ok {
		return
	}

	set, exists := u.sets[k]
	if !exists {
		set = make(map[string]struct{})
		u.sets[k] = set
	}
	set[member] = struct{}{}
}

// Finalize returns the cardinality of each key's set.
func (u *UniqueCounter) Finalize() Metrics {
	m := make(Metrics, len(u.sets))
	for k, set := range u.sets {
		m[k] = len(set)
	}
	return m
}

// Reset clears all sets.
func (u *UniqueCounter) Reset() {
	u.sets = make(map[Key]map[string]struct{})
}
