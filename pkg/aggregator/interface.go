// Package aggregator folds extracted events into per-key metrics.
package aggregator

import (
	"time"

	"github.com/ccollicutt/honeylog/pkg/extractor"
)

// Aggregator consumes events and produces a metric per key.
type Aggregator interface {
	// Aggregate folds a single event into the aggregate.
	// Events the aggregator has no key for are ignored.
	Aggregate(ev extractor.Event)

	// Finalize returns the metric for every key seen so far.
	Finalize() Metrics

	// Reset clears internal state for reuse.
	Reset()
}

// Metrics maps each aggregate key to its metric (a count or a cardinality).
type Metrics map[Key]int

// KeyFunc selects the key an event is counted under.
type KeyFunc func(ev extractor.Event) (Key, bool)

// TimeFunc selects the timestamp an event is bucketed by.
type TimeFunc func(ev extractor.Event) (time.Time, bool)

// PairFunc selects the primary key of an event and the secondary value
// whose distinct occurrences are counted for that key.
type PairFunc func(ev extractor.Event) (primary Key, member string, ok bool)
