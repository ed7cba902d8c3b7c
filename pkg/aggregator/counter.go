package aggregator

import (
	"time"

	"github.com/ccollicutt/honeylog/pkg/extractor"
)

// BucketLayout formats a minute bucket key.
const BucketLayout = "2006-01-02 15:04"

// Counter counts events per key.
type Counter struct {
	key    KeyFunc
	counts map[Key]int
}

// NewCounter creates a Counter that counts each event under the key chosen by fn.
func NewCounter(fn KeyFunc) *Counter {
	return &Counter{
		key:    fn,
		counts: make(map[Key]int),
	}
}

// NewMinuteCounter creates a Counter that counts events per whole minute of
// the timestamp chosen by fn. Bucket keys use BucketLayout, so ordering keys
// lexically orders them chronologically.
func NewMinuteCounter(fn TimeFunc) *Counter {
	return NewCounter(func(ev extractor.Event) (Key, bool) {
		ts, ok := fn(ev)
		if !ok {
			return Key{}, false
		}
		return Single(MinuteBucket(ts)), true
	})
}

// MinuteBucket truncates ts to the minute and formats it with BucketLayout.
func MinuteBucket(ts time.Time) string {
	return ts.Truncate(time.Minute).Format(BucketLayout)
}

// Aggregate increments the counter for the event's key.
func (c *Counter) Aggregate(ev extractor.Event) {
	k, ok := c.key(ev)
	if !ok {
		return
	}
	c.counts[k]++
}

// Finalize returns a copy of the counts.
func (c *Counter) Finalize() Metrics {
	m := make(Metrics, len(c.counts))
	for k, n := range c.counts {
		m[k] = n
	}
	return m
}

// Reset clears all counts.
func (c *Counter) Reset() {
	c.counts = make(map[Key]int)
}
