package aggregator

// AtLeast returns the entries of m whose metric is >= minimum.
// The bound is inclusive. m is not modified.
func AtLeast(m Metrics, minimum int) Metrics {
	out := make(Metrics, len(m))
	for k, v := range m {
		if v >= minimum {
			out[k] = v
		}
	}
	return out
}
