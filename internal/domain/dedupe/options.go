package dedupe

// Option applies a configuration option to the Deduper.
type Option func(*seenSet)

// WithMaxSize bounds the number of ids kept in memory. Zero or
// negative means unbounded.
func WithMaxSize(n int) Option {
	return func(d *seenSet) {
		d.maxSize = n
	}
}
