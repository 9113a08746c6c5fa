package extract

// DefaultConcurrency is the number of files parsed at once.
const DefaultConcurrency = 8

// Options configures the behavior of the extractor.
type Options struct {
	// Concurrency is the number of concurrent workers parsing files.
	Concurrency int
}

// DefaultOptions returns the default configuration.
func DefaultOptions() Options {
	return Options{
		Concurrency: DefaultConcurrency,
	}
}

// WithConcurrency sets the number of concurrent workers.
func (o Options) WithConcurrency(n int) Options {
	if n > 0 {
		o.Concurrency = n
	}
	return o
}
