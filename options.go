package nrng

import "time"

type options struct {
	sources      []Source
	oversampling float64
	probeBits    int
	window       int
	pullTimeout  time.Duration
}

type option func(*options)

func defaultOptions() options {
	return options{
		oversampling: 2.0,
		probeBits:    8192,
		window:       31,
		pullTimeout:  30 * time.Second,
	}
}

// WithSource adds a noise source. May be given multiple times; each source
// gets its own estimation pipeline and the conditioned outputs are combined
// by XOR, so the result is at least as strong as the strongest source. If no
// source is given, the OS source is used.
func WithSource(src Source) option {
	return func(o *options) {
		o.sources = append(o.sources, src)
	}
}

// WithOversampling sets the safety margin multiplying the theoretically
// required raw-symbol count (default 2.0, minimum 1.0), compensating for
// estimator imprecision.
func WithOversampling(factor float64) option {
	return func(o *options) {
		o.oversampling = factor
	}
}

// WithProbeSize sets the size in bits of the initial probe read and of each
// re-probe after a zero estimate (default 8192).
func WithProbeSize(bits int) option {
	return func(o *options) {
		o.probeBits = bits
	}
}

// WithWindow sets the length of the rolling estimator window as a multiple
// of the probe size (default 31). Older samples beyond the window no longer
// influence the estimate, so drift in source quality is tracked.
func WithWindow(batches int) option {
	return func(o *options) {
		o.window = batches
	}
}

// WithPullTimeout bounds every blocking source pull (default 30s). An expired
// pull surfaces ErrSourceTimeout. Zero disables the deadline.
func WithPullTimeout(timeout time.Duration) option {
	return func(o *options) {
		o.pullTimeout = timeout
	}
}
