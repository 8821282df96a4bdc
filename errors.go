package nrng

import "errors"

var (
	// ErrInsufficientSample is returned when the estimator has not yet seen
	// enough symbols to produce a min-entropy bound. Recoverable: retry after
	// the source has produced more data.
	ErrInsufficientSample = errors.New("not enough samples for an entropy estimate")

	// ErrDeadSource is returned when the estimated min-entropy of a source is
	// zero and repeated re-probing did not recover it. The pipeline never
	// substitutes zero-entropy bits.
	ErrDeadSource = errors.New("source min-entropy is zero")

	// ErrSourceUnavailable is returned when the underlying noise source cannot
	// be opened or read at all.
	ErrSourceUnavailable = errors.New("entropy source unavailable")

	// ErrSourceTimeout is returned when a blocking pull from the source
	// exceeds the configured deadline.
	ErrSourceTimeout = errors.New("entropy source read timed out")

	// ErrConditioning signals an internal invariant violation in the
	// conditioner. It indicates a programming defect, not bad source data.
	ErrConditioning = errors.New("conditioning invariant violated")

	// ErrRange is returned for invalid caller-supplied bounds or sizes.
	ErrRange = errors.New("invalid range")
)
