package nrng

import (
	"math"
)

// A zero estimate triggers a re-probe of the source; after this many failed
// attempts the source is reported dead.
const deadSourceRetries = 3

// absorber sizes and collects the raw symbol window for one output request.
// The required symbol count is recomputed from a fresh estimate on every call,
// so a source that degrades mid-run is compensated on the next call.
type absorber struct {
	src Source
	est *estimator

	oversampling float64
	probeSymbols int
}

// probe pulls a fixed-size batch from the source purely to feed the
// estimator's rolling window.
func (a *absorber) probe() error {
	batch := make([]byte, a.probeSymbols)

	if err := pullFull(a.src, batch); err != nil {
		return err
	}

	a.est.feed(batch)

	return nil
}

// absorb pulls exactly ceil(bits*oversampling/hmin) raw symbols for a request
// of bits output bits. Absorbed symbols are fed back into the estimator so
// the bound tracks source drift.
func (a *absorber) absorb(bits int) ([]byte, error) {
	if bits <= 0 {
		return nil, ErrConditioning
	}

	for range deadSourceRetries {
		est, err := a.est.estimate()
		if err != nil {
			return nil, err
		}

		if est.HMin == 0 {
			if err := a.probe(); err != nil {
				return nil, err
			}

			continue
		}

		need := int(math.Ceil(float64(bits) * a.oversampling / est.HMin))

		window := make([]byte, need)
		if err := pullFull(a.src, window); err != nil {
			return nil, err
		}

		a.est.feed(window)

		return window, nil
	}

	return nil, ErrDeadSource
}
