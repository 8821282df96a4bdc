package nrng

import (
	"time"
)

// Source supplies an unbounded stream of raw entropy symbols from a noise
// source. No independence or uniformity is assumed; the pipeline measures
// both.
//
// Symbols travel one per byte, carried in the low Width bits. Pull blocks
// until len(p) symbols are available or the source fails.
type Source interface {
	Width() int
	Pull(p []byte) (int, error)
}

// pullFull keeps pulling until p is completely filled.
func pullFull(src Source, p []byte) error {
	n := 0

	for n < len(p) {
		m, err := src.Pull(p[n:])
		if err != nil {
			return err
		}

		if m == 0 {
			return ErrSourceUnavailable
		}

		n += m
	}

	return nil
}

type pullResult struct {
	n   int
	err error
}

// timeoutSource bounds every pull with a deadline. A pull that overruns fails
// with ErrSourceTimeout; the pipeline never falls back to weaker entropy.
type timeoutSource struct {
	src     Source
	timeout time.Duration
}

func withTimeout(src Source, timeout time.Duration) Source {
	if timeout <= 0 {
		return src
	}

	return &timeoutSource{src: src, timeout: timeout}
}

func (s *timeoutSource) Width() int {
	return s.src.Width()
}

func (s *timeoutSource) Pull(p []byte) (int, error) {
	// The inner pull writes into its own buffer so an abandoned pull cannot
	// race a caller that reuses p.
	buf := make([]byte, len(p))
	done := make(chan pullResult, 1)

	go func() {
		n, err := s.src.Pull(buf)

		done <- pullResult{n: n, err: err}
	}()

	timer := time.NewTimer(s.timeout)
	defer timer.Stop()

	select {
	case res := <-done:
		copy(p, buf[:res.n])

		return res.n, res.err
	case <-timer.C:
		return 0, ErrSourceTimeout
	}
}
