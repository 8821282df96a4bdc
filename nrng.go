package nrng

import (
	"fmt"
	"math/big"
)

type pipeline struct {
	src Source
	est *estimator
	abs *absorber
}

// Generator produces non-deterministic random values of arbitrary requested
// size from one or more imperfect noise sources. Every draw runs the full
// estimate, absorb and condition pipeline from scratch, so successive values
// are independent and no entropy is ever reused across requests.
//
// Safe for concurrent use.
type Generator struct {
	pipelines []*pipeline
}

// New creates a generator. Without options it reads the operating system
// noise source; see WithSource for external sources. Each source is probed
// once up front so the first draw already has an entropy estimate.
func New(opts ...option) (*Generator, error) {
	o := defaultOptions()

	for _, opt := range opts {
		opt(&o)
	}

	if o.oversampling < 1 {
		return nil, fmt.Errorf("%w: oversampling factor %v below 1", ErrRange, o.oversampling)
	}

	if o.probeBits <= 0 || o.window <= 0 {
		return nil, fmt.Errorf("%w: probe size and window must be positive", ErrRange)
	}

	if len(o.sources) == 0 {
		o.sources = []Source{OSSource()}
	}

	g := &Generator{}

	for _, src := range o.sources {
		width := src.Width()
		if width < 1 || width > 8 {
			return nil, fmt.Errorf("%w: source symbol width %d outside 1..8", ErrRange, width)
		}

		probeSymbols := (o.probeBits + width - 1) / width

		src = withTimeout(src, o.pullTimeout)

		est := newEstimator(width, probeSymbols, o.window*probeSymbols)

		p := &pipeline{
			src: src,
			est: est,
			abs: &absorber{
				src:          src,
				est:          est,
				oversampling: o.oversampling,
				probeSymbols: probeSymbols,
			},
		}

		if err := p.abs.probe(); err != nil {
			return nil, err
		}

		g.pipelines = append(g.pipelines, p)
	}

	return g, nil
}

// draw runs one full pipeline pass per source and XORs the conditioned
// buffers together.
func (g *Generator) draw(bits int) ([]byte, error) {
	out := make([]byte, (bits+7)/8)

	for _, p := range g.pipelines {
		window, err := p.abs.absorb(bits)
		if err != nil {
			return nil, err
		}

		conditioned, err := condition(window, bits)
		if err != nil {
			return nil, err
		}

		for i := range out {
			out[i] ^= conditioned[i]
		}
	}

	return out, nil
}

// Bits returns n full-entropy random bits as a little-endian bit buffer of
// ceil(n/8) bytes; the unused high bits of the final byte are zero.
func (g *Generator) Bits(n int) ([]byte, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: bit count %d must be positive", ErrRange, n)
	}

	return g.draw(n)
}

// Float returns a uniformly distributed value in [0, 1) with exactly
// precision fraction bits. Truncation only; no rounding bias.
func (g *Generator) Float(precision int) (*big.Float, error) {
	if precision <= 0 {
		return nil, fmt.Errorf("%w: precision %d must be positive", ErrRange, precision)
	}

	buf, err := g.draw(precision)
	if err != nil {
		return nil, err
	}

	return bufferFloat(buf, precision), nil
}

// Int returns a uniformly distributed integer in [lo, hi] via rejection
// sampling. Each rejected candidate triggers a fully independent pipeline
// run; the expected number of attempts is below two.
func (g *Generator) Int(lo, hi *big.Int) (*big.Int, error) {
	if lo == nil || hi == nil {
		return nil, fmt.Errorf("%w: nil bound", ErrRange)
	}

	if hi.Cmp(lo) < 0 {
		return nil, fmt.Errorf("%w: upper bound %v below lower bound %v", ErrRange, hi, lo)
	}

	scale := new(big.Int).Sub(hi, lo)
	if scale.Sign() == 0 {
		return new(big.Int).Set(lo), nil
	}

	bits := scale.BitLen()

	for {
		buf, err := g.draw(bits)
		if err != nil {
			return nil, err
		}

		candidate := bufferInt(buf)
		if candidate.Cmp(scale) <= 0 {
			return candidate.Add(candidate, lo), nil
		}
	}
}

// Raw returns n unconditioned bits pulled straight from the sources, XORed
// together. The result is not full-entropy unless every source is; it exists
// for source diagnostics and external conditioning.
func (g *Generator) Raw(n int) ([]byte, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: bit count %d must be positive", ErrRange, n)
	}

	out := make([]byte, (n+7)/8)

	for _, p := range g.pipelines {
		width := p.src.Width()

		symbols := make([]byte, (n+width-1)/width)
		if err := pullFull(p.src, symbols); err != nil {
			return nil, err
		}

		packed := packBits(symbols, width)

		for i := range out {
			out[i] ^= packed[i]
		}
	}

	maskTail(out, n)

	return out, nil
}

// Estimates returns the current min-entropy estimate of every source, in the
// order the sources were configured.
func (g *Generator) Estimates() ([]Estimate, error) {
	estimates := make([]Estimate, 0, len(g.pipelines))

	for _, p := range g.pipelines {
		est, err := p.est.estimate()
		if err != nil {
			return nil, err
		}

		estimates = append(estimates, est)
	}

	return estimates, nil
}
