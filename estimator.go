package nrng

import (
	"fmt"
	"math"
	"sync"
	"time"
)

// One-sided upper confidence bound multiplier for the most-common-value and
// collision proportions, following SP 800-90B (99% confidence).
const confidenceZ = 2.576

const historyMask = 0x7F

// Estimate is a conservative lower bound on the min-entropy per symbol of a
// source, together with the method that produced the bound.
type Estimate struct {
	HMin   float64
	Method string
	Seq    uint64
	When   time.Time
}

// batchStats holds the statistics of one absorbed batch of symbols. Batches
// are the eviction unit of the rolling window: dropping the oldest batch
// subtracts its stats from the running aggregates.
type batchStats struct {
	n       int
	pairs   int
	repeats int
	bits    int
	counts  []uint32
	hist    [][2]uint32
}

// estimator tracks rolling statistics over the most recent batches of raw
// symbols and derives a min-entropy bound from three methods: most common
// value, collision rate, and a first-order bit predictor over a 7-bit
// history. The final bound is the minimum of the three, clamped to [0, w].
//
// Safe for concurrent feeds and estimates; readers never observe a
// half-applied batch.
type estimator struct {
	mu sync.Mutex

	width         int
	minSamples    int
	windowSymbols int

	batches []batchStats

	symbols int
	pairs   int
	repeats int
	bits    int
	counts  []uint64
	hist    [128][2]uint64

	seq uint64
}

func newEstimator(width, minSamples, windowSymbols int) *estimator {
	return &estimator{
		width:         width,
		minSamples:    minSamples,
		windowSymbols: windowSymbols,
		counts:        make([]uint64, 1<<width),
	}
}

// feed absorbs one batch of raw symbols into the rolling window, evicting the
// oldest batch once the window is full. Symbols are only ever counted here;
// they are never retained.
func (e *estimator) feed(symbols []byte) {
	if len(symbols) == 0 {
		return
	}

	batch := e.measure(symbols)

	e.mu.Lock()
	defer e.mu.Unlock()

	e.add(batch)
	e.batches = append(e.batches, batch)

	// Evict whole batches from the front, but never shrink the window below
	// its symbol budget.
	for len(e.batches) > 1 && e.symbols-e.batches[0].n >= e.windowSymbols {
		e.remove(e.batches[0])

		e.batches[0] = batchStats{}
		e.batches = e.batches[1:]
	}
}

// measure computes the per-batch statistics outside the lock.
func (e *estimator) measure(symbols []byte) batchStats {
	batch := batchStats{
		n:      len(symbols),
		pairs:  len(symbols) - 1,
		counts: make([]uint32, 1<<e.width),
		hist:   make([][2]uint32, 128),
	}

	mask := byte(1<<e.width) - 1

	var (
		prev    byte
		history uint8
	)

	for i, s := range symbols {
		s &= mask

		batch.counts[s]++

		if i > 0 && s == prev {
			batch.repeats++
		}

		prev = s

		for j := e.width - 1; j >= 0; j-- {
			bit := (s >> j) & 1

			batch.hist[history][bit]++

			history = ((history << 1) | bit) & historyMask

			batch.bits++
		}
	}

	return batch
}

func (e *estimator) add(batch batchStats) {
	e.symbols += batch.n
	e.pairs += batch.pairs
	e.repeats += batch.repeats
	e.bits += batch.bits

	for v, c := range batch.counts {
		e.counts[v] += uint64(c)
	}

	for h, c := range batch.hist {
		e.hist[h][0] += uint64(c[0])
		e.hist[h][1] += uint64(c[1])
	}
}

func (e *estimator) remove(batch batchStats) {
	e.symbols -= batch.n
	e.pairs -= batch.pairs
	e.repeats -= batch.repeats
	e.bits -= batch.bits

	for v, c := range batch.counts {
		e.counts[v] -= uint64(c)
	}

	for h, c := range batch.hist {
		e.hist[h][0] -= uint64(c[0])
		e.hist[h][1] -= uint64(c[1])
	}
}

// estimate derives the current min-entropy bound from the rolling window.
// Safe to call concurrently with feed.
func (e *estimator) estimate() (Estimate, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.symbols < e.minSamples {
		return Estimate{}, fmt.Errorf("%w: have %d symbols, need %d", ErrInsufficientSample, e.symbols, e.minSamples)
	}

	w := float64(e.width)

	est := Estimate{
		HMin:   e.mostCommonValue(),
		Method: "mcv",
	}

	if h := e.collision(); h < est.HMin {
		est.HMin = h
		est.Method = "collision"
	}

	if h := e.markov(); h < est.HMin {
		est.HMin = h
		est.Method = "markov"
	}

	est.HMin = max(0, min(est.HMin, w))

	e.seq++

	est.Seq = e.seq
	est.When = time.Now()

	return est, nil
}

// mostCommonValue bounds min-entropy by the upper confidence bound on the
// proportion of the modal symbol value.
func (e *estimator) mostCommonValue() float64 {
	var cmax uint64

	for _, c := range e.counts {
		if c > cmax {
			cmax = c
		}
	}

	n := float64(e.symbols)
	p := float64(cmax) / n

	p = upperBound(p, n)
	if p >= 1 {
		return 0
	}

	return -math.Log2(p)
}

// collision bounds min-entropy from the rate of adjacent symbol repeats. For
// an iid source the repeat probability is the collision probability sum(p^2);
// solving the heavy-element family p^2 + (1-p)^2/(k-1) = pc for p gives a
// conservative modal probability.
func (e *estimator) collision() float64 {
	if e.pairs == 0 {
		return float64(e.width)
	}

	n := float64(e.pairs)
	pc := float64(e.repeats) / n

	pc = upperBound(pc, n)

	k := float64(uint64(1) << e.width)

	disc := 1 - k + k*(k-1)*pc
	if disc <= 0 {
		// Fewer collisions than a uniform source; no evidence against full
		// entropy from this method.
		return float64(e.width)
	}

	p := (1 + math.Sqrt(disc)) / k
	if p >= 1 {
		return 0
	}

	return -math.Log2(p)
}

// markov bounds min-entropy by the success rate of an optimal single-bit
// predictor conditioned on the previous 7 bits of the stream. The transition
// table follows the hardware health-check scheme.
func (e *estimator) markov() float64 {
	var won, total uint64

	for _, c := range e.hist {
		won += max(c[0], c[1])
		total += c[0] + c[1]
	}

	if total == 0 {
		return float64(e.width)
	}

	p := float64(won) / float64(total)
	if p >= 1 {
		return 0
	}

	return -math.Log2(p) * float64(e.width)
}

// upperBound lifts an observed proportion to its one-sided 99% upper
// confidence bound.
func upperBound(p, n float64) float64 {
	u := p + confidenceZ*math.Sqrt(p*(1-p)/n)

	return min(u, 1)
}
