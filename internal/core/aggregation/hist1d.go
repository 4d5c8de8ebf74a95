package aggregation

import (
	"fmt"
	"math"

	engerr "github.com/hepframe/hepframe/internal/core/errors"
)

// Hist1D is a fixed-bin one-dimensional histogram over [Low, High).
// Values outside the range, and NaN, are tallied as underflow or overflow
// and never contribute to the integral.
type Hist1D struct {
	bins      int
	low       float64
	high      float64
	width     float64
	counts    []uint64
	underflow uint64
	overflow  uint64
}

// NewHist1D returns an empty histogram with bins equal-width bins.
func NewHist1D(bins int, low, high float64) (*Hist1D, error) {
	cfg := Config{Bins: bins, Low: low, High: high}
	if err := cfg.validateBinning(); err != nil {
		return nil, err
	}
	return &Hist1D{
		bins:   bins,
		low:    low,
		high:   high,
		width:  (high - low) / float64(bins),
		counts: make([]uint64, bins),
	}, nil
}

func newHist1D(cfg Config) (Accumulator, error) {
	return NewHist1D(cfg.Bins, cfg.Low, cfg.High)
}

func (h *Hist1D) Kind() string { return KindHist1D }

func (h *Hist1D) Fill(v float64) {
	switch {
	case v < h.low:
		h.underflow++
	case v >= h.high || math.IsNaN(v):
		h.overflow++
	default:
		i := int((v - h.low) / h.width)
		// rounding can land a value just below high in bin == bins
		if i >= h.bins {
			i = h.bins - 1
		}
		h.counts[i]++
	}
}

func (h *Hist1D) Merge(other Accumulator) error {
	o, ok := other.(*Hist1D)
	if !ok {
		return fmt.Errorf("%w: cannot merge %s into %s", engerr.ErrShapeMismatch, other.Kind(), KindHist1D)
	}
	if o.bins != h.bins || o.low != h.low || o.high != h.high {
		return fmt.Errorf("%w: hist1d(%d, %g, %g) vs hist1d(%d, %g, %g)",
			engerr.ErrShapeMismatch, h.bins, h.low, h.high, o.bins, o.low, o.high)
	}
	for i, c := range o.counts {
		h.counts[i] += c
	}
	h.underflow += o.underflow
	h.overflow += o.overflow
	return nil
}

func (h *Hist1D) Integral() float64 {
	var total uint64
	for _, c := range h.counts {
		total += c
	}
	return float64(total)
}

func (h *Hist1D) Entries() int64 {
	n := h.underflow + h.overflow
	for _, c := range h.counts {
		n += c
	}
	return int64(n)
}

func (h *Hist1D) Empty() Accumulator {
	return &Hist1D{bins: h.bins, low: h.low, high: h.high, width: h.width, counts: make([]uint64, h.bins)}
}

// Counts returns a copy of the in-range bin counts.
func (h *Hist1D) Counts() []uint64 {
	out := make([]uint64, len(h.counts))
	copy(out, h.counts)
	return out
}

// Bins returns the number of bins.
func (h *Hist1D) Bins() int { return h.bins }

// Range returns the low and high edges.
func (h *Hist1D) Range() (low, high float64) { return h.low, h.high }

// BinEdges returns the lower and upper edge of bin i.
func (h *Hist1D) BinEdges(i int) (float64, float64) {
	lo := h.low + float64(i)*h.width
	if i == h.bins-1 {
		return lo, h.high
	}
	return lo, lo + h.width
}

// Underflow and Overflow return the out-of-range tallies.
func (h *Hist1D) Underflow() uint64 { return h.underflow }
func (h *Hist1D) Overflow() uint64  { return h.overflow }
