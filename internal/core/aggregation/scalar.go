package aggregation

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	engerr "github.com/hepframe/hepframe/internal/core/errors"
)

// Count tallies fills; the value is ignored.
type Count struct {
	n int64
}

func (c *Count) Kind() string       { return KindCount }
func (c *Count) Fill(float64)       { c.n++ }
func (c *Count) Integral() float64  { return float64(c.n) }
func (c *Count) Entries() int64     { return c.n }
func (c *Count) Empty() Accumulator { return &Count{} }

func (c *Count) Merge(other Accumulator) error {
	o, ok := other.(*Count)
	if !ok {
		return fmt.Errorf("%w: cannot merge %s into %s", engerr.ErrShapeMismatch, other.Kind(), KindCount)
	}
	c.n += o.n
	return nil
}

// Sum accumulates an exact decimal sum, so the total does not depend on the
// order partials are merged in. Non-finite values are counted but skipped.
type Sum struct {
	total   decimal.Decimal
	entries int64
	skipped int64
}

func NewSum() *Sum {
	return &Sum{total: decimal.Zero}
}

func (s *Sum) Kind() string { return KindSum }

func (s *Sum) Fill(v float64) {
	s.entries++
	d, ok := ExactDecimal(v)
	if !ok {
		s.skipped++
		return
	}
	s.total = s.total.Add(d)
}

func (s *Sum) Merge(other Accumulator) error {
	o, ok := other.(*Sum)
	if !ok {
		return fmt.Errorf("%w: cannot merge %s into %s", engerr.ErrShapeMismatch, other.Kind(), KindSum)
	}
	s.total = s.total.Add(o.total)
	s.entries += o.entries
	s.skipped += o.skipped
	return nil
}

func (s *Sum) Integral() float64      { return s.total.InexactFloat64() }
func (s *Sum) Entries() int64         { return s.entries }
func (s *Sum) Empty() Accumulator     { return NewSum() }
func (s *Sum) Value() decimal.Decimal { return s.total }
func (s *Sum) Skipped() int64         { return s.skipped }

// Extremum tracks the minimum or maximum filled value. NaN is ignored.
type Extremum struct {
	kind    string
	value   float64
	set     bool
	entries int64
}

func (e *Extremum) Kind() string { return e.kind }

func (e *Extremum) Fill(v float64) {
	e.entries++
	if math.IsNaN(v) {
		return
	}
	if !e.set || e.better(v) {
		e.value = v
		e.set = true
	}
}

func (e *Extremum) better(v float64) bool {
	if e.kind == KindMin {
		return v < e.value
	}
	return v > e.value
}

func (e *Extremum) Merge(other Accumulator) error {
	o, ok := other.(*Extremum)
	if !ok || o.kind != e.kind {
		return fmt.Errorf("%w: cannot merge %s into %s", engerr.ErrShapeMismatch, other.Kind(), e.kind)
	}
	e.entries += o.entries
	if o.set && (!e.set || e.better(o.value)) {
		e.value = o.value
		e.set = true
	}
	return nil
}

// Integral returns the extremum, or zero when nothing was filled.
func (e *Extremum) Integral() float64 {
	if !e.set {
		return 0
	}
	return e.value
}

func (e *Extremum) Entries() int64     { return e.entries }
func (e *Extremum) Empty() Accumulator { return &Extremum{kind: e.kind} }

// Value returns the extremum and whether any value was filled.
func (e *Extremum) Value() (float64, bool) { return e.value, e.set }
