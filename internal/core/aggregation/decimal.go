package aggregation

import (
	"math"

	"github.com/shopspring/decimal"
)

// ExactDecimal converts a float to its exact decimal representation.
// NaN and infinities have none; ok is false for them.
func ExactDecimal(v float64) (d decimal.Decimal, ok bool) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return decimal.Zero, false
	}
	return decimal.NewFromFloat(v), true
}

// DecimalOf converts an accumulator's integral for storage, preferring the
// exact sum where the accumulator keeps one.
func DecimalOf(acc Accumulator) decimal.Decimal {
	if s, ok := acc.(*Sum); ok {
		return s.Value()
	}
	d, _ := ExactDecimal(acc.Integral())
	return d
}
