package aggregation

import (
	"fmt"
	"math"
)

// Supported accumulator kinds.
const (
	KindHist1D = "hist1d"
	KindCount  = "count"
	KindSum    = "sum"
	KindMin    = "min"
	KindMax    = "max"
)

// Config parameterizes an accumulator at construction. Only hist1d reads the
// binning fields; the other kinds ignore them.
type Config struct {
	Bins int     `json:"bins,omitempty" yaml:"bins"`
	Low  float64 `json:"low,omitempty" yaml:"low"`
	High float64 `json:"high,omitempty" yaml:"high"`
}

func (c Config) validateBinning() error {
	if c.Bins <= 0 {
		return fmt.Errorf("bins must be positive, got %d", c.Bins)
	}
	if math.IsNaN(c.Low) || math.IsInf(c.Low, 0) || math.IsNaN(c.High) || math.IsInf(c.High, 0) {
		return fmt.Errorf("edges must be finite, got [%g, %g)", c.Low, c.High)
	}
	if c.High <= c.Low {
		return fmt.Errorf("high edge %g must be above low edge %g", c.High, c.Low)
	}
	return nil
}
