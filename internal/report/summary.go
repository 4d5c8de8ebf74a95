package report

import (
	"fmt"
	"time"

	"github.com/aclements/go-moremath/stats"
)

// Summary describes the timings of repeated executions of one query.
type Summary struct {
	N      int           `json:"n"`
	Median time.Duration `json:"median"`
	Mean   time.Duration `json:"mean"`
	StdDev time.Duration `json:"stddev"`
	Min    time.Duration `json:"min"`
	Max    time.Duration `json:"max"`
}

// Summarize computes order statistics over ds. An empty input yields the
// zero Summary.
func Summarize(ds []time.Duration) Summary {
	if len(ds) == 0 {
		return Summary{}
	}
	xs := make([]float64, len(ds))
	for i, d := range ds {
		xs[i] = float64(d)
	}
	s := stats.Sample{Xs: xs}
	lo, hi := s.Bounds()

	sum := Summary{
		N:      len(ds),
		Median: time.Duration(s.Quantile(0.5)),
		Mean:   time.Duration(s.Mean()),
		Min:    time.Duration(lo),
		Max:    time.Duration(hi),
	}
	if len(ds) > 1 {
		sum.StdDev = time.Duration(s.StdDev())
	}
	return sum
}

func (s Summary) String() string {
	return fmt.Sprintf("n=%d median=%v mean=%v stddev=%v min=%v max=%v",
		s.N, s.Median, s.Mean, s.StdDev, s.Min, s.Max)
}
