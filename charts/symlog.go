package charts

import (
	"math"
	"strconv"

	"gonum.org/v1/plot"
)

// SymLogScale is linear around zero and logarithmic beyond LinThresh, so
// axes that start at zero can still span several decades.
type SymLogScale struct {
	LinThresh float64
}

var _ plot.Normalizer = SymLogScale{}

func (s SymLogScale) thresh() float64 {
	if s.LinThresh <= 0 {
		return 1
	}
	return s.LinThresh
}

func (s SymLogScale) transform(x float64) float64 {
	t := s.thresh()
	if x < 0 {
		return -math.Log10(1 - x/t)
	}
	return math.Log10(1 + x/t)
}

func (s SymLogScale) Normalize(min, max, x float64) float64 {
	lo, hi := s.transform(min), s.transform(max)
	if hi == lo {
		return 0
	}
	return (s.transform(x) - lo) / (hi - lo)
}

// SymLogTicks places labelled ticks at zero and at powers of ten, with
// unlabelled minor ticks in between.
type SymLogTicks struct{}

var _ plot.Ticker = SymLogTicks{}

func (SymLogTicks) Ticks(min, max float64) []plot.Tick {
	var ticks []plot.Tick
	if min <= 0 && max >= 0 {
		ticks = append(ticks, plot.Tick{Value: 0, Label: "0"})
	}
	for _, sign := range []float64{-1, 1} {
		limit := math.Max(sign*min, sign*max)
		if limit < 1 {
			continue
		}
		for exp := 0.0; math.Pow(10, exp) <= limit; exp++ {
			major := math.Pow(10, exp)
			for m := 1.0; m < 10; m++ {
				v := sign * m * major
				if v < min || v > max {
					continue
				}
				t := plot.Tick{Value: v}
				if m == 1 {
					t.Label = strconv.FormatFloat(v, 'f', -1, 64)
				}
				ticks = append(ticks, t)
			}
		}
	}
	return ticks
}
