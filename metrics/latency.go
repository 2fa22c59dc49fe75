package metrics

import (
	"math"

	"github.com/HdrHistogram/hdrhistogram-go"
)

// LatencySummary is a percentile digest of latency samples given in seconds.
type LatencySummary struct {
	Count int64
	Mean  float64
	P50   float64
	P90   float64
	P95   float64
	P99   float64
	Max   float64
}

const (
	usPerSecond  = 1e6
	maxLatencyUs = int64(3600 * usPerSecond)
)

// SummarizeLatencies records the samples at microsecond resolution with
// three significant digits. Samples below one microsecond, negative ones
// included, count as one microsecond and samples above one hour as one hour.
func SummarizeLatencies(samples []float64) LatencySummary {
	h := hdrhistogram.New(1, maxLatencyUs, 3)
	for _, s := range samples {
		us := int64(math.Round(s * usPerSecond))
		if us < 1 {
			us = 1
		}
		if us > maxLatencyUs {
			us = maxLatencyUs
		}
		// RecordValue only fails for out-of-range values, excluded above.
		_ = h.RecordValue(us)
	}
	if h.TotalCount() == 0 {
		return LatencySummary{}
	}
	return LatencySummary{
		Count: h.TotalCount(),
		Mean:  h.Mean() / usPerSecond,
		P50:   float64(h.ValueAtQuantile(50)) / usPerSecond,
		P90:   float64(h.ValueAtQuantile(90)) / usPerSecond,
		P95:   float64(h.ValueAtQuantile(95)) / usPerSecond,
		P99:   float64(h.ValueAtQuantile(99)) / usPerSecond,
		Max:   float64(h.Max()) / usPerSecond,
	}
}
