package metrics

import (
	"math"
	"sort"

	"github.com/pingcap/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/interp"
	"gonum.org/v1/gonum/stat"
)

type Point struct {
	X, Y float64
}

// PerEntityAverage spreads a total over n entities.
func PerEntityAverage(total float64, n int) float64 {
	return total / float64(n)
}

// EmpiricalCDF sorts a copy of samples and pairs the i-th smallest value
// with i/n. The first fraction is 0 and the last is (n-1)/n.
func EmpiricalCDF(samples []float64) []Point {
	sorted := append([]float64(nil), samples...)
	sort.Float64s(sorted)

	n := float64(len(sorted))
	pts := make([]Point, len(sorted))
	for i, v := range sorted {
		pts[i] = Point{X: v, Y: float64(i) / n}
	}
	return pts
}

// BoxStats are the statistics of a box plot whose whiskers span the
// whole data range. Quartiles use Percentile.
type BoxStats struct {
	N      int
	Min    float64
	Q1     float64
	Median float64
	Q3     float64
	Max    float64
	Mean   float64
}

func Box(samples []float64) BoxStats {
	if len(samples) == 0 {
		return BoxStats{}
	}
	sorted := append([]float64(nil), samples...)
	sort.Float64s(sorted)
	return BoxStats{
		N:      len(sorted),
		Min:    floats.Min(sorted),
		Q1:     Percentile(sorted, 0.25),
		Median: Percentile(sorted, 0.5),
		Q3:     Percentile(sorted, 0.75),
		Max:    floats.Max(sorted),
		Mean:   stat.Mean(sorted, nil),
	}
}

// Percentile interpolates linearly between the two closest ranks of the
// ascending slice sorted, at rank (n-1)*p. This is the quantile matplotlib
// box plots are drawn with.
func Percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return math.NaN()
	}
	h := float64(len(sorted)-1) * math.Min(math.Max(p, 0), 1)
	lo, hi := int(math.Floor(h)), int(math.Ceil(h))
	return sorted[lo] + (h-float64(lo))*(sorted[hi]-sorted[lo])
}

// Headroom returns ceil(max*factor + add); a zero factor counts as 1.
func Headroom(max, add, factor float64) float64 {
	if factor == 0 {
		factor = 1
	}
	return math.Ceil(max*factor + add)
}

// MaxOf returns the largest value over all series, or 0 when there is none.
func MaxOf(series ...[]float64) float64 {
	m := math.Inf(-1)
	for _, s := range series {
		if len(s) > 0 {
			m = math.Max(m, floats.Max(s))
		}
	}
	if math.IsInf(m, -1) {
		return 0
	}
	return m
}

// Smooth resamples the points through an Akima spline at n evenly spaced
// x positions between the smallest and largest x.
func Smooth(xs, ys []float64, n int) ([]Point, error) {
	if len(xs) != len(ys) {
		return nil, errors.Errorf("smooth: %d xs but %d ys", len(xs), len(ys))
	}
	if n < 2 {
		return nil, errors.Errorf("smooth: need at least 2 output points, got %d", n)
	}

	// Fit wants strictly increasing xs.
	idx := make([]int, len(xs))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return xs[idx[a]] < xs[idx[b]] })
	sx := make([]float64, len(xs))
	sy := make([]float64, len(ys))
	for i, j := range idx {
		sx[i], sy[i] = xs[j], ys[j]
	}

	var spline interp.AkimaSpline
	if err := spline.Fit(sx, sy); err != nil {
		return nil, errors.Annotate(err, "smooth")
	}

	xMin, xMax := sx[0], sx[len(sx)-1]
	step := (xMax - xMin) / float64(n-1)
	pts := make([]Point, n)
	for i := range pts {
		x := xMin + float64(i)*step
		if i == n-1 {
			x = xMax
		}
		pts[i] = Point{X: x, Y: spline.Predict(x)}
	}
	return pts, nil
}
