package metrics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const eps = 1e-9

func TestPerEntityAverage(t *testing.T) {
	assert.InDelta(t, 25.0, PerEntityAverage(12500.0, 500), eps)
	for _, n := range []int{1, 3, 21, 500, 1000} {
		total := 1234.5678
		assert.InDelta(t, total/float64(n), PerEntityAverage(total, n), eps)
	}
}

func TestEmpiricalCDF(t *testing.T) {
	pts := EmpiricalCDF([]float64{0.1, 0.3, 0.2})
	require.Len(t, pts, 3)
	assert.Equal(t, []float64{0.1, 0.2, 0.3}, []float64{pts[0].X, pts[1].X, pts[2].X})
	assert.InDelta(t, 0.0, pts[0].Y, eps)
	assert.InDelta(t, 1.0/3, pts[1].Y, eps)
	assert.InDelta(t, 2.0/3, pts[2].Y, eps)
}

func TestEmpiricalCDFProperties(t *testing.T) {
	samples := []float64{5, 3, 3, 9, 0.5, 12, 7, 7, 7, 1}
	in := append([]float64(nil), samples...)
	pts := EmpiricalCDF(samples)

	// input is not reordered
	assert.Equal(t, in, samples)

	require.Len(t, pts, len(samples))
	assert.Equal(t, 0.0, pts[0].Y)
	for i := 1; i < len(pts); i++ {
		assert.GreaterOrEqual(t, pts[i].X, pts[i-1].X)
		assert.Greater(t, pts[i].Y, pts[i-1].Y)
		assert.Less(t, pts[i].Y, 1.0)
	}

	assert.Empty(t, EmpiricalCDF(nil))
}

func TestConvertRoundTrip(t *testing.T) {
	units := []Unit{B, KB, MB, GB, KiB, MiB, GiB}
	for _, from := range units {
		for _, to := range units {
			v := 4321.125
			there, err := Convert(v, from, to)
			require.NoError(t, err)
			back, err := Convert(there, to, from)
			require.NoError(t, err)
			assert.InEpsilon(t, v, back, 1e-12, "%s -> %s", from, to)
		}
	}
}

func TestConvert(t *testing.T) {
	v, err := Convert(250000, KB, MB)
	require.NoError(t, err)
	assert.InDelta(t, 250.0, v, eps)

	v, err = Convert(4.2e6, KB, GB)
	require.NoError(t, err)
	assert.InDelta(t, 4.2, v, eps)

	v, err = Convert(3, MiB, KiB)
	require.NoError(t, err)
	assert.InDelta(t, 3072.0, v, eps)

	v, err = Convert(7, None, None)
	require.NoError(t, err)
	assert.Equal(t, 7.0, v)

	_, err = Convert(1, None, MB)
	assert.Error(t, err)

	_, err = ParseUnit("parsec")
	assert.Error(t, err)
	u, err := ParseUnit("MiB")
	require.NoError(t, err)
	assert.Equal(t, MiB, u)
}

func TestBox(t *testing.T) {
	b := Box([]float64{9, 1, 5, 3, 7, 2, 8, 4, 6, 10})
	assert.Equal(t, 10, b.N)
	assert.Equal(t, 1.0, b.Min)
	assert.Equal(t, 10.0, b.Max)
	assert.InDelta(t, 5.5, b.Mean, eps)
	assert.LessOrEqual(t, b.Min, b.Q1)
	assert.LessOrEqual(t, b.Q1, b.Median)
	assert.LessOrEqual(t, b.Median, b.Q3)
	assert.LessOrEqual(t, b.Q3, b.Max)
	assert.InDelta(t, 5.5, b.Median, eps)
	assert.InDelta(t, 3.25, b.Q1, eps)
	assert.InDelta(t, 7.75, b.Q3, eps)

	b = Box([]float64{4, 1, 3, 2})
	assert.InDelta(t, 1.75, b.Q1, eps)
	assert.InDelta(t, 2.5, b.Median, eps)
	assert.InDelta(t, 3.25, b.Q3, eps)

	b = Box([]float64{7})
	assert.Equal(t, 7.0, b.Q1)
	assert.Equal(t, 7.0, b.Q3)

	assert.Equal(t, BoxStats{}, Box(nil))
}

func TestPercentile(t *testing.T) {
	sorted := []float64{10, 20, 30, 40, 50}
	assert.Equal(t, 10.0, Percentile(sorted, 0))
	assert.Equal(t, 50.0, Percentile(sorted, 1))
	assert.InDelta(t, 30.0, Percentile(sorted, 0.5), eps)
	assert.InDelta(t, 46.0, Percentile(sorted, 0.9), eps)
	assert.True(t, math.IsNaN(Percentile(nil, 0.5)))
}

func TestHeadroom(t *testing.T) {
	assert.Equal(t, 36.0, Headroom(25.3, 10, 0))
	assert.Equal(t, 5432.0, Headroom(4431.5, 1000, 1))
	assert.Equal(t, math.Ceil(150*1.07), Headroom(150, 0, 1.07))
}

func TestMaxOf(t *testing.T) {
	assert.Equal(t, 9.0, MaxOf([]float64{1, 9}, nil, []float64{3}))
	assert.Equal(t, 0.0, MaxOf())
}

func TestSmooth(t *testing.T) {
	xs := []float64{4, 1, 2, 3, 5}
	ys := []float64{16, 1, 4, 9, 25}
	pts, err := Smooth(xs, ys, 9)
	require.NoError(t, err)
	require.Len(t, pts, 9)
	assert.Equal(t, 1.0, pts[0].X)
	assert.Equal(t, 5.0, pts[8].X)
	// the spline passes through the knots
	assert.InDelta(t, 1.0, pts[0].Y, 1e-9)
	assert.InDelta(t, 9.0, pts[4].Y, 1e-9)
	assert.InDelta(t, 25.0, pts[8].Y, 1e-9)

	_, err = Smooth(xs, ys[:2], 9)
	assert.Error(t, err)
	_, err = Smooth(xs, ys, 1)
	assert.Error(t, err)
}

func TestSummarizeLatencies(t *testing.T) {
	var samples []float64
	for i := 1; i <= 1000; i++ {
		samples = append(samples, float64(i)/1000) // 1ms .. 1s
	}
	s := SummarizeLatencies(samples)
	assert.Equal(t, int64(1000), s.Count)
	assert.InDelta(t, 0.5, s.P50, 0.005)
	assert.InDelta(t, 0.99, s.P99, 0.005)
	assert.InDelta(t, 1.0, s.Max, 0.005)
	assert.InDelta(t, 0.5005, s.Mean, 0.005)
	assert.LessOrEqual(t, s.P50, s.P90)
	assert.LessOrEqual(t, s.P90, s.P95)
	assert.LessOrEqual(t, s.P95, s.P99)

	assert.Equal(t, LatencySummary{}, SummarizeLatencies(nil))
}

func TestSummarizeLatenciesClamps(t *testing.T) {
	s := SummarizeLatencies([]float64{-2, 0})
	assert.Equal(t, int64(2), s.Count)
	assert.Equal(t, 1e-6, s.P50)
	assert.Equal(t, 1e-6, s.Max)

	s = SummarizeLatencies([]float64{7200})
	assert.InDelta(t, 3600, s.Max, 3600*0.001)
}
