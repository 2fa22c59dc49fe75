package charts

import (
	"image/color"
	"testing"

	"genplots/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
)

func TestSymLogScale(t *testing.T) {
	s := SymLogScale{}
	assert.Equal(t, 0.0, s.Normalize(0, 1000, 0))
	assert.InDelta(t, 1.0, s.Normalize(0, 1000, 1000), 1e-12)

	prev := -1.0
	for _, x := range []float64{0, 0.5, 1, 5, 10, 100, 999} {
		n := s.Normalize(0, 1000, x)
		assert.Greater(t, n, prev, "x=%v", x)
		prev = n
	}
	// logarithmic beyond the threshold: decades are evenly spaced
	d1 := s.Normalize(0, 1e4, 1000) - s.Normalize(0, 1e4, 100)
	d2 := s.Normalize(0, 1e4, 10000) - s.Normalize(0, 1e4, 1000)
	assert.InDelta(t, d1, d2, 0.01)
}

func TestSymLogTicks(t *testing.T) {
	labels := map[float64]string{}
	for _, tk := range (SymLogTicks{}).Ticks(0, 1500) {
		assert.GreaterOrEqual(t, tk.Value, 0.0)
		assert.LessOrEqual(t, tk.Value, 1500.0)
		if tk.Label != "" {
			labels[tk.Value] = tk.Label
		}
	}
	assert.Equal(t, map[float64]string{0: "0", 1: "1", 10: "10", 100: "100", 1000: "1000"}, labels)
}

func TestClipLine(t *testing.T) {
	r := vg.Rectangle{Max: vg.Point{X: 10, Y: 10}}

	a, b, ok := clipLine(r, vg.Point{}, vg.Point{X: 1, Y: 1})
	assert.True(t, ok)
	assert.Equal(t, vg.Point{}, a)
	assert.Equal(t, vg.Point{X: 10, Y: 10}, b)

	a, b, ok = clipLine(r, vg.Point{Y: 5}, vg.Point{X: 1})
	assert.True(t, ok)
	assert.Equal(t, vg.Point{Y: 5}, a)
	assert.Equal(t, vg.Point{X: 10, Y: 5}, b)

	_, _, ok = clipLine(r, vg.Point{Y: 20}, vg.Point{X: 1})
	assert.False(t, ok)
}

func TestPatchDataRange(t *testing.T) {
	p := &Patch{X: 3, Width: 0.9, Low: 10, High: 2}
	xmin, xmax, ymin, ymax := p.DataRange()
	assert.InDelta(t, 2.55, xmin, 1e-12)
	assert.InDelta(t, 3.45, xmax, 1e-12)
	assert.Equal(t, 2.0, ymin)
	assert.Equal(t, 10.0, ymax)
}

func TestEntityColor(t *testing.T) {
	assert.Equal(t, entityColor("mix-7"), entityColor("mix-7"))
	assert.NotEqual(t, entityColor("mix-7"), entityColor("mix-8"))

	assert.Equal(t, color.NRGBA{R: 255, A: 255}, hsv(0, 1, 1))
	assert.Equal(t, color.NRGBA{G: 255, A: 255}, hsv(120, 1, 1))
	assert.Equal(t, color.NRGBA{B: 255, A: 255}, hsv(240, 1, 1))
}

func TestSeriesColors(t *testing.T) {
	for _, n := range []int{1, 2, 10, 12, 20} {
		cs := seriesColors(n)
		assert.Len(t, cs, n)
		for _, c := range cs {
			assert.NotNil(t, c)
		}
	}
	cs := seriesColors(10)
	seen := map[color.Color]bool{}
	for _, c := range cs {
		seen[c] = true
	}
	assert.Len(t, seen, 10)
}

func TestSetYRangeKeepsData(t *testing.T) {
	cfg, err := config.NewConfig("")
	require.NoError(t, err)
	mem, ok := cfg.Chart("load-mem_clients")
	require.True(t, ok)

	// above the last tick the axis follows the data
	p := plot.New()
	setYRange(p, mem, 600)
	assert.Equal(t, 0.0, p.Y.Min)
	assert.Equal(t, 600.0, p.Y.Max)

	// below it the ticks still show in full
	p = plot.New()
	setYRange(p, mem, 250)
	assert.Equal(t, 500.0, p.Y.Max)

	// an explicit limit wins
	cpu, ok := cfg.Chart("load-cpu_clients")
	require.True(t, ok)
	p = plot.New()
	setYRange(p, cpu, 80)
	assert.Equal(t, 50.0, p.Y.Max)
}
