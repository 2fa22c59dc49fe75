package charts

import (
	"image/color"
	"math"

	"genplots/util"

	"gonum.org/v1/plot/palette/brewer"
	"gonum.org/v1/plot/plotutil"
)

// seriesColors returns n distinguishable colors: the qualitative "Paired"
// brewer palette while it is large enough, the plotutil cycle beyond that.
func seriesColors(n int) []color.Color {
	if n <= 12 {
		if pal, err := brewer.GetPalette(brewer.TypeQualitative, "Paired", max(n, 3)); err == nil {
			return pal.Colors()[:n]
		}
	}
	out := make([]color.Color, n)
	for i := range out {
		out[i] = plotutil.Color(i)
	}
	return out
}

// entityColor derives a stable color from a name, so the same mix keeps
// its color across runs and charts.
func entityColor(name string) color.Color {
	return hsv(util.Fraction(name)*360, 0.65, 0.8)
}

func hsv(h, s, v float64) color.NRGBA {
	c := v * s
	x := c * (1 - math.Abs(math.Mod(h/60, 2)-1))
	m := v - c

	var r, g, b float64
	switch {
	case h < 60:
		r, g, b = c, x, 0
	case h < 120:
		r, g, b = x, c, 0
	case h < 180:
		r, g, b = 0, c, x
	case h < 240:
		r, g, b = 0, x, c
	case h < 300:
		r, g, b = x, 0, c
	default:
		r, g, b = c, 0, x
	}
	return color.NRGBA{
		R: uint8(math.Round((r + m) * 255)),
		G: uint8(math.Round((g + m) * 255)),
		B: uint8(math.Round((b + m) * 255)),
		A: 255,
	}
}
