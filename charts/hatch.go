package charts

import (
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

var (
	hatchSpacing = vg.Points(6)
	hatchStyle   = draw.LineStyle{Color: color.Black, Width: vg.Points(0.5)}
)

// Patch is a filled, optionally hatched rectangle spanning Width data units
// around X and from Low to High on the y axis. Bars and box bodies are
// drawn as patches.
type Patch struct {
	X, Width  float64
	Low, High float64
	Fill      color.Color
	Pattern   string
	Edge      draw.LineStyle
}

var (
	_ plot.Plotter     = (*Patch)(nil)
	_ plot.DataRanger  = (*Patch)(nil)
	_ plot.Thumbnailer = (*Patch)(nil)
)

func (pt *Patch) Plot(c draw.Canvas, plt *plot.Plot) {
	trX, trY := plt.Transforms(&c)
	r := vg.Rectangle{
		Min: vg.Point{X: trX(pt.X - pt.Width/2), Y: trY(math.Min(pt.Low, pt.High))},
		Max: vg.Point{X: trX(pt.X + pt.Width/2), Y: trY(math.Max(pt.Low, pt.High))},
	}
	r = intersect(r, c.Rectangle)
	if r.Max.X <= r.Min.X || r.Max.Y <= r.Min.Y {
		return
	}
	pt.draw(c, r)
}

func (pt *Patch) DataRange() (xmin, xmax, ymin, ymax float64) {
	return pt.X - pt.Width/2, pt.X + pt.Width/2, math.Min(pt.Low, pt.High), math.Max(pt.Low, pt.High)
}

// Thumbnail draws the legend swatch.
func (pt *Patch) Thumbnail(c *draw.Canvas) {
	pt.draw(*c, c.Rectangle)
}

func (pt *Patch) draw(c draw.Canvas, r vg.Rectangle) {
	corners := []vg.Point{r.Min, {X: r.Max.X, Y: r.Min.Y}, r.Max, {X: r.Min.X, Y: r.Max.Y}}
	if pt.Fill != nil {
		c.FillPolygon(pt.Fill, corners)
	}
	hatch(c, r, pt.Pattern)
	if pt.Edge.Color != nil && pt.Edge.Width > 0 {
		c.StrokeLines(pt.Edge, append(corners, r.Min))
	}
}

// hatch strokes pattern inside r. Lines are anchored at the canvas origin
// so neighbouring patches line up.
func hatch(c draw.Canvas, r vg.Rectangle, pattern string) {
	for _, p := range pattern {
		switch p {
		case '/':
			hatchLines(c, r, vg.Point{X: 1, Y: 1})
		case '\\':
			hatchLines(c, r, vg.Point{X: 1, Y: -1})
		case 'x':
			hatchLines(c, r, vg.Point{X: 1, Y: 1})
			hatchLines(c, r, vg.Point{X: 1, Y: -1})
		case '+':
			hatchLines(c, r, vg.Point{X: 1})
			hatchLines(c, r, vg.Point{Y: 1})
		case '-':
			hatchLines(c, r, vg.Point{X: 1})
		case '|':
			hatchLines(c, r, vg.Point{Y: 1})
		case 'o':
			hatchGlyphs(c, r, draw.RingGlyph{}, hatchSpacing/3)
		case '.':
			hatchGlyphs(c, r, draw.CircleGlyph{}, hatchSpacing/8)
		}
	}
}

func hatchLines(c draw.Canvas, r vg.Rectangle, dir vg.Point) {
	l := vg.Length(math.Hypot(float64(dir.X), float64(dir.Y)))
	dir = vg.Point{X: dir.X / l, Y: dir.Y / l}
	normal := vg.Point{X: -dir.Y, Y: dir.X}

	lo, hi := vg.Length(math.Inf(1)), vg.Length(math.Inf(-1))
	for _, p := range []vg.Point{r.Min, r.Max, {X: r.Min.X, Y: r.Max.Y}, {X: r.Max.X, Y: r.Min.Y}} {
		d := p.X*normal.X + p.Y*normal.Y
		lo, hi = min(lo, d), max(hi, d)
	}
	for k := math.Ceil(float64(lo / hatchSpacing)); k <= math.Floor(float64(hi/hatchSpacing)); k++ {
		off := vg.Length(k) * hatchSpacing
		origin := vg.Point{X: normal.X * off, Y: normal.Y * off}
		if a, b, ok := clipLine(r, origin, dir); ok {
			c.StrokeLine2(hatchStyle, a.X, a.Y, b.X, b.Y)
		}
	}
}

func hatchGlyphs(c draw.Canvas, r vg.Rectangle, shape draw.GlyphDrawer, radius vg.Length) {
	sty := draw.GlyphStyle{Color: hatchStyle.Color, Radius: radius, Shape: shape}
	for x := vg.Length(math.Ceil(float64(r.Min.X/hatchSpacing))) * hatchSpacing; x <= r.Max.X; x += hatchSpacing {
		for y := vg.Length(math.Ceil(float64(r.Min.Y/hatchSpacing))) * hatchSpacing; y <= r.Max.Y; y += hatchSpacing {
			if x-radius < r.Min.X || x+radius > r.Max.X || y-radius < r.Min.Y || y+radius > r.Max.Y {
				continue
			}
			c.DrawGlyph(sty, vg.Point{X: x, Y: y})
		}
	}
}

// clipLine clips the infinite line through p with direction d to r
// (Liang-Barsky).
func clipLine(r vg.Rectangle, p, d vg.Point) (vg.Point, vg.Point, bool) {
	t0, t1 := math.Inf(-1), math.Inf(1)
	for _, e := range [][2]float64{
		{float64(-d.X), float64(p.X - r.Min.X)},
		{float64(d.X), float64(r.Max.X - p.X)},
		{float64(-d.Y), float64(p.Y - r.Min.Y)},
		{float64(d.Y), float64(r.Max.Y - p.Y)},
	} {
		q, dist := e[0], e[1]
		if q == 0 {
			if dist < 0 {
				return vg.Point{}, vg.Point{}, false
			}
			continue
		}
		t := dist / q
		if q < 0 {
			t0 = math.Max(t0, t)
		} else {
			t1 = math.Min(t1, t)
		}
	}
	if t0 >= t1 {
		return vg.Point{}, vg.Point{}, false
	}
	at := func(t float64) vg.Point {
		return vg.Point{X: p.X + d.X*vg.Length(t), Y: p.Y + d.Y*vg.Length(t)}
	}
	return at(t0), at(t1), true
}

func intersect(a, b vg.Rectangle) vg.Rectangle {
	return vg.Rectangle{
		Min: vg.Point{X: max(a.Min.X, b.Min.X), Y: max(a.Min.Y, b.Min.Y)},
		Max: vg.Point{X: min(a.Max.X, b.Max.X), Y: min(a.Max.Y, b.Max.Y)},
	}
}
