// Package charts draws chart-ready datasets with gonum/plot and writes them
// to disk in every configured format.
package charts

import (
	"image/color"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"genplots/config"
	"genplots/dataset"
	"genplots/metrics"

	"github.com/pingcap/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// Output says where a chart goes. An empty Dir for per-round charts means
// next to each run's data file.
type Output struct {
	Dir     string
	Formats []string
	CSV     bool
}

type theme struct {
	fontSize vg.Length
	grid     draw.LineStyle
	edge     draw.LineStyle
	average  draw.LineStyle
	line     vg.Length
}

func newTheme(st config.Style) (theme, error) {
	grid, err := config.ParseColor(st.GridColor)
	if err != nil {
		return theme{}, err
	}
	if st.GridAlpha > 0 && st.GridAlpha < 1 {
		grid.A = uint8(st.GridAlpha * 255)
	}
	edge, err := config.ParseColor(st.EdgeColor)
	if err != nil {
		return theme{}, err
	}
	avg, err := config.ParseColor(st.AverageColor)
	if err != nil {
		return theme{}, err
	}
	size := st.FontSize
	if size <= 0 {
		size = 10
	}
	lw := st.LineWidth
	if lw <= 0 {
		lw = 1.5
	}
	return theme{
		fontSize: vg.Points(size),
		grid:     draw.LineStyle{Color: grid, Width: vg.Points(0.5)},
		edge:     draw.LineStyle{Color: edge, Width: vg.Points(1)},
		average:  draw.LineStyle{Color: avg, Width: vg.Points(lw), Dashes: []vg.Length{vg.Points(5), vg.Points(3)}},
		line:     vg.Points(lw),
	}, nil
}

func newPlot(ch config.Chart, th theme) *plot.Plot {
	p := plot.New()
	p.Title.Text = ch.Title
	p.X.Label.Text = ch.XLabel
	p.Y.Label.Text = ch.YLabel

	p.Title.TextStyle.Font.Size = th.fontSize + 2
	p.X.Label.TextStyle.Font.Size = th.fontSize
	p.Y.Label.TextStyle.Font.Size = th.fontSize
	p.X.Tick.Label.Font.Size = th.fontSize
	p.Y.Tick.Label.Font.Size = th.fontSize
	p.Legend.TextStyle.Font.Size = th.fontSize

	// the grid goes first so that data is drawn over it
	grid := plotter.NewGrid()
	grid.Horizontal = th.grid
	grid.Vertical = th.grid
	if !ch.XGrid {
		grid.Vertical.Color = nil
	}
	p.Add(grid)

	switch ch.Legend {
	case "upper left":
		p.Legend.Top, p.Legend.Left = true, true
	case "upper right":
		p.Legend.Top = true
	case "lower left":
		p.Legend.Left = true
	}
	// keep the legend off the axes
	p.Legend.XOffs, p.Legend.YOffs = -vg.Points(4), vg.Points(4)
	if p.Legend.Left {
		p.Legend.XOffs = -p.Legend.XOffs
	}
	if p.Legend.Top {
		p.Legend.YOffs = -p.Legend.YOffs
	}
	return p
}

// setYRange applies the configured y limits and ticks. Without an explicit
// YMax the upper limit is derived from the data maximum and widened to
// cover the configured ticks, so the data is never cut off.
func setYRange(p *plot.Plot, ch config.Chart, dataMax float64) {
	p.Y.Min = 0
	if ch.YMin != nil {
		p.Y.Min = *ch.YMin
	}
	if ch.YMax != nil {
		p.Y.Max = *ch.YMax
	} else {
		p.Y.Max = metrics.Headroom(dataMax, ch.YHeadroom, ch.YHeadroomFactor)
		if len(ch.YTicks) > 0 {
			p.Y.Max = math.Max(p.Y.Max, floats.Max(ch.YTicks))
		}
	}
	if p.Y.Max <= p.Y.Min {
		p.Y.Max = p.Y.Min + 1
	}

	if ch.YScale == "symlog" {
		p.Y.Scale = SymLogScale{}
		p.Y.Tick.Marker = SymLogTicks{}
	}
	if len(ch.YTicks) > 0 {
		ticks := make([]plot.Tick, len(ch.YTicks))
		for i, v := range ch.YTicks {
			ticks[i] = plot.Tick{Value: v, Label: strconv.FormatFloat(v, 'f', -1, 64)}
		}
		p.Y.Tick.Marker = plot.ConstantTicks(ticks)
	}
}

// setGroups labels each client group once, below its centre.
func setGroups(p *plot.Plot, l dataset.Layout) {
	ticks := make([]plot.Tick, len(l.Ticks))
	for i, t := range l.Ticks {
		ticks[i] = plot.Tick{Value: t.Position, Label: t.Label}
	}
	p.X.Tick.Marker = plot.ConstantTicks(ticks)
	p.X.Min = 0
	p.X.Max = l.XMax
}

func size(ch config.Chart, st config.Style) (vg.Length, vg.Length) {
	w, h := ch.Size(st)
	return vg.Length(w) * vg.Inch, vg.Length(h) * vg.Inch
}

// save writes the plot once per format as <dir>/<name>.<format>.
func save(p *plot.Plot, w, h vg.Length, dir, name string, formats []string) ([]string, error) {
	var files []string
	for _, format := range formats {
		wt, err := p.WriterTo(w, h, format)
		if err != nil {
			return files, errors.Annotatef(err, "render %s as %s", name, format)
		}
		path := filepath.Join(dir, name+"."+format)
		if err = writeAtomic(path, wt); err != nil {
			return files, err
		}
		files = append(files, path)
	}
	return files, nil
}

// writeAtomic writes to a temporary file next to path and renames it into
// place, so readers never see a half-written chart.
func writeAtomic(path string, wt io.WriterTo) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Trace(err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return errors.Trace(err)
	}
	defer os.Remove(tmp.Name())

	if _, err = wt.WriteTo(tmp); err != nil {
		tmp.Close()
		return errors.Annotatef(err, "write %s", path)
	}
	if err = tmp.Close(); err != nil {
		return errors.Annotatef(err, "write %s", path)
	}
	if err = os.Chmod(tmp.Name(), 0o644); err != nil {
		return errors.Trace(err)
	}
	return errors.Trace(os.Rename(tmp.Name(), path))
}

func fillCanvas(c draw.Canvas, clr color.Color) {
	r := c.Rectangle
	c.FillPolygon(clr, []vg.Point{r.Min, {X: r.Max.X, Y: r.Min.Y}, r.Max, {X: r.Min.X, Y: r.Max.Y}})
}
