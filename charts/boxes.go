package charts

import (
	"path/filepath"
	"strconv"

	"genplots/config"
	"genplots/dataset"
	"genplots/metrics"

	"github.com/pingcap/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// rangeBox is a box plot whose whiskers reach the minimum and maximum and
// whose width is given in data units. The box body is drawn separately as
// a Patch so it can be hatched.
type rangeBox struct {
	box   *plotter.BoxPlot
	width float64
}

func newRangeBox(b dataset.Box, width float64, th theme) (*rangeBox, error) {
	bp, err := plotter.NewBoxPlot(vg.Points(1), b.Position, plotter.Values(b.Samples))
	if err != nil {
		return nil, err
	}
	// gonum computes its own quartiles; draw the ones the body and the CSV use
	bp.Quartile1, bp.Median, bp.Quartile3 = b.Stats.Q1, b.Stats.Median, b.Stats.Q3
	bp.AdjLow, bp.AdjHigh = bp.Min, bp.Max
	bp.Outside = nil
	bp.FillColor = nil
	bp.BoxStyle = th.edge
	bp.WhiskerStyle = th.edge
	bp.MedianStyle = draw.LineStyle{Color: th.edge.Color, Width: th.edge.Width * 1.5}
	return &rangeBox{box: bp, width: width}, nil
}

func (r *rangeBox) Plot(c draw.Canvas, plt *plot.Plot) {
	trX, _ := plt.Transforms(&c)
	loc := r.box.Location
	r.box.Width = trX(loc+r.width/2) - trX(loc-r.width/2)
	r.box.CapWidth = r.box.Width / 2
	r.box.Plot(c, plt)
}

func (r *rangeBox) DataRange() (xmin, xmax, ymin, ymax float64) {
	return r.box.Location - r.width/2, r.box.Location + r.width/2, r.box.Min, r.box.Max
}

// Boxes draws one range box plot per cell, grouped by client bucket.
func Boxes(data *dataset.Boxes, ch config.Chart, st config.Style, out Output) ([]string, error) {
	th, err := newTheme(st)
	if err != nil {
		return nil, err
	}
	p := newPlot(ch, th)

	width := ch.BarWidth
	if width <= 0 {
		width = 0.5
	}
	var samples [][]float64
	for _, b := range data.Boxes {
		fill, err := config.ParseColor(b.Cell.System.Color)
		if err != nil {
			return nil, errors.Annotatef(err, "chart %s", ch.Name)
		}
		body := &Patch{X: b.Position, Width: width, Low: b.Stats.Q1, High: b.Stats.Q3, Fill: fill, Pattern: b.Cell.Hatch()}
		box, err := newRangeBox(b, width, th)
		if err != nil {
			return nil, errors.Annotatef(err, "chart %s: %s", ch.Name, b.Cell.LongLabel())
		}
		p.Add(body, box)
		if b.Legend {
			p.Legend.Add(b.Cell.Label(), &Patch{Fill: fill, Pattern: b.Cell.Hatch(), Edge: th.edge})
		}
		samples = append(samples, b.Samples)
	}

	setGroups(p, data.Layout)
	setYRange(p, ch, metrics.MaxOf(samples...))

	w, h := size(ch, st)
	files, err := save(p, w, h, out.Dir, ch.Name, out.Formats)
	if err != nil {
		return files, err
	}
	if out.CSV {
		path := filepath.Join(out.Dir, ch.Name+".csv")
		if err = WriteCSV(path, boxesHeader, boxesRows(data)); err != nil {
			return files, err
		}
		files = append(files, path)
	}
	return files, nil
}

var boxesHeader = []string{"system", "scenario", "clients", "position", "n", "min", "q1", "median", "q3", "max", "mean"}

func boxesRows(data *dataset.Boxes) [][]string {
	rows := make([][]string, 0, len(data.Boxes))
	for _, b := range data.Boxes {
		s := b.Stats
		rows = append(rows, []string{
			b.Cell.System.Name,
			b.Cell.Scenario.ID,
			strconv.Itoa(b.Cell.Clients.Count),
			formatFloat(b.Position),
			strconv.Itoa(s.N),
			formatFloat(s.Min),
			formatFloat(s.Q1),
			formatFloat(s.Median),
			formatFloat(s.Q3),
			formatFloat(s.Max),
			formatFloat(s.Mean),
		})
	}
	return rows
}
