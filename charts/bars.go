package charts

import (
	"fmt"
	"math"
	"path/filepath"
	"strconv"

	"genplots/config"
	"genplots/dataset"
	"genplots/metrics"

	"github.com/dustin/go-humanize"
	"github.com/pingcap/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
)

// Bars draws one bar per cell, grouped by client bucket. Bars carry the
// system color and the scenario hatch; the first group labels the legend.
func Bars(data *dataset.Bars, ch config.Chart, st config.Style, out Output) ([]string, error) {
	th, err := newTheme(st)
	if err != nil {
		return nil, err
	}
	p := newPlot(ch, th)

	width := ch.BarWidth
	if width <= 0 {
		width = 0.8
	}
	for _, b := range data.Bars {
		fill, err := config.ParseColor(b.Cell.System.Color)
		if err != nil {
			return nil, errors.Annotatef(err, "chart %s", ch.Name)
		}
		patch := &Patch{X: b.Position, Width: width, High: b.Value, Fill: fill, Pattern: b.Cell.Hatch()}
		if ch.Edge {
			patch.Edge = th.edge
		}
		p.Add(patch)
		if b.Legend {
			p.Legend.Add(b.Cell.Label(), patch)
		}
		if !math.IsNaN(b.Average) {
			if err = addAverageLine(p, b.Position-width/2, b.Position+width/2, b.Average, th); err != nil {
				return nil, errors.Annotatef(err, "chart %s", ch.Name)
			}
		}
	}
	if ch.ValueLabels && len(data.Bars) > 0 {
		if err = addValueLabels(p, data.Bars, ch, th); err != nil {
			return nil, errors.Annotatef(err, "chart %s", ch.Name)
		}
	}

	setGroups(p, data.Layout)
	setYRange(p, ch, metrics.MaxOf(data.Values()))

	w, h := size(ch, st)
	files, err := save(p, w, h, out.Dir, ch.Name, out.Formats)
	if err != nil {
		return files, err
	}
	if out.CSV {
		path := filepath.Join(out.Dir, ch.Name+".csv")
		if err = WriteCSV(path, barsHeader, barsRows(data)); err != nil {
			return files, err
		}
		files = append(files, path)
	}
	return files, nil
}

// addAverageLine draws a dashed horizontal segment across one bar.
func addAverageLine(p *plot.Plot, x0, x1, y float64, th theme) error {
	l, err := plotter.NewLine(plotter.XYs{{X: x0, Y: y}, {X: x1, Y: y}})
	if err != nil {
		return err
	}
	l.LineStyle = th.average
	p.Add(l)
	return nil
}

// commaFormat as a LabelFormat prints values with thousands separators.
const commaFormat = "comma"

// addValueLabels prints each bar's value centred above it.
func addValueLabels(p *plot.Plot, bars []dataset.Bar, ch config.Chart, th theme) error {
	format := ch.LabelFormat
	if format == "" {
		format = "%.2f"
	}
	factor := ch.LabelFactor
	if factor == 0 {
		factor = 1
	}

	xys := make([]plotter.XY, len(bars))
	labels := make([]string, len(bars))
	for i, b := range bars {
		xys[i] = plotter.XY{X: b.Position, Y: b.Value*factor + ch.LabelOffset}
		if format == commaFormat {
			labels[i] = humanize.CommafWithDigits(b.Value, 2)
		} else {
			labels[i] = fmt.Sprintf(format, b.Value)
		}
	}
	l, err := plotter.NewLabels(plotter.XYLabels{XYs: xys, Labels: labels})
	if err != nil {
		return err
	}
	for i := range l.TextStyle {
		l.TextStyle[i].XAlign = text.XCenter
		l.TextStyle[i].YAlign = text.YBottom
		l.TextStyle[i].Font.Size = th.fontSize - 2
	}
	l.Offset = vg.Point{Y: vg.Points(1)}
	p.Add(l)
	return nil
}

var barsHeader = []string{"system", "scenario", "clients", "position", "value", "average"}

func barsRows(data *dataset.Bars) [][]string {
	rows := make([][]string, 0, len(data.Bars))
	for _, b := range data.Bars {
		avg := ""
		if !math.IsNaN(b.Average) {
			avg = formatFloat(b.Average)
		}
		rows = append(rows, []string{
			b.Cell.System.Name,
			b.Cell.Scenario.ID,
			strconv.Itoa(b.Cell.Clients.Count),
			formatFloat(b.Position),
			formatFloat(b.Value),
			avg,
		})
	}
	return rows
}
