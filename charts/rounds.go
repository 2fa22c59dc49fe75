package charts

import (
	"fmt"
	"image/color"
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

// Rounds draws one chart per run with a line per named entity over the
// round number. The legend sits to the right of the plot area.
func Rounds(runs []dataset.Rounds, ch config.Chart, st config.Style, out Output) ([]string, error) {
	th, err := newTheme(st)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, r := range runs {
		dir, name := r.Dir, ch.Name
		if out.Dir != "" {
			dir = out.Dir
			name = fmt.Sprintf("%s_%s_%s_%s_run-%02d", ch.Name, r.Cell.Scenario.ID, r.Cell.System.Name, r.Cell.Clients.Key, r.Run)
		}
		written, err := roundsChart(r, ch, st, th, dir, name, out)
		files = append(files, written...)
		if err != nil {
			return files, errors.Annotatef(err, "chart %s: %s run %d", ch.Name, r.Cell.LongLabel(), r.Run)
		}
	}
	return files, nil
}

func roundsChart(r dataset.Rounds, ch config.Chart, st config.Style, th theme, dir, name string, out Output) ([]string, error) {
	p := newPlot(ch, th)
	leg := plot.NewLegend()
	leg.TextStyle.Font.Size = th.fontSize - 2
	leg.Top, leg.Left = true, true

	for i, series := range r.Series {
		xys := make(plotter.XYs, len(series))
		for x, y := range series {
			xys[x].X, xys[x].Y = float64(x), y
		}
		if ch.Smooth && len(series) > 2 {
			xs, ys := make([]float64, len(xys)), make([]float64, len(xys))
			for j, pt := range xys {
				xs[j], ys[j] = pt.X, pt.Y
			}
			if pts, err := metrics.Smooth(xs, ys, 10*len(series)); err == nil {
				xys = make(plotter.XYs, len(pts))
				for j, pt := range pts {
					xys[j].X, xys[j].Y = pt.X, pt.Y
				}
			}
		}
		l, err := plotter.NewLine(xys)
		if err != nil {
			return nil, err
		}
		l.Color = entityColor(r.Labels[i])
		l.Width = th.line
		p.Add(l)
		leg.Add(r.Labels[i], l)
	}

	p.X.Min = 0
	p.X.Max = float64(r.Len())
	setYRange(p, ch, metrics.MaxOf(r.Series...))

	w, h := size(ch, st)
	files, err := saveWithSideLegend(p, leg, w, h, dir, name, out.Formats)
	if err != nil {
		return files, err
	}
	if out.CSV {
		path := filepath.Join(dir, name+".csv")
		if err = WriteCSV(path, append([]string{"round"}, r.Labels...), roundsRows(r)); err != nil {
			return files, err
		}
		files = append(files, path)
	}
	return files, nil
}

// saveWithSideLegend gives the plot the left 80% of the canvas and
// centres the legend vertically in the remaining strip.
func saveWithSideLegend(p *plot.Plot, leg plot.Legend, w, h vg.Length, dir, name string, formats []string) ([]string, error) {
	legendWidth := w / 5
	var files []string
	for _, format := range formats {
		cw, err := draw.NewFormattedCanvas(w, h, format)
		if err != nil {
			return files, errors.Annotatef(err, "render %s as %s", name, format)
		}
		dc := draw.New(cw)
		fillCanvas(dc, color.White)
		p.Draw(draw.Crop(dc, 0, -legendWidth, 0, 0))

		lc := draw.Crop(dc, w-legendWidth, 0, 0, 0)
		box := leg.Rectangle(lc)
		leg.YOffs = -((lc.Max.Y - lc.Min.Y) - (box.Max.Y - box.Min.Y)) / 2
		leg.Draw(lc)

		path := filepath.Join(dir, name+"."+format)
		if err = writeAtomic(path, cw); err != nil {
			return files, err
		}
		files = append(files, path)
	}
	return files, nil
}

func roundsRows(r dataset.Rounds) [][]string {
	rows := make([][]string, r.Len())
	for x := range rows {
		row := []string{strconv.Itoa(x)}
		for _, s := range r.Series {
			if x < len(s) {
				row = append(row, formatFloat(s[x]))
			} else {
				row = append(row, "")
			}
		}
		rows[x] = row
	}
	return rows
}
