package charts

import (
	"path/filepath"
	"strconv"

	"genplots/config"
	"genplots/dataset"

	"github.com/pingcap/errors"
	"gonum.org/v1/plot/plotter"
)

// CDF draws one empirical distribution curve per cell.
func CDF(curves []dataset.Curve, ch config.Chart, st config.Style, out Output) ([]string, error) {
	th, err := newTheme(st)
	if err != nil {
		return nil, err
	}
	p := newPlot(ch, th)

	colors := seriesColors(len(curves))
	for i, c := range curves {
		xys := make(plotter.XYs, len(c.Points))
		for j, pt := range c.Points {
			xys[j].X, xys[j].Y = pt.X, pt.Y
		}
		l, err := plotter.NewLine(xys)
		if err != nil {
			return nil, errors.Annotatef(err, "chart %s: %s", ch.Name, c.Cell.LongLabel())
		}
		l.Color = colors[i]
		l.Width = th.line
		p.Add(l)
		p.Legend.Add(c.Cell.LongLabel(), l)
	}
	setYRange(p, ch, 1)

	w, h := size(ch, st)
	files, err := save(p, w, h, out.Dir, ch.Name, out.Formats)
	if err != nil {
		return files, err
	}
	if out.CSV {
		path := filepath.Join(out.Dir, ch.Name+".csv")
		if err = WriteCSV(path, cdfHeader, cdfRows(curves)); err != nil {
			return files, err
		}
		files = append(files, path)
	}
	return files, nil
}

var cdfHeader = []string{"system", "scenario", "clients", "value", "fraction"}

func cdfRows(curves []dataset.Curve) [][]string {
	var rows [][]string
	for _, c := range curves {
		for _, pt := range c.Points {
			rows = append(rows, []string{
				c.Cell.System.Name,
				c.Cell.Scenario.ID,
				strconv.Itoa(c.Cell.Clients.Count),
				formatFloat(pt.X),
				formatFloat(pt.Y),
			})
		}
	}
	return rows
}
