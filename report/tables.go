package report

import (
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"genplots/catalog"
	"genplots/config"
	"genplots/dataset"
	"genplots/metrics"

	"github.com/olekukonko/tablewriter"
	log "github.com/sirupsen/logrus"
)

func format(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// statsTable holds one row per cell; columns are added chart by chart.
type statsTable struct {
	header []string
	rows   [][]string
	index  map[string]int
}

func newStatsTable(cells []catalog.Cell) *statsTable {
	t := &statsTable{
		header: []string{"System", "Scenario", "Clients"},
		index:  make(map[string]int, len(cells)),
	}
	for i, c := range cells {
		t.index[c.Key()] = i
		t.rows = append(t.rows, []string{c.System.Name, c.Scenario.Label, c.Clients.Label})
	}
	return t
}

// addColumn appends a column filled with "-" and returns its index.
func (t *statsTable) addColumn(name string) int {
	t.header = append(t.header, name)
	for i := range t.rows {
		t.rows[i] = append(t.rows[i], "-")
	}
	return len(t.header) - 1
}

func (t *statsTable) set(c catalog.Cell, col int, v string) {
	if i, ok := t.index[c.Key()]; ok {
		t.rows[i][col] = v
	}
}

// Stats prints the per-cell numbers behind every enabled chart. Charts
// whose inputs cannot be read are left as "-" instead of failing.
func (r *Report) Stats(w io.Writer) error {
	t := newStatsTable(r.cat.Cells())

	for _, ch := range r.cfg.EnabledCharts() {
		logger := log.WithField("chart", ch.Name)
		switch ch.Kind {
		case config.KindBars:
			col, avgCol := t.addColumn(ch.Name), -1
			if ch.AverageLine != "" {
				avgCol = t.addColumn(ch.Name + " per " + strings.TrimSuffix(ch.AverageLine, "s"))
			}
			data, err := dataset.LoadBars(r.cat, ch)
			if err != nil {
				logger.WithError(err).Warn("skipping column")
				continue
			}
			for _, b := range data.Bars {
				t.set(b.Cell, col, format(b.Value))
				if avgCol >= 0 && !math.IsNaN(b.Average) {
					t.set(b.Cell, avgCol, format(b.Average))
				}
			}
		case config.KindBoxes:
			col := t.addColumn(ch.Name + " median")
			data, err := dataset.LoadBoxes(r.cat, ch)
			if err != nil {
				logger.WithError(err).Warn("skipping column")
				continue
			}
			for _, b := range data.Boxes {
				t.set(b.Cell, col, format(b.Stats.Median))
			}
		case config.KindCDF:
			p50, p95, p99 := t.addColumn(ch.Name+" p50"), t.addColumn(ch.Name+" p95"), t.addColumn(ch.Name+" p99")
			curves, err := dataset.LoadCurves(r.cat, ch)
			if err != nil {
				logger.WithError(err).Warn("skipping column")
				continue
			}
			for _, c := range curves {
				samples := make([]float64, len(c.Points))
				for i, pt := range c.Points {
					samples[i] = pt.X
				}
				s := metrics.SummarizeLatencies(samples)
				t.set(c.Cell, p50, format(s.P50))
				t.set(c.Cell, p95, format(s.P95))
				t.set(c.Cell, p99, format(s.P99))
			}
		}
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader(t.header)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.AppendBulk(t.rows)
	table.Render()
	return nil
}

// List prints every measurement file the configuration addresses. With
// check set it also reports whether each file exists.
func (r *Report) List(w io.Writer, check bool) error {
	header := []string{"Scenario", "System", "Clients", "Metric", "Run", "Path"}
	if check {
		header = append(header, "Status")
	}
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)

	missing := 0
	for _, e := range r.cat.Entries() {
		run := ""
		if e.Run > 0 {
			run = strconv.Itoa(e.Run)
		}
		row := []string{e.Cell.Scenario.ID, e.Cell.System.Name, e.Cell.Clients.Key, e.Metric, run, e.Path}
		if check {
			status := "ok"
			if _, err := os.Stat(e.Path); err != nil {
				status = "missing"
				missing++
			}
			row = append(row, status)
		}
		table.Append(row)
	}
	table.Render()

	if missing > 0 {
		log.WithField("missing", missing).Warn("some measurement files are missing")
	}
	return nil
}
