// Package dataset loads the measurement files behind a chart and reduces
// them to the values the chart draws. Every loader reads all of its inputs
// before returning, so a chart with a missing input fails before any output
// is written.
package dataset

import (
	"math"
	"sort"

	"genplots/catalog"
	"genplots/config"
	"genplots/measurement"
	"genplots/metrics"

	"github.com/pingcap/errors"
)

// Tick is a labelled position on the x axis.
type Tick struct {
	Position float64
	Label    string
}

// Layout places grouped cells on the x axis. Group g of n cells occupies
// positions g*(n+1)+1 .. g*(n+1)+n, leaving one empty slot between groups.
type Layout struct {
	Ticks []Tick
	XMax  float64
}

type Bar struct {
	Cell     catalog.Cell
	Position float64
	Value    float64
	Average  float64 // NaN without an average line
	Legend   bool
}

type Bars struct {
	Layout
	Bars []Bar
}

// Values returns the bar heights in layout order.
func (b *Bars) Values() []float64 {
	out := make([]float64, len(b.Bars))
	for i, bar := range b.Bars {
		out[i] = bar.Value
	}
	return out
}

type Box struct {
	Cell     catalog.Cell
	Position float64
	Samples  []float64
	Stats    metrics.BoxStats
	Legend   bool
}

type Boxes struct {
	Layout
	Boxes []Box
}

type Curve struct {
	Cell   catalog.Cell
	Points []metrics.Point
}

// Rounds are the per-round series of one experiment run.
type Rounds struct {
	Cell   catalog.Cell
	Run    int
	Dir    string
	Labels []string
	Series [][]float64
}

// Len is the length of the longest series.
func (r Rounds) Len() int {
	l := 0
	for _, s := range r.Series {
		l = max(l, len(s))
	}
	return l
}

type placed struct {
	cell     catalog.Cell
	position float64
	legend   bool
}

func layout(groups [][]catalog.Cell) (Layout, []placed) {
	n := 0
	for _, g := range groups {
		n = max(n, len(g))
	}
	stride := float64(n + 1)

	var l Layout
	var cells []placed
	for gi, g := range groups {
		base := float64(gi) * stride
		for ci, cell := range g {
			cells = append(cells, placed{cell: cell, position: base + float64(ci+1), legend: gi == 0})
		}
		if len(g) > 0 {
			l.Ticks = append(l.Ticks, Tick{Position: base + stride/2, Label: g[0].Clients.Label})
		}
	}
	l.XMax = float64(len(groups)) * stride
	return l, cells
}

func entityCount(cell catalog.Cell, entity string) int {
	switch entity {
	case config.EntityClients:
		return cell.Clients.Count
	case config.EntityServers:
		return cell.System.Servers
	}
	return 0
}

// LoadBars reads one scalar per cell, converts it to the chart unit and
// optionally divides it by an entity count.
func LoadBars(cat *catalog.Catalog, ch config.Chart) (*Bars, error) {
	from, err := metrics.ParseUnit(ch.FromUnit)
	if err != nil {
		return nil, err
	}
	to, err := metrics.ParseUnit(ch.ToUnit)
	if err != nil {
		return nil, err
	}

	l, cells := layout(cat.Groups(ch.Systems...))
	out := &Bars{Layout: l}
	for _, p := range cells {
		path := cat.Path(p.cell, ch.Metric)
		raw, err := measurement.ReadScalar(path)
		if err != nil {
			return nil, errors.Annotatef(err, "chart %s", ch.Name)
		}
		v, err := metrics.Convert(raw, from, to)
		if err != nil {
			return nil, err
		}
		if ch.Divisor != "" {
			n := entityCount(p.cell, ch.Divisor)
			if n <= 0 {
				return nil, errors.Errorf("chart %s: %s has no %s count", ch.Name, p.cell.System.Name, ch.Divisor)
			}
			v = metrics.PerEntityAverage(v, n)
		}
		avg := math.NaN()
		if ch.AverageLine != "" {
			if n := entityCount(p.cell, ch.AverageLine); n > 0 {
				avg = metrics.PerEntityAverage(v, n)
			}
		}
		out.Bars = append(out.Bars, Bar{Cell: p.cell, Position: p.position, Value: v, Average: avg, Legend: p.legend})
	}
	return out, nil
}

// LoadBoxes reads one sample series per cell.
func LoadBoxes(cat *catalog.Catalog, ch config.Chart) (*Boxes, error) {
	l, cells := layout(cat.Groups(ch.Systems...))
	out := &Boxes{Layout: l}
	for _, p := range cells {
		samples, err := readConverted(cat.Path(p.cell, ch.Metric), ch)
		if err != nil {
			return nil, err
		}
		out.Boxes = append(out.Boxes, Box{
			Cell:     p.cell,
			Position: p.position,
			Samples:  samples,
			Stats:    metrics.Box(samples),
			Legend:   p.legend,
		})
	}
	return out, nil
}

// LoadCurves computes the empirical CDF of every cell's samples. Cells
// named in ch.Order come first, in that order, so later curves are drawn
// on top of earlier ones the same way every time.
func LoadCurves(cat *catalog.Catalog, ch config.Chart) ([]Curve, error) {
	var out []Curve
	for _, cell := range ordered(cat.Cells(ch.Systems...), ch.Order) {
		samples, err := readConverted(cat.Path(cell, ch.Metric), ch)
		if err != nil {
			return nil, err
		}
		out = append(out, Curve{Cell: cell, Points: metrics.EmpiricalCDF(samples)})
	}
	return out, nil
}

// LoadRounds reads the per-round series of every run of every cell whose
// system records runs.
func LoadRounds(cat *catalog.Catalog, ch config.Chart) ([]Rounds, error) {
	var out []Rounds
	for _, cell := range cat.Cells(ch.Systems...) {
		for run := 1; run <= cell.System.Runs; run++ {
			ns, err := measurement.ReadNamedSeries(cat.RunPath(cell, ch.Metric, run))
			if err != nil {
				return nil, errors.Annotatef(err, "chart %s", ch.Name)
			}
			out = append(out, Rounds{
				Cell:   cell,
				Run:    run,
				Dir:    cat.RunDir(cell, run),
				Labels: ns.Labels[:len(ns.Series)],
				Series: ns.Series,
			})
		}
	}
	return out, nil
}

// ordered moves the cells listed in order to the front; the rest keep
// their catalog order.
func ordered(cells []catalog.Cell, order []string) []catalog.Cell {
	if len(order) == 0 {
		return cells
	}
	rank := make(map[string]int, len(order))
	for i, key := range order {
		rank[key] = i
	}
	out := append([]catalog.Cell(nil), cells...)
	sort.SliceStable(out, func(i, j int) bool {
		ri, oki := rank[out[i].Key()]
		rj, okj := rank[out[j].Key()]
		if oki && okj {
			return ri < rj
		}
		return oki && !okj
	})
	return out
}

func readConverted(path string, ch config.Chart) ([]float64, error) {
	samples, err := measurement.ReadSeries(path)
	if err != nil {
		return nil, errors.Annotatef(err, "chart %s", ch.Name)
	}
	from, err := metrics.ParseUnit(ch.FromUnit)
	if err != nil {
		return nil, err
	}
	to, err := metrics.ParseUnit(ch.ToUnit)
	if err != nil {
		return nil, err
	}
	if from == to {
		return samples, nil
	}
	for i, v := range samples {
		if samples[i], err = metrics.Convert(v, from, to); err != nil {
			return nil, err
		}
	}
	return samples, nil
}
