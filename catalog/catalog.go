// Package catalog maps experiment coordinates to measurement file paths.
// It never touches the file system.
package catalog

import (
	"fmt"
	"path/filepath"

	"genplots/config"
)

// Metric keys, as used in config.Layout.Files.
const (
	BandwidthClients = "BandwidthClients"
	BandwidthServers = "BandwidthServers"
	LoadCPUClients   = "LoadCPUClients"
	LoadCPUServers   = "LoadCPUServers"
	LoadMemClients   = "LoadMemClients"
	LoadMemServers   = "LoadMemServers"
	Latencies        = "Latencies"
	MessagesPerMix   = "MessagesPerMix"
)

// Cell is one scenario x system x client bucket combination.
type Cell struct {
	Scenario config.Scenario
	System   config.System
	Clients  config.ClientBucket
}

// Key identifies the cell as "scenario/system/bucket", e.g. "01/zeno/0500".
func (c Cell) Key() string {
	return c.Scenario.ID + "/" + c.System.Name + "/" + c.Clients.Key
}

// Label is the legend label used by grouped charts, "zeno (tc off, no failures)".
func (c Cell) Label() string {
	return fmt.Sprintf("%s (%s)", c.System.DisplayName(), c.Scenario.Label)
}

// LongLabel also names the client bucket, "zeno, 500 clients (tc off, no failures)".
func (c Cell) LongLabel() string {
	return fmt.Sprintf("%s, %s (%s)", c.System.DisplayName(), c.Clients.Label, c.Scenario.Label)
}

// Hatch is the fill pattern of the cell: the system override, else the
// scenario pattern.
func (c Cell) Hatch() string {
	if c.System.Hatch != "" {
		return c.System.Hatch
	}
	return c.Scenario.Hatch
}

type Catalog struct {
	root   string
	layout config.Layout
	groups [][]Cell
}

func New(root string, cfg *config.Config) *Catalog {
	c := &Catalog{root: root, layout: cfg.Layout}
	for _, b := range cfg.ClientBuckets {
		var group []Cell
		for _, sys := range cfg.Systems {
			for _, id := range sys.Scenarios {
				sc, ok := cfg.Scenario(id)
				if !ok {
					continue
				}
				group = append(group, Cell{Scenario: sc, System: sys, Clients: b})
			}
		}
		c.groups = append(c.groups, group)
	}
	return c
}

func (c *Catalog) Root() string {
	return c.root
}

// Groups returns the cells per client bucket, restricted to the given
// systems when any are named.
func (c *Catalog) Groups(systems ...string) [][]Cell {
	want := make(map[string]bool, len(systems))
	for _, s := range systems {
		want[s] = true
	}
	out := make([][]Cell, 0, len(c.groups))
	for _, g := range c.groups {
		var group []Cell
		for _, cell := range g {
			if len(want) == 0 || want[cell.System.Name] {
				group = append(group, cell)
			}
		}
		out = append(out, group)
	}
	return out
}

// Cells returns the cells in bucket, system, scenario order.
func (c *Catalog) Cells(systems ...string) []Cell {
	var out []Cell
	for _, g := range c.Groups(systems...) {
		out = append(out, g...)
	}
	return out
}

func (c *Catalog) cellDir(cell Cell) string {
	return filepath.Join(c.root, cell.Scenario.Dir, cell.System.Name, fmt.Sprintf(c.layout.ClientDir, cell.Clients.Key))
}

// RunDir is the directory of one experiment run of a cell. Runs count from 1.
func (c *Catalog) RunDir(cell Cell, run int) string {
	return filepath.Join(c.cellDir(cell), fmt.Sprintf(c.layout.RunDir, run))
}

// Path returns <root>/<scenario>/<system>/<clients>/<file>.
func (c *Catalog) Path(cell Cell, metric string) string {
	return filepath.Join(c.cellDir(cell), c.layout.Files[metric])
}

// RunPath returns the path of a per-run metric file.
func (c *Catalog) RunPath(cell Cell, metric string, run int) string {
	return filepath.Join(c.RunDir(cell, run), c.layout.Files[metric])
}

type Entry struct {
	Cell   Cell
	Metric string
	Run    int // 0 for per-cell metrics
	Path   string
}

// Entries lists every path the configuration addresses. Per-run metrics
// are expanded for each run of systems that have runs.
func (c *Catalog) Entries() []Entry {
	var out []Entry
	for _, cell := range c.Cells() {
		for _, m := range []string{BandwidthClients, BandwidthServers, LoadCPUClients, LoadCPUServers, LoadMemClients, LoadMemServers, Latencies} {
			if _, ok := c.layout.Files[m]; ok {
				out = append(out, Entry{Cell: cell, Metric: m, Path: c.Path(cell, m)})
			}
		}
		if _, ok := c.layout.Files[MessagesPerMix]; ok {
			for run := 1; run <= cell.System.Runs; run++ {
				out = append(out, Entry{Cell: cell, Metric: MessagesPerMix, Run: run, Path: c.RunPath(cell, MessagesPerMix, run)})
			}
		}
	}
	return out
}
