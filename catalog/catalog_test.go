package catalog

import (
	"path/filepath"
	"testing"

	"genplots/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultCatalog(t *testing.T) *Catalog {
	cfg, err := config.NewConfig("")
	require.NoError(t, err)
	return New("/data", cfg)
}

func TestCellsOrder(t *testing.T) {
	c := defaultCatalog(t)

	groups := c.Groups()
	require.Len(t, groups, 2)
	for _, g := range groups {
		require.Len(t, g, 5)
		assert.Equal(t, "zeno", g[0].System.Name)
		assert.Equal(t, "01", g[0].Scenario.ID)
		assert.Equal(t, "04", g[3].Scenario.ID)
		assert.Equal(t, "pung", g[4].System.Name)
	}
	assert.Equal(t, "0500", groups[0][0].Clients.Key)
	assert.Equal(t, "1000", groups[1][0].Clients.Key)

	assert.Len(t, c.Cells(), 10)
	assert.Len(t, c.Cells("zeno"), 8)
	assert.Len(t, c.Cells("pung"), 2)
	assert.Empty(t, c.Cells("nobody"))
}

func TestPath(t *testing.T) {
	c := defaultCatalog(t)
	cell := c.Groups()[1][2] // zeno, 1000 clients, scenario 03

	assert.Equal(t,
		filepath.Join("/data", "03_tc-off_proc-on", "zeno", "clients-1000", "load_cpu_lowest-to-highest_servers.data"),
		c.Path(cell, LoadCPUServers))
	assert.Equal(t,
		filepath.Join("/data", "03_tc-off_proc-on", "zeno", "clients-1000", "run-02", "msgs-per-mix_first-to-last-round.data"),
		c.RunPath(cell, MessagesPerMix, 2))
	assert.Equal(t, "/data", c.Root())
}

func TestLabels(t *testing.T) {
	c := defaultCatalog(t)
	zeno := c.Groups()[0][1]
	pung := c.Groups()[0][4]

	assert.Equal(t, "zeno (tc on, no failures)", zeno.Label())
	assert.Equal(t, "zeno, 500 clients (tc on, no failures)", zeno.LongLabel())
	assert.Equal(t, "x", zeno.Hatch())
	assert.Equal(t, "02/zeno/0500", zeno.Key())
	assert.Equal(t, "01/pung/0500", pung.Key())
	assert.Equal(t, "pung (tc off, no failures)", pung.Label())
	assert.Equal(t, `\`, pung.Hatch())
}

func TestEntries(t *testing.T) {
	c := defaultCatalog(t)
	entries := c.Entries()

	// 10 cells x 7 per-cell metrics + 8 zeno cells x 3 runs
	assert.Len(t, entries, 10*7+8*3)

	seen := map[string]bool{}
	for _, e := range entries {
		assert.False(t, seen[e.Path], "duplicate path %s", e.Path)
		seen[e.Path] = true
		if e.Metric == MessagesPerMix {
			assert.Equal(t, "zeno", e.Cell.System.Name)
			assert.True(t, e.Run >= 1 && e.Run <= 3)
		} else {
			assert.Zero(t, e.Run)
		}
	}
}
