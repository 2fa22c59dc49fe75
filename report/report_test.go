package report

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"genplots/catalog"
	"genplots/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixture = map[string]string{
	catalog.BandwidthClients: "12500.0\n",
	catalog.BandwidthServers: "4200\n",
	catalog.LoadCPUClients:   "10.5,20.25,30,40\n",
	catalog.LoadCPUServers:   "5,15,25\n",
	catalog.LoadMemClients:   "250000\n",
	catalog.LoadMemServers:   "4200000\n",
	catalog.Latencies:        "0.1,0.3,0.2,0.25,0.5\n",
	catalog.MessagesPerMix:   "mix-a,mix-b,mix-c\n10,12,9,14\n3,4,5,6\n7,7,7\n\n",
}

// setup writes a complete metrics tree and returns a config rendering svg.
func setup(t *testing.T) (*config.Config, string) {
	t.Helper()
	cfg, err := config.NewConfig("")
	require.NoError(t, err)
	cfg.Formats = []string{"svg"}

	root := t.TempDir()
	for _, e := range catalog.New(root, cfg).Entries() {
		require.NoError(t, os.MkdirAll(filepath.Dir(e.Path), 0o755))
		require.NoError(t, os.WriteFile(e.Path, []byte(fixture[e.Metric]), 0o644))
	}
	return cfg, root
}

func TestRunRendersEveryChart(t *testing.T) {
	cfg, root := setup(t)
	cfg.ExportCSV = true

	r, err := New(cfg, root)
	require.NoError(t, err)
	require.NoError(t, r.Run(context.Background()))

	for _, name := range []string{
		"bandwidth-usage_clients", "bandwidth-usage_servers",
		"load-cpu_clients", "load-cpu_servers",
		"load-mem_clients", "load-mem_servers",
		"msg-latencies",
	} {
		assert.FileExists(t, filepath.Join(root, name+".svg"))
		assert.FileExists(t, filepath.Join(root, name+".csv"))
	}

	runs := 0
	for _, e := range r.Catalog().Entries() {
		if e.Metric == catalog.MessagesPerMix {
			assert.FileExists(t, filepath.Join(filepath.Dir(e.Path), "msgs-per-mix_first-to-last-round.svg"))
			runs++
		}
	}
	assert.Equal(t, 24, runs)
	// 7 charts and 24 runs, each with svg and csv
	assert.Len(t, r.Files(), 2*(7+24))
}

func TestRunParallelMatchesSequential(t *testing.T) {
	render := func(workers int) map[string][]byte {
		cfg, root := setup(t)
		cfg.Workers = workers
		cfg.OutputDir = t.TempDir()

		r, err := New(cfg, root)
		require.NoError(t, err)
		require.NoError(t, r.Run(context.Background()))

		out := map[string][]byte{}
		for _, f := range r.Files() {
			b, err := os.ReadFile(f)
			require.NoError(t, err)
			out[filepath.Base(f)] = b
		}
		return out
	}

	sequential := render(1)
	parallel := render(4)
	assert.Len(t, sequential, 7+24)
	assert.Equal(t, sequential, parallel)
}

func TestRunMissingInputWritesNothing(t *testing.T) {
	cfg, root := setup(t)
	cfg.Enabled = []string{"msg-latencies"}

	cat := catalog.New(root, cfg)
	require.NoError(t, os.Remove(cat.Path(cat.Cells()[3], catalog.Latencies)))

	r, err := New(cfg, root)
	require.NoError(t, err)
	err = r.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "msg-latencies")

	assert.NoFileExists(t, filepath.Join(root, "msg-latencies.svg"))
	assert.Empty(t, r.Files())
}

func TestRunCanceled(t *testing.T) {
	cfg, root := setup(t)
	r, err := New(cfg, root)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, r.Run(ctx), context.Canceled)
	assert.Empty(t, r.Files())
}

func TestRunSummaryAndMetrics(t *testing.T) {
	cfg, root := setup(t)
	cfg.Formats = []string{"png"}
	cfg.Enabled = []string{"load-mem_clients", "msg-latencies"}
	cfg.Summary = true
	cfg.MetricsTextfile = filepath.Join(t.TempDir(), "genplots.prom")

	r, err := New(cfg, root)
	require.NoError(t, err)
	require.NoError(t, r.Run(context.Background()))

	assert.FileExists(t, filepath.Join(root, "summary.png"))
	prom, err := os.ReadFile(cfg.MetricsTextfile)
	require.NoError(t, err)
	assert.Contains(t, string(prom), "genplots_files_written_total 3")
	assert.Contains(t, string(prom), `genplots_charts_rendered_total{kind="cdf"} 1`)
	assert.Contains(t, string(prom), `genplots_chart_render_seconds_count{chart="load-mem_clients"} 1`)
}

func TestNewRejects(t *testing.T) {
	cfg, root := setup(t)

	_, err := New(cfg, filepath.Join(root, "nope"))
	assert.Error(t, err)

	file := filepath.Join(root, "file")
	require.NoError(t, os.WriteFile(file, nil, 0o644))
	_, err = New(cfg, file)
	assert.Error(t, err)

	cfg.Workers = 0
	_, err = New(cfg, root)
	assert.Error(t, err)
}

func TestStats(t *testing.T) {
	cfg, root := setup(t)
	cat := catalog.New(root, cfg)
	require.NoError(t, os.Remove(cat.Path(cat.Cells()[0], catalog.LoadCPUServers)))

	r, err := New(cfg, root)
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, r.Stats(&buf))

	out := buf.String()
	assert.Contains(t, out, "bandwidth-usage_clients")
	assert.Contains(t, out, "load-cpu_clients median")
	assert.Contains(t, out, "msg-latencies p95")
	assert.Contains(t, out, "25.00")   // 12500 over 500 clients
	assert.Contains(t, out, "4200.00") // server bandwidth is a total
	assert.NotContains(t, out, "msgs-per-mix")
	assert.Contains(t, out, "bandwidth-usage_servers per server")
	assert.Contains(t, out, "200.00") // 4200 over 21 zeno servers
	// one missing input blanks the whole server cpu column, and pung has
	// no server count to average over
	assert.Equal(t, len(cat.Cells())+len(cat.Cells("pung")), strings.Count(out, "| - "))
}

func TestList(t *testing.T) {
	cfg, root := setup(t)
	cat := catalog.New(root, cfg)
	victim := cat.Path(cat.Cells()[1], catalog.LoadMemServers)
	require.NoError(t, os.Remove(victim))

	r, err := New(cfg, root)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, r.List(&buf, true))
	out := buf.String()
	assert.Equal(t, 1, strings.Count(out, "missing"))
	assert.Contains(t, out, "run-03")

	buf.Reset()
	require.NoError(t, r.List(&buf, false))
	assert.NotContains(t, buf.String(), "Status")
}
