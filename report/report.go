// Package report renders every configured chart for one metrics root.
package report

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"genplots/catalog"
	"genplots/charts"
	"genplots/config"
	"genplots/dataset"

	"github.com/dustin/go-humanize"
	"github.com/pingcap/errors"
	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const (
	summaryFile    = "summary.png"
	summaryColumns = 3
)

type Report struct {
	cfg    *config.Config
	cat    *catalog.Catalog
	outDir string

	registry *prometheus.Registry
	rendered *prometheus.CounterVec
	written  prometheus.Counter
	duration *prometheus.HistogramVec

	mu    sync.Mutex
	files map[string][]string // chart name -> files written
}

// New validates cfg and prepares a report over the metrics below root.
func New(cfg *config.Config, root string) (*Report, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Annotate(err, "invalid config")
	}
	st, err := os.Stat(root)
	if err != nil {
		return nil, errors.Annotatef(err, "metrics root")
	}
	if !st.IsDir() {
		return nil, errors.Errorf("metrics root %s is not a directory", root)
	}

	r := &Report{
		cfg:      cfg,
		cat:      catalog.New(root, cfg),
		outDir:   cfg.OutputDir,
		registry: prometheus.NewRegistry(),
		rendered: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "genplots_charts_rendered_total",
			Help: "Charts rendered, by kind.",
		}, []string{"kind"}),
		written: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "genplots_files_written_total",
			Help: "Output files written.",
		}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "genplots_chart_render_seconds",
			Help:    "Time to load, aggregate and render one chart.",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
		}, []string{"chart"}),
		files: make(map[string][]string),
	}
	if r.outDir == "" {
		r.outDir = root
	}
	r.registry.MustRegister(r.rendered, r.written, r.duration)
	return r, nil
}

func (r *Report) Catalog() *catalog.Catalog {
	return r.cat
}

// Run renders the enabled charts with at most cfg.Workers in flight. The
// first failure cancels the charts that have not started yet.
func (r *Report) Run(ctx context.Context) error {
	enabled := r.cfg.EnabledCharts()
	log.WithFields(log.Fields{
		"root":    r.cat.Root(),
		"charts":  len(enabled),
		"workers": r.cfg.Workers,
		"formats": strings.Join(r.cfg.Formats, ","),
	}).Info("rendering charts")

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.cfg.Workers)
	for _, ch := range enabled {
		ch := ch
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return r.render(ch)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if r.cfg.Summary {
		if err := r.writeSummary(enabled); err != nil {
			return err
		}
	}
	if r.cfg.MetricsTextfile != "" {
		if err := prometheus.WriteToTextfile(r.cfg.MetricsTextfile, r.registry); err != nil {
			return errors.Annotatef(err, "write metrics to %s", r.cfg.MetricsTextfile)
		}
	}
	return nil
}

func (r *Report) render(ch config.Chart) error {
	start := time.Now()
	out := charts.Output{Dir: r.outDir, Formats: r.cfg.Formats, CSV: r.cfg.ExportCSV}
	log.WithField("chart", ch.Name).Debug("loading inputs")

	var files []string
	var err error
	switch ch.Kind {
	case config.KindBars:
		var data *dataset.Bars
		if data, err = dataset.LoadBars(r.cat, ch); err == nil {
			files, err = charts.Bars(data, ch, r.cfg.Style, out)
		}
	case config.KindBoxes:
		var data *dataset.Boxes
		if data, err = dataset.LoadBoxes(r.cat, ch); err == nil {
			files, err = charts.Boxes(data, ch, r.cfg.Style, out)
		}
	case config.KindCDF:
		var curves []dataset.Curve
		if curves, err = dataset.LoadCurves(r.cat, ch); err == nil {
			files, err = charts.CDF(curves, ch, r.cfg.Style, out)
		}
	case config.KindRounds:
		// per-round charts live next to their data unless told otherwise
		out.Dir = r.cfg.OutputDir
		var runs []dataset.Rounds
		if runs, err = dataset.LoadRounds(r.cat, ch); err == nil {
			files, err = charts.Rounds(runs, ch, r.cfg.Style, out)
		}
	default:
		err = errors.Errorf("chart %s: unknown kind %q", ch.Name, ch.Kind)
	}

	r.record(ch, files, time.Since(start))
	return err
}

func (r *Report) record(ch config.Chart, files []string, took time.Duration) {
	for _, f := range files {
		fields := log.Fields{"chart": ch.Name, "file": f}
		if st, err := os.Stat(f); err == nil {
			fields["size"] = humanize.Bytes(uint64(st.Size()))
		}
		log.WithFields(fields).Info("wrote file")
	}
	r.written.Add(float64(len(files)))
	r.duration.WithLabelValues(ch.Name).Observe(took.Seconds())
	if len(files) > 0 {
		r.rendered.WithLabelValues(ch.Kind).Inc()
	}

	r.mu.Lock()
	r.files[ch.Name] = append(r.files[ch.Name], files...)
	r.mu.Unlock()
}

// Files returns every file written so far, in chart order.
func (r *Report) Files() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, ch := range r.cfg.Charts {
		out = append(out, r.files[ch.Name]...)
	}
	return out
}

func (r *Report) writeSummary(enabled []config.Chart) error {
	var pngs []string
	r.mu.Lock()
	for _, ch := range enabled {
		// one tile per run would drown the overview
		if ch.Kind == config.KindRounds {
			continue
		}
		for _, f := range r.files[ch.Name] {
			if filepath.Ext(f) == ".png" {
				pngs = append(pngs, f)
			}
		}
	}
	r.mu.Unlock()
	if len(pngs) == 0 {
		log.Warn("no png output to tile, add png to Formats for a summary")
		return nil
	}

	path := filepath.Join(r.outDir, summaryFile)
	if err := charts.Tile(path, pngs, summaryColumns); err != nil {
		return errors.Annotate(err, "summary")
	}
	r.written.Inc()
	log.WithFields(log.Fields{"file": path, "charts": len(pngs)}).Info("wrote summary")
	return nil
}
