package config

import (
	_ "embed"
	"os"
	"strconv"
	"strings"

	"genplots/metrics"

	"github.com/magiconair/properties"
	"github.com/pingcap/errors"
	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultYAML []byte

// Chart kinds.
const (
	KindBars   = "bars"
	KindBoxes  = "boxes"
	KindCDF    = "cdf"
	KindRounds = "rounds"
)

// Entity counts a bar value can be divided by.
const (
	EntityClients = "clients"
	EntityServers = "servers"
)

// Property names accepted by ApplyProperties.
const (
	OutputDir       = "OutputDir"
	Formats         = "Formats"
	Workers         = "Workers"
	ExportCSV       = "ExportCSV"
	Summary         = "Summary"
	MetricsTextfile = "MetricsTextfile"
	Verbose         = "Verbose"
	Enabled         = "Enabled"
)

var knownFormats = map[string]bool{
	"pdf": true, "tex": true, "svg": true, "eps": true,
	"png": true, "jpg": true, "jpeg": true, "tif": true, "tiff": true,
}

var knownLegends = map[string]bool{
	"": true, "upper left": true, "upper right": true,
	"lower left": true, "lower right": true, "outside": true,
}

var knownHatches = map[string]bool{
	"": true, "/": true, `\`: true, "x": true, "+": true,
	"-": true, "|": true, "o": true, ".": true,
}

type Config struct {
	OutputDir       string         `yaml:"OutputDir"`
	Formats         []string       `yaml:"Formats"`
	Workers         int            `yaml:"Workers"`
	ExportCSV       bool           `yaml:"ExportCSV"`
	Summary         bool           `yaml:"Summary"`
	MetricsTextfile string         `yaml:"MetricsTextfile"`
	Verbose         bool           `yaml:"Verbose"`
	Enabled         []string       `yaml:"Enabled"` // chart names; empty enables every chart
	Layout          Layout         `yaml:"Layout"`
	Scenarios       []Scenario     `yaml:"Scenarios"`
	Systems         []System       `yaml:"Systems"`
	ClientBuckets   []ClientBucket `yaml:"ClientBuckets"`
	Style           Style          `yaml:"Style"`
	Charts          []Chart        `yaml:"Charts"`
}

// Layout describes where measurement files live below the metrics root.
type Layout struct {
	ClientDir string            `yaml:"ClientDir"`
	RunDir    string            `yaml:"RunDir"`
	Files     map[string]string `yaml:"Files"`
}

type Scenario struct {
	ID    string `yaml:"ID"`
	Dir   string `yaml:"Dir"`
	Label string `yaml:"Label"`
	Hatch string `yaml:"Hatch"`
}

type System struct {
	Name      string   `yaml:"Name"`
	Label     string   `yaml:"Label"`
	Color     string   `yaml:"Color"`
	Hatch     string   `yaml:"Hatch"` // overrides the scenario hatch when set
	Scenarios []string `yaml:"Scenarios"`
	Servers   int      `yaml:"Servers"`
	Runs      int      `yaml:"Runs"`
}

// DisplayName is the label used in legends.
func (s System) DisplayName() string {
	if s.Label != "" {
		return s.Label
	}
	return s.Name
}

type ClientBucket struct {
	Key   string `yaml:"Key"`
	Count int    `yaml:"Count"`
	Label string `yaml:"Label"`
}

type Style struct {
	Width        float64 `yaml:"Width"`  // inches
	Height       float64 `yaml:"Height"` // inches
	FontSize     float64 `yaml:"FontSize"`
	GridColor    string  `yaml:"GridColor"`
	GridAlpha    float64 `yaml:"GridAlpha"`
	EdgeColor    string  `yaml:"EdgeColor"`
	AverageColor string  `yaml:"AverageColor"`
	LineWidth    float64 `yaml:"LineWidth"`
}

// Chart holds everything that differs between two charts of the same kind.
type Chart struct {
	Name            string    `yaml:"Name"`
	Kind            string    `yaml:"Kind"`
	Metric          string    `yaml:"Metric"`
	Systems         []string  `yaml:"Systems"`
	Order           []string  `yaml:"Order"` // "scenario/system/bucket" keys drawn first, in this order
	Divisor         string    `yaml:"Divisor"`
	AverageLine     string    `yaml:"AverageLine"`
	FromUnit        string    `yaml:"FromUnit"`
	ToUnit          string    `yaml:"ToUnit"`
	Title           string    `yaml:"Title"`
	XLabel          string    `yaml:"XLabel"`
	YLabel          string    `yaml:"YLabel"`
	YScale          string    `yaml:"YScale"`
	YMin            *float64  `yaml:"YMin"`
	YMax            *float64  `yaml:"YMax"`
	YTicks          []float64 `yaml:"YTicks"`
	YHeadroom       float64   `yaml:"YHeadroom"`
	YHeadroomFactor float64   `yaml:"YHeadroomFactor"`
	BarWidth        float64   `yaml:"BarWidth"`
	Edge            bool      `yaml:"Edge"`
	ValueLabels     bool      `yaml:"ValueLabels"`
	LabelFormat     string    `yaml:"LabelFormat"`
	LabelFactor     float64   `yaml:"LabelFactor"`
	LabelOffset     float64   `yaml:"LabelOffset"`
	Legend          string    `yaml:"Legend"`
	XGrid           bool      `yaml:"XGrid"`
	Smooth          bool      `yaml:"Smooth"`
	Width           float64   `yaml:"Width"`
	Height          float64   `yaml:"Height"`
}

// Size returns the figure size in inches, falling back to the style size.
func (ch Chart) Size(s Style) (float64, float64) {
	w, h := ch.Width, ch.Height
	if w <= 0 {
		w = s.Width
	}
	if h <= 0 {
		h = s.Height
	}
	return w, h
}

// Default returns the built-in configuration.
func Default() (*Config, error) {
	var c Config
	if err := yaml.Unmarshal(defaultYAML, &c); err != nil {
		return nil, errors.Annotate(err, "parse default config")
	}
	return &c, nil
}

// NewConfig creates a new Config instance, populating it with values
// from a YAML file on top of the built-in defaults. An empty file name
// returns the defaults.
func NewConfig(yamlFileName string) (*Config, error) {
	c, err := Default()
	if err != nil {
		return nil, err
	}
	if yamlFileName == "" {
		return c, nil
	}

	yamlFile, err := os.ReadFile(yamlFileName)
	if err != nil {
		return nil, errors.Annotatef(err, "read config %s", yamlFileName)
	}
	if err = yaml.Unmarshal(yamlFile, c); err != nil {
		return nil, errors.Annotatef(err, "parse config %s", yamlFileName)
	}
	return c, nil
}

// ApplyProperties overrides top-level settings with name=value properties.
func (c *Config) ApplyProperties(p *properties.Properties) error {
	for _, key := range p.Keys() {
		value, _ := p.Get(key)
		var err error
		switch key {
		case OutputDir:
			c.OutputDir = value
		case Formats:
			c.Formats = splitList(value)
		case Workers:
			c.Workers, err = strconv.Atoi(value)
		case ExportCSV:
			c.ExportCSV, err = strconv.ParseBool(value)
		case Summary:
			c.Summary, err = strconv.ParseBool(value)
		case MetricsTextfile:
			c.MetricsTextfile = value
		case Verbose:
			c.Verbose, err = strconv.ParseBool(value)
		case Enabled:
			c.Enabled = splitList(value)
		default:
			return errors.Errorf("unknown property %q", key)
		}
		if err != nil {
			return errors.Annotatef(err, "property %s", key)
		}
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

// Scenario looks up a scenario by id.
func (c *Config) Scenario(id string) (Scenario, bool) {
	for _, s := range c.Scenarios {
		if s.ID == id {
			return s, true
		}
	}
	return Scenario{}, false
}

// System looks up a system by name.
func (c *Config) System(name string) (System, bool) {
	for _, s := range c.Systems {
		if s.Name == name {
			return s, true
		}
	}
	return System{}, false
}

// Chart looks up a chart by name.
func (c *Config) Chart(name string) (Chart, bool) {
	for _, ch := range c.Charts {
		if ch.Name == name {
			return ch, true
		}
	}
	return Chart{}, false
}

// EnabledCharts returns the charts to render, in configuration order.
func (c *Config) EnabledCharts() []Chart {
	if len(c.Enabled) == 0 {
		return c.Charts
	}
	want := make(map[string]bool, len(c.Enabled))
	for _, name := range c.Enabled {
		want[name] = true
	}
	var out []Chart
	for _, ch := range c.Charts {
		if want[ch.Name] {
			out = append(out, ch)
		}
	}
	return out
}

// Validate checks the configuration for dangling references and
// unsupported values.
func (c *Config) Validate() error {
	if c.Workers < 1 {
		return errors.Errorf("Workers must be at least 1, got %d", c.Workers)
	}
	if len(c.Formats) == 0 {
		return errors.New("no output formats configured")
	}
	for _, f := range c.Formats {
		if !knownFormats[f] {
			return errors.Errorf("unsupported output format %q", f)
		}
	}
	if c.Layout.ClientDir == "" || c.Layout.RunDir == "" {
		return errors.New("Layout.ClientDir and Layout.RunDir must be set")
	}
	for _, col := range []string{c.Style.GridColor, c.Style.EdgeColor, c.Style.AverageColor} {
		if _, err := ParseColor(col); err != nil {
			return errors.Annotate(err, "style")
		}
	}

	scenarios := make(map[string]bool, len(c.Scenarios))
	for _, s := range c.Scenarios {
		if s.ID == "" || s.Dir == "" {
			return errors.Errorf("scenario %q needs an ID and a Dir", s.Label)
		}
		if scenarios[s.ID] {
			return errors.Errorf("duplicate scenario %q", s.ID)
		}
		if !knownHatches[s.Hatch] {
			return errors.Errorf("scenario %s: unknown hatch %q", s.ID, s.Hatch)
		}
		scenarios[s.ID] = true
	}

	systems := make(map[string]bool, len(c.Systems))
	for _, s := range c.Systems {
		if s.Name == "" {
			return errors.New("system without a Name")
		}
		if systems[s.Name] {
			return errors.Errorf("duplicate system %q", s.Name)
		}
		systems[s.Name] = true
		if _, err := ParseColor(s.Color); err != nil {
			return errors.Annotatef(err, "system %s", s.Name)
		}
		if !knownHatches[s.Hatch] {
			return errors.Errorf("system %s: unknown hatch %q", s.Name, s.Hatch)
		}
		for _, id := range s.Scenarios {
			if !scenarios[id] {
				return errors.Errorf("system %s references unknown scenario %q", s.Name, id)
			}
		}
		if s.Servers < 0 || s.Runs < 0 {
			return errors.Errorf("system %s: Servers and Runs must not be negative", s.Name)
		}
	}

	for _, b := range c.ClientBuckets {
		if b.Key == "" || b.Count <= 0 {
			return errors.Errorf("client bucket %q needs a Key and a positive Count", b.Label)
		}
	}

	charts := make(map[string]bool, len(c.Charts))
	for _, ch := range c.Charts {
		if err := c.validateChart(ch, systems); err != nil {
			return errors.Annotatef(err, "chart %s", ch.Name)
		}
		if charts[ch.Name] {
			return errors.Errorf("duplicate chart %q", ch.Name)
		}
		charts[ch.Name] = true
	}
	for _, name := range c.Enabled {
		if !charts[name] {
			return errors.Errorf("enabled chart %q is not configured", name)
		}
	}
	return nil
}

func (c *Config) validateChart(ch Chart, systems map[string]bool) error {
	if ch.Name == "" {
		return errors.New("missing Name")
	}
	switch ch.Kind {
	case KindBars, KindBoxes, KindCDF, KindRounds:
	default:
		return errors.Errorf("unknown kind %q", ch.Kind)
	}
	if _, ok := c.Layout.Files[ch.Metric]; !ok {
		return errors.Errorf("metric %q has no file in Layout.Files", ch.Metric)
	}
	for _, e := range []string{ch.Divisor, ch.AverageLine} {
		if e != "" && e != EntityClients && e != EntityServers {
			return errors.Errorf("unknown entity %q", e)
		}
	}
	if (ch.FromUnit == "") != (ch.ToUnit == "") {
		return errors.Errorf("FromUnit %q and ToUnit %q must be set together", ch.FromUnit, ch.ToUnit)
	}
	if _, err := metrics.ParseUnit(ch.FromUnit); err != nil {
		return err
	}
	if _, err := metrics.ParseUnit(ch.ToUnit); err != nil {
		return err
	}
	if ch.YScale != "" && ch.YScale != "linear" && ch.YScale != "symlog" {
		return errors.Errorf("unknown y scale %q", ch.YScale)
	}
	if !knownLegends[ch.Legend] {
		return errors.Errorf("unknown legend position %q", ch.Legend)
	}
	if ch.YMin != nil && ch.YMax != nil && *ch.YMin >= *ch.YMax {
		return errors.Errorf("YMin %g must be below YMax %g", *ch.YMin, *ch.YMax)
	}
	for _, s := range ch.Systems {
		if !systems[s] {
			return errors.Errorf("unknown system %q", s)
		}
	}
	for _, key := range ch.Order {
		parts := strings.Split(key, "/")
		if len(parts) != 3 {
			return errors.Errorf("order entry %q is not scenario/system/bucket", key)
		}
		if _, ok := c.Scenario(parts[0]); !ok || !systems[parts[1]] || !c.hasBucket(parts[2]) {
			return errors.Errorf("order entry %q names no known cell", key)
		}
	}
	return nil
}

func (c *Config) hasBucket(key string) bool {
	for _, b := range c.ClientBuckets {
		if b.Key == key {
			return true
		}
	}
	return false
}
