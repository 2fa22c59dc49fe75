// Copyright 2018 PingCAP, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"os"
	"strings"
	"time"

	"genplots/config"
	"genplots/report"

	"github.com/magiconair/properties"
	"github.com/pingcap/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	configFile     string
	propertyFiles  []string
	propertyValues []string
	chartsArg      []string
	verbose        bool

	workersArg  int
	formatsArg  []string
	outArg      string
	csvArg      bool
	summaryArg  bool
	textfileArg string
	checkArg    bool
)

// loadConfig layers the configuration: built-in defaults, the YAML file,
// property files and -p values, then explicit flags.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.NewConfig(configFile)
	if err != nil {
		return nil, err
	}

	props := properties.NewProperties()
	if len(propertyFiles) > 0 {
		if props, err = properties.LoadFiles(propertyFiles, properties.UTF8, false); err != nil {
			return nil, errors.Annotate(err, "load property files")
		}
	}
	for _, prop := range propertyValues {
		seps := strings.SplitN(prop, "=", 2)
		if len(seps) != 2 {
			return nil, errors.Errorf("bad property: `%s`, expected format `name=value`", prop)
		}
		if _, _, err = props.Set(seps[0], seps[1]); err != nil {
			return nil, errors.Annotatef(err, "property %s", seps[0])
		}
	}
	if err = cfg.ApplyProperties(props); err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("charts") {
		cfg.Enabled = chartsArg
	}
	if flags.Changed("verbose") {
		cfg.Verbose = verbose
	}
	if flags.Changed("workers") {
		cfg.Workers = workersArg
	}
	if flags.Changed("formats") {
		cfg.Formats = formatsArg
	}
	if flags.Changed("out") {
		cfg.OutputDir = outArg
	}
	if flags.Changed("csv") {
		cfg.ExportCSV = csvArg
	}
	if flags.Changed("summary") {
		cfg.Summary = summaryArg
	}
	if flags.Changed("metrics-textfile") {
		cfg.MetricsTextfile = textfileArg
	}

	if cfg.Verbose {
		log.SetLevel(log.DebugLevel)
	}
	return cfg, nil
}

func newReport(cmd *cobra.Command, root string) (*report.Report, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	return report.New(cfg, root)
}

func runRenderCommandFunc(cmd *cobra.Command, args []string) error {
	r, err := newReport(cmd, args[0])
	if err != nil {
		return err
	}
	start := time.Now()
	if err = r.Run(globalContext); err != nil {
		return err
	}
	log.WithFields(log.Fields{
		"files": len(r.Files()),
		"took":  time.Since(start).Round(time.Millisecond),
	}).Info("done")
	return nil
}

func runListCommandFunc(cmd *cobra.Command, args []string) error {
	r, err := newReport(cmd, args[0])
	if err != nil {
		return err
	}
	return r.List(os.Stdout, checkArg)
}

func runStatsCommandFunc(cmd *cobra.Command, args []string) error {
	r, err := newReport(cmd, args[0])
	if err != nil {
		return err
	}
	return r.Stats(os.Stdout)
}

func newRootCommand() *cobra.Command {
	m := &cobra.Command{
		Use:           "genplots <metrics-root>",
		Short:         "Render experiment charts from a metrics directory",
		Args:          cobra.ExactArgs(1),
		RunE:          runRenderCommandFunc,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := m.PersistentFlags()
	pf.StringVar(&configFile, "config", "", "YAML file overlaid on the built-in configuration")
	pf.StringSliceVarP(&propertyFiles, "property_file", "P", nil, "Specify a property file")
	pf.StringArrayVarP(&propertyValues, "prop", "p", nil, "Specify a property value with name=value")
	pf.StringSliceVar(&chartsArg, "charts", nil, "Only handle the named charts")
	pf.BoolVarP(&verbose, "verbose", "v", false, "Log debug output")

	f := m.Flags()
	f.IntVar(&workersArg, "workers", 1, "Render up to n charts concurrently")
	f.StringSliceVar(&formatsArg, "formats", nil, "Output formats, e.g. pdf,tex,svg,png")
	f.StringVar(&outArg, "out", "", "Write every chart to this directory instead of the metrics root")
	f.BoolVar(&csvArg, "csv", false, "Also export the plotted data as CSV")
	f.BoolVar(&summaryArg, "summary", false, "Tile the png output into summary.png")
	f.StringVar(&textfileArg, "metrics-textfile", "", "Write run metrics in Prometheus text format to this file")
	return m
}

func newListCommand() *cobra.Command {
	m := &cobra.Command{
		Use:   "list <metrics-root>",
		Short: "List the measurement files the configuration reads",
		Args:  cobra.ExactArgs(1),
		RunE:  runListCommandFunc,
	}
	m.Flags().BoolVar(&checkArg, "check", false, "Report whether each file exists")
	return m
}

func newStatsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stats <metrics-root>",
		Short: "Print the aggregated numbers behind each chart",
		Args:  cobra.ExactArgs(1),
		RunE:  runStatsCommandFunc,
	}
}
