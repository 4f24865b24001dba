// Copyright 2024 The Pageload Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pageload/pageload/aggregate"
	"github.com/pageload/pageload/filter"
	"github.com/pageload/pageload/metrics"
	"github.com/pageload/pageload/report"
	"github.com/pageload/pageload/result"
)

type filterFlags struct {
	name        string
	compare     bool
	combine     string
	diff        bool
	output      string
	chart       string
	chartMetric string
}

func (a *app) filterCmd() *cobra.Command {
	var fl filterFlags
	cmd := &cobra.Command{
		Use:   "filter -f FILTER [options] TEST...",
		Short: "Extract metrics from test results",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runFilter(&fl, args)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&fl.name, "filter", "f", "", "filter `name` to run (see list-filters)")
	cmd.MarkFlagRequired("filter")
	f.BoolVarP(&fl.compare, "compare", "c", false, "for an aggregate filter, compare results side by side")
	f.StringVarP(&fl.combine, "combine", "b", "", "for an aggregate filter, combine results using `method` mean or median")
	f.BoolVarP(&fl.diff, "diff", "d", false, "with --compare or --combine, show the difference between two results")
	f.StringVarP(&fl.output, "output-format", "o", a.cfg.Output, "output `format`: text, json, html or csv")
	f.StringVar(&fl.chart, "chart", "", "also draw a bar chart of the results to `file` (.png or .svg)")
	f.StringVar(&fl.chartMetric, "chart-metric", metrics.TimeToLoad, "metric `key` to chart")
	return cmd
}

func (a *app) runFilter(fl *filterFlags, args []string) error {
	if fl.compare && fl.combine != "" {
		return errors.New("--compare and --combine are mutually exclusive")
	}
	if fl.diff && !fl.compare && fl.combine == "" {
		return errors.New("--diff requires --compare or --combine")
	}
	switch fl.output {
	case "text", "json", "html", "csv":
	default:
		return fmt.Errorf("unknown output format %q (want text, json, html or csv)", fl.output)
	}
	f, err := filter.Lookup(fl.name)
	if err != nil {
		return err
	}
	if fl.combine != "" {
		if _, err := aggregate.ParseMethod(fl.combine); err != nil {
			return err
		}
		if f.Kind != metrics.Aggregate {
			return fmt.Errorf("--combine is only allowed with aggregate filters (try pageload list-filters): %w", aggregate.ErrInvalidOperandKind)
		}
	}

	dirs, err := result.Discover(a.cfg.Dir)
	if err != nil {
		return err
	}
	var groups [][]metrics.Result
	for _, arg := range args {
		sel, err := result.ParseSelector(arg)
		if err != nil {
			return err
		}
		_, tr, err := result.Find(dirs, sel.Prefix)
		if err != nil {
			return fmt.Errorf("test %s does not point to a valid test result: %w", arg, err)
		}
		runs, err := tr.Runs()
		if err != nil {
			return err
		}
		nums, err := sel.Runs(len(runs))
		if err != nil {
			return err
		}
		a.log.Debug("filtering", zap.String("filter", f.Name), zap.String("signature", tr.Signature()), zap.Ints("runs", nums))
		res, err := f.Apply(tr, nums)
		if err != nil {
			return err
		}
		groups = append(groups, res)
	}
	var all []metrics.Result
	for _, g := range groups {
		all = append(all, g...)
	}

	if fl.chart != "" {
		if err := a.writeChart(fl.chart, fl.chartMetric, all); err != nil {
			return err
		}
	}

	switch {
	case fl.compare && fl.diff:
		if len(all) != 2 {
			return fmt.Errorf("--diff requires exactly two results, have %d (e.g. pageload filter -f fv_count -c -d <hash1>:1 <hash2>:1)", len(all))
		}
		d, err := aggregate.DiffResults(all[0], all[1])
		if err != nil {
			return err
		}
		return a.render(fl.output, d, report.DiffGrid(d))

	case fl.compare:
		g, err := report.CompareGrid(all)
		if err != nil {
			return err
		}
		return a.render(fl.output, all, g)

	case fl.combine != "" && fl.diff:
		if len(groups) != 2 {
			return fmt.Errorf("--diff requires exactly two tests, have %d (e.g. pageload filter -f fv_count -b median -d <hash1>:4-7 <hash2>:1-3)", len(groups))
		}
		left, err := aggregate.Combine(groups[0], fl.combine)
		if err != nil {
			return err
		}
		right, err := aggregate.Combine(groups[1], fl.combine)
		if err != nil {
			return err
		}
		d, err := aggregate.Diff(left, right)
		if err != nil {
			return err
		}
		return a.render(fl.output, d, report.DiffGrid(d))

	case fl.combine != "":
		agg, err := aggregate.Combine(all, fl.combine)
		if err != nil {
			return err
		}
		return a.render(fl.output, agg, report.CombinedGrid(agg))
	}

	switch fl.output {
	case "json":
		return report.JSON(a.stdout, all)
	case "html":
		return report.HTML(a.stdout, report.RunGrids(all))
	case "csv":
		return report.CSV(a.stdout, report.RunGrids(all))
	}
	return report.Text(a.stdout, all)
}

// render writes v in format. g is the layout of v for text, HTML
// and CSV.
func (a *app) render(format string, v any, g *report.Grid) error {
	switch format {
	case "json":
		return report.JSON(a.stdout, v)
	case "html":
		return report.HTML(a.stdout, []*report.Grid{g})
	case "csv":
		return report.CSV(a.stdout, []*report.Grid{g})
	}
	return g.WriteText(a.stdout)
}

func (a *app) writeChart(path, key string, results []metrics.Result) error {
	format := strings.TrimPrefix(filepath.Ext(path), ".")
	if format != "png" && format != "svg" {
		return fmt.Errorf("chart %s: unknown format %q (want .png or .svg)", path, format)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := report.Chart(f, results, key, format); err != nil {
		f.Close()
		return fmt.Errorf("chart %s: %w", path, err)
	}
	a.log.Info("wrote chart", zap.String("file", path), zap.String("metric", key))
	return f.Close()
}
