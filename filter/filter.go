// Copyright 2024 The Pageload Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package filter extracts metrics from the runs of a test result.
//
// A filter maps a test result and a list of 1-based run numbers to
// one metrics.Result per run, in the order the runs were given.
// Filters are selected by name from a fixed registry:
//
//	fv_count           aggregate  counts and sizes by content type (first view)
//	rv_count           aggregate  counts and sizes by content type (repeat view)
//	fv_url_and_ttl     tabular    time to load of each request (first view)
//	fv_url_and_ttfb    tabular    time to first byte of each request (first view)
//	fv_start_end_time  tabular    start and end time of each request (first view)
package filter

import (
	"errors"
	"fmt"
	"strings"

	"github.com/pageload/pageload/asset"
	"github.com/pageload/pageload/metrics"
	"github.com/pageload/pageload/result"
)

// ErrUnknownFilter is returned when a filter name is not in the
// registry.
var ErrUnknownFilter = errors.New("unknown filter")

// An extractor computes the result of a filter for the requests of
// one view.
type extractor func(src metrics.Source, reqs []asset.Request) (metrics.Result, error)

// A Filter is one entry of the registry.
type Filter struct {
	Name        string
	Description string
	Kind        metrics.Kind
	// View is the view the filter reads.
	View result.ViewKind

	extract extractor
}

var registry = []*Filter{
	{
		Name:        "fv_count",
		Description: "Time to load, # of assets and their sizes (first view)",
		Kind:        metrics.Aggregate,
		View:        result.FirstView,
		extract:     count,
	},
	{
		Name:        "rv_count",
		Description: "Time to load, # of assets and their sizes (repeat view)",
		Kind:        metrics.Aggregate,
		View:        result.RepeatView,
		extract:     count,
	},
	{
		Name:        "fv_url_and_ttl",
		Description: "Time to load for each resource (first view)",
		Kind:        metrics.Tabular,
		View:        result.FirstView,
		extract:     timing(asset.FieldTimeToLoad),
	},
	{
		Name:        "fv_url_and_ttfb",
		Description: "Time to first byte for each resource (first view)",
		Kind:        metrics.Tabular,
		View:        result.FirstView,
		extract:     timing(asset.FieldTimeToFirstByte),
	},
	{
		Name:        "fv_start_end_time",
		Description: "Start time and end time for each resource (first view)",
		Kind:        metrics.Tabular,
		View:        result.FirstView,
		extract:     startEnd,
	},
}

// All returns the registered filters in registry order.
func All() []*Filter {
	return append([]*Filter(nil), registry...)
}

// Names returns the names of the registered filters.
func Names() []string {
	names := make([]string, len(registry))
	for i, f := range registry {
		names[i] = f.Name
	}
	return names
}

// Lookup returns the filter called name.
func Lookup(name string) (*Filter, error) {
	for _, f := range registry {
		if f.Name == name {
			return f, nil
		}
	}
	return nil, fmt.Errorf("%q: %w", name, ErrUnknownFilter)
}

// Apply runs the filter called name over runs of tr.
func Apply(name string, tr *result.TestResult, runs []int) ([]metrics.Result, error) {
	f, err := Lookup(name)
	if err != nil {
		return nil, err
	}
	return f.Apply(tr, runs)
}

// Apply runs f over runs of tr. Runs are numbered from 1 and results
// are returned in the order of runs. The first failure aborts the
// whole call.
func (f *Filter) Apply(tr *result.TestResult, runs []int) ([]metrics.Result, error) {
	out := make([]metrics.Result, 0, len(runs))
	for _, n := range runs {
		run, err := tr.Run(n)
		if err != nil {
			return nil, err
		}
		reqs, err := run.View(f.View).Requests()
		if err != nil {
			return nil, err
		}
		src := metrics.Source{
			Signature: tr.Signature(),
			Run:       n,
			Time:      tr.Time(),
			Dir:       tr.RunDir(n),
		}
		res, err := f.extract(src, reqs)
		if err != nil {
			return nil, fmt.Errorf("%s: %s run %d: %w", f.Name, tr.ShortSignature(), n, err)
		}
		out = append(out, res)
	}
	return out, nil
}

// count totals the files and bytes of each content type class. The
// timings come from the first request, which is the page itself.
func count(src metrics.Source, reqs []asset.Request) (metrics.Result, error) {
	m := metrics.NewMetricSet(src)
	v := m.Values
	for i, r := range reqs {
		if i == 0 {
			ttl, err := r.TimeToLoad()
			if err != nil {
				return nil, err
			}
			ttfb, err := r.TimeToFirstByte()
			if err != nil {
				return nil, err
			}
			v[metrics.TimeToLoad] = ttl
			v[metrics.TimeToFirstByte] = ttfb
			v[metrics.TTLMinusTTFB] = ttl - ttfb
		}
		ct := r.ContentType()
		js := strings.Contains(ct, "javascript")
		css := strings.Contains(ct, "css")
		img := strings.Contains(ct, "image/")
		if !js && !css && !img {
			continue
		}
		size, err := r.ObjectSize()
		if err != nil {
			return nil, err
		}
		// A content type may fall in several classes.
		if js {
			v[metrics.JSFiles]++
			v[metrics.JSSize] += size
		}
		if css {
			v[metrics.CSSFiles]++
			v[metrics.CSSSize] += size
		}
		if img {
			v[metrics.ImageFiles]++
			v[metrics.ImageSize] += size
		}
	}
	return m, nil
}

// timing returns an extractor pairing field, in milliseconds, with
// the full URL of each request.
func timing(field string) extractor {
	return func(src metrics.Source, reqs []asset.Request) (metrics.Result, error) {
		t := &metrics.MetricTable{
			Source:  src,
			Columns: []string{field, "URL"},
			Rows:    make([][]string, 0, len(reqs)),
		}
		for _, r := range reqs {
			t.Rows = append(t.Rows, []string{r.Value(field) + " ms", r.Host() + r.URL()})
		}
		return t, nil
	}
}

func startEnd(src metrics.Source, reqs []asset.Request) (metrics.Result, error) {
	t := &metrics.MetricTable{
		Source:  src,
		Columns: []string{asset.FieldURL, asset.FieldStartTime, asset.FieldEndTime},
		Rows:    make([][]string, 0, len(reqs)),
	}
	for _, r := range reqs {
		t.Rows = append(t.Rows, []string{r.URL(), r.StartTime(), r.EndTime()})
	}
	return t, nil
}
