// Copyright 2024 The Pageload Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package metrics defines the values extracted from test results by
// filters: fixed-schema scalar MetricSets and per-request
// MetricTables.
package metrics

import (
	"strconv"
	"strings"
	"time"

	"github.com/aclements/go-gg/table"
)

// A Kind is the shape of a filter's output.
type Kind int

const (
	// Aggregate results are MetricSets. They can be compared,
	// combined, and diffed.
	Aggregate Kind = iota
	// Tabular results are MetricTables.
	Tabular
)

func (k Kind) String() string {
	if k == Tabular {
		return "tabular"
	}
	return "aggregate"
}

// A Source identifies the run a result was extracted from.
type Source struct {
	Signature string    // signature of the test result
	Run       int       // 1-based run number
	Time      time.Time // start time of the test
	Dir       string    // run directory, for display
}

// Label returns the short "signature:run" form used to head report
// columns.
func (s Source) Label() string {
	return ShortSignature(s.Signature) + ":" + strconv.Itoa(s.Run)
}

// ShortSignature returns the 8-character display prefix of sig.
func ShortSignature(sig string) string {
	if len(sig) > 8 {
		return sig[:8]
	}
	return sig
}

// A Result is the output of a filter for one run: either a
// *MetricSet or a *MetricTable.
type Result interface {
	Kind() Kind
	Origin() Source
}

// The keys of a MetricSet.
const (
	TimeToLoad      = "time_to_load"
	TimeToFirstByte = "time_to_first_byte"
	TTLMinusTTFB    = "ttl_minus_ttfb"
	JSFiles         = "js_files"
	CSSFiles        = "css_files"
	ImageFiles      = "image_files"
	JSSize          = "js_size"
	CSSSize         = "css_size"
	ImageSize       = "image_size"
)

// Keys lists the keys of a MetricSet in display order.
var Keys = []string{
	TimeToLoad, TimeToFirstByte, TTLMinusTTFB,
	JSFiles, CSSFiles, ImageFiles,
	JSSize, CSSSize, ImageSize,
}

var labels = map[string]string{
	TimeToLoad:      "Time to Load (ms)",
	TimeToFirstByte: "Time to First Byte (ms)",
	TTLMinusTTFB:    "TTL - TTFB (ms)",
	JSFiles:         "JS files",
	CSSFiles:        "CSS files",
	ImageFiles:      "Image files",
	JSSize:          "JS size (bytes)",
	CSSSize:         "CSS size (bytes)",
	ImageSize:       "Images size (bytes)",
}

// Label returns the human-readable label of key.
func Label(key string) string {
	if l, ok := labels[key]; ok {
		return l
	}
	return key
}

// A MetricSet is a scalar metrics record for one run.
//
// MetricSets built by NewMetricSet always have exactly the keys in
// Keys. Operations over several MetricSets require their key sets
// to be identical.
type MetricSet struct {
	Source
	Keys   []string
	Values map[string]int64
}

// NewMetricSet returns a MetricSet for src with every key in Keys
// set to 0.
func NewMetricSet(src Source) *MetricSet {
	m := &MetricSet{
		Source: src,
		Keys:   append([]string(nil), Keys...),
		Values: make(map[string]int64, len(Keys)),
	}
	for _, k := range Keys {
		m.Values[k] = 0
	}
	return m
}

func (m *MetricSet) Kind() Kind { return Aggregate }

func (m *MetricSet) Origin() Source { return m.Source }

// KeySet returns the keys of m.
func (m *MetricSet) KeySet() []string { return m.Keys }

// Value returns the value of key as a float64.
func (m *MetricSet) Value(key string) (float64, bool) {
	v, ok := m.Values[key]
	return float64(v), ok
}

// SameKeys reports whether a and b hold the same set of keys,
// ignoring order.
func SameKeys(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	set := make(map[string]bool, len(a))
	for _, k := range a {
		set[k] = true
	}
	for _, k := range b {
		if !set[k] {
			return false
		}
	}
	return len(set) == len(a)
}

// A MetricTable is a per-request extraction for one run. Its
// columns depend on the filter that produced it.
type MetricTable struct {
	Source
	Columns []string
	Rows    [][]string
}

func (t *MetricTable) Kind() Kind { return Tabular }

func (t *MetricTable) Origin() Source { return t.Source }

// Lines returns each row of t with its cells joined by tabs.
func (t *MetricTable) Lines() []string {
	lines := make([]string, len(t.Rows))
	for i, row := range t.Rows {
		lines[i] = strings.Join(row, "\t")
	}
	return lines
}

// Table returns t as a table with one string column per column of
// t.
func (t *MetricTable) Table() *table.Table {
	var b table.Builder
	for i, col := range t.Columns {
		cells := make([]string, len(t.Rows))
		for j, row := range t.Rows {
			if i < len(row) {
				cells[j] = row[i]
			}
		}
		b.Add(col, cells)
	}
	return b.Done()
}

// FormatValue formats v in the shortest form that represents it
// exactly: integers without a decimal point.
func FormatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
