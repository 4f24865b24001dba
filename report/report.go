// Copyright 2024 The Pageload Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package report renders filter results, aggregations and deltas as
// text, JSON, HTML, CSV and charts.
//
// Comparisons, aggregations and deltas are first laid out as Grids,
// which can then be written as text, HTML or CSV.
package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/aclements/go-gg/table"
	"github.com/pageload/pageload/aggregate"
	"github.com/pageload/pageload/internal/texttab"
	"github.com/pageload/pageload/metrics"
)

// TimeLayout is the layout of test start times in reports.
const TimeLayout = "2006/01/02 15:04:05"

// A Grid is a titled table of strings.
type Grid struct {
	// Title lines are printed above the table.
	Title []string
	// Header is the optional first row.
	Header []string
	Rows   []Row
}

// A Row is one row of a Grid.
type Row struct {
	// Class is "better", "worse" or "unchanged" for rows of a
	// delta, and empty otherwise.
	Class string
	Cells []string
}

// WriteText lays out g as aligned text.
func (g *Grid) WriteText(w io.Writer) error {
	for _, l := range g.Title {
		if _, err := fmt.Fprintln(w, l); err != nil {
			return err
		}
	}
	var tab texttab.Table
	if g.Header != nil {
		tab.Row()
		for _, h := range g.Header {
			tab.Cell(h)
		}
	}
	for _, r := range g.Rows {
		tab.Row()
		for i, c := range r.Cells {
			if i == 0 {
				tab.Cell(c)
			} else {
				tab.Cell(c, texttab.Right)
			}
		}
	}
	return tab.Format(w)
}

func header(s metrics.Source) string {
	return fmt.Sprintf("[%s] run %d (%s)", s.Signature, s.Run, s.Time.Format(TimeLayout))
}

// Text writes one block per result: a header naming the run, then
// one labeled line per metric or one tab-separated line per table
// row. Blocks are separated by blank lines.
func Text(w io.Writer, results []metrics.Result) error {
	for i, r := range results {
		if i > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
		src := r.Origin()
		if _, err := fmt.Fprintf(w, "%s\nRun directory: %s\n", header(src), src.Dir); err != nil {
			return err
		}
		var lines []string
		switch r := r.(type) {
		case *metrics.MetricSet:
			for _, k := range r.Keys {
				lines = append(lines, fmt.Sprintf("  %s: %d", metrics.Label(k), r.Values[k]))
			}
		case *metrics.MetricTable:
			lines = r.Lines()
		}
		for _, l := range lines {
			if _, err := fmt.Fprintln(w, l); err != nil {
				return err
			}
		}
	}
	return nil
}

// RunGrids lays out each result as its own Grid, for HTML and CSV
// output.
func RunGrids(results []metrics.Result) []*Grid {
	grids := make([]*Grid, len(results))
	for i, r := range results {
		src := r.Origin()
		g := &Grid{Title: []string{header(src), "Run directory: " + src.Dir}}
		switch r := r.(type) {
		case *metrics.MetricSet:
			for _, k := range r.Keys {
				g.Rows = append(g.Rows, Row{Cells: []string{metrics.Label(k), strconv.FormatInt(r.Values[k], 10)}})
			}
		case *metrics.MetricTable:
			g.Header = r.Columns
			for _, row := range r.Rows {
				g.Rows = append(g.Rows, Row{Cells: row})
			}
		}
		grids[i] = g
	}
	return grids
}

// CompareGrid lays out results side by side, one column per run.
// MetricSets are lined up by key and must share one key set.
// MetricTables are lined up by row. The results must all be of one
// kind.
func CompareGrid(results []metrics.Result) (*Grid, error) {
	if len(results) == 0 {
		return nil, aggregate.ErrEmptyInput
	}
	g := &Grid{Header: []string{""}}
	kind := results[0].Kind()
	for _, r := range results {
		if r.Kind() != kind {
			return nil, fmt.Errorf("comparing %s with %s results: %w", kind, r.Kind(), aggregate.ErrInvalidOperandKind)
		}
		g.Header = append(g.Header, r.Origin().Label())
	}

	if kind == metrics.Aggregate {
		first := results[0].(*metrics.MetricSet)
		for _, r := range results[1:] {
			if !metrics.SameKeys(first.Keys, r.(*metrics.MetricSet).Keys) {
				return nil, fmt.Errorf("%s: %w", r.Origin().Label(), aggregate.ErrKeyMismatch)
			}
		}
		for _, k := range first.Keys {
			cells := []string{k}
			for _, r := range results {
				cells = append(cells, strconv.FormatInt(r.(*metrics.MetricSet).Values[k], 10))
			}
			g.Rows = append(g.Rows, Row{Cells: cells})
		}
		return g, nil
	}

	n := 0
	for _, r := range results {
		n = max(n, len(r.(*metrics.MetricTable).Rows))
	}
	for i := 0; i < n; i++ {
		cells := []string{strconv.Itoa(i + 1)}
		for _, r := range results {
			rows := r.(*metrics.MetricTable).Rows
			cell := ""
			if i < len(rows) {
				cell = strings.Join(rows[i], " ")
			}
			cells = append(cells, cell)
		}
		g.Rows = append(g.Rows, Row{Cells: cells})
	}
	return g, nil
}

// Compare writes results side by side.
func Compare(w io.Writer, results []metrics.Result) error {
	g, err := CompareGrid(results)
	if err != nil {
		return err
	}
	return g.WriteText(w)
}

// CombinedGrid lays out an aggregation with the bounds of each key.
func CombinedGrid(a *aggregate.Aggregation) *Grid {
	g := &Grid{
		Title: []string{
			fmt.Sprintf("Combined results using the %s (%d runs)", a.Method, len(a.Inputs)),
			a.Label(),
		},
		Header: []string{"", a.Method.String(), "min", "max"},
	}
	for _, k := range a.Keys {
		g.Rows = append(g.Rows, Row{Cells: []string{
			k,
			metrics.FormatValue(a.Values[k]),
			metrics.FormatValue(a.Min[k]),
			metrics.FormatValue(a.Max[k]),
		}})
	}
	return g
}

// Combined writes an aggregation.
func Combined(w io.Writer, a *aggregate.Aggregation) error {
	return CombinedGrid(a).WriteText(w)
}

type labeler interface {
	Label() string
}

func label(s aggregate.Scalar) string {
	if l, ok := s.(labeler); ok {
		return l.Label()
	}
	return ""
}

// DiffGrid lays out both operands of d and their difference. Rows
// where the right operand is lower are "better".
func DiffGrid(d *aggregate.Delta) *Grid {
	g := &Grid{Header: []string{"", label(d.Left), label(d.Right), "diff"}}
	for _, k := range d.Keys {
		l, _ := d.Left.Value(k)
		r, _ := d.Right.Value(k)
		delta := d.Values[k]
		class := "unchanged"
		if delta < 0 {
			class = "better"
		} else if delta > 0 {
			class = "worse"
		}
		g.Rows = append(g.Rows, Row{Class: class, Cells: []string{
			k,
			metrics.FormatValue(l),
			metrics.FormatValue(r),
			aggregate.FormatDelta(delta),
		}})
	}
	return g
}

// Diff writes a delta with a trailing diff column.
func Diff(w io.Writer, d *aggregate.Delta) error {
	return DiffGrid(d).WriteText(w)
}

// Tabular writes a MetricTable as a table with a header row.
func Tabular(w io.Writer, t *metrics.MetricTable) error {
	if _, err := fmt.Fprintf(w, "%s\nRun directory: %s\n", header(t.Source), t.Dir); err != nil {
		return err
	}
	return table.Fprint(w, t.Table())
}
