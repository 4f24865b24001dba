// Copyright 2024 The Pageload Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package texttab lays out plain-text tables.
package texttab

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

// Table does layout of text-based tables.
//
// Cells are added row by row. Row, Cell and Span return the Table so
// calls can be chained.
type Table struct {
	// Gap is the space between adjacent columns. If empty, columns
	// are separated by two spaces.
	Gap string

	rows [][]cell
	cols int
}

type cell struct {
	col, span int
	value     string
	align     align
}

// A CellOption modifies a cell.
type CellOption func(c *cell)

var (
	Left   CellOption = func(c *cell) { c.align = alignLeft }
	Center CellOption = func(c *cell) { c.align = alignCenter }
	Right  CellOption = func(c *cell) { c.align = alignRight }
)

type align int

const (
	alignLeft align = iota
	alignCenter
	alignRight
)

func (a align) pad(s string, w int) string {
	n := w - utf8.RuneCountInString(s)
	if n <= 0 {
		return s
	}
	switch a {
	case alignCenter:
		return strings.Repeat(" ", n/2) + s + strings.Repeat(" ", n-n/2)
	case alignRight:
		return strings.Repeat(" ", n) + s
	}
	return s + strings.Repeat(" ", n)
}

// Row starts a new row.
func (t *Table) Row() *Table {
	t.rows = append(t.rows, nil)
	return t
}

// Cell adds a single-column cell after the last cell of the current
// row.
func (t *Table) Cell(value string, opts ...CellOption) *Table {
	return t.Span(1, value, opts...)
}

// Span adds a cell covering cols columns.
func (t *Table) Span(cols int, value string, opts ...CellOption) *Table {
	if len(t.rows) == 0 {
		t.Row()
	}
	r := &t.rows[len(t.rows)-1]
	col := 0
	if n := len(*r); n > 0 {
		last := (*r)[n-1]
		col = last.col + last.span
	}
	c := cell{col: col, span: cols, value: value}
	for _, o := range opts {
		o(&c)
	}
	*r = append(*r, c)
	if col+cols > t.cols {
		t.cols = col + cols
	}
	return t
}

func (t *Table) gap() string {
	if t.Gap == "" {
		return "  "
	}
	return t.Gap
}

// widths computes the width of each column. Spanning cells widen the
// columns they cover evenly when those are too narrow.
func (t *Table) widths() []int {
	ws := make([]int, t.cols)
	gap := utf8.RuneCountInString(t.gap())
	for _, r := range t.rows {
		for _, c := range r {
			if c.span == 1 {
				ws[c.col] = max(ws[c.col], utf8.RuneCountInString(c.value))
			}
		}
	}
	for _, r := range t.rows {
		for _, c := range r {
			if c.span == 1 {
				continue
			}
			need := utf8.RuneCountInString(c.value) - t.spanWidth(ws, c, gap)
			for i := 0; need > 0; i++ {
				ws[c.col+i%c.span]++
				need--
			}
		}
	}
	return ws
}

func (t *Table) spanWidth(ws []int, c cell, gap int) int {
	w := gap * (c.span - 1)
	for col := c.col; col < c.col+c.span; col++ {
		w += ws[col]
	}
	return w
}

// Format lays out t and writes it to w. Trailing spaces are trimmed
// from every line.
func (t *Table) Format(w io.Writer) error {
	ws := t.widths()
	gap := t.gap()
	gw := utf8.RuneCountInString(gap)
	var line strings.Builder
	for _, r := range t.rows {
		line.Reset()
		for i, c := range r {
			if i > 0 {
				line.WriteString(gap)
			}
			line.WriteString(c.align.pad(c.value, t.spanWidth(ws, c, gw)))
		}
		if _, err := fmt.Fprintln(w, strings.TrimRight(line.String(), " ")); err != nil {
			return err
		}
	}
	return nil
}
