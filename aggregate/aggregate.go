// Copyright 2024 The Pageload Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package aggregate combines and compares aggregate filter results.
//
// Combine reduces several MetricSets to one Aggregation using the
// mean or the median of each key. Diff subtracts two MetricSets or
// two Aggregations key by key. Every operation requires its operands
// to have identical key sets and fails as a whole otherwise.
package aggregate

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/aclements/go-moremath/mathx"
	"github.com/aclements/go-moremath/stats"
	"github.com/aclements/go-moremath/vec"
	"github.com/pageload/pageload/metrics"
)

var (
	// ErrEmptyInput is returned when there is nothing to combine.
	ErrEmptyInput = errors.New("no results to combine")
	// ErrKeyMismatch is returned when operands have different
	// key sets.
	ErrKeyMismatch = errors.New("results have different metric keys")
	// ErrInvalidOperandKind is returned when an operand is a
	// tabular result.
	ErrInvalidOperandKind = errors.New("result is not an aggregate result")
	// ErrUnsupportedMethod is returned for a combine method other
	// than mean or median.
	ErrUnsupportedMethod = errors.New("unsupported combine method")
)

// A Method is a way of reducing several values to one.
type Method int

const (
	Mean Method = iota
	Median
)

func (m Method) String() string {
	switch m {
	case Mean:
		return "mean"
	case Median:
		return "median"
	}
	return fmt.Sprintf("Method(%d)", int(m))
}

// ParseMethod returns the Method called name.
func ParseMethod(name string) (Method, error) {
	switch name {
	case "mean":
		return Mean, nil
	case "median":
		return Median, nil
	}
	return 0, fmt.Errorf("%q: %w (want mean or median)", name, ErrUnsupportedMethod)
}

func (m Method) reduce(xs []float64) float64 {
	if m == Median {
		return median(xs)
	}
	// Integer inputs, so the sum is exact and the mean is the
	// correctly rounded sum/count.
	return vec.Sum(xs) / float64(len(xs))
}

// median returns the middle value of xs, or the exact average of the
// two middle values if len(xs) is even.
func median(xs []float64) float64 {
	s := append([]float64(nil), xs...)
	sort.Float64s(s)
	n := len(s)
	if n%2 == 1 {
		return s[n/2]
	}
	return (s[n/2-1] + s[n/2]) / 2
}

// A Scalar is a MetricSet-shaped value: a fixed set of keys, each
// with a number. *metrics.MetricSet and *Aggregation are Scalars.
type Scalar interface {
	KeySet() []string
	Value(key string) (float64, bool)
}

// AsScalar returns r as a Scalar, or ErrInvalidOperandKind if r is
// tabular.
func AsScalar(r metrics.Result) (Scalar, error) {
	m, ok := r.(*metrics.MetricSet)
	if !ok {
		return nil, fmt.Errorf("%s (%s): %w", r.Origin().Label(), r.Kind(), ErrInvalidOperandKind)
	}
	return m, nil
}

// Sources lists the runs of one test result that contributed to an
// Aggregation.
type Sources struct {
	Signature string // 8-character signature prefix
	Runs      []int
}

func (s Sources) String() string {
	runs := make([]string, len(s.Runs))
	for i, r := range s.Runs {
		runs[i] = strconv.Itoa(r)
	}
	return s.Signature + ":" + strings.Join(runs, ",")
}

// An Aggregation is the combination of several MetricSets.
type Aggregation struct {
	Method Method
	Inputs []*metrics.MetricSet

	// Keys are the keys of the inputs, in the order of the first
	// input.
	Keys   []string
	Values map[string]float64
	// Min and Max hold the bounds of each key across the inputs.
	Min, Max map[string]float64

	// Sources lists the contributing runs, grouped by signature
	// prefix in order of first appearance.
	Sources []Sources
}

// KeySet returns the keys of a.
func (a *Aggregation) KeySet() []string { return a.Keys }

// Value returns the combined value of key.
func (a *Aggregation) Value(key string) (float64, bool) {
	v, ok := a.Values[key]
	return v, ok
}

// Label returns the contributing runs in the form
// "sig8:1,2 sig8:3".
func (a *Aggregation) Label() string {
	parts := make([]string, len(a.Sources))
	for i, s := range a.Sources {
		parts[i] = s.String()
	}
	return strings.Join(parts, " ")
}

// Combine reduces results with the method called method. The method
// and every input are validated before anything is computed.
func Combine(results []metrics.Result, method string) (*Aggregation, error) {
	m, err := ParseMethod(method)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, ErrEmptyInput
	}
	sets := make([]*metrics.MetricSet, len(results))
	for i, r := range results {
		s, ok := r.(*metrics.MetricSet)
		if !ok {
			return nil, fmt.Errorf("input %d, %s (%s): %w", i+1, r.Origin().Label(), r.Kind(), ErrInvalidOperandKind)
		}
		if i > 0 && !metrics.SameKeys(sets[0].Keys, s.Keys) {
			return nil, fmt.Errorf("input %d, %s: %w", i+1, s.Label(), ErrKeyMismatch)
		}
		sets[i] = s
	}
	return CombineSets(sets, m), nil
}

// CombineSets reduces sets with m. The sets must be non-empty and
// share one key set.
func CombineSets(sets []*metrics.MetricSet, m Method) *Aggregation {
	a := &Aggregation{
		Method: m,
		Inputs: sets,
		Keys:   append([]string(nil), sets[0].Keys...),
		Values: make(map[string]float64),
		Min:    make(map[string]float64),
		Max:    make(map[string]float64),
	}
	xs := make([]float64, len(sets))
	for _, k := range a.Keys {
		for i, s := range sets {
			xs[i] = float64(s.Values[k])
		}
		a.Values[k] = m.reduce(xs)
		a.Min[k], a.Max[k] = stats.Bounds(xs)
	}

	index := make(map[string]int)
	for _, s := range sets {
		sig := metrics.ShortSignature(s.Signature)
		i, ok := index[sig]
		if !ok {
			i = len(a.Sources)
			index[sig] = i
			a.Sources = append(a.Sources, Sources{Signature: sig})
		}
		src := &a.Sources[i]
		dup := false
		for _, r := range src.Runs {
			if r == s.Run {
				dup = true
				break
			}
		}
		if !dup {
			src.Runs = append(src.Runs, s.Run)
		}
	}
	return a
}

// A Delta is the key-by-key difference right - left of two Scalars.
type Delta struct {
	Left, Right Scalar
	Keys        []string
	Values      map[string]float64
}

// Diff returns right - left for every key. left and right must have
// the same key set.
func Diff(left, right Scalar) (*Delta, error) {
	if left == nil || right == nil {
		return nil, ErrEmptyInput
	}
	if !metrics.SameKeys(left.KeySet(), right.KeySet()) {
		return nil, ErrKeyMismatch
	}
	d := &Delta{
		Left:   left,
		Right:  right,
		Keys:   append([]string(nil), left.KeySet()...),
		Values: make(map[string]float64),
	}
	for _, k := range d.Keys {
		l, _ := left.Value(k)
		r, _ := right.Value(k)
		d.Values[k] = r - l
	}
	return d, nil
}

// DiffResults is Diff for two filter results. Both must be aggregate
// results.
func DiffResults(left, right metrics.Result) (*Delta, error) {
	l, err := AsScalar(left)
	if err != nil {
		return nil, err
	}
	r, err := AsScalar(right)
	if err != nil {
		return nil, err
	}
	return Diff(l, r)
}

// FormatDelta formats a difference with an explicit sign. Negative
// values carry their own minus sign; zero and positive values are
// prefixed with "+".
func FormatDelta(v float64) string {
	s := metrics.FormatValue(v)
	if mathx.Sign(v) >= 0 {
		return "+" + s
	}
	return s
}
