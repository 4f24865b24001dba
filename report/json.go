// Copyright 2024 The Pageload Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/pageload/pageload/aggregate"
	"github.com/pageload/pageload/metrics"
)

// ordered marshals as a JSON object whose members keep the order of
// keys.
type ordered struct {
	keys []string
	vals map[string]float64
}

func (o ordered) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range o.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		buf.WriteString(metrics.FormatValue(o.vals[k]))
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func setValues(m *metrics.MetricSet) ordered {
	vals := make(map[string]float64, len(m.Values))
	for k, v := range m.Values {
		vals[k] = float64(v)
	}
	return ordered{m.Keys, vals}
}

func scalarValues(s aggregate.Scalar) ordered {
	vals := make(map[string]float64)
	for _, k := range s.KeySet() {
		vals[k], _ = s.Value(k)
	}
	return ordered{s.KeySet(), vals}
}

type jsonResult struct {
	Signature string     `json:"signature"`
	Run       int        `json:"run"`
	Time      string     `json:"time"`
	Dir       string     `json:"dir"`
	Kind      string     `json:"kind"`
	Metrics   *ordered   `json:"metrics,omitempty"`
	Columns   []string   `json:"columns,omitempty"`
	Rows      [][]string `json:"rows,omitempty"`
}

type jsonCombined struct {
	Method  string   `json:"method"`
	Runs    int      `json:"runs"`
	Sources []string `json:"sources"`
	Metrics ordered  `json:"metrics"`
	Min     ordered  `json:"min"`
	Max     ordered  `json:"max"`
}

type jsonDiff struct {
	Left       string  `json:"left"`
	Right      string  `json:"right"`
	LeftValue  ordered `json:"leftValues"`
	RightValue ordered `json:"rightValues"`
	Diff       ordered `json:"diff"`
}

func toJSON(r metrics.Result) jsonResult {
	src := r.Origin()
	j := jsonResult{
		Signature: src.Signature,
		Run:       src.Run,
		Time:      src.Time.Format(TimeLayout),
		Dir:       src.Dir,
		Kind:      r.Kind().String(),
	}
	switch r := r.(type) {
	case *metrics.MetricSet:
		v := setValues(r)
		j.Metrics = &v
	case *metrics.MetricTable:
		j.Columns = r.Columns
		j.Rows = r.Rows
		if j.Rows == nil {
			j.Rows = [][]string{}
		}
	}
	return j
}

// JSON writes v as indented JSON. v must be a []metrics.Result, an
// *aggregate.Aggregation or an *aggregate.Delta.
func JSON(w io.Writer, v any) error {
	var out any
	switch v := v.(type) {
	case []metrics.Result:
		rs := make([]jsonResult, len(v))
		for i, r := range v {
			rs[i] = toJSON(r)
		}
		out = rs
	case *aggregate.Aggregation:
		c := jsonCombined{
			Method:  v.Method.String(),
			Runs:    len(v.Inputs),
			Metrics: ordered{v.Keys, v.Values},
			Min:     ordered{v.Keys, v.Min},
			Max:     ordered{v.Keys, v.Max},
		}
		for _, s := range v.Sources {
			c.Sources = append(c.Sources, s.String())
		}
		out = c
	case *aggregate.Delta:
		out = jsonDiff{
			Left:       label(v.Left),
			Right:      label(v.Right),
			LeftValue:  scalarValues(v.Left),
			RightValue: scalarValues(v.Right),
			Diff:       ordered{v.Keys, v.Values},
		}
	default:
		return fmt.Errorf("cannot render %T as JSON", v)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
