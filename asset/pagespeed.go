// Copyright 2024 The Pageload Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asset

import (
	"encoding/json"

	"github.com/ohler55/ojg/jp"
	"github.com/ohler55/ojg/oj"
)

// A PageSpeedScore holds a decoded page speed document. No schema is
// enforced: Value is whatever the document holds, built from
// map[string]any, []any, string, int64, float64, bool and nil.
type PageSpeedScore struct {
	Value any
}

// ReadPageSpeed reads a page speed JSON document.
func ReadPageSpeed(path string) (*PageSpeedScore, error) {
	data, err := readFile(path, PageSpeed)
	if err != nil {
		return nil, err
	}
	v, err := oj.Parse(data)
	if err != nil {
		return nil, &FormatError{Path: path, Kind: PageSpeed, Msg: "invalid JSON", Err: err}
	}
	return &PageSpeedScore{Value: v}, nil
}

// Lookup evaluates the JSONPath expression expr, such as
// "$..score", against the document and returns every match.
func (p *PageSpeedScore) Lookup(expr string) ([]any, error) {
	x, err := jp.ParseString(expr)
	if err != nil {
		return nil, err
	}
	return x.Get(p.Value), nil
}

func (p *PageSpeedScore) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.Value)
}
