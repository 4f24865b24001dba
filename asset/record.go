// Copyright 2024 The Pageload Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asset

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// A Record is one data row of a table, keyed by the field names of
// the table's header row. Keys are kept in header-row order.
//
// Records pass unknown columns through unmodified. Only the field
// names are meaningful; callers should not depend on column
// positions.
type Record struct {
	keys []string
	vals map[string]string
}

// NewRecord zips row against header positionally. Cells beyond the
// end of the shorter of the two are dropped.
func NewRecord(header, row []string) Record {
	n := len(header)
	if len(row) < n {
		n = len(row)
	}
	r := Record{keys: make([]string, 0, n), vals: make(map[string]string, n)}
	for i := 0; i < n; i++ {
		if _, ok := r.vals[header[i]]; !ok {
			r.keys = append(r.keys, header[i])
		}
		r.vals[header[i]] = row[i]
	}
	return r
}

// Keys returns the field names of r in header-row order.
func (r Record) Keys() []string {
	return r.keys
}

// Len returns the number of fields in r.
func (r Record) Len() int {
	return len(r.keys)
}

// Get returns the value of field key and whether it is present.
func (r Record) Get(key string) (string, bool) {
	v, ok := r.vals[key]
	return v, ok
}

// Value returns the value of field key, or "" if it is absent.
func (r Record) Value(key string) string {
	return r.vals[key]
}

// MarshalJSON encodes r as a JSON object with fields in header-row
// order.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		vb, err := json.Marshal(r.vals[k])
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Column names of the request tables.
const (
	FieldContentType     = "Content Type"
	FieldObjectSize      = "Object Size"
	FieldTimeToLoad      = "Time to Load (ms)"
	FieldTimeToFirstByte = "Time to First Byte (ms)"
	FieldStartTime       = "Start Time (ms)"
	FieldEndTime         = "End Time (ms)"
	FieldHost            = "Host"
	FieldURL             = "URL"
)

// A Request is one HTTP request/response pair observed during a page
// load. It is a Record with typed accessors for the fields the
// filters depend on.
type Request struct {
	Record
}

// ContentType returns the response content type.
func (r Request) ContentType() string { return r.Value(FieldContentType) }

// Host returns the request host.
func (r Request) Host() string { return r.Value(FieldHost) }

// URL returns the request path. It does not include the host.
func (r Request) URL() string { return r.Value(FieldURL) }

// StartTime returns the start time field exactly as recorded.
func (r Request) StartTime() string { return r.Value(FieldStartTime) }

// EndTime returns the end time field exactly as recorded.
func (r Request) EndTime() string { return r.Value(FieldEndTime) }

// ObjectSize returns the response body size in bytes.
func (r Request) ObjectSize() (int64, error) { return r.Int(FieldObjectSize) }

// TimeToLoad returns the time to load in milliseconds.
func (r Request) TimeToLoad() (int64, error) { return r.Int(FieldTimeToLoad) }

// TimeToFirstByte returns the time to first byte in milliseconds.
func (r Request) TimeToFirstByte() (int64, error) { return r.Int(FieldTimeToFirstByte) }

// Int returns field key of r as an integer.
//
// The upstream tables write "-" for values that do not apply, so
// "-" and absent or empty fields are 0. Decimal values are truncated
// toward zero. Any other value is a *FieldError.
func (r Record) Int(key string) (int64, error) {
	s := strings.TrimSpace(r.vals[key])
	if s == "" || s == "-" {
		return 0, nil
	}
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		return v, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, &FieldError{Field: key, Value: s}
	}
	return int64(f), nil
}

// A FieldError reports a field whose value is not a number.
type FieldError struct {
	Field string
	Value string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("field %q: %q is not a number", e.Field, e.Value)
}
