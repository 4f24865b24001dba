// Copyright 2024 The Pageload Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asset

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"strings"

	"github.com/aclements/go-gg/table"
)

// A tableFormat describes the delimiter and quoting of one family of
// table assets.
type tableFormat struct {
	comma  rune
	quoted bool // fields may be double-quoted
}

var formats = map[Kind]tableFormat{
	PageData:       {'\t', false},
	Requests:       {'\t', false},
	RequestDetails: {',', true},
	RequestSummary: {',', true},
	Utilization:    {',', false},
}

// maxLine bounds the length of one line of an unquoted table.
const maxLine = 16 << 20

// readTable reads the table in path. The first row is returned as
// the header; it is an error for it to be missing.
func readTable(path string, kind Kind) (header []string, rows [][]string, err error) {
	data, err := readFile(path, kind)
	if err != nil {
		return nil, nil, err
	}
	f := formats[kind]
	if f.quoted {
		rows, err = splitQuoted(data, f.comma)
		if err != nil {
			line := 0
			if perr, ok := err.(*csv.ParseError); ok {
				line = perr.Line
			}
			return nil, nil, &FormatError{Path: path, Kind: kind, Line: line, Msg: "malformed table", Err: err}
		}
	} else {
		rows, err = splitPlain(data, f.comma)
		if err != nil {
			return nil, nil, &FormatError{Path: path, Kind: kind, Msg: "malformed table", Err: err}
		}
	}
	if len(rows) == 0 {
		return nil, nil, &FormatError{Path: path, Kind: kind, Line: 1, Msg: "missing header row"}
	}
	return rows[0], rows[1:], nil
}

func splitQuoted(data []byte, comma rune) ([][]string, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.Comma = comma
	r.FieldsPerRecord = -1
	return r.ReadAll()
}

// splitPlain splits unquoted delimited text. Quote characters are
// ordinary data. Blank lines are skipped.
func splitPlain(data []byte, comma rune) ([][]string, error) {
	s := bufio.NewScanner(bytes.NewReader(data))
	s.Buffer(nil, maxLine)
	sep := string(comma)
	var rows [][]string
	for s.Scan() {
		line := strings.TrimSuffix(s.Text(), "\r")
		if line == "" {
			continue
		}
		rows = append(rows, strings.Split(line, sep))
	}
	return rows, s.Err()
}

func readRecords(path string, kind Kind) ([]Record, error) {
	header, rows, err := readTable(path, kind)
	if err != nil {
		return nil, err
	}
	recs := make([]Record, len(rows))
	for i, row := range rows {
		recs[i] = NewRecord(header, row)
	}
	return recs, nil
}

func readRequests(path string, kind Kind) ([]Request, error) {
	recs, err := readRecords(path, kind)
	if err != nil {
		return nil, err
	}
	reqs := make([]Request, len(recs))
	for i, rec := range recs {
		reqs[i] = Request{rec}
	}
	return reqs, nil
}

// ReadPageData reads the page summary of one view. The table must
// have exactly one data row after its header; rows after the first
// are ignored.
func ReadPageData(path string) (Record, error) {
	header, rows, err := readTable(path, PageData)
	if err != nil {
		return Record{}, err
	}
	if len(rows) == 0 {
		return Record{}, &FormatError{Path: path, Kind: PageData, Line: 2, Msg: "missing data row"}
	}
	return NewRecord(header, rows[0]), nil
}

// ReadRequests reads the per-request table of one view.
func ReadRequests(path string) ([]Request, error) {
	return readRequests(path, Requests)
}

// ReadRequestDetails reads the per-request table of a whole test.
func ReadRequestDetails(path string) ([]Request, error) {
	return readRequests(path, RequestDetails)
}

// ReadRequestSummary reads the summary table of a whole test.
func ReadRequestSummary(path string) ([]Record, error) {
	return readRecords(path, RequestSummary)
}

// ReadUtilization reads the utilization samples of one view.
func ReadUtilization(path string) ([]Record, error) {
	return readRecords(path, Utilization)
}

// Table converts records to a table whose columns are the fields of
// the first record. If coerce is true, columns whose every value is
// numeric become numeric columns.
func Table(records []Record, coerce bool) *table.Table {
	if len(records) == 0 {
		return new(table.Builder).Done()
	}
	cols := records[0].Keys()
	rows := make([][]string, len(records))
	for i, rec := range records {
		row := make([]string, len(cols))
		for j, col := range cols {
			row[j] = rec.Value(col)
		}
		rows[i] = row
	}
	return table.TableFromStrings(cols, rows, coerce)
}
