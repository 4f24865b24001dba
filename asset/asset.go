// Copyright 2024 The Pageload Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package asset decodes the raw files left behind by a page load
// test into typed records.
//
// A test produces several kinds of files: tab and comma separated
// tables, a JSON document of page speed scores, and a free text dump
// of the HTTP headers exchanged during each page load. Each kind has
// its own reader in this package. Every reader reports a missing,
// empty, or malformed file as a *FormatError.
package asset

import (
	"bytes"
	"fmt"
	"os"
)

// A Kind identifies the format of an asset file.
type Kind int

const (
	// PageData is the single-row, tab separated page summary
	// of one view.
	PageData Kind = iota
	// Requests is the tab separated table of requests made
	// during one view.
	Requests
	// RequestDetails is the quoted, comma separated table of
	// requests for a whole test.
	RequestDetails
	// RequestSummary is the quoted, comma separated summary
	// table for a whole test.
	RequestSummary
	// Utilization is the comma separated table of resource
	// utilization samples of one view.
	Utilization
	// PageSpeed is the JSON page speed document of one view.
	PageSpeed
	// HeaderDump is the free text dump of the HTTP headers of
	// one view.
	HeaderDump
)

var kindNames = [...]string{
	PageData:       "page data",
	Requests:       "requests data",
	RequestDetails: "request details",
	RequestSummary: "request summary",
	Utilization:    "utilization",
	PageSpeed:      "page speed data",
	HeaderDump:     "headers",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// A FormatError reports an asset file that is missing, empty, or
// structurally malformed.
type FormatError struct {
	Path string
	Kind Kind
	Line int // 1-based; 0 if the error is not tied to a line
	Msg  string
	Err  error // underlying error, if any
}

func (e *FormatError) Error() string {
	pos := e.Path
	if e.Line > 0 {
		pos = fmt.Sprintf("%s:%d", e.Path, e.Line)
	}
	msg := e.Msg
	if e.Err != nil {
		if msg == "" {
			msg = e.Err.Error()
		} else {
			msg += ": " + e.Err.Error()
		}
	}
	return fmt.Sprintf("%s: %s: %s", pos, e.Kind, msg)
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

// readFile returns the contents of path, failing if the file cannot
// be read or holds nothing but white space.
func readFile(path string, kind Kind) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &FormatError{Path: path, Kind: kind, Msg: "cannot read file", Err: err}
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, &FormatError{Path: path, Kind: kind, Msg: "empty file"}
	}
	return data, nil
}
