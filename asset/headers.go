// Copyright 2024 The Pageload Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asset

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// Headers holds the raw header lines of one HTTP request and its
// response, in their original order. Lines are not split into key
// and value because the dump does not guarantee a single colon per
// line.
type Headers struct {
	Request  []string `json:"request"`
	Response []string `json:"response"`
}

// Marker lines of the header dump.
const (
	detailsLine     = "Request details"
	requestHeaders  = "Request Headers:"
	responseHeaders = "Response Headers:"
)

var requestMarker = regexp.MustCompile(`^Request (\d+):`)

// ReadHeaders reads a header dump.
//
// Everything up to and including the "Request details" line is
// discarded. The remaining non-blank lines are rewritten into a JSON
// array of {"request": [...], "response": [...]} objects, one per
// "Request N:" marker, which is then decoded. Timing annotations
// between a request marker and its "Request Headers:" line are
// dropped.
func ReadHeaders(path string) ([]Headers, error) {
	data, err := readFile(path, HeaderDump)
	if err != nil {
		return nil, err
	}
	lines, start, err := headerLines(data)
	if err != nil {
		return nil, &FormatError{Path: path, Kind: HeaderDump, Msg: "cannot scan", Err: err}
	}
	if start < 0 {
		return nil, &FormatError{Path: path, Kind: HeaderDump, Msg: fmt.Sprintf("no %q line", detailsLine)}
	}
	if len(lines) == 0 {
		return []Headers{}, nil
	}
	buf, err := jsonifyHeaders(lines)
	if err != nil {
		return nil, &FormatError{Path: path, Kind: HeaderDump, Line: start + err.(*tokenError).line, Msg: err.Error()}
	}
	var hs []Headers
	if err := json.Unmarshal(buf, &hs); err != nil {
		return nil, &FormatError{Path: path, Kind: HeaderDump, Msg: "unbalanced request markers", Err: err}
	}
	return hs, nil
}

// A headerLine is one trimmed, non-blank line of a header dump and
// its 1-based offset from the "Request details" line.
type headerLine struct {
	text string
	off  int
}

// headerLines returns the trimmed, non-blank lines that follow the
// "Request details" line and the 1-based line number of that line,
// or -1 if there is none.
func headerLines(data []byte) ([]headerLine, int, error) {
	s := bufio.NewScanner(bytes.NewReader(data))
	s.Buffer(nil, maxLine)
	start, n := -1, 0
	var lines []headerLine
	for s.Scan() {
		n++
		line := strings.TrimSpace(s.Text())
		if start < 0 {
			if line == detailsLine {
				start = n
			}
			continue
		}
		if line != "" {
			lines = append(lines, headerLine{line, n - start})
		}
	}
	return lines, start, s.Err()
}

type tokenError struct {
	line int
	msg  string
}

func (e *tokenError) Error() string { return e.msg }

// jsonifyHeaders rewrites header dump lines into a JSON array. One
// decision is made per line:
//
//	"Request 1:"         {              skip to "Request Headers:"
//	"Request N:", N > 1  ]},{           skip to "Request Headers:"
//	"Request Headers:"   "request": [
//	"Response Headers:"  ], "response": [
//	anything else        "line",
//
// and the end of input closes the last object with ]}. A comma left
// before a closing bracket is removed as the bracket is written.
func jsonifyHeaders(lines []headerLine) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i := 0; i <= len(lines); {
		if i == len(lines) {
			closeList(&buf, "]}")
			break
		}
		line := lines[i].text
		switch {
		case requestMarker.MatchString(line):
			if requestMarker.FindStringSubmatch(line)[1] == "1" {
				buf.WriteString("{")
			} else {
				closeList(&buf, "]},{")
			}
			j := nextRequestHeaders(lines, i)
			if j < 0 {
				return nil, &tokenError{lines[i].off, fmt.Sprintf("%q has no %q line", line, requestHeaders)}
			}
			i = j
			continue
		case strings.HasPrefix(line, requestHeaders):
			buf.WriteString(`"request": [`)
		case strings.HasPrefix(line, responseHeaders):
			closeList(&buf, `], "response": [`)
		default:
			quoted, err := json.Marshal(line)
			if err != nil {
				return nil, &tokenError{lines[i].off, err.Error()}
			}
			buf.Write(quoted)
			buf.WriteByte(',')
		}
		i++
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

// nextRequestHeaders returns the index of the first "Request
// Headers:" line at or after i, or -1.
func nextRequestHeaders(lines []headerLine, i int) int {
	for ; i < len(lines); i++ {
		if lines[i].text == requestHeaders {
			return i
		}
	}
	return -1
}

// closeList writes tok, which begins with a closing bracket, after
// dropping a trailing comma from buf.
func closeList(buf *bytes.Buffer, tok string) {
	if b := buf.Bytes(); len(b) > 0 && b[len(b)-1] == ',' {
		buf.Truncate(len(b) - 1)
	}
	buf.WriteString(tok)
}
