// Copyright 2024 The Pageload Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package fixture writes synthetic test results to disk for tests.
package fixture

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// A Request is one row of a requestsData table. Empty fields are
// written as "-".
type Request struct {
	Host, URL, ContentType string

	ObjectSize, TimeToLoad, TimeToFirstByte string
	StartTime, EndTime                      string
}

// A Run is one run of a test result.
type Run struct {
	// ID is the name of the run directory. If empty, the run's
	// 1-based position is used.
	ID string

	First, Repeat []Request
}

// A Test is a test result.
type Test struct {
	// Dir is the directory of test results the test is stored
	// in, relative to the base directory passed to Write.
	Dir string

	// Stamp is the test result directory name. It defaults to
	// "20111101183000".
	Stamp string

	// RequestXML is the content of request.xml, which
	// determines the signature.
	RequestXML string

	Runs []Run
}

var requestColumns = []string{"Host", "URL", "Content Type", "Object Size", "Time to Load (ms)", "Time to First Byte (ms)", "Start Time (ms)", "End Time (ms)"}

// Write stores test below base and returns the test result's
// directory.
func Write(t testing.TB, base string, test Test) string {
	t.Helper()
	stamp := test.Stamp
	if stamp == "" {
		stamp = "20111101183000"
	}
	resDir := filepath.Join(base, test.Dir, stamp)
	write(t, filepath.Join(base, test.Dir, ".pageload", "manifest"), "{}\n")
	write(t, filepath.Join(resDir, "request.xml"), test.RequestXML)

	var detail strings.Builder
	detail.WriteString(`"` + strings.Join(requestColumns, `","`) + `"` + "\n")
	for i, run := range test.Runs {
		id := run.ID
		if id == "" {
			id = fmt.Sprint(i + 1)
		}
		runDir := filepath.Join(resDir, "run", id)
		writeView(t, filepath.Join(runDir, "firstView"), run.First)
		writeView(t, filepath.Join(runDir, "repeatView"), run.Repeat)
		for _, r := range run.First {
			detail.WriteString(`"` + strings.Join(r.fields(), `","`) + `"` + "\n")
		}
	}
	write(t, filepath.Join(resDir, "detail.csv"), detail.String())
	write(t, filepath.Join(resDir, "summary.csv"), "\"Run\",\"Requests\"\n\"1\",\"0\"\n")
	return resDir
}

func (r Request) fields() []string {
	fs := []string{r.Host, r.URL, r.ContentType, r.ObjectSize, r.TimeToLoad, r.TimeToFirstByte, r.StartTime, r.EndTime}
	for i, f := range fs {
		if f == "" {
			fs[i] = "-"
		}
	}
	return fs
}

func writeView(t testing.TB, dir string, reqs []Request) {
	t.Helper()
	data := filepath.Join(dir, "data")

	var tsv strings.Builder
	tsv.WriteString(strings.Join(requestColumns, "\t") + "\n")
	var hdr strings.Builder
	hdr.WriteString("Request details\n\n")
	for i, r := range reqs {
		tsv.WriteString(strings.Join(r.fields(), "\t") + "\n")
		fmt.Fprintf(&hdr, "Request %d:\n  Url: http://%s%s\nRequest Headers:\n  GET %s HTTP/1.1\n  Host: %s\nResponse Headers:\n  HTTP/1.1 200 OK\n  Content-Type: %s\n\n", i+1, r.Host, r.URL, r.URL, r.Host, r.ContentType)
	}
	write(t, filepath.Join(data, "requestsData"), tsv.String())
	write(t, filepath.Join(data, "headers"), hdr.String())
	write(t, filepath.Join(data, "pageData"), fmt.Sprintf("Requests\tURL\n%d\t/\n", len(reqs)))
	write(t, filepath.Join(data, "PageSpeedData"), `[{"name": "MinifyCss", "score": 90}]`+"\n")
	write(t, filepath.Join(data, "utilization"), "Time,CPU\n0,10\n100,40\n")
}

func write(t testing.TB, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0777); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0666); err != nil {
		t.Fatal(err)
	}
}
