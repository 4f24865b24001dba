// Copyright 2024 The Pageload Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/pageload/pageload/aggregate"
	"github.com/pageload/pageload/internal/diff"
	"github.com/pageload/pageload/metrics"
)

var start = time.Date(2011, 11, 1, 18, 30, 0, 0, time.UTC)

func src(sig string, run int) metrics.Source {
	return metrics.Source{Signature: sig, Run: run, Time: start, Dir: "/tests/home/20111101183000/run/" + string(rune('0'+run))}
}

// small returns a MetricSet with only two keys, to keep layouts
// readable.
func small(sig string, run int, ttl, js int64) *metrics.MetricSet {
	return &metrics.MetricSet{
		Source: src(sig, run),
		Keys:   []string{metrics.TimeToLoad, metrics.JSFiles},
		Values: map[string]int64{metrics.TimeToLoad: ttl, metrics.JSFiles: js},
	}
}

func check(t *testing.T, name, want, got string) {
	t.Helper()
	if d := diff.Diff(want, got); d != "" {
		t.Errorf("%s differs from expected:\n%s", name, d)
	}
}

func TestText(t *testing.T) {
	m := metrics.NewMetricSet(src("0123456789abcdef0123456789abcdef", 2))
	m.Values[metrics.TimeToLoad] = 1200
	m.Values[metrics.TimeToFirstByte] = 300
	m.Values[metrics.TTLMinusTTFB] = 900
	m.Values[metrics.JSFiles] = 1
	m.Values[metrics.JSSize] = 4096
	m.Values[metrics.ImageFiles] = 1
	m.Values[metrics.ImageSize] = 2048
	tab := &metrics.MetricTable{
		Source:  src("0123456789abcdef0123456789abcdef", 1),
		Columns: []string{"Time to Load (ms)", "URL"},
		Rows:    [][]string{{"1200 ms", "www.example.com/"}, {"- ms", "static.example.com/app.js"}},
	}

	var buf bytes.Buffer
	if err := Text(&buf, []metrics.Result{m, tab}); err != nil {
		t.Fatal(err)
	}
	check(t, "Text", `[0123456789abcdef0123456789abcdef] run 2 (2011/11/01 18:30:00)
Run directory: /tests/home/20111101183000/run/2
  Time to Load (ms): 1200
  Time to First Byte (ms): 300
  TTL - TTFB (ms): 900
  JS files: 1
  CSS files: 0
  Image files: 1
  JS size (bytes): 4096
  CSS size (bytes): 0
  Images size (bytes): 2048

[0123456789abcdef0123456789abcdef] run 1 (2011/11/01 18:30:00)
Run directory: /tests/home/20111101183000/run/1
1200 ms	www.example.com/
- ms	static.example.com/app.js
`, buf.String())

	buf.Reset()
	if err := Tabular(&buf, tab); err != nil {
		t.Fatal(err)
	}
	check(t, "Tabular", `[0123456789abcdef0123456789abcdef] run 1 (2011/11/01 18:30:00)
Run directory: /tests/home/20111101183000/run/1
Time to Load (ms)  URL
1200 ms            www.example.com/
- ms               static.example.com/app.js
`, buf.String())
}

func TestCompare(t *testing.T) {
	var buf bytes.Buffer
	err := Compare(&buf, []metrics.Result{small("aaaaaaaa11", 1, 1200, 1), small("bbbbbbbb22", 3, 1000, 12)})
	if err != nil {
		t.Fatal(err)
	}
	check(t, "Compare", "              aaaaaaaa:1  bbbbbbbb:3\n"+
		"time_to_load        1200        1000\n"+
		"js_files               1          12\n", buf.String())

	buf.Reset()
	err = Compare(&buf, []metrics.Result{
		&metrics.MetricTable{Source: src("aaaaaaaa11", 1), Rows: [][]string{{"10 ms", "a.com/"}, {"5 ms", "a.com/x.js"}}},
		&metrics.MetricTable{Source: src("bbbbbbbb22", 3), Rows: [][]string{{"20 ms", "a.com/"}}},
	})
	if err != nil {
		t.Fatal(err)
	}
	check(t, "Compare tables", "   aaaaaaaa:1       bbbbbbbb:3\n"+
		"1     10 ms a.com/  20 ms a.com/\n"+
		"2  5 ms a.com/x.js\n", buf.String())

	mixed := []metrics.Result{small("a", 1, 1, 1), &metrics.MetricTable{Source: src("b", 1)}}
	if err := Compare(&buf, mixed); !errors.Is(err, aggregate.ErrInvalidOperandKind) {
		t.Errorf("mixed kinds: got %v", err)
	}
	odd := small("b", 1, 1, 1)
	odd.Keys = odd.Keys[:1]
	if err := Compare(&buf, []metrics.Result{small("a", 1, 1, 1), odd}); !errors.Is(err, aggregate.ErrKeyMismatch) {
		t.Errorf("key mismatch: got %v", err)
	}
}

func combined(t *testing.T) *aggregate.Aggregation {
	t.Helper()
	a, err := aggregate.Combine([]metrics.Result{
		small("aaaaaaaa11", 1, 100, 1),
		small("aaaaaaaa11", 2, 200, 2),
		small("bbbbbbbb22", 3, 300, 3),
		small("bbbbbbbb22", 4, 400, 4),
	}, "median")
	if err != nil {
		t.Fatal(err)
	}
	return a
}

func TestCombined(t *testing.T) {
	var buf bytes.Buffer
	if err := Combined(&buf, combined(t)); err != nil {
		t.Fatal(err)
	}
	check(t, "Combined", "Combined results using the median (4 runs)\n"+
		"aaaaaaaa:1,2 bbbbbbbb:3,4\n"+
		"              median  min  max\n"+
		"time_to_load     250  100  400\n"+
		"js_files         2.5    1    4\n", buf.String())
}

func TestDiff(t *testing.T) {
	left, right := small("aaaaaaaa11", 1, 1200, 1), small("bbbbbbbb22", 3, 1000, 12)
	left.Keys = append(left.Keys, metrics.CSSFiles)
	right.Keys = append(right.Keys, metrics.CSSFiles)
	d, err := aggregate.DiffResults(left, right)
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := Diff(&buf, d); err != nil {
		t.Fatal(err)
	}
	check(t, "Diff", "              aaaaaaaa:1  bbbbbbbb:3  diff\n"+
		"time_to_load        1200        1000  -200\n"+
		"js_files               1          12   +11\n"+
		"css_files              0           0    +0\n", buf.String())

	g := DiffGrid(d)
	var classes []string
	for _, r := range g.Rows {
		classes = append(classes, r.Class)
	}
	if diff := cmp.Diff([]string{"better", "worse", "unchanged"}, classes); diff != "" {
		t.Errorf("row classes (-want +got):\n%s", diff)
	}
}

func TestJSON(t *testing.T) {
	m := metrics.NewMetricSet(src("0123456789abcdef", 1))
	m.Values[metrics.TimeToLoad] = 1200
	tab := &metrics.MetricTable{Source: src("0123456789abcdef", 2), Columns: []string{"URL"}, Rows: [][]string{{`/a"b`}}}

	var buf bytes.Buffer
	if err := JSON(&buf, []metrics.Result{m, tab}); err != nil {
		t.Fatal(err)
	}
	var got []map[string]any
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("output is not valid JSON: %v\n%s", err, buf.String())
	}
	if len(got) != 2 {
		t.Fatalf("got %d results", len(got))
	}
	if got[0]["signature"] != "0123456789abcdef" || got[0]["run"] != 1.0 || got[0]["kind"] != "aggregate" {
		t.Errorf("result 0 = %v", got[0])
	}
	ms := got[0]["metrics"].(map[string]any)
	if len(ms) != 9 || ms["time_to_load"] != 1200.0 {
		t.Errorf("metrics = %v", ms)
	}
	// Metrics keep their display order.
	out := buf.String()
	last := -1
	for _, k := range metrics.Keys {
		i := strings.Index(out, `"`+k+`"`)
		if i < last {
			t.Errorf("key %s out of order", k)
		}
		last = i
	}
	rows := got[1]["rows"].([]any)
	if rows[0].([]any)[0] != `/a"b` {
		t.Errorf("rows = %v", rows)
	}

	buf.Reset()
	if err := JSON(&buf, combined(t)); err != nil {
		t.Fatal(err)
	}
	var c struct {
		Method  string
		Runs    int
		Sources []string
		Metrics map[string]float64
	}
	if err := json.Unmarshal(buf.Bytes(), &c); err != nil {
		t.Fatalf("combined output is not valid JSON: %v\n%s", err, buf.String())
	}
	if c.Method != "median" || c.Runs != 4 || c.Metrics["js_files"] != 2.5 {
		t.Errorf("combined = %+v", c)
	}
	if diff := cmp.Diff([]string{"aaaaaaaa:1,2", "bbbbbbbb:3,4"}, c.Sources); diff != "" {
		t.Errorf("sources (-want +got):\n%s", diff)
	}

	buf.Reset()
	d, err := aggregate.DiffResults(small("a", 1, 10, 1), small("b", 1, 4, 1))
	if err != nil {
		t.Fatal(err)
	}
	if err := JSON(&buf, d); err != nil {
		t.Fatal(err)
	}
	var dj struct {
		Left, Right string
		Diff        map[string]float64
	}
	if err := json.Unmarshal(buf.Bytes(), &dj); err != nil {
		t.Fatalf("diff output is not valid JSON: %v\n%s", err, buf.String())
	}
	if dj.Left != "a:1" || dj.Right != "b:1" || dj.Diff["time_to_load"] != -6 {
		t.Errorf("diff = %+v", dj)
	}

	if err := JSON(&buf, "nope"); err == nil {
		t.Errorf("JSON of a string succeeded")
	}
}

func TestHTML(t *testing.T) {
	d, err := aggregate.DiffResults(small("aaaaaaaa11", 1, 1200, 1), small("bbbbbbbb22", 3, 1000, 12))
	if err != nil {
		t.Fatal(err)
	}
	tab := &metrics.MetricTable{Source: src("cccccccc33", 1), Columns: []string{"URL"}, Rows: [][]string{{"/<script>"}}}
	grids := append([]*Grid{DiffGrid(d)}, RunGrids([]metrics.Result{tab})...)

	var buf bytes.Buffer
	if err := HTML(&buf, grids); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{
		"<th>aaaaaaaa:1<th>bbbbbbbb:3<th>diff",
		"<tr class='better'><td>time_to_load<td>1200<td>1000<td>-200",
		"<tr class='worse'><td>js_files<td>1<td>12<td>+11",
		"<p>Run directory: /tests/home/20111101183000/run/1</p>",
		"<tr><td>/&lt;script&gt;",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("HTML output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "<script>") {
		t.Errorf("HTML output not escaped:\n%s", out)
	}
}

func TestChart(t *testing.T) {
	results := []metrics.Result{small("aaaaaaaa11", 1, 1200, 1), small("aaaaaaaa11", 2, 900, 1)}

	var buf bytes.Buffer
	if err := Chart(&buf, results, metrics.TimeToLoad, "png"); err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG")) {
		t.Errorf("png chart does not start with the PNG signature")
	}

	buf.Reset()
	if err := Chart(&buf, results, metrics.TimeToLoad, "svg"); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "<svg") {
		t.Errorf("svg chart has no <svg> element")
	}

	if err := Chart(&buf, results, metrics.TimeToLoad, "gif"); err == nil {
		t.Errorf("gif chart succeeded")
	}
	if err := Chart(&buf, results, metrics.ImageSize, "png"); !errors.Is(err, aggregate.ErrKeyMismatch) {
		t.Errorf("missing key: got %v", err)
	}
	tab := []metrics.Result{&metrics.MetricTable{Source: src("a", 1)}}
	if err := Chart(&buf, tab, metrics.TimeToLoad, "png"); !errors.Is(err, aggregate.ErrInvalidOperandKind) {
		t.Errorf("tabular input: got %v", err)
	}
	if err := Chart(&buf, nil, metrics.TimeToLoad, "png"); !errors.Is(err, aggregate.ErrEmptyInput) {
		t.Errorf("no input: got %v", err)
	}
}

func TestCSV(t *testing.T) {
	d, err := aggregate.DiffResults(small("aaaaaaaa11", 1, 1200, 1), small("bbbbbbbb22", 3, 1000, 12))
	if err != nil {
		t.Fatal(err)
	}
	tab := &metrics.MetricTable{Source: src("cccccccc33", 1), Columns: []string{"URL"}, Rows: [][]string{{"/a,b"}}}
	grids := append([]*Grid{DiffGrid(d)}, RunGrids([]metrics.Result{tab})...)

	var buf bytes.Buffer
	if err := CSV(&buf, grids); err != nil {
		t.Fatal(err)
	}
	want := `,aaaaaaaa:1,bbbbbbbb:3,diff
time_to_load,1200,1000,-200
js_files,1,12,+11

[cccccccc33] run 1 (2011/11/01 18:30:00)
Run directory: /tests/home/20111101183000/run/1
URL
"/a,b"
`
	check(t, "CSV", want, buf.String())
}
