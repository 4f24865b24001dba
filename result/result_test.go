// Copyright 2024 The Pageload Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package result

import (
	"crypto/md5"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/pageload/pageload/asset"
	"github.com/pageload/pageload/internal/fixture"
)

var page = []fixture.Request{
	{Host: "www.example.com", URL: "/", ContentType: "text/html", TimeToLoad: "1200", TimeToFirstByte: "300", StartTime: "0", EndTime: "1200"},
	{Host: "static.example.com", URL: "/app.js", ContentType: "application/javascript", ObjectSize: "4096", StartTime: "310", EndTime: "420"},
}

func md5hex(s string) string {
	sum := md5.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}

func TestOpen(t *testing.T) {
	dir := fixture.Write(t, t.TempDir(), fixture.Test{
		Dir:        "home",
		RequestXML: "<request>home</request>",
		Runs:       []fixture.Run{{First: page, Repeat: page[:1]}},
	})
	tr, err := Open(dir)
	if err != nil {
		t.Fatal(err)
	}
	if want := md5hex("<request>home</request>"); tr.Signature() != want {
		t.Errorf("Signature() = %s, want %s", tr.Signature(), want)
	}
	if got := tr.ShortSignature(); len(got) != 8 {
		t.Errorf("ShortSignature() = %q", got)
	}
	want := time.Date(2011, 11, 1, 18, 30, 0, 0, time.Local)
	if !tr.Time().Equal(want) {
		t.Errorf("Time() = %v, want %v", tr.Time(), want)
	}

	run, err := tr.Run(1)
	if err != nil {
		t.Fatal(err)
	}
	reqs, err := run.FirstView().Requests()
	if err != nil {
		t.Fatal(err)
	}
	if len(reqs) != 2 || reqs[1].URL() != "/app.js" {
		t.Errorf("first view requests = %v", reqs)
	}
	reqs, err = run.View(RepeatView).Requests()
	if err != nil {
		t.Fatal(err)
	}
	if len(reqs) != 1 {
		t.Errorf("repeat view has %d requests, want 1", len(reqs))
	}
	hs, err := run.FirstView().Headers()
	if err != nil {
		t.Fatal(err)
	}
	if len(hs) != 2 || hs[1].Request[0] != "GET /app.js HTTP/1.1" {
		t.Errorf("headers = %v", hs)
	}
	if _, err := run.FirstView().PageData(); err != nil {
		t.Error(err)
	}
	if _, err := run.FirstView().PageSpeed(); err != nil {
		t.Error(err)
	}
	if u, err := run.FirstView().Utilization(); err != nil || len(u) != 2 {
		t.Errorf("utilization = %v, %v", u, err)
	}
	details, err := tr.RequestDetails()
	if err != nil || len(details) != 2 {
		t.Errorf("request details = %v, %v", details, err)
	}
	if _, err := tr.RequestSummary(); err != nil {
		t.Error(err)
	}

	if _, err := tr.Run(2); !errors.Is(err, ErrNoSuchRun) {
		t.Errorf("Run(2): want ErrNoSuchRun, got %v", err)
	}
	if _, err := tr.Run(0); !errors.Is(err, ErrNoSuchRun) {
		t.Errorf("Run(0): want ErrNoSuchRun, got %v", err)
	}
}

func TestRunOrder(t *testing.T) {
	dir := fixture.Write(t, t.TempDir(), fixture.Test{
		Runs: []fixture.Run{{ID: "10"}, {ID: "2"}, {ID: "1"}},
	})
	tr, err := Open(dir)
	if err != nil {
		t.Fatal(err)
	}
	runs, err := tr.Runs()
	if err != nil {
		t.Fatal(err)
	}
	var ids []string
	for _, r := range runs {
		ids = append(ids, r.ID())
	}
	if want := []string{"1", "2", "10"}; !equal(ids, want) {
		t.Errorf("numeric ids ordered %v, want %v", ids, want)
	}

	dir = fixture.Write(t, t.TempDir(), fixture.Test{
		Runs: []fixture.Run{{ID: "b"}, {ID: "10"}, {ID: "a"}},
	})
	tr, err = Open(dir)
	if err != nil {
		t.Fatal(err)
	}
	runs, err = tr.Runs()
	if err != nil {
		t.Fatal(err)
	}
	ids = ids[:0]
	for _, r := range runs {
		ids = append(ids, r.ID())
	}
	if want := []string{"10", "a", "b"}; !equal(ids, want) {
		t.Errorf("mixed ids ordered %v, want %v", ids, want)
	}
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestMemoized(t *testing.T) {
	dir := fixture.Write(t, t.TempDir(), fixture.Test{
		Runs: []fixture.Run{{First: page, Repeat: page}},
	})
	tr, err := Open(dir)
	if err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	got := make([][]*Run, 8)
	for i := range got {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			got[i], _ = tr.Runs()
		}(i)
	}
	wg.Wait()
	for i := range got {
		if len(got[i]) != 1 || got[i][0] != got[0][0] {
			t.Fatalf("Runs() call %d returned a different run", i)
		}
	}

	view := got[0][0].FirstView()
	reqs1, err := view.Requests()
	if err != nil {
		t.Fatal(err)
	}
	// Parsed assets are not re-read from disk.
	if err := os.RemoveAll(filepath.Join(dir, "run")); err != nil {
		t.Fatal(err)
	}
	reqs2, err := view.Requests()
	if err != nil {
		t.Fatalf("second Requests() read the disk: %v", err)
	}
	if &reqs1[0] != &reqs2[0] {
		t.Errorf("Requests() returned a different slice")
	}
	runs, err := tr.Runs()
	if err != nil || len(runs) != 1 {
		t.Errorf("Runs() after removing run dir = %v, %v", runs, err)
	}
	// The repeat view was never read, so it fails now.
	var ferr *asset.FormatError
	if _, err := runs[0].RepeatView().Requests(); !errors.As(err, &ferr) {
		t.Errorf("repeat view: want *asset.FormatError, got %v", err)
	}
}

func TestRemove(t *testing.T) {
	dir := fixture.Write(t, t.TempDir(), fixture.Test{Runs: []fixture.Run{{}}})
	tr, err := Open(dir)
	if err != nil {
		t.Fatal(err)
	}
	if err := tr.Remove(); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Errorf("directory still exists: %v", err)
	}
	if _, err := tr.Runs(); !errors.Is(err, ErrRemoved) {
		t.Errorf("Runs() after Remove: want ErrRemoved, got %v", err)
	}
	if err := tr.Remove(); !errors.Is(err, ErrRemoved) {
		t.Errorf("second Remove: want ErrRemoved, got %v", err)
	}
}

func TestOpenMissing(t *testing.T) {
	if _, err := Open(t.TempDir()); err == nil {
		t.Error("Open of a directory without request.xml succeeded")
	}
}
