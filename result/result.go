// Copyright 2024 The Pageload Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package result models the stored output of page load tests.
//
// A TestResult is the output of one test submission. It holds an
// ordered sequence of Runs, each of which has a first (cold cache)
// and a repeat (warm cache) View. Every level is built on demand
// from the files on disk and memoized; nothing is re-read once it
// has been parsed.
//
// The on-disk layout of a test result is
//
//	<dir>/request.xml                       test definition; its MD5 is the signature
//	<dir>/detail.csv, <dir>/summary.csv     request details and summary
//	<dir>/run/<id>/{firstView,repeatView}/data/...
//
// where the name of <dir> is the test's start time, formatted as
// TimeLayout.
package result

import (
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/pageload/pageload/asset"
)

// TimeLayout is the time layout of test result directory names.
const TimeLayout = "20060102150405"

var (
	// ErrRemoved is returned by the accessors of a TestResult
	// after its storage has been removed.
	ErrRemoved = errors.New("test result has been removed")

	// ErrNoSuchRun is returned when a run number is out of range.
	ErrNoSuchRun = errors.New("no such run")
)

// A TestResult is the complete stored output of one test.
//
// A TestResult may be used from multiple goroutines; each lazily
// built field is computed at most once.
type TestResult struct {
	dir       string
	signature string
	time      time.Time

	runs    lazy[[]*Run]
	details lazy[[]asset.Request]
	summary lazy[[]asset.Record]

	mu      sync.Mutex
	removed bool
}

// A lazy holds a value that is computed on first use and never
// invalidated.
type lazy[T any] struct {
	once sync.Once
	val  T
	err  error
}

func (l *lazy[T]) get(f func() (T, error)) (T, error) {
	l.once.Do(func() { l.val, l.err = f() })
	return l.val, l.err
}

// Open returns the TestResult stored in dir. Its signature is the
// hex MD5 of dir/request.xml.
func Open(dir string) (*TestResult, error) {
	sig, err := Signature(dir)
	if err != nil {
		return nil, err
	}
	return New(dir, sig), nil
}

// New returns the TestResult stored in dir with a precomputed
// signature.
func New(dir, signature string) *TestResult {
	t, _ := time.ParseInLocation(TimeLayout, filepath.Base(dir), time.Local)
	return &TestResult{dir: dir, signature: signature, time: t}
}

// Signature computes the signature of the test result stored in
// dir.
func Signature(dir string) (string, error) {
	data, err := os.ReadFile(filepath.Join(dir, "request.xml"))
	if err != nil {
		return "", fmt.Errorf("computing signature: %w", err)
	}
	sum := md5.Sum(data)
	return hex.EncodeToString(sum[:]), nil
}

// Signature returns the content-derived signature of t. It never
// changes.
func (t *TestResult) Signature() string { return t.signature }

// ShortSignature returns the first 8 characters of the signature,
// the form used to label results in reports.
func (t *TestResult) ShortSignature() string { return Short(t.signature) }

// Short truncates a signature to its display prefix.
func Short(sig string) string {
	if len(sig) > 8 {
		return sig[:8]
	}
	return sig
}

// Dir returns the directory t is stored in.
func (t *TestResult) Dir() string { return t.dir }

// Time returns the start time of the test, or the zero time if the
// directory name is not a timestamp.
func (t *TestResult) Time() time.Time { return t.time }

// RunDir returns the directory of run n (1-based) as it is labeled
// in reports.
func (t *TestResult) RunDir(n int) string {
	return filepath.Join(t.dir, "run", strconv.Itoa(n))
}

func (t *TestResult) check() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.removed {
		return fmt.Errorf("%s: %w", t.dir, ErrRemoved)
	}
	return nil
}

// Runs returns the runs of t, ordered by their on-disk identifiers.
// Run number n is Runs()[n-1]. Run directories are listed once; the
// same slice is returned on every call.
func (t *TestResult) Runs() ([]*Run, error) {
	if err := t.check(); err != nil {
		return nil, err
	}
	return t.runs.get(func() ([]*Run, error) {
		return loadRuns(filepath.Join(t.dir, "run"))
	})
}

// Run returns run number n, counting from 1.
func (t *TestResult) Run(n int) (*Run, error) {
	runs, err := t.Runs()
	if err != nil {
		return nil, err
	}
	if n < 1 || n > len(runs) {
		return nil, fmt.Errorf("%s: run %d of %d: %w", Short(t.signature), n, len(runs), ErrNoSuchRun)
	}
	return runs[n-1], nil
}

// RequestDetails returns the parsed detail.csv of t.
func (t *TestResult) RequestDetails() ([]asset.Request, error) {
	if err := t.check(); err != nil {
		return nil, err
	}
	return t.details.get(func() ([]asset.Request, error) {
		return asset.ReadRequestDetails(filepath.Join(t.dir, "detail.csv"))
	})
}

// RequestSummary returns the parsed summary.csv of t.
func (t *TestResult) RequestSummary() ([]asset.Record, error) {
	if err := t.check(); err != nil {
		return nil, err
	}
	return t.summary.get(func() ([]asset.Record, error) {
		return asset.ReadRequestSummary(filepath.Join(t.dir, "summary.csv"))
	})
}

// Remove deletes the storage of t. Afterwards every accessor of t
// that touches storage fails with ErrRemoved; callers should drop
// their reference.
func (t *TestResult) Remove() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.removed {
		return fmt.Errorf("%s: %w", t.dir, ErrRemoved)
	}
	if err := os.RemoveAll(t.dir); err != nil {
		return err
	}
	t.removed = true
	return nil
}

// loadRuns lists the run directories in dir. Identifiers are sorted
// numerically if they are all integers and lexically otherwise.
func loadRuns(dir string) ([]*Run, error) {
	ents, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	var ids []string
	numeric := true
	for _, ent := range ents {
		if !ent.IsDir() {
			continue
		}
		ids = append(ids, ent.Name())
		if _, err := strconv.Atoi(ent.Name()); err != nil {
			numeric = false
		}
	}
	if numeric {
		sort.Slice(ids, func(i, j int) bool {
			a, _ := strconv.Atoi(ids[i])
			b, _ := strconv.Atoi(ids[j])
			return a < b
		})
	} else {
		sort.Strings(ids)
	}
	runs := make([]*Run, len(ids))
	for i, id := range ids {
		runs[i] = newRun(id, filepath.Join(dir, id))
	}
	return runs, nil
}
