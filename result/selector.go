// Copyright 2024 The Pageload Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package result

import (
	"fmt"
	"strconv"
	"strings"
)

// A Selector picks runs out of a test result. Its textual form is
//
//	<signature prefix>[:<runs>]
//
// where <runs> is a comma separated list of run numbers "n", ranges
// "a-b" (inclusive), or "*" for every run. Omitting <runs> is the
// same as "*".
type Selector struct {
	// Prefix is the signature prefix of the test result.
	Prefix string

	spans []span
}

// A span is an inclusive range of run numbers. An all span stands
// for every run.
type span struct {
	lo, hi int
	all    bool
}

// ParseSelector parses the textual form of a Selector.
func ParseSelector(s string) (Selector, error) {
	prefix, runs, ok := strings.Cut(s, ":")
	if prefix == "" {
		return Selector{}, fmt.Errorf("selector %q: empty signature", s)
	}
	sel := Selector{Prefix: prefix}
	if !ok || runs == "" {
		sel.spans = []span{{all: true}}
		return sel, nil
	}
	for _, f := range strings.Split(runs, ",") {
		sp, err := parseSpan(strings.TrimSpace(f))
		if err != nil {
			return Selector{}, fmt.Errorf("selector %q: %w", s, err)
		}
		sel.spans = append(sel.spans, sp)
	}
	return sel, nil
}

func parseSpan(f string) (span, error) {
	if f == "*" {
		return span{all: true}, nil
	}
	if lo, hi, ok := strings.Cut(f, "-"); ok {
		a, err1 := strconv.Atoi(lo)
		b, err2 := strconv.Atoi(hi)
		if err1 != nil || err2 != nil || a < 1 || b < a {
			return span{}, fmt.Errorf("bad run range %q", f)
		}
		return span{lo: a, hi: b}, nil
	}
	n, err := strconv.Atoi(f)
	if err != nil || n < 1 {
		return span{}, fmt.Errorf("bad run number %q", f)
	}
	return span{lo: n, hi: n}, nil
}

// Runs expands s against a test result with n runs. Run numbers are
// returned in the order they were written, without duplicates.
func (s Selector) Runs(n int) ([]int, error) {
	var runs []int
	seen := make(map[int]bool)
	add := func(r int) {
		if !seen[r] {
			seen[r] = true
			runs = append(runs, r)
		}
	}
	for _, sp := range s.spans {
		lo, hi := sp.lo, sp.hi
		if sp.all {
			lo, hi = 1, n
		}
		if hi > n {
			return nil, fmt.Errorf("%s: run %d of %d: %w", s.Prefix, hi, n, ErrNoSuchRun)
		}
		for r := lo; r <= hi; r++ {
			add(r)
		}
	}
	return runs, nil
}

func (s Selector) String() string {
	var fs []string
	for _, sp := range s.spans {
		switch {
		case sp.all:
			fs = append(fs, "*")
		case sp.lo == sp.hi:
			fs = append(fs, strconv.Itoa(sp.lo))
		default:
			fs = append(fs, fmt.Sprintf("%d-%d", sp.lo, sp.hi))
		}
	}
	return s.Prefix + ":" + strings.Join(fs, ",")
}
