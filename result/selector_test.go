// Copyright 2024 The Pageload Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package result

import (
	"errors"
	"reflect"
	"testing"
)

func TestSelector(t *testing.T) {
	for _, test := range []struct {
		in     string
		n      int
		prefix string
		want   []int
		str    string
	}{
		{"abcd", 3, "abcd", []int{1, 2, 3}, "abcd:*"},
		{"abcd:", 2, "abcd", []int{1, 2}, "abcd:*"},
		{"abcd:*", 2, "abcd", []int{1, 2}, "abcd:*"},
		{"abcd:2", 3, "abcd", []int{2}, "abcd:2"},
		{"abcd:3,1", 3, "abcd", []int{3, 1}, "abcd:3,1"},
		{"abcd:4-7", 9, "abcd", []int{4, 5, 6, 7}, "abcd:4-7"},
		{"abcd:2-3,1,3", 3, "abcd", []int{2, 3, 1}, "abcd:2-3,1,3"},
		{"abcd:*", 0, "abcd", nil, "abcd:*"},
	} {
		sel, err := ParseSelector(test.in)
		if err != nil {
			t.Errorf("ParseSelector(%q): %v", test.in, err)
			continue
		}
		if sel.Prefix != test.prefix {
			t.Errorf("ParseSelector(%q).Prefix = %q, want %q", test.in, sel.Prefix, test.prefix)
		}
		got, err := sel.Runs(test.n)
		if err != nil {
			t.Errorf("%q.Runs(%d): %v", test.in, test.n, err)
			continue
		}
		if !reflect.DeepEqual(got, test.want) {
			t.Errorf("%q.Runs(%d) = %v, want %v", test.in, test.n, got, test.want)
		}
		if s := sel.String(); s != test.str {
			t.Errorf("%q.String() = %q, want %q", test.in, s, test.str)
		}
	}
}

func TestSelectorErrors(t *testing.T) {
	for _, in := range []string{"", ":1", "abcd:x", "abcd:0", "abcd:3-1", "abcd:1-", "abcd:-2", "abcd:1,,2"} {
		if _, err := ParseSelector(in); err == nil {
			t.Errorf("ParseSelector(%q) succeeded", in)
		}
	}

	sel, err := ParseSelector("abcd:2-4")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := sel.Runs(3); !errors.Is(err, ErrNoSuchRun) {
		t.Errorf("Runs(3) of 2-4: want ErrNoSuchRun, got %v", err)
	}
}
