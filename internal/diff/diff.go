// Copyright 2024 The Pageload Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package diff compares golden output in tests.
package diff

import (
	"github.com/pmezard/go-difflib/difflib"
)

// Diff returns a unified diff from want to got, or "" if they are
// equal.
func Diff(want, got string) string {
	if want == got {
		return ""
	}
	out, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(want),
		B:        difflib.SplitLines(got),
		FromFile: "want",
		ToFile:   "got",
		Context:  2,
	})
	if err != nil {
		return err.Error()
	}
	return out
}
