// Copyright 2024 The Pageload Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package result

import (
	"fmt"
	"path/filepath"

	"github.com/pageload/pageload/asset"
)

// A ViewKind selects one of the two page loads of a run.
type ViewKind int

const (
	// FirstView is the cold-cache page load.
	FirstView ViewKind = iota
	// RepeatView is the warm-cache page load.
	RepeatView
)

// String returns the directory name of the view.
func (k ViewKind) String() string {
	switch k {
	case FirstView:
		return "firstView"
	case RepeatView:
		return "repeatView"
	}
	return fmt.Sprintf("ViewKind(%d)", int(k))
}

// A Run is one execution of a test. It has no identity beyond its
// position in its TestResult.
type Run struct {
	id     string
	first  *View
	repeat *View
}

func newRun(id, dir string) *Run {
	return &Run{
		id:     id,
		first:  &View{dir: filepath.Join(dir, FirstView.String())},
		repeat: &View{dir: filepath.Join(dir, RepeatView.String())},
	}
}

// ID returns the on-disk identifier of r.
func (r *Run) ID() string { return r.id }

// FirstView returns the cold-cache view of r.
func (r *Run) FirstView() *View { return r.first }

// RepeatView returns the warm-cache view of r.
func (r *Run) RepeatView() *View { return r.repeat }

// View returns the view of r selected by k.
func (r *Run) View(k ViewKind) *View {
	if k == RepeatView {
		return r.repeat
	}
	return r.first
}

// A View is one page load. Each of its assets is parsed from disk on
// first access.
type View struct {
	dir string

	headers     lazy[[]asset.Headers]
	pageData    lazy[asset.Record]
	pageSpeed   lazy[*asset.PageSpeedScore]
	requests    lazy[[]asset.Request]
	utilization lazy[[]asset.Record]
}

// Dir returns the directory of v.
func (v *View) Dir() string { return v.dir }

func (v *View) path(name string) string {
	return filepath.Join(v.dir, "data", name)
}

// Headers returns the request and response headers of every
// request, in request order.
func (v *View) Headers() ([]asset.Headers, error) {
	return v.headers.get(func() ([]asset.Headers, error) {
		return asset.ReadHeaders(v.path("headers"))
	})
}

// PageData returns the page summary record.
func (v *View) PageData() (asset.Record, error) {
	return v.pageData.get(func() (asset.Record, error) {
		return asset.ReadPageData(v.path("pageData"))
	})
}

// PageSpeed returns the page speed document.
func (v *View) PageSpeed() (*asset.PageSpeedScore, error) {
	return v.pageSpeed.get(func() (*asset.PageSpeedScore, error) {
		return asset.ReadPageSpeed(v.path("PageSpeedData"))
	})
}

// Requests returns one record per request made during the load.
func (v *View) Requests() ([]asset.Request, error) {
	return v.requests.get(func() ([]asset.Request, error) {
		return asset.ReadRequests(v.path("requestsData"))
	})
}

// Utilization returns the utilization samples of the load.
func (v *View) Utilization() ([]asset.Record, error) {
	return v.utilization.get(func() ([]asset.Record, error) {
		return asset.ReadUtilization(v.path("utilization"))
	})
}
