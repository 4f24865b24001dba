// Copyright 2024 The Pageload Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package report

import (
	"encoding/csv"
	"io"
)

// CSV writes grids as comma-separated records. Each title line is a
// record of one field. Grids are separated by an empty record.
func CSV(w io.Writer, grids []*Grid) error {
	var tab [][]string
	for i, g := range grids {
		if i > 0 {
			tab = append(tab, nil)
		}
		for _, l := range g.Title {
			tab = append(tab, []string{l})
		}
		if g.Header != nil {
			tab = append(tab, g.Header)
		}
		for _, r := range g.Rows {
			tab = append(tab, r.Cells)
		}
	}
	csvw := csv.NewWriter(w)
	return csvw.WriteAll(tab)
}
