// Copyright 2024 The Pageload Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package report

import (
	"io"

	"github.com/google/safehtml/template"
)

var htmlTemplate = template.Must(template.New("").Parse(`
{{- range . -}}
<div class='pageload'>
{{range .Title}}<p>{{.}}</p>
{{end -}}
<table>
{{if .Header -}}
<tr>{{range .Header}}<th>{{.}}{{end}}
{{end -}}
{{range .Rows -}}
{{if eq .Class "better"}}<tr class='better'>{{else if eq .Class "worse"}}<tr class='worse'>{{else if .Class}}<tr class='unchanged'>{{else}}<tr>{{end}}{{range .Cells}}<td>{{.}}{{end}}
{{end -}}
</table>
</div>
{{end -}}
`))

// HTML writes grids as HTML tables.
func HTML(w io.Writer, grids []*Grid) error {
	return htmlTemplate.Execute(w, grids)
}
