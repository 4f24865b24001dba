// Copyright 2024 The Pageload Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package report

import (
	"fmt"
	"image/color"
	"io"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
	"gonum.org/v1/plot/vg/vgsvg"

	"github.com/pageload/pageload/aggregate"
	"github.com/pageload/pageload/metrics"
)

const (
	chartWidth  = 16 * vg.Centimeter
	chartHeight = 10 * vg.Centimeter
	chartDPI    = 96
)

// Chart draws a bar chart of metric key across results, one bar per
// run, and writes it to w. format is "png" or "svg".
func Chart(w io.Writer, results []metrics.Result, key, format string) error {
	if len(results) == 0 {
		return aggregate.ErrEmptyInput
	}
	values := make(plotter.Values, 0, len(results))
	names := make([]string, 0, len(results))
	for _, r := range results {
		s, err := aggregate.AsScalar(r)
		if err != nil {
			return err
		}
		v, ok := s.Value(key)
		if !ok {
			return fmt.Errorf("%s has no metric %q: %w", r.Origin().Label(), key, aggregate.ErrKeyMismatch)
		}
		values = append(values, v)
		names = append(names, r.Origin().Label())
	}

	var can vg.CanvasWriterTo
	switch format {
	case "png":
		can = vgimg.PngCanvas{Canvas: vgimg.NewWith(vgimg.UseWH(chartWidth, chartHeight),
			vgimg.UseDPI(chartDPI), vgimg.UseBackgroundColor(color.White))}
	case "svg":
		can = vgsvg.New(chartWidth, chartHeight)
	default:
		return fmt.Errorf("unknown chart format %q (want png or svg)", format)
	}

	pl := plot.New()
	pl.Title.Text = metrics.Label(key)
	pl.Y.Label.Text = metrics.Label(key)

	grid := plotter.NewGrid()
	grid.Vertical.Color = nil
	pl.Add(grid)

	bars, err := plotter.NewBarChart(values, vg.Points(20))
	if err != nil {
		return err
	}
	bars.LineStyle.Width = vg.Length(0)
	bars.Color = color.RGBA{R: 66, G: 133, B: 244, A: 255}
	pl.Add(bars)
	pl.NominalX(names...)

	pl.Draw(draw.New(can))
	_, err = can.WriteTo(w)
	return err
}
