// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package chart draws scalability plots of a dataset.
//
// Each plotted row of the dataset gets two panels side by side: the
// runtime at each worker count and the speedup over one worker. Both
// panels show the observed values together with the perfect-linear,
// burdened-dag and span bounds computed by package bound.
package chart

import (
	"errors"
	"fmt"
	"image/color"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
	"gonum.org/v1/plot/vg/vgpdf"
	"gonum.org/v1/plot/vg/vgsvg"

	"github.com/cilkscale/scalebench/bound"
	"github.com/cilkscale/scalebench/dataset"
	"github.com/cilkscale/scalebench/topology"
)

// Options configures a chart.
type Options struct {
	// Rows are the indexes of the data rows to plot, in order. If
	// nil, every row is plotted.
	Rows []int

	// Ordering is the core ordering the sweep ran on. It sets the
	// x range of every panel and the socket boundaries. If nil, the
	// x range is the largest benchmarked worker count and no socket
	// boundaries are drawn.
	Ordering topology.Ordering

	// Warn, if non-nil, receives warnings about the plotted data.
	Warn func(format string, args ...interface{})
}

const dpi = 100

var (
	observedColor = color.NRGBA{0xBF, 0, 0xBF, 0xFF}
	linearColor   = color.NRGBA{0, 0x80, 0, 0xFF}
	burdenedColor = color.NRGBA{0, 0xBF, 0xBF, 0xFF}
	spanColor     = color.NRGBA{0xBF, 0xBF, 0, 0xFF}
	socketColor   = color.Gray{0x80}
	panelColor    = color.Gray{0xF7}

	dotted = []vg.Length{vg.Points(1), vg.Points(2)}
)

// Build returns the panels for d: one row of two plots, runtime and
// speedup, per plotted dataset row.
func Build(d *dataset.Dataset, opts *Options) ([][]*plot.Plot, error) {
	if opts == nil {
		opts = new(Options)
	}
	rows := opts.Rows
	if rows == nil {
		rows = make([]int, len(d.Rows))
		for i := range rows {
			rows[i] = i
		}
	}

	var out [][]*plot.Plot
	for _, row := range rows {
		s, err := bound.NewSeries(d, row, &bound.Options{MaxWorkers: len(opts.Ordering), Warn: opts.Warn})
		if err != nil {
			return nil, err
		}
		if len(s.Points) == 0 {
			continue
		}
		rt, err := runtimePanel(s, opts.Ordering)
		if err != nil {
			return nil, err
		}
		sp, err := speedupPanel(s, opts.Ordering)
		if err != nil {
			return nil, err
		}
		out = append(out, []*plot.Plot{rt, sp})
	}
	return out, nil
}

func title(s *bound.Series) string {
	if s.Tag == "" {
		return "(No tag)"
	}
	return s.Tag
}

func newPanel(s *bound.Series, xlabel, ylabel, what string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title(s) + " " + what
	p.X.Label.Text = xlabel
	p.Y.Label.Text = ylabel
	p.BackgroundColor = panelColor

	grid := plotter.NewGrid()
	grid.Vertical.Dashes = dotted
	grid.Horizontal.Dashes = dotted
	p.Add(grid)
	return p
}

func runtimePanel(s *bound.Series, o topology.Ordering) (*plot.Plot, error) {
	p := newPanel(s, "Number of workers", "Runtime (s)", "execution time")
	first := s.Points[0]
	err := addSeries(p, s.Points,
		curve{"Observed", observedColor, true, func(pt bound.Point) float64 { return pt.Observed }},
		curve{"Perfect linear speedup", linearColor, false, func(pt bound.Point) float64 { return pt.LinearRuntime }},
		curve{"Burdened-dag bound", burdenedColor, false, func(pt bound.Point) float64 { return pt.BurdenedRuntime }},
		curve{fmt.Sprintf("Span bound = %.5f s", first.SpanRuntime), spanColor, false, func(pt bound.Point) float64 { return pt.SpanRuntime }},
	)
	if err != nil {
		return nil, err
	}
	p.Legend.Top = true
	finish(p, s, o)
	return p, nil
}

func speedupPanel(s *bound.Series, o topology.Ordering) (*plot.Plot, error) {
	p := newPanel(s, "Number of workers", "Speedup", "speedup")
	first := s.Points[0]
	err := addSeries(p, s.Points,
		curve{"Observed", observedColor, true, func(pt bound.Point) float64 { return pt.ObservedSpeedup }},
		curve{"Perfect linear speedup", linearColor, false, func(pt bound.Point) float64 { return pt.LinearSpeedup }},
		curve{"Burdened-dag bound", burdenedColor, false, func(pt bound.Point) float64 { return pt.BurdenedSpeedup }},
		curve{fmt.Sprintf("Parallelism = %.3f", first.SpanSpeedup), spanColor, false, func(pt bound.Point) float64 { return pt.SpanSpeedup }},
	)
	if err != nil {
		return nil, err
	}
	p.Legend.Top = true
	p.Legend.Left = true
	finish(p, s, o)
	p.Y.Min, p.Y.Max = 0, p.X.Max
	return p, nil
}

// finish fixes the x range of p and adds the socket boundaries.
func finish(p *plot.Plot, s *bound.Series, o topology.Ordering) {
	n := len(o)
	if n == 0 {
		n = s.Points[len(s.Points)-1].Workers
	}
	if b := o.SocketBoundaries(); len(b) > 0 {
		xs := make([]float64, len(b))
		for i, x := range b {
			xs[i] = float64(x)
		}
		p.Add(&vlines{xs: xs, style: draw.LineStyle{Color: socketColor, Width: vg.Points(1), Dashes: dotted}})
	}
	p.X.Min, p.X.Max = 0, float64(n)
	if p.Y.Min > p.Y.Max {
		// Nothing defined to plot.
		p.Y.Min, p.Y.Max = 0, 1
	}
}

type curve struct {
	label   string
	clr     color.Color
	scatter bool
	y       func(bound.Point) float64
}

func addSeries(p *plot.Plot, pts []bound.Point, curves ...curve) error {
	for _, c := range curves {
		xys := points(pts, c.y)
		if len(xys) == 0 {
			continue
		}
		if c.scatter {
			s, err := plotter.NewScatter(xys)
			if err != nil {
				return err
			}
			s.GlyphStyle.Color = c.clr
			s.GlyphStyle.Shape = draw.CircleGlyph{}
			s.GlyphStyle.Radius = vg.Points(2.5)
			p.Add(s)
			p.Legend.Add(c.label, s)
			continue
		}
		l, err := plotter.NewLine(xys)
		if err != nil {
			return err
		}
		l.Color = c.clr
		l.Width = vg.Points(1.5)
		p.Add(l)
		p.Legend.Add(c.label, l)
	}
	return nil
}

// points returns the defined values of pts. Undefined values are
// left out, leaving a gap in the plot.
func points(pts []bound.Point, y func(bound.Point) float64) plotter.XYs {
	xys := make(plotter.XYs, 0, len(pts))
	for _, pt := range pts {
		v := y(pt)
		if bound.IsUndefined(v) || math.IsInf(v, 0) {
			continue
		}
		xys = append(xys, plotter.XY{X: float64(pt.Workers), Y: v})
	}
	return xys
}

// vlines draws full-height vertical lines.
type vlines struct {
	xs    []float64
	style draw.LineStyle
}

func (v *vlines) Plot(c draw.Canvas, plt *plot.Plot) {
	trX, _ := plt.Transforms(&c)
	for _, x := range v.xs {
		px := trX(x)
		if !c.ContainsX(px) {
			continue
		}
		c.StrokeLine2(v.style, px, c.Min.Y, px, c.Max.Y)
	}
}

// Format returns the output format for path, based on its extension.
func Format(path string) (string, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".pdf", ".png", ".svg":
		return ext[1:], nil
	default:
		return "", fmt.Errorf("%s: unsupported plot format %q (want .pdf, .png or .svg)", path, ext)
	}
}

// Write draws plots in the given format ("pdf", "png" or "svg") to w.
func Write(w io.Writer, format string, plots [][]*plot.Plot) error {
	if len(plots) == 0 {
		return errors.New("no rows to plot")
	}
	width := 12 * vg.Inch
	height := vg.Length(6*len(plots)) * vg.Inch

	var can vg.CanvasWriterTo
	switch format {
	case "pdf":
		can = vgpdf.New(width, height)
	case "svg":
		can = vgsvg.New(width, height)
	case "png":
		can = vgimg.PngCanvas{Canvas: vgimg.NewWith(vgimg.UseWH(width, height),
			vgimg.UseDPI(dpi), vgimg.UseBackgroundColor(color.White))}
	default:
		return fmt.Errorf("unsupported plot format %q", format)
	}

	tiles := draw.Tiles{
		Rows:      len(plots),
		Cols:      2,
		PadX:      vg.Centimeter,
		PadY:      vg.Centimeter,
		PadTop:    vg.Points(5),
		PadBottom: vg.Points(5),
		PadLeft:   vg.Points(5),
		PadRight:  vg.Points(5),
	}
	canvases := plot.Align(plots, tiles, draw.New(can))
	for j := range plots {
		for i := range plots[j] {
			plots[j][i].Draw(canvases[j][i])
		}
	}
	_, err := can.WriteTo(w)
	return err
}

// WriteFile draws the chart of d to path. The format is chosen by the
// extension of path.
func WriteFile(path string, d *dataset.Dataset, opts *Options) error {
	format, err := Format(path)
	if err != nil {
		return err
	}
	plots, err := Build(d, opts)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Write(f, format, plots); err != nil {
		f.Close()
		return fmt.Errorf("%s: %v", path, err)
	}
	return f.Close()
}
