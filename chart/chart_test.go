// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package chart

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/cilkscale/scalebench/bound"
	"github.com/cilkscale/scalebench/dataset"
	"github.com/cilkscale/scalebench/topology"
)

const sweepCSV = `tag,work (seconds),span (seconds),parallelism,burdened_span (seconds),burdened_parallelism,1c time (seconds),2c time (seconds),4c time (seconds)
matmul,40,4,10,10,4,10,5.5,3.2
,42.5,5,8.5,11,0,10.7,5.9,3.4
`

func readSweep(t *testing.T) *dataset.Dataset {
	t.Helper()
	d, err := dataset.Read(strings.NewReader(sweepCSV), "out.csv")
	if err != nil {
		t.Fatal(err)
	}
	return d
}

// twoSockets is a 4-core machine with two cores per socket.
var twoSockets = topology.Ordering{{ID: 0, Socket: 0}, {ID: 1, Socket: 0}, {ID: 2, Socket: 1}, {ID: 3, Socket: 1}}

func TestBuild(t *testing.T) {
	plots, err := Build(readSweep(t), &Options{Ordering: twoSockets})
	if err != nil {
		t.Fatal(err)
	}
	var titles []string
	for _, row := range plots {
		for _, p := range row {
			titles = append(titles, p.Title.Text)
		}
	}
	want := []string{"matmul execution time", "matmul speedup", "(No tag) execution time", "(No tag) speedup"}
	if diff := cmp.Diff(want, titles); diff != "" {
		t.Errorf("titles mismatch (-want +got):\n%s", diff)
	}

	rt, sp := plots[0][0], plots[0][1]
	if rt.X.Min != 0 || rt.X.Max != 4 {
		t.Errorf("runtime x range = [%v, %v], want [0, 4]", rt.X.Min, rt.X.Max)
	}
	if sp.Y.Min != 0 || sp.Y.Max != 4 {
		t.Errorf("speedup y range = [%v, %v], want [0, 4]", sp.Y.Min, sp.Y.Max)
	}
}

func TestBuildRows(t *testing.T) {
	plots, err := Build(readSweep(t), &Options{Rows: []int{1}})
	if err != nil {
		t.Fatal(err)
	}
	if len(plots) != 1 || plots[0][0].Title.Text != "(No tag) execution time" {
		t.Fatalf("got %d rows of plots, want only the untagged row", len(plots))
	}
	// Without an ordering the x range ends at the largest benchmark.
	if got := plots[0][0].X.Max; got != 4 {
		t.Errorf("x max = %v, want 4", got)
	}

	if _, err := Build(readSweep(t), &Options{Rows: []int{2}}); err == nil {
		t.Error("Build with out-of-range row succeeded")
	}
}

func TestPointsSkipsUndefined(t *testing.T) {
	d := readSweep(t)
	s, err := bound.NewSeries(d, 1, &bound.Options{MaxWorkers: 4})
	if err != nil {
		t.Fatal(err)
	}
	// Zero parallelism leaves the span bound undefined everywhere.
	if xys := points(s.Points, func(pt bound.Point) float64 { return pt.SpanRuntime }); len(xys) != 0 {
		t.Errorf("span bound has %d points, want 0", len(xys))
	}
	// 3 workers were never measured.
	xys := points(s.Points, func(pt bound.Point) float64 { return pt.Observed })
	var xs []float64
	for _, xy := range xys {
		xs = append(xs, xy.X)
	}
	if diff := cmp.Diff([]float64{1, 2, 4}, xs); diff != "" {
		t.Errorf("observed x mismatch (-want +got):\n%s", diff)
	}
}

func TestWrite(t *testing.T) {
	plots, err := Build(readSweep(t), &Options{Ordering: twoSockets})
	if err != nil {
		t.Fatal(err)
	}
	for format, magic := range map[string]string{
		"png": "\x89PNG",
		"pdf": "%PDF",
		"svg": "<?xml",
	} {
		var buf bytes.Buffer
		if err := Write(&buf, format, plots); err != nil {
			t.Errorf("Write %s: %v", format, err)
			continue
		}
		if !bytes.HasPrefix(buf.Bytes(), []byte(magic)) {
			t.Errorf("%s output starts with %q", format, buf.Bytes()[:min(8, buf.Len())])
		}
	}
	if err := Write(new(bytes.Buffer), "gif", plots); err == nil {
		t.Error("Write gif succeeded")
	}
	if err := Write(new(bytes.Buffer), "png", nil); err == nil {
		t.Error("Write with no plots succeeded")
	}
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plot.png")
	if err := WriteFile(path, readSweep(t), nil); err != nil {
		t.Fatal(err)
	}
	if fi, err := os.Stat(path); err != nil || fi.Size() == 0 {
		t.Errorf("plot not written: %v", err)
	}
}

func TestFormat(t *testing.T) {
	for path, want := range map[string]string{
		"plot.pdf":     "pdf",
		"out/plot.PNG": "png",
		"x.svg":        "svg",
	} {
		if got, err := Format(path); err != nil || got != want {
			t.Errorf("Format(%q) = %q, %v; want %q", path, got, err, want)
		}
	}
	for _, path := range []string{"plot", "plot.jpg"} {
		if _, err := Format(path); err == nil {
			t.Errorf("Format(%q) succeeded", path)
		}
	}
}

func TestSelectRows(t *testing.T) {
	for _, test := range []struct {
		sel  string
		n    int
		want []int
	}{
		{"all", 3, []int{0, 1, 2}},
		{"1", 3, []int{0}},
		{"3,1", 3, []int{0, 2}},
		{"0", 3, []int{2}},   // out of range selects the last row
		{"9,3", 3, []int{2}}, // and is deduplicated
		{"1", 0, nil},
	} {
		got, err := SelectRows(test.sel, test.n)
		if err != nil {
			t.Errorf("SelectRows(%q, %d): %v", test.sel, test.n, err)
			continue
		}
		if diff := cmp.Diff(test.want, got); diff != "" {
			t.Errorf("SelectRows(%q, %d) mismatch (-want +got):\n%s", test.sel, test.n, diff)
		}
	}
	for _, sel := range []string{"x", "1,y", ","} {
		if _, err := SelectRows(sel, 3); err == nil {
			t.Errorf("SelectRows(%q) succeeded", sel)
		}
	}
}
