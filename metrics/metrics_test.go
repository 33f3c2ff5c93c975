// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/cilkscale/scalebench/dataset"
)

func TestRecorder(t *testing.T) {
	d, err := dataset.Read(strings.NewReader("tag,burdened_parallelism\nmatmul,4\n,3.5\n"), "out.csv")
	if err != nil {
		t.Fatal(err)
	}
	r := New()
	if err := r.Profile(d); err != nil {
		t.Fatal(err)
	}
	r.Run(&dataset.RunResult{Workers: 2, Metric: "time (seconds)", Tags: []string{"matmul", ""}, Values: []float64{5.5, 5.9}})
	r.Failed()
	r.Interrupted(true)

	const want = `
# HELP cilkscale_burdened_parallelism Burdened parallelism reported by the profile
# TYPE cilkscale_burdened_parallelism gauge
cilkscale_burdened_parallelism{row="1",tag="matmul"} 4
cilkscale_burdened_parallelism{row="2",tag=""} 3.5
# HELP cilkscale_run_seconds Measured benchmark time by worker count
# TYPE cilkscale_run_seconds gauge
cilkscale_run_seconds{row="1",tag="matmul",workers="2"} 5.5
cilkscale_run_seconds{row="2",tag="",workers="2"} 5.9
# HELP cilkscale_runs_total Benchmark runs by outcome
# TYPE cilkscale_runs_total counter
cilkscale_runs_total{status="completed"} 1
cilkscale_runs_total{status="failed"} 1
# HELP cilkscale_sweep_interrupted 1 if the sweep was stopped before all worker counts ran
# TYPE cilkscale_sweep_interrupted gauge
cilkscale_sweep_interrupted 1
`
	if err := testutil.GatherAndCompare(r.Registry(), strings.NewReader(want)); err != nil {
		t.Error(err)
	}
}

func TestProfileBadSchema(t *testing.T) {
	d := &dataset.Dataset{Header: []string{"tag", "work"}}
	if err := New().Profile(d); err == nil {
		t.Error("Profile without parallelism column succeeded")
	}
}

func TestWriteTextfile(t *testing.T) {
	r := New()
	r.Failed()
	path := filepath.Join(t.TempDir(), "cilkscale.prom")
	if err := r.WriteTextfile(path); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `cilkscale_runs_total{status="failed"} 1`) {
		t.Errorf("textfile missing failed run count:\n%s", data)
	}
	if got := testutil.ToFloat64(r.runs.WithLabelValues("completed")); got != 0 {
		t.Errorf("completed runs = %v, want 0", got)
	}
}
