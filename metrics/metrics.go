// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package metrics records the results of a sweep as Prometheus
// metrics, for collection by node_exporter's textfile collector.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/cilkscale/scalebench/dataset"
)

// Recorder holds the metrics of one sweep.
type Recorder struct {
	reg *prometheus.Registry

	runSeconds  *prometheus.GaugeVec
	parallelism *prometheus.GaugeVec
	runs        *prometheus.CounterVec
	interrupted prometheus.Gauge
}

// New returns a Recorder with its own registry.
func New() *Recorder {
	r := &Recorder{
		reg: prometheus.NewRegistry(),
		runSeconds: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "cilkscale_run_seconds",
				Help: "Measured benchmark time by worker count",
			},
			[]string{"row", "tag", "workers"},
		),
		parallelism: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "cilkscale_burdened_parallelism",
				Help: "Burdened parallelism reported by the profile",
			},
			[]string{"row", "tag"},
		),
		runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cilkscale_runs_total",
				Help: "Benchmark runs by outcome",
			},
			[]string{"status"},
		),
		interrupted: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "cilkscale_sweep_interrupted",
			Help: "1 if the sweep was stopped before all worker counts ran",
		}),
	}
	r.reg.MustRegister(r.runSeconds, r.parallelism, r.runs, r.interrupted)
	// Report both outcomes even when one never happens.
	r.runs.WithLabelValues("completed")
	r.runs.WithLabelValues("failed")
	return r
}

// Registry returns the registry holding r's metrics.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.reg
}

// Profile records the burdened parallelism of every row of d. Rows
// without a numeric parallelism are skipped.
func (r *Recorder) Profile(d *dataset.Dataset) error {
	s, err := d.Schema()
	if err != nil {
		return err
	}
	for row := range d.Rows {
		v, ok, err := d.Float(row, s.Parallelism)
		if err != nil || !ok {
			continue
		}
		r.parallelism.WithLabelValues(strconv.Itoa(row+1), d.Tag(row)).Set(v)
	}
	return nil
}

// Run records a completed benchmark run.
func (r *Recorder) Run(run *dataset.RunResult) {
	workers := strconv.Itoa(run.Workers)
	for i, v := range run.Values {
		r.runSeconds.WithLabelValues(strconv.Itoa(i+1), run.Tags[i], workers).Set(v)
	}
	r.runs.WithLabelValues("completed").Inc()
}

// Failed records a failed benchmark run.
func (r *Recorder) Failed() {
	r.runs.WithLabelValues("failed").Inc()
}

// Interrupted records whether the sweep was interrupted.
func (r *Recorder) Interrupted(v bool) {
	if v {
		r.interrupted.Set(1)
	} else {
		r.interrupted.Set(0)
	}
}

// WriteTextfile writes the metrics to path in the text exposition
// format.
func (r *Recorder) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.reg)
}
