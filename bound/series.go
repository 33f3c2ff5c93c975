// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bound

import (
	"fmt"

	"github.com/cilkscale/scalebench/dataset"
)

// A Point holds the observed and bounding values of one row of a
// dataset at one worker count. Any field may be Undefined.
type Point struct {
	Workers int

	// Observed is the measured runtime, or Undefined if this worker
	// count was not measured.
	Observed        float64
	ObservedSpeedup float64

	LinearRuntime   float64
	SpanRuntime     float64
	BurdenedRuntime float64

	LinearSpeedup   float64
	SpanSpeedup     float64
	BurdenedSpeedup float64
}

// A Series is the derived scalability data of one dataset row for
// worker counts 1 through len(Points).
type Series struct {
	Tag string

	// Parallelism is the burdened parallelism of the row.
	Parallelism float64

	// T1 is the single-worker runtime used for all bounds.
	T1 float64

	// Estimated is set when no 1-worker run exists and T1 was
	// extrapolated from the smallest measured worker count.
	Estimated bool

	Points []Point
}

// Options configures NewSeries.
type Options struct {
	// MaxWorkers is the largest worker count in the series. If
	// zero, the largest benchmarked worker count of the dataset is
	// used.
	MaxWorkers int

	// Warn, if non-nil, is called with warnings about the series,
	// such as an extrapolated single-worker runtime.
	Warn func(format string, args ...interface{})
}

// NewSeries derives the scalability series of data row row of d.
//
// If d has no 1-worker column, T1 is approximated by multiplying the
// runtime at the smallest measured worker count m by m. The Series is
// marked Estimated and a warning is reported. If d has no benchmark
// columns at all, T1 and every bound that depends on it are Undefined.
func NewSeries(d *dataset.Dataset, row int, opts *Options) (*Series, error) {
	if opts == nil {
		opts = new(Options)
	}
	s, err := d.Schema()
	if err != nil {
		return nil, err
	}
	if row < 0 || row >= len(d.Rows) {
		return nil, fmt.Errorf("row %d out of range [0, %d)", row, len(d.Rows))
	}

	ser := &Series{Tag: d.Tag(row), T1: Undefined, Parallelism: Undefined}
	if par, ok, err := d.Float(row, s.Parallelism); err != nil {
		return nil, err
	} else if ok {
		ser.Parallelism = par
	}

	if len(s.Bench) > 0 {
		first := s.Bench[0]
		v, ok, err := d.Float(row, first.Index)
		if err != nil {
			return nil, err
		}
		if ok {
			ser.T1 = v * float64(first.Workers)
			if first.Workers != 1 {
				ser.Estimated = true
				if opts.Warn != nil {
					opts.Warn("estimating 1-core running time from %d-core running time", first.Workers)
				}
			}
		}
	}

	n := opts.MaxWorkers
	if n == 0 {
		n = s.MaxWorkers()
	}
	for p := 1; p <= n; p++ {
		pt := Point{
			Workers:         p,
			Observed:        Undefined,
			ObservedSpeedup: Undefined,
			LinearRuntime:   LinearRuntime(ser.T1, p),
			SpanRuntime:     SpanRuntime(ser.T1, ser.Parallelism),
			BurdenedRuntime: BurdenedRuntime(ser.T1, ser.Parallelism, p),
			LinearSpeedup:   LinearSpeedup(p),
			SpanSpeedup:     SpanSpeedup(ser.Parallelism),
			BurdenedSpeedup: BurdenedSpeedup(ser.T1, ser.Parallelism, p),
		}
		if col, ok := s.Column(p); ok {
			v, ok, err := d.Float(row, col.Index)
			if err != nil {
				return nil, err
			}
			if ok {
				pt.Observed = v
				pt.ObservedSpeedup = div(ser.T1, v)
			}
		}
		ser.Points = append(ser.Points, pt)
	}
	return ser, nil
}

// At returns the point for p workers.
func (s *Series) At(p int) (Point, bool) {
	if p < 1 || p > len(s.Points) {
		return Point{}, false
	}
	return s.Points[p-1], true
}
