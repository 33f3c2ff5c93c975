// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// A RunResult is the output of one benchmark run on a fixed number of
// workers: a metric name and one measurement per profiled region, in
// the same order as the rows of the profile.
type RunResult struct {
	Workers int
	Metric  string // header of the value column, e.g. "time (seconds)"
	Tags    []string
	Values  []float64
}

// ReadRunResult parses the CSV written by a benchmark binary: a header
// row "tag,<metric>" followed by "tag,value" rows. name is used in
// error messages.
func ReadRunResult(r io.Reader, name string, workers int) (*RunResult, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	records, err := cr.ReadAll()
	if err != nil {
		if pe, ok := err.(*csv.ParseError); ok {
			return nil, &ParseError{name, pe.Line, pe.Err.Error()}
		}
		return nil, err
	}
	if len(records) == 0 {
		return nil, &ParseError{name, 0, "empty benchmark output"}
	}
	if len(records[0]) < 2 {
		return nil, &ParseError{name, 1, "header must have a tag and a metric column"}
	}
	res := &RunResult{Workers: workers, Metric: strings.TrimSpace(records[0][1])}
	for i, rec := range records[1:] {
		if len(rec) < 2 {
			return nil, &ParseError{name, i + 2, "missing value column"}
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(rec[1]), 64)
		if err != nil {
			return nil, &ParseError{name, i + 2, fmt.Sprintf("bad value %q", rec[1])}
		}
		res.Tags = append(res.Tags, rec[0])
		res.Values = append(res.Values, v)
	}
	if len(res.Values) == 0 {
		return nil, &ParseError{name, 0, "no measurements"}
	}
	return res, nil
}

// ReadRunResultFile reads the benchmark output stored at path.
func ReadRunResultFile(path string, workers int) (*RunResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadRunResult(f, path, workers)
}

// Append returns a copy of d widened by one benchmark column holding
// run's measurements. The value for data row i comes from run.Values[i].
// Rows past the end of run.Values get no value, and stay shorter than
// the header.
//
// Runs must be appended in increasing order of worker count.
func (d *Dataset) Append(run *RunResult) (*Dataset, error) {
	s, err := d.Schema()
	if err != nil {
		return nil, err
	}
	if run.Workers <= 0 {
		return nil, fmt.Errorf("run has invalid worker count %d", run.Workers)
	}
	if last := s.MaxWorkers(); run.Workers <= last {
		return nil, fmt.Errorf("run on %d workers merged after run on %d workers", run.Workers, last)
	}
	if len(run.Values) > len(d.Rows) {
		return nil, &ParseError{"", 0, fmt.Sprintf("%d-worker run has %d rows, profile has %d", run.Workers, len(run.Values), len(d.Rows))}
	}
	nd := d.clone()
	nd.Header = append(nd.Header, BenchHeader(run.Workers, run.Metric))
	width := len(d.Header)
	for i, v := range run.Values {
		// Rows left short by an earlier partial run are padded with
		// empty cells so that the value lands in its own column.
		for len(nd.Rows[i]) < width {
			nd.Rows[i] = append(nd.Rows[i], "")
		}
		nd.Rows[i] = append(nd.Rows[i], strconv.FormatFloat(v, 'g', -1, 64))
	}
	return nd, nil
}

// Aggregate checks base's schema and appends runs in order. It is the
// batch form of repeated calls to Append.
func Aggregate(base *Dataset, runs ...*RunResult) (*Dataset, error) {
	if _, err := base.Schema(); err != nil {
		return nil, err
	}
	d := base
	for _, run := range runs {
		var err error
		if d, err = d.Append(run); err != nil {
			return nil, err
		}
	}
	if d == base {
		d = base.clone()
	}
	return d, nil
}
