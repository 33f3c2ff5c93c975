// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dataset

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ParallelismColumn names the profile column holding the burdened
// parallelism (work divided by burdened span) of each row.
const ParallelismColumn = "burdened_parallelism"

// A Schema locates the columns of a dataset header.
type Schema struct {
	// Parallelism is the index of ParallelismColumn.
	Parallelism int

	// Bench lists the benchmark columns in header order. Worker
	// counts are strictly increasing.
	Bench []BenchColumn
}

// A BenchColumn is one "<P>c <metric>" column.
type BenchColumn struct {
	Index   int    // column index in the header
	Workers int    // P
	Metric  string // for example, "time (seconds)"
}

var benchColRE = regexp.MustCompile(`^(\d+)c(?:\s+(.*))?$`)

// BenchHeader returns the header cell for a benchmark column.
func BenchHeader(workers int, metric string) string {
	return strings.TrimSpace(fmt.Sprintf("%dc %s", workers, strings.TrimSpace(metric)))
}

func parseBenchHeader(cell string) (workers int, metric string, ok bool) {
	m := benchColRE.FindStringSubmatch(strings.TrimSpace(cell))
	if m == nil {
		return 0, "", false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n <= 0 {
		return 0, "", false
	}
	return n, m[2], true
}

// ParseSchema checks a dataset header and locates its columns. The
// header must contain ParallelismColumn, and every benchmark column
// must come after the profile columns with strictly increasing worker
// counts.
func ParseSchema(header []string) (*Schema, error) {
	s := &Schema{Parallelism: -1}
	for i, cell := range header {
		if strings.TrimSpace(cell) == ParallelismColumn {
			if s.Parallelism >= 0 {
				return nil, &ParseError{"", 1, fmt.Sprintf("duplicate %s column", ParallelismColumn)}
			}
			s.Parallelism = i
			continue
		}
		workers, metric, ok := parseBenchHeader(cell)
		if !ok {
			if len(s.Bench) > 0 {
				return nil, &ParseError{"", 1, fmt.Sprintf("column %d %q follows benchmark columns", i+1, cell)}
			}
			continue
		}
		if n := len(s.Bench); n > 0 && s.Bench[n-1].Workers >= workers {
			return nil, &ParseError{"", 1, fmt.Sprintf("column %d %q: worker counts must increase", i+1, cell)}
		}
		s.Bench = append(s.Bench, BenchColumn{Index: i, Workers: workers, Metric: metric})
	}
	if s.Parallelism < 0 {
		return nil, &ParseError{"", 1, fmt.Sprintf("missing %s column", ParallelismColumn)}
	}
	if len(s.Bench) > 0 && s.Parallelism > s.Bench[0].Index {
		return nil, &ParseError{"", 1, fmt.Sprintf("%s column follows benchmark columns", ParallelismColumn)}
	}
	return s, nil
}

// MaxWorkers returns the largest worker count with a benchmark column,
// which is encoded in the trailing header cell. It returns 0 if no
// benchmark has been merged.
func (s *Schema) MaxWorkers() int {
	if len(s.Bench) == 0 {
		return 0
	}
	return s.Bench[len(s.Bench)-1].Workers
}

// MinWorkers returns the smallest worker count with a benchmark
// column, or 0 if there is none.
func (s *Schema) MinWorkers() int {
	if len(s.Bench) == 0 {
		return 0
	}
	return s.Bench[0].Workers
}

// Column returns the benchmark column for the given worker count.
func (s *Schema) Column(workers int) (BenchColumn, bool) {
	for _, c := range s.Bench {
		if c.Workers == workers {
			return c, true
		}
	}
	return BenchColumn{}, false
}

// Workers returns the worker counts that have a benchmark column.
func (s *Schema) Workers() []int {
	ws := make([]int, len(s.Bench))
	for i, c := range s.Bench {
		ws[i] = c.Workers
	}
	return ws
}
