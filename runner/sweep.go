// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package runner

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/cilkscale/scalebench/dataset"
)

// Interrupted reports a sweep that was stopped before all requested
// worker counts were run. It is a normal outcome, not a failure: the
// worker counts in Completed were measured and merged.
type Interrupted struct {
	Completed []int
	Requested []int
}

func (e *Interrupted) Error() string {
	last := 0
	if n := len(e.Completed); n > 0 {
		last = e.Completed[n-1]
	}
	return fmt.Sprintf("benchmarking stopped early at %d cpus (%d of %d worker counts completed)", last, len(e.Completed), len(e.Requested))
}

// A Result is the outcome of a sweep.
type Result struct {
	// Dataset is the input dataset widened by one column per
	// completed worker count.
	Dataset *dataset.Dataset

	Requested []int
	Completed []int

	// Failed lists the runs that failed. Their worker counts have
	// no column in Dataset.
	Failed []*RunError

	// Interrupted is non-nil if the sweep was cancelled.
	Interrupted *Interrupted
}

// A Sweeper runs a benchmark across a set of worker counts.
type Sweeper struct {
	Executor *Executor

	// ScratchDir is where the per-run output files are created. If
	// empty, the default temporary directory is used.
	ScratchDir string

	// Logf, if non-nil, receives progress messages.
	Logf func(format string, args ...interface{})

	// OnRun, if non-nil, is called with each run as it is merged.
	OnRun func(run *dataset.RunResult)
}

// Sweep runs cmd on every worker count in counts, in increasing
// order, and merges each run into base. If counts is nil, every count
// from 1 to the number of cores is run.
//
// Runs never overlap: each benchmark exits before the next starts.
// Cancelling ctx stops the sweep before the next run. A run that was
// in progress when ctx was cancelled is discarded, since the interrupt
// may have disturbed it; the runs completed before it are kept and
// the Result reports Interrupted. A benchmark killed by SIGINT or
// SIGTERM stops the sweep the same way.
//
// A failed run is recorded in Result.Failed and the sweep continues.
// Sweep returns an error for invalid counts, or when a run's output
// cannot be merged into the dataset; in the latter case the Result
// holds the dataset as merged so far.
func (s *Sweeper) Sweep(ctx context.Context, base *dataset.Dataset, counts []int, cmd Command) (*Result, error) {
	ncpu := len(s.Executor.Ordering)
	requested, err := normalizeCounts(counts, ncpu)
	if err != nil {
		return nil, err
	}
	if _, err := base.Schema(); err != nil {
		return nil, err
	}

	arena, err := NewArena(s.ScratchDir)
	if err != nil {
		return nil, err
	}
	defer arena.Close()

	res := &Result{Dataset: base, Requested: requested}
	want := make(map[int]bool)
	for _, p := range requested {
		want[p] = true
	}
	s.logf("generating scalability data for %d cpus", ncpu)
	stopped := false
	for p := 1; p <= ncpu; p++ {
		if !want[p] {
			continue
		}
		if ctx.Err() != nil {
			break
		}
		run, err := s.Executor.Run(ctx, arena, p, cmd)
		if ctx.Err() != nil {
			break
		}
		if err != nil {
			var rerr *RunError
			if !errors.As(err, &rerr) {
				return res, err
			}
			if rerr.interrupted() {
				// The interrupt reached the benchmark before ctx.
				stopped = true
				break
			}
			s.logf("%v", rerr)
			res.Failed = append(res.Failed, rerr)
			continue
		}
		d, err := res.Dataset.Append(run)
		if err != nil {
			return res, err
		}
		res.Dataset = d
		res.Completed = append(res.Completed, p)
		if s.OnRun != nil {
			s.OnRun(run)
		}
	}
	if stopped || ctx.Err() != nil {
		res.Interrupted = &Interrupted{Completed: res.Completed, Requested: requested}
		s.logf("%v", res.Interrupted)
	}
	return res, nil
}

func (s *Sweeper) logf(format string, args ...interface{}) {
	if s.Logf != nil {
		s.Logf(format, args...)
	}
}

// normalizeCounts sorts and deduplicates counts and checks that each
// is in [1, ncpu].
func normalizeCounts(counts []int, ncpu int) ([]int, error) {
	if counts == nil {
		all := make([]int, ncpu)
		for i := range all {
			all[i] = i + 1
		}
		return all, nil
	}
	seen := make(map[int]bool)
	var out []int
	for _, p := range counts {
		if p < 1 || p > ncpu {
			return nil, fmt.Errorf("cpu count %d out of range [1, %d]", p, ncpu)
		}
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return nil, errors.New("no cpu counts requested")
	}
	sort.Ints(out)
	return out, nil
}

// CheckCounts reports an error if any of counts is outside [1, ncpu],
// or if counts is empty but non-nil.
func CheckCounts(counts []int, ncpu int) error {
	_, err := normalizeCounts(counts, ncpu)
	return err
}

// maxCount bounds the worker counts ParseCounts accepts.
const maxCount = 1 << 16

// ParseCounts parses a comma-separated list of worker counts, such as
// "1,2,4,8". Ranges of the form "lo-hi" are also accepted.
func ParseCounts(s string) ([]int, error) {
	var counts []int
	for _, f := range strings.Split(s, ",") {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		lo, hi, isRange := strings.Cut(f, "-")
		a, err := strconv.Atoi(lo)
		if err != nil {
			return nil, fmt.Errorf("bad cpu count %q", f)
		}
		b := a
		if isRange {
			if b, err = strconv.Atoi(hi); err != nil || b < a {
				return nil, fmt.Errorf("bad cpu count range %q", f)
			}
		}
		if b > maxCount {
			return nil, fmt.Errorf("cpu count %q above %d", f, maxCount)
		}
		for p := a; p <= b; p++ {
			counts = append(counts, p)
		}
	}
	if len(counts) == 0 {
		return nil, errors.New("empty cpu count list")
	}
	return counts, nil
}
