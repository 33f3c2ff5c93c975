// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package runner executes Cilkscale-instrumented programs.
//
// An Executor runs a benchmark binary pinned to the first P physical
// cores of a topology.Ordering, with CILK_NWORKERS=P, and collects the
// measurements the binary writes to the file named by CILKSCALE_OUT.
// A Sweeper drives the Executor over a set of worker counts, in
// increasing order and one run at a time, and merges each run into a
// dataset.
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/aclements/go-moremath/stats"

	"github.com/cilkscale/scalebench/dataset"
	"github.com/cilkscale/scalebench/topology"
)

// Environment variables understood by the Cilkscale runtime tools.
const (
	EnvWorkers = "CILK_NWORKERS"
	EnvOutput  = "CILKSCALE_OUT"
)

// DefaultSettle is the default delay before each benchmark run.
const DefaultSettle = 100 * time.Millisecond

// A Command is an external program to run.
type Command struct {
	Path string
	Args []string

	// Env holds additional "key=value" environment entries. They
	// are added to the environment of the current process.
	Env []string

	// Dir is the working directory. If empty, the current
	// directory is used.
	Dir string
}

func (c Command) String() string {
	return strings.Join(append([]string{c.Path}, c.Args...), " ")
}

func (c Command) cmd(env ...string) *exec.Cmd {
	cmd := exec.Command(c.Path, c.Args...)
	cmd.Dir = c.Dir
	cmd.Env = append(append(os.Environ(), c.Env...), env...)
	return cmd
}

// A RunError records a benchmark run that exited unsuccessfully or
// whose output could not be read.
type RunError struct {
	Workers int
	Err     error
}

func (e *RunError) Error() string {
	return fmt.Sprintf("benchmark on %d workers: %v", e.Workers, e.Err)
}

func (e *RunError) Unwrap() error {
	return e.Err
}

// interrupted reports whether the benchmark was killed by SIGINT or
// SIGTERM.
func (e *RunError) interrupted() bool {
	var ee *exec.ExitError
	if !errors.As(e.Err, &ee) {
		return false
	}
	ws, ok := ee.Sys().(syscall.WaitStatus)
	return ok && ws.Signaled() && (ws.Signal() == syscall.SIGINT || ws.Signal() == syscall.SIGTERM)
}

// An Executor runs a benchmark on a given number of physical cores.
type Executor struct {
	// Ordering is the core order that runs are pinned to. A run on
	// P workers uses the CPUs of Ordering[:P].
	Ordering topology.Ordering

	// Settle is the delay before each run, letting the resources
	// of the previous run be released.
	Settle time.Duration

	// Repeat is the number of times each run is executed. The
	// result holds the median of each measurement. Values below 1
	// mean 1.
	Repeat int

	// Stdout and Stderr, if non-nil, receive a copy of the
	// benchmark's output.
	Stdout, Stderr io.Writer

	// Logf, if non-nil, is called before each run.
	Logf func(format string, args ...interface{})
}

// Run executes cmd on p workers and returns its measurements. The
// benchmark writes its output to the scratch file a.Path(p).
//
// Failures of the benchmark itself are returned as *RunError. If ctx
// is done during the settle delay, Run returns ctx.Err() without
// starting the benchmark. A started benchmark is never interrupted.
func (e *Executor) Run(ctx context.Context, a *Arena, p int, cmd Command) (*dataset.RunResult, error) {
	if p < 1 || p > len(e.Ordering) {
		return nil, &RunError{p, fmt.Errorf("worker count out of range [1, %d]", len(e.Ordering))}
	}
	n := e.Repeat
	if n < 1 {
		n = 1
	}

	var runs []*dataset.RunResult
	for i := 0; i < n; i++ {
		if err := sleep(ctx, e.Settle); err != nil {
			return nil, err
		}
		res, err := e.runOnce(a, p, cmd)
		if err != nil {
			return nil, err
		}
		runs = append(runs, res)
	}
	return median(runs)
}

func (e *Executor) runOnce(a *Arena, p int, cmd Command) (*dataset.RunResult, error) {
	cpus := e.Ordering.Threads(p)
	out := a.Path(p)
	if e.Logf != nil {
		e.Logf("%s=%d %s=%s [cpus %s] %s", EnvWorkers, p, EnvOutput, out, joinInts(cpus), cmd)
	}

	var stdout, stderr bytes.Buffer
	c := cmd.cmd(EnvWorkers+"="+strconv.Itoa(p), EnvOutput+"="+out)
	c.Stdout = tee(&stdout, e.Stdout)
	c.Stderr = tee(&stderr, e.Stderr)
	if err := startPinned(c, cpus); err != nil {
		a.Release(p)
		return nil, &RunError{p, err}
	}
	if err := c.Wait(); err != nil {
		a.Release(p)
		if msg := lastLine(stderr.String()); msg != "" {
			err = fmt.Errorf("%w: %s", err, msg)
		}
		return nil, &RunError{p, err}
	}
	res, err := a.Collect(p)
	if err != nil {
		return nil, &RunError{p, err}
	}
	return res, nil
}

// median combines repeated runs into one result holding the median
// of each row.
func median(runs []*dataset.RunResult) (*dataset.RunResult, error) {
	first := runs[0]
	if len(runs) == 1 {
		return first, nil
	}
	res := &dataset.RunResult{
		Workers: first.Workers,
		Metric:  first.Metric,
		Tags:    first.Tags,
		Values:  make([]float64, len(first.Values)),
	}
	xs := make([]float64, len(runs))
	for i := range first.Values {
		for j, r := range runs {
			if len(r.Values) != len(first.Values) {
				return nil, &RunError{first.Workers, fmt.Errorf("repetition %d reported %d rows, want %d", j+1, len(r.Values), len(first.Values))}
			}
			xs[j] = r.Values[i]
		}
		res.Values[i] = stats.Sample{Xs: xs}.Quantile(0.5)
	}
	return res, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func tee(buf *bytes.Buffer, w io.Writer) io.Writer {
	if w == nil {
		return buf
	}
	return io.MultiWriter(buf, w)
}

func lastLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	}
	return s
}

func joinInts(xs []int) string {
	s := make([]string, len(xs))
	for i, x := range xs {
		s[i] = strconv.Itoa(x)
	}
	return strings.Join(s, ",")
}
