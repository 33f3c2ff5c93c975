// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package topology discovers the physical CPU layout of the machine.
//
// The result of resolution is an Ordering: one representative hardware
// thread per physical core, grouped by socket in ascending order. A
// benchmark that runs on P workers is pinned to the first P entries of
// the Ordering, so P workers never share a physical core and fill one
// socket before spilling onto the next.
package topology

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"sort"
	"strconv"
	"strings"
)

// ErrUnavailable is returned (wrapped) when the CPU topology of the
// machine cannot be queried or parsed.
var ErrUnavailable = errors.New("CPU topology unavailable")

// A Thread is one hardware thread as reported by the operating
// system. Several Threads may share a Core when the processor is
// hyperthreaded.
type Thread struct {
	ID     int // logical CPU number, as accepted by sched_setaffinity
	Core   int
	Socket int
}

// A CPU is one entry of an Ordering: the hardware thread chosen to
// represent a physical core, and the socket it lives on.
type CPU struct {
	ID     int
	Socket int
}

// An Ordering lists one CPU per physical core, sorted by socket, then
// core, then thread ID.
type Ordering []CPU

// Threads returns the logical CPU numbers of the first p entries.
func (o Ordering) Threads(p int) []int {
	if p > len(o) {
		p = len(o)
	}
	ids := make([]int, p)
	for i := range ids {
		ids[i] = o[i].ID
	}
	return ids
}

// SocketBoundaries returns the worker counts at which a run starts
// using a new socket. For a machine with two sockets of 8 cores, this
// is [8]. The first socket never produces a boundary.
func (o Ordering) SocketBoundaries() []int {
	var b []int
	for i := 1; i < len(o); i++ {
		if o[i].Socket != o[i-1].Socket {
			b = append(b, i)
		}
	}
	return b
}

// Order sorts threads by (socket, core, thread ID) and keeps the first
// thread of each physical core.
//
// Cores are identified by their (socket, core) pair, since
// /proc/cpuinfo numbers cores per socket. lscpu numbers cores
// globally, for which the pair is equivalent to the core ID alone.
func Order(threads []Thread) Ordering {
	ts := append([]Thread(nil), threads...)
	sort.Slice(ts, func(i, j int) bool {
		a, b := ts[i], ts[j]
		if a.Socket != b.Socket {
			return a.Socket < b.Socket
		}
		if a.Core != b.Core {
			return a.Core < b.Core
		}
		return a.ID < b.ID
	})
	type coreKey struct{ socket, core int }
	seen := make(map[coreKey]bool)
	var o Ordering
	for _, t := range ts {
		k := coreKey{t.Socket, t.Core}
		if seen[k] {
			continue
		}
		seen[k] = true
		o = append(o, CPU{ID: t.ID, Socket: t.Socket})
	}
	return o
}

// Uniform synthesizes an Ordering for n cores on a single socket. It
// is used on platforms that only report a physical core count.
func Uniform(n int) Ordering {
	o := make(Ordering, n)
	for i := range o {
		o[i] = CPU{ID: i, Socket: 0}
	}
	return o
}

// A Resolver queries the operating system for the CPU topology.
//
// The zero Resolver queries the running machine.
type Resolver struct {
	// GOOS selects the query strategy. If empty, runtime.GOOS is
	// used.
	GOOS string

	// Run executes a command and returns its standard output. If
	// nil, the command is run with os/exec.
	Run func(ctx context.Context, name string, args ...string) ([]byte, error)

	// CPUInfo is the path of the Linux cpuinfo file, used when
	// lscpu is not installed. If empty, "/proc/cpuinfo" is used.
	CPUInfo string
}

// Resolve returns the core Ordering of the running machine.
func Resolve(ctx context.Context) (Ordering, error) {
	return new(Resolver).Resolve(ctx)
}

// NumCPUs returns the number of physical cores of the running machine.
func NumCPUs(ctx context.Context) (int, error) {
	o, err := Resolve(ctx)
	if err != nil {
		return 0, err
	}
	return len(o), nil
}

// Resolve returns the core Ordering. All failures wrap ErrUnavailable.
func (r *Resolver) Resolve(ctx context.Context) (Ordering, error) {
	goos := r.GOOS
	if goos == "" {
		goos = runtime.GOOS
	}
	switch goos {
	case "darwin":
		// sysctl only exposes the number of physical cores, not
		// which logical CPU belongs to which core.
		out, err := r.run(ctx, "sysctl", "-n", "hw.physicalcpu_max")
		if err != nil {
			return nil, fmt.Errorf("%w: sysctl: %v", ErrUnavailable, err)
		}
		n, err := strconv.Atoi(strings.TrimSpace(string(out)))
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("%w: bad hw.physicalcpu_max %q", ErrUnavailable, bytes.TrimSpace(out))
		}
		return Uniform(n), nil
	case "linux":
		threads, err := r.linuxThreads(ctx)
		if err != nil {
			return nil, err
		}
		return Order(threads), nil
	}
	return nil, fmt.Errorf("%w: unsupported platform %s", ErrUnavailable, goos)
}

func (r *Resolver) linuxThreads(ctx context.Context) ([]Thread, error) {
	out, lerr := r.run(ctx, "lscpu", "--parse=CPU,Core,Socket")
	if lerr == nil {
		threads, err := ParseLscpu(bytes.NewReader(out))
		if err != nil {
			return nil, err
		}
		if len(threads) > 0 {
			return threads, nil
		}
		lerr = errors.New("no CPUs listed")
	}

	path := r.CPUInfo
	if path == "" {
		path = "/proc/cpuinfo"
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: lscpu: %v; %v", ErrUnavailable, lerr, err)
	}
	defer f.Close()
	threads, err := ParseCPUInfo(f)
	if err != nil {
		return nil, err
	}
	if len(threads) == 0 {
		return nil, fmt.Errorf("%w: no processors in %s", ErrUnavailable, path)
	}
	return threads, nil
}

func (r *Resolver) run(ctx context.Context, name string, args ...string) ([]byte, error) {
	if r.Run != nil {
		return r.Run(ctx, name, args...)
	}
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("%v: %s", err, msg)
		}
		return nil, err
	}
	return out, nil
}
