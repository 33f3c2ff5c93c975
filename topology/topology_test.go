// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package topology

import (
	"context"
	"errors"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseLscpu(t *testing.T) {
	f, err := os.Open("testdata/lscpu-2x4x2.txt")
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	threads, err := ParseLscpu(f)
	if err != nil {
		t.Fatal(err)
	}
	if len(threads) != 16 {
		t.Fatalf("got %d threads, want 16", len(threads))
	}
	if want := (Thread{ID: 12, Core: 4, Socket: 1}); threads[12] != want {
		t.Errorf("thread 12 = %+v, want %+v", threads[12], want)
	}

	got := Order(threads)
	want := Ordering{{0, 0}, {1, 0}, {2, 0}, {3, 0}, {4, 1}, {5, 1}, {6, 1}, {7, 1}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Order mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{4}, got.SocketBoundaries()); diff != "" {
		t.Errorf("SocketBoundaries mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{0, 1, 2}, got.Threads(3)); diff != "" {
		t.Errorf("Threads(3) mismatch (-want +got):\n%s", diff)
	}
}

func TestParseLscpuErrors(t *testing.T) {
	for _, in := range []string{
		"0,0\n",
		"0,x,0\n",
		"# CPU,Core,Socket\n0,0,\n",
	} {
		if _, err := ParseLscpu(strings.NewReader(in)); !errors.Is(err, ErrUnavailable) {
			t.Errorf("ParseLscpu(%q): got %v, want ErrUnavailable", in, err)
		}
	}
}

func TestParseCPUInfo(t *testing.T) {
	f, err := os.Open("testdata/cpuinfo-2x2x2.txt")
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	threads, err := ParseCPUInfo(f)
	if err != nil {
		t.Fatal(err)
	}
	if len(threads) != 8 {
		t.Fatalf("got %d threads, want 8", len(threads))
	}
	// Core IDs repeat across sockets in cpuinfo; both sockets must
	// still contribute their cores.
	want := Ordering{{0, 0}, {1, 0}, {2, 1}, {3, 1}}
	if diff := cmp.Diff(want, Order(threads)); diff != "" {
		t.Errorf("Order mismatch (-want +got):\n%s", diff)
	}
}

func TestParseCPUInfoNoCoreID(t *testing.T) {
	in := "processor\t: 0\nmodel name\t: ARMv8\n\nprocessor\t: 1\nmodel name\t: ARMv8\n"
	threads, err := ParseCPUInfo(strings.NewReader(in))
	if err != nil {
		t.Fatal(err)
	}
	want := []Thread{{ID: 0, Core: 0}, {ID: 1, Core: 1}}
	if diff := cmp.Diff(want, threads); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

// TestOrderGrouping checks that k hyperthreads on c physical cores
// always yield c entries grouped contiguously by ascending socket,
// regardless of the order the OS lists them in.
func TestOrderGrouping(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	for iter := 0; iter < 50; iter++ {
		sockets := 1 + r.Intn(4)
		cores := 1 + r.Intn(8)
		smt := 1 + r.Intn(4)

		var threads []Thread
		id := 0
		for h := 0; h < smt; h++ {
			for s := 0; s < sockets; s++ {
				for c := 0; c < cores; c++ {
					threads = append(threads, Thread{ID: id, Core: s*cores + c, Socket: s})
					id++
				}
			}
		}
		r.Shuffle(len(threads), func(i, j int) { threads[i], threads[j] = threads[j], threads[i] })

		o := Order(threads)
		if len(o) != sockets*cores {
			t.Fatalf("%dx%dx%d: got %d entries, want %d", sockets, cores, smt, len(o), sockets*cores)
		}
		for i := 1; i < len(o); i++ {
			if o[i].Socket < o[i-1].Socket {
				t.Fatalf("%dx%dx%d: socket order broken at %d: %v", sockets, cores, smt, i, o)
			}
		}
		if got := len(o.SocketBoundaries()); got != sockets-1 {
			t.Errorf("%dx%dx%d: got %d socket boundaries, want %d", sockets, cores, smt, got, sockets-1)
		}
		// The first hyperthread of each core has the smallest ID.
		for i, cpu := range o {
			if cpu.ID >= sockets*cores {
				t.Errorf("%dx%dx%d: entry %d is a sibling thread %d", sockets, cores, smt, i, cpu.ID)
			}
		}
	}
}

func TestResolveDarwin(t *testing.T) {
	r := &Resolver{
		GOOS: "darwin",
		Run: func(ctx context.Context, name string, args ...string) ([]byte, error) {
			if name != "sysctl" {
				t.Errorf("ran %s, want sysctl", name)
			}
			return []byte("6\n"), nil
		},
	}
	o, err := r.Resolve(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(Uniform(6), o); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
	if o[5] != (CPU{ID: 5, Socket: 0}) {
		t.Errorf("o[5] = %+v", o[5])
	}
}

func TestResolveFallback(t *testing.T) {
	noLscpu := func(ctx context.Context, name string, args ...string) ([]byte, error) {
		return nil, errors.New("executable file not found in $PATH")
	}
	r := &Resolver{GOOS: "linux", Run: noLscpu, CPUInfo: "testdata/cpuinfo-2x2x2.txt"}
	o, err := r.Resolve(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(o) != 4 {
		t.Errorf("got %d cores, want 4", len(o))
	}

	r.CPUInfo = filepath.Join(t.TempDir(), "missing")
	if _, err := r.Resolve(context.Background()); !errors.Is(err, ErrUnavailable) {
		t.Errorf("got %v, want ErrUnavailable", err)
	}
}

func TestResolveUnsupported(t *testing.T) {
	r := &Resolver{GOOS: "plan9"}
	if _, err := r.Resolve(context.Background()); !errors.Is(err, ErrUnavailable) {
		t.Errorf("got %v, want ErrUnavailable", err)
	}
}

func TestResolveBadSysctl(t *testing.T) {
	r := &Resolver{
		GOOS: "darwin",
		Run: func(ctx context.Context, name string, args ...string) ([]byte, error) {
			return []byte("unknown oid\n"), nil
		},
	}
	if _, err := r.Resolve(context.Background()); !errors.Is(err, ErrUnavailable) {
		t.Errorf("got %v, want ErrUnavailable", err)
	}
}
