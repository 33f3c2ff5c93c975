// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build linux

package runner

import (
	"fmt"
	"os/exec"
	"runtime"

	"golang.org/x/sys/unix"
)

// CanPin reports whether runs are restricted to their CPUs on this
// platform.
const CanPin = true

// startPinned starts c restricted to the given logical CPUs.
//
// A forked child inherits the affinity mask of the forking thread, so
// the mask is narrowed on a locked OS thread for the duration of
// Start. The benchmark is therefore pinned before it executes its
// first instruction.
func startPinned(c *exec.Cmd, cpus []int) error {
	runtime.LockOSThread()

	var saved unix.CPUSet
	if err := unix.SchedGetaffinity(0, &saved); err != nil {
		runtime.UnlockOSThread()
		return fmt.Errorf("sched_getaffinity: %v", err)
	}
	var set unix.CPUSet
	set.Zero()
	for _, cpu := range cpus {
		set.Set(cpu)
	}
	if err := unix.SchedSetaffinity(0, &set); err != nil {
		runtime.UnlockOSThread()
		return fmt.Errorf("sched_setaffinity %v: %v", cpus, err)
	}

	startErr := c.Start()

	if err := unix.SchedSetaffinity(0, &saved); err != nil {
		// Keep the narrowed thread out of the scheduler's pool.
		if startErr == nil {
			startErr = fmt.Errorf("restoring affinity: %v", err)
		}
		return startErr
	}
	runtime.UnlockOSThread()
	return startErr
}
