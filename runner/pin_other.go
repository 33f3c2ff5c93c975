// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build !linux

package runner

import "os/exec"

// CanPin reports whether runs are restricted to their CPUs on this
// platform.
const CanPin = false

// startPinned starts c without restricting its CPUs. Measurements are
// still collected, but the OS may schedule workers on sibling threads.
func startPinned(c *exec.Cmd, cpus []int) error {
	return c.Start()
}
