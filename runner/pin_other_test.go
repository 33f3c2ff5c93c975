// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build !linux

package runner

import "testing"

func allowedCPUs(t *testing.T) []int {
	return []int{0}
}
