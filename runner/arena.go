// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package runner

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/cilkscale/scalebench/dataset"
)

// An Arena owns the scratch files that benchmark runs write their
// measurements to, one per worker count. Every file is removed when
// it is collected, and Close removes whatever is left, so a sweep that
// stops early leaves nothing behind.
type Arena struct {
	dir string
}

// NewArena creates an arena in a fresh directory under dir. If dir is
// empty, the default temporary directory is used.
func NewArena(dir string) (*Arena, error) {
	d, err := os.MkdirTemp(dir, ".cilkscale-bench-")
	if err != nil {
		return nil, err
	}
	return &Arena{dir: d}, nil
}

// Path returns the output file for a run on p workers.
func (a *Arena) Path(p int) string {
	return filepath.Join(a.dir, fmt.Sprintf(".out.bench.%d.csv", p))
}

// Collect reads the output of the run on p workers and removes the
// file, whether or not it could be parsed.
func (a *Arena) Collect(p int) (*dataset.RunResult, error) {
	path := a.Path(p)
	res, err := dataset.ReadRunResultFile(path, p)
	if rerr := a.Release(p); rerr != nil && err == nil {
		err = rerr
	}
	return res, err
}

// Release removes the output file of the run on p workers, if any.
func (a *Arena) Release(p int) error {
	err := os.Remove(a.Path(p))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// Close removes the arena and any files still in it.
func (a *Arena) Close() error {
	return os.RemoveAll(a.dir)
}
