// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package archivetest opens archives for tests.
package archivetest

import (
	"context"
	"testing"
	"time"

	"github.com/cilkscale/scalebench/archive"
	_ "github.com/cilkscale/scalebench/archive/sqlite3"
	"github.com/cilkscale/scalebench/dataset"
)

// NewDB returns an empty in-memory SQLite archive. The archive is
// closed when the test finishes.
func NewDB(t *testing.T) *archive.DB {
	t.Helper()
	d, err := archive.OpenSQL("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { d.Close() })

	n, err := d.CountSweeps()
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Fatalf("found %d row(s) in Sweeps, want 0", n)
	}
	return d
}

// Seed reads the dataset file at path and stores it in db under label,
// created at the given time. It returns the stored sweep and the
// dataset as read.
func Seed(t *testing.T, db *archive.DB, path, label string, created time.Time) (*archive.Sweep, *dataset.Dataset) {
	t.Helper()
	d, err := dataset.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	s, err := db.Store(context.Background(), label, created, d)
	if err != nil {
		t.Fatalf("storing %s: %v", path, err)
	}
	return s, d
}
