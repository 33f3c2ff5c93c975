// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package export

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/reader"

	"github.com/cilkscale/scalebench/dataset"
)

const sweepCSV = `tag,work (seconds),burdened_parallelism,1c time (seconds),2c time (seconds)
matmul,40,4,10,5.5
,42.5,3.86,10.7
fib,1,1,,0.5
`

func readSweep(t *testing.T) *dataset.Dataset {
	t.Helper()
	d, err := dataset.Read(strings.NewReader(sweepCSV), "out.csv")
	if err != nil {
		t.Fatal(err)
	}
	return d
}

func TestColumnNames(t *testing.T) {
	d := &dataset.Dataset{Header: []string{"tag", "work (seconds)", "burdened_parallelism", "1c time (seconds)", "Work (Seconds)", "((", ""}}
	want := []string{"tag", "work_seconds", "burdened_parallelism", "w1c_time_seconds", "work_seconds_2", "col6", "col7"}
	if diff := cmp.Diff(want, ColumnNames(d)); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestWriteParquet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.parquet")
	d := readSweep(t)
	if err := WriteParquet(path, d); err != nil {
		t.Fatal(err)
	}

	fr, err := local.NewLocalFileReader(path)
	if err != nil {
		t.Fatal(err)
	}
	defer fr.Close()
	pr, err := reader.NewParquetReader(fr, nil, 1)
	if err != nil {
		t.Fatal(err)
	}
	defer pr.ReadStop()
	if got := pr.GetNumRows(); got != int64(len(d.Rows)) {
		t.Errorf("got %d rows, want %d", got, len(d.Rows))
	}
	// The root plus one leaf per column.
	if got := len(pr.SchemaHandler.SchemaElements); got != len(d.Header)+1 {
		t.Errorf("got %d schema elements, want %d", got, len(d.Header)+1)
	}
}

func TestWriteParquetBadCell(t *testing.T) {
	d := &dataset.Dataset{
		Header: []string{"tag", "burdened_parallelism"},
		Rows:   [][]string{{"x", "lots"}},
	}
	if err := WriteParquet(filepath.Join(t.TempDir(), "out.parquet"), d); err == nil {
		t.Error("WriteParquet with non-numeric cell succeeded")
	}
}
