// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package dataset reads, merges and writes the CSV scalability
// dataset.
//
// A dataset starts as the profile written by a binary compiled with
// the Cilkscale tool: a header row naming the work/span metrics
// (including "burdened_parallelism") and one row per profiled region,
// identified by its tag. Each benchmark run on P workers then widens
// the dataset by one column, named "<P>c <metric>", holding that run's
// measurement for every row. Rows are matched by position, not by tag.
//
// Worker counts that were never run have no column at all. Consumers
// must treat a missing column as "not measured", which is distinct
// from a column holding zero.
package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
)

// A Dataset is a header row and a sequence of data rows. Data rows
// may be shorter than the header when some runs did not produce a
// value for them.
//
// Datasets are treated as values: Append and Aggregate return new
// Datasets and never modify their inputs.
type Dataset struct {
	Header []string
	Rows   [][]string
}

// A ParseError reports a dataset or run output that violates the
// expected header or column layout.
type ParseError struct {
	File string
	Row  int // 1-based CSV record number, or 0 if not row-specific
	Msg  string
}

func (e *ParseError) Error() string {
	file := e.File
	if file == "" {
		file = "dataset"
	}
	if e.Row == 0 {
		return fmt.Sprintf("%s: %s", file, e.Msg)
	}
	return fmt.Sprintf("%s:%d: %s", file, e.Row, e.Msg)
}

// Read parses a dataset in CSV form. name is used in error messages.
// Leading spaces in cells are dropped.
func Read(r io.Reader, name string) (*Dataset, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	records, err := cr.ReadAll()
	if err != nil {
		if pe, ok := err.(*csv.ParseError); ok {
			return nil, &ParseError{name, pe.Line, pe.Err.Error()}
		}
		return nil, err
	}
	if len(records) == 0 {
		return nil, &ParseError{name, 0, "missing header row"}
	}
	return &Dataset{Header: records[0], Rows: records[1:]}, nil
}

// ReadFile reads the dataset stored at path.
func ReadFile(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Read(f, path)
}

// Write writes d in CSV form.
func (d *Dataset) Write(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(d.Header); err != nil {
		return err
	}
	if err := cw.WriteAll(d.Rows); err != nil {
		return err
	}
	return cw.Error()
}

// WriteFile replaces the file at path with d. The new contents are
// written to a temporary file in the same directory and renamed over
// path, so an interrupted write leaves the old dataset intact.
func (d *Dataset) WriteFile(path string) (err error) {
	f, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			f.Close()
			os.Remove(f.Name())
		}
	}()
	if err := d.Write(f); err != nil {
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), path)
}

// Schema parses d's header. See ParseSchema.
func (d *Dataset) Schema() (*Schema, error) {
	return ParseSchema(d.Header)
}

// Cell returns the cell at data row row and column col. It reports
// false if the row is too short to have that column, or if the cell
// is empty.
func (d *Dataset) Cell(row, col int) (string, bool) {
	if row < 0 || row >= len(d.Rows) || col < 0 || col >= len(d.Rows[row]) {
		return "", false
	}
	v := d.Rows[row][col]
	return v, v != ""
}

// Float returns the numeric value of a cell. ok is false if the cell
// is absent; err is non-nil if it is present but not a number.
func (d *Dataset) Float(row, col int) (v float64, ok bool, err error) {
	s, ok := d.Cell(row, col)
	if !ok {
		return 0, false, nil
	}
	v, err = strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, true, &ParseError{"", row + 2, fmt.Sprintf("column %d: %q is not a number", col+1, s)}
	}
	return v, true, nil
}

// Tag returns the tag of data row row. The tag is the first column.
func (d *Dataset) Tag(row int) string {
	s, _ := d.Cell(row, 0)
	return s
}

func (d *Dataset) clone() *Dataset {
	nd := &Dataset{
		Header: append([]string(nil), d.Header...),
		Rows:   make([][]string, len(d.Rows)),
	}
	for i, r := range d.Rows {
		// Leave room for the column about to be appended.
		nd.Rows[i] = append(make([]string, 0, len(r)+1), r...)
	}
	return nd
}
