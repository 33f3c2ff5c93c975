// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package export converts datasets to columnar formats for analysis
// outside this tool.
package export

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/writer"

	"github.com/cilkscale/scalebench/dataset"
)

// ColumnNames returns the Parquet column names for the header of d.
// Names are lower case, with each run of characters outside [a-z0-9]
// replaced by an underscore. Names that would start with a digit get a
// "w" prefix, and repeated names get a numeric suffix.
func ColumnNames(d *dataset.Dataset) []string {
	names := make([]string, len(d.Header))
	seen := make(map[string]int)
	for i, h := range d.Header {
		n := sanitize(h)
		if n == "" {
			n = "col" + strconv.Itoa(i+1)
		}
		if unicode.IsDigit(rune(n[0])) {
			n = "w" + n
		}
		if k := seen[n]; k > 0 {
			seen[n] = k + 1
			n += "_" + strconv.Itoa(k+1)
		} else {
			seen[n] = 1
		}
		names[i] = n
	}
	return names
}

func sanitize(s string) string {
	var b strings.Builder
	under := false
	for _, r := range strings.ToLower(s) {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
			if under && b.Len() > 0 {
				b.WriteByte('_')
			}
			under = false
			b.WriteRune(r)
			continue
		}
		under = true
	}
	return b.String()
}

// WriteParquet writes d to a Parquet file at path. The first column
// holds the row tags as UTF8 strings. Every other column is an
// optional DOUBLE; cells that are absent or empty are null.
func WriteParquet(path string, d *dataset.Dataset) (err error) {
	if len(d.Header) == 0 {
		return fmt.Errorf("%s: dataset has no columns", path)
	}
	names := ColumnNames(d)
	md := make([]string, len(names))
	md[0] = fmt.Sprintf("name=%s, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY", names[0])
	for i := 1; i < len(names); i++ {
		md[i] = fmt.Sprintf("name=%s, type=DOUBLE, repetitiontype=OPTIONAL", names[i])
	}

	f, err := local.NewLocalFileWriter(path)
	if err != nil {
		return fmt.Errorf("failed to create parquet file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = cerr
		}
	}()

	pw, err := writer.NewCSVWriter(md, f, 4)
	if err != nil {
		return fmt.Errorf("failed to create parquet writer: %w", err)
	}
	for row := range d.Rows {
		rec := make([]interface{}, len(names))
		rec[0] = d.Tag(row)
		for col := 1; col < len(names); col++ {
			v, ok, err := d.Float(row, col)
			if err != nil {
				return err
			}
			if ok {
				rec[col] = v
			}
		}
		if err := pw.Write(rec); err != nil {
			return fmt.Errorf("failed to write row %d: %w", row+1, err)
		}
	}
	if err := pw.WriteStop(); err != nil {
		return fmt.Errorf("failed to stop parquet writer: %w", err)
	}
	return nil
}
