// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package chart

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// SelectRows parses a row selection for a dataset with n data rows.
//
// The selection is either "all" or a comma-separated list of row
// numbers, where row 1 is the first data row after the header. A row
// number outside [1, n] selects the last row. The result holds
// distinct zero-based data row indexes in increasing order.
func SelectRows(sel string, n int) ([]int, error) {
	if strings.TrimSpace(sel) == "all" {
		rows := make([]int, n)
		for i := range rows {
			rows[i] = i
		}
		return rows, nil
	}
	if n == 0 {
		return nil, nil
	}
	seen := make(map[int]bool)
	var rows []int
	for _, f := range strings.Split(sel, ",") {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		r, err := strconv.Atoi(f)
		if err != nil {
			return nil, fmt.Errorf("bad row number %q", f)
		}
		if r < 1 || r > n {
			r = n
		}
		if !seen[r-1] {
			seen[r-1] = true
			rows = append(rows, r-1)
		}
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("no rows in selection %q", sel)
	}
	sort.Ints(rows)
	return rows, nil
}
