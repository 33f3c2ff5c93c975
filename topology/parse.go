// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package topology

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ParseLscpu parses the output of "lscpu --parse". Comment lines
// starting with '#' are skipped; the first three fields of every other
// line are the CPU, core and socket numbers. Any further fields (NUMA
// node, caches) are ignored.
func ParseLscpu(r io.Reader) ([]Thread, error) {
	var threads []Thread
	s := bufio.NewScanner(r)
	line := 0
	for s.Scan() {
		line++
		l := strings.TrimSpace(s.Text())
		if l == "" || strings.HasPrefix(l, "#") {
			continue
		}
		fields := strings.Split(l, ",")
		if len(fields) < 3 {
			return nil, fmt.Errorf("%w: lscpu line %d: want at least 3 fields, got %q", ErrUnavailable, line, l)
		}
		var nums [3]int
		for i := range nums {
			n, err := strconv.Atoi(strings.TrimSpace(fields[i]))
			if err != nil {
				return nil, fmt.Errorf("%w: lscpu line %d: bad field %q", ErrUnavailable, line, fields[i])
			}
			nums[i] = n
		}
		threads = append(threads, Thread{ID: nums[0], Core: nums[1], Socket: nums[2]})
	}
	if err := s.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return threads, nil
}

// ParseCPUInfo parses a Linux /proc/cpuinfo file. Each blank-line
// separated block describes one processor. Blocks without a "core id"
// (some virtual machines omit it) are treated as their own core, and
// blocks without a "physical id" are placed on socket 0.
func ParseCPUInfo(r io.Reader) ([]Thread, error) {
	var threads []Thread
	var cur Thread
	haveProc, haveCore := false, false
	flush := func() {
		if !haveProc {
			return
		}
		if !haveCore {
			cur.Core = cur.ID
		}
		threads = append(threads, cur)
		cur = Thread{}
		haveProc, haveCore = false, false
	}

	s := bufio.NewScanner(r)
	for s.Scan() {
		l := s.Text()
		if strings.TrimSpace(l) == "" {
			flush()
			continue
		}
		key, val, ok := strings.Cut(l, ":")
		if !ok {
			continue
		}
		key, val = strings.TrimSpace(key), strings.TrimSpace(val)
		var dst *int
		switch key {
		case "processor":
			dst, haveProc = &cur.ID, true
		case "core id":
			dst, haveCore = &cur.Core, true
		case "physical id":
			dst = &cur.Socket
		default:
			continue
		}
		n, err := strconv.Atoi(val)
		if err != nil {
			return nil, fmt.Errorf("%w: cpuinfo: bad %s %q", ErrUnavailable, key, val)
		}
		*dst = n
	}
	if err := s.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	flush()
	return threads, nil
}
