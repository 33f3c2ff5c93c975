// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package runner

import (
	"bytes"
	"fmt"
)

// Profile runs the instrumented binary cmd, which writes its work/span
// profile to out, and returns its captured output. The binary is not
// pinned: its measurements do not depend on the number of cores.
func Profile(cmd Command, out string) (stdout, stderr []byte, err error) {
	var o, e bytes.Buffer
	c := cmd.cmd(EnvOutput + "=" + out)
	c.Stdout = &o
	c.Stderr = &e
	if err := c.Run(); err != nil {
		if msg := lastLine(e.String()); msg != "" {
			err = fmt.Errorf("%v: %s", err, msg)
		}
		return o.Bytes(), e.Bytes(), fmt.Errorf("%s: %v", cmd.Path, err)
	}
	return o.Bytes(), e.Bytes(), nil
}
