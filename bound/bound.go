// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package bound computes work/span bounds on the runtime and speedup
// of a parallel program.
//
// Given the single-worker runtime T1 and the parallelism PAR of a
// computation, the runtime on P workers is bounded below by the
// perfect-linear bound T1/P and by the span bound T1/PAR. A greedy
// scheduler is expected to achieve the burdened-dag bound
//
//	TP = T1/P + (1 - 1/P) * 1.7 * T1/PAR
//
// where the span term is scaled by the span coefficient measured in
// the Cilkview paper.
//
// Values that cannot be computed, for example a span bound when the
// parallelism is zero, are Undefined. Undefined values are NaN and
// should be treated as gaps when plotting.
package bound

import "math"

// SpanCoefficient scales the span term of the burdened-dag bound.
const SpanCoefficient = 1.7

// Undefined is the value of a bound that cannot be computed.
var Undefined = math.NaN()

// IsUndefined reports whether v is Undefined.
func IsUndefined(v float64) bool {
	return math.IsNaN(v)
}

func div(a, b float64) float64 {
	if b == 0 || math.IsNaN(a) || math.IsNaN(b) {
		return Undefined
	}
	return a / b
}

// LinearRuntime returns the perfect-linear runtime T1/P.
func LinearRuntime(t1 float64, p int) float64 {
	return div(t1, float64(p))
}

// LinearSpeedup returns the perfect-linear speedup, which is P.
func LinearSpeedup(p int) float64 {
	return float64(p)
}

// SpanRuntime returns the span bound T1/PAR, which does not depend on
// the number of workers.
func SpanRuntime(t1, par float64) float64 {
	return div(t1, par)
}

// SpanSpeedup returns the span bound on speedup, which is PAR.
func SpanSpeedup(par float64) float64 {
	if par == 0 || math.IsNaN(par) {
		return Undefined
	}
	return par
}

// BurdenedRuntime returns the burdened-dag runtime bound on p workers.
// On one worker it is exactly t1.
func BurdenedRuntime(t1, par float64, p int) float64 {
	if p <= 0 {
		return Undefined
	}
	span := div(t1, par)
	if IsUndefined(span) {
		return Undefined
	}
	fp := float64(p)
	return t1/fp + (1-1/fp)*SpanCoefficient*span
}

// BurdenedSpeedup returns the speedup implied by the burdened-dag
// runtime bound, T1/TP.
func BurdenedSpeedup(t1, par float64, p int) float64 {
	return div(t1, BurdenedRuntime(t1, par, p))
}
