// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package blcp

// Solver is implemented by both the primary (pivoting) and secondary (PGS)
// BLCP solvers. It solves the boxed mixed LCP
//
//	A*x + b = w
//
// subject to, for each row k: if FIndex[k] < 0, Lo[k] <= x[k] <= Hi[k] with
// box complementarity between x[k] and w[k]; if FIndex[k] = j >= 0, the
// effective bounds are Lo[k]*|x[j]| and Hi[k]*|x[j]| (Coulomb friction
// coupling). A is square n x n (use A.NSkip() for the row stride). Rows
// [0,nub) are unbounded ("nub" = number of unbounded variables, solved
// first with no box at all); nub is 0 unless the caller pre-partitions the
// group that way.
//
// A failure is signaled either by a false return or by x containing NaN —
// the orchestrator (C5) treats both identically.
type Solver interface {
	// Name identifies the solver for diagnostics and the "primary ==
	// secondary" misconfiguration check.
	Name() string

	Solve(n int, a *Matrix, x, b []float64, nub int, lo, hi []float64, findex []int, earlyTermination bool) bool
}
