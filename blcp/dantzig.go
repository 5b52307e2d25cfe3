// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package blcp

import "math"

// PivotSolver is the primary BLCP solver: a direct,
// block-principal-pivoting method. Rows are held in one of three states —
// clamped (free, solved exactly so w=0), at-lower-bound, or at-upper-bound —
// and each outer iteration (a) re-solves the clamped block exactly via
// Gaussian elimination with partial pivoting, (b) recomputes w = A*x+b for
// every row, and (c) reclassifies any row whose state now violates
// complementarity. Convergence is reaching a fixed point of this
// reclassification; a singular clamped block or an iteration budget
// overrun is reported as failure so the orchestrator can fall back to the
// secondary solver.
//
// Precondition (not asserted at runtime — checking it costs as much as
// solving): A must be symmetric positive semi-definite on the free rows.
// A pivot failure (singular clamped block) is the primary signal that this
// precondition did not hold.
type PivotSolver struct {
	// Tol is the bound/complementarity tolerance used to decide whether a
	// row has settled into its current state.
	Tol float64
}

// NewPivotSolver returns a PivotSolver with the default tolerance.
func NewPivotSolver() *PivotSolver {
	return &PivotSolver{Tol: 1e-9}
}

func (s *PivotSolver) Name() string { return "dantzig" }

const (
	rowClamped = iota
	rowAtLower
	rowAtUpper
)

// Solve implements Solver.
func (s *PivotSolver) Solve(n int, a *Matrix, x, b []float64, nub int, lo, hi []float64, findex []int, earlyTermination bool) bool {
	if n == 0 {
		return true
	}
	tol := s.Tol
	if tol <= 0 {
		tol = 1e-9
	}

	maxOuter := 10*n + 20
	if earlyTermination {
		maxOuter = 2*n + 4
	}

	state := make([]int, n)
	for i := 0; i < n; i++ {
		if i < nub {
			state[i] = rowClamped
		} else {
			state[i] = rowAtLower
			x[i] = effectiveLo(i, lo, x, findex)
		}
	}

	w := make([]float64, n)
	clampedIdx := make([]int, 0, n)
	sub := make([][]float64, 0, n)
	rhs := make([]float64, 0, n)

	for iter := 0; iter < maxOuter; iter++ {
		// (a) refresh pinned values at their (possibly friction-coupled) bound
		for i := 0; i < n; i++ {
			switch state[i] {
			case rowAtLower:
				x[i] = effectiveLo(i, lo, x, findex)
			case rowAtUpper:
				x[i] = effectiveHi(i, hi, x, findex)
			}
		}

		// (b) solve the clamped block exactly: A_CC x_C = -(b_C + A_C,rest x_rest)
		clampedIdx = clampedIdx[:0]
		for i := 0; i < n; i++ {
			if state[i] == rowClamped {
				clampedIdx = append(clampedIdx, i)
			}
		}
		if len(clampedIdx) > 0 {
			m := len(clampedIdx)
			sub = sub[:0]
			for r := 0; r < m; r++ {
				sub = append(sub, make([]float64, m))
			}
			rhs = rhs[:0]
			for r, i := range clampedIdx {
				acc := b[i]
				for j := 0; j < n; j++ {
					if state[j] != rowClamped {
						acc += a.Get(i, j) * x[j]
					}
				}
				rhs = append(rhs, -acc)
				for c, j := range clampedIdx {
					sub[r][c] = a.Get(i, j)
				}
			}
			sol, ok := gaussSolve(sub, rhs)
			if !ok {
				return false
			}
			for r, i := range clampedIdx {
				x[i] = sol[r]
			}
		}

		// (c) recompute w for every row
		for i := 0; i < n; i++ {
			acc := b[i]
			row := a.Row(i)
			for j := 0; j < n; j++ {
				acc += row[j] * x[j]
			}
			w[i] = acc
		}

		// (d) reclassify
		changed := false
		for i := 0; i < n; i++ {
			switch state[i] {
			case rowClamped:
				loI := effectiveLo(i, lo, x, findex)
				hiI := effectiveHi(i, hi, x, findex)
				if x[i] < loI-tol {
					state[i] = rowAtLower
					changed = true
				} else if x[i] > hiI+tol {
					state[i] = rowAtUpper
					changed = true
				}
			case rowAtLower:
				if i >= nub && w[i] < -tol {
					state[i] = rowClamped
					changed = true
				}
			case rowAtUpper:
				if i >= nub && w[i] > tol {
					state[i] = rowClamped
					changed = true
				}
			}
		}
		if !changed {
			return !hasNaNSlice(x)
		}
	}
	return false
}

func effectiveLo(i int, lo []float64, x []float64, findex []int) float64 {
	if findex[i] < 0 {
		return lo[i]
	}
	return lo[i] * math.Abs(x[findex[i]])
}

func effectiveHi(i int, hi []float64, x []float64, findex []int) float64 {
	if findex[i] < 0 {
		return hi[i]
	}
	return hi[i] * math.Abs(x[findex[i]])
}

func hasNaNSlice(v []float64) bool {
	for _, e := range v {
		if math.IsNaN(e) {
			return true
		}
	}
	return false
}

// SolveDense solves sub*sol = rhs via Gaussian elimination with partial
// pivoting, without mutating the caller's sub/rhs slices. Exported for the
// gradient package's standardization step, which needs the
// same "solve the clamped block exactly" primitive the primary solver
// uses internally.
func SolveDense(sub [][]float64, rhs []float64) ([]float64, bool) {
	m := len(rhs)
	cp := make([][]float64, m)
	for i, row := range sub {
		r := make([]float64, len(row))
		copy(r, row)
		cp[i] = r
	}
	rc := make([]float64, m)
	copy(rc, rhs)
	return gaussSolve(cp, rc)
}

// gaussSolve solves sub*sol = rhs via Gaussian elimination with partial
// pivoting. sub is consumed (rows permuted/scaled in place). Returns
// ok=false if a pivot is smaller than a numerical tolerance, the signal
// that the clamped block was singular (PSD precondition broken).
func gaussSolve(sub [][]float64, rhs []float64) (sol []float64, ok bool) {
	m := len(rhs)
	const pivotTol = 1e-12
	for col := 0; col < m; col++ {
		best, bestRow := math.Abs(sub[col][col]), col
		for r := col + 1; r < m; r++ {
			if v := math.Abs(sub[r][col]); v > best {
				best, bestRow = v, r
			}
		}
		if best < pivotTol {
			return nil, false
		}
		if bestRow != col {
			sub[col], sub[bestRow] = sub[bestRow], sub[col]
			rhs[col], rhs[bestRow] = rhs[bestRow], rhs[col]
		}
		pivot := sub[col][col]
		for r := col + 1; r < m; r++ {
			factor := sub[r][col] / pivot
			if factor == 0 {
				continue
			}
			for c := col; c < m; c++ {
				sub[r][c] -= factor * sub[col][c]
			}
			rhs[r] -= factor * rhs[col]
		}
	}
	sol = make([]float64, m)
	for r := m - 1; r >= 0; r-- {
		acc := rhs[r]
		for c := r + 1; c < m; c++ {
			acc -= sub[r][c] * sol[c]
		}
		sol[r] = acc / sub[r][r]
	}
	return sol, true
}
