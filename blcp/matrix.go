// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package blcp implements the boxed mixed linear complementarity problem
// (BLCP) solvers used to resolve a step's constraint/contact impulses: a
// direct principal-pivoting method (Dantzig-style) and a Projected
// Gauss-Seidel fallback, operating on a shared dense workspace.
package blcp

import "github.com/cpmech/gosl/la"

// Matrix is a dense, row-major matrix backed by a single flat buffer whose
// column stride (NSkip) is padded to a multiple of 4. The padding columns
// past N are never read by a solver but let a SIMD-friendly consumer load
// whole rows without bounds checks. Matrix is not safe for concurrent use;
// one BLCP solve owns it at a time (see Workspace).
type Matrix struct {
	n     int
	nSkip int
	data  []float64
}

// skipSize rounds n up to the next multiple of 4 (minimum 4).
func skipSize(n int) int {
	if n <= 0 {
		return 4
	}
	return ((n + 3) / 4) * 4
}

// NewMatrix allocates a square n x n matrix (n rows, NSkip(n) columns).
func NewMatrix(n int) *Matrix {
	m := &Matrix{}
	m.Reset(n)
	return m
}

// Reset resizes the matrix to n x n, reallocating only if the new
// n*NSkip buffer exceeds the current backing capacity. Existing data is not preserved.
func (m *Matrix) Reset(n int) {
	m.n = n
	m.nSkip = skipSize(n)
	need := n * m.nSkip
	if cap(m.data) < need {
		m.data = make([]float64, need)
		return
	}
	m.data = m.data[:need]
}

// N returns the logical dimension (rows == columns used).
func (m *Matrix) N() int { return m.n }

// NSkip returns the column stride (>= N, a multiple of 4).
func (m *Matrix) NSkip() int { return m.nSkip }

// Zero clears every entry, including the padding columns, the same way
// gofem zeroes its own dense element blocks (la.VecFill, e.g.
// ele/seepage/liquid.go's Rhol_ex reset).
func (m *Matrix) Zero() {
	la.VecFill(m.data, 0)
}

// Get returns A[i,j].
func (m *Matrix) Get(i, j int) float64 { return m.data[i*m.nSkip+j] }

// Set assigns A[i,j] = v.
func (m *Matrix) Set(i, j int, v float64) { m.data[i*m.nSkip+j] = v }

// Row returns the live backing slice for row i, length NSkip (including
// padding columns). Callers must not retain it past the current solve.
func (m *Matrix) Row(i int) []float64 { return m.data[i*m.nSkip : (i+1)*m.nSkip] }

// CopyFrom overwrites m with a's contents, resizing m if needed. Used for
// the orchestrator's pre-solve backup and post-failure restore.
func (m *Matrix) CopyFrom(a *Matrix) {
	m.Reset(a.n)
	copy(m.data, a.data)
}

// CheckSymmetric reports the largest |A[i,j]-A[j,i]| found, and whether it
// is within tol. Debug-build diagnostic only; O(n^2).
func (m *Matrix) CheckSymmetric(tol float64) (worst float64, ok bool) {
	return m.CheckSymmetricBlock(m.n, tol)
}

// CheckSymmetricBlock is CheckSymmetric restricted to the leading
// blockN x blockN sub-matrix — used by the assembler to verify symmetry of
// the rows/columns already "closed" after each constraint's block, rather
// than the whole (still partially-unmirrored) matrix.
func (m *Matrix) CheckSymmetricBlock(blockN int, tol float64) (worst float64, ok bool) {
	for i := 0; i < blockN; i++ {
		for j := i + 1; j < blockN; j++ {
			d := m.Get(i, j) - m.Get(j, i)
			if d < 0 {
				d = -d
			}
			if d > worst {
				worst = d
			}
		}
	}
	return worst, worst <= tol
}

// Dense strips the padding columns and returns an n x n slice-of-slices
// copy of the matrix, the layout the gradient collector snapshot needs.
func (m *Matrix) Dense() [][]float64 {
	out := make([][]float64, m.n)
	for i := 0; i < m.n; i++ {
		row := make([]float64, m.n)
		copy(row, m.data[i*m.nSkip:i*m.nSkip+m.n])
		out[i] = row
	}
	return out
}

// ColumnSquaredNorms returns, for each column j < n, the sum over rows
// i < n of A[i,j]^2, the per-column normalization a gradient backup needs.
func (m *Matrix) ColumnSquaredNorms() []float64 {
	out := make([]float64, m.n)
	for i := 0; i < m.n; i++ {
		for j := 0; j < m.n; j++ {
			v := m.Get(i, j)
			out[j] += v * v
		}
	}
	return out
}
