// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package blcp

import (
	"math"

	"github.com/cpmech/gosl/la"
)

// Workspace holds the per-step dense buffers a BLCP solve reads and
// writes: the assembled matrix A, the solution x (retained across steps to
// enable warm starting), and the per-row b/w/lo/hi/findex vectors. It is
// single-writer: one solve must finish before another begins. Buffers are
// resized, not reallocated, when n is unchanged —
// the same alloc-if-needed idiom gofem's fem.Domain uses for Fb/Wb.
type Workspace struct {
	A      *Matrix
	X      []float64
	B      []float64
	W      []float64
	Lo     []float64
	Hi     []float64
	FIndex []int

	backupValid bool
	bkpA        *Matrix
	bkpX        []float64
	bkpB        []float64
	bkpLo       []float64
	bkpHi       []float64
	bkpFIndex   []int
}

// NewWorkspace returns an empty workspace; call Resize before first use.
func NewWorkspace() *Workspace {
	return &Workspace{A: NewMatrix(0)}
}

// Resize grows or shrinks every buffer to dimension n. It reports whether
// the solution vector X itself changed size: the warm-start hook (C6) may
// only attempt to reuse the previous X when this is false, since a resize
// means the previous active set cannot possibly still apply.
func (w *Workspace) Resize(n int) (xResized bool) {
	w.A.Reset(n)
	if len(w.X) != n {
		w.X = make([]float64, n)
		xResized = true
	}
	w.B = resizeF64(w.B, n)
	w.W = resizeF64(w.W, n)
	w.Lo = resizeF64(w.Lo, n)
	w.Hi = resizeF64(w.Hi, n)
	w.FIndex = resizeInt(w.FIndex, n)
	return
}

// Backup snapshots A, X, B, Lo, Hi, FIndex before a destructive solver call.
// Only meaningful when a secondary solver is configured; the orchestrator
// skips it otherwise.
func (w *Workspace) Backup() {
	if w.bkpA == nil {
		w.bkpA = NewMatrix(0)
	}
	w.bkpA.CopyFrom(w.A)
	w.bkpX = append(w.bkpX[:0], w.X...)
	w.bkpB = append(w.bkpB[:0], w.B...)
	w.bkpLo = append(w.bkpLo[:0], w.Lo...)
	w.bkpHi = append(w.bkpHi[:0], w.Hi...)
	w.bkpFIndex = append(w.bkpFIndex[:0], w.FIndex...)
	w.backupValid = true
}

// Restore overwrites A, X, B, Lo, Hi, FIndex from the last Backup. Called
// after a primary-solver failure, before the secondary solver runs.
func (w *Workspace) Restore() {
	if !w.backupValid {
		return
	}
	w.A.CopyFrom(w.bkpA)
	copy(w.X, w.bkpX)
	copy(w.B, w.bkpB)
	copy(w.Lo, w.bkpLo)
	copy(w.Hi, w.bkpHi)
	copy(w.FIndex, w.bkpFIndex)
}

// HasNaN reports whether X currently contains a NaN.
func (w *Workspace) HasNaN() bool {
	for _, v := range w.X {
		if math.IsNaN(v) {
			return true
		}
	}
	return false
}

// ZeroX clears X; used by the orchestrator's safety clamp on unrecoverable
// failure.
func (w *Workspace) ZeroX() {
	la.VecFill(w.X, 0)
}

// XNorm returns the Euclidean norm of the current solution, used by the
// debug-build diagnostics dump to report solve
// magnitude alongside the per-row complementarity check.
func (w *Workspace) XNorm() float64 {
	return la.VecNorm(w.X)
}

func resizeF64(s []float64, n int) []float64 {
	if cap(s) < n {
		return make([]float64, n)
	}
	s = s[:n]
	la.VecFill(s, 0)
	return s
}

func resizeInt(s []int, n int) []int {
	if cap(s) < n {
		return make([]int, n)
	}
	s = s[:n]
	for i := range s {
		s[i] = -1
	}
	return s
}
