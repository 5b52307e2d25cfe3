// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gradient

import (
	"math"

	"github.com/cpmech/rbdlcp/blcp"
)

const (
	rowClamped = iota
	rowAtLower
	rowAtUpper
)

// DefaultCollector is a reference Collector: it does not itself compute
// simulation gradients (that bookkeeping is the external consumer's job,
// spec.md section 1), but it implements the categorization this core's
// Open Question (b) leaves unspecified: "categorization unchanged" means
// every row keeps the same clamped/at-lower/at-upper classification it
// had at the last ConstructMatrices call (see DESIGN.md).
type DefaultCollector struct {
	// Tol is the bound tolerance used when classifying a row as pinned
	// vs. free.
	Tol float64

	classification []int
	registered     map[int]int
	impulses       map[int][]float64
	lastX          []float64
}

// NewDefaultCollector returns a DefaultCollector with the default
// classification tolerance.
func NewDefaultCollector() *DefaultCollector {
	return &DefaultCollector{
		Tol:        1e-9,
		registered: make(map[int]int),
		impulses:   make(map[int][]float64),
	}
}

func (c *DefaultCollector) RegisterConstraint(constraintIndex, dim int) {
	c.registered[constraintIndex] = dim
}

func (c *DefaultCollector) MeasureConstraintImpulse(constraintIndex int, impulses []float64) {
	c.impulses[constraintIndex] = append([]float64(nil), impulses...)
}

func (c *DefaultCollector) ConstructMatrices(snap Snapshot, x []float64) bool {
	n := len(x)
	if n != len(snap.B) || n != len(snap.Lo) || n != len(snap.Hi) || n != len(snap.FIndex) {
		return false
	}
	tol := c.Tol
	if tol <= 0 {
		tol = 1e-9
	}
	cls := make([]int, n)
	for i := 0; i < n; i++ {
		lo, hi := snap.Lo[i], snap.Hi[i]
		if snap.FIndex[i] >= 0 {
			scale := math.Abs(x[snap.FIndex[i]])
			lo, hi = lo*scale, hi*scale
		}
		switch {
		case x[i] <= lo+tol:
			cls[i] = rowAtLower
		case x[i] >= hi-tol:
			cls[i] = rowAtUpper
		default:
			cls[i] = rowClamped
		}
	}
	c.classification = cls
	c.lastX = append([]float64(nil), x...)
	return true
}

// OpportunisticallyStandardizeResults re-solves the rows classified
// "clamped" against the pinned (bound) rows, one matrix inversion instead
// of a full LCP solve — the warm-start fast path described in spec.md
// section 4.6 and 9.
func (c *DefaultCollector) OpportunisticallyStandardizeResults(snap Snapshot, x []float64) bool {
	n := len(x)
	if c.classification == nil || len(c.classification) != n {
		return false
	}

	// pin non-clamped rows to their effective bound using the *input* x
	// for the friction scale, matching the previous step's accepted
	// categorization.
	pinned := append([]float64(nil), x...)
	for i := 0; i < n; i++ {
		switch c.classification[i] {
		case rowAtLower:
			pinned[i] = effectiveBound(snap.Lo[i], snap, x, i)
		case rowAtUpper:
			pinned[i] = effectiveBound(snap.Hi[i], snap, x, i)
		}
	}

	var clampedIdx []int
	for i, cl := range c.classification {
		if cl == rowClamped {
			clampedIdx = append(clampedIdx, i)
		}
	}
	if len(clampedIdx) == 0 {
		copy(x, pinned)
		return true
	}

	m := len(clampedIdx)
	sub := make([][]float64, m)
	rhs := make([]float64, m)
	for r, i := range clampedIdx {
		acc := snap.B[i]
		for j := 0; j < n; j++ {
			isClamped := c.classification[j] == rowClamped
			if !isClamped {
				acc += snap.A[i][j] * pinned[j]
			}
		}
		rhs[r] = -acc
		row := make([]float64, m)
		for cIdx, j := range clampedIdx {
			row[cIdx] = snap.A[i][j]
		}
		sub[r] = row
	}

	sol, ok := blcp.SolveDense(sub, rhs)
	if !ok {
		return false
	}
	for r, i := range clampedIdx {
		pinned[i] = sol[r]
	}
	copy(x, pinned)
	return true
}

func effectiveBound(bound float64, snap Snapshot, x []float64, i int) float64 {
	if snap.FIndex[i] < 0 {
		return bound
	}
	return bound * math.Abs(x[snap.FIndex[i]])
}

func (c *DefaultCollector) RegisterLCPResults(x []float64, snap Snapshot) {
	c.lastX = append(c.lastX[:0], x...)
}
