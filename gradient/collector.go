// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package gradient defines the capability a differentiable-simulation
// consumer implements to receive BLCP assembly/solve bookkeeping and to
// opportunistically warm-start a step from the previous one.
// This package never performs collision detection or kinematics; it is a
// narrow, polymorphic hook, modeled the way gofem keeps ele.WithIntVars,
// ele.Connector and ele.CanExtrapolate as small independently-satisfiable
// interfaces rather than one fat base type (see ele/element.go).
package gradient

import "github.com/cpmech/rbdlcp/blcp"

// Snapshot is the gradient-backup data handed to a Collector: A's leading
// n x n block (padding columns stripped), b/lo/hi/findex, and the
// per-column squared norms of A.
type Snapshot struct {
	A             [][]float64
	B             []float64
	Lo            []float64
	Hi            []float64
	FIndex        []int
	ColumnNormsSq []float64
}

// NewSnapshot builds a Snapshot from the orchestrator's workspace matrix
// and per-row vectors, stripping the SIMD padding columns (spec.md C5
// step 2).
func NewSnapshot(a *blcp.Matrix, b, lo, hi []float64, findex []int) Snapshot {
	return Snapshot{
		A:             a.Dense(),
		B:             append([]float64(nil), b...),
		Lo:            append([]float64(nil), lo...),
		Hi:            append([]float64(nil), hi...),
		FIndex:        append([]int(nil), findex...),
		ColumnNormsSq: a.ColumnSquaredNorms(),
	}
}

// Collector is the polymorphic gradient-matrix capability (spec.md
// section 9: registerConstraint, measureConstraintImpulse,
// registerLCPResults, constructMatrices, opportunisticallyStandardizeResults).
// Implementations live outside this core (spec.md section 1, "gradient
// hook... the hook's internals are external"); DefaultCollector below is a
// reference implementation usable by tests.
type Collector interface {
	// RegisterConstraint records a constraint's index within the group
	// and its row dimension, right after its GetInformation call.
	RegisterConstraint(constraintIndex, dim int)

	// MeasureConstraintImpulse records the final solved impulse applied
	// to a constraint.
	MeasureConstraintImpulse(constraintIndex int, impulses []float64)

	// ConstructMatrices derives the active-set partition (clamped /
	// at-lower / at-upper, per row) implied by x against snap, caching it
	// for a following OpportunisticallyStandardizeResults call. Returns
	// false if no partition could be derived (e.g. dimension mismatch).
	ConstructMatrices(snap Snapshot, x []float64) bool

	// OpportunisticallyStandardizeResults projects x onto the nearest
	// feasible solution of the LCP described by snap, assuming the
	// partition from the last ConstructMatrices call still applies.
	// Mutates x in place. Returns false (standardization failed) on a
	// singular partition — callers must fall through to a full solve.
	OpportunisticallyStandardizeResults(snap Snapshot, x []float64) bool

	// RegisterLCPResults hands the collector the step's final solution
	// after a full solve. It is not called on a step whose warm start
	// short-circuited the solve.
	RegisterLCPResults(x []float64, snap Snapshot)
}
