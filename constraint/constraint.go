// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package constraint defines the contract every contact/joint constraint
// exposes to the BLCP assembler, the ConstrainedGroup that
// bundles a step's constraints, and the assembler that turns
// them into a dense, symmetric-by-construction matrix problem.
//
// This mirrors the shape of gofem's ele.Element interface (ele/element.go):
// one object per contribution, queried once for its bookkeeping information
// and then asked to add itself into a shared buffer, generalized here from
// "add a local stiffness block into a sparse triplet" to "add unit-impulse
// velocity responses into a dense, padded, mirrored matrix".
package constraint

// RowSlice gives a Constraint writable access to its own rows within the
// group's workspace buffers; the inverse time step it needs to form its
// right-hand side is passed to GetInformation alongside it. Lo, Hi, B,
// W and FIndex all have length Dimension(); FIndex entries must be written
// local (-1 or 0..Dimension()-1) — the assembler rebases them to global row
// indices afterward.
type RowSlice struct {
	Lo, Hi, B, W []float64
	FIndex       []int
}

// Constraint is the probe interface every contact/joint contributes to a
// ConstrainedGroup. Implementations borrow workspace slices
// for the duration of a single call and must not retain them.
//
// Call order within one step, per constraint: GetInformation, then Excite,
// then ApplyUnitImpulse/GetVelocityChange pairs for each row, then
// Unexcite, then — after the BLCP is solved — ApplyImpulse followed by a
// second Excite that marks the constraint active again.
type Constraint interface {
	// Dimension returns d >= 1, the number of rows/columns this
	// constraint contributes.
	Dimension() int

	// GetInformation fills rows.Lo, rows.Hi, rows.B, rows.FIndex and
	// zeroes rows.W, given the step's inverse time step. Called exactly
	// once per step, before any impulse probing on this constraint.
	GetInformation(rows RowSlice, invTimeStep float64)

	// Excite/Unexcite bracket the impulse-probe phase for this
	// constraint.
	Excite()
	Unexcite()

	// ApplyUnitImpulse perturbs the articulated-body velocities by the
	// effect of a unit impulse on row k (0 <= k < Dimension()).
	ApplyUnitImpulse(k int)

	// GetVelocityChange reads the velocity response of THIS constraint's
	// rows to the most recent ApplyUnitImpulse call (on any constraint),
	// filling Dimension() consecutive entries of dest. useCFM is true
	// only when filling the diagonal block (this constraint probing
	// itself) — it adds a small regularizer to improve conditioning.
	GetVelocityChange(dest []float64, useCFM bool)

	// ApplyImpulse applies the final solved impulses (length
	// Dimension()) to the articulated bodies.
	ApplyImpulse(values []float64)
}
