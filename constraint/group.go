// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package constraint

import "github.com/cpmech/rbdlcp/gradient"

// Group is an ordered list of constraints processed together in one BLCP
// solve. Offset bookkeeping mirrors
// fem.Domain's Ny/Nlam equation-numbering fields: each constraint is
// assigned a contiguous, strictly increasing block of global rows in
// iteration order.
type Group struct {
	Constraints []Constraint

	// Collector is the optional gradient/warm-start capability attached
	// to this group. Nil disables warm starting.
	Collector gradient.Collector

	offset []int // length len(Constraints)+1; offset[len(Constraints)] == n
}

// NewGroup returns a Group over the given constraints, in iteration order.
// Offsets are computed lazily by Assemble/Dimension.
func NewGroup(constraints []Constraint) *Group {
	return &Group{Constraints: constraints}
}

// computeOffsets derives offset[] from each constraint's Dimension(), so
// that offset[0]=0, the sequence is strictly increasing, and offset[N]=n.
func (g *Group) computeOffsets() {
	g.offset = make([]int, len(g.Constraints)+1)
	for i, c := range g.Constraints {
		g.offset[i+1] = g.offset[i] + c.Dimension()
	}
}

// Recompute forces offset[] to be rebuilt from the current Constraints
// slice. The assembler calls this unconditionally at the start of every
// step since the group's membership may change
// between steps.
func (g *Group) Recompute() {
	g.computeOffsets()
}

// Offset returns the global starting row of constraint i.
func (g *Group) Offset(i int) int {
	if g.offset == nil {
		g.computeOffsets()
	}
	return g.offset[i]
}

// Dimension returns n = sum of every constraint's Dimension().
func (g *Group) Dimension() int {
	if g.offset == nil {
		g.computeOffsets()
	}
	return g.offset[len(g.Constraints)]
}
