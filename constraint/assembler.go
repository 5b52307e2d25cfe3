// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package constraint

import (
	"github.com/cpmech/gosl/chk"

	"github.com/cpmech/rbdlcp/blcp"
)

// SymmetryTolerance is the debug-build assertion tolerance (absolute) for
// the assembled matrix.
const SymmetryTolerance = 1e-6

// Assemble builds the dense (A, b, lo, hi, findex) BLCP problem for one
// step from group:
//
//  1. compute n and per-constraint offsets; n == 0 is a no-op.
//  2. resize/zero workspace buffers.
//  3. for each constraint: getInformation, register with the gradient
//     collector (if attached), excite, probe every row (diagonal block
//     with CFM, later constraints' blocks without), mirror into the
//     already-filled columns, unexcite.
//
// Each constraint's own diagonal block is probed in full; of the blocks
// coupling two different constraints, only the upper triangle is queried
// via unit-impulse probing — the lower triangle is copied from it. This is
// the single biggest
// performance lever in the assembler: without it,
// N^2 probe calls would be needed instead of ~N^2/2.
//
// debug, when true, performs the O(n^2) symmetry assertions and panics on
// violation; it is expensive and meant for development builds only.
func Assemble(group *Group, ws *blcp.Workspace, invTimeStep float64, debug bool) (xResized bool, err error) {
	group.Recompute()
	n := group.Dimension()
	if n == 0 {
		return false, nil
	}

	xResized = ws.Resize(n)

	for i, c := range group.Constraints {
		d := c.Dimension()
		off := group.Offset(i)

		rows := RowSlice{
			Lo:     ws.Lo[off : off+d],
			Hi:     ws.Hi[off : off+d],
			B:      ws.B[off : off+d],
			W:      ws.W[off : off+d],
			FIndex: ws.FIndex[off : off+d],
		}
		c.GetInformation(rows, invTimeStep)

		if group.Collector != nil {
			group.Collector.RegisterConstraint(i, d)
		}

		c.Excite()
		for k := 0; k < d; k++ {
			idx := off + k

			// rebase this row's friction index from local to global.
			if ws.FIndex[idx] >= 0 {
				ws.FIndex[idx] += off
			}

			c.ApplyUnitImpulse(k)

			// diagonal block: this constraint observing its own rows, CFM on.
			c.GetVelocityChange(ws.A.Row(idx)[off:off+d], true)

			// later constraints' blocks, CFM off.
			for m := i + 1; m < len(group.Constraints); m++ {
				dm := group.Constraints[m].Dimension()
				offm := group.Offset(m)
				group.Constraints[m].GetVelocityChange(ws.A.Row(idx)[offm:offm+dm], false)
			}

			// mirror into every already-closed earlier column.
			for m := 0; m < i; m++ {
				dm := group.Constraints[m].Dimension()
				offm := group.Offset(m)
				for l := 0; l < dm; l++ {
					ws.A.Set(idx, offm+l, ws.A.Get(offm+l, idx))
				}
			}
		}
		c.Unexcite()

		if debug {
			if worst, ok := ws.A.CheckSymmetricBlock(off+d, SymmetryTolerance); !ok {
				chk.Panic("blcp assembler: symmetry violated after constraint %d (worst |A[i,j]-A[j,i]|=%g > %g)", i, worst, SymmetryTolerance)
			}
		}
	}

	return xResized, nil
}
