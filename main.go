// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command rbdlcp is a small demonstration driver for the BLCP
// constraint-resolution core: it assembles and solves the "single
// unilateral contact" scenario of spec.md section 8 and prints the
// resulting impulse.
package main

import (
	"flag"
	"math"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
	"go.uber.org/zap"

	"github.com/cpmech/rbdlcp/blcp"
	"github.com/cpmech/rbdlcp/constraint"
)

// contactConstraint is a minimal Constraint modeling one
// frictionless unilateral contact with relative approach velocity
// approachVel and effective inverse mass invMass; it has no articulated
// body behind it, so ApplyUnitImpulse/ApplyImpulse only bookkeep the
// values a real body dynamics engine would instead apply.
type contactConstraint struct {
	invMass     float64
	approachVel float64
	lastImpulse float64
}

func (c *contactConstraint) Dimension() int { return 1 }

func (c *contactConstraint) GetInformation(rows constraint.RowSlice, invTimeStep float64) {
	rows.Lo[0] = 0
	rows.Hi[0] = math.Inf(1)
	rows.B[0] = c.approachVel
	rows.FIndex[0] = -1
	rows.W[0] = 0
}

func (c *contactConstraint) Excite()                {}
func (c *contactConstraint) Unexcite()              {}
func (c *contactConstraint) ApplyUnitImpulse(k int) {}

func (c *contactConstraint) GetVelocityChange(dest []float64, useCFM bool) {
	dest[0] = c.invMass
}

func (c *contactConstraint) ApplyImpulse(values []float64) {
	c.lastImpulse = values[0]
}

func main() {
	flag.Parse()

	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	group := constraint.NewGroup([]constraint.Constraint{
		&contactConstraint{invMass: 2, approachVel: -1},
	})

	orch := constraint.NewOrchestrator(constraint.Options{
		TimeStep:  1.0 / 60.0,
		Primary:   blcp.NewPivotSolver(),
		Secondary: blcp.NewPGSSolver(blcp.DefaultPGSOptions()),
		Logger:    logger,
	})

	if err := orch.Step(group); err != nil {
		chk.Panic("BLCP step failed: %v\n", err)
	}

	c := group.Constraints[0].(*contactConstraint)
	io.Pf("single unilateral contact: impulse = %.6f (expected 0.5)\n", c.lastImpulse)
}
