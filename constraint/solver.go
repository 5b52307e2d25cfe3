// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package constraint

import (
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
	"go.uber.org/zap"

	"github.com/cpmech/rbdlcp/blcp"
	"github.com/cpmech/rbdlcp/gradient"
)

// Options configures an Orchestrator. TimeStep must be
// positive; its inverse is published to every constraint as
// GetInformation's invTimeStep argument. Primary is required — a nil Primary is
// a misconfiguration, not a fatal error: the orchestrator substitutes the
// pivoting solver and logs a warning. Secondary is
// optional; nil disables the backup/early-termination fallback path.
type Options struct {
	TimeStep  float64
	Primary   blcp.Solver
	Secondary blcp.Solver
	CFM       bool
	Logger    *zap.Logger
	Debug     bool
}

// Orchestrator is the BLCP per-step state machine: it drives
// the assembler, attempts the warm-start short-circuit, runs the primary
// solver (with early termination when a fallback exists), falls back to
// the secondary solver on failure, clamps any residual NaN, and applies
// the resulting impulses back to every constraint.
//
// Modeled on fem.Solver's pluggable-implementation shape
// (fem/solver.go) and fem.Domain's backup()/restore() pair
// (fem/domain.go) generalized from "FEM divergence control" to "LCP
// solver-failure control".
type Orchestrator struct {
	opts        Options
	ws          *blcp.Workspace
	invTimeStep float64
}

// NewOrchestrator validates opts and returns a ready Orchestrator.
func NewOrchestrator(opts Options) *Orchestrator {
	if opts.TimeStep <= 0 {
		chk.Panic("constraint: TimeStep must be positive, got %g", opts.TimeStep)
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Primary == nil {
		opts.Logger.Warn("no primary BLCP solver configured; substituting the pivoting solver")
		opts.Primary = blcp.NewPivotSolver()
	}
	if opts.Secondary != nil && samesolver(opts.Primary, opts.Secondary) {
		opts.Logger.Warn("primary and secondary BLCP solver must not be the same instance; disabling fallback")
		opts.Secondary = nil
	}
	return &Orchestrator{
		opts:        opts,
		ws:          blcp.NewWorkspace(),
		invTimeStep: 1.0 / opts.TimeStep,
	}
}

// samesolver reports whether a and b are the same solver instance. Go
// interface equality compares dynamic type and value, which for the
// pointer-receiver solvers in this package (PivotSolver, PGSSolver) is
// exactly reference identity.
func samesolver(a, b blcp.Solver) bool {
	return a == b
}

// Workspace exposes the underlying LCP workspace, mainly for tests that
// need to inspect the assembled matrix or the retained solution.
func (o *Orchestrator) Workspace() *blcp.Workspace { return o.ws }

// Step assembles group, solves the resulting BLCP, and applies the
// impulses back to every constraint. A zero-dimension group is a no-op.
func (o *Orchestrator) Step(group *Group) error {
	xResized, err := Assemble(group, o.ws, o.invTimeStep, o.opts.Debug)
	if err != nil {
		return err
	}
	n := group.Dimension()
	if n == 0 {
		return nil
	}

	// step 1: backup only matters if a fallback exists.
	if o.opts.Secondary != nil {
		o.ws.Backup()
	}

	// step 2: gradient-backup snapshot, if a collector is attached.
	var snap gradient.Snapshot
	if group.Collector != nil {
		snap = gradient.NewSnapshot(o.ws.A, o.ws.B, o.ws.Lo, o.ws.Hi, o.ws.FIndex)
	}

	// step 3: warm-start attempt (C6).
	warmStarted := false
	if group.Collector != nil && !xResized {
		prevX := append([]float64(nil), o.ws.X...)
		if group.Collector.ConstructMatrices(snap, prevX) {
			if group.Collector.OpportunisticallyStandardizeResults(snap, o.ws.X) {
				warmStarted = true
			}
		}
	}

	if !warmStarted {
		// step 4: primary solver, early termination enabled iff a
		// fallback exists.
		earlyTermination := o.opts.Secondary != nil
		ok := o.opts.Primary.Solve(n, o.ws.A, o.ws.X, o.ws.B, 0, o.ws.Lo, o.ws.Hi, o.ws.FIndex, earlyTermination)

		// step 5/6: any failure indicator restores and runs the secondary.
		if !ok || o.ws.HasNaN() {
			if o.opts.Secondary != nil {
				o.opts.Logger.Warn("primary BLCP solver failed; falling back to secondary", zap.String("primary", o.opts.Primary.Name()), zap.String("secondary", o.opts.Secondary.Name()))
				o.ws.Restore()
				o.opts.Secondary.Solve(n, o.ws.A, o.ws.X, o.ws.B, 0, o.ws.Lo, o.ws.Hi, o.ws.FIndex, false)
			}
		}

		// step 7: safety clamp.
		if o.ws.HasNaN() {
			o.opts.Logger.Error("BLCP solution contains NaN after primary and secondary attempts; zeroing impulses", zap.Int("n", n))
			o.ws.ZeroX()
		}

		// step 8: hand the final solution to the gradient collector.
		if group.Collector != nil {
			if group.Collector.ConstructMatrices(snap, o.ws.X) {
				group.Collector.OpportunisticallyStandardizeResults(snap, o.ws.X)
			}
			group.Collector.RegisterLCPResults(o.ws.X, snap)
		}
	}

	if o.opts.Debug {
		DumpDiagnostics(o.ws)
	}

	// step 9: apply impulses and re-excite every constraint.
	for i, c := range group.Constraints {
		d := c.Dimension()
		off := group.Offset(i)
		values := o.ws.X[off : off+d]
		c.ApplyImpulse(values)
		if group.Collector != nil {
			group.Collector.MeasureConstraintImpulse(i, values)
		}
		c.Excite()
	}
	return nil
}

// DumpDiagnostics prints A, b, w, x, findex and the complementarity check
// A*x vs b+w, colored the way gofem's
// debug_print_*_results helpers format field output (fem/fem.go).
func DumpDiagnostics(ws *blcp.Workspace) {
	n := ws.A.N()
	io.Pfyel("--- BLCP diagnostics (n=%d, |x|=%12.5e) ---\n", n, ws.XNorm())
	for i := 0; i < n; i++ {
		io.Pf("row %3d: findex=%3d lo=%12.5e hi=%12.5e b=%12.5e w=%12.5e x=%12.5e\n",
			i, ws.FIndex[i], ws.Lo[i], ws.Hi[i], ws.B[i], ws.W[i], ws.X[i])
	}
	for i := 0; i < n; i++ {
		row := ws.A.Row(i)
		acc := ws.B[i]
		for j := 0; j < n; j++ {
			acc += row[j] * ws.X[j]
		}
		io.Pfgrey("  (A*x+b)[%3d] = %12.5e  (should equal w=%12.5e)\n", i, acc, ws.W[i])
	}
}
