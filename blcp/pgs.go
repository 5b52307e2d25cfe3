// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package blcp

import (
	"math"
	"math/rand"
)

// PGSOptions configures the secondary (Projected Gauss-Seidel) solver.
// DefaultHyperAccurate is the "hyper-accurate" preset
// used only for finite-difference gradient testing: 1000 iterations,
// 1e-10 outer tolerance, 1e-8 inner tolerance, 1e-8 complementarity
// tolerance, no random permutation.
type PGSOptions struct {
	MaxIterations            int
	OuterTolerance           float64
	InnerTolerance           float64
	ComplementarityTolerance float64
	RandomPermutation        bool
	CFM                      bool
	CFMEpsilon               float64
}

// DefaultHyperAccurate returns the spec.md section 6 "hyper-accurate" PGS
// preset.
func DefaultHyperAccurate() PGSOptions {
	return PGSOptions{
		MaxIterations:            1000,
		OuterTolerance:           1e-10,
		InnerTolerance:           1e-8,
		ComplementarityTolerance: 1e-8,
		RandomPermutation:        false,
	}
}

// DefaultPGSOptions returns a looser, step-rate-friendly preset suitable
// for use as the per-step fallback (as opposed to DefaultHyperAccurate,
// which is reserved for offline gradient checks).
func DefaultPGSOptions() PGSOptions {
	return PGSOptions{
		MaxIterations:            100,
		OuterTolerance:           1e-6,
		InnerTolerance:           1e-6,
		ComplementarityTolerance: 1e-6,
		RandomPermutation:        false,
	}
}

// safetyFloor bounds the smallest diagonal magnitude the PGS sweep will
// divide by, independent of the CFM toggle: a rank-deficient or
// isolated-zero-row system must never produce a NaN here (spec.md
// property 5, "fallback monotonicity").
const safetyFloor = 1e-12

// PGSSolver is the secondary BLCP solver: a Projected
// Gauss-Seidel iteration over the boxed mixed LCP, reading the live
// friction-coupled bound (|x[findex[k]]|) on every sweep rather than a
// value frozen at the start of the solve (spec.md section 9, "Friction
// coupling").
type PGSSolver struct {
	Opts PGSOptions
	rng  *rand.Rand
}

// NewPGSSolver returns a PGSSolver with the given options.
func NewPGSSolver(opts PGSOptions) *PGSSolver {
	return &PGSSolver{Opts: opts, rng: rand.New(rand.NewSource(1))}
}

func (s *PGSSolver) Name() string { return "pgs" }

// Solve implements Solver. It always returns true, n == 0 included: PGS is
// the fallback of last resort. It does not check its inputs for NaN, so a
// NaN already present in A, b, the bounds or the starting x can reach the
// returned x.
func (s *PGSSolver) Solve(n int, a *Matrix, x, b []float64, nub int, lo, hi []float64, findex []int, earlyTermination bool) bool {
	if n == 0 {
		return true
	}

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}

	maxIter := s.Opts.MaxIterations
	if maxIter <= 0 {
		maxIter = 100
	}
	outerTol := s.Opts.OuterTolerance
	if outerTol <= 0 {
		outerTol = 1e-6
	}

	for iter := 0; iter < maxIter; iter++ {
		if s.Opts.RandomPermutation {
			s.rng.Shuffle(n, func(i, j int) { order[i], order[j] = order[j], order[i] })
		}

		maxChange := 0.0
		for _, i := range order {
			if i < nub {
				// unbounded row: solve exactly, no projection
				row := a.Row(i)
				acc := b[i]
				for j := 0; j < n; j++ {
					if j != i {
						acc += row[j] * x[j]
					}
				}
				aii := diagonalOf(a, i, s.Opts)
				xNew := -acc / aii
				maxChange = math.Max(maxChange, math.Abs(xNew-x[i]))
				x[i] = xNew
				continue
			}

			row := a.Row(i)
			acc := b[i]
			for j := 0; j < n; j++ {
				if j != i {
					acc += row[j] * x[j]
				}
			}
			aii := diagonalOf(a, i, s.Opts)
			xNew := -acc / aii

			loI, hiI := effectiveLo(i, lo, x, findex), effectiveHi(i, hi, x, findex)
			if xNew < loI {
				xNew = loI
			} else if xNew > hiI {
				xNew = hiI
			}

			maxChange = math.Max(maxChange, math.Abs(xNew-x[i]))
			x[i] = xNew
		}

		if maxChange < outerTol {
			break
		}
	}
	return true
}

func diagonalOf(a *Matrix, i int, opts PGSOptions) float64 {
	aii := a.Get(i, i)
	if opts.CFM {
		eps := opts.CFMEpsilon
		if eps <= 0 {
			eps = 1e-10
		}
		aii += eps
	}
	if math.Abs(aii) < safetyFloor {
		if aii >= 0 {
			return safetyFloor
		}
		return -safetyFloor
	}
	return aii
}
