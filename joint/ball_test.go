// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package joint

import (
	"testing"

	"github.com/cpmech/gosl/chk"
	"github.com/go-gl/mathgl/mgl64"
)

// TestExpLogRoundTrip verifies Log(Exp(q)) == q for a range of rotation
// vectors, including the small-angle branch.
func TestExpLogRoundTrip(tst *testing.T) {
	chk.PrintTitle("joint: Exp/Log round trip")

	cases := []mgl64.Vec3{
		{0, 0, 0},
		{1e-12, -1e-12, 2e-12},
		{0.3, -0.2, 0.1},
		{1.5, 0, 0},
		{0.1, 2.9, -0.5},
	}
	for _, q := range cases {
		r := Exp(q)
		got := Log(r)
		chk.Vector(tst, "Log(Exp(q))", 1e-9, []float64{got[0], got[1], got[2]}, []float64{q[0], q[1], q[2]})
	}
}

// TestExpIsOrthogonal verifies Exp(q) is a rotation matrix: R^T R = I and
// det(R) = 1.
func TestExpIsOrthogonal(tst *testing.T) {
	chk.PrintTitle("joint: Exp(q) is a proper rotation")

	q := mgl64.Vec3{0.4, -0.7, 0.2}
	r := Exp(q)
	rtr := r.Transpose().Mul3(r)
	ident := mgl64.Ident3()
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			chk.Scalar(tst, "R^T R", 1e-9, rtr.At(i, j), ident.At(i, j))
		}
	}
	chk.Scalar(tst, "det(R)", 1e-9, r.Det(), 1)
}

// TestIntegratePositionsMatchesComposition is spec.md property 8: for a
// given q and velocity v, Exp of the integrator's q_next matches the
// composition R(q)*Exp(S(q)*v*dt), S being the right Jacobian, to 1e-10.
func TestIntegratePositionsMatchesComposition(tst *testing.T) {
	chk.PrintTitle("joint: IntegratePositions composition round-trip")

	j := &BallJoint{}
	q := mgl64.Vec3{0.2, -0.1, 0.05}
	v := mgl64.Vec3{0.1, 0.2, -0.3}
	dt := 0.01

	qNext := j.IntegratePositions(q, v, dt)
	rNext := Exp(qNext)

	w := RightJacobian(q).Mul3x1(v).Mul(dt)
	expected := Exp(q).Mul3(Exp(w))

	for i := 0; i < 3; i++ {
		for k := 0; k < 3; k++ {
			chk.Scalar(tst, "R_next", 1e-10, rNext.At(i, k), expected.At(i, k))
		}
	}
}

// TestIntegratePositionsExplicitZeroVelocityIsIdentity checks the
// degenerate case v=0: the position must not change.
func TestIntegratePositionsExplicitZeroVelocityIsIdentity(tst *testing.T) {
	chk.PrintTitle("joint: IntegratePositions with zero velocity is a no-op")

	j := &BallJoint{}
	q := mgl64.Vec3{0.3, 0.1, -0.2}
	qNext := j.IntegratePositions(q, mgl64.Vec3{0, 0, 0}, 0.02)
	chk.Vector(tst, "q_next", 1e-12, []float64{qNext[0], qNext[1], qNext[2]}, []float64{q[0], q[1], q[2]})
}

// TestPosPosJacobianMatchesFiniteDifference is spec.md section 4.7/8.8:
// the analytic first-order Jacobian must match the central-difference
// cross-check to 1e-5 at a small integration step.
func TestPosPosJacobianMatchesFiniteDifference(tst *testing.T) {
	chk.PrintTitle("joint: PosPosJacobian matches finite-difference cross-check")

	j := &BallJoint{}
	q := mgl64.Vec3{0.15, -0.25, 0.05}
	v := mgl64.Vec3{0.2, -0.1, 0.3}
	dt := 1e-3
	h := 1e-6

	analytic := j.PosPosJacobian(q, v, dt)
	fd := j.FiniteDifferencePosPosJacobian(q, v, dt, h)
	for i := 0; i < 3; i++ {
		for k := 0; k < 3; k++ {
			chk.Scalar(tst, "PosPosJacobian", 1e-5, analytic.At(i, k), fd.At(i, k))
		}
	}
}

// TestVelPosJacobianMatchesFiniteDifference mirrors
// TestPosPosJacobianMatchesFiniteDifference for d(q_next)/dv.
func TestVelPosJacobianMatchesFiniteDifference(tst *testing.T) {
	chk.PrintTitle("joint: VelPosJacobian matches finite-difference cross-check")

	j := &BallJoint{}
	q := mgl64.Vec3{-0.1, 0.2, 0.05}
	v := mgl64.Vec3{0.05, -0.2, 0.1}
	dt := 1e-3
	h := 1e-6

	analytic := j.VelPosJacobian(q, v, dt)
	fd := j.FiniteDifferenceVelPosJacobian(q, v, dt, h)
	for i := 0; i < 3; i++ {
		for k := 0; k < 3; k++ {
			chk.Scalar(tst, "VelPosJacobian", 1e-5, analytic.At(i, k), fd.At(i, k))
		}
	}
}

// TestRightJacobianInverseRoundTrip checks Jr(q) * Jr(q)^-1 == I.
func TestRightJacobianInverseRoundTrip(tst *testing.T) {
	chk.PrintTitle("joint: RightJacobian * RightJacobianInverse == I")

	cases := []mgl64.Vec3{{0, 0, 0}, {1e-12, 0, 0}, {0.3, -0.2, 0.6}}
	for _, q := range cases {
		jr := RightJacobian(q)
		jrInv := RightJacobianInverse(q)
		prod := jr.Mul3(jrInv)
		ident := mgl64.Ident3()
		for i := 0; i < 3; i++ {
			for k := 0; k < 3; k++ {
				chk.Scalar(tst, "Jr*Jr^-1", 1e-6, prod.At(i, k), ident.At(i, k))
			}
		}
	}
}

// TestSkewUnskewRoundTrip verifies Unskew(Skew(v)) == v and that Skew(v)
// acting on u reproduces the cross product.
func TestSkewUnskewRoundTrip(tst *testing.T) {
	chk.PrintTitle("joint: Skew/Unskew round trip and cross-product identity")

	v := mgl64.Vec3{0.5, -1.2, 2.3}
	back := Unskew(Skew(v))
	chk.Vector(tst, "Unskew(Skew(v))", 1e-12, []float64{back[0], back[1], back[2]}, []float64{v[0], v[1], v[2]})

	u := mgl64.Vec3{1, 0, 0}
	cross := v.Cross(u)
	viaSkew := Skew(v).Mul3x1(u)
	chk.Vector(tst, "Skew(v)*u", 1e-12, []float64{viaSkew[0], viaSkew[1], viaSkew[2]}, []float64{cross[0], cross[1], cross[2]})
}

// TestGetRelativeJacobianShape verifies the 6x3 layout documented in
// spec.md section 4.7: rows 0-2 rotational (identity), rows 3-5
// translational coupling via -skew(ChildOffset).
func TestGetRelativeJacobianShape(tst *testing.T) {
	chk.PrintTitle("joint: GetRelativeJacobian 6x3 layout")

	j := &BallJoint{ChildOffset: mgl64.Vec3{1, 0, 0}}
	jac := j.GetRelativeJacobian(mgl64.Vec3{0, 0, 0})
	if len(jac) != 6 {
		tst.Fatalf("GetRelativeJacobian returned %d rows, want 6", len(jac))
	}
	for _, row := range jac {
		if len(row) != 3 {
			tst.Fatalf("GetRelativeJacobian row has %d columns, want 3", len(row))
		}
	}
	chk.Vector(tst, "rotational row 0", 1e-12, jac[0], []float64{1, 0, 0})
	chk.Vector(tst, "rotational row 1", 1e-12, jac[1], []float64{0, 1, 0})
	chk.Vector(tst, "rotational row 2", 1e-12, jac[2], []float64{0, 0, 1})
	// -skew([1,0,0]) has a zero first column and couples rows 1,2 only.
	chk.Scalar(tst, "translational row 3 col 0", 1e-12, jac[3][0], 0)
}

// TestPositionDifferenceIsZeroForEqualPositions is a sanity check that
// PositionDifference(q,q) == 0.
func TestPositionDifferenceIsZeroForEqualPositions(tst *testing.T) {
	chk.PrintTitle("joint: PositionDifference(q,q) == 0")

	q := mgl64.Vec3{0.3, -0.4, 0.1}
	d := PositionDifference(q, q)
	chk.Vector(tst, "PositionDifference(q,q)", 1e-9, []float64{d[0], d[1], d[2]}, []float64{0, 0, 0})
}

func TestWorldScrewAxisIdentityAtZero(tst *testing.T) {
	chk.PrintTitle("joint: WorldScrewAxis at q=0 is the local axis")

	axis := mgl64.Vec3{0, 1, 0}
	world := WorldScrewAxis(mgl64.Vec3{0, 0, 0}, axis)
	chk.Vector(tst, "world screw axis", 1e-12, []float64{world[0], world[1], world[2]}, []float64{axis[0], axis[1], axis[2]})
}
