// geometry.go - quaternion composition and rotation.
//
// The renderer's axis convention is +y-left, not the textbook
// right-handed Hamilton convention, so both operands' j components are
// negated before the product and the result's j is negated again
// afterward. Every caller must go through Product/Rotate rather than
// reimplementing Hamilton multiplication directly, or the sign
// convention silently breaks.

package main

import "math"

// Quaternion is {r,i,j,k} with r the scalar part.
type Quaternion struct {
	R, I, J, K float64
}

// IdentityQuaternion performs no rotation.
var IdentityQuaternion = Quaternion{R: 1}

// Vec3 is a 3-vector in camera/ICRS space.
type Vec3 struct {
	X, Y, Z float64
}

// Product computes q1*q2 honoring the +y-left convention: j of both
// inputs is negated before the Hamilton product, and j of the result is
// negated again after.
func Product(q1, q2 Quaternion) Quaternion {
	a := Quaternion{q1.R, q1.I, -q1.J, q1.K}
	b := Quaternion{q2.R, q2.I, -q2.J, q2.K}

	r := a.R*b.R - a.I*b.I - a.J*b.J - a.K*b.K
	i := a.R*b.I + a.I*b.R + a.J*b.K - a.K*b.J
	j := a.R*b.J - a.I*b.K + a.J*b.R + a.K*b.I
	k := a.R*b.K + a.I*b.J - a.J*b.I + a.K*b.R

	return Quaternion{R: r, I: i, J: -j, K: k}
}

// conjugate returns q's inverse under the +y-left convention, i.e. the
// conjugate (sufficient since target_rotation is always unit length).
func conjugate(q Quaternion) Quaternion {
	return Quaternion{R: q.R, I: -q.I, J: -q.J, K: -q.K}
}

// Rotate rotates v by q via conjugation q*v*q^-1, under the same
// j-sign convention as Product.
func Rotate(q Quaternion, v Vec3) Vec3 {
	vq := Quaternion{R: 0, I: v.X, J: v.Y, K: v.Z}
	rq := Product(Product(q, vq), conjugate(q))
	return Vec3{X: rq.I, Y: rq.J, Z: rq.K}
}

// quaternionFromPlaneAngle builds the unit quaternion for a rotation of
// angleRad radians about the axis (iComp, jComp, kComp), i.e. a rotation
// in the plane orthogonal to that axis. Used to
// build the yaw/pitch/roll/pan/tilt component rotations that make up
// target_rotation.
func quaternionFromPlaneAngle(angleRad float64, iComp, jComp, kComp float64) Quaternion {
	half := angleRad / 2
	s := math.Sin(half)
	return Quaternion{R: math.Cos(half), I: iComp * s, J: jComp * s, K: kComp * s}
}

// yawXY builds a rotation of angleRad in the x-y plane (azimuth).
func yawXY(angleRad float64) Quaternion { return quaternionFromPlaneAngle(angleRad, 0, 0, 1) }

// pitchXZ builds a rotation of angleRad in the x-z plane (elevation).
func pitchXZ(angleRad float64) Quaternion { return quaternionFromPlaneAngle(angleRad, 0, 1, 0) }

// rollYZ builds a rotation of angleRad in the y-z plane (camera roll).
func rollYZ(angleRad float64) Quaternion { return quaternionFromPlaneAngle(angleRad, 1, 0, 0) }

// TargetRotation precomputes the single composite rotation applied to
// every star, from yaw-to-target, pitch-to-target, camera roll, and
// optional pan/tilt.
func TargetRotation(cam, target Vec3, rotationDeg, panDeg, tiltDeg float64) Quaternion {
	dx := target.X - cam.X
	dy := target.Y - cam.Y
	dz := target.Z - cam.Z

	yaw := math.Atan2(dy, dx)
	horizDist := math.Hypot(dx, dy)
	pitch := math.Atan2(dz, horizDist)

	q := yawXY(yaw)
	q = Product(pitchXZ(-pitch), q)
	q = Product(rollYZ(degToRad(rotationDeg)), q)
	if panDeg != 0 {
		q = Product(yawXY(degToRad(panDeg)), q)
	}
	if tiltDeg != 0 {
		q = Product(pitchXZ(degToRad(tiltDeg)), q)
	}
	return q
}

func degToRad(d float64) float64 { return d * math.Pi / 180 }
