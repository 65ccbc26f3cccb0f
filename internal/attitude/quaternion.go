// Package attitude implements the Euler/quaternion/DCM math the transition
// core needs: building q_d from a body-frame Euler setpoint, and rotating
// earth-frame velocity into the body frame for the back-transition speed
// exit check (spec §4.1, §9).
package attitude

import "math"

// Quaternion is a Hamilton quaternion (w, x, y, z) representing a rotation
// from the body frame to the earth frame, matching vehicle_attitude.q and
// vehicle_attitude_setpoint.q_d; its Inverse rotates earth-frame vectors
// into the body frame.
type Quaternion struct {
	W, X, Y, Z float64
}

// Euler is a body-frame Euler triple in radians.
type Euler struct {
	Roll, Pitch, Yaw float64
}

// EulerToQuaternion builds q_d from a body-frame Euler setpoint using the
// intrinsic Z-Y-X convention (yaw, then pitch, then roll), the convention
// the external attitude controller expects per the design note in §9.
func EulerToQuaternion(e Euler) Quaternion {
	cr, sr := math.Cos(e.Roll*0.5), math.Sin(e.Roll*0.5)
	cp, sp := math.Cos(e.Pitch*0.5), math.Sin(e.Pitch*0.5)
	cy, sy := math.Cos(e.Yaw*0.5), math.Sin(e.Yaw*0.5)

	return Quaternion{
		W: cr*cp*cy + sr*sp*sy,
		X: sr*cp*cy - cr*sp*sy,
		Y: cr*sp*cy + sr*cp*sy,
		Z: cr*cp*sy - sr*sp*cy,
	}
}

// ToEuler recovers the intrinsic Z-Y-X Euler triple from q, the inverse of
// EulerToQuaternion. Property-tested for round-trip fidelity over a dense
// sample of Euler triples away from the pitch = +/-90deg gimbal lock.
func (q Quaternion) ToEuler() Euler {
	sinrCosp := 2 * (q.W*q.X + q.Y*q.Z)
	cosrCosp := 1 - 2*(q.X*q.X+q.Y*q.Y)
	roll := math.Atan2(sinrCosp, cosrCosp)

	sinp := 2 * (q.W*q.Y - q.Z*q.X)
	var pitch float64
	if math.Abs(sinp) >= 1 {
		pitch = math.Copysign(math.Pi/2, sinp)
	} else {
		pitch = math.Asin(sinp)
	}

	sinyCosp := 2 * (q.W*q.Z + q.X*q.Y)
	cosyCosp := 1 - 2*(q.Y*q.Y+q.Z*q.Z)
	yaw := math.Atan2(sinyCosp, cosyCosp)

	return Euler{Roll: roll, Pitch: pitch, Yaw: yaw}
}

// Normalized returns q scaled to unit norm, guarding against a
// near-degenerate quaternion the way the estimator's SetAttitude does
// before it trusts a state estimate.
func (q Quaternion) Normalized() Quaternion {
	n := math.Sqrt(q.W*q.W + q.X*q.X + q.Y*q.Y + q.Z*q.Z)
	if n < 1e-9 {
		return Quaternion{W: 1}
	}
	inv := 1 / n
	return Quaternion{W: q.W * inv, X: q.X * inv, Y: q.Y * inv, Z: q.Z * inv}
}

// Inverse returns the inverse rotation. For a unit quaternion this is the
// conjugate; Normalized() is applied first so callers holding a slightly
// denormalized estimate still get a valid inverse.
func (q Quaternion) Inverse() Quaternion {
	u := q.Normalized()
	return Quaternion{W: u.W, X: -u.X, Y: -u.Y, Z: -u.Z}
}

// toDCM converts q into its equivalent direction cosine matrix.
func (q Quaternion) toDCM() dcm {
	u := q.Normalized()
	w, x, y, z := u.W, u.X, u.Y, u.Z

	return dcm{
		{1 - 2*(y*y+z*z), 2 * (x*y - w*z), 2 * (x*z + w*y)},
		{2 * (x*y + w*z), 1 - 2*(x*x+z*z), 2 * (y*z - w*x)},
		{2 * (x*z - w*y), 2 * (y*z + w*x), 1 - 2*(x*x+y*y)},
	}
}

// RotateVector rotates v by q, i.e. computes R(q) * v where R(q) is the
// direction cosine matrix of q. The back-transition speed exit check calls
// it on the attitude's Inverse to rotate earth-frame local-position
// velocity into the body frame.
func (q Quaternion) RotateVector(v Vector3) Vector3 {
	return q.toDCM().mulVec(v)
}
