package attitude

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEulerQuaternionRoundTrip(t *testing.T) {
	const step = math.Pi / 9 // 20 degree steps
	for roll := -math.Pi + 0.01; roll < math.Pi; roll += step {
		for pitch := -math.Pi/2 + 0.05; pitch < math.Pi/2-0.05; pitch += step {
			for yaw := -math.Pi + 0.01; yaw < math.Pi; yaw += step {
				in := Euler{Roll: roll, Pitch: pitch, Yaw: yaw}
				q := EulerToQuaternion(in)
				out := q.ToEuler()

				require.InDelta(t, in.Roll, out.Roll, 1e-6, "roll mismatch for %+v", in)
				require.InDelta(t, in.Pitch, out.Pitch, 1e-6, "pitch mismatch for %+v", in)
				require.InDelta(t, in.Yaw, out.Yaw, 1e-6, "yaw mismatch for %+v", in)
			}
		}
	}
}

func TestQuaternionInverseIsConjugateForUnitQuaternion(t *testing.T) {
	q := EulerToQuaternion(Euler{Roll: 0.3, Pitch: -0.2, Yaw: 1.1})
	inv := q.Inverse()

	assert.InDelta(t, q.W, inv.W, 1e-9)
	assert.InDelta(t, -q.X, inv.X, 1e-9)
	assert.InDelta(t, -q.Y, inv.Y, 1e-9)
	assert.InDelta(t, -q.Z, inv.Z, 1e-9)
}

func TestRotateVectorIdentity(t *testing.T) {
	identity := Quaternion{W: 1}
	v := Vector3{X: 1, Y: 2, Z: 3}
	got := identity.RotateVector(v)
	assert.InDelta(t, v.X, got.X, 1e-9)
	assert.InDelta(t, v.Y, got.Y, 1e-9)
	assert.InDelta(t, v.Z, got.Z, 1e-9)
}

func TestRotateVectorThenInverseRecoversOriginal(t *testing.T) {
	q := EulerToQuaternion(Euler{Roll: 0.4, Pitch: 0.1, Yaw: -0.9})
	v := Vector3{X: 5, Y: -2, Z: 1.5}

	rotated := q.RotateVector(v)
	back := q.Inverse().RotateVector(rotated)

	assert.InDelta(t, v.X, back.X, 1e-9)
	assert.InDelta(t, v.Y, back.Y, 1e-9)
	assert.InDelta(t, v.Z, back.Z, 1e-9)
}

func TestNormalizedHandlesDegenerateQuaternion(t *testing.T) {
	q := Quaternion{}
	n := q.Normalized()
	assert.Equal(t, Quaternion{W: 1}, n)
}
