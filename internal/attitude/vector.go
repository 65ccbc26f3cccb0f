package attitude

// Vector3 is a body- or earth-frame 3-vector, used for velocity rotation
// during the back-transition speed exit check (spec §4.1).
type Vector3 struct {
	X, Y, Z float64
}

// dcm is a 3x3 direction cosine matrix, row-major, adapted from the
// teacher's generic Matrix type (matrix.go) which was sized 2x2/2x1 for
// its Kalman filter. Only the operations the rotation math needs are
// carried over: construction, transpose and matrix-vector multiply.
type dcm [3][3]float64

func (m dcm) transpose() dcm {
	var t dcm
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			t[j][i] = m[i][j]
		}
	}
	return t
}

func (m dcm) mulVec(v Vector3) Vector3 {
	return Vector3{
		X: m[0][0]*v.X + m[0][1]*v.Y + m[0][2]*v.Z,
		Y: m[1][0]*v.X + m[1][1]*v.Y + m[1][2]*v.Z,
		Z: m[2][0]*v.X + m[2][1]*v.Y + m[2][2]*v.Z,
	}
}
