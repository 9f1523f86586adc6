package utils

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"
)

// Matrices are stored as mgl64.Mat4 (column-major, column vectors). A matrix
// written in the row-vector convention (p' = p*M, translation in the fourth
// row) has exactly the same memory layout, so scene matrices are read
// element by element without transposing.

const Accuracy = 1e-6

var (
	ErrSingularMatrix   = errors.New("matrix is not invertible")
	ErrDegenerateVector = errors.New("vector length is too small")
)

var AxisY = mgl64.Vec3{0, 1, 0}

func MatrixFromRows(rows [4][4]float64) mgl64.Mat4 {
	var m mgl64.Mat4
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			m[i*4+j] = rows[i][j]
		}
	}
	return m
}

func MatrixRows(m mgl64.Mat4) (rows [4][4]float64) {
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			rows[i][j] = m[i*4+j]
		}
	}
	return rows
}

// MatrixMultiply returns the transformation that applies b first and a second
func MatrixMultiply(a, b mgl64.Mat4) mgl64.Mat4 {
	return a.Mul4(b)
}

// MatrixInvert inverts an affine matrix. It fails when the determinant of the
// rotational part is zero or not a number.
func MatrixInvert(m mgl64.Mat4) (mgl64.Mat4, error) {
	r3 := m.Mat3()
	det := r3.Det()
	if det == 0 || math.IsNaN(det) || math.IsInf(det, 0) {
		return mgl64.Ident4(), ErrSingularMatrix
	}
	r := r3.Inv()
	t := r.Mul3x1(m.Col(3).Vec3()).Mul(-1)
	return mgl64.Mat4{
		r[0], r[1], r[2], 0,
		r[3], r[4], r[5], 0,
		r[6], r[7], r[8], 0,
		t[0], t[1], t[2], 1,
	}, nil
}

func MatrixTranspose(m mgl64.Mat4) mgl64.Mat4 {
	return m.Transpose()
}

// MatrixRotate builds rotation around normalized axis (radians)
func MatrixRotate(axis mgl64.Vec3, angle float64) mgl64.Mat4 {
	return mgl64.HomogRotate3D(angle, axis)
}

func MatrixTranslate(v mgl64.Vec3) mgl64.Mat4 {
	return mgl64.Translate3D(v[0], v[1], v[2])
}

func PointByMatrix(p mgl64.Vec3, m mgl64.Mat4) mgl64.Vec3 {
	return m.Mul4x1(p.Vec4(1)).Vec3()
}

// VectorByMatrix ignores translation
func VectorByMatrix(v mgl64.Vec3, m mgl64.Mat4) mgl64.Vec3 {
	return m.Mul4x1(v.Vec4(0)).Vec3()
}

// VectorNormalize returns (0, len, 0) together with ErrDegenerateVector for
// vectors not longer than Accuracy.
func VectorNormalize(v mgl64.Vec3) (mgl64.Vec3, error) {
	l := v.Len()
	if l <= Accuracy || math.IsNaN(l) {
		return mgl64.Vec3{0, l, 0}, ErrDegenerateVector
	}
	return v.Mul(1 / l), nil
}

// NormalByMatrix transforms normal with inverse-transpose of m and normalizes it
func NormalByMatrix(n mgl64.Vec3, m mgl64.Mat4) (mgl64.Vec3, error) {
	inv, err := MatrixInvert(m)
	if err != nil {
		return mgl64.Vec3{}, err
	}
	return VectorNormalize(VectorByMatrix(n, MatrixTranspose(inv)))
}

// BoneToMatrix converts bone rest state (head, tail and roll) into rotation
// matrix whose Y axis points from head to tail.
func BoneToMatrix(head, tail mgl64.Vec3, roll float64) (mgl64.Mat4, error) {
	nor, err := VectorNormalize(tail.Sub(head))
	if err != nil {
		return mgl64.Ident4(), errors.Wrapf(err, "bone head %v equals tail %v", head, tail)
	}

	var bMatrix mgl64.Mat4
	axis := AxisY.Cross(nor)
	if axis.Dot(axis) > 1e-13 {
		theta := math.Acos(mgl64.Clamp(AxisY.Dot(nor), -1, 1))
		bMatrix = MatrixRotate(axis.Normalize(), theta)
	} else {
		// nor is parallel to Y, same direction or opposite
		updown := 1.0
		if AxisY.Dot(nor) <= 0 {
			updown = -1.0
		}
		bMatrix = mgl64.Diag4(mgl64.Vec4{updown, updown, 1, 1})
	}

	return MatrixMultiply(MatrixRotate(nor, roll), bMatrix), nil
}

// RotationQuat extracts unit quaternion from rotation part of m.
// Axis scale is removed before conversion.
func RotationQuat(m mgl64.Mat4) (mgl64.Quat, error) {
	var r mgl64.Mat4
	for col := 0; col < 3; col++ {
		c, err := VectorNormalize(m.Col(col).Vec3())
		if err != nil {
			return mgl64.QuatIdent(), errors.Wrapf(err, "column %d", col)
		}
		r.SetCol(col, c.Vec4(0))
	}
	r[15] = 1
	q := mgl64.Mat4ToQuat(r)
	if l := q.Len(); l <= Accuracy || math.IsNaN(l) {
		return mgl64.QuatIdent(), ErrDegenerateVector
	}
	return q.Normalize(), nil
}

// QuatAngleAxis returns angle in radians. Identity rotation gets X axis.
func QuatAngleAxis(q mgl64.Quat) (float64, mgl64.Vec3) {
	if l := q.Len(); l > Accuracy {
		q = q.Scale(1 / l)
	} else {
		return 0, mgl64.Vec3{1, 0, 0}
	}
	angle := 2 * math.Acos(mgl64.Clamp(q.W, -1, 1))
	s := math.Sqrt(math.Max(0, 1-q.W*q.W))
	if s < Accuracy {
		return 0, mgl64.Vec3{1, 0, 0}
	}
	return angle, q.V.Mul(1 / s)
}

func TransformationMatrix(scale, rotX, rotY, rotZ float64) mgl64.Mat4 {
	rx := mgl64.HomogRotate3DX(mgl64.DegToRad(rotX))
	ry := mgl64.HomogRotate3DY(mgl64.DegToRad(rotY))
	rz := mgl64.HomogRotate3DZ(mgl64.DegToRad(rotZ))
	s := mgl64.Scale3D(scale, scale, scale)
	// rotation order: x, y, z, then uniform scale
	return MatrixMultiply(s, MatrixMultiply(rz, MatrixMultiply(ry, rx)))
}

func Clamp01(v float64) float64 {
	return mgl64.Clamp(v, 0, 1)
}
