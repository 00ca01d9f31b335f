// Package spatialmath holds the small set of 3D vector and rotation helpers shared by
// the pose estimator, the simulator and the error report.
package spatialmath

import (
	"math"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/mat"
)

// R3VectorAlmostEqual compares two r3.Vector objects and returns if the all elementwise differences are less than epsilon.
func R3VectorAlmostEqual(a, b r3.Vector, epsilon float64) bool {
	return math.Abs(a.X-b.X) < epsilon && math.Abs(a.Y-b.Y) < epsilon && math.Abs(a.Z-b.Z) < epsilon
}

// AngleBetween returns the angle in radians between two vectors, in [0, pi].
// Zero-length vectors yield NaN.
func AngleBetween(a, b r3.Vector) float64 {
	n := a.Norm() * b.Norm()
	if n == 0 {
		return math.NaN()
	}
	cos := a.Dot(b) / n
	return math.Acos(math.Max(-1, math.Min(1, cos)))
}

// VecToR3 converts the first three entries of a gonum vector to an r3.Vector.
func VecToR3(v mat.Vector) r3.Vector {
	return r3.Vector{X: v.AtVec(0), Y: v.AtVec(1), Z: v.AtVec(2)}
}

// R3ToVec converts an r3.Vector to a gonum column vector.
func R3ToVec(v r3.Vector) *mat.VecDense {
	return mat.NewVecDense(3, []float64{v.X, v.Y, v.Z})
}

// Transform returns m*v for a 3x3 matrix m.
func Transform(m mat.Matrix, v r3.Vector) r3.Vector {
	var out mat.VecDense
	out.MulVec(m, R3ToVec(v))
	return VecToR3(&out)
}

// RotationAbout returns the 3x3 matrix rotating by theta radians (right handed) about the given axis.
// The axis need not be unit length but must be non-zero.
func RotationAbout(axis r3.Vector, theta float64) *mat.Dense {
	k := axis.Normalize()
	c, s := math.Cos(theta), math.Sin(theta)
	t := 1 - c
	return mat.NewDense(3, 3, []float64{
		t*k.X*k.X + c, t*k.X*k.Y - s*k.Z, t*k.X*k.Z + s*k.Y,
		t*k.X*k.Y + s*k.Z, t*k.Y*k.Y + c, t*k.Y*k.Z - s*k.X,
		t*k.X*k.Z - s*k.Y, t*k.Y*k.Z + s*k.X, t*k.Z*k.Z + c,
	})
}

// OrthonormalBasis returns two unit vectors u and v such that (u, v, n) is a right handed
// orthonormal basis, for a non-zero n.
func OrthonormalBasis(n r3.Vector) (r3.Vector, r3.Vector) {
	n = n.Normalize()
	u := n.Ortho()
	v := n.Cross(u)
	return u, v
}
