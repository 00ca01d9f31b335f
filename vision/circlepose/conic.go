package circlepose

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// NewConicMatrix returns the symmetric matrix M of the ellipse such that [x y 1] M [x y 1]ᵀ = 0,
// built from the quadratic block R·diag(1/a², 1/b²)·Rᵀ of the semi-axes a (along the rotation)
// and b, the linear terms M·c and the constant cᵀ·M·c - 1. With +M·c as linear terms the
// matrix on its own describes the ellipse reflected through the principal point; LiftCone's
// -1/f scaling of the third row and column undoes the reflection.
func NewConicMatrix(e ImageEllipse) (*mat.SymDense, error) {
	if err := e.validate(); err != nil {
		return nil, err
	}
	a, b := e.MajorAxis/2, e.MinorAxis/2
	sin, cos := math.Sincos(e.Rotation)
	rot := mat.NewDense(2, 2, []float64{cos, -sin, sin, cos})
	scale := mat.NewDiagDense(2, []float64{1 / (a * a), 1 / (b * b)})

	var quad mat.Dense
	quad.Product(rot, scale, rot.T())
	// the upper triangle defines the symmetric block
	block := mat.NewSymDense(2, []float64{
		quad.At(0, 0), quad.At(0, 1),
		quad.At(0, 1), quad.At(1, 1),
	})
	var chol mat.Cholesky
	if ok := chol.Factorize(block); !ok {
		return nil, errors.Wrapf(ErrDegenerateEllipse, "quadratic form of %v is not positive definite", e)
	}

	center := mat.NewVecDense(2, []float64{e.Center.X, e.Center.Y})
	var lin mat.VecDense
	lin.MulVec(block, center)
	constant := mat.Dot(center, &lin) - 1

	return mat.NewSymDense(3, []float64{
		block.At(0, 0), block.At(0, 1), lin.AtVec(0),
		block.At(0, 1), block.At(1, 1), lin.AtVec(1),
		lin.AtVec(0), lin.AtVec(1), constant,
	}), nil
}
