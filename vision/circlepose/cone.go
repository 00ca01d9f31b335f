package circlepose

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// LiftCone returns the quadratic form Q of the oblique elliptical cone with its apex at the
// optical center whose cross-section at focal distance is the conic m. The third row and column
// of m are scaled by -1/f and the corner by 1/f²; the upper 2x2 block is unchanged.
func LiftCone(m mat.Symmetric, focalLength float64) (*mat.SymDense, error) {
	if !(focalLength > 0) {
		return nil, errors.Wrapf(ErrInvalidFocalLength, "focal length %v", focalLength)
	}
	q := mat.NewSymDense(3, nil)
	q.CopySym(m)
	k := -1 / focalLength
	q.SetSym(0, 2, m.At(0, 2)*k)
	q.SetSym(1, 2, m.At(1, 2)*k)
	q.SetSym(2, 2, m.At(2, 2)*k*k)
	return q, nil
}
