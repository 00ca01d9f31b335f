package circlepose

import (
	"math"

	"github.com/golang/geo/r2"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"github.com/joristork/milovision/spatialmath"
)

// ProjectCircle returns the image plane ellipse of a circle with the given pose and radius seen
// through an ideal pinhole with the given focal length (x = f·X/Z, y = f·Y/Z). The whole circle
// must lie in front of the camera.
func ProjectCircle(p Pose, radius, focalLength float64) (ImageEllipse, error) {
	if !(radius > 0) {
		return ImageEllipse{}, errors.Wrapf(ErrInvalidRadius, "radius %v", radius)
	}
	if !(focalLength > 0) {
		return ImageEllipse{}, errors.Wrapf(ErrInvalidFocalLength, "focal length %v", focalLength)
	}
	if p.Normal.Norm() == 0 {
		return ImageEllipse{}, errors.Wrap(ErrNotProjectable, "zero normal")
	}
	n := p.Normal.Normalize()
	nearest := p.Center.Z - radius*math.Sqrt(math.Max(0, 1-n.Z*n.Z))
	if !(nearest > 0) {
		return ImageEllipse{}, errors.Wrapf(ErrNotProjectable, "%v reaches behind the camera", p)
	}

	// H maps homogeneous coordinates on the circle plane to homogeneous image points.
	u, v := spatialmath.OrthonormalBasis(n)
	f := focalLength
	h := mat.NewDense(3, 3, []float64{
		f * u.X, f * v.X, f * p.Center.X,
		f * u.Y, f * v.Y, f * p.Center.Y,
		u.Z, v.Z, p.Center.Z,
	})
	var hInv mat.Dense
	if err := hInv.Inverse(h); err != nil {
		return ImageEllipse{}, errors.Wrapf(ErrNotProjectable, "circle plane passes through the optical center: %v", err)
	}
	circle := mat.NewDiagDense(3, []float64{1, 1, -radius * radius})
	var conic mat.Dense
	conic.Product(hInv.T(), circle, &hInv)
	return EllipseFromConic(mat.NewSymDense(3, []float64{
		conic.At(0, 0), conic.At(0, 1), conic.At(0, 2),
		conic.At(0, 1), conic.At(1, 1), conic.At(1, 2),
		conic.At(0, 2), conic.At(1, 2), conic.At(2, 2),
	}))
}

// EllipseFromConic converts the matrix of an implicit conic, defined up to scale, to the ellipse
// it describes. It fails with ErrNotProjectable if the conic is not a real ellipse.
func EllipseFromConic(c mat.Symmetric) (ImageEllipse, error) {
	block := mat.NewSymDense(2, []float64{c.At(0, 0), c.At(0, 1), c.At(0, 1), c.At(1, 1)})
	lin := mat.NewVecDense(2, []float64{c.At(0, 2), c.At(1, 2)})

	var center mat.VecDense
	if err := center.SolveVec(block, lin); err != nil {
		return ImageEllipse{}, errors.Wrapf(ErrNotProjectable, "conic has no center: %v", err)
	}
	center.ScaleVec(-1, &center)

	// (p - c)ᵀ·block·(p - c) = cᵀ·block·c - F
	var bc mat.VecDense
	bc.MulVec(block, &center)
	level := mat.Dot(&center, &bc) - c.At(2, 2)
	if level == 0 || math.IsNaN(level) {
		return ImageEllipse{}, errors.Wrap(ErrNotProjectable, "conic is degenerate")
	}
	var shape mat.SymDense
	shape.ScaleSym(1/level, block)

	var eig mat.EigenSym
	if ok := eig.Factorize(&shape, true); !ok {
		return ImageEllipse{}, errors.Wrap(ErrNotProjectable, "eigendecomposition failed")
	}
	// ascending: the smaller value belongs to the major axis
	w := eig.Values(nil)
	if !(w[0] > 0) {
		return ImageEllipse{}, errors.Wrapf(ErrNotProjectable, "conic is not an ellipse (shape eigenvalues %v)", w)
	}
	var vectors mat.Dense
	eig.VectorsTo(&vectors)

	return ImageEllipse{
		Center:    r2.Point{X: center.AtVec(0), Y: center.AtVec(1)},
		MajorAxis: 2 / math.Sqrt(w[0]),
		MinorAxis: 2 / math.Sqrt(w[1]),
		Rotation:  math.Atan2(vectors.At(1, 0), vectors.At(0, 0)),
	}, nil
}
