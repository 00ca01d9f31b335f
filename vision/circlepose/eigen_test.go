package circlepose

import (
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.viam.com/test"
	"gonum.org/v1/gonum/mat"

	"github.com/joristork/milovision/spatialmath"
)

func diagSym(values ...float64) *mat.SymDense {
	m := mat.NewSymDense(len(values), nil)
	for i, v := range values {
		m.SetSym(i, i, v)
	}
	return m
}

func assertEigenpairs(t *testing.T, q mat.Symmetric, eig EigenDecomposition) {
	t.Helper()
	for i := 0; i < 3; i++ {
		v := mat.NewVecDense(3, mat.Col(nil, i, eig.Vectors))
		test.That(t, mat.Norm(v, 2), test.ShouldAlmostEqual, 1.0, 1e-12)
		var qv mat.VecDense
		qv.MulVec(q, v)
		v.ScaleVec(eig.Values[i], v)
		test.That(t, mat.EqualApprox(&qv, v, 1e-9), test.ShouldBeTrue)
	}
}

func TestOrderedEigen(t *testing.T) {
	for _, tc := range []struct {
		name     string
		diag     []float64
		ordering int
		values   [3]float64
	}{
		{"natural order", []float64{3, 2, -1}, 1, [3]float64{3, 2, -1}},
		{"natural order negated", []float64{-3, -2, 1}, 1, [3]float64{-3, -2, 1}},
		{"negated swapped relabeling", []float64{-1, 2, -3}, 3, [3]float64{-3, -1, 2}},
		{"cyclic relabeling", []float64{-5, 2, 1}, 2, [3]float64{2, 1, -5}},
		{"swapped relabeling", []float64{5, -2, 1}, 3, [3]float64{5, 1, -2}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			q := diagSym(tc.diag...)
			eig, err := OrderedEigen(q)
			test.That(t, err, test.ShouldBeNil)
			test.That(t, eig.Ordering, test.ShouldEqual, tc.ordering)
			for i := range tc.values {
				test.That(t, eig.Values[i], test.ShouldAlmostEqual, tc.values[i], 1e-12)
			}
			test.That(t, eig.Values[0]*eig.Values[1], test.ShouldBeGreaterThan, 0.0)
			test.That(t, eig.Values[1]*eig.Values[2], test.ShouldBeLessThan, 0.0)
			assertEigenpairs(t, q, eig)
		})
	}

	t.Run("rotated", func(t *testing.T) {
		rot := spatialmath.RotationAbout(r3.Vector{X: 0.3, Y: -1, Z: 0.7}, 0.9)
		var full mat.Dense
		full.Product(rot, diagSym(5, -2, 1), rot.T())
		q := mat.NewSymDense(3, nil)
		for i := 0; i < 3; i++ {
			for j := i; j < 3; j++ {
				q.SetSym(i, j, full.At(i, j))
			}
		}
		eig, err := OrderedEigen(q)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, eig.Ordering, test.ShouldEqual, 3)
		test.That(t, eig.Values[0], test.ShouldAlmostEqual, 5.0, 1e-9)
		test.That(t, eig.Values[1], test.ShouldAlmostEqual, 1.0, 1e-9)
		test.That(t, eig.Values[2], test.ShouldAlmostEqual, -2.0, 1e-9)
		assertEigenpairs(t, q, eig)
	})

	t.Run("relabeled vectors follow their values", func(t *testing.T) {
		eig, err := OrderedEigen(diagSym(-5, 2, 1))
		test.That(t, err, test.ShouldBeNil)
		test.That(t, math.Abs(eig.Vectors.At(1, 0)), test.ShouldAlmostEqual, 1.0)
		test.That(t, math.Abs(eig.Vectors.At(2, 1)), test.ShouldAlmostEqual, 1.0)
		test.That(t, math.Abs(eig.Vectors.At(0, 2)), test.ShouldAlmostEqual, 1.0)
	})
}

func TestOrderedEigenFailures(t *testing.T) {
	for _, diag := range [][]float64{
		{1, 2, 3},
		{-1, -2, -3},
		{1, 0, -1},
		{0, 0, 0},
	} {
		_, err := OrderedEigen(diagSym(diag...))
		test.That(t, errors.Is(err, ErrNoValidEigenOrdering), test.ShouldBeTrue)
	}

	_, err := OrderedEigen(diagSym(1, -1))
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, errors.Is(err, ErrNoValidEigenOrdering), test.ShouldBeFalse)
}
