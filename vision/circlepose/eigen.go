package circlepose

import (
	"math"
	"sort"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// orderings are the relabelings of the natural eigen order that are tried, in order.
var orderings = [3][3]int{
	{0, 1, 2},
	{1, 2, 0},
	{0, 2, 1},
}

// NumOrderings is the number of eigenvalue orderings OrderedEigen tries.
const NumOrderings = len(orderings)

// EigenDecomposition is an eigendecomposition of a cone matrix whose values satisfy
// Values[0]·Values[1] > 0 and Values[1]·Values[2] < 0. Column i of Vectors is the unit
// eigenvector of Values[i].
type EigenDecomposition struct {
	Values  [3]float64
	Vectors *mat.Dense
	// Ordering is the 1-based index of the ordering that satisfied the sign pattern.
	Ordering int
}

// OrderedEigen decomposes q and labels its eigenpairs so that exactly the last eigenvalue has a
// sign opposite the first two. The natural order is by descending magnitude; it and two
// relabelings of it are tried before giving up with ErrNoValidEigenOrdering.
func OrderedEigen(q mat.Symmetric) (EigenDecomposition, error) {
	if r := q.SymmetricDim(); r != 3 {
		return EigenDecomposition{}, errors.Errorf("cone matrix must be 3x3, got %dx%d", r, r)
	}
	var eig mat.EigenSym
	if ok := eig.Factorize(q, true); !ok {
		return EigenDecomposition{}, errors.Wrap(ErrNoValidEigenOrdering, "eigendecomposition failed")
	}
	values := eig.Values(nil)
	var vectors mat.Dense
	eig.VectorsTo(&vectors)

	natural := []int{0, 1, 2}
	sort.SliceStable(natural, func(i, j int) bool {
		return math.Abs(values[natural[i]]) > math.Abs(values[natural[j]])
	})

	for i, perm := range orderings {
		idx := [3]int{natural[perm[0]], natural[perm[1]], natural[perm[2]]}
		l0, l1, l2 := values[idx[0]], values[idx[1]], values[idx[2]]
		if !(l0*l1 > 0 && l1*l2 < 0) {
			continue
		}
		ordered := mat.NewDense(3, 3, nil)
		for col, src := range idx {
			ordered.SetCol(col, mat.Col(nil, src, &vectors))
		}
		return EigenDecomposition{
			Values:   [3]float64{l0, l1, l2},
			Vectors:  ordered,
			Ordering: i + 1,
		}, nil
	}
	return EigenDecomposition{}, errors.Wrapf(ErrNoValidEigenOrdering, "eigenvalues %v", values)
}
