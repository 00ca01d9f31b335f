package circlepose

import (
	"fmt"
	"math"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"github.com/joristork/milovision/spatialmath"
)

// radicandTolerance is how far below zero a square root argument may fall through rounding
// before it is treated as a failure rather than clamped to zero. The arguments are ratios of
// eigenvalue differences, so the tolerance is relative.
const radicandTolerance = 1e-9

// Pose is a circle pose in camera coordinates: x right, y up, z along the optical axis into
// the scene. Center is in physical units and Normal is a unit vector.
type Pose struct {
	Center r3.Vector `json:"center"`
	Normal r3.Vector `json:"normal"`
}

func (p Pose) String() string {
	return fmt.Sprintf("pose(center=(%.3f, %.3f, %.3f) normal=(%.4f, %.4f, %.4f))",
		p.Center.X, p.Center.Y, p.Center.Z, p.Normal.X, p.Normal.Y, p.Normal.Z)
}

// Candidate is one of the eight algebraic poses of an eigendecomposition, tagged with the sign
// choices (s1, s2, s3) that produced it.
type Candidate struct {
	Pose
	Signs [3]int
}

var signs = [2]int{1, -1}

// Candidates enumerates the eight poses consistent with the cone eigendecomposition and a
// circle of the given radius, s1 varying slowest and s3 fastest.
func Candidates(eig EigenDecomposition, radius float64) ([8]Candidate, error) {
	var out [8]Candidate
	if !(radius > 0) {
		return out, errors.Wrapf(ErrInvalidRadius, "radius %v", radius)
	}
	l0, l1, l2 := eig.Values[0], eig.Values[1], eig.Values[2]
	if !(l0*l1 > 0 && l1*l2 < 0) {
		return out, errors.Wrapf(ErrNoValidEigenOrdering, "eigenvalues %v", eig.Values)
	}
	spread := l0 - l2
	a, err := clampedSqrt((l0 - l1) / spread)
	if err != nil {
		return out, err
	}
	b, err := clampedSqrt((l1 - l2) / spread)
	if err != nil {
		return out, err
	}
	depth := l1 * radius / math.Sqrt(-l0*l2)

	i := 0
	for _, s1 := range signs {
		for _, s2 := range signs {
			for _, s3 := range signs {
				fs1, fs2, fs3 := float64(s1), float64(s2), float64(s3)
				centerLocal := r3.Vector{X: fs2 * (l2 / l1) * a, Z: -fs1 * (l0 / l1) * b}
				normalLocal := r3.Vector{X: fs2 * a, Z: -fs1 * b}
				out[i] = Candidate{
					Pose: Pose{
						Center: spatialmath.Transform(eig.Vectors, centerLocal).Mul(fs3 * depth),
						Normal: spatialmath.Transform(eig.Vectors, normalLocal),
					},
					Signs: [3]int{s1, s2, s3},
				}
				i++
			}
		}
	}
	return out, nil
}

func clampedSqrt(v float64) (float64, error) {
	if v < 0 {
		if v < -radicandTolerance {
			return 0, errors.Wrapf(ErrIllConditionedEigenvalues, "negative radicand %v", v)
		}
		return 0, nil
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, errors.Wrapf(ErrIllConditionedEigenvalues, "radicand %v", v)
	}
	return math.Sqrt(v), nil
}
