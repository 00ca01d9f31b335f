// Package circlepose recovers the 3D pose of a circle of known radius from the ellipse it images
// to, following the closed-form cone eigendecomposition of Chen et al. Every call is pure: it
// takes its camera and marker parameters explicitly, performs no I/O, and is safe to run
// concurrently across ellipses.
//
// The pipeline for one ellipse is
//
//	Normalize -> NewConicMatrix -> LiftCone -> OrderedEigen -> Candidates -> FilterPlausible
//
// and yields the two mirror-ambiguous poses that a single ellipse cannot tell apart.
package circlepose

// Result is the outcome of a successful pose recovery.
type Result struct {
	Poses [2]Pose
	// Signs holds the (s1, s2, s3) choices behind each pose.
	Signs [2][3]int
	Eigen EigenDecomposition
}

// Ordering is the 1-based eigenvalue ordering that satisfied the cone sign pattern.
func (r Result) Ordering() int {
	return r.Eigen.Ordering
}

// EstimatePose normalizes a detected pixel ellipse with cam and recovers the two poses of a
// circle of the given radius that image to it.
func EstimatePose(raw RawEllipse, cam Camera, radius float64) (Result, error) {
	e, err := Normalize(raw, cam)
	if err != nil {
		return Result{}, err
	}
	return EstimatePoseFromImageEllipse(e, cam.FocalLength, radius)
}

// EstimatePoseFromImageEllipse recovers the two poses of a circle of the given radius that
// image to an already normalized ellipse.
func EstimatePoseFromImageEllipse(e ImageEllipse, focalLength, radius float64) (Result, error) {
	conic, err := NewConicMatrix(e)
	if err != nil {
		return Result{}, err
	}
	cone, err := LiftCone(conic, focalLength)
	if err != nil {
		return Result{}, err
	}
	eig, err := OrderedEigen(cone)
	if err != nil {
		return Result{}, err
	}
	candidates, err := Candidates(eig, radius)
	if err != nil {
		return Result{}, err
	}
	survivors, err := FilterPlausible(candidates)
	if err != nil {
		return Result{}, err
	}
	return Result{
		Poses: [2]Pose{survivors[0].Pose, survivors[1].Pose},
		Signs: [2][3]int{survivors[0].Signs, survivors[1].Signs},
		Eigen: eig,
	}, nil
}
