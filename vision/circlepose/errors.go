package circlepose

import (
	"github.com/pkg/errors"
)

var (
	// ErrDegenerateEllipse is returned for an ellipse with a zero, negative or non-finite axis length.
	ErrDegenerateEllipse = errors.New("degenerate ellipse")
	// ErrInvalidFocalLength is returned for a non-positive focal length. It is a configuration
	// error and should be caught when the camera is set up rather than per frame.
	ErrInvalidFocalLength = errors.New("invalid focal length")
	// ErrInvalidRadius is returned for a non-positive marker radius.
	ErrInvalidRadius = errors.New("invalid marker radius")
	// ErrNoValidEigenOrdering is returned when none of the tried eigenvalue orderings has the
	// sign pattern of an oblique circular cone.
	ErrNoValidEigenOrdering = errors.New("no eigenvalue ordering matches the cone sign pattern")
	// ErrIllConditionedEigenvalues is returned when a square root argument of the pose
	// formulas is negative beyond rounding noise.
	ErrIllConditionedEigenvalues = errors.New("ill-conditioned eigenvalues")
	// ErrAmbiguousPoseCount is returned when the plausibility filter does not leave exactly two poses.
	ErrAmbiguousPoseCount = errors.New("plausible pose count is not two")
	// ErrNotProjectable is returned when a circle does not image to a real ellipse.
	ErrNotProjectable = errors.New("circle does not project to an ellipse")
)

// Failure kinds returned by FailureKind.
const (
	KindDegenerateEllipse         = "degenerate_ellipse"
	KindInvalidFocalLength        = "invalid_focal_length"
	KindInvalidRadius             = "invalid_radius"
	KindNoValidEigenOrdering      = "no_valid_eigen_ordering"
	KindIllConditionedEigenvalues = "ill_conditioned_eigenvalues"
	KindAmbiguousPoseCount        = "ambiguous_pose_count"
	KindNotProjectable            = "not_projectable"
	KindOther                     = "other"
)

// FailureKinds lists every kind FailureKind can return, in a stable order.
var FailureKinds = []string{
	KindDegenerateEllipse,
	KindInvalidFocalLength,
	KindInvalidRadius,
	KindNoValidEigenOrdering,
	KindIllConditionedEigenvalues,
	KindAmbiguousPoseCount,
	KindNotProjectable,
	KindOther,
}

// FailureKind maps an error returned by this package to a short stable name, suitable as a
// counter key. Nil maps to the empty string.
func FailureKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrDegenerateEllipse):
		return KindDegenerateEllipse
	case errors.Is(err, ErrInvalidFocalLength):
		return KindInvalidFocalLength
	case errors.Is(err, ErrInvalidRadius):
		return KindInvalidRadius
	case errors.Is(err, ErrNoValidEigenOrdering):
		return KindNoValidEigenOrdering
	case errors.Is(err, ErrIllConditionedEigenvalues):
		return KindIllConditionedEigenvalues
	case errors.Is(err, ErrAmbiguousPoseCount):
		return KindAmbiguousPoseCount
	case errors.Is(err, ErrNotProjectable):
		return KindNotProjectable
	default:
		return KindOther
	}
}
