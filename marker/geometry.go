// Package marker describes the physical geometry of the circular fiducial marker.
package marker

import (
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"github.com/joristork/milovision/utils"
)

// FrameSize is the edge length in millimeters of the square board the marker is printed on.
const FrameSize = 210.0

// Geometry holds the diameters (millimeters) of the two concentric circles of a marker.
type Geometry struct {
	OuterDiameter float64 `json:"outer_diameter_mm"`
	InnerDiameter float64 `json:"inner_diameter_mm"`
}

// DefaultGeometry returns the geometry of the standard printed marker.
func DefaultGeometry() Geometry {
	return Geometry{OuterDiameter: 188, InnerDiameter: 141}
}

// Radius is the physical radius of the outer circle, the one whose ellipse is used for pose recovery.
func (g Geometry) Radius() float64 {
	return g.OuterDiameter / 2
}

// InnerRadius is the physical radius of the inner circle.
func (g Geometry) InnerRadius() float64 {
	return g.InnerDiameter / 2
}

// SizeRatio is the ratio of the outer to the inner diameter. Both circles lie in one plane, so
// the ratio of their imaged major axes approaches it regardless of pose.
func (g Geometry) SizeRatio() float64 {
	return g.OuterDiameter / g.InnerDiameter
}

// Validate ensures all parts of the geometry are valid.
func (g Geometry) Validate(path string) error {
	var errs error
	if g.OuterDiameter == 0 {
		errs = multierr.Append(errs, utils.NewConfigValidationFieldRequiredError(path, "outer_diameter_mm"))
	} else if g.OuterDiameter < 0 {
		errs = multierr.Append(errs, utils.NewConfigValidationError(path,
			errors.Errorf("outer_diameter_mm must be positive, got %v", g.OuterDiameter)))
	}
	if g.InnerDiameter == 0 {
		errs = multierr.Append(errs, utils.NewConfigValidationFieldRequiredError(path, "inner_diameter_mm"))
	} else if g.InnerDiameter < 0 {
		errs = multierr.Append(errs, utils.NewConfigValidationError(path,
			errors.Errorf("inner_diameter_mm must be positive, got %v", g.InnerDiameter)))
	}
	if errs == nil && g.InnerDiameter >= g.OuterDiameter {
		errs = utils.NewConfigValidationError(path,
			errors.Errorf("inner_diameter_mm (%v) must be smaller than outer_diameter_mm (%v)", g.InnerDiameter, g.OuterDiameter))
	}
	if errs == nil && g.OuterDiameter > FrameSize {
		errs = utils.NewConfigValidationError(path,
			errors.Errorf("outer_diameter_mm (%v) does not fit on the %vmm frame", g.OuterDiameter, FrameSize))
	}
	return errs
}
