package circlepose

import (
	"fmt"
	"math"

	"github.com/golang/geo/r2"
	"github.com/pkg/errors"
)

// RawEllipse is an ellipse fit as reported by a contour detector, in pixels: image rows grow
// downward and the rotation, in degrees, turns from +x toward +y. MajorAxis is the full length of
// the axis along the rotation direction and MinorAxis the perpendicular one.
type RawEllipse struct {
	Center      r2.Point `json:"center_px"`
	MinorAxis   float64  `json:"minor_axis_px"`
	MajorAxis   float64  `json:"major_axis_px"`
	RotationDeg float64  `json:"rotation_deg"`
	// Support is the number of contour points the ellipse was fit to, zero if unknown.
	Support int `json:"support,omitempty"`
}

// ImageEllipse is an ellipse on the image plane in physical units, centered on the principal
// point with x right and y up. Axis lengths are full lengths and Rotation is in radians.
type ImageEllipse struct {
	Center    r2.Point
	MinorAxis float64
	MajorAxis float64
	Rotation  float64
}

func (e ImageEllipse) String() string {
	return fmt.Sprintf("ellipse(center=(%.4f, %.4f) axes=(%.4f, %.4f) rot=%.4f)",
		e.Center.X, e.Center.Y, e.MinorAxis, e.MajorAxis, e.Rotation)
}

func (e ImageEllipse) validate() error {
	if !finite(e.Center.X) || !finite(e.Center.Y) {
		return errors.Wrapf(ErrDegenerateEllipse, "center (%v, %v)", e.Center.X, e.Center.Y)
	}
	if !(e.MinorAxis > 0) || !(e.MajorAxis > 0) || !finite(e.MinorAxis) || !finite(e.MajorAxis) {
		return errors.Wrapf(ErrDegenerateEllipse, "axes (%v, %v)", e.MinorAxis, e.MajorAxis)
	}
	// the conic holds the inverse squared semi-axes
	for _, axis := range []float64{e.MinorAxis, e.MajorAxis} {
		if semi := axis / 2; !finite(1 / (semi * semi)) {
			return errors.Wrapf(ErrDegenerateEllipse, "axis %v is too short", axis)
		}
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Normalize converts a pixel ellipse to the image plane of cam.
func Normalize(raw RawEllipse, cam Camera) (ImageEllipse, error) {
	if err := cam.Validate(); err != nil {
		return ImageEllipse{}, err
	}
	if !(raw.MinorAxis > 0) || !(raw.MajorAxis > 0) {
		return ImageEllipse{}, errors.Wrapf(ErrDegenerateEllipse, "pixel axes (%v, %v)", raw.MinorAxis, raw.MajorAxis)
	}
	// the optical frame has y down; the image plane here has y up
	x, y, _ := cam.Intrinsics().PixelToPoint(raw.Center.X, raw.Center.Y, cam.FocalLength)
	s := cam.PixelSize
	e := ImageEllipse{
		Center:    r2.Point{X: x, Y: -y},
		MinorAxis: raw.MinorAxis * s,
		MajorAxis: raw.MajorAxis * s,
		// flipping y mirrors the turning direction
		Rotation: -raw.RotationDeg * math.Pi / 180,
	}
	return e, e.validate()
}

// ToRaw converts an image plane ellipse back to pixels. It is the inverse of Normalize.
func (e ImageEllipse) ToRaw(cam Camera) RawEllipse {
	u, v := cam.Intrinsics().PointToPixel(e.Center.X, -e.Center.Y, cam.FocalLength)
	s := cam.PixelSize
	return RawEllipse{
		Center:      r2.Point{X: u, Y: v},
		MinorAxis:   e.MinorAxis / s,
		MajorAxis:   e.MajorAxis / s,
		RotationDeg: -e.Rotation * 180 / math.Pi,
	}
}
