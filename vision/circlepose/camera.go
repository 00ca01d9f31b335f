package circlepose

import (
	"github.com/golang/geo/r2"
	"github.com/pkg/errors"

	"github.com/joristork/milovision/rimage/transform"
)

// Camera holds the numeric camera parameters pose recovery needs. Lengths are physical
// (the unit of PixelSize); Width, Height and PrincipalPoint are in pixels.
type Camera struct {
	Width          int
	Height         int
	PixelSize      float64
	FocalLength    float64
	PrincipalPoint r2.Point
}

// CameraFromIntrinsics builds a Camera from validated pinhole intrinsics.
func CameraFromIntrinsics(params *transform.PinholeCameraIntrinsics) (Camera, error) {
	if err := params.CheckValid(); err != nil {
		return Camera{}, err
	}
	cam := Camera{
		Width:          params.Width,
		Height:         params.Height,
		PixelSize:      params.PixelSize,
		FocalLength:    params.FocalLength(),
		PrincipalPoint: params.PrincipalPoint(),
	}
	return cam, cam.Validate()
}

// Validate checks the parameters Normalize and EstimatePose depend on.
func (c Camera) Validate() error {
	if !(c.FocalLength > 0) {
		return errors.Wrapf(ErrInvalidFocalLength, "focal length %v", c.FocalLength)
	}
	if !(c.PixelSize > 0) {
		return errors.Errorf("pixel size must be positive, got %v", c.PixelSize)
	}
	return nil
}

// Intrinsics returns the pinhole intrinsics equivalent to c, with focal lengths in pixels and the
// principal point resolved.
func (c Camera) Intrinsics() *transform.PinholeCameraIntrinsics {
	f := c.FocalLength / c.PixelSize
	params := &transform.PinholeCameraIntrinsics{
		Width:     c.Width,
		Height:    c.Height,
		Fx:        f,
		Fy:        f,
		Ppx:       c.PrincipalPoint.X,
		Ppy:       c.PrincipalPoint.Y,
		PixelSize: c.PixelSize,
	}
	pp := params.PrincipalPoint()
	params.Ppx, params.Ppy = pp.X, pp.Y
	return params
}
