// Package transform holds the pinhole camera model: intrinsic parameters, their validation and
// loading, and the conversions between pixels and camera-plane coordinates.
package transform

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/golang/geo/r2"
	"github.com/pkg/errors"
	"go.viam.com/utils"
)

// ErrNoIntrinsics is when a camera does not have intrinsics parameters or other parameters.
var ErrNoIntrinsics = errors.New("camera intrinsic parameters are not available")

// NewNoIntrinsicsError is used when the intriniscs are not defined.
func NewNoIntrinsicsError(msg string) error {
	return errors.Wrap(ErrNoIntrinsics, msg)
}

// PinholeCameraIntrinsics holds the parameters necessary to do a perspective projection of a 3D scene to the 2D plane.
// Fx and Fy are in pixels; PixelSize is the physical edge length of one pixel, which fixes the
// length unit (usually millimeters) of every camera-plane quantity derived from these parameters.
type PinholeCameraIntrinsics struct {
	Width     int     `json:"width_px"`
	Height    int     `json:"height_px"`
	Fx        float64 `json:"fx"`
	Fy        float64 `json:"fy"`
	Ppx       float64 `json:"ppx"`
	Ppy       float64 `json:"ppy"`
	PixelSize float64 `json:"pixel_size_mm"`
}

// NewPinholeCameraIntrinsicsFromFOV returns the intrinsics of an ideal camera with square pixels,
// the principal point at the image center and the given vertical field of view in degrees.
func NewPinholeCameraIntrinsicsFromFOV(width, height int, fovyDeg, pixelSize float64) (*PinholeCameraIntrinsics, error) {
	if fovyDeg <= 0 || fovyDeg >= 180 {
		return nil, NewNoIntrinsicsError(fmt.Sprintf("Invalid vertical field of view %#v", fovyDeg))
	}
	f := (float64(height) / 2) / math.Tan(fovyDeg*math.Pi/360)
	params := &PinholeCameraIntrinsics{
		Width:     width,
		Height:    height,
		Fx:        f,
		Fy:        f,
		Ppx:       float64(width) / 2,
		Ppy:       float64(height) / 2,
		PixelSize: pixelSize,
	}
	if err := params.CheckValid(); err != nil {
		return nil, err
	}
	return params, nil
}

// CheckValid checks if the fields for PinholeCameraIntrinsics have valid inputs.
func (params *PinholeCameraIntrinsics) CheckValid() error {
	if params == nil {
		return NewNoIntrinsicsError("Intrinsics do not exist")
	}
	if params.Width <= 0 || params.Height <= 0 {
		return NewNoIntrinsicsError(fmt.Sprintf("Invalid size (%#v, %#v)", params.Width, params.Height))
	}
	if params.Fx <= 0 {
		return NewNoIntrinsicsError(fmt.Sprintf("Invalid focal length Fx = %#v", params.Fx))
	}
	if params.Fy <= 0 {
		return NewNoIntrinsicsError(fmt.Sprintf("Invalid focal length Fy = %#v", params.Fy))
	}
	if params.Ppx < 0 {
		return NewNoIntrinsicsError(fmt.Sprintf("Invalid principal X point Ppx = %#v", params.Ppx))
	}
	if params.Ppy < 0 {
		return NewNoIntrinsicsError(fmt.Sprintf("Invalid principal Y point Ppy = %#v", params.Ppy))
	}
	if params.PixelSize <= 0 {
		return NewNoIntrinsicsError(fmt.Sprintf("Invalid pixel size = %#v", params.PixelSize))
	}
	return nil
}

// NewPinholeCameraIntrinsicsFromJSONFile takes in a file path to a JSON and turns it into PinholeCameraIntrinsics.
func NewPinholeCameraIntrinsicsFromJSONFile(jsonPath string) (*PinholeCameraIntrinsics, error) {
	//nolint:gosec
	jsonFile, err := os.Open(jsonPath)
	if err != nil {
		return nil, errors.Wrap(err, "error opening JSON file")
	}
	defer utils.UncheckedErrorFunc(jsonFile.Close)
	byteValue, err := io.ReadAll(jsonFile)
	if err != nil {
		return nil, errors.Wrap(err, "error reading JSON data")
	}
	intrinsics := &PinholeCameraIntrinsics{}
	if err := json.Unmarshal(byteValue, intrinsics); err != nil {
		return nil, errors.Wrap(err, "error parsing JSON string")
	}
	return intrinsics, nil
}

// FocalLength returns the mean focal length in physical units (pixel size times mean focal length in pixels).
func (params *PinholeCameraIntrinsics) FocalLength() float64 {
	return params.PixelSize * (params.Fx + params.Fy) / 2
}

// PrincipalPoint returns the principal point in pixels. Unset (zero) principal points default
// to the image center.
func (params *PinholeCameraIntrinsics) PrincipalPoint() r2.Point {
	if params.Ppx == 0 && params.Ppy == 0 {
		return r2.Point{X: float64(params.Width) / 2, Y: float64(params.Height) / 2}
	}
	return r2.Point{X: params.Ppx, Y: params.Ppy}
}

// FOVX returns the horizontal field of view in degrees.
func (params *PinholeCameraIntrinsics) FOVX() float64 {
	return 2 * math.Atan(float64(params.Width)/(2*params.Fx)) * 180 / math.Pi
}

// FOVY returns the vertical field of view in degrees.
func (params *PinholeCameraIntrinsics) FOVY() float64 {
	return 2 * math.Atan(float64(params.Height)/(2*params.Fy)) * 180 / math.Pi
}

// PixelToPoint transforms a pixel with depth to a 3D point in the optical frame (x right, y down, z forward).
func (params *PinholeCameraIntrinsics) PixelToPoint(x, y, z float64) (float64, float64, float64) {
	if params == nil {
		return float64(0), float64(0), float64(0)
	}
	xOverZ := (x - params.Ppx) / params.Fx
	yOverZ := (y - params.Ppy) / params.Fy
	return xOverZ * z, yOverZ * z, z
}

// PointToPixel projects a 3D point in the optical frame (x right, y down, z forward) to a pixel in an image plane.
func (params *PinholeCameraIntrinsics) PointToPixel(x, y, z float64) (float64, float64) {
	if z != 0. {
		return (x/z)*params.Fx + params.Ppx, (y/z)*params.Fy + params.Ppy
	}
	// if depth is zero at this pixel, return negative coordinates so that the cropping to image bounds will filter it out
	return -1.0, -1.0
}

// Contains reports whether a pixel lies inside the image bounds.
func (params *PinholeCameraIntrinsics) Contains(p r2.Point) bool {
	return p.X >= 0 && p.X < float64(params.Width) && p.Y >= 0 && p.Y < float64(params.Height)
}
