// Package config defines the structures to configure a marker pose estimation run.
package config

import (
	"path/filepath"

	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"github.com/joristork/milovision/marker"
	"github.com/joristork/milovision/rimage/transform"
	"github.com/joristork/milovision/simulation"
	"github.com/joristork/milovision/utils"
	"github.com/joristork/milovision/vision/circlepose"
	"github.com/joristork/milovision/vision/markerfilter"
)

// Default simulated camera, matching the one used to tune the marker filter.
const (
	DefaultWidth  = 1280
	DefaultHeight = 960
	DefaultFOVY   = 32.5855
)

// Config describes the camera, the marker, the ellipse filter and how to simulate frames when
// no recorded detections are given.
type Config struct {
	ConfigFilePath string `json:"-"`

	Camera transform.PinholeCameraIntrinsics `json:"camera"`
	// CameraFile names a JSON file holding the camera intrinsics, relative to the config file
	// unless absolute. It is mutually exclusive with Camera.
	CameraFile string `json:"camera_file,omitempty"`

	Marker     marker.Geometry     `json:"marker"`
	Filter     markerfilter.Config `json:"filter"`
	Simulation Simulation          `json:"simulation"`
	// Workers bounds how many ellipses of a frame are processed at once; zero picks a
	// default based on the number of CPUs.
	Workers int `json:"workers,omitempty"`
}

// Simulation configures the synthetic frame source.
type Simulation struct {
	Generator string  `json:"generator"`
	Seed      int64   `json:"seed"`
	NoisePx   float64 `json:"noise_px"`
	// Attributes are specific to the generator and decoded by it.
	Attributes map[string]interface{} `json:"attributes,omitempty"`
}

// Validate ensures all parts of the config are valid.
func (s *Simulation) Validate(path string) error {
	var errs error
	switch s.Generator {
	case "":
		errs = multierr.Append(errs, utils.NewConfigValidationFieldRequiredError(path, "generator"))
	case simulation.LinearGeneratorName, simulation.RandomGeneratorName:
	default:
		errs = multierr.Append(errs, utils.NewConfigValidationError(path,
			errors.Errorf("unknown generator %q", s.Generator)))
	}
	if s.NoisePx < 0 {
		errs = multierr.Append(errs, utils.NewConfigValidationError(path,
			errors.Errorf("noise_px must not be negative, got %v", s.NoisePx)))
	}
	return errs
}

// DefaultCamera returns the intrinsics of the default simulated camera, with focal lengths in
// pixels.
func DefaultCamera() transform.PinholeCameraIntrinsics {
	params, err := transform.NewPinholeCameraIntrinsicsFromFOV(DefaultWidth, DefaultHeight, DefaultFOVY, 1)
	if err != nil {
		panic(err)
	}
	return *params
}

// Default returns a config that simulates random marker poses seen by the default camera.
func Default() *Config {
	cfg := &Config{}
	cfg.fillDefaults()
	return cfg
}

// loadCameraFile replaces Camera with the intrinsics read from CameraFile, if one is named.
func (c *Config) loadCameraFile() error {
	if c.CameraFile == "" {
		return nil
	}
	if c.Camera != (transform.PinholeCameraIntrinsics{}) {
		return utils.NewConfigValidationError("camera_file",
			errors.New("cannot be combined with camera"))
	}
	path := c.CameraFile
	if !filepath.IsAbs(path) {
		path = filepath.Join(filepath.Dir(c.ConfigFilePath), path)
	}
	params, err := transform.NewPinholeCameraIntrinsicsFromJSONFile(path)
	if err != nil {
		return utils.NewConfigValidationError("camera_file", err)
	}
	c.Camera = *params
	return nil
}

// fillDefaults replaces every omitted section with its default.
func (c *Config) fillDefaults() {
	if c.Camera == (transform.PinholeCameraIntrinsics{}) {
		c.Camera = DefaultCamera()
	}
	if c.Marker == (marker.Geometry{}) {
		c.Marker = marker.DefaultGeometry()
	}
	if c.Filter == (markerfilter.Config{}) {
		c.Filter = markerfilter.DefaultConfig()
	}
	if c.Simulation.Generator == "" {
		c.Simulation.Generator = simulation.RandomGeneratorName
	}
}

// Ensure fills in defaults and validates the config. Every invalid field is reported.
func (c *Config) Ensure() error {
	c.fillDefaults()
	var errs error
	if err := c.Camera.CheckValid(); err != nil {
		errs = multierr.Append(errs, utils.NewConfigValidationError("camera", err))
	}
	errs = multierr.Combine(
		errs,
		c.Marker.Validate("marker"),
		c.Filter.Validate("filter"),
		c.Simulation.Validate("simulation"),
	)
	if c.Workers < 0 {
		errs = multierr.Append(errs, utils.NewConfigValidationError("workers",
			errors.Errorf("must not be negative, got %d", c.Workers)))
	}
	return errs
}

// CoreCamera returns the camera model used for pose recovery.
func (c *Config) CoreCamera() (circlepose.Camera, error) {
	return circlepose.CameraFromIntrinsics(&c.Camera)
}
