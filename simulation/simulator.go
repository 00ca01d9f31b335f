package simulation

import (
	"context"
	"io"
	"math/rand"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/joristork/milovision/marker"
	"github.com/joristork/milovision/pipeline"
	"github.com/joristork/milovision/rimage/transform"
	"github.com/joristork/milovision/vision/circlepose"
)

// simulatedSupport is the contour length reported for synthetic ellipses.
const simulatedSupport = 64

// Simulator renders the ellipses of a marker's outer and inner circles analytically.
type Simulator struct {
	params   *transform.PinholeCameraIntrinsics
	cam      circlepose.Camera
	geometry marker.Geometry
	noise    float64
	rng      *rand.Rand
}

// NewSimulator returns a Simulator for the given camera and marker. noisePx is the standard
// deviation of the Gaussian noise added to ellipse centers and axes, in pixels.
func NewSimulator(
	params *transform.PinholeCameraIntrinsics,
	geometry marker.Geometry,
	noisePx float64,
	rng *rand.Rand,
) (*Simulator, error) {
	cam, err := circlepose.CameraFromIntrinsics(params)
	if err != nil {
		return nil, err
	}
	if err := geometry.Validate("marker"); err != nil {
		return nil, err
	}
	if noisePx < 0 {
		return nil, errors.Errorf("noise must not be negative, got %v", noisePx)
	}
	return &Simulator{params: params, cam: cam, geometry: geometry, noise: noisePx, rng: rng}, nil
}

// Camera returns the camera the simulator renders for.
func (s *Simulator) Camera() circlepose.Camera {
	return s.cam
}

// Frame returns the detections a perfect ellipse detector would report for a marker at pose.
// Markers whose outer circle is not fully in front of the camera, or whose center falls outside
// the image, produce no detections.
func (s *Simulator) Frame(pose circlepose.Pose) pipeline.Frame {
	truth := pose
	frame := pipeline.Frame{ID: uuid.NewString(), Truth: &truth}
	for _, radius := range []float64{s.geometry.Radius(), s.geometry.InnerRadius()} {
		e, err := circlepose.ProjectCircle(pose, radius, s.cam.FocalLength)
		if err != nil {
			return pipeline.Frame{ID: frame.ID, Truth: frame.Truth}
		}
		raw := s.perturb(e.ToRaw(s.cam))
		if !s.params.Contains(raw.Center) {
			return pipeline.Frame{ID: frame.ID, Truth: frame.Truth}
		}
		frame.Detections = append(frame.Detections, raw)
	}
	return frame
}

func (s *Simulator) perturb(raw circlepose.RawEllipse) circlepose.RawEllipse {
	raw.Support = simulatedSupport
	if s.noise == 0 {
		return raw
	}
	raw.Center.X += s.rng.NormFloat64() * s.noise
	raw.Center.Y += s.rng.NormFloat64() * s.noise
	raw.MinorAxis += s.rng.NormFloat64() * s.noise
	raw.MajorAxis += s.rng.NormFloat64() * s.noise
	return raw
}

// Source adapts a generator and a simulator to a pipeline.FrameSource.
type Source struct {
	gen Generator
	sim *Simulator
}

// NewSource returns a frame source rendering every pose of gen with sim.
func NewSource(gen Generator, sim *Simulator) *Source {
	return &Source{gen: gen, sim: sim}
}

// NextFrame renders the next generated pose, returning io.EOF once the generator is exhausted.
func (s *Source) NextFrame(ctx context.Context) (pipeline.Frame, error) {
	if err := ctx.Err(); err != nil {
		return pipeline.Frame{}, err
	}
	pose, ok := s.gen.Next()
	if !ok {
		return pipeline.Frame{}, io.EOF
	}
	return s.sim.Frame(pose), nil
}
