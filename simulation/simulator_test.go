package simulation

import (
	"context"
	"io"
	"math/rand"
	"testing"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.viam.com/test"

	"github.com/joristork/milovision/marker"
	"github.com/joristork/milovision/vision/circlepose"
	"github.com/joristork/milovision/vision/markerfilter"
)

func TestSimulatorFrame(t *testing.T) {
	params := simulatedCamera(t)
	sim, err := NewSimulator(params, marker.DefaultGeometry(), 0, rand.New(rand.NewSource(1)))
	test.That(t, err, test.ShouldBeNil)

	t.Run("on axis", func(t *testing.T) {
		pose := circlepose.Pose{Center: r3.Vector{Z: 2000}, Normal: r3.Vector{Z: -1}}
		frame := sim.Frame(pose)
		test.That(t, frame.ID, test.ShouldNotBeEmpty)
		test.That(t, *frame.Truth, test.ShouldResemble, pose)
		test.That(t, len(frame.Detections), test.ShouldEqual, 2)

		outer, inner := frame.Detections[0], frame.Detections[1]
		test.That(t, outer.Center.X, test.ShouldAlmostEqual, 640.0, 1e-6)
		test.That(t, outer.Center.Y, test.ShouldAlmostEqual, 480.0, 1e-6)
		test.That(t, outer.MajorAxis, test.ShouldAlmostEqual, 188*params.Fy/2000, 1e-6)
		test.That(t, inner.MajorAxis, test.ShouldAlmostEqual, 141*params.Fy/2000, 1e-6)
		test.That(t, outer.Support, test.ShouldEqual, 64)

		// the pair is recognized as a marker
		f := markerfilter.New(markerfilter.DefaultConfig(), marker.DefaultGeometry())
		test.That(t, f.Candidates(frame.Detections), test.ShouldResemble, frame.Detections[:1])

		res, err := circlepose.EstimatePose(outer, sim.Camera(), marker.DefaultGeometry().Radius())
		test.That(t, err, test.ShouldBeNil)
		for _, p := range res.Poses {
			test.That(t, p.Center.Z, test.ShouldAlmostEqual, 2000.0, 1e-6)
		}
	})

	t.Run("out of view", func(t *testing.T) {
		frame := sim.Frame(circlepose.Pose{Center: r3.Vector{X: 5000, Z: 2000}, Normal: r3.Vector{Z: -1}})
		test.That(t, frame.Detections, test.ShouldBeEmpty)
		test.That(t, frame.Truth, test.ShouldNotBeNil)
	})

	t.Run("behind the camera", func(t *testing.T) {
		frame := sim.Frame(circlepose.Pose{Center: r3.Vector{Z: -2000}, Normal: r3.Vector{Z: -1}})
		test.That(t, frame.Detections, test.ShouldBeEmpty)
	})
}

func TestSimulatorNoise(t *testing.T) {
	params := simulatedCamera(t)
	sim, err := NewSimulator(params, marker.DefaultGeometry(), 0.5, rand.New(rand.NewSource(1)))
	test.That(t, err, test.ShouldBeNil)
	frame := sim.Frame(circlepose.Pose{Center: r3.Vector{Z: 2000}, Normal: r3.Vector{Z: -1}})
	test.That(t, len(frame.Detections), test.ShouldEqual, 2)
	test.That(t, frame.Detections[0].Center.X, test.ShouldNotEqual, 640.0)
	test.That(t, frame.Detections[0].Center.X, test.ShouldAlmostEqual, 640.0, 5)

	_, err = NewSimulator(params, marker.DefaultGeometry(), -1, nil)
	test.That(t, err, test.ShouldNotBeNil)
	_, err = NewSimulator(params, marker.Geometry{}, 0, nil)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestSource(t *testing.T) {
	params := simulatedCamera(t)
	rng := rand.New(rand.NewSource(2))
	sim, err := NewSimulator(params, marker.DefaultGeometry(), 0, rng)
	test.That(t, err, test.ShouldBeNil)
	src := NewSource(NewRandomGenerator(params, RandomAttributes{Poses: 3}, rng), sim)

	for i := 0; i < 3; i++ {
		frame, err := src.NextFrame(context.Background())
		test.That(t, err, test.ShouldBeNil)
		test.That(t, frame.Truth, test.ShouldNotBeNil)
	}
	_, err = src.NextFrame(context.Background())
	test.That(t, err, test.ShouldEqual, io.EOF)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = NewSource(NewLinearGenerator(params, LinearAttributes{}), sim).NextFrame(ctx)
	test.That(t, errors.Is(err, context.Canceled), test.ShouldBeTrue)
}
