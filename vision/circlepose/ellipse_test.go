package circlepose

import (
	"math"
	"testing"

	"github.com/golang/geo/r2"
	"github.com/pkg/errors"
	"go.viam.com/test"
)

var testCamera = Camera{Width: 1280, Height: 960, PixelSize: 0.01, FocalLength: 16.43}

func TestNormalize(t *testing.T) {
	raw := RawEllipse{Center: r2.Point{X: 740, Y: 380}, MinorAxis: 20, MajorAxis: 40, RotationDeg: 30}
	e, err := Normalize(raw, testCamera)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, e.Center.X, test.ShouldAlmostEqual, 1.0)
	test.That(t, e.Center.Y, test.ShouldAlmostEqual, 1.0)
	test.That(t, e.MinorAxis, test.ShouldAlmostEqual, 0.2)
	test.That(t, e.MajorAxis, test.ShouldAlmostEqual, 0.4)
	test.That(t, e.Rotation, test.ShouldAlmostEqual, -math.Pi/6)

	t.Run("bottom left corner", func(t *testing.T) {
		e, err := Normalize(RawEllipse{Center: r2.Point{X: 0, Y: 960}, MinorAxis: 1, MajorAxis: 1}, testCamera)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, e.Center.X, test.ShouldAlmostEqual, -6.4)
		test.That(t, e.Center.Y, test.ShouldAlmostEqual, -4.8)
	})

	t.Run("explicit principal point", func(t *testing.T) {
		cam := testCamera
		cam.PrincipalPoint = r2.Point{X: 600, Y: 500}
		e, err := Normalize(raw, cam)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, e.Center.X, test.ShouldAlmostEqual, 1.4)
		test.That(t, e.Center.Y, test.ShouldAlmostEqual, 1.2)
	})

	t.Run("inverse", func(t *testing.T) {
		back := e.ToRaw(testCamera)
		test.That(t, back.Center.X, test.ShouldAlmostEqual, raw.Center.X)
		test.That(t, back.Center.Y, test.ShouldAlmostEqual, raw.Center.Y)
		test.That(t, back.MinorAxis, test.ShouldAlmostEqual, raw.MinorAxis)
		test.That(t, back.MajorAxis, test.ShouldAlmostEqual, raw.MajorAxis)
		test.That(t, back.RotationDeg, test.ShouldAlmostEqual, raw.RotationDeg)
	})
}

func TestNormalizeDegenerate(t *testing.T) {
	for _, raw := range []RawEllipse{
		{MinorAxis: 0, MajorAxis: 5},
		{MinorAxis: 5, MajorAxis: 0},
		{MinorAxis: -1, MajorAxis: 5},
		{MinorAxis: math.NaN(), MajorAxis: 5},
		{Center: r2.Point{X: math.NaN(), Y: 10}, MinorAxis: 40, MajorAxis: 50},
		{Center: r2.Point{X: 10, Y: math.Inf(-1)}, MinorAxis: 40, MajorAxis: 50},
		{MinorAxis: 1e-300, MajorAxis: 50},
		{MinorAxis: 40, MajorAxis: math.Inf(1)},
	} {
		_, err := Normalize(raw, testCamera)
		test.That(t, errors.Is(err, ErrDegenerateEllipse), test.ShouldBeTrue)

		_, err = EstimatePose(raw, testCamera, 94)
		test.That(t, FailureKind(err), test.ShouldEqual, KindDegenerateEllipse)
	}
}

func TestCameraIntrinsics(t *testing.T) {
	params := testCamera.Intrinsics()
	test.That(t, params.Fx, test.ShouldAlmostEqual, 1643.0)
	test.That(t, params.Fy, test.ShouldAlmostEqual, 1643.0)
	test.That(t, params.Ppx, test.ShouldEqual, 640.0)
	test.That(t, params.Ppy, test.ShouldEqual, 480.0)
	test.That(t, params.FocalLength(), test.ShouldAlmostEqual, testCamera.FocalLength)

	cam := testCamera
	cam.PrincipalPoint = r2.Point{X: 600, Y: 500}
	params = cam.Intrinsics()
	test.That(t, params.Ppx, test.ShouldEqual, 600.0)
	test.That(t, params.Ppy, test.ShouldEqual, 500.0)

	back, err := CameraFromIntrinsics(params)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, back.FocalLength, test.ShouldAlmostEqual, cam.FocalLength)
	test.That(t, back.PrincipalPoint, test.ShouldResemble, cam.PrincipalPoint)
}

func TestCameraValidate(t *testing.T) {
	test.That(t, testCamera.Validate(), test.ShouldBeNil)

	cam := testCamera
	cam.FocalLength = 0
	test.That(t, errors.Is(cam.Validate(), ErrInvalidFocalLength), test.ShouldBeTrue)
	cam.FocalLength = -2
	test.That(t, errors.Is(cam.Validate(), ErrInvalidFocalLength), test.ShouldBeTrue)

	cam = testCamera
	cam.PixelSize = 0
	test.That(t, cam.Validate(), test.ShouldNotBeNil)
}
