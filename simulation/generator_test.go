package simulation

import (
	"math"
	"math/rand"
	"testing"

	"go.viam.com/test"

	"github.com/joristork/milovision/rimage/transform"
	"github.com/joristork/milovision/utils"
)

func simulatedCamera(t *testing.T) *transform.PinholeCameraIntrinsics {
	t.Helper()
	params, err := transform.NewPinholeCameraIntrinsicsFromFOV(1280, 960, 32.5855, 0.00375)
	test.That(t, err, test.ShouldBeNil)
	return params
}

func TestMinDistance(t *testing.T) {
	params := simulatedCamera(t)
	d := MinDistance(params)
	test.That(t, d, test.ShouldAlmostEqual, 105/math.Tan(utils.DegToRad(32.5855)/2), 1e-9)
	test.That(t, d, test.ShouldBeBetween, 355.0, 365.0)
}

func TestLinearGenerator(t *testing.T) {
	params := simulatedCamera(t)
	gen := NewLinearGenerator(params, LinearAttributes{})
	minDist := MinDistance(params)
	tanX := float64(params.Width) / (2 * params.Fx)

	var count int
	for {
		pose, ok := gen.Next()
		if !ok {
			break
		}
		if count%6 == 0 {
			test.That(t, pose.Center.Z, test.ShouldAlmostEqual, minDist)
			test.That(t, pose.Center.X, test.ShouldAlmostEqual, 0.0)
		}
		test.That(t, pose.Normal, test.ShouldResemble, facing)
		test.That(t, math.Abs(pose.Center.X), test.ShouldBeLessThan, pose.Center.Z*tanX+1e-9)
		switch stage := count / 6; stage {
		case 0:
			test.That(t, pose.Center.X, test.ShouldBeGreaterThanOrEqualTo, 0.0)
			test.That(t, pose.Center.Y, test.ShouldBeGreaterThanOrEqualTo, 0.0)
		case 2:
			test.That(t, pose.Center.X, test.ShouldBeLessThanOrEqualTo, 0.0)
			test.That(t, pose.Center.Y, test.ShouldBeLessThanOrEqualTo, 0.0)
		case 4:
			test.That(t, pose.Center.X, test.ShouldAlmostEqual, 0.0)
			test.That(t, pose.Center.Y, test.ShouldAlmostEqual, 0.0)
		}
		count++
	}
	test.That(t, count, test.ShouldEqual, 30)
	_, ok := gen.Next()
	test.That(t, ok, test.ShouldBeFalse)

	gen = NewLinearGenerator(params, LinearAttributes{Poses: 10, DepthFactor: 4})
	var last float64
	for i := 0; i < 2; i++ {
		pose, ok := gen.Next()
		test.That(t, ok, test.ShouldBeTrue)
		last = pose.Center.Z
	}
	test.That(t, last, test.ShouldAlmostEqual, minDist*3)
}

func TestRandomGenerator(t *testing.T) {
	params := simulatedCamera(t)
	gen := NewRandomGenerator(params, RandomAttributes{Poses: 200}, rand.New(rand.NewSource(1)))
	minDist := MinDistance(params)

	var count int
	for {
		pose, ok := gen.Next()
		if !ok {
			break
		}
		count++
		test.That(t, pose.Center.Z, test.ShouldBeBetweenOrEqual, minDist, minDist+10000)
		test.That(t, pose.Normal.Norm(), test.ShouldAlmostEqual, 1.0)
		test.That(t, pose.Plausible(), test.ShouldBeTrue)
		test.That(t, ViewAngle(pose), test.ShouldBeLessThanOrEqualTo, utils.DegToRad(72))
	}
	test.That(t, count, test.ShouldEqual, 200)
}

func TestNewGenerator(t *testing.T) {
	params := simulatedCamera(t)
	rng := rand.New(rand.NewSource(1))

	gen, err := NewGenerator(LinearGeneratorName, map[string]interface{}{"poses": 5}, params, rng)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, gen.(*LinearGenerator).perStage, test.ShouldEqual, 1)

	gen, err = NewGenerator(RandomGeneratorName, map[string]interface{}{"max_depth_mm": "2000", "poses": 3}, params, rng)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, gen.(*RandomGenerator).maxDepth, test.ShouldEqual, 2000.0)
	test.That(t, gen.(*RandomGenerator).limit, test.ShouldEqual, 3)

	gen, err = NewGenerator(RandomGeneratorName, nil, params, rng)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, gen.(*RandomGenerator).maxDepth, test.ShouldEqual, 10000.0)

	_, err = NewGenerator(RandomGeneratorName, map[string]interface{}{"max_depth": 1}, params, rng)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "max_depth")

	_, err = NewGenerator("spiral", nil, params, rng)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "unknown pose generator")
}
