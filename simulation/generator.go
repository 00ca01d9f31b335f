// Package simulation produces synthetic marker frames: poses inside the camera's field of view
// and the exact ellipses a marker at each pose images to.
package simulation

import (
	"math"
	"math/rand"

	"github.com/go-viper/mapstructure/v2"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"github.com/joristork/milovision/marker"
	"github.com/joristork/milovision/rimage/transform"
	"github.com/joristork/milovision/spatialmath"
	"github.com/joristork/milovision/utils"
	"github.com/joristork/milovision/vision/circlepose"
)

// Generator names accepted by NewGenerator.
const (
	LinearGeneratorName = "linear"
	RandomGeneratorName = "random"
)

// facing is the normal of a marker looking straight back at the camera.
var facing = r3.Vector{Z: -1}

// Generator yields marker poses until it is exhausted.
type Generator interface {
	Next() (circlepose.Pose, bool)
}

// fieldOfView holds the half-angle tangents of the camera's field of view.
type fieldOfView struct {
	tanX, tanY float64
}

func newFieldOfView(params *transform.PinholeCameraIntrinsics) fieldOfView {
	return fieldOfView{
		tanX: math.Tan(utils.DegToRad(params.FOVX()) / 2),
		tanY: math.Tan(utils.DegToRad(params.FOVY()) / 2),
	}
}

// MinDistance is the distance in millimeters at which the marker's square frame fills the image height.
func MinDistance(params *transform.PinholeCameraIntrinsics) float64 {
	return 0.5 * marker.FrameSize / newFieldOfView(params).tanY
}

// LinearAttributes configures a LinearGenerator.
type LinearAttributes struct {
	// Poses is the total number of poses, spread over five lines. Rounded down to a multiple of five.
	Poses int `json:"poses"`
	// DepthFactor is how many minimum distances a line advances in depth.
	DepthFactor float64 `json:"depth_factor"`
}

// RandomAttributes configures a RandomGenerator.
type RandomAttributes struct {
	// Poses is the number of poses to generate, unlimited if zero.
	Poses int `json:"poses"`
	// MaxDepth is the depth range in millimeters beyond the minimum distance.
	MaxDepth float64 `json:"max_depth_mm"`
	// MaxViewAngle is the largest angle in degrees between the line of sight and the marker's front.
	MaxViewAngle float64 `json:"max_view_angle_deg"`
}

// LinearGenerator moves a camera-facing marker away from the camera along five straight lines:
// toward each corner of the field of view, then along the optical axis.
type LinearGenerator struct {
	fov      fieldOfView
	minDist  float64
	perStage int
	zStep    float64
	n        int
}

var linearStageSigns = [5][2]float64{{1, 1}, {1, -1}, {-1, -1}, {-1, 1}, {0, 0}}

// NewLinearGenerator returns a LinearGenerator for the given camera.
func NewLinearGenerator(params *transform.PinholeCameraIntrinsics, attrs LinearAttributes) *LinearGenerator {
	if attrs.Poses <= 0 {
		attrs.Poses = 30
	}
	if attrs.DepthFactor <= 0 {
		attrs.DepthFactor = 50
	}
	perStage := attrs.Poses / len(linearStageSigns)
	if perStage == 0 {
		perStage = 1
	}
	return &LinearGenerator{
		fov:      newFieldOfView(params),
		minDist:  MinDistance(params),
		perStage: perStage,
		zStep:    attrs.DepthFactor / float64(perStage),
	}
}

// Next returns the next pose, or false once all lines are done.
func (g *LinearGenerator) Next() (circlepose.Pose, bool) {
	stage := g.n / g.perStage
	if stage >= len(linearStageSigns) {
		return circlepose.Pose{}, false
	}
	k := g.n % g.perStage
	g.n++

	z := g.minDist + float64(k)*g.zStep*g.minDist
	signs := linearStageSigns[stage]
	return circlepose.Pose{
		Center: r3.Vector{
			X: signs[0] * (z - g.minDist) * g.fov.tanX,
			Y: signs[1] * (z - g.minDist) * g.fov.tanY,
			Z: z,
		},
		Normal: facing,
	}, true
}

// RandomGenerator places the marker uniformly in depth and within the field of view at that
// depth, with a random orientation that still shows the marker's front to the camera.
type RandomGenerator struct {
	rng          *rand.Rand
	fov          fieldOfView
	minDist      float64
	maxDepth     float64
	maxViewAngle float64
	limit        int
	n            int
}

// NewRandomGenerator returns a RandomGenerator for the given camera drawing from rng.
func NewRandomGenerator(params *transform.PinholeCameraIntrinsics, attrs RandomAttributes, rng *rand.Rand) *RandomGenerator {
	if attrs.MaxDepth <= 0 {
		attrs.MaxDepth = 10000
	}
	if attrs.MaxViewAngle <= 0 {
		attrs.MaxViewAngle = 72
	}
	return &RandomGenerator{
		rng:          rng,
		fov:          newFieldOfView(params),
		minDist:      MinDistance(params),
		maxDepth:     attrs.MaxDepth,
		maxViewAngle: utils.DegToRad(math.Min(attrs.MaxViewAngle, 89)),
		limit:        attrs.Poses,
	}
}

// Next returns a random pose, or false once the configured number of poses has been produced.
func (g *RandomGenerator) Next() (circlepose.Pose, bool) {
	if g.limit > 0 && g.n >= g.limit {
		return circlepose.Pose{}, false
	}
	g.n++

	z := g.minDist + g.rng.Float64()*g.maxDepth
	xRange := (z - g.minDist) * g.fov.tanX
	yRange := (z - g.minDist) * g.fov.tanY
	center := r3.Vector{
		X: (2*g.rng.Float64() - 1) * xRange,
		Y: (2*g.rng.Float64() - 1) * yRange,
		Z: z,
	}
	for {
		normal := facing
		for _, axis := range []r3.Vector{{X: 1}, {Y: 1}, {Z: 1}} {
			rot := spatialmath.RotationAbout(axis, g.rng.Float64()*2*math.Pi)
			normal = spatialmath.Transform(rot, normal)
		}
		pose := circlepose.Pose{Center: center, Normal: normal.Normalize()}
		if pose.Normal.Z < 0 && ViewAngle(pose) <= g.maxViewAngle {
			return pose, true
		}
	}
}

// ViewAngle is the angle in radians between the line of sight to the marker and the marker's front.
func ViewAngle(p circlepose.Pose) float64 {
	return spatialmath.AngleBetween(p.Center, p.Normal.Mul(-1))
}

// NewGenerator builds the named generator, decoding its attributes.
func NewGenerator(
	name string,
	attributes map[string]interface{},
	params *transform.PinholeCameraIntrinsics,
	rng *rand.Rand,
) (Generator, error) {
	switch name {
	case LinearGeneratorName:
		var attrs LinearAttributes
		if err := decodeAttributes(attributes, &attrs); err != nil {
			return nil, err
		}
		return NewLinearGenerator(params, attrs), nil
	case RandomGeneratorName:
		var attrs RandomAttributes
		if err := decodeAttributes(attributes, &attrs); err != nil {
			return nil, err
		}
		return NewRandomGenerator(params, attrs, rng), nil
	default:
		return nil, errors.Errorf("unknown pose generator %q", name)
	}
}

func decodeAttributes(attributes map[string]interface{}, to interface{}) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		Result:           to,
		ErrorUnused:      true,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return err
	}
	return errors.Wrap(decoder.Decode(attributes), "error decoding generator attributes")
}
