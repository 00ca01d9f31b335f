package circlepose

import (
	"math/rand"

	"github.com/golang/geo/r3"
)

// randomVisiblePose returns a pose in front of the camera whose front face is seen at less
// than ~72 degrees from its normal.
func randomVisiblePose(rng *rand.Rand) Pose {
	center := r3.Vector{
		X: rng.Float64()*1600 - 800,
		Y: rng.Float64()*1200 - 600,
		Z: 2000 + rng.Float64()*13000,
	}
	sight := center.Normalize()
	for {
		n := r3.Vector{X: rng.Float64()*2 - 1, Y: rng.Float64()*2 - 1, Z: -rng.Float64()}
		if n.Norm() < 1e-3 {
			continue
		}
		n = n.Normalize()
		if n.Dot(sight) < -0.3 {
			return Pose{Center: center, Normal: n}
		}
	}
}
