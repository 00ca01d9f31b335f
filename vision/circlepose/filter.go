package circlepose

import (
	"github.com/pkg/errors"
	"github.com/samber/lo"
)

// Plausible reports whether a pose is physically possible for a visible marker: in front of the
// camera and facing it.
func (p Pose) Plausible() bool {
	return p.Normal.Z < 0 && p.Center.Z > 0
}

// FilterPlausible keeps the plausible candidates, which must number exactly two.
func FilterPlausible(candidates [8]Candidate) ([2]Candidate, error) {
	var out [2]Candidate
	survivors := lo.Filter(candidates[:], func(c Candidate, _ int) bool {
		return c.Plausible()
	})
	if len(survivors) != len(out) {
		return out, errors.Wrapf(ErrAmbiguousPoseCount, "%d of %d candidates are plausible", len(survivors), len(candidates))
	}
	copy(out[:], survivors)
	return out, nil
}
