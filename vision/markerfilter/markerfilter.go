// Package markerfilter picks, out of all ellipses fit to the contours of a frame, the outer
// boundaries of markers: pairs of concentric ellipses whose sizes match the ratio of the
// marker's outer and inner circles.
package markerfilter

import (
	"math"

	"github.com/pkg/errors"
	"github.com/samber/lo"
	"go.uber.org/multierr"

	"github.com/joristork/milovision/marker"
	"github.com/joristork/milovision/utils"
	"github.com/joristork/milovision/vision/circlepose"
)

// Postprocessor defines a function that filters/modifies on an incoming array of ellipses.
type Postprocessor func([]circlepose.RawEllipse) []circlepose.RawEllipse

// NewSupportFilter returns a function that filters out ellipses fit to fewer than minSupport
// contour points. Ellipses of unknown support are kept.
func NewSupportFilter(minSupport int) Postprocessor {
	return func(in []circlepose.RawEllipse) []circlepose.RawEllipse {
		return lo.Filter(in, func(e circlepose.RawEllipse, _ int) bool {
			return e.Support == 0 || e.Support >= minSupport
		})
	}
}

// NewAspectRatioFilter returns a function that filters out ellipses more elongated than maxRatio.
func NewAspectRatioFilter(maxRatio float64) Postprocessor {
	return func(in []circlepose.RawEllipse) []circlepose.RawEllipse {
		return lo.Filter(in, func(e circlepose.RawEllipse, _ int) bool {
			return AspectRatio(e) <= maxRatio
		})
	}
}

// AspectRatio is the ratio of the longer to the shorter axis, +Inf for a zero axis.
func AspectRatio(e circlepose.RawEllipse) float64 {
	long, short := math.Max(e.MajorAxis, e.MinorAxis), math.Min(e.MajorAxis, e.MinorAxis)
	if !(short > 0) {
		return math.Inf(1)
	}
	return long / short
}

// Config holds the thresholds of the marker filter.
type Config struct {
	MinSupport             int     `json:"min_support"`
	MaxAspectRatio         float64 `json:"max_aspect_ratio"`
	MaxCenterDistance      float64 `json:"max_center_distance_px"`
	MaxRelativeInclination float64 `json:"max_relative_inclination_deg"`
	// CircularAspectRatio is the aspect ratio below which an ellipse's inclination is meaningless.
	CircularAspectRatio float64 `json:"circular_aspect_ratio"`
	SizeRatioErrorBelow float64 `json:"size_ratio_error_below"`
	SizeRatioErrorAbove float64 `json:"size_ratio_error_above"`
}

// DefaultConfig returns the thresholds tuned for the standard marker.
func DefaultConfig() Config {
	return Config{
		MinSupport:             10,
		MaxAspectRatio:         10,
		MaxCenterDistance:      4,
		MaxRelativeInclination: 30,
		CircularAspectRatio:    1.2,
		SizeRatioErrorBelow:    0.25,
		SizeRatioErrorAbove:    0.5,
	}
}

// Validate ensures all parts of the config are valid.
func (c Config) Validate(path string) error {
	var errs error
	check := func(ok bool, format string, args ...interface{}) {
		if !ok {
			errs = multierr.Append(errs, utils.NewConfigValidationError(path, errors.Errorf(format, args...)))
		}
	}
	check(c.MinSupport >= 0, "min_support must not be negative, got %d", c.MinSupport)
	check(c.MaxAspectRatio >= 1, "max_aspect_ratio must be at least 1, got %v", c.MaxAspectRatio)
	check(c.MaxCenterDistance >= 0, "max_center_distance_px must not be negative, got %v", c.MaxCenterDistance)
	check(c.MaxRelativeInclination > 0 && c.MaxRelativeInclination <= 90,
		"max_relative_inclination_deg must be in (0, 90], got %v", c.MaxRelativeInclination)
	check(c.CircularAspectRatio >= 1, "circular_aspect_ratio must be at least 1, got %v", c.CircularAspectRatio)
	check(c.SizeRatioErrorBelow >= 0, "size_ratio_error_below must not be negative, got %v", c.SizeRatioErrorBelow)
	check(c.SizeRatioErrorAbove >= 0, "size_ratio_error_above must not be negative, got %v", c.SizeRatioErrorAbove)
	return errs
}

// Filter pairs the ellipses of one frame into marker candidates.
type Filter struct {
	cfg      Config
	geometry marker.Geometry
	pre      []Postprocessor
}

// New returns a Filter for markers of the given geometry.
func New(cfg Config, geometry marker.Geometry) *Filter {
	return &Filter{
		cfg:      cfg,
		geometry: geometry,
		pre:      []Postprocessor{NewSupportFilter(cfg.MinSupport), NewAspectRatioFilter(cfg.MaxAspectRatio)},
	}
}

// Candidates compares every remaining ellipse with every other and returns the larger ellipse of
// each pair that could be the outer and inner circle of one marker. Each ellipse appears at most
// once, in input order.
func (f *Filter) Candidates(ellipses []circlepose.RawEllipse) []circlepose.RawEllipse {
	for _, p := range f.pre {
		ellipses = p(ellipses)
	}
	accepted := make([]bool, len(ellipses))
	for i := range ellipses {
		for j := i + 1; j < len(ellipses); j++ {
			larger, smaller := i, j
			if ellipses[j].MajorAxis > ellipses[i].MajorAxis {
				larger, smaller = j, i
			}
			if f.pairs(ellipses[larger], ellipses[smaller]) {
				accepted[larger] = true
			}
		}
	}
	return lo.Filter(ellipses, func(_ circlepose.RawEllipse, i int) bool {
		return accepted[i]
	})
}

func (f *Filter) pairs(larger, smaller circlepose.RawEllipse) bool {
	if larger.Center.Sub(smaller.Center).Norm() > f.cfg.MaxCenterDistance {
		return false
	}
	bothCircular := AspectRatio(larger) < f.cfg.CircularAspectRatio && AspectRatio(smaller) < f.cfg.CircularAspectRatio
	if !bothCircular && inclinationDiff(larger.RotationDeg, smaller.RotationDeg) >= f.cfg.MaxRelativeInclination {
		return false
	}
	if !(smaller.MajorAxis > 0) {
		return false
	}
	want := f.geometry.SizeRatio()
	ratio := larger.MajorAxis / smaller.MajorAxis
	return ratio > want-f.cfg.SizeRatioErrorBelow && ratio < want+f.cfg.SizeRatioErrorAbove
}

// inclinationDiff is the difference in degrees between two ellipse rotations, which are
// equivalent modulo 180.
func inclinationDiff(a, b float64) float64 {
	d := math.Mod(math.Abs(a-b), 180)
	return math.Min(d, 180-d)
}
