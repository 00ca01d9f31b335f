package pipeline

import (
	"context"

	"github.com/benbjohnson/clock"
	"go.uber.org/multierr"

	"github.com/joristork/milovision/logging"
	"github.com/joristork/milovision/marker"
	"github.com/joristork/milovision/utils"
	"github.com/joristork/milovision/vision/circlepose"
	"github.com/joristork/milovision/vision/markerfilter"
)

// MarkerEstimate is the outcome of pose recovery for one candidate ellipse. Exactly one of
// Result and Err is set.
type MarkerEstimate struct {
	Raw     circlepose.RawEllipse
	Ellipse circlepose.ImageEllipse
	Result  circlepose.Result
	Err     error
}

// FrameResult is the outcome of processing one frame.
type FrameResult struct {
	Frame      Frame
	Candidates []circlepose.RawEllipse
	Estimates  []MarkerEstimate
}

// Pipeline recovers marker poses frame by frame.
type Pipeline struct {
	cam     circlepose.Camera
	radius  float64
	filter  *markerfilter.Filter
	workers int
	clock   clock.Clock
	logger  logging.Logger

	stats  *Stats
	report *Report
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithClock sets the clock used for timing; the default is the wall clock.
func WithClock(clk clock.Clock) Option {
	return func(p *Pipeline) {
		p.clock = clk
	}
}

// WithWorkers bounds how many ellipses of a frame are processed at once. Zero or less uses
// utils.ParallelFactor.
func WithWorkers(n int) Option {
	return func(p *Pipeline) {
		p.workers = n
	}
}

// New returns a pipeline for markers of the given geometry seen by cam. Invalid camera,
// marker or filter parameters are reported here rather than per frame.
func New(
	cam circlepose.Camera,
	geometry marker.Geometry,
	filterCfg markerfilter.Config,
	logger logging.Logger,
	opts ...Option,
) (*Pipeline, error) {
	if err := multierr.Combine(
		cam.Validate(),
		geometry.Validate("marker"),
		filterCfg.Validate("filter"),
	); err != nil {
		return nil, err
	}
	p := &Pipeline{
		cam:    cam,
		radius: geometry.Radius(),
		filter: markerfilter.New(filterCfg, geometry),
		clock:  clock.New(),
		logger: logger,
		report: &Report{},
	}
	for _, opt := range opts {
		opt(p)
	}
	p.stats = NewStats(p.clock)
	return p, nil
}

// Stats returns the pipeline's counters.
func (p *Pipeline) Stats() *Stats {
	return p.stats
}

// Report returns the accuracy report of frames with ground truth.
func (p *Pipeline) Report() *Report {
	return p.report
}

// ProcessFrame filters the frame's ellipses to marker candidates and recovers the poses of each
// candidate in parallel. A failure for one ellipse is recorded in its MarkerEstimate and never
// affects the others; the returned error is only non-nil if ctx is done.
func (p *Pipeline) ProcessFrame(ctx context.Context, frame Frame) (FrameResult, error) {
	start := p.clock.Now()
	candidates := p.filter.Candidates(frame.Detections)
	estimates := make([]MarkerEstimate, len(candidates))
	if err := utils.ParallelForEach(ctx, len(candidates), p.workers, func(ctx context.Context, i int) error {
		estimates[i] = p.estimate(candidates[i])
		return nil
	}); err != nil {
		return FrameResult{}, err
	}

	p.stats.recordFrame(len(frame.Detections), len(candidates), p.clock.Since(start))
	for _, est := range estimates {
		p.stats.recordEstimate(est)
		if est.Err != nil {
			p.logger.Debugw("pose recovery failed",
				"frame", frame.ID,
				"kind", circlepose.FailureKind(est.Err),
				"error", est.Err)
		}
	}
	if frame.Truth != nil {
		p.report.Add(*frame.Truth, estimates)
	}
	return FrameResult{Frame: frame, Candidates: candidates, Estimates: estimates}, nil
}

func (p *Pipeline) estimate(raw circlepose.RawEllipse) MarkerEstimate {
	est := MarkerEstimate{Raw: raw}
	est.Ellipse, est.Err = circlepose.Normalize(raw, p.cam)
	if est.Err != nil {
		return est
	}
	est.Result, est.Err = circlepose.EstimatePoseFromImageEllipse(est.Ellipse, p.cam.FocalLength, p.radius)
	return est
}
