package pipeline

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Limits bound a run. Zero values mean no limit.
type Limits struct {
	Frames   int
	Duration time.Duration
}

// Run processes frames from source until it is exhausted, ctx is done, or a limit is reached,
// then logs and returns the run's counters. Reaching the end of the source or a limit is not an
// error; cancellation is.
func (p *Pipeline) Run(ctx context.Context, source FrameSource, limits Limits) (StatsSnapshot, error) {
	runID := uuid.NewString()
	logger := p.logger.Sublogger("run")
	logger.Infow("starting run", "run", runID, "max_frames", limits.Frames, "max_duration", limits.Duration)

	start := p.clock.Now()
	var err error
	for n := 0; limits.Frames <= 0 || n < limits.Frames; n++ {
		if limits.Duration > 0 && p.clock.Since(start) >= limits.Duration {
			logger.Infow("time limit reached", "run", runID)
			break
		}
		var frame Frame
		frame, err = source.NextFrame(ctx)
		if errors.Is(err, io.EOF) {
			err = nil
			break
		}
		if err != nil {
			break
		}
		if _, err = p.ProcessFrame(ctx, frame); err != nil {
			break
		}
	}

	p.stats.LogSummary(logger)
	if err != nil {
		return p.stats.Snapshot(), errors.Wrapf(err, "run %s stopped", runID)
	}
	return p.stats.Snapshot(), nil
}
