package utils

import (
	"context"
	"runtime"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// ParallelFactor controls the max level of parallelization. This might be useful
// to set in tests where too much parallelism actually slows tests down in
// aggregate.
var ParallelFactor = runtime.GOMAXPROCS(0)

func init() {
	if ParallelFactor <= 0 {
		ParallelFactor = 1
	}
	quarterProcs := float64(ParallelFactor) * .25
	if quarterProcs > 8 {
		ParallelFactor = int(quarterProcs)
	}
}

// ParallelForEach calls f for every index in [0, n) using at most `limit` goroutines at a time
// (ParallelFactor when limit <= 0). The first error returned, or a recovered panic, cancels the
// context handed to the remaining calls and is returned once all started calls have finished.
func ParallelForEach(ctx context.Context, n, limit int, f func(ctx context.Context, i int) error) error {
	if limit <= 0 {
		limit = ParallelFactor
	}
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(limit)
	for i := 0; i < n; i++ {
		if groupCtx.Err() != nil {
			break
		}
		workNum := i
		group.Go(func() (err error) {
			defer func() {
				if thePanic := recover(); thePanic != nil {
					err = errors.Errorf("got panic running work item %d in parallel: %v", workNum, thePanic)
				}
			}()
			return f(groupCtx, workNum)
		})
	}
	if err := group.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}
