package pipeline

import (
	"fmt"
	"strconv"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/jedib0t/go-pretty/v6/table"
	"go.uber.org/atomic"

	"github.com/joristork/milovision/logging"
	"github.com/joristork/milovision/utils"
	"github.com/joristork/milovision/vision/circlepose"
)

// frameTimeWindow is how many recent frames the rolling frame time covers.
const frameTimeWindow = 100

// Stats counts what happened to the frames and ellipses of a run. It is safe for concurrent use.
type Stats struct {
	clock clock.Clock
	start time.Time

	frames     atomic.Int64
	ellipses   atomic.Int64
	candidates atomic.Int64
	successes  atomic.Int64
	orderings  [circlepose.NumOrderings]atomic.Int64
	// keys are fixed at construction
	failures map[string]*atomic.Int64
	// milliseconds
	frameTimes *utils.RollingAverage
}

// NewStats returns Stats timed by clk, starting now.
func NewStats(clk clock.Clock) *Stats {
	s := &Stats{
		clock:      clk,
		start:      clk.Now(),
		failures:   make(map[string]*atomic.Int64, len(circlepose.FailureKinds)),
		frameTimes: utils.NewRollingAverage(frameTimeWindow),
	}
	for _, kind := range circlepose.FailureKinds {
		s.failures[kind] = atomic.NewInt64(0)
	}
	return s
}

func (s *Stats) recordFrame(detections, candidates int, took time.Duration) {
	s.frameTimes.Add(float64(took) / float64(time.Millisecond))
	s.frames.Inc()
	s.ellipses.Add(int64(detections))
	s.candidates.Add(int64(candidates))
}

func (s *Stats) recordEstimate(est MarkerEstimate) {
	if est.Err != nil {
		s.failures[circlepose.FailureKind(est.Err)].Inc()
		return
	}
	s.successes.Inc()
	if o := est.Result.Ordering(); o >= 1 && o <= len(s.orderings) {
		s.orderings[o-1].Inc()
	}
}

// StatsSnapshot is a point in time copy of Stats.
type StatsSnapshot struct {
	Frames     int64
	Ellipses   int64
	Candidates int64
	Successes  int64
	// Orderings[i] counts estimates that used eigenvalue ordering i+1.
	Orderings [circlepose.NumOrderings]int64
	Failures  map[string]int64
	Elapsed   time.Duration
	// RecentFrameTime is the mean processing time of the last frames.
	RecentFrameTime time.Duration
}

// Snapshot copies the current counters.
func (s *Stats) Snapshot() StatsSnapshot {
	snap := StatsSnapshot{
		Frames:     s.frames.Load(),
		Ellipses:   s.ellipses.Load(),
		Candidates: s.candidates.Load(),
		Successes:  s.successes.Load(),
		Failures:   make(map[string]int64, len(s.failures)),
		Elapsed:    s.clock.Since(s.start),

		RecentFrameTime: time.Duration(s.frameTimes.Average() * float64(time.Millisecond)),
	}
	for i := range s.orderings {
		snap.Orderings[i] = s.orderings[i].Load()
	}
	for kind, n := range s.failures {
		snap.Failures[kind] = n.Load()
	}
	return snap
}

// FPS is the mean frame rate over the elapsed time.
func (snap StatsSnapshot) FPS() float64 {
	if snap.Elapsed <= 0 {
		return 0
	}
	return float64(snap.Frames) / snap.Elapsed.Seconds()
}

// TotalFailures sums the failures of every kind.
func (snap StatsSnapshot) TotalFailures() int64 {
	var total int64
	for _, n := range snap.Failures {
		total += n
	}
	return total
}

func perFrame(n, frames int64) float64 {
	if frames == 0 {
		return 0
	}
	return float64(n) / float64(frames)
}

// Summary renders the snapshot as a table.
func (snap StatsSnapshot) Summary() string {
	t := table.NewWriter()
	t.SetTitle("Run summary")
	t.AppendHeader(table.Row{"Metric", "Value"})
	t.AppendRows([]table.Row{
		{"frames", snap.Frames},
		{"elapsed", snap.Elapsed.Round(time.Millisecond).String()},
		{"frames per second", fmt.Sprintf("%.2f", snap.FPS())},
		{"recent frame time", snap.RecentFrameTime.String()},
		{"ellipses per frame", fmt.Sprintf("%.2f", perFrame(snap.Ellipses, snap.Frames))},
		{"candidates per frame", fmt.Sprintf("%.2f", perFrame(snap.Candidates, snap.Frames))},
		{"poses recovered", snap.Successes},
	})
	t.AppendSeparator()
	for i, n := range snap.Orderings {
		t.AppendRow(table.Row{"eigen ordering " + strconv.Itoa(i+1), n})
	}
	t.AppendSeparator()
	for _, kind := range circlepose.FailureKinds {
		if n := snap.Failures[kind]; n > 0 {
			t.AppendRow(table.Row{"failed: " + kind, n})
		}
	}
	t.AppendFooter(table.Row{"failures", snap.TotalFailures()})
	return t.Render()
}

// Summary renders the current counters as a table.
func (s *Stats) Summary() string {
	return s.Snapshot().Summary()
}

// LogSummary logs the current counters at info level.
func (s *Stats) LogSummary(logger logging.Logger) {
	snap := s.Snapshot()
	keysAndValues := []interface{}{
		"frames", snap.Frames,
		"elapsed", snap.Elapsed,
		"fps", snap.FPS(),
		"recent_frame_time", snap.RecentFrameTime,
		"ellipses_per_frame", perFrame(snap.Ellipses, snap.Frames),
		"candidates_per_frame", perFrame(snap.Candidates, snap.Frames),
		"successes", snap.Successes,
	}
	for i, n := range snap.Orderings {
		keysAndValues = append(keysAndValues, "ordering_"+strconv.Itoa(i+1), n)
	}
	for _, kind := range circlepose.FailureKinds {
		keysAndValues = append(keysAndValues, "failed_"+kind, snap.Failures[kind])
	}
	logger.Infow("run summary", keysAndValues...)
}
