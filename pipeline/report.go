package pipeline

import (
	"fmt"
	"math"
	"sync"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/montanaflynn/stats"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"go.uber.org/multierr"

	"github.com/joristork/milovision/spatialmath"
	"github.com/joristork/milovision/utils"
	"github.com/joristork/milovision/vision/circlepose"
)

// ErrNoMatches is returned by Report.Summary before any estimate has been compared to ground truth.
var ErrNoMatches = errors.New("no estimates with ground truth")

// Report accumulates the error of recovered poses against ground truth. It is safe for concurrent use.
type Report struct {
	mu           sync.Mutex
	centerErrors []float64
	normalErrors []float64
	missed       int
}

// PoseError is the distance between a recovered and a true pose.
type PoseError struct {
	// Center is the distance between the centers, in millimeters.
	Center float64
	// Normal is the angle between the normals, in degrees.
	Normal float64
}

// ComparePoses returns the error of est against truth.
func ComparePoses(est, truth circlepose.Pose) PoseError {
	return PoseError{
		Center: est.Center.Sub(truth.Center).Norm(),
		Normal: utils.RadToDeg(spatialmath.AngleBetween(est.Normal, truth.Normal)),
	}
}

// BestMatch returns the error of the recovered pose closest to truth, over both poses of every
// successful estimate. It returns false if there are none.
func BestMatch(truth circlepose.Pose, estimates []MarkerEstimate) (PoseError, bool) {
	successful := lo.Filter(estimates, func(e MarkerEstimate, _ int) bool { return e.Err == nil })
	if len(successful) == 0 {
		return PoseError{}, false
	}
	errs := lo.FlatMap(successful, func(e MarkerEstimate, _ int) []PoseError {
		return []PoseError{ComparePoses(e.Result.Poses[0], truth), ComparePoses(e.Result.Poses[1], truth)}
	})
	return lo.MinBy(errs, func(a, b PoseError) bool { return a.Center < b.Center }), true
}

// Add records the best estimate of a frame against its ground truth.
func (r *Report) Add(truth circlepose.Pose, estimates []MarkerEstimate) {
	best, ok := BestMatch(truth, estimates)
	r.mu.Lock()
	defer r.mu.Unlock()
	if !ok {
		r.missed++
		return
	}
	r.centerErrors = append(r.centerErrors, best.Center)
	r.normalErrors = append(r.normalErrors, best.Normal)
}

// ErrorStats summarizes a sample of errors.
type ErrorStats struct {
	Mean   float64
	Median float64
	StdDev float64
	P95    float64
	Max    float64
}

// ReportSummary summarizes a Report.
type ReportSummary struct {
	Matched int
	Missed  int
	Center  ErrorStats
	Normal  ErrorStats
}

func summarize(data stats.Float64Data) (ErrorStats, error) {
	var out ErrorStats
	var err, errs error
	out.Mean, err = data.Mean()
	errs = multierr.Append(errs, err)
	out.Median, err = data.Median()
	errs = multierr.Append(errs, err)
	out.StdDev, err = data.StandardDeviation()
	errs = multierr.Append(errs, err)
	out.P95, err = data.Percentile(95)
	errs = multierr.Append(errs, err)
	out.Max, err = data.Max()
	errs = multierr.Append(errs, err)
	return out, errs
}

// Summary computes the error statistics so far.
func (r *Report) Summary() (ReportSummary, error) {
	r.mu.Lock()
	centers := append([]float64(nil), r.centerErrors...)
	normals := append([]float64(nil), r.normalErrors...)
	out := ReportSummary{Matched: len(centers), Missed: r.missed}
	r.mu.Unlock()

	if len(centers) == 0 {
		return out, ErrNoMatches
	}
	var err error
	if out.Center, err = summarize(centers); err != nil {
		return out, errors.Wrap(err, "error summarizing center errors")
	}
	if out.Normal, err = summarize(normals); err != nil {
		return out, errors.Wrap(err, "error summarizing normal errors")
	}
	return out, nil
}

func formatError(v float64) string {
	if math.Abs(v) < 1e-3 && v != 0 {
		return fmt.Sprintf("%.3e", v)
	}
	return fmt.Sprintf("%.3f", v)
}

// Table renders the summary.
func (s ReportSummary) Table() string {
	t := table.NewWriter()
	t.SetTitle(fmt.Sprintf("Accuracy (%d frames matched, %d missed)", s.Matched, s.Missed))
	t.AppendHeader(table.Row{"Error", "Mean", "Median", "Std dev", "P95", "Max"})
	for _, row := range []struct {
		name string
		es   ErrorStats
	}{
		{"center (mm)", s.Center},
		{"normal (deg)", s.Normal},
	} {
		t.AppendRow(table.Row{
			row.name,
			formatError(row.es.Mean),
			formatError(row.es.Median),
			formatError(row.es.StdDev),
			formatError(row.es.P95),
			formatError(row.es.Max),
		})
	}
	return t.Render()
}
