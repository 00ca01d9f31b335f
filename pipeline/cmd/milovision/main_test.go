package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.viam.com/test"

	"github.com/joristork/milovision/config"
	"github.com/joristork/milovision/logging"
	"github.com/joristork/milovision/pipeline"
	"github.com/joristork/milovision/simulation"
)

func TestRunSimulated(t *testing.T) {
	cfg := config.Default()
	cfg.Simulation.Generator = simulation.LinearGeneratorName

	var out bytes.Buffer
	err := run(context.Background(), cfg, "", pipeline.Limits{Frames: 10}, &out, logging.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)
	printed := strings.ToLower(out.String())
	test.That(t, printed, test.ShouldContainSubstring, "run summary")
	test.That(t, printed, test.ShouldContainSubstring, "center (mm)")
}

func TestRunDetections(t *testing.T) {
	path := filepath.Join(t.TempDir(), "detections.json")
	frames := `{"id":"a","detections":[
	  {"center_px":{"X":640,"Y":480},"minor_axis_px":100,"major_axis_px":100,"rotation_deg":0,"support":0},
	  {"center_px":{"X":640,"Y":480},"minor_axis_px":75,"major_axis_px":75,"rotation_deg":0,"support":0}]}
	{"id":"b","detections":[]}`
	test.That(t, os.WriteFile(path, []byte(frames), 0o600), test.ShouldBeNil)

	var out bytes.Buffer
	err := run(context.Background(), config.Default(), path, pipeline.Limits{}, &out, logging.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)
	printed := strings.ToLower(out.String())
	test.That(t, printed, test.ShouldContainSubstring, "run summary")
	test.That(t, printed, test.ShouldNotContainSubstring, "accuracy")

	err = run(context.Background(), config.Default(), filepath.Join(t.TempDir(), "nope.json"), pipeline.Limits{}, &out, logging.NewTestLogger(t))
	test.That(t, err, test.ShouldNotBeNil)
}

func TestMainWithArgs(t *testing.T) {
	logger := logging.NewTestLogger(t)
	err := mainWithArgs(context.Background(), []string{"milovision", "-frames", "3", "-workers", "2"}, logger)
	test.That(t, err, test.ShouldBeNil)

	err = mainWithArgs(context.Background(), []string{"milovision", "nope.json"}, logger)
	test.That(t, err, test.ShouldNotBeNil)
}
