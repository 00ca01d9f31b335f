// Package main estimates marker poses from simulated frames or from a file of detected ellipses
// and prints a summary of the run.
package main

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"os"
	"time"

	"github.com/pkg/errors"
	"go.viam.com/utils"

	"github.com/joristork/milovision/config"
	"github.com/joristork/milovision/logging"
	"github.com/joristork/milovision/pipeline"
	"github.com/joristork/milovision/simulation"
)

var logger = logging.NewLogger("milovision")

func main() {
	utils.ContextualMain(mainWithArgs, logger)
}

// Arguments for the command.
type Arguments struct {
	ConfigFile string `flag:"0,usage=config file; defaults are used if empty"`
	Detections string `flag:"detections,usage=JSON stream of detected ellipses; frames are simulated if empty"`
	Frames     int    `flag:"frames,usage=stop after this many frames"`
	SimTime    int    `flag:"simtime,usage=stop after this many seconds"`
	Workers    int    `flag:"workers,usage=ellipses of a frame processed at once"`
	Debug      bool   `flag:"debug"`
}

func mainWithArgs(ctx context.Context, args []string, logger logging.Logger) error {
	var argsParsed Arguments
	if err := utils.ParseFlags(args, &argsParsed); err != nil {
		return err
	}
	if argsParsed.Debug {
		logger.SetLevel(logging.DEBUG)
	}

	cfg := config.Default()
	if argsParsed.ConfigFile != "" {
		var err error
		cfg, err = config.Read(ctx, argsParsed.ConfigFile, logger)
		if err != nil {
			return err
		}
	}
	if argsParsed.Workers != 0 {
		cfg.Workers = argsParsed.Workers
	}

	limits := pipeline.Limits{
		Frames:   argsParsed.Frames,
		Duration: time.Duration(argsParsed.SimTime) * time.Second,
	}
	return run(ctx, cfg, argsParsed.Detections, limits, os.Stdout, logger)
}

func run(
	ctx context.Context,
	cfg *config.Config,
	detectionsPath string,
	limits pipeline.Limits,
	out io.Writer,
	logger logging.Logger,
) (err error) {
	cam, err := cfg.CoreCamera()
	if err != nil {
		return err
	}
	p, err := pipeline.New(cam, cfg.Marker, cfg.Filter, logger, pipeline.WithWorkers(cfg.Workers))
	if err != nil {
		return err
	}

	var source pipeline.FrameSource
	if detectionsPath != "" {
		//nolint:gosec
		f, err := os.Open(detectionsPath)
		if err != nil {
			return err
		}
		defer utils.UncheckedErrorFunc(f.Close)
		source = pipeline.NewJSONSource(f)
	} else {
		rng := rand.New(rand.NewSource(cfg.Simulation.Seed)) //nolint:gosec
		gen, err := simulation.NewGenerator(cfg.Simulation.Generator, cfg.Simulation.Attributes, &cfg.Camera, rng)
		if err != nil {
			return err
		}
		sim, err := simulation.NewSimulator(&cfg.Camera, cfg.Marker, cfg.Simulation.NoisePx, rng)
		if err != nil {
			return err
		}
		logger.Infow("simulating frames",
			"generator", cfg.Simulation.Generator,
			"seed", cfg.Simulation.Seed,
			"min_distance_mm", simulation.MinDistance(&cfg.Camera))
		source = simulation.NewSource(gen, sim)
	}

	snap, runErr := p.Run(ctx, source, limits)
	if _, err := fmt.Fprintln(out, snap.Summary()); err != nil {
		return err
	}
	summary, err := p.Report().Summary()
	switch {
	case errors.Is(err, pipeline.ErrNoMatches):
		if summary.Missed > 0 {
			logger.Warnw("no marker recovered in frames with ground truth", "frames", summary.Missed)
		}
	case err != nil:
		return err
	default:
		if _, err := fmt.Fprintln(out, summary.Table()); err != nil {
			return err
		}
	}

	if errors.Is(runErr, context.Canceled) {
		return nil
	}
	return runErr
}
