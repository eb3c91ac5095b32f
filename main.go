package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/pthm-cable/homeostat/backend"
	"github.com/pthm-cable/homeostat/config"
	"github.com/pthm-cable/homeostat/controller"
	"github.com/pthm-cable/homeostat/telemetry"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	mode := flag.String("mode", "model", "Run mode: model, teleop or stop")
	logStats := flag.Bool("log-stats", false, "Output stats and state dumps via slog")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	maxTicks := flag.Int("max-ticks", 0, "Stop after N ticks (0 = use config)")
	realtime := flag.Bool("realtime", false, "Pace ticks with the wall clock")
	obstacles := flag.Int("obstacles", 6, "Obstacles scattered in the simulated arena")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(rngSeed))

	arena := backend.NewArena(cfg, rng)
	arena.Scatter(rng, *obstacles)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var err error
	switch *mode {
	case "model":
		err = runModel(ctx, cfg, arena, modelOptions{
			seed:      rngSeed,
			logStats:  *logStats,
			outputDir: *outputDir,
			maxTicks:  *maxTicks,
			realtime:  *realtime,
		})
	case "teleop":
		err = controller.NewTeleop(cfg, arena, arena, os.Stderr).Run(ctx, os.Stdin)
	case "stop":
		err = arena.Stop(ctx)
	default:
		slog.Error("unknown mode", "mode", *mode)
		os.Exit(2)
	}

	if err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("run failed", "mode", *mode, "error", err)
		os.Exit(1)
	}
}

type modelOptions struct {
	seed      int64
	logStats  bool
	outputDir string
	maxTicks  int
	realtime  bool
}

// runModel runs the drive-reduction controller until a drive is exhausted.
func runModel(ctx context.Context, cfg *config.Config, arena *backend.Arena, mo modelOptions) error {
	runID := uuid.NewString()

	output, err := telemetry.NewOutputManager(mo.outputDir)
	if err != nil {
		return err
	}
	defer func() {
		if err := output.Close(); err != nil {
			slog.Error("failed to close output", "error", err)
		}
	}()
	if err := output.WriteConfig(cfg); err != nil {
		return err
	}

	ctrl, err := controller.New(cfg, controller.Backends{
		Sensors:   arena,
		Actuator:  arena,
		Indicator: arena,
		Battery:   arena,
	}, controller.Options{
		RunID:    runID,
		LogStats: mo.logStats,
		Realtime: mo.realtime,
		MaxTicks: mo.maxTicks,
		Output:   output,
	})
	if err != nil {
		return err
	}
	defer ctrl.Close()

	slog.Info("starting run",
		"run_id", runID,
		"seed", mo.seed,
		"max_ticks", mo.maxTicks,
		"realtime", mo.realtime,
		"output_dir", output.Dir(),
	)

	_, err = ctrl.Run(ctx)
	return err
}
