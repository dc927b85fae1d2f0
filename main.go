package main

import (
	"flag"
	"log/slog"
	"os"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/kestrelops/sightline/config"
	"github.com/kestrelops/sightline/viewer"
)

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	headless := flag.Bool("headless", false, "Run without graphics")
	logStats := flag.Bool("log-stats", false, "Output coverage stats via slog")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot (empty = use config)")
	snapshotDir := flag.String("snapshot-dir", "", "Directory for PNG frame snapshots (empty = use config)")
	snapshotEvery := flag.Int("snapshot-every", 0, "Snapshot every N frames (0 = use config)")
	seed := flag.Int64("seed", 0, "Terrain seed when config leaves it unset (0 = time-based)")
	maxFrames := flag.Int("max-frames", 0, "Stop after N frames (0 = one clock span in headless mode)")
	flag.Parse()

	// Config must be live before anything reads config.Cfg().
	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	// CLI flags win; the config supplies whatever they leave unset.
	opts := viewer.Options{
		Seed:          orElse(*seed, time.Now().UnixNano()),
		Headless:      *headless || cfg.Viewer.Headless,
		LogStats:      *logStats,
		OutputDir:     orElse(*outputDir, cfg.Telemetry.OutputDir),
		SnapshotDir:   orElse(*snapshotDir, cfg.Viewer.SnapshotDir),
		SnapshotEvery: orElse(*snapshotEvery, cfg.Viewer.SnapshotEvery),
		MaxFrames:     orElse(*maxFrames, cfg.Viewer.Frames),
	}
	if opts.MaxFrames == 0 && opts.Headless {
		// A looping clock never ends on its own; default to one pass.
		opts.MaxFrames = cfg.Derived.FrameCount
	}

	if opts.Headless {
		runHeadless(opts)
		return
	}
	runWindowed(cfg, opts)
}

// runHeadless drives the viewer on the CPU only, without opening a
// window, until it reports done.
func runHeadless(opts viewer.Options) {
	v, err := viewer.New(opts)
	if err != nil {
		slog.Error("failed to build viewer", "error", err)
		os.Exit(1)
	}
	defer v.Close()

	slog.Info("starting headless run",
		"seed", opts.Seed,
		"max_frames", opts.MaxFrames,
		"output_dir", opts.OutputDir,
		"snapshot_dir", opts.SnapshotDir,
	)

	for !v.Done() {
		v.UpdateHeadless()
	}
	slog.Info("headless run complete", "frames", v.Frames())
}

// runWindowed opens the raylib window and drives the interactive loop.
func runWindowed(cfg *config.Config, opts viewer.Options) {
	rl.InitWindow(int32(cfg.Screen.Width), int32(cfg.Screen.Height), "Sightline")
	defer rl.CloseWindow()
	rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))

	v, err := viewer.New(opts)
	if err != nil {
		slog.Error("failed to build viewer", "error", err)
		os.Exit(1)
	}
	defer v.Close()

	for !rl.WindowShouldClose() {
		v.Update()
		v.Draw()

		if opts.MaxFrames > 0 && int(v.Scene().FrameNumber()) >= opts.MaxFrames {
			break
		}
	}
}

// orElse returns v unless it is the zero value, in which case the
// fallback applies.
func orElse[T comparable](v, fallback T) T {
	var zero T
	if v != zero {
		return v
	}
	return fallback
}
