package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/pthm-cable/gridworld/audio"
	"github.com/pthm-cable/gridworld/config"
	"github.com/pthm-cable/gridworld/game"
	"github.com/pthm-cable/gridworld/tui"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	seed := flag.Uint64("seed", 0, "RNG seed (0 = time-based)")
	maxTicks := flag.Int("max-ticks", 0, "Stop after N ticks (0 = until the episode ends)")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	logStats := flag.Bool("log-stats", false, "Output window and perf stats via slog")
	snapshotDir := flag.String("snapshot-dir", "", "Directory for snapshot files")
	hallOfFame := flag.String("hall-of-fame", "", "Hall of fame file to seed founder brains from")
	useTUI := flag.Bool("tui", false, "Show the grid in the terminal")
	interval := flag.Duration("interval", 100*time.Millisecond, "Time between ticks in the terminal view")
	sound := flag.Bool("sound", false, "Play birth and death cues (terminal view only)")
	volume := flag.Float64("volume", 0.5, "Cue volume in (0, 1]")

	flag.Parse()

	// Initialize config before anything else
	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = uint64(time.Now().UnixNano())
	}

	// The terminal view owns stdout, so logs go to stderr there.
	logOut := os.Stdout
	if *useTUI {
		logOut = os.Stderr
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(logOut, nil)))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := game.Options{
		Seed:        rngSeed,
		MaxTicks:    *maxTicks,
		LogStats:    *logStats,
		OutputDir:   *outputDir,
		SnapshotDir: *snapshotDir,
		HallOfFame:  *hallOfFame,
	}

	r, err := game.NewRunner(ctx, cfg, nil, opts)
	if err != nil {
		slog.Error("failed to create runner", "error", err)
		os.Exit(1)
	}

	slog.Info("starting simulation",
		"seed", rngSeed,
		"width", cfg.World.Width,
		"height", cfg.World.Height,
		"max_ticks", *maxTicks,
		"policy", cfg.Policy.Kind,
	)

	if *useTUI {
		err = runTerminal(ctx, cfg, r, *interval, *maxTicks, *sound, *volume)
	} else {
		err = r.Run(ctx)
	}
	if cerr := r.Close(); cerr != nil {
		slog.Error("failed to close runner", "error", cerr)
	}
	if err != nil && ctx.Err() == nil {
		slog.Error("simulation failed", "error", err)
		os.Exit(1)
	}
}

func runTerminal(ctx context.Context, cfg *config.Config, r *game.Runner, interval time.Duration, maxTicks int, sound bool, volume float64) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}
	defer screen.Fini()

	if sound {
		cues := audio.NewCues(volume)
		if err := cues.Initialize(); err != nil {
			slog.Warn("audio disabled", "error", err)
		}
		defer cues.Close()
		tui.Watch(cues, r.SetTickCallback)
	}

	v := tui.NewViewer(screen, cfg, interval)
	v.SetMaxTicks(maxTicks)
	return v.Run(ctx, r)
}
