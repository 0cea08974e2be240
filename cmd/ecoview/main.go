// Interactive gridworld viewer with overlays, a slot inspector and live
// parameter sliders.
//
// Usage: go run ./cmd/ecoview [-config path] [-seed n]
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/gridworld/config"
	"github.com/pthm-cable/gridworld/game"
)

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	seed := flag.Uint64("seed", 0, "RNG seed (0 = time-based)")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	hallOfFame := flag.String("hall-of-fame", "", "Hall of fame file to seed founder brains from")
	flag.Parse()

	config.MustInit(*configPath)
	cfg := config.Cfg()
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = uint64(time.Now().UnixNano())
	}

	ctx := context.Background()
	r, err := game.NewRunner(ctx, cfg, nil, game.Options{
		Seed:       rngSeed,
		OutputDir:  *outputDir,
		HallOfFame: *hallOfFame,
	})
	if err != nil {
		slog.Error("failed to create runner", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := r.Close(); err != nil {
			slog.Error("failed to close runner", "error", err)
		}
	}()

	rl.SetConfigFlags(rl.FlagWindowResizable)
	rl.InitWindow(int32(cfg.Screen.Width), int32(cfg.Screen.Height), "Gridworld")
	defer rl.CloseWindow()
	rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))

	v := newView(cfg, r)
	defer v.unload()

	for !rl.WindowShouldClose() {
		v.update(ctx)
		v.draw()
	}
}
