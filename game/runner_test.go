package game

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/pthm-cable/gridworld/components"
	"github.com/pthm-cable/gridworld/config"
	"github.com/pthm-cable/gridworld/telemetry"
)

// runnerConfig is a small, fast-dying world so every telemetry path fires
// within a few windows.
func runnerConfig(t *testing.T, fn func(cfg *config.Config)) *config.Config {
	return testConfig(t, func(cfg *config.Config) {
		cfg.World.Width = 12
		cfg.World.Height = 12
		cfg.World.IsTerminal = false
		cfg.Population.MaxAgents = 24
		cfg.Population.InitialAgents = 12
		cfg.Plants.ProportionInitial = 0.3
		cfg.Plants.PBaseGrowth = 0.02
		cfg.Plants.PBaseDeath = 0.02
		cfg.Energy.Initial = 12
		cfg.Energy.ReqReprod = 14
		cfg.Energy.CostReprod = 4
		cfg.Infancy.Duration = 1
		cfg.Telemetry.StatsWindow = 10
		cfg.HallOfFame.Entry.MinChildren = 0
		cfg.HallOfFame.Entry.MinAge = 1
		if fn != nil {
			fn(cfg)
		}
	})
}

// readCSV returns the rows of a CSV file, header included.
func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return rows
}

func TestRunner_Outputs(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	cfg := runnerConfig(t, func(cfg *config.Config) {
		cfg.Policy.Kind = config.PolicyRandom
		cfg.Telemetry.LineageDB = filepath.Join(dir, "lineage.db")
	})

	r, err := NewRunner(ctx, cfg, nil, Options{
		Seed:        5,
		MaxTicks:    60,
		OutputDir:   filepath.Join(dir, "out"),
		SnapshotDir: filepath.Join(dir, "snapshots"),
	})
	if err != nil {
		t.Fatalf("NewRunner: %v", err)
	}

	var births, deaths, windows int
	r.SetTickCallback(func(st *components.State, eco *components.EcoInfo) {
		births += eco.NumBirths()
		for _, age := range r.Info().Stats.DeathAges {
			if !math.IsNaN(age) {
				deaths++
			}
		}
	})
	r.SetStatsCallback(func(telemetry.WindowStats) { windows++ })

	if err := r.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if r.State().Tick != 60 {
		t.Errorf("stopped at tick %d, want 60", r.State().Tick)
	}
	if windows != 6 {
		t.Errorf("flushed %d windows, want 6", windows)
	}

	gotBirths, gotDeaths, err := r.lineageStore.Counts(ctx)
	if err != nil {
		t.Fatalf("Counts: %v", err)
	}
	if gotBirths != births || gotDeaths != deaths {
		t.Errorf("lineage store has %d births and %d deaths, want %d and %d", gotBirths, gotDeaths, births, deaths)
	}
	if deaths == 0 {
		t.Fatal("expected deaths in a starving world")
	}

	if err := r.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	out := filepath.Join(dir, "out")
	if rows := readCSV(t, filepath.Join(out, "telemetry.csv")); len(rows) != windows+1 {
		t.Errorf("telemetry.csv has %d rows, want %d", len(rows), windows+1)
	}
	if rows := readCSV(t, filepath.Join(out, "perf.csv")); len(rows) != windows+1 {
		t.Errorf("perf.csv has %d rows, want %d", len(rows), windows+1)
	}
	if rows := readCSV(t, filepath.Join(out, "lifetimes.csv")); len(rows) != deaths+1 {
		t.Errorf("lifetimes.csv has %d rows, want %d", len(rows), deaths+1)
	}
	if _, err := config.Load(filepath.Join(out, "config.yaml")); err != nil {
		t.Errorf("reloading written config: %v", err)
	}

	// A random policy has no brains to keep.
	if _, err := os.Stat(filepath.Join(out, "hall_of_fame.json")); !os.IsNotExist(err) {
		t.Errorf("hall_of_fame.json written for a random policy: %v", err)
	}
}

func TestRunner_SnapshotOnExtinction(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	cfg := runnerConfig(t, func(cfg *config.Config) {
		cfg.Policy.Kind = config.PolicyRandom
		cfg.Energy.Initial = 3
		cfg.Energy.ReqReprod = 90
		cfg.Plants.ProportionInitial = 0
	})

	r, err := NewRunner(ctx, cfg, nil, Options{Seed: 1, MaxTicks: 20, SnapshotDir: dir})
	if err != nil {
		t.Fatalf("NewRunner: %v", err)
	}
	defer r.Close()
	if err := r.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}

	paths, err := filepath.Glob(filepath.Join(dir, "snapshot_*_extinction.json"))
	if err != nil || len(paths) != 1 {
		t.Fatalf("extinction snapshots = %v (%v), want one", paths, err)
	}
	snap, err := telemetry.LoadSnapshot(paths[0])
	if err != nil {
		t.Fatalf("LoadSnapshot: %v", err)
	}
	st, err := snap.State()
	if err != nil {
		t.Fatalf("State: %v", err)
	}
	if st.Agents.Count() != 0 {
		t.Errorf("snapshot holds %d agents, want 0", st.Agents.Count())
	}
}

func TestRunner_Deterministic(t *testing.T) {
	ctx := context.Background()
	cfg := runnerConfig(t, nil)

	run := func() *components.State {
		r, err := NewRunner(ctx, cfg, nil, Options{Seed: 42, MaxTicks: 40})
		if err != nil {
			t.Fatalf("NewRunner: %v", err)
		}
		defer r.Close()
		if err := r.Run(ctx); err != nil {
			t.Fatalf("Run: %v", err)
		}
		return r.State()
	}

	a, b := run(), run()
	if !reflect.DeepEqual(a, b) {
		t.Error("same seed produced different runs")
	}
}

func TestRunner_ResetRestartsEpisode(t *testing.T) {
	ctx := context.Background()
	r, err := NewRunner(ctx, runnerConfig(t, nil), nil, Options{Seed: 3})
	if err != nil {
		t.Fatalf("NewRunner: %v", err)
	}
	defer r.Close()

	first := r.State().Clone()
	for i := 0; i < 5; i++ {
		if err := r.Step(ctx); err != nil {
			t.Fatalf("Step: %v", err)
		}
	}
	r.Reset()
	if !reflect.DeepEqual(first, r.State()) {
		t.Error("Reset did not restore the initial state")
	}
	for i, exists := range r.State().Agents.Exists {
		if exists && r.Lineage(i) < 0 {
			t.Errorf("founder %d has no lineage", i)
		}
	}
}

func TestRunner_HallOfFameRoundTrip(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	cfg := runnerConfig(t, nil)

	r, err := NewRunner(ctx, cfg, nil, Options{Seed: 8, MaxTicks: 40, OutputDir: dir})
	if err != nil {
		t.Fatalf("NewRunner: %v", err)
	}
	if err := r.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if r.HallOfFame().Size() == 0 {
		t.Fatal("no brain entered the hall of fame")
	}
	if err := r.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	path := filepath.Join(dir, "hall_of_fame.json")
	r2, err := NewRunner(ctx, cfg, nil, Options{Seed: 9, HallOfFame: path})
	if err != nil {
		t.Fatalf("NewRunner with hall of fame: %v", err)
	}
	defer r2.Close()
	if r2.HallOfFame().Size() == 0 {
		t.Error("loaded hall of fame is empty")
	}
	if err := r2.Step(ctx); err != nil {
		t.Fatalf("Step: %v", err)
	}
}

func TestRunner_StepAfterDone(t *testing.T) {
	ctx := context.Background()
	cfg := runnerConfig(t, func(cfg *config.Config) {
		cfg.World.IsTerminal = true
		cfg.Population.InitialAgents = 0
	})
	r, err := NewRunner(ctx, cfg, nil, Options{Seed: 1})
	if err != nil {
		t.Fatalf("NewRunner: %v", err)
	}
	defer r.Close()

	if !r.Done() {
		t.Fatal("empty terminal world should start done")
	}
	if err := r.Step(ctx); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if r.State().Tick != 0 {
		t.Errorf("tick advanced to %d after done", r.State().Tick)
	}
	if err := r.Run(ctx); err != nil {
		t.Errorf("Run: %v", err)
	}
}

func TestRunner_RunHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	r, err := NewRunner(ctx, runnerConfig(t, nil), nil, Options{Seed: 1})
	if err != nil {
		t.Fatalf("NewRunner: %v", err)
	}
	defer r.Close()

	cancel()
	if err := r.Run(ctx); err != context.Canceled {
		t.Errorf("Run error = %v, want context.Canceled", err)
	}
}

func TestRunner_TuneKeepsPolicyInputs(t *testing.T) {
	ctx := context.Background()
	cfg := runnerConfig(t, func(cfg *config.Config) { cfg.Policy.Kind = config.PolicyNeural })
	r, err := NewRunner(ctx, cfg, nil, Options{Seed: 5})
	if err != nil {
		t.Fatalf("NewRunner: %v", err)
	}
	defer r.Close()

	if err := r.Step(ctx); err != nil {
		t.Fatalf("Step: %v", err)
	}
	side, _, ch := r.Env().ObservationShape()
	err = r.Env().Tune(func(cfg *config.Config) { cfg.Agents.VisionRange++ })
	if !errors.Is(err, config.ErrInvalid) {
		t.Fatalf("Tune(vision range) error = %v, want ErrInvalid", err)
	}
	if gotSide, _, gotCh := r.Env().ObservationShape(); gotSide != side || gotCh != ch {
		t.Errorf("observation shape = (%d, %d), want (%d, %d)", gotSide, gotCh, side, ch)
	}
	if err := r.Env().Tune(func(cfg *config.Config) { cfg.Energy.Food = 9 }); err != nil {
		t.Fatalf("Tune(food): %v", err)
	}
	for range 3 {
		if err := r.Step(ctx); err != nil {
			t.Fatalf("Step after tune: %v", err)
		}
	}
}

func TestRunner_WorldLogTracksLives(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, nil)))
	defer slog.SetDefault(prev)

	ctx := context.Background()
	r, err := NewRunner(ctx, runnerConfig(t, func(cfg *config.Config) { cfg.Metrics.PeriodLogging = 5 }),
		nil, Options{Seed: 2, MaxTicks: 20})
	if err != nil {
		t.Fatalf("NewRunner: %v", err)
	}
	defer r.Close()
	if err := r.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}

	var worlds int
	dec := json.NewDecoder(&buf)
	for dec.More() {
		var rec struct {
			Msg    string `json:"msg"`
			Agents int    `json:"agents"`
			Lives  int    `json:"lives"`
		}
		if err := dec.Decode(&rec); err != nil {
			t.Fatalf("decode log: %v", err)
		}
		if rec.Msg != "world" {
			continue
		}
		worlds++
		if rec.Lives != rec.Agents {
			t.Errorf("world log: lives = %d, agents = %d", rec.Lives, rec.Agents)
		}
	}
	if worlds == 0 {
		t.Error("no world log lines")
	}
}
