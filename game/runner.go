package game

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"path/filepath"

	"github.com/pthm-cable/gridworld/components"
	"github.com/pthm-cable/gridworld/config"
	"github.com/pthm-cable/gridworld/neural"
	"github.com/pthm-cable/gridworld/renderer"
	"github.com/pthm-cable/gridworld/telemetry"
)

// Runner drives an Env with a policy and feeds telemetry. Unlike Env it
// owns the current state.
type Runner struct {
	env    *Env
	cfg    *config.Config
	policy Policy
	opts   Options

	seeds *rand.Rand

	state *components.State
	obs   *components.Observations
	eco   *components.EcoInfo
	info  Info
	done  bool

	collector     *telemetry.Collector
	perfCollector *telemetry.PerfCollector
	lifetimes     *telemetry.LifetimeTracker
	pending       []telemetry.LifetimeRecord
	outputManager *telemetry.OutputManager
	lineageStore  *telemetry.LineageStore
	bookmarks     *telemetry.BookmarkDetector
	hallOfFame    *telemetry.HallOfFame

	statsCallback func(telemetry.WindowStats)
	tickCallback  func(st *components.State, eco *components.EcoInfo)
}

// NewRunner builds the environment and its collaborators and resets the
// first episode. A nil policy selects one from cfg.
func NewRunner(ctx context.Context, cfg *config.Config, policy Policy, opts Options) (*Runner, error) {
	env, err := NewEnv(cfg)
	if err != nil {
		return nil, err
	}
	if policy == nil {
		policy = NewPolicy(cfg, opts.Seed)
	}

	r := &Runner{
		env:           env,
		cfg:           cfg,
		policy:        policy,
		opts:          opts,
		collector:     telemetry.NewCollector(cfg.Telemetry.StatsWindow),
		perfCollector: telemetry.NewPerfCollector(cfg.Telemetry.PerfWindow),
		bookmarks:     telemetry.NewBookmarkDetector(10),
	}
	env.SetProfiler(r.perfCollector)

	if cfg.Video.Enabled {
		gw, err := renderer.NewGIFWriter(cfg)
		if err != nil {
			return nil, fmt.Errorf("creating runner: %w", err)
		}
		env.SetVideoWriter(gw)
	}

	r.outputManager, err = telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		return nil, fmt.Errorf("creating runner: %w", err)
	}
	if err := r.outputManager.WriteConfig(cfg); err != nil {
		r.Close()
		return nil, fmt.Errorf("creating runner: %w", err)
	}

	if opts.HallOfFame != "" {
		r.hallOfFame, err = telemetry.LoadHallOfFame(opts.HallOfFame, cfg.HallOfFame, opts.Seed)
		if err != nil {
			r.Close()
			return nil, fmt.Errorf("creating runner: %w", err)
		}
		if fs, ok := policy.(founderSeeder); ok {
			fs.SetFounderSource(r.hallOfFame.Sample)
		}
		slog.Info("hall of fame loaded", "path", opts.HallOfFame, "entries", r.hallOfFame.Size())
	} else {
		r.hallOfFame = telemetry.NewHallOfFame(cfg.HallOfFame, opts.Seed)
	}

	if cfg.Telemetry.LineageDB != "" {
		r.lineageStore = telemetry.NewLineageStore(cfg.Telemetry.LineageDB)
		err := r.lineageStore.Init(ctx, opts.Seed, cfg.World.Width, cfg.World.Height, cfg.Population.MaxAgents)
		if err != nil {
			r.Close()
			return nil, fmt.Errorf("opening lineage store: %w", err)
		}
		slog.Info("lineage store opened", "path", cfg.Telemetry.LineageDB, "run_id", r.lineageStore.RunID())
	}

	r.Reset()
	return r, nil
}

// Reset starts a new episode from the runner seed.
func (r *Runner) Reset() {
	seed := r.opts.Seed
	r.seeds = rand.New(rand.NewPCG(seed, seed^0x510e527fade682d1))
	r.policy.Reset(r.seeds.Uint64())

	r.state, r.obs, r.eco, r.done, r.info = r.env.Reset(r.seeds.Uint64())

	n := r.state.Agents.N
	r.lifetimes = telemetry.NewLifetimeTracker(n)
	for i, exists := range r.state.Agents.Exists {
		if exists {
			r.lifetimes.Register(i, -1, 0)
		}
	}
	r.collector = telemetry.NewCollector(r.cfg.Telemetry.StatsWindow)
}

// Step advances the episode by one tick. It is a no-op once the episode
// is done.
func (r *Runner) Step(ctx context.Context) error {
	if r.done {
		return nil
	}

	r.perfCollector.StartTick()
	r.perfCollector.StartPhase(telemetry.PhasePolicy)
	actions := r.policy.Act(r.obs, r.state.Agents.Exists)

	pre := r.state
	next, obs, eco, done, info := r.env.Step(pre, actions, r.seeds.Uint64())
	if err := r.env.Render(next); err != nil {
		slog.Error("failed to write video", "error", err)
	}

	r.perfCollector.StartPhase(telemetry.PhaseTelemetry)
	events := r.recordTick(pre, next, eco, info)
	r.policy.Observe(eco)
	r.perfCollector.EndTick()

	r.state, r.obs, r.eco, r.done, r.info = next, obs, eco, done, info

	if r.lineageStore != nil {
		if err := r.lineageStore.Record(ctx, events); err != nil {
			return fmt.Errorf("recording tick %d: %w", next.Tick, err)
		}
	}

	r.flushTelemetry()
	r.logTick()

	if r.tickCallback != nil {
		r.tickCallback(next, eco)
	}
	return nil
}

// Run steps until the episode ends, MaxTicks is reached or ctx is done.
func (r *Runner) Run(ctx context.Context) error {
	for !r.done && (r.opts.MaxTicks <= 0 || r.state.Tick < r.opts.MaxTicks) {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := r.Step(ctx); err != nil {
			return err
		}
	}
	if r.done {
		slog.Info("episode ended", "tick", r.state.Tick)
	} else {
		slog.Info("max ticks reached", "tick", r.state.Tick)
	}
	return nil
}

// State returns the current state.
func (r *Runner) State() *components.State {
	return r.state
}

// Observations returns the observations of the current state.
func (r *Runner) Observations() *components.Observations {
	return r.obs
}

// Info returns the measures of the last tick.
func (r *Runner) Info() Info {
	return r.info
}

// Done reports whether the episode has ended.
func (r *Runner) Done() bool {
	return r.done
}

// Env returns the environment.
func (r *Runner) Env() *Env {
	return r.env
}

// Lineage returns the lineage of slot's occupant, or -1.
func (r *Runner) Lineage(slot int) int {
	return r.lifetimes.Lineage(slot)
}

// Life returns the lifetime stats of slot's occupant, or nil.
func (r *Runner) Life(slot int) *telemetry.LifeStats {
	return r.lifetimes.Get(slot)
}

// BrainHidden returns the hidden width of slot's brain, 0 when the
// policy has no per-slot brains.
func (r *Runner) BrainHidden(slot int) int {
	p, ok := r.policy.(*neural.Population)
	if !ok {
		return 0
	}
	b := p.Brain(slot)
	if b == nil {
		return 0
	}
	_, hidden, _ := b.Dims()
	return hidden
}

// PerfStats returns timing stats over the current perf window.
func (r *Runner) PerfStats() telemetry.PerfStats {
	return r.perfCollector.Stats()
}

// RecordFrame marks a drawn frame for FPS reporting.
func (r *Runner) RecordFrame() {
	r.perfCollector.RecordFrame()
}

// HallOfFame returns the hall of fame collected so far.
func (r *Runner) HallOfFame() *telemetry.HallOfFame {
	return r.hallOfFame
}

// SetStatsCallback sets a function called with every flushed window.
func (r *Runner) SetStatsCallback(fn func(telemetry.WindowStats)) {
	r.statsCallback = fn
}

// SetTickCallback sets a function called after every tick.
func (r *Runner) SetTickCallback(fn func(st *components.State, eco *components.EcoInfo)) {
	r.tickCallback = fn
}

// Close writes pending lifetimes and the hall of fame and releases the
// output files and the lineage store.
func (r *Runner) Close() error {
	var firstErr error
	keep := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}

	keep(r.outputManager.WriteLifetimes(r.pending))
	r.pending = nil

	if r.outputManager != nil && r.hallOfFame != nil && r.hallOfFame.Size() > 0 {
		keep(r.hallOfFame.Save(filepath.Join(r.outputManager.Dir(), "hall_of_fame.json")))
	}
	keep(r.outputManager.Close())
	if r.lineageStore != nil {
		keep(r.lineageStore.Close())
	}
	return firstErr
}

// considerForHall offers a dead slot's brain to the hall of fame. It must
// run before the policy forgets the slot.
func (r *Runner) considerForHall(slot int, rec telemetry.LifetimeRecord) {
	bs, ok := r.policy.(brainSource)
	if !ok {
		return
	}
	if w, ok := bs.Weights(slot); ok {
		r.hallOfFame.Consider(w, rec)
	}
}

var (
	_ brainSource   = (*neural.Population)(nil)
	_ founderSeeder = (*neural.Population)(nil)
	_ Profiler      = (*telemetry.PerfCollector)(nil)
)
