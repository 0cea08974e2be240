package game

import (
	"testing"

	"github.com/pthm-cable/gridworld/components"
	"github.com/pthm-cable/gridworld/config"
)

// testConfig returns a validated 5x5 world with four slots and a still
// environment, patched by fn.
func testConfig(t *testing.T, fn func(cfg *config.Config)) *config.Config {
	t.Helper()
	cfg, err := config.Defaults()
	if err != nil {
		t.Fatalf("Defaults: %v", err)
	}
	cfg.World.Width = 5
	cfg.World.Height = 5
	cfg.Population.MaxAgents = 4
	cfg.Population.InitialAgents = 2
	cfg.Sun.Method = config.SunNone
	cfg.Plants.ProportionInitial = 0
	cfg.Plants.PBaseGrowth = 1e-9
	cfg.Plants.PBaseDeath = 1e-9
	cfg.Metrics.PeriodLogging = 0
	if fn != nil {
		fn(cfg)
	}
	if err := cfg.Finalize(); err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	return cfg
}

// testEnv builds an Env for testConfig(t, fn).
func testEnv(t *testing.T, fn func(cfg *config.Config)) *Env {
	t.Helper()
	env, err := NewEnv(testConfig(t, fn))
	if err != nil {
		t.Fatalf("NewEnv: %v", err)
	}
	return env
}

// emptyState resets env and removes every agent.
func emptyState(t *testing.T, env *Env) *components.State {
	t.Helper()
	st, _, _, _, _ := env.Reset(1)
	a := st.Agents
	for i := range a.Exists {
		a.Exists[i] = false
		clear(a.AppearanceOf(i))
	}
	env.spatial.Refresh(st.Grid, a)
	return st
}

// place makes slot i an adult at (row, col) facing orientation and
// refreshes the aggregate channels.
func place(env *Env, st *components.State, i, row, col, orientation int, energy float64) {
	a := st.Agents
	a.Exists[i] = true
	a.Pos[i] = components.Cell{Row: row, Col: col}
	a.Orientation[i] = orientation
	a.Energy[i] = energy
	a.Age[i] = 20
	a.Parent[i] = a.NoParent()
	for k := range a.AppearanceOf(i) {
		a.AppearanceOf(i)[k] = 1
	}
	env.spatial.Refresh(st.Grid, a)
}

// fill returns n copies of v.
func fill(n, v int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = v
	}
	return out
}

// fakeVideoWriter records the ticks it was asked to write.
type fakeVideoWriter struct {
	ticks  []int
	videos []*components.FrameBuffer
	err    error
}

func (w *fakeVideoWriter) WriteVideo(tick int, video *components.FrameBuffer) error {
	w.ticks = append(w.ticks, tick)
	w.videos = append(w.videos, video)
	return w.err
}

// countingProfiler records phase names.
type countingProfiler struct {
	phases map[string]int
}

func (p *countingProfiler) StartPhase(phase string) {
	if p.phases == nil {
		p.phases = make(map[string]int)
	}
	p.phases[phase]++
}
