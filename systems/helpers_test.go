package systems

import (
	"testing"

	"github.com/pthm-cable/gridworld/components"
	"github.com/pthm-cable/gridworld/config"
)

// testConfig returns a validated 5x5 world with four slots, patched by fn.
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
	if fn != nil {
		fn(cfg)
	}
	if err := cfg.Finalize(); err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	return cfg
}

// place makes slot i an adult at (row, col) facing orientation.
func place(a *components.Agents, i, row, col, orientation int) {
	a.Exists[i] = true
	a.Pos[i] = components.Cell{Row: row, Col: col}
	a.Orientation[i] = orientation
	a.Energy[i] = 50
	a.Age[i] = 20
	for k := range a.AppearanceOf(i) {
		a.AppearanceOf(i)[k] = 1
	}
}

// testWorld builds an empty grid and arena for cfg.
func testWorld(cfg *config.Config) (*components.Grid, *components.Agents) {
	g := components.NewGrid(cfg.World.Height, cfg.World.Width, len(cfg.Derived.ChannelNames))
	a := components.NewAgents(cfg.Population.MaxAgents, cfg.Channels.DimAppearance)
	return g, a
}

// occupancy refreshes g from a and returns the agents plane.
func occupancy(g *components.Grid, a *components.Agents) []float64 {
	NewSpatialSystem().Refresh(g, a)
	return append([]float64(nil), g.Plane(components.ChAgents)...)
}

// fill returns n copies of v.
func fill(n, v int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = v
	}
	return out
}
