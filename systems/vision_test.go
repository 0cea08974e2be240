package systems

import (
	"testing"

	"github.com/pthm-cable/gridworld/components"
	"github.com/pthm-cable/gridworld/config"
)

func visionConfig(t *testing.T) *config.Config {
	return testConfig(t, func(c *config.Config) {
		c.World.Width = 7
		c.World.Height = 7
		c.Agents.VisionRange = 1
		c.Channels.VisualField = []string{config.ChannelSun, config.ChannelPlants}
	})
}

func TestVisionForwardIsUp(t *testing.T) {
	for o := 0; o < components.NumOrientations; o++ {
		cfg := visionConfig(t)
		g, a := testWorld(cfg)
		place(a, 0, 3, 3, o)

		ahead := components.Facing(a.Pos[0], o, 7, 7)
		turned := components.Facing(a.Pos[0], o+components.TurnLeft, 7, 7)
		g.Set(components.ChPlants, ahead.Row, ahead.Col, 1)
		g.Set(components.ChSun, turned.Row, turned.Col, 1)

		st := &components.State{Grid: g, Agents: a}
		obs := NewVisionSystem(cfg).Build(st, nil)

		if got := obs.VisualAt(0, 0, 1, 1); got != 1 {
			t.Errorf("orientation %d: plant ahead not at top centre", o)
		}
		if got := obs.VisualAt(0, 1, 2, 0); got != 1 {
			t.Errorf("orientation %d: turned cell not at middle right", o)
		}
		if got := obs.VisualAt(0, 2, 1, 1); got != 0 {
			t.Errorf("orientation %d: plant seen behind", o)
		}
	}
}

func TestVisionOffspringChannel(t *testing.T) {
	cfg := visionConfig(t)
	g, a := testWorld(cfg)
	place(a, 0, 3, 3, 0)
	place(a, 1, 4, 3, 0) // Directly ahead of slot 0
	a.Parent[1] = 0

	st := &components.State{Grid: g, Agents: a}
	obs := NewVisionSystem(cfg).Build(st, nil)
	last := obs.Channels - 1

	if obs.Channels != 3 {
		t.Fatalf("channels = %d, want 2 visual + offspring", obs.Channels)
	}
	if got := obs.VisualAt(0, 0, 1, last); got != 1 {
		t.Error("parent should see its child ahead")
	}
	if got := obs.VisualAt(1, 1, 1, last); got != 0 {
		t.Error("child is not its own offspring")
	}
	// Slot 1 faces away from 0, so its parent is behind
	if got := obs.VisualAt(1, 2, 1, last); got != 0 {
		t.Error("a parent is not offspring")
	}
}

func TestVisionScalars(t *testing.T) {
	cfg := visionConfig(t)
	g, a := testWorld(cfg)
	place(a, 0, 0, 0, 0)
	a.Energy[0] = cfg.Energy.Max / 2

	st := &components.State{Grid: g, Agents: a}
	obs := NewVisionSystem(cfg).Build(st, []bool{true, false, false, false})

	if obs.Energy[0] != 0.5 {
		t.Errorf("energy obs = %v, want 0.5", obs.Energy[0])
	}
	if want := 20 / float64(cfg.Agents.AgeMax); obs.Age[0] != want {
		t.Errorf("age obs = %v, want %v", obs.Age[0], want)
	}
	if obs.JustReproduced[0] != 1 || obs.JustReproduced[1] != 0 {
		t.Errorf("just reproduced = %v", obs.JustReproduced)
	}
	// Ghosts still get well formed records
	if len(obs.Visual(3)) != obs.Side*obs.Side*obs.Channels {
		t.Error("ghost visual field has the wrong size")
	}
}

func TestOccupantMapLowestSlotWins(t *testing.T) {
	cfg := visionConfig(t)
	_, a := testWorld(cfg)
	place(a, 2, 1, 1, 0)
	place(a, 1, 1, 1, 0)

	occ := OccupantMap(a, 49, 7)
	if occ[1*7+1] != 1 {
		t.Errorf("occupant = %d, want 1", occ[1*7+1])
	}
	if occ[0] != a.N {
		t.Errorf("empty cell occupant = %d, want sentinel", occ[0])
	}
}
