package systems

import (
	"math"
	"testing"

	"github.com/pthm-cable/gridworld/components"
	"github.com/pthm-cable/gridworld/config"
)

func breedingConfig(t *testing.T, fn func(c *config.Config)) *config.Config {
	return testConfig(t, func(c *config.Config) {
		c.Agents.AppearanceNoise = 0
		if fn != nil {
			fn(c)
		}
	})
}

func TestBreeding_TieGoesToLowerSlot(t *testing.T) {
	cfg := breedingConfig(t, nil)
	g, a := testWorld(cfg)
	rep := cfg.Action(config.ActionReproduce)

	place(a, 0, 2, 1, 3) // faces (2, 2)
	place(a, 1, 2, 3, 1) // faces (2, 2)
	a.Energy[0], a.Energy[1] = 80, 80
	occ := occupancy(g, a)

	res := NewBreedingSystem(cfg).Update(a, fill(4, rep), occ, len(a.Ghosts()), NewStreams(1).Source(PhaseReproduction))

	if !res.Reproduced[0] || res.Reproduced[1] {
		t.Fatalf("reproduced = %v, want only slot 0", res.Reproduced)
	}
	if res.Count() != 1 || !res.Births[2] || res.Parents[2] != 0 {
		t.Fatalf("births = %v parents = %v, want slot 2 born of 0", res.Births, res.Parents)
	}
	if res.Parents[3] != a.NoParent() {
		t.Errorf("non-birth parent = %d, want sentinel", res.Parents[3])
	}

	// Parent pays, the denied agent does not
	if a.Energy[0] != 80-cfg.Energy.CostReprod {
		t.Errorf("parent energy = %v, want %v", a.Energy[0], 80-cfg.Energy.CostReprod)
	}
	if a.Energy[1] != 80 {
		t.Errorf("denied agent energy = %v, want 80", a.Energy[1])
	}

	// Newborn fields
	if !a.Exists[2] || a.Pos[2] != (components.Cell{Row: 2, Col: 2}) {
		t.Errorf("newborn exists=%v pos=%v", a.Exists[2], a.Pos[2])
	}
	if a.Energy[2] != cfg.Energy.Initial || a.Age[2] != 0 || a.Parent[2] != 0 {
		t.Errorf("newborn energy/age/parent = %v/%d/%d", a.Energy[2], a.Age[2], a.Parent[2])
	}
	for k, v := range a.AppearanceOf(2) {
		if v != 1 {
			t.Errorf("newborn appearance[%d] = %v, want parent's 1", k, v)
		}
	}
	if res.Attempts != 2 {
		t.Errorf("attempts = %d, want 2", res.Attempts)
	}
}

func TestBreeding_CapacityLimit(t *testing.T) {
	cfg := breedingConfig(t, func(c *config.Config) {
		c.Population.MaxAgents = 3
	})
	g, a := testWorld(cfg)
	rep := cfg.Action(config.ActionReproduce)

	place(a, 0, 0, 0, 0)
	place(a, 1, 3, 3, 0)
	a.Energy[0], a.Energy[1] = 80, 80
	occ := occupancy(g, a)

	res := NewBreedingSystem(cfg).Update(a, fill(3, rep), occ, 1, NewStreams(1).Source(PhaseReproduction))
	if res.Count() != 1 || !res.Reproduced[0] || res.Reproduced[1] {
		t.Errorf("capacity should admit only slot 0, got %v", res.Reproduced)
	}
	if a.Energy[1] != 80 {
		t.Error("capacity-denied agent must not pay")
	}
}

func TestBreeding_Eligibility(t *testing.T) {
	tests := []struct {
		name   string
		energy float64
		age    int
		action string
		block  bool
		want   bool
	}{
		{"eligible", 80, 20, config.ActionReproduce, false, true},
		{"energy at threshold", 60, 20, config.ActionReproduce, false, false},
		{"infant", 80, 5, config.ActionReproduce, false, false},
		{"wrong action", 80, 20, config.ActionIdle, false, false},
		{"occupied target", 80, 20, config.ActionReproduce, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := breedingConfig(t, nil)
			g, a := testWorld(cfg)
			place(a, 0, 1, 1, 0) // faces (2, 1)
			a.Energy[0] = tt.energy
			a.Age[0] = tt.age
			if tt.block {
				place(a, 1, 2, 1, 0)
			}
			occ := occupancy(g, a)

			res := NewBreedingSystem(cfg).Update(a, fill(4, cfg.Action(tt.action)), occ, len(a.Ghosts()), NewStreams(1).Source(PhaseReproduction))
			if res.Reproduced[0] != tt.want {
				t.Errorf("reproduced = %v, want %v", res.Reproduced[0], tt.want)
			}
		})
	}
}

func TestBreeding_WithoutReproduceAction(t *testing.T) {
	cfg := breedingConfig(t, func(c *config.Config) {
		c.Agents.Actions = []string{"forward", "left", "right", "eat", "idle"}
	})
	g, a := testWorld(cfg)
	place(a, 0, 1, 1, 0)
	a.Energy[0] = 80
	occ := occupancy(g, a)

	res := NewBreedingSystem(cfg).Update(a, fill(4, cfg.Action(config.ActionIdle)), occ, len(a.Ghosts()), NewStreams(1).Source(PhaseReproduction))
	if !res.Reproduced[0] {
		t.Error("without a reproduce action, energy and age alone should suffice")
	}
}

func TestBreeding_AppearanceNoise(t *testing.T) {
	cfg := testConfig(t, func(c *config.Config) {
		c.Agents.AppearanceNoise = 0.001
	})
	g, a := testWorld(cfg)
	place(a, 0, 1, 1, 0)
	a.Energy[0] = 80
	occ := occupancy(g, a)

	NewBreedingSystem(cfg).Update(a, fill(4, cfg.Action(config.ActionReproduce)), occ, len(a.Ghosts()), NewStreams(9).Source(PhaseReproduction))
	for k, v := range a.AppearanceOf(1) {
		if math.Abs(v-1) > 0.01 {
			t.Errorf("appearance[%d] = %v drifted too far from 1", k, v)
		}
	}
}
