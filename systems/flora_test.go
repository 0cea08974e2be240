package systems

import (
	"math"
	"testing"

	"github.com/pthm-cable/gridworld/components"
	"github.com/pthm-cable/gridworld/config"
)

func TestBoxMean(t *testing.T) {
	plane := make([]float64, 25)
	plane[0] = 1

	mean := BoxMean(plane, 5, 5, 1)
	tests := []struct {
		row, col int
		want     float64
	}{
		{0, 0, 1.0 / 9},
		{4, 4, 1.0 / 9}, // Wraps around both edges
		{1, 4, 1.0 / 9},
		{2, 2, 0},
	}
	for _, tt := range tests {
		if got := mean[tt.row*5+tt.col]; math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("mean(%d,%d) = %v, want %v", tt.row, tt.col, got, tt.want)
		}
	}

	// Radius 0 is the identity
	same := BoxMean(plane, 5, 5, 0)
	for i := range plane {
		if same[i] != plane[i] {
			t.Fatal("radius 0 should return the plane unchanged")
		}
	}
}

func TestFloraBaseRule(t *testing.T) {
	cfg := testConfig(t, func(c *config.Config) {
		c.Plants.PBaseGrowth = 0.2
		c.Plants.PBaseDeath = 0.1
	})
	g, _ := testWorld(cfg)
	g.Set(components.ChPlants, 1, 1, 1)
	g.Set(components.ChSun, 2, 2, 1) // No effect with a zero sun factor

	probs := NewFloraSystem(cfg).Probabilities(g)

	if got := probs[0]; math.Abs(got-0.2) > 1e-9 {
		t.Errorf("empty cell growth = %v, want 0.2", got)
	}
	if got := probs[2*5+2]; math.Abs(got-0.2) > 1e-9 {
		t.Errorf("sunny empty cell = %v, want 0.2", got)
	}
	want := sigmoid(1 - logit(0.1))
	if got := probs[1*5+1]; math.Abs(got-want) > 1e-9 {
		t.Errorf("plant cell = %v, want %v", got, want)
	}
}

func TestFloraFactors(t *testing.T) {
	cfg := testConfig(t, func(c *config.Config) {
		c.Plants.FactorSunEffect = 2
		c.Plants.FactorAsphyxia = 3
		c.Plants.RadiusAsphyxia = 1
	})
	g, _ := testWorld(cfg)
	g.Set(components.ChSun, 0, 0, 1)
	g.Set(components.ChPlants, 3, 3, 1)

	probs := NewFloraSystem(cfg).Probabilities(g)
	base := cfg.Plants.PBaseGrowth

	if probs[0] <= base {
		t.Errorf("sun should raise growth: %v <= %v", probs[0], base)
	}
	if neighbour := probs[3*5+2]; neighbour >= base {
		t.Errorf("crowding should lower growth next to a plant: %v >= %v", neighbour, base)
	}
}

func TestFloraUpdateBinaryAndDeterministic(t *testing.T) {
	cfg := testConfig(t, func(c *config.Config) {
		c.Plants.PBaseGrowth = 0.5
		c.Plants.PBaseDeath = 0.5
	})
	g1, _ := testWorld(cfg)
	g2, _ := testWorld(cfg)
	s := NewFloraSystem(cfg)

	for tick := 0; tick < 10; tick++ {
		s.Update(g1, NewStreams(uint64(tick)).Source(PhasePlants))
		s.Update(g2, NewStreams(uint64(tick)).Source(PhasePlants))
	}
	p1, p2 := g1.Plane(components.ChPlants), g2.Plane(components.ChPlants)
	for i := range p1 {
		if p1[i] != 0 && p1[i] != 1 {
			t.Fatalf("plant value %v outside {0, 1}", p1[i])
		}
		if p1[i] != p2[i] {
			t.Fatal("same seeds should give the same plants")
		}
	}
}
