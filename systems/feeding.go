package systems

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/pthm-cable/gridworld/components"
	"github.com/pthm-cable/gridworld/config"
)

// FeedingSystem resolves the eat action against the plant plane.
type FeedingSystem struct {
	w         int
	food      float64
	infancy   int
	infantEat float64
	infantMul float64
	actions   ActionIDs
}

// NewFeedingSystem creates a feeding system.
func NewFeedingSystem(cfg *config.Config) *FeedingSystem {
	return &FeedingSystem{
		w:         cfg.World.Width,
		food:      cfg.Energy.Food,
		infancy:   cfg.Infancy.Duration,
		infantEat: cfg.Infancy.EatProb,
		infantMul: cfg.Infancy.FoodEnergyMult,
		actions:   NewActionIDs(cfg),
	}
}

// FeedResult holds the per-slot outcome of eating.
type FeedResult struct {
	Gain     []float64 // Energy bonus per slot
	Eating   []bool    // Chose eat and passed the success draw
	Attempts int       // Existing slots that chose eat
}

// Update applies eating. a carries the pre-tick ages, pos the post-move
// positions. plants is depleted in place. src feeds one draw per slot.
func (s *FeedingSystem) Update(a *components.Agents, actions []int, pos []components.Cell, plants []float64, src rand.Source) FeedResult {
	n := a.N
	res := FeedResult{
		Gain:   make([]float64, n),
		Eating: make([]bool, n),
	}

	for i := 0; i < n; i++ {
		p := 1.0
		if a.Age[i] < s.infancy {
			p = s.infantEat
		}
		success := distuv.Bernoulli{P: p, Src: src}.Rand() == 1
		if a.Exists[i] && is(actions[i], s.actions.Eat) {
			res.Attempts++
			res.Eating[i] = success
		}
	}

	// Eaters per cell
	eaters := make(map[int]int)
	for i := 0; i < n; i++ {
		if res.Eating[i] {
			eaters[pos[i].Index(s.w)]++
		}
	}

	for i := 0; i < n; i++ {
		if !res.Eating[i] {
			continue
		}
		c := pos[i].Index(s.w)
		bonus := s.food * plants[c] / float64(max(1, eaters[c]))
		if a.Age[i] < s.infancy {
			bonus *= s.infantMul
		}
		res.Gain[i] = bonus
	}

	for c, k := range eaters {
		plants[c] = clamp01(plants[c] - float64(k)*plants[c])
	}

	return res
}

// FoodEaten returns the total energy gained from plants.
func (r FeedResult) FoodEaten() float64 {
	total := 0.0
	for _, g := range r.Gain {
		total += g
	}
	return total
}

// SuccessRate is the share of successful eaters that found food.
func (r FeedResult) SuccessRate() float64 {
	eaters, fed := 0, 0
	for i, ok := range r.Eating {
		if !ok {
			continue
		}
		eaters++
		if r.Gain[i] > 0 {
			fed++
		}
	}
	return float64(fed) / float64(max(1, eaters))
}
