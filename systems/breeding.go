package systems

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/pthm-cable/gridworld/components"
	"github.com/pthm-cable/gridworld/config"
)

// BreedingSystem handles reproduction into ghost slots.
type BreedingSystem struct {
	h, w          int
	reqEnergy     float64
	cost          float64
	initialEnergy float64
	infancy       int
	noise         float64
	actions       ActionIDs
}

// NewBreedingSystem creates a breeding system.
func NewBreedingSystem(cfg *config.Config) *BreedingSystem {
	return &BreedingSystem{
		h:             cfg.World.Height,
		w:             cfg.World.Width,
		reqEnergy:     cfg.Energy.ReqReprod,
		cost:          cfg.Energy.CostReprod,
		initialEnergy: cfg.Energy.Initial,
		infancy:       cfg.Infancy.Duration,
		noise:         cfg.Agents.AppearanceNoise,
		actions:       NewActionIDs(cfg),
	}
}

// BreedResult holds the outcome of the reproduction phase.
type BreedResult struct {
	Births     []bool
	Parents    []int  // Parent slot per newborn, N elsewhere
	Reproduced []bool // Slots that gave birth this tick
	Attempts   int    // Existing slots that chose reproduce
}

// Count returns the number of births.
func (r BreedResult) Count() int {
	n := 0
	for _, b := range r.Births {
		if b {
			n++
		}
	}
	return n
}

// Update mutates a in place. occupancy is the agents plane refreshed after
// the action phase. ghostsAtStart is the number of ghost slots at tick
// start and caps the number of births. src feeds the appearance noise, one
// draw per newborn component.
func (s *BreedingSystem) Update(a *components.Agents, actions []int, occupancy []float64, ghostsAtStart int, src rand.Source) BreedResult {
	n := a.N
	res := BreedResult{
		Births:     make([]bool, n),
		Parents:    make([]int, n),
		Reproduced: make([]bool, n),
	}
	for i := range res.Parents {
		res.Parents[i] = a.NoParent()
	}

	hasAction := s.actions.Reproduce >= 0
	targets := make([]int, n)
	facing := make([]components.Cell, n)
	eligible := make([]bool, n)
	for i := 0; i < n; i++ {
		facing[i] = components.Facing(a.Pos[i], a.Orientation[i], s.h, s.w)
		targets[i] = facing[i].Index(s.w)
		if !a.Exists[i] {
			continue
		}
		if hasAction && actions[i] == s.actions.Reproduce {
			res.Attempts++
		}
		eligible[i] = a.Energy[i] > s.reqEnergy &&
			a.Age[i] >= s.infancy &&
			(!hasAction || actions[i] == s.actions.Reproduce) &&
			occupancy[targets[i]] == 0
	}
	eligible = DedupByTarget(targets, eligible)

	// Lowest slots first, capped by the ghosts available at tick start
	var parents []int
	for i := 0; i < n && len(parents) < ghostsAtStart; i++ {
		if eligible[i] {
			parents = append(parents, i)
		}
	}
	if len(parents) == 0 {
		return res
	}

	ghosts := a.Ghosts()
	normal := distuv.Normal{Mu: 0, Sigma: s.noise, Src: src}
	for k, parent := range parents {
		child := ghosts[k]
		res.Reproduced[parent] = true
		res.Births[child] = true
		res.Parents[child] = parent

		a.Energy[parent] = max(0, a.Energy[parent]-s.cost)

		a.Exists[child] = true
		a.Pos[child] = facing[parent]
		a.Energy[child] = s.initialEnergy
		a.Age[child] = 0
		a.Parent[child] = parent
		app := a.AppearanceOf(child)
		copy(app, a.AppearanceOf(parent))
		for j := range app {
			app[j] += normal.Rand()
		}
	}
	return res
}
