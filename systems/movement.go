package systems

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/pthm-cable/gridworld/components"
	"github.com/pthm-cable/gridworld/config"
)

// MovementSystem resolves forward moves and turns.
type MovementSystem struct {
	h, w            int
	singleOccupancy bool
	infancy         int
	infantMoveProb  float64
	actions         ActionIDs
}

// NewMovementSystem creates a movement resolver.
func NewMovementSystem(cfg *config.Config) *MovementSystem {
	return &MovementSystem{
		h:               cfg.World.Height,
		w:               cfg.World.Width,
		singleOccupancy: !cfg.World.AllowMultipleAgentsPerTile,
		infancy:         cfg.Infancy.Duration,
		infantMoveProb:  cfg.Infancy.MoveProb,
		actions:         NewActionIDs(cfg),
	}
}

// MoveResult holds the resolved movement of every slot.
type MoveResult struct {
	Pos         []components.Cell
	Orientation []int
	Facing      []components.Cell // Computed from the pre-move position and orientation
	Moved       []bool
}

// Update computes new positions and orientations. occupancy is the pre-tick
// agents plane and is not modified. src feeds exactly one Bernoulli draw per
// slot, in slot order.
func (s *MovementSystem) Update(a *components.Agents, actions []int, occupancy []float64, src rand.Source) MoveResult {
	n := a.N
	res := MoveResult{
		Pos:         make([]components.Cell, n),
		Orientation: make([]int, n),
		Facing:      make([]components.Cell, n),
		Moved:       make([]bool, n),
	}

	targets := make([]int, n)
	attempt := make([]bool, n)
	for i := 0; i < n; i++ {
		res.Facing[i] = components.Facing(a.Pos[i], a.Orientation[i], s.h, s.w)
		targets[i] = res.Facing[i].Index(s.w)
		attempt[i] = a.Exists[i] && is(actions[i], s.actions.Forward)
	}

	if s.singleOccupancy {
		for i := range attempt {
			if attempt[i] && occupancy[targets[i]] != 0 {
				attempt[i] = false
			}
		}
		attempt = DedupByTarget(targets, attempt)
	}

	// Infant suppression: one draw per slot, independent of collisions
	for i := 0; i < n; i++ {
		p := 1.0
		if a.Age[i] < s.infancy {
			p = s.infantMoveProb
		}
		success := distuv.Bernoulli{P: p, Src: src}.Rand() == 1
		res.Moved[i] = attempt[i] && success
	}

	for i := 0; i < n; i++ {
		if res.Moved[i] {
			res.Pos[i] = res.Facing[i]
		} else {
			res.Pos[i] = a.Pos[i]
		}

		o := a.Orientation[i]
		if a.Exists[i] {
			switch {
			case is(actions[i], s.actions.Left):
				o = components.Turn(o, components.TurnLeft)
			case is(actions[i], s.actions.Right):
				o = components.Turn(o, components.TurnRight)
			}
		}
		res.Orientation[i] = o
	}

	return res
}
