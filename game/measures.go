package game

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/pthm-cable/gridworld/components"
	"github.com/pthm-cable/gridworld/config"
	"github.com/pthm-cable/gridworld/systems"
)

// Measure names.
const (
	MeasureNumAgents            = "n_agents"
	MeasureNumPlants            = "n_plants"
	MeasureEnergy               = "energy"
	MeasureAge                  = "age"
	MeasureX                    = "x"
	MeasureY                    = "y"
	MeasureAppearance           = "appearance"
	MeasureFoodEaten            = "amount_food_eaten"
	MeasureEatSuccessRate       = "eat_success_rate"
	MeasureNumTransfers         = "num_transfers"
	MeasureFeeders              = "feeders"
	MeasureFeedees              = "feedees"
	MeasureToOffspring          = "to_offspring"
	MeasureLifeExpectancy       = "life_expectancy"
	MeasureReproduceSuccessRate = "reproduce_success_rate"
	MeasureAmountChildren       = "amount_children"
	MeasureFacingAgent          = "num_facing_agent"
	MeasureFacingOffspring      = "num_facing_offspring"
	MeasureNewborns             = "are_newborns"
	measureActionPrefix         = "do_action_"
)

// measure computes the configured measures of one tick. Per-slot measures
// are NaN for slots that do not exist after the tick, except environmental
// ones and life_expectancy, which only reports slots that just died.
func (e *Env) measure(t *tickRecord) Info {
	names := e.cfg.Derived.MeasureNames
	out := make(map[string]Measure, len(names))
	a := t.next.Agents

	var facing, facingOffspring int
	facingDone := false

	for _, name := range names {
		switch name {
		case MeasureNumAgents:
			out[name] = Measure{Value: float64(a.Count())}
		case MeasureNumPlants:
			out[name] = Measure{Value: floats.Sum(t.next.Grid.Plane(components.ChPlants))}
		case MeasureEnergy:
			out[name] = Measure{Values: append([]float64(nil), a.Energy...)}
		case MeasureAge:
			out[name] = Measure{Values: ints(a.Age)}
		case MeasureX, MeasureY:
			v := make([]float64, a.N)
			for i, p := range a.Pos {
				if name == MeasureX {
					v[i] = float64(p.Row)
				} else {
					v[i] = float64(p.Col)
				}
			}
			out[name] = Measure{Values: v}
		case MeasureAppearance:
			for k := 0; k < a.DimAppearance; k++ {
				v := make([]float64, a.N)
				for i := range v {
					v[i] = a.AppearanceOf(i)[k]
				}
				out[config.AppearanceChannel(k)] = Measure{Values: v}
			}
		case MeasureFoodEaten:
			out[name] = Measure{Values: append([]float64(nil), t.feed.Gain...)}
		case MeasureEatSuccessRate:
			out[name] = Measure{Value: t.feed.SuccessRate()}
		case MeasureNumTransfers:
			out[name] = Measure{Value: float64(t.xfer.Count)}
		case MeasureFeeders:
			out[name] = Measure{Values: bools(t.xfer.Donated)}
		case MeasureFeedees:
			out[name] = Measure{Values: bools(t.xfer.Received)}
		case MeasureToOffspring:
			out[name] = Measure{Values: bools(t.xfer.ToOffspring)}
		case MeasureLifeExpectancy:
			out[name] = Measure{Values: t.died}
		case MeasureReproduceSuccessRate:
			out[name] = Measure{Value: float64(t.breed.Count()) / float64(max(1, t.breed.Attempts))}
		case MeasureAmountChildren:
			out[name] = Measure{Values: bools(t.breed.Reproduced)}
		case MeasureNewborns:
			out[name] = Measure{Values: bools(t.breed.Births)}
		case MeasureFacingAgent, MeasureFacingOffspring:
			if !facingDone {
				facing, facingOffspring = e.countFacing(t.pre.Agents, t.move.Facing)
				facingDone = true
			}
			if name == MeasureFacingAgent {
				out[name] = Measure{Value: float64(facing)}
			} else {
				out[name] = Measure{Value: float64(facingOffspring)}
			}
		}
	}

	// do_action_<name>: 1 for slots that chose the action. An action
	// outside the configured set never matches.
	for _, action := range e.cfg.ActionMeasures() {
		v := make([]float64, a.N)
		if e.cfg.HasAction(action) {
			id := e.cfg.Action(action)
			for i, act := range t.actions {
				if act == id {
					v[i] = 1
				}
			}
		}
		out[measureActionPrefix+action] = Measure{Values: v}
	}

	for name, m := range out {
		if m.Scalar() || name == MeasureLifeExpectancy || e.cfg.Derived.Environmental[name] {
			continue
		}
		for i, exists := range a.Exists {
			if !exists {
				m.Values[i] = math.NaN()
			}
		}
	}

	return Info{Measures: out}
}

// countFacing counts existing slots facing an existing slot, and those
// whose faced occupant is their own child. Positions are taken at tick
// start.
func (e *Env) countFacing(a *components.Agents, facing []components.Cell) (agents, offspring int) {
	occ := systems.OccupantMap(a, e.cells, e.w)
	for i := 0; i < a.N; i++ {
		if !a.Exists[i] {
			continue
		}
		j := occ[facing[i].Index(e.w)]
		if j == a.N {
			continue
		}
		agents++
		if a.Parent[j] == i {
			offspring++
		}
	}
	return agents, offspring
}

func ints(v []int) []float64 {
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = float64(x)
	}
	return out
}

func bools(v []bool) []float64 {
	out := make([]float64, len(v))
	for i, b := range v {
		if b {
			out[i] = 1
		}
	}
	return out
}
