package systems

import (
	"math"

	"github.com/pthm-cable/gridworld/components"
	"github.com/pthm-cable/gridworld/config"
)

// EnergySystem applies food, transfers and flat action costs, then runs
// the death test.
type EnergySystem struct {
	max        float64
	lossIdle   float64
	lossAction float64
	thrDeath   float64
	ageMax     int
	actions    ActionIDs
}

// NewEnergySystem creates an energy system.
func NewEnergySystem(cfg *config.Config) *EnergySystem {
	return &EnergySystem{
		max:        cfg.Energy.Max,
		lossIdle:   cfg.Energy.LossIdle,
		lossAction: cfg.Energy.LossAction,
		thrDeath:   cfg.Energy.ThrDeath,
		ageMax:     cfg.Agents.AgeMax,
		actions:    NewActionIDs(cfg),
	}
}

// Update mutates a in place. a must still carry the pre-tick existence
// flags and ages. gain and delta may be nil. It returns the age at death of
// every slot that died, NaN elsewhere.
func (s *EnergySystem) Update(a *components.Agents, actions []int, gain, delta []float64, transferring []bool) []float64 {
	died := make([]float64, a.N)
	for i := 0; i < a.N; i++ {
		died[i] = math.NaN()
		if !a.Exists[i] {
			continue
		}

		e := a.Energy[i]
		if gain != nil {
			e += gain[i]
		}
		if delta != nil {
			e += delta[i]
		}

		switch {
		case is(actions[i], s.actions.Idle):
			e -= s.lossIdle
		case transferring != nil && transferring[i]:
			// Donors pay the transfer loss instead
		default:
			e -= s.lossAction
		}
		e = clamp(e, 0, s.max)
		a.Energy[i] = e

		if e > s.thrDeath && a.Age[i] < s.ageMax {
			continue
		}
		died[i] = float64(a.Age[i])
		a.Kill(i)
	}
	return died
}
