package game

import (
	"log/slog"
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/gridworld/components"
)

// logTick logs the world state every metrics.period_logging ticks.
func (r *Runner) logTick() {
	period := r.cfg.Metrics.PeriodLogging
	if period <= 0 || r.state.Tick%period != 0 {
		return
	}
	logWorldState(r.state, r.info, r.lifetimes.Count(), r.lifetimes.ActiveLineageCount())
}

// logWorldState logs population, plants and the scalar measures of the
// last tick. lives is the number of tracked lifetimes, which matches agents
// unless telemetry has drifted from the state.
func logWorldState(st *components.State, info Info, lives, lineages int) {
	a := st.Agents

	var energies []float64
	oldest := 0
	for i, exists := range a.Exists {
		if !exists {
			continue
		}
		energies = append(energies, a.Energy[i])
		oldest = max(oldest, a.Age[i])
	}

	var energyMean float64
	if len(energies) > 0 {
		energyMean = stat.Mean(energies, nil)
	}

	names := make([]string, 0, len(info.Measures))
	for name, m := range info.Measures {
		if m.Scalar() {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	measures := make([]any, 0, len(names))
	for _, name := range names {
		measures = append(measures, slog.Float64(name, info.Measures[name].Value))
	}

	slog.Info("world",
		"tick", st.Tick,
		"agents", len(energies),
		"ghosts", a.N-len(energies),
		"plants", floats.Sum(st.Grid.Plane(components.ChPlants)),
		"sun_latitude", st.SunLatitude,
		"energy_mean", energyMean,
		"oldest", oldest,
		"lives", lives,
		"lineages", lineages,
		slog.Group("measures", measures...),
	)
}
