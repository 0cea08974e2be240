package game

import (
	"github.com/pthm-cable/gridworld/components"
	"github.com/pthm-cable/gridworld/systems"
	"github.com/pthm-cable/gridworld/telemetry"
)

// tickRecord keeps the intermediate results of one Step for the measures.
type tickRecord struct {
	pre, next *components.State
	actions   []int
	move      systems.MoveResult
	feed      systems.FeedResult
	xfer      systems.TransferResult
	breed     systems.BreedResult
	died      []float64 // Age at death, NaN for survivors
}

// Step advances st by one tick. st is not modified, except for the shared
// video buffer which receives the frame of st.Tick. actions holds one
// action id per slot; ghost entries are ignored.
func (e *Env) Step(st *components.State, actions []int, seed uint64) (*components.State, *components.Observations, *components.EcoInfo, bool, Info) {
	streams := systems.NewStreams(seed)
	pre := st.Agents
	next := st.Clone()
	a := next.Agents
	ghostsAtStart := pre.N - pre.Count()

	e.profiler.StartPhase(telemetry.PhaseMovement)
	move := e.movement.Update(pre, actions, st.Grid.Plane(components.ChAgents), streams.Source(systems.PhaseMovement))
	copy(a.Pos, move.Pos)
	copy(a.Orientation, move.Orientation)

	e.profiler.StartPhase(telemetry.PhaseActions)
	feed := e.feeding.Update(pre, actions, move.Pos, next.Grid.Plane(components.ChPlants), streams.Source(systems.PhaseEating))
	xfer := e.transfer.Update(pre, actions, move.Facing)
	died := e.energy.Update(a, actions, feed.Gain, xfer.Delta, xfer.Transferring)

	e.profiler.StartPhase(telemetry.PhaseAggregates)
	e.spatial.Refresh(next.Grid, a)

	e.profiler.StartPhase(telemetry.PhaseReproduction)
	breed := e.breeding.Update(a, actions, next.Grid.Plane(components.ChAgents), ghostsAtStart, streams.Source(systems.PhaseReproduction))
	for i := range a.Age {
		if a.Exists[i] {
			a.Age[i]++
		}
	}
	e.spatial.Refresh(next.Grid, a)

	e.profiler.StartPhase(telemetry.PhaseEnvironment)
	next.SunLatitude = e.sun.Update(next.Grid, st.SunLatitude, st.Tick, streams.Source(systems.PhaseSun))
	e.flora.Update(next.Grid, streams.Source(systems.PhasePlants))

	e.profiler.StartPhase(telemetry.PhaseObservations)
	obs := e.vision.Build(next, breed.Reproduced)

	eco := components.NewEcoInfo(a.N)
	copy(eco.Births, breed.Births)
	copy(eco.Parents, breed.Parents)
	for i := range eco.Deaths {
		eco.Deaths[i] = pre.Exists[i] && !a.Exists[i]
	}

	next.Tick = st.Tick + 1
	done := e.cfg.World.IsTerminal && a.Count() == 0

	info := e.measure(&tickRecord{
		pre:     st,
		next:    next,
		actions: actions,
		move:    move,
		feed:    feed,
		xfer:    xfer,
		breed:   breed,
		died:    died,
	})
	info.Stats = TickStats{
		Food:        feed.Gain,
		EatAttempts: feed.Attempts,
		Donated:     xfer.Donated,
		Transfers:   xfer.Count,
		ToOffspring: xfer.NumToOffspring(),
		DeathAges:   died,
	}

	e.profiler.StartPhase(telemetry.PhaseVideo)
	e.recordFrame(next, st.Tick)

	return next, obs, eco, done, info
}
