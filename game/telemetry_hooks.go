package game

import (
	"log/slog"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/pthm-cable/gridworld/components"
	"github.com/pthm-cable/gridworld/telemetry"
)

// recordTick feeds one transition into the collector and the lifetime
// tracker and returns its birth and death events. Events are stamped with
// the tick the transition started from, so lifetime ages match agent ages.
// Deaths come from the energy pass, which also covers slots refilled by a
// birth in the same tick.
func (r *Runner) recordTick(pre, next *components.State, eco *components.EcoInfo, info Info) []telemetry.Event {
	tick := pre.Tick
	st := info.Stats

	r.collector.RecordBirths(eco.NumBirths())
	r.collector.RecordTransfers(st.Transfers, st.ToOffspring)
	r.collector.RecordFood(floats.Sum(st.Food), st.EatAttempts)

	for i, existed := range pre.Agents.Exists {
		if !existed || !r.lifetimes.Tracked(i) {
			continue
		}
		r.lifetimes.RecordFood(i, st.Food[i])
		if st.Donated[i] {
			r.lifetimes.RecordTransfer(i)
		}
	}

	var events []telemetry.Event
	for i, age := range st.DeathAges {
		if math.IsNaN(age) {
			continue
		}
		r.collector.RecordDeath(int(age))
		events = append(events, telemetry.NewDeathEvent(tick, i, r.lifetimes.Lineage(i), int(age)))
		r.retire(i, tick)
	}

	for i, born := range eco.Births {
		if !born {
			continue
		}
		lineage := r.lifetimes.Register(i, eco.Parents[i], tick)
		events = append(events, telemetry.NewBirthEvent(tick, i, eco.Parents[i], lineage))
	}

	a := next.Agents
	for i, exists := range a.Exists {
		if exists {
			r.lifetimes.UpdateEnergy(i, a.Energy[i])
		}
	}
	return events
}

// retire stops tracking slot, queues its lifetime and offers its brain to
// the hall of fame.
func (r *Runner) retire(slot, tick int) {
	rec, ok := r.lifetimes.Remove(slot, tick)
	if !ok {
		return
	}
	r.considerForHall(slot, rec)
	r.pending = append(r.pending, rec)
}

// flushTelemetry checks if the stats window should be flushed and handles bookmarks.
func (r *Runner) flushTelemetry() {
	tick := r.state.Tick
	if !r.collector.ShouldFlush(tick) {
		return
	}

	stats := r.collector.Flush(tick, r.samplePopulation())
	perfStats := r.perfCollector.Stats()

	// Call stats callback if provided
	if r.statsCallback != nil {
		r.statsCallback(stats)
	}

	// Log stats if enabled (console output)
	if r.opts.LogStats {
		stats.LogStats()
		perfStats.LogStats()
	}

	// Write to CSV if output manager is enabled
	if r.outputManager != nil {
		if err := r.outputManager.WriteTelemetry(stats); err != nil {
			slog.Error("failed to write telemetry", "error", err)
		}
		if err := r.outputManager.WritePerf(perfStats, stats.WindowEndTick); err != nil {
			slog.Error("failed to write perf", "error", err)
		}
		if err := r.outputManager.WriteLifetimes(r.pending); err != nil {
			slog.Error("failed to write lifetimes", "error", err)
		}
		r.pending = r.pending[:0]
	}

	for _, bm := range r.bookmarks.Check(stats) {
		if r.opts.LogStats {
			bm.LogBookmark()
		}
		if r.opts.SnapshotDir != "" {
			r.saveSnapshot(&bm)
		}
	}
}

// samplePopulation collects the end-of-window population for the stats.
func (r *Runner) samplePopulation() telemetry.Population {
	a := r.state.Agents
	pop := telemetry.Population{
		Agents:         a.Count(),
		Plants:         floats.Sum(r.state.Grid.Plane(components.ChPlants)),
		Energies:       make([]float64, 0, a.N),
		Ages:           make([]float64, 0, a.N),
		ActiveLineages: r.lifetimes.ActiveLineageCount(),
	}
	for i, exists := range a.Exists {
		if exists {
			pop.Energies = append(pop.Energies, a.Energy[i])
			pop.Ages = append(pop.Ages, float64(a.Age[i]))
		}
	}
	return pop
}

// saveSnapshot writes the current state to the snapshot directory.
func (r *Runner) saveSnapshot(bookmark *telemetry.Bookmark) {
	snapshot := telemetry.NewSnapshot(r.state, r.opts.Seed)
	snapshot.Bookmark = bookmark
	if r.lineageStore != nil {
		snapshot.RunID = r.lineageStore.RunID()
	}
	snapshot.Lifetimes = make(map[int]telemetry.LifeStats)
	for i := range r.state.Agents.Exists {
		if s := r.lifetimes.Get(i); s != nil {
			snapshot.Lifetimes[i] = *s
		}
	}

	path, err := telemetry.SaveSnapshot(snapshot, r.opts.SnapshotDir)
	if err != nil {
		slog.Error("failed to save snapshot", "error", err)
		return
	}

	slog.Info("snapshot saved", "path", path, "tick", r.state.Tick)
}
