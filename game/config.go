package game

import (
	"github.com/pthm-cable/gridworld/components"
	"github.com/pthm-cable/gridworld/neural"
)

// Options holds run settings that are not part of the world config.
type Options struct {
	Seed        uint64
	MaxTicks    int    // 0 runs until the episode ends
	LogStats    bool   // Log window and perf stats
	OutputDir   string // Empty disables CSV output
	SnapshotDir string // Empty disables snapshots on bookmarks
	HallOfFame  string // Hall of fame file to seed founder brains from
}

// Policy chooses actions for every slot and learns about births and
// deaths after each tick.
type Policy interface {
	Reset(seed uint64)
	Act(obs *components.Observations, exists []bool) []int
	Observe(eco *components.EcoInfo)
}

// brainSource is implemented by policies whose per-slot brains can enter
// the hall of fame.
type brainSource interface {
	Weights(slot int) (neural.BrainWeights, bool)
}

// founderSeeder is implemented by policies that can take founder brains
// from the hall of fame.
type founderSeeder interface {
	SetFounderSource(fn func() *neural.BrainWeights)
}
