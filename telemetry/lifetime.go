package telemetry

import "github.com/mlange-42/ark/ecs"

// Life identifies the occupant of a slot for as long as it lives.
type Life struct {
	Slot      int
	Parent    int // -1 for founders
	Lineage   int
	BirthTick int
}

// LifeStats accumulates per-occupant statistics over its lifetime.
type LifeStats struct {
	Children   int     `json:"children"`
	Transfers  int     `json:"transfers"`
	FoodEaten  float64 `json:"food_eaten"`
	PeakEnergy float64 `json:"peak_energy"`
}

// LifetimeRecord is the CSV row written when an occupant dies.
type LifetimeRecord struct {
	Slot       int     `csv:"slot"`
	Parent     int     `csv:"parent"`
	Lineage    int     `csv:"lineage"`
	BirthTick  int     `csv:"birth_tick"`
	DeathTick  int     `csv:"death_tick"`
	Age        int     `csv:"age"`
	Children   int     `csv:"children"`
	Transfers  int     `csv:"transfers"`
	FoodEaten  float64 `csv:"food_eaten"`
	PeakEnergy float64 `csv:"peak_energy"`
}

// LifetimeTracker keeps one ECS entity per living slot. Slots are reused
// by the engine, so an entity is removed on death and a new one is created
// on birth.
type LifetimeTracker struct {
	world    *ecs.World
	mapper   *ecs.Map2[Life, LifeStats]
	lifeMap  *ecs.Map1[Life]
	statsMap *ecs.Map1[LifeStats]
	filter   *ecs.Filter2[Life, LifeStats]

	bySlot      []ecs.Entity
	tracked     []bool
	nextLineage int
}

// NewLifetimeTracker creates a tracker for n slots.
func NewLifetimeTracker(n int) *LifetimeTracker {
	world := ecs.NewWorld()
	return &LifetimeTracker{
		world:    world,
		mapper:   ecs.NewMap2[Life, LifeStats](world),
		lifeMap:  ecs.NewMap1[Life](world),
		statsMap: ecs.NewMap1[LifeStats](world),
		filter:   ecs.NewFilter2[Life, LifeStats](world),
		bySlot:   make([]ecs.Entity, n),
		tracked:  make([]bool, n),
	}
}

// Register starts tracking a new occupant of slot. Children of a tracked
// parent inherit its lineage and are counted as its children; anyone else
// founds a new lineage. It returns the lineage.
func (lt *LifetimeTracker) Register(slot, parent, tick int) int {
	life := Life{Slot: slot, Parent: -1, BirthTick: tick}
	if parent >= 0 && parent < len(lt.tracked) && lt.tracked[parent] {
		e := lt.bySlot[parent]
		life.Parent = parent
		life.Lineage = lt.lifeMap.Get(e).Lineage
		lt.statsMap.Get(e).Children++
	} else {
		life.Lineage = lt.nextLineage
		lt.nextLineage++
	}

	stats := LifeStats{}
	lt.bySlot[slot] = lt.mapper.NewEntity(&life, &stats)
	lt.tracked[slot] = true
	return life.Lineage
}

// Tracked reports whether slot has a live occupant.
func (lt *LifetimeTracker) Tracked(slot int) bool {
	return lt.tracked[slot]
}

// Get returns the stats of slot's occupant, or nil if untracked.
func (lt *LifetimeTracker) Get(slot int) *LifeStats {
	if !lt.tracked[slot] {
		return nil
	}
	return lt.statsMap.Get(lt.bySlot[slot])
}

// Lineage returns the lineage of slot's occupant, or -1 if untracked.
func (lt *LifetimeTracker) Lineage(slot int) int {
	if !lt.tracked[slot] {
		return -1
	}
	return lt.lifeMap.Get(lt.bySlot[slot]).Lineage
}

// Remove stops tracking slot and returns the occupant's record.
func (lt *LifetimeTracker) Remove(slot, tick int) (LifetimeRecord, bool) {
	if !lt.tracked[slot] {
		return LifetimeRecord{}, false
	}
	e := lt.bySlot[slot]
	life := *lt.lifeMap.Get(e)
	stats := *lt.statsMap.Get(e)
	lt.world.RemoveEntity(e)
	lt.tracked[slot] = false

	return LifetimeRecord{
		Slot:       life.Slot,
		Parent:     life.Parent,
		Lineage:    life.Lineage,
		BirthTick:  life.BirthTick,
		DeathTick:  tick,
		Age:        tick - life.BirthTick,
		Children:   stats.Children,
		Transfers:  stats.Transfers,
		FoodEaten:  stats.FoodEaten,
		PeakEnergy: stats.PeakEnergy,
	}, true
}

// RecordFood adds energy gained from plants.
func (lt *LifetimeTracker) RecordFood(slot int, amount float64) {
	if s := lt.Get(slot); s != nil {
		s.FoodEaten += amount
	}
}

// RecordTransfer increments the transfer count.
func (lt *LifetimeTracker) RecordTransfer(slot int) {
	if s := lt.Get(slot); s != nil {
		s.Transfers++
	}
}

// UpdateEnergy raises the peak energy if e exceeds it.
func (lt *LifetimeTracker) UpdateEnergy(slot int, e float64) {
	if s := lt.Get(slot); s != nil && e > s.PeakEnergy {
		s.PeakEnergy = e
	}
}

// Count returns the number of tracked occupants.
func (lt *LifetimeTracker) Count() int {
	n := 0
	query := lt.filter.Query()
	for query.Next() {
		n++
	}
	return n
}

// ActiveLineageCount returns the number of distinct lineages among living
// occupants.
func (lt *LifetimeTracker) ActiveLineageCount() int {
	seen := make(map[int]struct{})
	query := lt.filter.Query()
	for query.Next() {
		life, _ := query.Get()
		seen[life.Lineage] = struct{}{}
	}
	return len(seen)
}
