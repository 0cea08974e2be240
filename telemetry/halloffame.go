package telemetry

import (
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"os"
	"sort"

	"github.com/pthm-cable/gridworld/config"
	"github.com/pthm-cable/gridworld/neural"
)

// HallEntry is a successful agent's brain and the record that earned it a
// place.
type HallEntry struct {
	Weights   neural.BrainWeights `json:"brain"`
	Fitness   float64             `json:"fitness"`
	Lineage   int                 `json:"lineage"`
	Children  int                 `json:"children"`
	Age       int                 `json:"age"`
	FoodEaten float64             `json:"food_eaten"`
}

// HallOfFame keeps the brains of the fittest dead agents, sorted by
// descending fitness. A saved hall can seed the founders of a later run.
type HallOfFame struct {
	entries []HallEntry
	maxSize int
	cfg     config.HallOfFameConfig
	rng     *rand.Rand
}

// NewHallOfFame creates an empty hall.
func NewHallOfFame(cfg config.HallOfFameConfig, seed uint64) *HallOfFame {
	return &HallOfFame{
		entries: make([]HallEntry, 0, cfg.Size),
		maxSize: cfg.Size,
		cfg:     cfg,
		rng:     rand.New(rand.NewPCG(seed, seed^0xa54ff53a5f1d36f1)),
	}
}

// Consider evaluates a dead agent for entry.
// Returns true if the agent was added to the hall.
func (hof *HallOfFame) Consider(weights neural.BrainWeights, rec LifetimeRecord) bool {
	if hof.maxSize <= 0 || !hof.meetsEntryCriteria(rec) {
		return false
	}

	entry := HallEntry{
		Weights:   weights,
		Fitness:   hof.calculateFitness(rec),
		Lineage:   rec.Lineage,
		Children:  rec.Children,
		Age:       rec.Age,
		FoodEaten: rec.FoodEaten,
	}

	var added bool
	hof.entries, added = hof.insertEntry(hof.entries, entry)
	return added
}

// meetsEntryCriteria: reproduced enough, or lived long enough.
func (hof *HallOfFame) meetsEntryCriteria(rec LifetimeRecord) bool {
	return rec.Children >= hof.cfg.Entry.MinChildren || rec.Age >= hof.cfg.Entry.MinAge
}

// calculateFitness computes the weighted fitness score.
func (hof *HallOfFame) calculateFitness(rec LifetimeRecord) float64 {
	f := hof.cfg.Fitness
	return float64(rec.Children)*f.ChildrenWeight +
		float64(rec.Age)*f.SurvivalWeight +
		rec.FoodEaten*f.ForageWeight
}

// insertEntry adds an entry, maintaining sorted order by fitness.
// If the hall is full, the lowest-fitness entry is removed.
func (hof *HallOfFame) insertEntry(hall []HallEntry, entry HallEntry) ([]HallEntry, bool) {
	idx := sort.Search(len(hall), func(i int) bool {
		return hall[i].Fitness < entry.Fitness
	})

	// If hall is full and entry would be last (lowest), skip it
	if len(hall) >= hof.maxSize && idx >= hof.maxSize {
		return hall, false
	}

	hall = append(hall, HallEntry{})
	copy(hall[idx+1:], hall[idx:])
	hall[idx] = entry

	if len(hall) > hof.maxSize {
		hall = hall[:hof.maxSize]
	}

	return hall, true
}

// Sample selects a brain using tournament selection.
// Returns nil if the hall is empty.
func (hof *HallOfFame) Sample() *neural.BrainWeights {
	if len(hof.entries) == 0 {
		return nil
	}

	// Tournament selection with k=3
	const tournamentSize = 3
	var best *HallEntry
	for i := 0; i < tournamentSize && i < len(hof.entries); i++ {
		candidate := &hof.entries[hof.rng.IntN(len(hof.entries))]
		if best == nil || candidate.Fitness > best.Fitness {
			best = candidate
		}
	}

	weightsCopy := best.Weights
	return &weightsCopy
}

// Size returns the number of entries.
func (hof *HallOfFame) Size() int {
	return len(hof.entries)
}

// TopFitness returns the highest fitness, 0 if the hall is empty.
func (hof *HallOfFame) TopFitness() float64 {
	if len(hof.entries) == 0 {
		return 0
	}
	return hof.entries[0].Fitness
}

// Save writes the hall as JSON.
func (hof *HallOfFame) Save(path string) error {
	data, err := json.MarshalIndent(hof.entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling hall of fame: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing hall of fame: %w", err)
	}
	return nil
}

// LoadHallOfFame reads a hall saved by Save. The hall keeps at most
// cfg.Size entries, or all of them if the file holds more and cfg.Size is 0.
func LoadHallOfFame(path string, cfg config.HallOfFameConfig, seed uint64) (*HallOfFame, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading hall of fame: %w", err)
	}

	var entries []HallEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parsing hall of fame JSON: %w", err)
	}

	if cfg.Size == 0 {
		cfg.Size = len(entries)
	}
	hof := NewHallOfFame(cfg, seed)
	for _, e := range entries {
		hof.entries, _ = hof.insertEntry(hof.entries, e)
	}
	return hof, nil
}
