package main

import (
	"context"
	"log/slog"
	"math"
	"sync"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/gridworld/config"
	"github.com/pthm-cable/gridworld/game"
	"github.com/pthm-cable/gridworld/telemetry"
)

// FitnessEvaluator runs headless episodes and computes fitness.
type FitnessEvaluator struct {
	params     *ParamVector
	maxTicks   int
	seeds      []uint64
	baseConfig *config.Config

	// Best run tracking
	mu             sync.Mutex
	bestFitness    float64
	bestHallOfFame *telemetry.HallOfFame
	lastQuality    float64 // quality from most recent Evaluate call
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, maxTicks int, seeds []uint64, baseCfg *config.Config) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:      params,
		maxTicks:    maxTicks,
		seeds:       seeds,
		baseConfig:  baseCfg,
		bestFitness: math.Inf(1),
	}
}

// BestHallOfFame returns the hall of fame from the best evaluation.
func (fe *FitnessEvaluator) BestHallOfFame() *telemetry.HallOfFame {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.bestHallOfFame
}

// LastQuality returns the quality score from the most recent evaluation.
func (fe *FitnessEvaluator) LastQuality() float64 {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastQuality
}

// A population below minViablePop for extinctionGrace consecutive ticks
// counts as functionally extinct.
const (
	minViablePop    = 3
	extinctionGrace = 200
	warmupTicks     = 50
)

// runResult holds the results from a single episode.
type runResult struct {
	survivalTicks int                     // ticks before functional extinction, or maxTicks
	windowStats   []telemetry.WindowStats // collected via the stats callback
	hallOfFame    *telemetry.HallOfFame
}

// seedResult holds the result from one seed evaluation.
type seedResult struct {
	fitness    float64
	quality    float64
	hallOfFame *telemetry.HallOfFame
}

// Evaluate computes fitness for a raw parameter vector (lower = better).
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	results := make([]seedResult, len(fe.seeds))
	var wg sync.WaitGroup

	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s uint64) {
			defer wg.Done()
			result, err := fe.runEpisode(context.Background(), x, s)
			if err != nil {
				slog.Error("episode failed", "seed", s, "error", err)
				results[idx] = seedResult{fitness: 0}
				return
			}
			quality := fe.computeQuality(result.windowStats)
			results[idx] = seedResult{
				fitness:    computeFitness(result.survivalTicks, quality),
				quality:    quality,
				hallOfFame: result.hallOfFame,
			}
		}(i, seed)
	}
	wg.Wait()

	var totalFitness, totalQuality float64
	bestSeedFitness := math.Inf(1)
	var bestSeedHallOfFame *telemetry.HallOfFame
	for _, r := range results {
		totalFitness += r.fitness
		totalQuality += r.quality
		if r.fitness < bestSeedFitness {
			bestSeedFitness = r.fitness
			bestSeedHallOfFame = r.hallOfFame
		}
	}

	n := float64(len(fe.seeds))
	avgFitness := totalFitness / n

	fe.mu.Lock()
	if avgFitness < fe.bestFitness {
		fe.bestFitness = avgFitness
		fe.bestHallOfFame = bestSeedHallOfFame
	}
	fe.lastQuality = totalQuality / n
	fe.mu.Unlock()

	return avgFitness
}

// runEpisode runs one headless episode until functional extinction or
// maxTicks, whichever comes first.
func (fe *FitnessEvaluator) runEpisode(ctx context.Context, x []float64, seed uint64) (*runResult, error) {
	cfg, err := fe.episodeConfig(x)
	if err != nil {
		return nil, err
	}

	r, err := game.NewRunner(ctx, cfg, nil, game.Options{Seed: seed})
	if err != nil {
		return nil, err
	}
	defer r.Close()

	result := &runResult{survivalTicks: fe.maxTicks}
	r.SetStatsCallback(func(stats telemetry.WindowStats) {
		result.windowStats = append(result.windowStats, stats)
	})

	below := 0
	for tick := 0; tick < fe.maxTicks; tick++ {
		if err := r.Step(ctx); err != nil {
			return nil, err
		}
		if r.Done() {
			result.survivalTicks = tick + 1
			break
		}
		if tick < warmupTicks {
			continue
		}
		if r.State().Agents.Count() < minViablePop {
			below++
		} else {
			below = 0
		}
		if below >= extinctionGrace {
			result.survivalTicks = tick + 1
			break
		}
	}
	result.hallOfFame = r.HallOfFame()
	return result, nil
}

// episodeConfig clones the base config, applies x and turns off every
// file output.
func (fe *FitnessEvaluator) episodeConfig(x []float64) (*config.Config, error) {
	cfg, err := fe.baseConfig.Clone()
	if err != nil {
		return nil, err
	}
	fe.params.ApplyToConfig(cfg, x)
	cfg.Video.Enabled = false
	cfg.Telemetry.LineageDB = ""
	cfg.Metrics.PeriodLogging = 0
	return cfg, cfg.Finalize()
}

// computeFitness calculates the scalar fitness (lower = better).
// Survival dominates; quality adds up to 20% to separate configs with
// similar survival.
func computeFitness(survivalTicks int, quality float64) float64 {
	return -(float64(survivalTicks) * (1.0 + 0.2*quality))
}

// Quality component weights.
const (
	qualityWeightStability = 0.35
	qualityWeightPlants    = 0.25
	qualityWeightEnergy    = 0.20
	qualityWeightTurnover  = 0.20

	qualityWarmupWindows = 3 // skip first N windows
	qualityMinPop        = 3 // exclude windows below this population
)

// computeQuality computes ecosystem quality in [0, 1] from window stats.
func (fe *FitnessEvaluator) computeQuality(windows []telemetry.WindowStats) float64 {
	if len(windows) <= qualityWarmupWindows {
		return 0
	}

	cells := float64(fe.baseConfig.World.Width * fe.baseConfig.World.Height)
	energyMax := fe.baseConfig.Energy.Max

	var counts []float64
	var plantSum, energySum, turnoverSum float64
	for _, w := range windows[qualityWarmupWindows:] {
		if w.Agents < qualityMinPop {
			continue
		}
		counts = append(counts, float64(w.Agents))

		// Plant cover near a third of the grid leaves room to move and eat.
		cover := w.Plants / cells
		plantSum += math.Exp(-math.Pow((cover-0.33)/0.2, 2))

		// Median energy near half the cap means agents neither starve nor
		// hoard.
		energySum += math.Exp(-math.Pow((w.EnergyP50/energyMax-0.5)/0.25, 2))

		// Some births per agent each window shows reproduction is working.
		perAgent := float64(w.Births) / float64(w.Agents)
		turnoverSum += 1 - math.Exp(-perAgent/0.1)
	}
	if len(counts) == 0 {
		return 0
	}
	n := float64(len(counts))

	stabilityScore := 0.0
	if len(counts) >= 2 {
		c := cv(counts)
		stabilityScore = math.Exp(-c * c)
	}

	quality := qualityWeightStability*stabilityScore +
		qualityWeightPlants*plantSum/n +
		qualityWeightEnergy*energySum/n +
		qualityWeightTurnover*turnoverSum/n

	return clamp01(quality)
}

// cv computes the coefficient of variation (std/mean) of values.
func cv(values []float64) float64 {
	mean := stat.Mean(values, nil)
	if mean == 0 {
		return 0
	}
	return stat.PopStdDev(values, nil) / mean
}

// clamp01 clamps x to [0, 1].
func clamp01(x float64) float64 {
	return min(max(x, 0), 1)
}
