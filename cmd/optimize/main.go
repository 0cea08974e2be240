// Package main searches energy and plant-automaton parameters with CMA-ES
// for settings that keep a gridworld population alive and balanced.
//
// Usage: go run ./cmd/optimize -output runs/opt1 [-config base.yaml]
package main

import (
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gonum.org/v1/gonum/optimize"

	"github.com/pthm-cable/gridworld/config"
)

type options struct {
	configPath string
	outputDir  string
	maxTicks   int
	seeds      int
	seedBase   uint64
	maxEvals   int
	population int
	stepSize   float64
	policy     string
}

func main() {
	var o options
	flag.StringVar(&o.configPath, "config", "", "Base config YAML (empty = use defaults)")
	flag.StringVar(&o.outputDir, "output", "", "Directory for optimize_log.csv, best_config.yaml and hall_of_fame.json")
	flag.IntVar(&o.maxTicks, "max-ticks", 20000, "Episode cap in ticks")
	flag.IntVar(&o.seeds, "seeds", 3, "Episodes per evaluation, one per seed")
	flag.Uint64Var(&o.seedBase, "seed-base", 42, "First episode seed; later seeds step by 1000")
	flag.IntVar(&o.maxEvals, "max-evals", 200, "Evaluation budget")
	flag.IntVar(&o.population, "population", 0, "CMA-ES population (0 = 4 + 3 ln(dim))")
	flag.Float64Var(&o.stepSize, "step-size", 0.3, "Initial CMA-ES step in normalized parameter space")
	flag.StringVar(&o.policy, "policy", "", "Override policy.kind (neural or random)")
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, nil)))
	if err := run(o); err != nil {
		slog.Error("optimization failed", "error", err)
		os.Exit(1)
	}
}

func run(o options) error {
	if o.outputDir == "" {
		return errors.New("-output is required")
	}
	if o.seeds < 1 {
		return fmt.Errorf("-seeds must be at least 1, got %d", o.seeds)
	}
	if err := os.MkdirAll(o.outputDir, 0755); err != nil {
		return fmt.Errorf("creating output dir: %w", err)
	}

	base, err := config.Load(o.configPath)
	if err != nil {
		return err
	}
	if o.policy != "" {
		base.Policy.Kind = o.policy
		if err := base.Finalize(); err != nil {
			return err
		}
	}

	params := NewParamVector()
	evaluator := NewFitnessEvaluator(params, o.maxTicks, episodeSeeds(o.seeds, o.seedBase), base)

	elog, err := newEvalLog(filepath.Join(o.outputDir, "optimize_log.csv"), params)
	if err != nil {
		return err
	}
	defer elog.Close()

	pop := o.population
	if pop == 0 {
		pop = 4 + int(3*math.Log(float64(params.Dim())))
	}

	best := bestTracker{fitness: math.Inf(1)}
	start := time.Now()
	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			values := params.Clamp(params.Denormalize(x))
			fitness := evaluator.Evaluate(values)
			quality := evaluator.LastQuality()
			best.offer(fitness, values)

			n := elog.Record(fitness, quality, values)
			elapsed := time.Since(start)
			slog.Info("evaluation",
				"eval", n,
				"of", o.maxEvals,
				"survival_ticks", survivalTicks(fitness, quality),
				"quality", quality,
				"best_fitness", best.fitness,
				"elapsed", elapsed.Round(time.Second),
				"eta", (time.Duration(o.maxEvals-n) * elapsed / time.Duration(n)).Round(time.Second),
			)
			return fitness
		},
	}

	slog.Info("starting CMA-ES",
		"params", params.Dim(),
		"population", pop,
		"max_evals", o.maxEvals,
		"seeds", o.seeds,
		"max_ticks", o.maxTicks,
		"policy", base.Policy.Kind,
	)
	result, err := optimize.Minimize(problem,
		params.Normalize(params.Clamp(params.ExtractFromConfig(base))),
		&optimize.Settings{FuncEvaluations: o.maxEvals},
		&optimize.CmaEsChol{InitStepSize: o.stepSize, Population: pop},
	)
	if err != nil {
		slog.Warn("optimizer stopped", "error", err)
	}
	if best.values == nil && result != nil {
		best.values = params.Clamp(params.Denormalize(result.X))
	}
	if best.values == nil {
		return errors.New("no evaluation completed")
	}

	slog.Info("optimization complete",
		"evals", elog.Count(),
		"elapsed", time.Since(start).Round(time.Second),
		"best_fitness", best.fitness,
	)
	for i, spec := range params.Specs {
		slog.Info("best parameter", "path", spec.Path, "value", best.values[i])
	}
	return saveBest(o.outputDir, base, params, best.values, evaluator)
}

// episodeSeeds returns n seeds spaced 1000 apart from base.
func episodeSeeds(n int, base uint64) []uint64 {
	out := make([]uint64, n)
	for i := range out {
		out[i] = base + uint64(i)*1000
	}
	return out
}

// survivalTicks inverts computeFitness for reporting.
func survivalTicks(fitness, quality float64) float64 {
	return -fitness / (1 + 0.2*quality)
}

// bestTracker keeps the lowest fitness seen across every evaluation, not
// only the optimizer's final mean.
type bestTracker struct {
	fitness float64
	values  []float64
}

func (b *bestTracker) offer(fitness float64, values []float64) {
	if fitness < b.fitness {
		b.fitness = fitness
		b.values = append(b.values[:0], values...)
	}
}

// evalLog appends one CSV row per evaluation. Columns follow the parameter
// list, so the header is built at runtime.
type evalLog struct {
	f *os.File
	w *csv.Writer
	n int
}

func newEvalLog(path string, params *ParamVector) (*evalLog, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating eval log: %w", err)
	}
	header := []string{"eval", "fitness", "survival_ticks", "quality"}
	for _, spec := range params.Specs {
		header = append(header, spec.Path)
	}
	l := &evalLog{f: f, w: csv.NewWriter(f)}
	if err := l.w.Write(header); err != nil {
		f.Close()
		return nil, err
	}
	return l, nil
}

// Record writes a row and flushes it, returning the evaluation number.
func (l *evalLog) Record(fitness, quality float64, values []float64) int {
	l.n++
	row := []string{
		strconv.Itoa(l.n),
		strconv.FormatFloat(fitness, 'f', 6, 64),
		strconv.FormatFloat(survivalTicks(fitness, quality), 'f', 0, 64),
		strconv.FormatFloat(quality, 'f', 4, 64),
	}
	for _, v := range values {
		row = append(row, strconv.FormatFloat(v, 'f', 6, 64))
	}
	if err := l.w.Write(row); err != nil {
		slog.Warn("eval log write failed", "error", err)
	}
	l.w.Flush()
	return l.n
}

func (l *evalLog) Count() int {
	return l.n
}

func (l *evalLog) Close() error {
	l.w.Flush()
	return errors.Join(l.w.Error(), l.f.Close())
}

// saveBest writes the base config with the best values applied and, when
// the best run produced one, its hall of fame.
func saveBest(dir string, base *config.Config, params *ParamVector, values []float64, fe *FitnessEvaluator) error {
	cfg, err := base.Clone()
	if err != nil {
		return err
	}
	params.ApplyToConfig(cfg, values)
	cfgPath := filepath.Join(dir, "best_config.yaml")
	if err := cfg.WriteYAML(cfgPath); err != nil {
		return err
	}
	slog.Info("wrote best config", "path", cfgPath)

	hof := fe.BestHallOfFame()
	if hof == nil || hof.Size() == 0 {
		return nil
	}
	hofPath := filepath.Join(dir, "hall_of_fame.json")
	if err := hof.Save(hofPath); err != nil {
		return err
	}
	slog.Info("wrote hall of fame", "path", hofPath)
	return nil
}
