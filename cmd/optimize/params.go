package main

import (
	"github.com/pthm-cable/gridworld/config"
)

// ParamSpec defines a single optimizable parameter.
type ParamSpec struct {
	Name    string  // Human-readable name
	Path    string  // Config path for logging
	Min     float64 // Lower bound
	Max     float64 // Upper bound
	Default float64 // Default value
	Integer bool    // Rounded before it is applied

	get func(cfg *config.Config) float64
	set func(cfg *config.Config, v float64)
}

// ParamVector holds the set of all optimizable parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the standard set of optimizable parameters.
func NewParamVector() *ParamVector {
	return &ParamVector{
		Specs: []ParamSpec{
			// Energy
			{Name: "food", Path: "energy.food", Min: 5, Max: 50, Default: 20,
				get: func(c *config.Config) float64 { return c.Energy.Food },
				set: func(c *config.Config, v float64) { c.Energy.Food = v }},
			{Name: "loss_idle", Path: "energy.loss_idle", Min: 0.1, Max: 2, Default: 0.5,
				get: func(c *config.Config) float64 { return c.Energy.LossIdle },
				set: func(c *config.Config, v float64) { c.Energy.LossIdle = v }},
			{Name: "loss_action", Path: "energy.loss_action", Min: 0.2, Max: 3, Default: 1,
				get: func(c *config.Config) float64 { return c.Energy.LossAction },
				set: func(c *config.Config, v float64) { c.Energy.LossAction = v }},
			{Name: "req_reprod", Path: "energy.req_reprod", Min: 20, Max: 95, Default: 60,
				get: func(c *config.Config) float64 { return c.Energy.ReqReprod },
				set: func(c *config.Config, v float64) { c.Energy.ReqReprod = v }},
			{Name: "cost_reprod", Path: "energy.cost_reprod", Min: 5, Max: 60, Default: 30,
				get: func(c *config.Config) float64 { return c.Energy.CostReprod },
				set: func(c *config.Config, v float64) { c.Energy.CostReprod = v }},
			// Plants
			{Name: "p_base_growth", Path: "plants.p_base_growth", Min: 0.001, Max: 0.1, Default: 0.01,
				get: func(c *config.Config) float64 { return c.Plants.PBaseGrowth },
				set: func(c *config.Config, v float64) { c.Plants.PBaseGrowth = v }},
			{Name: "p_base_death", Path: "plants.p_base_death", Min: 0.001, Max: 0.1, Default: 0.01,
				get: func(c *config.Config) float64 { return c.Plants.PBaseDeath },
				set: func(c *config.Config, v float64) { c.Plants.PBaseDeath = v }},
			{Name: "factor_sun_effect", Path: "plants.factor_sun_effect", Min: 0, Max: 5, Default: 0,
				get: func(c *config.Config) float64 { return c.Plants.FactorSunEffect },
				set: func(c *config.Config, v float64) { c.Plants.FactorSunEffect = v }},
			{Name: "factor_reproduction", Path: "plants.factor_reproduction", Min: 0, Max: 5, Default: 0,
				get: func(c *config.Config) float64 { return c.Plants.FactorReproduction },
				set: func(c *config.Config, v float64) { c.Plants.FactorReproduction = v }},
			{Name: "factor_asphyxia", Path: "plants.factor_asphyxia", Min: 0, Max: 5, Default: 0,
				get: func(c *config.Config) float64 { return c.Plants.FactorAsphyxia },
				set: func(c *config.Config, v float64) { c.Plants.FactorAsphyxia = v }},
			// Population
			{Name: "n_agents_initial", Path: "population.n_agents_initial", Min: 20, Max: 500, Default: 200, Integer: true,
				get: func(c *config.Config) float64 { return float64(c.Population.InitialAgents) },
				set: func(c *config.Config, v float64) { c.Population.InitialAgents = int(v) }},
		},
	}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// DefaultVector returns the default parameter values as a slice.
func (pv *ParamVector) DefaultVector() []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.Default
	}
	return v
}

// Normalize converts raw parameter values to [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		normalized[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp ensures all values are within bounds and rounds integer
// parameters.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		val := min(max(v[i], spec.Min), spec.Max)
		if spec.Integer {
			val = float64(int(val + 0.5))
		}
		clamped[i] = val
	}
	return clamped
}

// ApplyToConfig applies clamped parameter values to cfg. The initial
// population never exceeds the slot capacity.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) {
	for i, v := range pv.Clamp(values) {
		pv.Specs[i].set(cfg, v)
	}
	cfg.Population.InitialAgents = min(cfg.Population.InitialAgents, cfg.Population.MaxAgents)
}

// ExtractFromConfig extracts current parameter values from cfg.
func (pv *ParamVector) ExtractFromConfig(cfg *config.Config) []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.get(cfg)
	}
	return v
}
