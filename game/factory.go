package game

import (
	"github.com/pthm-cable/gridworld/config"
	"github.com/pthm-cable/gridworld/neural"
)

// NewPolicy creates the policy selected by cfg.Policy.Kind.
func NewPolicy(cfg *config.Config, seed uint64) Policy {
	n := cfg.Population.MaxAgents
	actions := cfg.Derived.NumActions
	if cfg.Policy.Kind == config.PolicyRandom {
		return neural.NewRandomPolicy(n, actions, seed)
	}
	return neural.NewPopulation(n, actions, cfg.Policy, seed)
}
