package neural

import (
	"math/rand/v2"

	"github.com/pthm-cable/gridworld/components"
	"github.com/pthm-cable/gridworld/config"
)

// Population holds one brain per slot. Founders get fresh brains the first
// time they act; newborns inherit their parent's brain with sparse
// mutation. Brains are dropped when their slot dies.
type Population struct {
	cfg     config.PolicyConfig
	actions int

	brains []*FFNN
	src    *rand.PCG
	buf    []float64

	founders func() *BrainWeights
}

// NewPopulation creates a policy for n slots choosing among actions.
func NewPopulation(n, actions int, cfg config.PolicyConfig, seed uint64) *Population {
	return &Population{
		cfg:     cfg,
		actions: actions,
		brains:  make([]*FFNN, n),
		src:     rand.NewPCG(seed, seed^0xda942042e4dd58b5),
	}
}

// SetFounderSource sets where founder brains come from. fn may return nil,
// in which case a random brain is used.
func (p *Population) SetFounderSource(fn func() *BrainWeights) {
	p.founders = fn
}

// Reset drops every brain and reseeds the mutation stream.
func (p *Population) Reset(seed uint64) {
	clear(p.brains)
	p.src.Seed(seed, seed^0xda942042e4dd58b5)
}

// Act returns the argmax action of each existing slot's brain. Ghost slots
// get action 0, which the engine ignores.
func (p *Population) Act(obs *components.Observations, exists []bool) []int {
	out := make([]int, len(p.brains))
	for i, e := range exists {
		if !e {
			continue
		}
		p.buf = obs.Flatten(i, p.buf)
		if p.brains[i] == nil {
			p.brains[i] = p.founder(len(p.buf))
		}
		out[i] = p.brains[i].Act(p.buf)
	}
	return out
}

func (p *Population) founder(inputs int) *FFNN {
	if p.founders != nil {
		if bw := p.founders(); bw != nil && bw.Inputs == inputs && bw.Outputs == p.actions {
			if nn, err := FromWeights(*bw); err == nil {
				return nn
			}
		}
	}
	return NewFFNN(inputs, p.cfg.Hidden, p.actions, p.src)
}

// Observe applies the births and deaths of a tick. A slot that died and
// was reborn in the same tick only appears as a birth.
func (p *Population) Observe(eco *components.EcoInfo) {
	for i, died := range eco.Deaths {
		if died {
			p.brains[i] = nil
		}
	}
	for i, born := range eco.Births {
		if !born {
			continue
		}
		parent := eco.Parents[i]
		if parent < 0 || parent >= len(p.brains) || p.brains[parent] == nil {
			p.brains[i] = nil
			continue
		}
		child := p.brains[parent].Clone()
		child.MutateSparse(p.src, p.cfg.MutationRate, p.cfg.MutationSigma, p.cfg.MutationBigRate, p.cfg.MutationBigSigma)
		p.brains[i] = child
	}
}

// Brain returns slot i's brain, nil if it has none yet.
func (p *Population) Brain(i int) *FFNN {
	return p.brains[i]
}

// Weights returns a copy of slot i's brain weights.
func (p *Population) Weights(i int) (BrainWeights, bool) {
	if p.brains[i] == nil {
		return BrainWeights{}, false
	}
	return p.brains[i].MarshalWeights(), true
}

// RandomPolicy picks actions uniformly at random.
type RandomPolicy struct {
	n, actions int
	src        *rand.PCG
	rng        *rand.Rand
}

// NewRandomPolicy creates a uniform policy for n slots.
func NewRandomPolicy(n, actions int, seed uint64) *RandomPolicy {
	src := rand.NewPCG(seed, seed^0x3c6ef372fe94f82b)
	return &RandomPolicy{n: n, actions: actions, src: src, rng: rand.New(src)}
}

// Reset reseeds the policy.
func (r *RandomPolicy) Reset(seed uint64) {
	r.src.Seed(seed, seed^0x3c6ef372fe94f82b)
}

// Act draws one action per slot, ghosts included, so the draw sequence
// does not depend on the population.
func (r *RandomPolicy) Act(_ *components.Observations, _ []bool) []int {
	out := make([]int, r.n)
	for i := range out {
		out[i] = r.rng.IntN(r.actions)
	}
	return out
}

// Observe is a no-op.
func (r *RandomPolicy) Observe(*components.EcoInfo) {}
