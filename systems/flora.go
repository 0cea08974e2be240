package systems

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/pthm-cable/gridworld/components"
	"github.com/pthm-cable/gridworld/config"
)

// FloraSystem runs the plant growth and death automaton.
type FloraSystem struct {
	h, w int

	growthLogit float64
	deathLogit  float64

	sunFactor   float64
	reproFactor float64
	reproRadius int
	asphyxia    float64
	asphyxiaR   int
}

// NewFloraSystem creates a flora system. Base probabilities must lie in (0, 1).
func NewFloraSystem(cfg *config.Config) *FloraSystem {
	p := cfg.Plants
	return &FloraSystem{
		h:           cfg.World.Height,
		w:           cfg.World.Width,
		growthLogit: logit(p.PBaseGrowth),
		deathLogit:  logit(p.PBaseDeath),
		sunFactor:   p.FactorSunEffect,
		reproFactor: p.FactorReproduction,
		reproRadius: p.RadiusReproduction,
		asphyxia:    p.FactorAsphyxia,
		asphyxiaR:   p.RadiusAsphyxia,
	}
}

// Probabilities returns the per-cell probability of holding a plant next tick.
func (s *FloraSystem) Probabilities(g *components.Grid) []float64 {
	plants := g.Plane(components.ChPlants)
	sun := g.Plane(components.ChSun)

	var repro, crowd []float64
	if s.reproFactor != 0 {
		repro = BoxMean(plants, s.h, s.w, s.reproRadius)
	}
	if s.asphyxia != 0 {
		crowd = BoxMean(plants, s.h, s.w, s.asphyxiaR)
	}

	probs := make([]float64, len(plants))
	for i, p := range plants {
		l := s.growthLogit*(1-p) + (1-s.deathLogit)*p
		if s.sunFactor != 0 {
			l += s.sunFactor * sun[i]
		}
		if repro != nil {
			l += s.reproFactor * repro[i] * (1 - p)
		}
		if crowd != nil {
			l -= s.asphyxia * crowd[i]
		}
		probs[i] = sigmoid(clamp(l, logitMin, logitMax))
	}
	return probs
}

// Update resamples the plant plane in place, one Bernoulli draw per cell in
// row-major order.
func (s *FloraSystem) Update(g *components.Grid, src rand.Source) {
	probs := s.Probabilities(g)
	plants := g.Plane(components.ChPlants)
	for i, p := range probs {
		plants[i] = distuv.Bernoulli{P: p, Src: src}.Rand()
	}
}

// BoxMean returns the toroidal mean of plane over the (2r+1)^2 window around
// each cell. The sum is separable: rows first, then columns.
func BoxMean(plane []float64, h, w, r int) []float64 {
	rows := make([]float64, len(plane))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			sum := 0.0
			for dx := -r; dx <= r; dx++ {
				sum += plane[y*w+components.Wrap(x+dx, w)]
			}
			rows[y*w+x] = sum
		}
	}

	out := make([]float64, len(plane))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			sum := 0.0
			for dy := -r; dy <= r; dy++ {
				sum += rows[components.Wrap(y+dy, h)*w+x]
			}
			out[y*w+x] = sum
		}
	}
	side := float64(2*r + 1)
	floats.Scale(1/(side*side), out)
	return out
}
