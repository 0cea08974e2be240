package systems

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/pthm-cable/gridworld/components"
	"github.com/pthm-cable/gridworld/config"
)

// SunSystem moves the sun band along the rows.
type SunSystem struct {
	h, w   int
	method string
	period int
}

// NewSunSystem creates a sun system.
func NewSunSystem(cfg *config.Config) *SunSystem {
	return &SunSystem{
		h:      cfg.World.Height,
		w:      cfg.World.Width,
		method: cfg.Sun.Method,
		period: cfg.Sun.Period,
	}
}

// InitSunProfile writes the initial sun plane centered on row H/2 and returns
// that latitude. Intensity decays linearly with toroidal row distance and
// reaches zero at radius. Method none leaves the plane at zero.
func InitSunProfile(g *components.Grid, method string, radius float64) int {
	lat := g.H / 2
	plane := g.Plane(components.ChSun)
	clear(plane)
	if method == config.SunNone {
		return lat
	}
	for r := 0; r < g.H; r++ {
		d := math.Abs(float64(r - lat))
		d = math.Min(d, float64(g.H)-d)
		v := 0.0
		switch {
		case radius > 0:
			v = clamp01(1 - d/radius)
		case d == 0:
			v = 1
		}
		row := plane[r*g.W : (r+1)*g.W]
		for c := range row {
			row[c] = v
		}
	}
	return lat
}

// Latitude computes the next latitude from the current one at tick t.
// src is read only by the random and brownian methods.
func (s *SunSystem) Latitude(current, t int, src rand.Source) int {
	var lat float64
	switch s.method {
	case config.SunRandom:
		lat = math.Floor(distuv.Uniform{Min: 0, Max: float64(s.h), Src: src}.Rand())
	case config.SunBrownian:
		step := distuv.Normal{Mu: 0, Sigma: 1, Src: src}.Rand()
		lat = float64(current) + step*float64(s.h)/2/math.Sqrt(float64(s.period))
	case config.SunSine:
		half := float64(s.h / 2)
		lat = half + half*math.Sin(2*math.Pi*float64(t)/float64(s.period))
	case config.SunLinear:
		lat = float64(s.h/2 + s.h*t/s.period)
	default:
		return current
	}
	return components.Wrap(int(math.RoundToEven(lat)), s.h)
}

// Update moves the sun for tick t. The sun plane is rolled along the rows
// by the latitude change and never recomputed. It returns the new latitude.
func (s *SunSystem) Update(g *components.Grid, current, t int, src rand.Source) int {
	lat := s.Latitude(current, t, src)
	shift := lat - current
	if shift == 0 {
		return lat
	}
	plane := g.Plane(components.ChSun)
	rolled := make([]float64, len(plane))
	for r := 0; r < s.h; r++ {
		dst := components.Wrap(r+shift, s.h)
		copy(rolled[dst*s.w:(dst+1)*s.w], plane[r*s.w:(r+1)*s.w])
	}
	copy(plane, rolled)
	return lat
}
