package systems

import (
	"github.com/pthm-cable/gridworld/components"
	"github.com/pthm-cable/gridworld/config"
)

// VisionSystem builds egocentric observations.
type VisionSystem struct {
	rangeV   int
	channels []int // Grid channels in the visual field
	energy   float64
	ageMax   float64

	visual, withEnergy, withAge, withReproduced bool
}

// NewVisionSystem creates an observation builder.
func NewVisionSystem(cfg *config.Config) *VisionSystem {
	return &VisionSystem{
		rangeV:         cfg.Agents.VisionRange,
		channels:       cfg.Derived.VisualChannels,
		energy:         cfg.Energy.Max,
		ageMax:         float64(cfg.Agents.AgeMax),
		visual:         cfg.HasObservation(config.ObsVisualField),
		withEnergy:     cfg.HasObservation(config.ObsEnergy),
		withAge:        cfg.HasObservation(config.ObsAge),
		withReproduced: cfg.HasObservation(config.ObsJustReproduced),
	}
}

// Shape returns the (side, side, channels) shape of one visual field.
func (s *VisionSystem) Shape() (int, int, int) {
	side := 2*s.rangeV + 1
	return side, side, len(s.channels) + 1
}

// Build returns observations for every slot, ghosts included. reproduced may
// be nil.
func (s *VisionSystem) Build(st *components.State, reproduced []bool) *components.Observations {
	a := st.Agents
	side, _, nch := s.Shape()
	obs := &components.Observations{N: a.N, Side: side, Channels: nch}

	if s.visual {
		obs.VisualField = make([]float64, a.N*side*side*nch)
		s.fillVisual(obs, st)
	}
	if s.withEnergy {
		obs.Energy = make([]float64, a.N)
		for i := range obs.Energy {
			obs.Energy[i] = a.Energy[i] / s.energy
		}
	}
	if s.withAge {
		obs.Age = make([]float64, a.N)
		for i := range obs.Age {
			obs.Age[i] = float64(a.Age[i]) / s.ageMax
		}
	}
	if s.withReproduced {
		obs.JustReproduced = make([]float64, a.N)
		for i := range reproduced {
			if reproduced[i] {
				obs.JustReproduced[i] = 1
			}
		}
	}
	return obs
}

// OccupantMap returns, per cell, the lowest existing slot there or N.
func OccupantMap(a *components.Agents, cells, w int) []int {
	occ := make([]int, cells)
	for c := range occ {
		occ[c] = a.N
	}
	for i := a.N - 1; i >= 0; i-- {
		if a.Exists[i] {
			occ[a.Pos[i].Index(w)] = i
		}
	}
	return occ
}

func (s *VisionSystem) fillVisual(obs *components.Observations, st *components.State) {
	g := st.Grid
	a := st.Agents
	v := s.rangeV
	nch := obs.Channels

	occ := OccupantMap(a, g.Cells(), g.W)
	parentOf := make([]int, len(occ))
	for c, i := range occ {
		parentOf[c] = a.N
		if i < a.N {
			parentOf[c] = a.Parent[i]
		}
	}

	planes := make([][]float64, len(s.channels))
	for k, ch := range s.channels {
		planes[k] = g.Plane(ch)
	}

	for i := 0; i < a.N; i++ {
		win := obs.Visual(i)
		fwd := components.Delta(a.Orientation[i])
		lat := components.Delta(a.Orientation[i] + components.TurnLeft)
		pos := a.Pos[i]

		for r := 0; r < obs.Side; r++ {
			for c := 0; c < obs.Side; c++ {
				// Row 0 is furthest ahead
				ahead := v - r
				side := c - v
				cell := components.Cell{
					Row: components.Wrap(pos.Row+ahead*fwd.Row+side*lat.Row, g.H),
					Col: components.Wrap(pos.Col+ahead*fwd.Col+side*lat.Col, g.W),
				}
				idx := cell.Index(g.W)
				base := (r*obs.Side + c) * nch
				for k, plane := range planes {
					win[base+k] = plane[idx]
				}
				if parentOf[idx] == i {
					win[base+nch-1] = 1
				}
			}
		}
	}
}
