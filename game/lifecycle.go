package game

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"
	"gonum.org/v1/gonum/stat/sampleuv"

	"github.com/pthm-cable/gridworld/components"
	"github.com/pthm-cable/gridworld/systems"
)

// Reset builds the initial state of an episode from seed.
//
// Plants are seeded with probability proportion_initial per cell. Every
// slot, ghost or founder, gets a distinct cell drawn without replacement
// and a uniform orientation. The first n_agents_initial slots exist with an
// appearance of ones; all slots start at energy_initial and age 0.
func (e *Env) Reset(seed uint64) (*components.State, *components.Observations, *components.EcoInfo, bool, Info) {
	cfg := e.cfg
	src := systems.NewStreams(seed).Source(systems.PhaseInit)

	g := components.NewGrid(e.h, e.w, len(cfg.Derived.ChannelNames))
	a := components.NewAgents(cfg.Population.MaxAgents, cfg.Channels.DimAppearance)

	plants := g.Plane(components.ChPlants)
	seedPlant := distuv.Bernoulli{P: cfg.Plants.ProportionInitial, Src: src}
	for c := range plants {
		plants[c] = seedPlant.Rand()
	}

	e.spawnInitialPopulation(a, src)

	st := &components.State{
		Grid:   g,
		Agents: a,
	}
	st.SunLatitude = systems.InitSunProfile(g, cfg.Sun.Method, cfg.Sun.RadiusEffect)
	e.spatial.Refresh(g, a)

	if cfg.Video.Enabled {
		st.Video = components.NewFrameBuffer(cfg.Video.StepsPerVideo, e.h, e.w)
	}

	// An episode never ends at reset, even with no founders; Step decides.
	obs := e.vision.Build(st, nil)
	return st, obs, components.NewEcoInfo(a.N), false, Info{Measures: map[string]Measure{}}
}

// spawnInitialPopulation places every slot and makes the founders exist.
func (e *Env) spawnInitialPopulation(a *components.Agents, src rand.Source) {
	cfg := e.cfg

	cells := make([]int, a.N)
	sampleuv.WithoutReplacement(cells, e.cells, src)

	turn := distuv.Uniform{Min: 0, Max: components.NumOrientations, Src: src}
	for i := 0; i < a.N; i++ {
		a.Pos[i] = components.CellAt(cells[i], e.w)
		a.Orientation[i] = min(int(math.Floor(turn.Rand())), components.NumOrientations-1)
		a.Energy[i] = cfg.Energy.Initial
		a.Age[i] = 0
		a.Parent[i] = a.NoParent()

		if i < cfg.Population.InitialAgents {
			a.Exists[i] = true
			for k := range a.AppearanceOf(i) {
				a.AppearanceOf(i)[k] = 1
			}
		}
	}
}
