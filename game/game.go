// Package game sequences the gridworld systems into Reset, Step and Render
// and drives episodes with a policy.
package game

import (
	"fmt"
	"slices"

	"github.com/pthm-cable/gridworld/components"
	"github.com/pthm-cable/gridworld/config"
	"github.com/pthm-cable/gridworld/renderer"
	"github.com/pthm-cable/gridworld/systems"
)

// VideoWriter consumes a full frame buffer. tick is the tick at which the
// buffer was completed.
type VideoWriter interface {
	WriteVideo(tick int, video *components.FrameBuffer) error
}

// Measure is one entry of the per-tick measures. Scalar measures set Value;
// per-slot measures set Values, with NaN for slots that do not exist after
// the tick.
type Measure struct {
	Value  float64
	Values []float64
}

// Scalar reports whether m is a single value.
func (m Measure) Scalar() bool {
	return m.Values == nil
}

// Info carries the measures of one tick, keyed by name, and the raw
// bookkeeping telemetry needs regardless of the configured measures.
type Info struct {
	Measures map[string]Measure
	Stats    TickStats
}

// TickStats summarizes the action effects of one tick per slot.
type TickStats struct {
	Food        []float64 // Energy gained from plants
	EatAttempts int
	Donated     []bool // Slots whose transfer landed
	Transfers   int
	ToOffspring int
	DeathAges   []float64 // Age at death, NaN for survivors
}

// Env is the gridworld environment. It holds configuration and the
// systems but no mutable episode state: every State is passed in and out.
type Env struct {
	cfg *config.Config

	h, w, cells int

	spatial  *systems.SpatialSystem
	movement *systems.MovementSystem
	feeding  *systems.FeedingSystem
	transfer *systems.TransferSystem
	energy   *systems.EnergySystem
	breeding *systems.BreedingSystem
	sun      *systems.SunSystem
	flora    *systems.FloraSystem
	vision   *systems.VisionSystem
	blender  *renderer.Blender
	actions  systems.ActionIDs

	videoWriter VideoWriter
	profiler    Profiler
}

// NewEnv validates cfg and builds the environment.
func NewEnv(cfg *config.Config) (*Env, error) {
	if err := cfg.Finalize(); err != nil {
		return nil, fmt.Errorf("creating env: %w", err)
	}
	e := &Env{profiler: nopProfiler{}}
	e.build(cfg)
	return e, nil
}

// build (re)creates every system from cfg.
func (e *Env) build(cfg *config.Config) {
	e.cfg = cfg
	e.h, e.w = cfg.World.Height, cfg.World.Width
	e.cells = e.h * e.w

	e.spatial = systems.NewSpatialSystem()
	e.movement = systems.NewMovementSystem(cfg)
	e.feeding = systems.NewFeedingSystem(cfg)
	e.transfer = systems.NewTransferSystem(cfg)
	e.energy = systems.NewEnergySystem(cfg)
	e.breeding = systems.NewBreedingSystem(cfg)
	e.sun = systems.NewSunSystem(cfg)
	e.flora = systems.NewFloraSystem(cfg)
	e.vision = systems.NewVisionSystem(cfg)
	e.blender = renderer.NewBlender(cfg)
	e.actions = systems.NewActionIDs(cfg)
}

// Config returns the environment configuration. Callers must not modify it;
// use Tune instead.
func (e *Env) Config() *config.Config {
	return e.cfg
}

// Tune applies fn to a copy of the configuration and rebuilds the systems.
// The world shape, capacity, channels, observation layout and action set
// must not change, so existing states and policies stay valid.
func (e *Env) Tune(fn func(cfg *config.Config)) error {
	next, err := e.cfg.Clone()
	if err != nil {
		return err
	}
	fn(next)
	if err := next.Finalize(); err != nil {
		return fmt.Errorf("tuning env: %w", err)
	}

	old := e.cfg
	switch {
	case next.World.Width != old.World.Width, next.World.Height != old.World.Height:
		return fmt.Errorf("%w: world size cannot change", config.ErrInvalid)
	case next.Population.MaxAgents != old.Population.MaxAgents:
		return fmt.Errorf("%w: capacity cannot change", config.ErrInvalid)
	case next.Channels.DimAppearance != old.Channels.DimAppearance:
		return fmt.Errorf("%w: appearance dimension cannot change", config.ErrInvalid)
	case !slices.Equal(next.Agents.Actions, old.Agents.Actions):
		return fmt.Errorf("%w: action set cannot change", config.ErrInvalid)
	case !slices.Equal(next.Agents.Observations, old.Agents.Observations):
		return fmt.Errorf("%w: observation list cannot change", config.ErrInvalid)
	case next.Agents.VisionRange != old.Agents.VisionRange,
		!slices.Equal(next.Channels.VisualField, old.Channels.VisualField):
		return fmt.Errorf("%w: visual field cannot change", config.ErrInvalid)
	case next.Video.Enabled != old.Video.Enabled, next.Video.StepsPerVideo != old.Video.StepsPerVideo:
		return fmt.Errorf("%w: video buffer cannot change", config.ErrInvalid)
	}

	e.build(next)
	return nil
}

// SetVideoWriter sets the collaborator Render hands full buffers to.
func (e *Env) SetVideoWriter(w VideoWriter) {
	e.videoWriter = w
}

// SetProfiler sets the phase timer Step reports to. nil disables timing.
func (e *Env) SetProfiler(p Profiler) {
	if p == nil {
		p = nopProfiler{}
	}
	e.profiler = p
}

// ObservationShape returns the (side, side, channels) visual field shape.
func (e *Env) ObservationShape() (int, int, int) {
	return e.vision.Shape()
}

// NumActions returns the size of the discrete action space.
func (e *Env) NumActions() int {
	return e.cfg.Derived.NumActions
}

// Capacity returns the number of agent slots.
func (e *Env) Capacity() int {
	return e.cfg.Population.MaxAgents
}
