package config

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid config")

var (
	knownActions = map[string]bool{
		ActionForward: true, ActionLeft: true, ActionRight: true, ActionEat: true,
		ActionIdle: true, ActionTransfer: true, ActionReproduce: true,
	}
	knownObservations = map[string]bool{
		ObsVisualField: true, ObsEnergy: true, ObsAge: true, ObsJustReproduced: true,
	}
	knownSunMethods = map[string]bool{
		SunNone: true, SunFixed: true, SunRandom: true, SunBrownian: true, SunSine: true, SunLinear: true,
	}
	knownMeasures = map[string]bool{
		"n_agents": true, "n_plants": true,
		"energy": true, "age": true, "x": true, "y": true, "appearance": true,
		"amount_food_eaten": true, "eat_success_rate": true,
		"num_transfers": true, "feeders": true, "feedees": true, "to_offspring": true,
		"life_expectancy": true, "reproduce_success_rate": true, "amount_children": true,
		"num_facing_agent": true, "num_facing_offspring": true, "are_newborns": true,
	}
)

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...))
}

// Validate checks construction-time invariants. All failures wrap ErrInvalid.
func (c *Config) Validate() error {
	if c.World.Width <= 0 || c.World.Height <= 0 {
		return invalid("grid size %dx%d must be positive", c.World.Height, c.World.Width)
	}

	p := c.Population
	if p.MaxAgents <= 0 {
		return invalid("n_agents_max must be positive, got %d", p.MaxAgents)
	}
	if p.InitialAgents < 0 || p.InitialAgents > p.MaxAgents {
		return invalid("n_agents_initial %d outside [0, %d]", p.InitialAgents, p.MaxAgents)
	}
	// Reset places every slot on a distinct cell
	if p.MaxAgents > c.World.Width*c.World.Height {
		return invalid("n_agents_max %d exceeds cell count %d", p.MaxAgents, c.World.Width*c.World.Height)
	}

	if c.Channels.DimAppearance < 0 {
		return invalid("dim_appearance must be non-negative")
	}
	channels := make(map[string]bool)
	for _, name := range c.channelNames() {
		channels[name] = true
	}
	for _, name := range c.Channels.VisualField {
		if !channels[name] {
			return invalid("unknown visual field channel %q", name)
		}
	}

	if len(c.Agents.Actions) == 0 {
		return invalid("empty action list")
	}
	seen := make(map[string]bool)
	for _, name := range c.Agents.Actions {
		if !knownActions[name] {
			return invalid("unknown action %q", name)
		}
		if seen[name] {
			return invalid("duplicate action %q", name)
		}
		seen[name] = true
	}

	if len(c.Agents.Observations) == 0 {
		return invalid("empty observation list")
	}
	for _, name := range c.Agents.Observations {
		if !knownObservations[name] {
			return invalid("unknown observation %q", name)
		}
	}
	if c.Agents.VisionRange < 0 {
		return invalid("vision_range_agent must be non-negative")
	}
	if c.Agents.AgeMax <= 0 {
		return invalid("age_max must be positive")
	}
	if c.Energy.Max <= 0 {
		return invalid("energy max must be positive")
	}

	if !knownSunMethods[c.Sun.Method] {
		return invalid("unknown sun method %q", c.Sun.Method)
	}
	switch c.Sun.Method {
	case SunBrownian, SunSine, SunLinear:
		if c.Sun.Period <= 0 {
			return invalid("sun period must be positive for method %q", c.Sun.Method)
		}
	}

	pl := c.Plants
	if pl.PBaseGrowth <= 0 || pl.PBaseGrowth >= 1 || pl.PBaseDeath <= 0 || pl.PBaseDeath >= 1 {
		return invalid("plant base probabilities must lie in (0, 1)")
	}
	if pl.RadiusReproduction < 0 || pl.RadiusAsphyxia < 0 {
		return invalid("plant radii must be non-negative")
	}

	for _, group := range [][]string{
		c.Metrics.Measures.Environmental,
		c.Metrics.Measures.Immediate,
		c.Metrics.Measures.State,
		c.Metrics.Measures.Behavior,
	} {
		for _, name := range group {
			if action, ok := strings.CutPrefix(name, "do_action_"); ok {
				if !knownActions[action] {
					return invalid("measure %q names unknown action", name)
				}
				continue
			}
			if !knownMeasures[name] {
				return invalid("unknown measure %q", name)
			}
		}
	}

	v := c.Video
	if _, ok := ColorTags[v.ColorBackground]; !ok {
		return invalid("unknown background color tag %q", v.ColorBackground)
	}
	for name, tag := range v.ChannelColors {
		if !channels[name] {
			return invalid("unknown channel %q in channel colors", name)
		}
		if _, ok := ColorTags[tag]; !ok {
			return invalid("unknown color tag %q for channel %q", tag, name)
		}
	}
	if v.Enabled {
		if v.StepsPerVideo <= 0 {
			return invalid("n_steps_per_video must be positive when video is enabled")
		}
		if v.FPS <= 0 {
			return invalid("video fps must be positive")
		}
	}

	switch c.Policy.Kind {
	case PolicyNeural:
		if c.Policy.Hidden <= 0 {
			return invalid("policy hidden units must be positive, got %d", c.Policy.Hidden)
		}
	case PolicyRandom:
	default:
		return invalid("unknown policy kind %q", c.Policy.Kind)
	}
	if c.HallOfFame.Size < 0 {
		return invalid("hall_of_fame size must be non-negative")
	}

	return nil
}
