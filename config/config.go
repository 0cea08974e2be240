// Package config provides configuration loading and access for the gridworld.
package config

import (
	_ "embed"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	World      WorldConfig      `yaml:"world"`
	Population PopulationConfig `yaml:"population"`
	Channels   ChannelsConfig   `yaml:"channels"`
	Agents     AgentsConfig     `yaml:"agents"`
	Energy     EnergyConfig     `yaml:"energy"`
	Infancy    InfancyConfig    `yaml:"infancy"`
	Sun        SunConfig        `yaml:"sun"`
	Plants     PlantsConfig     `yaml:"plants"`
	Metrics    MetricsConfig    `yaml:"metrics"`
	Video      VideoConfig      `yaml:"video"`
	Policy     PolicyConfig     `yaml:"policy"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`
	HallOfFame HallOfFameConfig `yaml:"hall_of_fame"`
	Screen     ScreenConfig     `yaml:"screen"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// WorldConfig holds grid dimensions and global rules.
type WorldConfig struct {
	Width                      int  `yaml:"width"`
	Height                     int  `yaml:"height"`
	IsTerminal                 bool `yaml:"is_terminal"` // Episode ends when nobody is left
	AllowMultipleAgentsPerTile bool `yaml:"allow_multiple_agents_per_tile"`
}

// PopulationConfig holds slot array sizing.
type PopulationConfig struct {
	MaxAgents     int `yaml:"n_agents_max"`     // Slot capacity, never resized
	InitialAgents int `yaml:"n_agents_initial"` // Founders placed at reset
}

// ChannelsConfig selects the grid channels.
type ChannelsConfig struct {
	DimAppearance int      `yaml:"dim_appearance"`
	VisualField   []string `yaml:"list_channels_visual_field"`
}

// AgentsConfig holds perception and action settings.
type AgentsConfig struct {
	Observations    []string `yaml:"list_observations"`
	Actions         []string `yaml:"list_actions"`
	VisionRange     int      `yaml:"vision_range_agent"`
	AgeMax          int      `yaml:"age_max"`
	AppearanceNoise float64  `yaml:"appearance_noise"` // Stddev of newborn appearance drift
}

// EnergyConfig holds the energy budget constants.
type EnergyConfig struct {
	Max          float64  `yaml:"max"`
	Initial      float64  `yaml:"initial"`
	LossIdle     float64  `yaml:"loss_idle"`
	LossAction   float64  `yaml:"loss_action"`
	Food         float64  `yaml:"food"`
	ThrDeath     float64  `yaml:"thr_death"`
	ReqReprod    float64  `yaml:"req_reprod"`
	CostReprod   float64  `yaml:"cost_reprod"`
	TransferLoss *float64 `yaml:"transfer_loss,omitempty"` // Defaults to food
	TransferGain *float64 `yaml:"transfer_gain,omitempty"` // Defaults to food
}

// InfancyConfig holds the juvenile handicaps.
type InfancyConfig struct {
	Duration       int     `yaml:"duration"`
	MoveProb       float64 `yaml:"move_prob"`
	EatProb        float64 `yaml:"eat_prob"`
	FoodEnergyMult float64 `yaml:"food_energy_mult"`
}

// SunConfig controls the moving light band.
type SunConfig struct {
	Method           string  `yaml:"method"` // none, fixed, random, brownian, sine, linear
	Period           int     `yaml:"period"`
	RadiusEffect     float64 `yaml:"radius_effect"`
	RadiusPerception int     `yaml:"radius_perception"` // Kept for config file compatibility; no system reads it
}

// PlantsConfig holds the plant automaton parameters.
type PlantsConfig struct {
	ProportionInitial  float64 `yaml:"proportion_initial"`
	PBaseGrowth        float64 `yaml:"p_base_growth"`
	PBaseDeath         float64 `yaml:"p_base_death"`
	FactorSunEffect    float64 `yaml:"factor_sun_effect"`
	FactorReproduction float64 `yaml:"factor_reproduction"`
	RadiusReproduction int     `yaml:"radius_reproduction"`
	FactorAsphyxia     float64 `yaml:"factor_asphyxia"`
	RadiusAsphyxia     int     `yaml:"radius_asphyxia"`
}

// MetricsConfig lists the measures emitted by Step, grouped by category.
type MetricsConfig struct {
	Measures      MeasuresConfig `yaml:"measures"`
	PeriodLogging int            `yaml:"period_logging"`
}

// MeasuresConfig groups measure names. Environmental measures are never
// masked by agent existence.
type MeasuresConfig struct {
	Environmental []string `yaml:"environmental"`
	Immediate     []string `yaml:"immediate"`
	State         []string `yaml:"state"`
	Behavior      []string `yaml:"behavior"`
}

// VideoConfig holds frame buffer and encoding settings.
type VideoConfig struct {
	Enabled         bool              `yaml:"enabled"`
	StepsPerVideo   int               `yaml:"n_steps_per_video"`
	FPS             int               `yaml:"fps"`
	Dir             string            `yaml:"dir"`
	HeightMax       int               `yaml:"height_max"`
	WidthMax        int               `yaml:"width_max"`
	ColorBackground string            `yaml:"color_background"`
	ChannelColors   map[string]string `yaml:"channel_colors"` // channel name -> color tag
}

// PolicyConfig holds the inherited-brain policy settings.
type PolicyConfig struct {
	Kind             string  `yaml:"kind"` // neural or random
	Hidden           int     `yaml:"hidden"`
	MutationRate     float64 `yaml:"mutation_rate"`
	MutationSigma    float64 `yaml:"mutation_sigma"`
	MutationBigRate  float64 `yaml:"mutation_big_rate"`
	MutationBigSigma float64 `yaml:"mutation_big_sigma"`
}

// TelemetryConfig holds stats collection settings.
type TelemetryConfig struct {
	StatsWindow int    `yaml:"stats_window"` // Ticks per stats window
	PerfWindow  int    `yaml:"perf_window"`
	LineageDB   string `yaml:"lineage_db"` // Empty disables the lineage store
}

// HallOfFameConfig holds settings for keeping the brains of successful
// agents across runs.
type HallOfFameConfig struct {
	Size  int `yaml:"size"` // 0 disables the hall
	Entry struct {
		MinChildren int `yaml:"min_children"`
		MinAge      int `yaml:"min_age"`
	} `yaml:"entry"`
	Fitness struct {
		ChildrenWeight float64 `yaml:"children_weight"`
		SurvivalWeight float64 `yaml:"survival_weight"` // Per tick lived
		ForageWeight   float64 `yaml:"forage_weight"`   // Per unit of energy eaten
	} `yaml:"fitness"`
}

// ScreenConfig holds viewer window settings.
type ScreenConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"`
}

// DerivedConfig holds values computed from the loaded config.
type DerivedConfig struct {
	ChannelNames   []string
	ChannelIndex   map[string]int
	VisualChannels []int // Grid channel index per visual field channel
	ActionIndex    map[string]int
	NumActions     int
	TransferLoss   float64
	TransferGain   float64
	MeasureNames   []string // All categories, in config order
	Environmental  map[string]bool
	Background     [3]float64
	ChannelRGB     map[int][3]float64
}

// Base channel names, always present and in this order.
const (
	ChannelSun       = "sun"
	ChannelPlants    = "plants"
	ChannelAgents    = "agents"
	ChannelAgentAges = "agent_ages"
)

// Action names understood by the engine.
const (
	ActionForward   = "forward"
	ActionLeft      = "left"
	ActionRight     = "right"
	ActionEat       = "eat"
	ActionIdle      = "idle"
	ActionTransfer  = "transfer"
	ActionReproduce = "reproduce"
)

// Observation kinds.
const (
	ObsVisualField    = "visual_field"
	ObsEnergy         = "energy"
	ObsAge            = "age"
	ObsJustReproduced = "just_reproduced"
)

// Sun methods.
const (
	SunNone     = "none"
	SunFixed    = "fixed"
	SunRandom   = "random"
	SunBrownian = "brownian"
	SunSine     = "sine"
	SunLinear   = "linear"
)

// Policy kinds.
const (
	PolicyNeural = "neural"
	PolicyRandom = "random"
)

// AppearanceChannel returns the channel name of appearance component i.
func AppearanceChannel(i int) string {
	return "appearance_" + strconv.Itoa(i)
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path and sets it as the global config.
// If path is empty, uses embedded defaults only.
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used. The result is validated.
func Load(path string) (*Config, error) {
	cfg, err := Defaults()
	if err != nil {
		return nil, err
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Finalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Defaults returns the embedded defaults without validation, for callers
// that patch fields programmatically before calling Finalize.
func Defaults() (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}
	return cfg, nil
}

// Finalize validates the config and recomputes derived values.
func (c *Config) Finalize() error {
	if err := c.Validate(); err != nil {
		return err
	}
	c.computeDerived()
	return nil
}

// Clone returns a deep copy through a YAML round trip.
func (c *Config) Clone() (*Config, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("marshaling config: %w", err)
	}
	out := &Config{}
	if err := yaml.Unmarshal(data, out); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	out.computeDerived()
	return out, nil
}

// channelNames lists grid channels in storage order.
func (c *Config) channelNames() []string {
	names := []string{ChannelSun, ChannelPlants, ChannelAgents, ChannelAgentAges}
	for i := 0; i < c.Channels.DimAppearance; i++ {
		names = append(names, AppearanceChannel(i))
	}
	return names
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	d := &c.Derived

	d.ChannelNames = c.channelNames()
	d.ChannelIndex = make(map[string]int, len(d.ChannelNames))
	for i, name := range d.ChannelNames {
		d.ChannelIndex[name] = i
	}

	d.VisualChannels = d.VisualChannels[:0]
	for _, name := range c.Channels.VisualField {
		d.VisualChannels = append(d.VisualChannels, d.ChannelIndex[name])
	}

	d.ActionIndex = make(map[string]int, len(c.Agents.Actions))
	for i, name := range c.Agents.Actions {
		d.ActionIndex[name] = i
	}
	d.NumActions = len(c.Agents.Actions)

	d.TransferLoss = c.Energy.Food
	if c.Energy.TransferLoss != nil {
		d.TransferLoss = *c.Energy.TransferLoss
	}
	d.TransferGain = c.Energy.Food
	if c.Energy.TransferGain != nil {
		d.TransferGain = *c.Energy.TransferGain
	}

	d.Environmental = make(map[string]bool, len(c.Metrics.Measures.Environmental))
	for _, name := range c.Metrics.Measures.Environmental {
		d.Environmental[name] = true
	}
	d.MeasureNames = d.MeasureNames[:0]
	for _, group := range [][]string{
		c.Metrics.Measures.Environmental,
		c.Metrics.Measures.Immediate,
		c.Metrics.Measures.State,
		c.Metrics.Measures.Behavior,
	} {
		d.MeasureNames = append(d.MeasureNames, group...)
	}

	d.Background = ColorTags[c.Video.ColorBackground]
	d.ChannelRGB = make(map[int][3]float64, len(c.Video.ChannelColors))
	for name, tag := range c.Video.ChannelColors {
		if idx, ok := d.ChannelIndex[name]; ok {
			d.ChannelRGB[idx] = ColorTags[tag]
		}
	}
}

// HasAction reports whether the named action is in the action set.
func (c *Config) HasAction(name string) bool {
	_, ok := c.Derived.ActionIndex[name]
	return ok
}

// Action returns the id of the named action, or -1 when it is not configured.
func (c *Config) Action(name string) int {
	if id, ok := c.Derived.ActionIndex[name]; ok {
		return id
	}
	return -1
}

// HasObservation reports whether the named observation kind is enabled.
func (c *Config) HasObservation(name string) bool {
	for _, o := range c.Agents.Observations {
		if o == name {
			return true
		}
	}
	return false
}

// HasMeasure reports whether the named measure is requested.
func (c *Config) HasMeasure(name string) bool {
	for _, m := range c.Derived.MeasureNames {
		if m == name {
			return true
		}
	}
	return false
}

// ActionMeasures returns the action names requested through do_action_<name>.
func (c *Config) ActionMeasures() []string {
	var out []string
	for _, m := range c.Derived.MeasureNames {
		if name, ok := strings.CutPrefix(m, "do_action_"); ok {
			out = append(out, name)
		}
	}
	return out
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
