package ui

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/gridworld/config"
)

// ControlsPanel renders the overlay toggles.
type ControlsPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
	visible  bool
}

// NewControlsPanel creates a new controls panel.
func NewControlsPanel(x, y, width int32) *ControlsPanel {
	return &ControlsPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
	}
}

// Toggle switches panel visibility.
func (c *ControlsPanel) Toggle() bool {
	c.visible = !c.visible
	return c.visible
}

// SetPosition updates the panel position.
func (c *ControlsPanel) SetPosition(x, y int32) {
	c.x = x
	c.y = y
}

// Draw renders the controls panel and returns the Y below it.
func (c *ControlsPanel) Draw(overlays *OverlayRegistry) int32 {
	if !c.visible {
		return c.y
	}

	r := c.renderer
	padding := r.Theme.Padding
	lineHeight := r.Theme.LineHeight

	categories := overlays.Categories()
	items := 0
	for _, cat := range categories {
		items += len(overlays.ByCategory(cat)) + 1
	}
	height := int32(items)*lineHeight + int32(len(categories))*4 + padding*2 + lineHeight + 4
	r.DrawPanel(c.x, c.y, c.width, height)

	y := c.y + padding
	rl.DrawText("Overlays", c.x+padding, y, 16, rl.White)
	y += lineHeight + 4

	for _, category := range categories {
		rl.DrawText(category, c.x+padding, y, r.Theme.HeaderFontSize, r.Theme.SectionHeader)
		y += lineHeight
		for _, desc := range overlays.ByCategory(category) {
			c.drawToggle(c.x+padding, y, desc, overlays.IsEnabled(desc.ID), c.width-padding*2)
			y += lineHeight
		}
		y += 4
	}
	return c.y + height
}

// drawToggle draws a single overlay toggle line.
func (c *ControlsPanel) drawToggle(x, y int32, desc OverlayDescriptor, enabled bool, width int32) {
	r := c.renderer

	statusColor := rl.Color{R: 80, G: 80, B: 80, A: 255}
	nameColor := r.Theme.LabelColor
	if enabled {
		statusColor = rl.Color{R: 100, G: 200, B: 100, A: 255}
		nameColor = rl.White
	}
	rl.DrawRectangle(x, y+2, 8, 8, statusColor)
	rl.DrawText(desc.Name, x+14, y, r.Theme.FontSize, nameColor)

	if desc.KeyLabel != "" {
		keyText := fmt.Sprintf("[%s]", desc.KeyLabel)
		keyWidth := rl.MeasureText(keyText, r.Theme.FontSize)
		rl.DrawText(keyText, x+width-keyWidth, y, r.Theme.FontSize, rl.Color{R: 150, G: 150, B: 150, A: 255})
	}
}

// Knob is one tunable config value.
type Knob struct {
	Label string
	Range FieldRange
	Get   func(cfg *config.Config) float64
	Set   func(cfg *config.Config, v float64)
}

// DefaultKnobs returns the energy and plant parameters that can change
// while an episode runs.
func DefaultKnobs() []Knob {
	return []Knob{
		{
			Label: "energy.food",
			Range: FieldRange{Min: 0, Max: 50},
			Get:   func(c *config.Config) float64 { return c.Energy.Food },
			Set:   func(c *config.Config, v float64) { c.Energy.Food = v },
		},
		{
			Label: "energy.loss_action",
			Range: FieldRange{Min: 0, Max: 5},
			Get:   func(c *config.Config) float64 { return c.Energy.LossAction },
			Set:   func(c *config.Config, v float64) { c.Energy.LossAction = v },
		},
		{
			Label: "energy.loss_idle",
			Range: FieldRange{Min: 0, Max: 5},
			Get:   func(c *config.Config) float64 { return c.Energy.LossIdle },
			Set:   func(c *config.Config, v float64) { c.Energy.LossIdle = v },
		},
		{
			Label: "energy.req_reprod",
			Range: FieldRange{Min: 0, Max: 100},
			Get:   func(c *config.Config) float64 { return c.Energy.ReqReprod },
			Set:   func(c *config.Config, v float64) { c.Energy.ReqReprod = v },
		},
		{
			Label: "plants.p_base_growth",
			Range: FieldRange{Min: 0.0005, Max: 0.2},
			Get:   func(c *config.Config) float64 { return c.Plants.PBaseGrowth },
			Set:   func(c *config.Config, v float64) { c.Plants.PBaseGrowth = v },
		},
		{
			Label: "plants.p_base_death",
			Range: FieldRange{Min: 0.0005, Max: 0.2},
			Get:   func(c *config.Config) float64 { return c.Plants.PBaseDeath },
			Set:   func(c *config.Config, v float64) { c.Plants.PBaseDeath = v },
		},
		{
			Label: "plants.factor_sun_effect",
			Range: FieldRange{Min: 0, Max: 10},
			Get:   func(c *config.Config) float64 { return c.Plants.FactorSunEffect },
			Set:   func(c *config.Config, v float64) { c.Plants.FactorSunEffect = v },
		},
	}
}

// TuningPanel renders sliders for knobs.
type TuningPanel struct {
	renderer *Renderer
	knobs    []Knob
	x, y     int32
	width    int32
}

// NewTuningPanel creates a tuning panel.
func NewTuningPanel(x, y, width int32, knobs []Knob) *TuningPanel {
	return &TuningPanel{
		renderer: NewRenderer(),
		knobs:    knobs,
		x:        x,
		y:        y,
		width:    width,
	}
}

// SetPosition updates the panel position.
func (t *TuningPanel) SetPosition(x, y int32) {
	t.x = x
	t.y = y
}

// Draw renders one slider per knob with its value in cfg. It returns a
// function applying the moved sliders to a config, or nil when nothing
// moved.
func (t *TuningPanel) Draw(cfg *config.Config) func(cfg *config.Config) {
	r := t.renderer
	y := t.y
	rl.DrawText("Tuning", t.x, y, 16, rl.White)
	y += r.Theme.LineHeight + 4

	var changed []func(cfg *config.Config)
	for _, k := range t.knobs {
		old := k.Get(cfg)
		v, ny := r.DrawSlider(t.x, y, k.Label, old, k.Range, t.width)
		y = ny
		if v != old {
			changed = append(changed, func(c *config.Config) { k.Set(c, v) })
		}
	}
	if len(changed) == 0 {
		return nil
	}
	return func(c *config.Config) {
		for _, fn := range changed {
			fn(c)
		}
	}
}
