package ui

import (
	"fmt"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/gridworld/telemetry"
)

// HUDData holds all the data needed to render the main HUD.
type HUDData struct {
	Title       string
	Tick        int
	Agents      int
	Capacity    int
	Plants      int
	SunLatitude int
	Lineages    int
	Speed       int
	FPS         int32
	Paused      bool
	Done        bool
}

// HUD renders the main heads-up display.
type HUD struct{}

// NewHUD creates a new HUD renderer.
func NewHUD() *HUD {
	return &HUD{}
}

// Draw renders the HUD at the top left of the screen.
func (h *HUD) Draw(data HUDData) {
	rl.DrawText(data.Title, 10, 10, 20, rl.White)

	rl.DrawText(
		fmt.Sprintf("Agents: %d/%d | Plants: %d | Lineages: %d", data.Agents, data.Capacity, data.Plants, data.Lineages),
		10, 35, 16, rl.LightGray,
	)
	rl.DrawText(
		fmt.Sprintf("Tick: %d | Sun row: %d | Speed: %dx | FPS: %d", data.Tick, data.SunLatitude, data.Speed, data.FPS),
		10, 55, 16, rl.LightGray,
	)

	status := "Running"
	switch {
	case data.Done:
		status = "EPISODE OVER"
	case data.Paused:
		status = "PAUSED"
	}
	rl.DrawText(status, 10, 75, 16, rl.Yellow)
}

// DrawControls renders the control legend at the bottom of the screen.
func (h *HUD) DrawControls(screenHeight int32, controls string) {
	rl.DrawText(controls, 10, screenHeight-25, 14, rl.Gray)
}

// PerfPanel renders the step phase timings.
type PerfPanel struct {
	renderer *Renderer
	x, y     int32
}

// NewPerfPanel creates a new performance panel.
func NewPerfPanel(x, y int32) *PerfPanel {
	return &PerfPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
	}
}

// SetPosition updates the panel position.
func (p *PerfPanel) SetPosition(x, y int32) {
	p.x = x
	p.y = y
}

// Draw renders the phase averages of stats in step order.
func (p *PerfPanel) Draw(stats telemetry.PerfStats) {
	x, y := p.x, p.y

	rl.DrawText("Step Performance", x, y, 16, rl.White)
	y += 20
	rl.DrawText(
		fmt.Sprintf("Tick: %s (max %s) | %.0f ticks/s", stats.AvgTickDuration.Round(time.Microsecond), stats.MaxTickDuration.Round(time.Microsecond), stats.TicksPerSecond),
		x, y, 14, rl.Yellow,
	)
	y += 16

	for _, phase := range telemetry.Phases {
		avg, ok := stats.PhaseAvg[phase]
		if !ok {
			continue
		}
		pct := stats.PhasePct[phase]

		color := rl.LightGray
		if pct > 40 {
			color = rl.Red
		} else if pct > 20 {
			color = rl.Orange
		}
		rl.DrawText(fmt.Sprintf("%-14s %8s %5.1f%%", phase, avg.Round(time.Microsecond), pct), x, y, 12, color)
		y += 14
	}
}

// PopulationPanel renders the last flushed stats window.
type PopulationPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
}

// NewPopulationPanel creates a new population panel.
func NewPopulationPanel(x, y, width int32) *PopulationPanel {
	return &PopulationPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
	}
}

// SetPosition updates the panel position.
func (p *PopulationPanel) SetPosition(x, y int32) {
	p.x = x
	p.y = y
}

// Draw renders stats and returns the Y below the panel.
func (p *PopulationPanel) Draw(stats telemetry.WindowStats, hallSize int, hallTop float64) int32 {
	r := p.renderer
	padding := r.Theme.Padding
	lineHeight := r.Theme.LineHeight

	height := lineHeight*10 + padding*2
	r.DrawPanel(p.x, p.y, p.width, height)

	x := p.x + padding
	y := p.y + padding
	rl.DrawText(fmt.Sprintf("Window %d-%d", stats.WindowStartTick, stats.WindowEndTick), x, y, 14, rl.White)
	y += lineHeight + 2

	y = r.DrawLabelValue(x, y, "Births", fmt.Sprintf("%d", stats.Births))
	y = r.DrawLabelValue(x, y, "Deaths", fmt.Sprintf("%d", stats.Deaths))
	y = r.DrawLabelValue(x, y, "Life exp.", fmt.Sprintf("%.1f", stats.LifeExpectancy))
	y = r.DrawLabelValue(x, y, "Transfers", fmt.Sprintf("%d (%d to kin)", stats.Transfers, stats.ToOffspring))
	y = r.DrawLabelValue(x, y, "Food/eat", fmt.Sprintf("%.2f", stats.FoodPerAttempt))
	y = r.DrawLabelValue(x, y, "Energy", fmt.Sprintf("%.0f / %.0f / %.0f", stats.EnergyP10, stats.EnergyP50, stats.EnergyP90))
	y = r.DrawLabelValue(x, y, "Age p50", fmt.Sprintf("%.0f", stats.AgeP50))
	r.DrawLabelValue(x, y, "Hall", fmt.Sprintf("%d (top %.1f)", hallSize, hallTop))

	return p.y + height
}
