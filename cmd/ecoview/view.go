package main

import (
	"context"
	"image/color"
	"log/slog"

	rl "github.com/gen2brain/raylib-go/raylib"
	"gonum.org/v1/gonum/floats"

	"github.com/pthm-cable/gridworld/components"
	"github.com/pthm-cable/gridworld/config"
	"github.com/pthm-cable/gridworld/game"
	"github.com/pthm-cable/gridworld/renderer"
	"github.com/pthm-cable/gridworld/telemetry"
	"github.com/pthm-cable/gridworld/ui"
)

const (
	sideWidth = 280
	hudHeight = 100
	maxSpeed  = 64
	controls  = "Space pause | N step | R reset | ,/. speed | click inspect | H overlays | T tuning | P perf | L A C O V G overlays"
)

// view owns the window state between frames.
type view struct {
	cfg    *config.Config
	runner *game.Runner

	blender *renderer.Blender
	frame   []float64
	pixels  []color.RGBA
	texture rl.Texture2D
	h, w    int

	overlays  *ui.OverlayRegistry
	hud       *ui.HUD
	perf      *ui.PerfPanel
	pop       *ui.PopulationPanel
	inspector *ui.Inspector
	controls  *ui.ControlsPanel
	tuning    *ui.TuningPanel

	lastStats telemetry.WindowStats
	selected  int
	paused    bool
	speed     int
	showPerf  bool
	showTune  bool
}

func newView(cfg *config.Config, r *game.Runner) *view {
	h, w := cfg.World.Height, cfg.World.Width
	img := rl.GenImageColor(w, h, rl.Black)
	texture := rl.LoadTextureFromImage(img)
	rl.UnloadImage(img)

	v := &view{
		cfg:       cfg,
		runner:    r,
		blender:   renderer.NewBlender(cfg),
		texture:   texture,
		h:         h,
		w:         w,
		overlays:  ui.NewOverlayRegistry(),
		hud:       ui.NewHUD(),
		perf:      ui.NewPerfPanel(0, 0),
		pop:       ui.NewPopulationPanel(0, 0, sideWidth-20),
		inspector: ui.NewInspector(0, 0, sideWidth-20, cfg.Energy.Max, cfg.Agents.AgeMax),
		controls:  ui.NewControlsPanel(0, 0, sideWidth-20),
		tuning:    ui.NewTuningPanel(0, 0, sideWidth-20, ui.DefaultKnobs()),
		selected:  -1,
		speed:     1,
	}
	r.SetStatsCallback(func(s telemetry.WindowStats) { v.lastStats = s })
	return v
}

func (v *view) unload() {
	rl.UnloadTexture(v.texture)
}

// layout returns the grid origin and cell size for the current window.
func (v *view) layout() (x, y, cell int32) {
	sw, sh := int32(rl.GetScreenWidth()), int32(rl.GetScreenHeight())
	cell = min((sw-sideWidth-20)/int32(v.w), (sh-hudHeight-40)/int32(v.h))
	return 10, hudHeight, max(cell, 1)
}

func (v *view) update(ctx context.Context) {
	if rl.IsKeyPressed(rl.KeyF11) {
		rl.ToggleFullscreen()
	}
	if rl.IsKeyPressed(rl.KeySpace) {
		v.paused = !v.paused
	}
	if rl.IsKeyPressed(rl.KeyComma) && v.speed > 1 {
		v.speed /= 2
	}
	if rl.IsKeyPressed(rl.KeyPeriod) && v.speed < maxSpeed {
		v.speed *= 2
	}
	if rl.IsKeyPressed(rl.KeyR) {
		v.runner.Reset()
		v.selected = -1
	}
	if rl.IsKeyPressed(rl.KeyH) {
		v.controls.Toggle()
	}
	if rl.IsKeyPressed(rl.KeyT) {
		v.showTune = !v.showTune
	}
	if rl.IsKeyPressed(rl.KeyP) {
		v.showPerf = !v.showPerf
	}
	for _, key := range v.overlays.Keys() {
		if rl.IsKeyPressed(key) {
			v.overlays.HandleKeyPress(key)
		}
	}

	if rl.IsMouseButtonPressed(rl.MouseLeftButton) {
		v.pick(rl.GetMousePosition())
	}

	steps := 0
	switch {
	case rl.IsKeyPressed(rl.KeyN):
		steps = 1
	case !v.paused:
		steps = v.speed
	}
	for i := 0; i < steps && !v.runner.Done(); i++ {
		if err := v.runner.Step(ctx); err != nil {
			slog.Error("step failed", "error", err)
			v.paused = true
			break
		}
	}
	v.runner.RecordFrame()
}

// pick selects the slot under the mouse. Clicks outside the grid keep the
// selection so the side panel sliders stay usable.
func (v *view) pick(m rl.Vector2) {
	gx, gy, cell := v.layout()
	col := (int32(m.X) - gx) / cell
	row := (int32(m.Y) - gy) / cell
	if m.X < float32(gx) || m.Y < float32(gy) || col >= int32(v.w) || row >= int32(v.h) {
		return
	}
	v.selected = slotAt(v.runner.State().Agents, components.Cell{Row: int(row), Col: int(col)})
}

func (v *view) draw() {
	st := v.runner.State()
	sw, sh := int32(rl.GetScreenWidth()), int32(rl.GetScreenHeight())

	v.frame = v.blender.Frame(st.Grid, v.frame)
	v.pixels = paint(v.pixels, v.frame, st, v.overlays, v.cfg.Agents.AgeMax)
	rl.UpdateTexture(v.texture, v.pixels)

	rl.BeginDrawing()
	rl.ClearBackground(rl.Color{R: 18, G: 18, B: 24, A: 255})

	gx, gy, cell := v.layout()
	rl.DrawTexturePro(
		v.texture,
		rl.Rectangle{X: 0, Y: 0, Width: float32(v.w), Height: float32(v.h)},
		rl.Rectangle{X: float32(gx), Y: float32(gy), Width: float32(cell * int32(v.w)), Height: float32(cell * int32(v.h))},
		rl.Vector2{},
		0,
		rl.White,
	)
	v.drawGridOverlays(st, gx, gy, cell)

	v.hud.Draw(ui.HUDData{
		Title:       "Gridworld",
		Tick:        st.Tick,
		Agents:      st.Agents.Count(),
		Capacity:    st.Agents.N,
		Plants:      int(floats.Sum(st.Grid.Plane(components.ChPlants))),
		SunLatitude: st.SunLatitude,
		Lineages:    v.lastStats.ActiveLineages,
		Speed:       v.speed,
		FPS:         rl.GetFPS(),
		Paused:      v.paused,
		Done:        v.runner.Done(),
	})
	v.hud.DrawControls(sh, controls)

	v.drawSide(st, sw-sideWidth+10)

	rl.EndDrawing()
}

func (v *view) drawGridOverlays(st *components.State, gx, gy, cell int32) {
	if v.overlays.IsEnabled(ui.OverlayGridLines) && cell >= 4 {
		lc := rl.Color{R: 255, G: 255, B: 255, A: 30}
		for r := int32(0); r <= int32(v.h); r++ {
			rl.DrawLine(gx, gy+r*cell, gx+int32(v.w)*cell, gy+r*cell, lc)
		}
		for c := int32(0); c <= int32(v.w); c++ {
			rl.DrawLine(gx+c*cell, gy, gx+c*cell, gy+int32(v.h)*cell, lc)
		}
	}

	a := st.Agents
	center := func(p components.Cell) rl.Vector2 {
		return rl.Vector2{X: float32(gx + int32(p.Col)*cell + cell/2), Y: float32(gy + int32(p.Row)*cell + cell/2)}
	}

	if v.overlays.IsEnabled(ui.OverlayOrientation) && cell >= 4 {
		for i, exists := range a.Exists {
			if !exists {
				continue
			}
			d := components.Delta(a.Orientation[i])
			from := center(a.Pos[i])
			to := rl.Vector2{X: from.X + float32(d.Col)*float32(cell)/2, Y: from.Y + float32(d.Row)*float32(cell)/2}
			rl.DrawLineV(from, to, rl.White)
		}
	}

	if v.selected < 0 || !a.Exists[v.selected] {
		return
	}
	p := a.Pos[v.selected]
	rl.DrawRectangleLines(gx+int32(p.Col)*cell-1, gy+int32(p.Row)*cell-1, cell+2, cell+2, rl.Yellow)
	if v.overlays.IsEnabled(ui.OverlayVision) {
		vr := int32(v.cfg.Agents.VisionRange)
		side := (2*vr + 1) * cell
		rl.DrawRectangleLines(gx+(int32(p.Col)-vr)*cell, gy+(int32(p.Row)-vr)*cell, side, side, rl.SkyBlue)
	}
}

func (v *view) drawSide(st *components.State, x int32) {
	y := int32(10)
	v.pop.SetPosition(x, y)
	y = v.pop.Draw(v.lastStats, v.runner.HallOfFame().Size(), v.runner.HallOfFame().TopFitness()) + 10

	if v.selected >= 0 {
		sv := ui.NewSlotView(st, v.selected, v.cfg.Energy.Max, v.cfg.Agents.AgeMax, v.runner.Lineage(v.selected), v.runner.Life(v.selected))
		sv.Hidden = v.runner.BrainHidden(v.selected)
		v.inspector.SetPosition(x, y)
		y = v.inspector.Draw(sv) + 10
	}

	v.controls.SetPosition(x, y)
	y = v.controls.Draw(v.overlays) + 10

	if v.showTune {
		env := v.runner.Env()
		v.tuning.SetPosition(x, y)
		if apply := v.tuning.Draw(env.Config()); apply != nil {
			if err := env.Tune(apply); err != nil {
				slog.Warn("rejected tuning", "error", err)
			}
		}
		y += int32(len(ui.DefaultKnobs())+1) * 40
	}

	if v.showPerf {
		v.perf.SetPosition(x, y)
		v.perf.Draw(v.runner.PerfStats())
	}
}
