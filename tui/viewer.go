// Package tui shows a running episode in the terminal.
package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"
	"gonum.org/v1/gonum/floats"

	"github.com/pthm-cable/gridworld/components"
	"github.com/pthm-cable/gridworld/config"
	"github.com/pthm-cable/gridworld/renderer"
)

// Sim is the part of a runner the viewer drives.
type Sim interface {
	Step(ctx context.Context) error
	Reset()
	State() *components.State
	Done() bool
}

// Cue plays sounds for the population changes of a tick.
type Cue interface {
	OnTick(eco *components.EcoInfo)
	PlayExtinction()
}

const (
	minInterval = 5 * time.Millisecond
	maxInterval = 2 * time.Second
)

var orientationGlyph = [components.NumOrientations]rune{'v', '<', '^', '>'}

// Viewer paints the grid with two terminal columns per cell and a status
// line below it.
type Viewer struct {
	screen   tcell.Screen
	blender  *renderer.Blender
	frame    []float64
	h, w     int
	interval time.Duration
	maxTicks int // 0 = no limit
	paused   bool
	quit     bool
	step     bool // Advance one tick while paused
	reset    bool
}

// NewViewer creates a viewer drawing on an initialized screen.
func NewViewer(screen tcell.Screen, cfg *config.Config, interval time.Duration) *Viewer {
	return &Viewer{
		screen:   screen,
		blender:  renderer.NewBlender(cfg),
		h:        cfg.World.Height,
		w:        cfg.World.Width,
		interval: min(max(interval, minInterval), maxInterval),
	}
}

// SetMaxTicks stops ticking once the state reaches tick n. 0 removes the
// limit.
func (v *Viewer) SetMaxTicks(n int) {
	v.maxTicks = max(n, 0)
}

// finished reports whether sim may not advance.
func (v *Viewer) finished(sim Sim) bool {
	return sim.Done() || (v.maxTicks > 0 && sim.State().Tick >= v.maxTicks)
}

// Run steps sim on a ticker and redraws after every tick until the user
// quits or ctx is done. The episode is held on its last frame once done or
// at the tick limit.
func (v *Viewer) Run(ctx context.Context, sim Sim) error {
	stop := make(chan struct{})
	defer close(stop)

	events := make(chan tcell.Event, 16)
	go func() {
		for {
			ev := v.screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-stop:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	ticker := time.NewTicker(v.interval)
	defer ticker.Stop()

	v.Draw(sim.State(), v.finished(sim))
	for !v.quit {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-events:
			old := v.interval
			v.HandleEvent(ev)
			if v.interval != old {
				ticker.Reset(v.interval)
			}
			if v.reset {
				sim.Reset()
				v.reset = false
			}
			if v.step && !v.finished(sim) {
				if err := sim.Step(ctx); err != nil {
					return err
				}
			}
			v.step = false
			v.Draw(sim.State(), v.finished(sim))
		case <-ticker.C:
			if v.paused || v.finished(sim) {
				continue
			}
			if err := sim.Step(ctx); err != nil {
				return err
			}
			v.Draw(sim.State(), v.finished(sim))
		}
	}
	return nil
}

// HandleEvent applies one key or resize event.
func (v *Viewer) HandleEvent(ev tcell.Event) {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		v.screen.Sync()
	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyEscape, tcell.KeyCtrlC:
			v.quit = true
			return
		}
		switch ev.Rune() {
		case 'q':
			v.quit = true
		case ' ':
			v.paused = !v.paused
		case 'n':
			v.step = v.paused
		case 'r':
			v.reset = true
		case '+', '=':
			v.interval = max(v.interval/2, minInterval)
		case '-':
			v.interval = min(v.interval*2, maxInterval)
		}
	}
}

// Paused reports whether ticking is suspended.
func (v *Viewer) Paused() bool {
	return v.paused
}

// Quit reports whether the user asked to leave.
func (v *Viewer) Quit() bool {
	return v.quit
}

// Interval returns the time between ticks.
func (v *Viewer) Interval() time.Duration {
	return v.interval
}

// Draw paints st and the status line, cropping the grid to the screen.
func (v *Viewer) Draw(st *components.State, done bool) {
	v.screen.Clear()
	v.frame = v.blender.Frame(st.Grid, v.frame)

	sw, sh := v.screen.Size()
	rows := min(v.h, sh-1)
	cols := min(v.w, sw/2)

	glyphs := make(map[int]rune)
	a := st.Agents
	for i, exists := range a.Exists {
		if exists {
			glyphs[a.Pos[i].Index(v.w)] = orientationGlyph[a.Orientation[i]]
		}
	}

	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			idx := r*v.w + c
			px := v.frame[idx*3 : idx*3+3]
			bg := tcell.NewRGBColor(to8(px[0]), to8(px[1]), to8(px[2]))
			style := tcell.StyleDefault.Background(bg).Foreground(tcell.ColorWhite)
			ch := ' '
			if g, ok := glyphs[idx]; ok {
				ch = g
			}
			v.screen.SetContent(c*2, r, ch, nil, style)
			v.screen.SetContent(c*2+1, r, ' ', nil, style)
		}
	}

	v.drawStatus(rows, st, done)
	v.screen.Show()
}

func (v *Viewer) drawStatus(row int, st *components.State, done bool) {
	state := "running"
	switch {
	case done:
		state = "done"
	case v.paused:
		state = "paused"
	}
	line := fmt.Sprintf(" tick %d | agents %d/%d | plants %.0f | sun row %d | %v/tick | %s | q quit, space pause, n step, r reset, +/- speed",
		st.Tick, st.Agents.Count(), st.Agents.N,
		floats.Sum(st.Grid.Plane(components.ChPlants)),
		st.SunLatitude, v.interval, state)

	style := tcell.StyleDefault.Foreground(tcell.ColorSilver)
	sw, _ := v.screen.Size()
	for x, ch := range []rune(line) {
		if x >= sw {
			break
		}
		v.screen.SetContent(x, row, ch, nil, style)
	}
}

func to8(v float64) int32 {
	return int32(min(max(v, 0), 1)*255 + 0.5)
}

// Watch wires cue to sim's tick callback. It plays the extinction cue
// once per episode.
func Watch(cue Cue, setCallback func(func(st *components.State, eco *components.EcoInfo))) {
	extinct := false
	setCallback(func(st *components.State, eco *components.EcoInfo) {
		cue.OnTick(eco)
		if st.Agents.Count() == 0 && !extinct {
			extinct = true
			cue.PlayExtinction()
		}
		if st.Agents.Count() > 0 {
			extinct = false
		}
	})
}
