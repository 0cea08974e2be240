package main

import (
	"image/color"
	"testing"

	"github.com/pthm-cable/gridworld/components"
	"github.com/pthm-cable/gridworld/ui"
)

func paintState() *components.State {
	st := &components.State{
		Grid:   components.NewGrid(2, 3, components.ChAppearance+1),
		Agents: components.NewAgents(2, 1),
	}
	a := st.Agents
	a.Exists[1] = true
	a.Pos[1] = components.Cell{Row: 1, Col: 2}
	a.Age[1] = 50
	a.AppearanceOf(1)[0] = 1
	st.Grid.Set(components.ChSun, 0, 0, 1)
	return st
}

func grey(frame []float64) []float64 {
	for i := range frame {
		frame[i] = 0.5
	}
	return frame
}

func TestPaint(t *testing.T) {
	mid := color.RGBA{R: 128, G: 128, B: 128, A: 255}

	tests := []struct {
		name  string
		on    []ui.OverlayID
		check func(t *testing.T, px []color.RGBA)
	}{
		{"plain", nil, func(t *testing.T, px []color.RGBA) {
			for i, p := range px {
				if p != mid {
					t.Errorf("pixel %d = %+v, want %+v", i, p, mid)
				}
			}
		}},
		{"sun band tints lit cells", []ui.OverlayID{ui.OverlaySunBand}, func(t *testing.T, px []color.RGBA) {
			if px[0].R <= mid.R || px[0].B >= mid.B {
				t.Errorf("lit pixel = %+v", px[0])
			}
			if px[1] != mid {
				t.Errorf("dark pixel = %+v", px[1])
			}
		}},
		{"age shading darkens agents", []ui.OverlayID{ui.OverlayAgeShading}, func(t *testing.T, px []color.RGBA) {
			if px[5].R >= mid.R {
				t.Errorf("agent pixel = %+v", px[5])
			}
		}},
		{"appearance colors agents", []ui.OverlayID{ui.OverlayAppearance}, func(t *testing.T, px []color.RGBA) {
			if want := (color.RGBA{R: 255, A: 255}); px[5] != want {
				t.Errorf("agent pixel = %+v, want %+v", px[5], want)
			}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := paintState()
			reg := ui.NewOverlayRegistry()
			for _, id := range tt.on {
				reg.SetEnabled(id, true)
			}
			frame := grey(make([]float64, st.Grid.Cells()*3))
			tt.check(t, paint(nil, frame, st, reg, 100))
		})
	}
}

func TestSlotAt(t *testing.T) {
	st := paintState()
	if got := slotAt(st.Agents, components.Cell{Row: 1, Col: 2}); got != 1 {
		t.Errorf("slotAt(agent) = %d, want 1", got)
	}
	if got := slotAt(st.Agents, components.Cell{}); got != -1 {
		t.Errorf("slotAt(ghost cell) = %d, want -1", got)
	}
}
