package main

import (
	"image/color"

	"github.com/pthm-cable/gridworld/components"
	"github.com/pthm-cable/gridworld/ui"
)

var sunTint = [3]float64{1, 0.85, 0.3}

// paint converts a blended frame into texture pixels and applies the
// per-cell overlays that are enabled.
func paint(dst []color.RGBA, frame []float64, st *components.State, overlays *ui.OverlayRegistry, ageMax int) []color.RGBA {
	cells := st.Grid.Cells()
	if dst == nil {
		dst = make([]color.RGBA, cells)
	}

	sunBand := overlays.IsEnabled(ui.OverlaySunBand)
	sun := st.Grid.Plane(components.ChSun)
	for c := 0; c < cells; c++ {
		px := [3]float64{frame[c*3], frame[c*3+1], frame[c*3+2]}
		if sunBand {
			for k := range px {
				px[k] += (sunTint[k] - px[k]) * 0.35 * sun[c]
			}
		}
		dst[c] = rgba(px)
	}

	shade := overlays.IsEnabled(ui.OverlayAgeShading)
	tint := overlays.IsEnabled(ui.OverlayAppearance)
	if !shade && !tint {
		return dst
	}

	w := st.Grid.W
	a := st.Agents
	for i, exists := range a.Exists {
		if !exists {
			continue
		}
		c := a.Pos[i].Index(w)
		switch {
		case tint:
			dst[c] = ui.AppearanceColor(a.AppearanceOf(i))
		case shade:
			f := 1 - 0.7*min(float64(a.Age[i])/float64(max(ageMax, 1)), 1)
			p := dst[c]
			dst[c] = color.RGBA{R: uint8(float64(p.R) * f), G: uint8(float64(p.G) * f), B: uint8(float64(p.B) * f), A: 255}
		}
	}
	return dst
}

func rgba(px [3]float64) color.RGBA {
	var out [3]uint8
	for k, v := range px {
		out[k] = uint8(min(max(v, 0), 1)*255 + 0.5)
	}
	return color.RGBA{R: out[0], G: out[1], B: out[2], A: 255}
}

// slotAt returns the lowest existing slot at cell, or -1.
func slotAt(a *components.Agents, cell components.Cell) int {
	for i, exists := range a.Exists {
		if exists && a.Pos[i] == cell {
			return i
		}
	}
	return -1
}
