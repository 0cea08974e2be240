// Package renderer turns grid channels into RGB frames and writes them out
// as videos.
package renderer

import (
	"image"
	"image/color"
	"slices"

	"github.com/pthm-cable/gridworld/components"
	"github.com/pthm-cable/gridworld/config"
)

// Blender paints the colored channels of a grid over a background.
type Blender struct {
	background [3]float64
	channels   []int // Channel indices with a color, ascending
	colors     map[int][3]float64
}

// NewBlender creates a blender from the video color settings.
func NewBlender(cfg *config.Config) *Blender {
	b := &Blender{
		background: cfg.Derived.Background,
		colors:     cfg.Derived.ChannelRGB,
	}
	for ch := range b.colors {
		b.channels = append(b.channels, ch)
	}
	slices.Sort(b.channels)
	return b
}

// Frame writes the RGB map of g into dst, laid out [row][col][rgb] with
// values in [0, 1]. dst is allocated when nil.
//
// Each colored channel pulls the pixel toward its color wherever the
// channel is nonzero. The pull is divided by the plants plus agents count
// of the cell, so a cell with a plant and an agent mixes both colors.
func (b *Blender) Frame(g *components.Grid, dst []float64) []float64 {
	cells := g.Cells()
	if dst == nil {
		dst = make([]float64, cells*3)
	}
	for c := 0; c < cells; c++ {
		copy(dst[c*3:c*3+3], b.background[:])
	}

	plants := g.Plane(components.ChPlants)
	agents := g.Plane(components.ChAgents)

	for _, ch := range b.channels {
		plane := g.Plane(ch)
		col := b.colors[ch]
		for c := 0; c < cells; c++ {
			if plane[c] <= 0 {
				continue
			}
			weight := 1 / max(plants[c]+agents[c], 1)
			px := dst[c*3 : c*3+3]
			for k := 0; k < 3; k++ {
				px[k] += (col[k] - px[k]) * weight
			}
		}
	}

	for i, v := range dst {
		dst[i] = min(max(v, 0), 1)
	}
	return dst
}

// UpscaleFactor returns the largest integer factor that keeps an h x w
// frame within maxH x maxW, and at least 1.
func UpscaleFactor(h, w, maxH, maxW int) int {
	f := min(maxH/h, maxW/w)
	if f < 1 {
		return 1
	}
	return f
}

// ToImage converts an RGB frame to an RGBA image scaled up by factor with
// nearest-neighbour sampling.
func ToImage(frame []float64, h, w, factor int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w*factor, h*factor))
	for r := 0; r < h; r++ {
		for c := 0; c < w; c++ {
			px := frame[(r*w+c)*3:]
			col := color.RGBA{
				R: to8(px[0]),
				G: to8(px[1]),
				B: to8(px[2]),
				A: 255,
			}
			for dy := 0; dy < factor; dy++ {
				for dx := 0; dx < factor; dx++ {
					img.SetRGBA(c*factor+dx, r*factor+dy, col)
				}
			}
		}
	}
	return img
}

// to8 maps [0, 1] to a byte.
func to8(v float64) uint8 {
	return uint8(min(max(v, 0), 1)*255 + 0.5)
}
