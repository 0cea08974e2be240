package renderer

import (
	"image/gif"
	"math"
	"os"
	"testing"

	"github.com/pthm-cable/gridworld/components"
	"github.com/pthm-cable/gridworld/config"
)

func blendConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Defaults()
	if err != nil {
		t.Fatalf("Defaults: %v", err)
	}
	cfg.World.Width = 3
	cfg.World.Height = 2
	cfg.Population.MaxAgents = 2
	cfg.Population.InitialAgents = 1
	cfg.Video.ColorBackground = "white"
	cfg.Video.ChannelColors = map[string]string{"plants": "green", "agents": "blue"}
	if err := cfg.Finalize(); err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	return cfg
}

func pixel(frame []float64, w, r, c int) [3]float64 {
	i := (r*w + c) * 3
	return [3]float64{frame[i], frame[i+1], frame[i+2]}
}

func near(a, b [3]float64) bool {
	for k := range a {
		if math.Abs(a[k]-b[k]) > 1e-9 {
			return false
		}
	}
	return true
}

func TestBlender_Frame(t *testing.T) {
	cfg := blendConfig(t)
	g := components.NewGrid(2, 3, len(cfg.Derived.ChannelNames))
	g.Set(components.ChPlants, 0, 1, 1)
	g.Set(components.ChAgents, 0, 2, 1)
	g.Set(components.ChPlants, 1, 0, 1)
	g.Set(components.ChAgents, 1, 0, 1)

	frame := NewBlender(cfg).Frame(g, nil)

	tests := []struct {
		name string
		r, c int
		want [3]float64
	}{
		{"empty cell is background", 0, 0, [3]float64{1, 1, 1}},
		{"plant only", 0, 1, [3]float64{0, 1, 0}},
		{"agent only", 0, 2, [3]float64{0, 0, 1}},
		// Plants first: white -> half green, then half toward blue
		{"plant and agent", 1, 0, [3]float64{0.25, 0.5, 0.75}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := pixel(frame, 3, tt.r, tt.c); !near(got, tt.want) {
				t.Errorf("pixel(%d,%d) = %v, want %v", tt.r, tt.c, got, tt.want)
			}
		})
	}
}

func TestUpscaleFactor(t *testing.T) {
	tests := []struct{ h, w, maxH, maxW, want int }{
		{100, 100, 500, 500, 5},
		{100, 50, 500, 500, 5},
		{10, 100, 500, 500, 5},
		{1000, 1000, 500, 500, 1},
	}
	for _, tt := range tests {
		if got := UpscaleFactor(tt.h, tt.w, tt.maxH, tt.maxW); got != tt.want {
			t.Errorf("UpscaleFactor(%d,%d,%d,%d) = %d, want %d", tt.h, tt.w, tt.maxH, tt.maxW, got, tt.want)
		}
	}
}

func TestToImage_Nearest(t *testing.T) {
	frame := []float64{1, 0, 0, 0, 0, 1}
	img := ToImage(frame, 1, 2, 3)
	if b := img.Bounds(); b.Dx() != 6 || b.Dy() != 3 {
		t.Fatalf("bounds = %v, want 6x3", b)
	}
	if px := img.RGBAAt(2, 2); px.R != 255 || px.B != 0 {
		t.Errorf("left block = %v, want red", px)
	}
	if px := img.RGBAAt(3, 0); px.B != 255 || px.R != 0 {
		t.Errorf("right block = %v, want blue", px)
	}
}

func TestGIFWriter_WriteVideo(t *testing.T) {
	cfg := blendConfig(t)
	cfg.Video.Dir = t.TempDir()
	cfg.Video.HeightMax = 4
	cfg.Video.WidthMax = 6

	w, err := NewGIFWriter(cfg)
	if err != nil {
		t.Fatalf("NewGIFWriter: %v", err)
	}

	video := components.NewFrameBuffer(3, 2, 3)
	for i := range video.Pix {
		video.Pix[i] = 0.5
	}
	if err := w.WriteVideo(30, video); err != nil {
		t.Fatalf("WriteVideo: %v", err)
	}

	f, err := os.Open(w.Path(30))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()
	anim, err := gif.DecodeAll(f)
	if err != nil {
		t.Fatalf("DecodeAll: %v", err)
	}
	if len(anim.Image) != 3 {
		t.Errorf("frames = %d, want 3", len(anim.Image))
	}
	if b := anim.Image[0].Bounds(); b.Dx() != 6 || b.Dy() != 4 {
		t.Errorf("frame bounds = %v, want 6x4 after 2x upscale", b)
	}
}
