package renderer

import (
	"fmt"
	"image"
	"image/color/palette"
	"image/draw"
	"image/gif"
	"os"
	"path/filepath"

	"github.com/pthm-cable/gridworld/components"
	"github.com/pthm-cable/gridworld/config"
)

// GIFWriter encodes full frame buffers as animated GIFs, one file per
// buffer.
type GIFWriter struct {
	dir        string
	delay      int // Hundredths of a second per frame
	maxH, maxW int
}

// NewGIFWriter creates the output directory and returns a writer.
func NewGIFWriter(cfg *config.Config) (*GIFWriter, error) {
	v := cfg.Video
	if err := os.MkdirAll(v.Dir, 0755); err != nil {
		return nil, fmt.Errorf("creating video directory: %w", err)
	}
	delay := 10
	if v.FPS > 0 {
		delay = max(1, 100/v.FPS)
	}
	return &GIFWriter{
		dir:   v.Dir,
		delay: delay,
		maxH:  v.HeightMax,
		maxW:  v.WidthMax,
	}, nil
}

// Path returns the file a buffer ending at tick is written to.
func (w *GIFWriter) Path(tick int) string {
	return filepath.Join(w.dir, fmt.Sprintf("video_t%d.gif", tick))
}

// WriteVideo encodes every frame of video in buffer order.
func (w *GIFWriter) WriteVideo(tick int, video *components.FrameBuffer) error {
	factor := UpscaleFactor(video.H, video.W, w.maxH, w.maxW)

	anim := &gif.GIF{}
	for i := 0; i < video.Len; i++ {
		rgba := ToImage(video.Frame(i), video.H, video.W, factor)
		pal := image.NewPaletted(rgba.Bounds(), palette.Plan9)
		draw.Draw(pal, pal.Bounds(), rgba, image.Point{}, draw.Src)
		anim.Image = append(anim.Image, pal)
		anim.Delay = append(anim.Delay, w.delay)
	}

	f, err := os.Create(w.Path(tick))
	if err != nil {
		return fmt.Errorf("creating video file: %w", err)
	}
	if err := gif.EncodeAll(f, anim); err != nil {
		f.Close()
		return fmt.Errorf("encoding video: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing video file: %w", err)
	}
	return nil
}
