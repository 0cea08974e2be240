package game

import (
	"fmt"

	"github.com/pthm-cable/gridworld/components"
)

// recordFrame blends the RGB frame of next into slot t%L of the video
// buffer. The buffer is cleared at the start of each segment.
func (e *Env) recordFrame(next *components.State, t int) {
	video := next.Video
	if video == nil {
		return
	}
	k := t % video.Len
	if k == 0 {
		video.Clear()
	}
	e.blender.Frame(next.Grid, video.Frame(k))
}

// Render hands the video buffer to the video writer once a full segment has
// been recorded, that is at every positive multiple of steps_per_video.
// It is a no-op otherwise.
func (e *Env) Render(st *components.State) error {
	if e.videoWriter == nil || st.Video == nil {
		return nil
	}
	if st.Tick <= 0 || st.Tick%st.Video.Len != 0 {
		return nil
	}
	if err := e.videoWriter.WriteVideo(st.Tick, st.Video); err != nil {
		return fmt.Errorf("rendering tick %d: %w", st.Tick, err)
	}
	return nil
}
