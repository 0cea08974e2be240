package components

// State is the canonical world and population snapshot.
type State struct {
	Tick        int
	SunLatitude int
	Grid        *Grid
	Agents      *Agents

	// Video is nil when video is disabled. It is shared between a state and
	// its clones: frames are written at Tick mod Len, so replaying the same
	// tick overwrites the same frame.
	Video *FrameBuffer
}

// Clone returns a copy with independent grid and agent arrays.
func (s *State) Clone() *State {
	return &State{
		Tick:        s.Tick,
		SunLatitude: s.SunLatitude,
		Grid:        s.Grid.Clone(),
		Agents:      s.Agents.Clone(),
		Video:       s.Video,
	}
}

// FrameBuffer is a circular buffer of RGB frames in [0, 1].
// Pixel layout is [frame][row][col][rgb].
type FrameBuffer struct {
	Len, H, W int
	Pix       []float64
}

// NewFrameBuffer allocates a zeroed buffer of n frames.
func NewFrameBuffer(n, h, w int) *FrameBuffer {
	return &FrameBuffer{Len: n, H: h, W: w, Pix: make([]float64, n*h*w*3)}
}

// Frame returns frame i (aliases the buffer).
func (f *FrameBuffer) Frame(i int) []float64 {
	size := f.H * f.W * 3
	return f.Pix[i*size : (i+1)*size]
}

// Clear zeroes every frame.
func (f *FrameBuffer) Clear() {
	clear(f.Pix)
}
