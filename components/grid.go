package components

// Fixed channel layout. Appearance channels follow ChAppearance.
const (
	ChSun = iota
	ChPlants
	ChAgents
	ChAgentAges
	ChAppearance
)

// Grid is an H x W x C field stored channel-major so each channel is one
// contiguous row-major plane.
type Grid struct {
	H, W, C int
	Data    []float64
}

// NewGrid allocates a zeroed grid.
func NewGrid(h, w, c int) *Grid {
	return &Grid{H: h, W: w, C: c, Data: make([]float64, h*w*c)}
}

// Cells returns H*W.
func (g *Grid) Cells() int {
	return g.H * g.W
}

// Plane returns the backing slice of one channel.
func (g *Grid) Plane(ch int) []float64 {
	n := g.H * g.W
	return g.Data[ch*n : (ch+1)*n]
}

// At reads channel ch at (r, c). Coordinates must be in range.
func (g *Grid) At(ch, r, c int) float64 {
	return g.Data[ch*g.H*g.W+r*g.W+c]
}

// Set writes channel ch at (r, c).
func (g *Grid) Set(ch, r, c int, v float64) {
	g.Data[ch*g.H*g.W+r*g.W+c] = v
}

// Clone returns a deep copy.
func (g *Grid) Clone() *Grid {
	out := &Grid{H: g.H, W: g.W, C: g.C, Data: make([]float64, len(g.Data))}
	copy(out.Data, g.Data)
	return out
}
