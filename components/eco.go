package components

// EcoInfo records what happened to the population during one tick.
// It is not retained across ticks.
type EcoInfo struct {
	Births  []bool
	Parents []int  // Parent slot per newborn slot, N otherwise
	Deaths  []bool // Existed at tick start and not at tick end
}

// NewEcoInfo returns an empty record for n slots.
func NewEcoInfo(n int) *EcoInfo {
	e := &EcoInfo{
		Births:  make([]bool, n),
		Parents: make([]int, n),
		Deaths:  make([]bool, n),
	}
	for i := range e.Parents {
		e.Parents[i] = n
	}
	return e
}

// NumBirths counts newborn slots.
func (e *EcoInfo) NumBirths() int {
	return countTrue(e.Births)
}

// NumDeaths counts slots that died.
func (e *EcoInfo) NumDeaths() int {
	return countTrue(e.Deaths)
}

func countTrue(b []bool) int {
	n := 0
	for _, v := range b {
		if v {
			n++
		}
	}
	return n
}

// Observations is the batched per-slot observation record.
// Disabled kinds are nil.
type Observations struct {
	N        int
	Side     int // 2*vision_range + 1
	Channels int // Visual channels plus the offspring channel

	// VisualField layout is [slot][row][col][channel], rotated so that
	// the observer faces up (row 0).
	VisualField    []float64
	Energy         []float64 // energy / energy_max
	Age            []float64 // age / age_max
	JustReproduced []float64 // 1 if the slot gave birth this tick
}

// Visual returns slot i's window (aliases the batch).
func (o *Observations) Visual(i int) []float64 {
	size := o.Side * o.Side * o.Channels
	return o.VisualField[i*size : (i+1)*size]
}

// VisualAt reads slot i's window at (r, c, ch).
func (o *Observations) VisualAt(i, r, c, ch int) float64 {
	return o.Visual(i)[(r*o.Side+c)*o.Channels+ch]
}

// Size returns the flattened observation length of one slot.
func (o *Observations) Size() int {
	n := 0
	if o.VisualField != nil {
		n += o.Side * o.Side * o.Channels
	}
	if o.Energy != nil {
		n++
	}
	if o.Age != nil {
		n++
	}
	if o.JustReproduced != nil {
		n++
	}
	return n
}

// Flatten writes slot i's observation into dst (visual field first, then
// scalars) and returns it. dst is reallocated if too short.
func (o *Observations) Flatten(i int, dst []float64) []float64 {
	dst = dst[:0]
	if o.VisualField != nil {
		dst = append(dst, o.Visual(i)...)
	}
	if o.Energy != nil {
		dst = append(dst, o.Energy[i])
	}
	if o.Age != nil {
		dst = append(dst, o.Age[i])
	}
	if o.JustReproduced != nil {
		dst = append(dst, o.JustReproduced[i])
	}
	return dst
}
