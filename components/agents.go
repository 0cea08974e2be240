package components

// Agents is the fixed-capacity slot arena, stored as parallel arrays.
// Slots are never allocated or freed after construction: a death clears
// Exists, a birth overwrites a ghost slot. Ghost slots carry a zero
// appearance vector; their other fields may be stale.
type Agents struct {
	N             int // Capacity
	DimAppearance int

	Pos         []Cell
	Orientation []int
	Exists      []bool
	Energy      []float64
	Age         []int
	Appearance  []float64 // N x DimAppearance, one row per slot
	Parent      []int     // Slot index of the parent, or N for none
}

// NewAgents allocates an arena of n ghost slots.
func NewAgents(n, dimAppearance int) *Agents {
	a := &Agents{
		N:             n,
		DimAppearance: dimAppearance,
		Pos:           make([]Cell, n),
		Orientation:   make([]int, n),
		Exists:        make([]bool, n),
		Energy:        make([]float64, n),
		Age:           make([]int, n),
		Appearance:    make([]float64, n*dimAppearance),
		Parent:        make([]int, n),
	}
	for i := range a.Parent {
		a.Parent[i] = n
	}
	return a
}

// NoParent is the sentinel parent index.
func (a *Agents) NoParent() int {
	return a.N
}

// AppearanceOf returns slot i's appearance row (aliases the arena).
func (a *Agents) AppearanceOf(i int) []float64 {
	d := a.DimAppearance
	return a.Appearance[i*d : (i+1)*d]
}

// Count returns the number of existing slots.
func (a *Agents) Count() int {
	n := 0
	for _, e := range a.Exists {
		if e {
			n++
		}
	}
	return n
}

// Ghosts returns the indices of non-existing slots in ascending order.
func (a *Agents) Ghosts() []int {
	out := make([]int, 0, a.N)
	for i, e := range a.Exists {
		if !e {
			out = append(out, i)
		}
	}
	return out
}

// Kill clears slot i and zeroes its appearance.
func (a *Agents) Kill(i int) {
	a.Exists[i] = false
	clear(a.AppearanceOf(i))
}

// Clone returns a deep copy.
func (a *Agents) Clone() *Agents {
	out := &Agents{
		N:             a.N,
		DimAppearance: a.DimAppearance,
		Pos:           append([]Cell(nil), a.Pos...),
		Orientation:   append([]int(nil), a.Orientation...),
		Exists:        append([]bool(nil), a.Exists...),
		Energy:        append([]float64(nil), a.Energy...),
		Age:           append([]int(nil), a.Age...),
		Appearance:    append([]float64(nil), a.Appearance...),
		Parent:        append([]int(nil), a.Parent...),
	}
	return out
}
