// Package components defines the gridworld data model: the channel grid,
// the fixed-capacity agent slot arena, and per-tick ecological records.
package components

// Cell is a grid coordinate.
type Cell struct {
	Row, Col int
}

// Orientation indexes the four facing directions in 90 degree steps.
// Turning left adds 1, turning right adds 3.
const (
	NumOrientations = 4
	TurnLeft        = 1
	TurnRight       = 3
)

// facingDelta holds the (row, col) step taken when moving forward.
var facingDelta = [NumOrientations]Cell{
	{Row: 1, Col: 0},
	{Row: 0, Col: -1},
	{Row: -1, Col: 0},
	{Row: 0, Col: 1},
}

// Wrap returns v modulo n in [0, n).
func Wrap(v, n int) int {
	v %= n
	if v < 0 {
		v += n
	}
	return v
}

// Facing returns the cell in front of c for the given orientation on an h x w torus.
func Facing(c Cell, orientation, h, w int) Cell {
	d := facingDelta[Wrap(orientation, NumOrientations)]
	return Cell{Row: Wrap(c.Row+d.Row, h), Col: Wrap(c.Col+d.Col, w)}
}

// Turn applies a turn increment to an orientation.
func Turn(orientation, delta int) int {
	return Wrap(orientation+delta, NumOrientations)
}

// Index returns the flat row-major cell index.
func (c Cell) Index(w int) int {
	return c.Row*w + c.Col
}

// CellAt is the inverse of Index.
func CellAt(idx, w int) Cell {
	return Cell{Row: idx / w, Col: idx % w}
}

// Delta returns the unit (row, col) step for an orientation.
func Delta(orientation int) Cell {
	return facingDelta[Wrap(orientation, NumOrientations)]
}
