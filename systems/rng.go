package systems

import "math/rand/v2"

// Phase tags one random stream of a tick.
type Phase uint64

// Draw phases in their canonical order.
const (
	PhaseMovement Phase = iota + 1
	PhaseEating
	PhaseSun
	PhasePlants
	PhaseReproduction
	PhaseInit
)

// Streams derives one independent PCG source per phase from a tick seed,
// so each phase consumes the same draws regardless of how many the
// others took.
type Streams struct {
	seed uint64
}

// NewStreams creates the stream family for one tick seed.
func NewStreams(seed uint64) Streams {
	return Streams{seed: seed}
}

// Source returns a fresh source for phase p. Calling it twice yields two
// identical sequences.
func (s Streams) Source(p Phase) rand.Source {
	return rand.NewPCG(s.seed, uint64(p)*0x9e3779b97f4a7c15)
}
