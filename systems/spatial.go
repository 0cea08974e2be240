package systems

import (
	"github.com/pthm-cable/gridworld/components"
)

// SpatialSystem rebuilds the aggregate agent channels of the grid.
type SpatialSystem struct{}

// NewSpatialSystem creates a spatial system.
func NewSpatialSystem() *SpatialSystem {
	return &SpatialSystem{}
}

// Refresh recomputes occupancy, mean age and mean appearance by scattering
// existing agents onto their cells. Means divide by max(1, count).
func (s *SpatialSystem) Refresh(g *components.Grid, a *components.Agents) {
	count := g.Plane(components.ChAgents)
	ages := g.Plane(components.ChAgentAges)
	clear(count)
	clear(ages)
	d := a.DimAppearance
	for k := 0; k < d; k++ {
		clear(g.Plane(components.ChAppearance + k))
	}

	for i := 0; i < a.N; i++ {
		if !a.Exists[i] {
			continue
		}
		idx := a.Pos[i].Index(g.W)
		count[idx]++
		ages[idx] += float64(a.Age[i])
		app := a.AppearanceOf(i)
		for k := 0; k < d; k++ {
			g.Plane(components.ChAppearance + k)[idx] += app[k]
		}
	}

	for idx, c := range count {
		if c <= 1 {
			continue
		}
		ages[idx] /= c
		for k := 0; k < d; k++ {
			g.Plane(components.ChAppearance + k)[idx] /= c
		}
	}
}

// CellIndex buckets existing slots by cell for O(1) per-cell lookups.
// Slots in a bucket are visited in ascending slot order.
type CellIndex struct {
	head []int // First slot per cell, -1 if empty
	next []int // Next slot in the same cell, -1 at the end
}

// NewCellIndex indexes the existing slots of a on a grid w columns wide
// with the given number of cells.
func NewCellIndex(a *components.Agents, cells, w int) *CellIndex {
	idx := &CellIndex{
		head: make([]int, cells),
		next: make([]int, a.N),
	}
	for i := range idx.head {
		idx.head[i] = -1
	}
	// Insert in descending order so each list ends up ascending
	for i := a.N - 1; i >= 0; i-- {
		idx.next[i] = -1
		if !a.Exists[i] {
			continue
		}
		c := a.Pos[i].Index(w)
		idx.next[i] = idx.head[c]
		idx.head[c] = i
	}
	return idx
}

// Each calls fn for every slot at cell c in ascending order.
func (idx *CellIndex) Each(c int, fn func(slot int)) {
	for i := idx.head[c]; i >= 0; i = idx.next[i] {
		fn(i)
	}
}

