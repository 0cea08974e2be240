package telemetry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pthm-cable/gridworld/components"
)

// SnapshotVersion is incremented when the format changes.
const SnapshotVersion = 1

// Snapshot holds the complete world state for replay. The video buffer is
// not saved.
type Snapshot struct {
	Version int    `json:"version"`
	RunID   string `json:"run_id,omitempty"`
	Seed    uint64 `json:"seed"`

	Tick        int `json:"tick"`
	SunLatitude int `json:"sun_latitude"`

	Height   int       `json:"height"`
	Width    int       `json:"width"`
	Channels int       `json:"channels"`
	Grid     []float64 `json:"grid"`

	Agents AgentsState `json:"agents"`

	// Lifetime stats of tracked slots, keyed by slot.
	Lifetimes map[int]LifeStats `json:"lifetimes,omitempty"`

	Bookmark *Bookmark `json:"bookmark,omitempty"`
}

// AgentsState is the serialized slot arena.
type AgentsState struct {
	Capacity      int               `json:"capacity"`
	DimAppearance int               `json:"dim_appearance"`
	Pos           []components.Cell `json:"pos"`
	Orientation   []int             `json:"orientation"`
	Exists        []bool            `json:"exists"`
	Energy        []float64         `json:"energy"`
	Age           []int             `json:"age"`
	Appearance    []float64         `json:"appearance"`
	Parent        []int             `json:"parent"`
}

// NewSnapshot captures st. The arrays are copied.
func NewSnapshot(st *components.State, seed uint64) *Snapshot {
	a := st.Agents.Clone()
	g := st.Grid.Clone()
	return &Snapshot{
		Version:     SnapshotVersion,
		Seed:        seed,
		Tick:        st.Tick,
		SunLatitude: st.SunLatitude,
		Height:      g.H,
		Width:       g.W,
		Channels:    g.C,
		Grid:        g.Data,
		Agents: AgentsState{
			Capacity:      a.N,
			DimAppearance: a.DimAppearance,
			Pos:           a.Pos,
			Orientation:   a.Orientation,
			Exists:        a.Exists,
			Energy:        a.Energy,
			Age:           a.Age,
			Appearance:    a.Appearance,
			Parent:        a.Parent,
		},
	}
}

// State rebuilds the world state. The returned state has no video buffer.
func (s *Snapshot) State() (*components.State, error) {
	if s.Version != SnapshotVersion {
		return nil, fmt.Errorf("snapshot version %d, want %d", s.Version, SnapshotVersion)
	}
	if len(s.Grid) != s.Height*s.Width*s.Channels {
		return nil, fmt.Errorf("snapshot grid has %d values, want %d", len(s.Grid), s.Height*s.Width*s.Channels)
	}

	as := s.Agents
	n := as.Capacity
	for name, l := range map[string]int{
		"pos":         len(as.Pos),
		"orientation": len(as.Orientation),
		"exists":      len(as.Exists),
		"energy":      len(as.Energy),
		"age":         len(as.Age),
		"parent":      len(as.Parent),
	} {
		if l != n {
			return nil, fmt.Errorf("snapshot agents %s has %d entries, want %d", name, l, n)
		}
	}
	if len(as.Appearance) != n*as.DimAppearance {
		return nil, fmt.Errorf("snapshot appearance has %d values, want %d", len(as.Appearance), n*as.DimAppearance)
	}

	g := components.NewGrid(s.Height, s.Width, s.Channels)
	copy(g.Data, s.Grid)

	a := components.NewAgents(n, as.DimAppearance)
	copy(a.Pos, as.Pos)
	copy(a.Orientation, as.Orientation)
	copy(a.Exists, as.Exists)
	copy(a.Energy, as.Energy)
	copy(a.Age, as.Age)
	copy(a.Appearance, as.Appearance)
	copy(a.Parent, as.Parent)

	return &components.State{
		Tick:        s.Tick,
		SunLatitude: s.SunLatitude,
		Grid:        g,
		Agents:      a,
	}, nil
}

// SaveSnapshot writes a snapshot to disk.
// Returns the filepath where it was saved.
func SaveSnapshot(snapshot *Snapshot, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create snapshot dir: %w", err)
	}

	name := fmt.Sprintf("snapshot_%d", snapshot.Tick)
	if snapshot.Bookmark != nil {
		sanitized := strings.ReplaceAll(string(snapshot.Bookmark.Type), " ", "_")
		name = fmt.Sprintf("snapshot_%d_%s", snapshot.Tick, sanitized)
	}
	name += ".json"

	path := filepath.Join(dir, name)

	data, err := json.Marshal(snapshot)
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write snapshot: %w", err)
	}

	return path, nil
}

// LoadSnapshot reads a snapshot from disk.
func LoadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}

	return &snapshot, nil
}
