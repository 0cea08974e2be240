package telemetry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pthm-cable/gridworld/components"
)

func testState() *components.State {
	g := components.NewGrid(3, 4, 6)
	g.Set(components.ChPlants, 1, 2, 1)
	g.Set(components.ChSun, 0, 0, 0.5)

	a := components.NewAgents(3, 2)
	a.Exists[0] = true
	a.Pos[0] = components.Cell{Row: 1, Col: 3}
	a.Orientation[0] = 2
	a.Energy[0] = 7.5
	a.Age[0] = 12
	a.AppearanceOf(0)[0] = 1
	a.AppearanceOf(0)[1] = 0.25
	a.Parent[1] = 0

	return &components.State{Tick: 40, SunLatitude: 2, Grid: g, Agents: a}
}

func TestSnapshotSaveLoad(t *testing.T) {
	tmpDir := t.TempDir()

	snapshot := NewSnapshot(testState(), 42)
	snapshot.RunID = "run-1"
	snapshot.Lifetimes = map[int]LifeStats{0: {Children: 2, FoodEaten: 3.5, PeakEnergy: 9}}
	snapshot.Bookmark = &Bookmark{Type: BookmarkPopulationCrash, Tick: 40, Description: "Test bookmark"}

	path, err := SaveSnapshot(snapshot, tmpDir)
	if err != nil {
		t.Fatalf("SaveSnapshot failed: %v", err)
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("Snapshot file not created at %s", path)
	}

	loaded, err := LoadSnapshot(path)
	if err != nil {
		t.Fatalf("LoadSnapshot failed: %v", err)
	}

	if loaded.Seed != 42 || loaded.RunID != "run-1" {
		t.Errorf("header mismatch: seed %d run %q", loaded.Seed, loaded.RunID)
	}
	if loaded.Lifetimes[0].Children != 2 {
		t.Errorf("lifetime children = %d, want 2", loaded.Lifetimes[0].Children)
	}
	if loaded.Bookmark == nil || loaded.Bookmark.Type != BookmarkPopulationCrash {
		t.Errorf("bookmark not restored: %+v", loaded.Bookmark)
	}

	st, err := loaded.State()
	if err != nil {
		t.Fatalf("State failed: %v", err)
	}
	want := testState()
	if st.Tick != want.Tick || st.SunLatitude != want.SunLatitude {
		t.Errorf("tick/sun = %d/%d, want %d/%d", st.Tick, st.SunLatitude, want.Tick, want.SunLatitude)
	}
	if st.Grid.At(components.ChPlants, 1, 2) != 1 || st.Grid.At(components.ChSun, 0, 0) != 0.5 {
		t.Error("grid values not restored")
	}
	a := st.Agents
	if !a.Exists[0] || a.Exists[1] {
		t.Errorf("exists = %v", a.Exists)
	}
	if a.Pos[0] != (components.Cell{Row: 1, Col: 3}) || a.Orientation[0] != 2 {
		t.Errorf("slot 0 placement = %v/%d", a.Pos[0], a.Orientation[0])
	}
	if a.Energy[0] != 7.5 || a.Age[0] != 12 || a.AppearanceOf(0)[1] != 0.25 {
		t.Errorf("slot 0 = energy %v age %d appearance %v", a.Energy[0], a.Age[0], a.AppearanceOf(0))
	}
	if a.Parent[1] != 0 || a.Parent[2] != a.NoParent() {
		t.Errorf("parents = %v", a.Parent)
	}
	if st.Video != nil {
		t.Error("restored state should have no video buffer")
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	st := testState()
	snapshot := NewSnapshot(st, 1)
	st.Agents.Energy[0] = 0
	st.Grid.Set(components.ChPlants, 1, 2, 0)

	if snapshot.Agents.Energy[0] != 7.5 {
		t.Error("snapshot energy aliases the state")
	}
	if snapshot.Grid[components.ChPlants*12+1*4+2] != 1 {
		t.Error("snapshot grid aliases the state")
	}
}

func TestSnapshotState_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(s *Snapshot)
	}{
		{"version", func(s *Snapshot) { s.Version = SnapshotVersion + 1 }},
		{"grid length", func(s *Snapshot) { s.Grid = s.Grid[1:] }},
		{"energy length", func(s *Snapshot) { s.Agents.Energy = s.Agents.Energy[:1] }},
		{"appearance length", func(s *Snapshot) { s.Agents.Appearance = nil }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSnapshot(testState(), 1)
			tt.mutate(s)
			if _, err := s.State(); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestSnapshotFilename(t *testing.T) {
	tmpDir := t.TempDir()

	snapshot := &Snapshot{
		Version: SnapshotVersion,
		Tick:    5000,
		Bookmark: &Bookmark{
			Type: BookmarkPopulationCrash,
			Tick: 5000,
		},
	}

	path, err := SaveSnapshot(snapshot, tmpDir)
	if err != nil {
		t.Fatalf("SaveSnapshot failed: %v", err)
	}

	expected := filepath.Join(tmpDir, "snapshot_5000_population_crash.json")
	if path != expected {
		t.Errorf("Path mismatch: got %s, want %s", path, expected)
	}

	path, err = SaveSnapshot(&Snapshot{Version: SnapshotVersion, Tick: 3000}, tmpDir)
	if err != nil {
		t.Fatalf("SaveSnapshot failed: %v", err)
	}

	expected = filepath.Join(tmpDir, "snapshot_3000.json")
	if path != expected {
		t.Errorf("Path mismatch: got %s, want %s", path, expected)
	}
}
