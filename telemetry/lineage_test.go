package telemetry

import (
	"context"
	"path/filepath"
	"testing"
)

func TestLineageStore_Record(t *testing.T) {
	ctx := context.Background()
	store := NewLineageStore(filepath.Join(t.TempDir(), "lineage.db"))
	if err := store.Init(ctx, 42, 10, 10, 8); err != nil {
		t.Fatalf("Init: %v", err)
	}
	defer store.Close()

	if store.RunID() == "" {
		t.Fatal("empty run id")
	}

	events := []Event{
		NewBirthEvent(1, 3, 0, 7),
		NewBirthEvent(1, 4, 1, 7),
		NewBirthEvent(2, 5, 2, 9),
		NewDeathEvent(2, 0, 7, 30),
	}
	if err := store.Record(ctx, events); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if err := store.Record(ctx, nil); err != nil {
		t.Fatalf("Record(nil): %v", err)
	}

	births, deaths, err := store.Counts(ctx)
	if err != nil {
		t.Fatalf("Counts: %v", err)
	}
	if births != 3 || deaths != 1 {
		t.Errorf("births/deaths = %d/%d, want 3/1", births, deaths)
	}

	n, err := store.Descendants(ctx, 7)
	if err != nil {
		t.Fatalf("Descendants: %v", err)
	}
	if n != 2 {
		t.Errorf("Descendants(7) = %d, want 2", n)
	}
}

func TestLineageStore_NotInitialized(t *testing.T) {
	store := NewLineageStore("")
	if err := store.Init(context.Background(), 0, 1, 1, 1); err == nil {
		t.Error("Init with empty path should fail")
	}
	if err := store.Record(context.Background(), []Event{NewBirthEvent(0, 0, 1, 0)}); err == nil {
		t.Error("Record before Init should fail")
	}
	if err := store.Close(); err != nil {
		t.Errorf("Close before Init: %v", err)
	}
}
