package stats

import (
	"context"
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "stats.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestRecordKeepsBestTime(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if err := store.Record(ctx, "1", "arena", 42.5, "runner"); err != nil {
		t.Fatalf("Record: %v", err)
	}
	// A faster replay improves the row, a slower one is a no-op.
	if err := store.Record(ctx, "1", "arena", 30, "runner"); err != nil {
		t.Fatalf("Record faster: %v", err)
	}
	if err := store.Record(ctx, "1", "arena", 55, "runner"); err != nil {
		t.Fatalf("Record slower: %v", err)
	}

	times, err := store.BestTimes(ctx, "arena")
	if err != nil {
		t.Fatalf("BestTimes: %v", err)
	}
	if len(times) != 1 {
		t.Fatalf("got %d rows, want 1", len(times))
	}
	if times[0].Seconds != 30 {
		t.Fatalf("best time = %v, want 30", times[0].Seconds)
	}
}

func TestRecordSeparatesRolesAndMaps(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if err := store.Record(ctx, "1", "arena", 20, "runner"); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if err := store.Record(ctx, "1", "arena", 35, "trapper"); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if err := store.Record(ctx, "1", "foundry", 50, "runner"); err != nil {
		t.Fatalf("Record: %v", err)
	}

	arena, err := store.BestTimes(ctx, "arena")
	if err != nil {
		t.Fatalf("BestTimes: %v", err)
	}
	if len(arena) != 2 {
		t.Fatalf("arena rows = %d, want 2", len(arena))
	}
	// Fastest first.
	if arena[0].Seconds != 20 || arena[0].Role != "runner" {
		t.Fatalf("first row = %+v", arena[0])
	}

	foundry, err := store.BestTimes(ctx, "foundry")
	if err != nil {
		t.Fatalf("BestTimes: %v", err)
	}
	if len(foundry) != 1 {
		t.Fatalf("foundry rows = %d, want 1", len(foundry))
	}
}

func TestRecordRejectsMissingIdentifiers(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	if err := store.Record(ctx, "", "arena", 10, "runner"); err == nil {
		t.Fatal("empty user id must be rejected")
	}
	if err := store.Record(ctx, "1", "", 10, "runner"); err == nil {
		t.Fatal("empty map id must be rejected")
	}
}
