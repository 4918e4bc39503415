package storage

import (
	"context"
	"path/filepath"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestDocumentRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	type payload struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}
	if err := store.SaveDocument(ctx, "TestDoc", payload{Name: "runner", Count: 3}); err != nil {
		t.Fatalf("save: %v", err)
	}

	var got payload
	found, err := store.LoadDocument(ctx, "TestDoc", &got)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !found {
		t.Fatalf("document missing after save")
	}
	if got.Name != "runner" || got.Count != 3 {
		t.Fatalf("unexpected payload %+v", got)
	}
}

func TestLoadMissingDocumentReportsAbsence(t *testing.T) {
	store := newTestStore(t)

	var got map[string]any
	found, err := store.LoadDocument(context.Background(), "Nope", &got)
	if err != nil {
		t.Fatalf("missing document must not error: %v", err)
	}
	if found {
		t.Fatalf("missing document reported as present")
	}
}

func TestSaveDocumentReplacesPayload(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	store.SaveDocument(ctx, "Doc", map[string]int{"v": 1})
	store.SaveDocument(ctx, "Doc", map[string]int{"v": 2})

	var got map[string]int
	if _, err := store.LoadDocument(ctx, "Doc", &got); err != nil {
		t.Fatalf("load: %v", err)
	}
	if got["v"] != 2 {
		t.Fatalf("expected replaced payload, got %+v", got)
	}
}

func TestProgressionMergeAccumulates(t *testing.T) {
	set := ProgressionSet{}

	first := set.Merge("runner", 20, 5, 8)
	if first.BestScore != 20 || first.TotalCoins != 5 || first.Runs != 1 {
		t.Fatalf("unexpected first merge %+v", first)
	}

	// A worse score keeps the best, totals still accumulate.
	second := set.Merge("runner", 12, 3, 2)
	if second.BestScore != 20 {
		t.Fatalf("best score must be monotonic, got %v", second.BestScore)
	}
	if second.TotalCoins != 8 || second.TotalJumps != 10 || second.Runs != 2 {
		t.Fatalf("totals not accumulated: %+v", second)
	}
}

func TestProgressionRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	set := ProgressionSet{}
	set.Merge("runner", 31.5, 12, 4)
	if err := store.SaveProgression(ctx, set); err != nil {
		t.Fatalf("save progression: %v", err)
	}

	loaded, err := store.LoadProgression(ctx)
	if err != nil {
		t.Fatalf("load progression: %v", err)
	}
	record := loaded["runner"]
	if record.BestScore != 31.5 || record.TotalCoins != 12 || record.TotalJumps != 4 {
		t.Fatalf("unexpected loaded record %+v", record)
	}
}

func TestLoadProgressionEmptyStoreYieldsUsableSet(t *testing.T) {
	store := newTestStore(t)

	set, err := store.LoadProgression(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if set == nil {
		t.Fatalf("empty store must yield a usable set")
	}
	set.Merge("fresh", 1, 0, 0)
}

func TestGameDataRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	want := GameData{SessionCount: 3, LastTick: 9000, Highscore: 120.5, HighscoreName: "runner"}
	if err := store.SaveGameData(ctx, want); err != nil {
		t.Fatalf("save game data: %v", err)
	}

	got, err := store.LoadGameData(ctx)
	if err != nil {
		t.Fatalf("load game data: %v", err)
	}
	if got.SessionCount != 3 || got.LastTick != 9000 || got.Highscore != 120.5 || got.HighscoreName != "runner" {
		t.Fatalf("unexpected game data %+v", got)
	}
	if got.SavedAt.IsZero() {
		t.Fatalf("save must stamp the document")
	}
}

func TestClosedStoreRefusesWrites(t *testing.T) {
	store := newTestStore(t)
	store.Close()
	store.db = nil

	if err := store.SaveDocument(context.Background(), "Doc", 1); err == nil {
		t.Fatalf("closed store must refuse writes")
	}
}
