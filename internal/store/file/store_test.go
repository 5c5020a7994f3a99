package file

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/atho-gitrepo/36-80-live-bet/internal/domain"
)

func TestLoadMissingFileIsFreshDeployment(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "state.json"))
	states, err := s.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(states) != 0 {
		t.Fatalf("got %d states, want 0", len(states))
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	s := New(path)
	ctx := context.Background()

	st := domain.NewBetState("101")
	st.Phase = domain.PhaseFirstBetPlaced
	st.ScoreAt36 = "1-1"
	st.MarkNotified("36:bet_placed")

	if err := s.Save(ctx, map[string]domain.BetState{"101": st}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	// A fresh Store on the same path sees the persisted state (restart).
	loaded, err := New(path).Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	got, ok := loaded["101"]
	if !ok {
		t.Fatal("state for 101 missing after reload")
	}
	if got.Phase != domain.PhaseFirstBetPlaced || got.ScoreAt36 != "1-1" {
		t.Errorf("loaded state = %+v", got)
	}
	if !got.HasNotified("36:bet_placed") {
		t.Error("notified set lost in round trip")
	}
}

func TestLoadCorruptFileFailsFast(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}

	_, err := New(path).Load(context.Background())
	if !errors.Is(err, domain.ErrStoreCorrupt) {
		t.Fatalf("err = %v, want ErrStoreCorrupt", err)
	}
}

func TestSaveLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	s := New(filepath.Join(dir, "state.json"))

	if err := s.Save(context.Background(), map[string]domain.BetState{}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != "state.json" {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("directory contents = %v", names)
	}
}
