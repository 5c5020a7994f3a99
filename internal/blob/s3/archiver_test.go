package s3blob

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/atho-gitrepo/36-80-live-bet/internal/domain"
)

type memWriter struct {
	keys   []string
	bodies [][]byte
}

func (w *memWriter) Put(_ context.Context, path string, data io.Reader, _ string) error {
	body, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	w.keys = append(w.keys, path)
	w.bodies = append(w.bodies, body)
	return nil
}

type memStore struct {
	states map[string]domain.BetState
}

func (s *memStore) Load(context.Context) (map[string]domain.BetState, error) {
	return s.states, nil
}

func (s *memStore) Save(_ context.Context, states map[string]domain.BetState) error {
	s.states = states
	return nil
}

func TestArchiveOnceExportsOnlyTerminalPhases(t *testing.T) {
	open := domain.NewBetState("1")
	open.Phase = domain.PhaseFirstBetPlaced
	won := domain.NewBetState("2")
	won.Phase = domain.PhaseChaseBetWon
	won.ScoreAt36 = "1-1"
	won.ScoreAt80 = "1-1"
	closed := domain.NewBetState("3")
	closed.Phase = domain.PhaseClosed

	writer := &memWriter{}
	store := &memStore{states: map[string]domain.BetState{"1": open, "2": won, "3": closed}}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	a := NewArchiver(writer, store, "ledger", logger)

	n, err := a.ArchiveOnce(context.Background())
	if err != nil {
		t.Fatalf("ArchiveOnce: %v", err)
	}
	if n != 2 {
		t.Fatalf("archived %d entries, want 2", n)
	}
	if len(writer.keys) != 1 || !strings.HasPrefix(writer.keys[0], "ledger/") {
		t.Fatalf("keys = %v", writer.keys)
	}

	var entries []ledgerEntry
	if err := json.Unmarshal(writer.bodies[0], &entries); err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	if len(entries) != 2 || entries[0].MatchID != "2" || entries[1].MatchID != "3" {
		t.Errorf("entries = %+v", entries)
	}
}

func TestArchiveOnceNoTerminalEntriesIsNoop(t *testing.T) {
	open := domain.NewBetState("1")
	open.Phase = domain.PhaseFirstBetPlaced

	writer := &memWriter{}
	store := &memStore{states: map[string]domain.BetState{"1": open}}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	a := NewArchiver(writer, store, "", logger)

	n, err := a.ArchiveOnce(context.Background())
	if err != nil {
		t.Fatalf("ArchiveOnce: %v", err)
	}
	if n != 0 || len(writer.keys) != 0 {
		t.Errorf("n = %d, keys = %v; want no upload", n, writer.keys)
	}
}
