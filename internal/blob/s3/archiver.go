package s3blob

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/atho-gitrepo/36-80-live-bet/internal/domain"
)

// Archiver periodically exports the settled portion of the decision ledger
// (matches whose phase is terminal) as a JSON snapshot object. The primary
// store is never modified: the ledger stays append-only and the archive is a
// cold copy for later analysis.
type Archiver struct {
	writer domain.BlobWriter
	store  domain.TrackerStore
	prefix string
	logger *slog.Logger
}

// ledgerEntry is one row of an archived snapshot.
type ledgerEntry struct {
	MatchID   string    `json:"match_id"`
	League    string    `json:"league,omitempty"`
	Fixture   string    `json:"fixture,omitempty"`
	Phase     string    `json:"phase"`
	ScoreAt36 string    `json:"score_at_36,omitempty"`
	ScoreAt80 string    `json:"score_at_80,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewArchiver creates an Archiver reading from store and writing snapshot
// objects under the given key prefix.
func NewArchiver(writer domain.BlobWriter, store domain.TrackerStore, prefix string, logger *slog.Logger) *Archiver {
	if prefix == "" {
		prefix = "ledger"
	}
	return &Archiver{
		writer: writer,
		store:  store,
		prefix: prefix,
		logger: logger.With(slog.String("component", "archiver")),
	}
}

// RunLoop archives on the given interval until ctx is cancelled. Archive
// failures are logged and retried on the next tick; they never stop the
// worker.
func (a *Archiver) RunLoop(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := a.ArchiveOnce(ctx); err != nil {
				a.logger.ErrorContext(ctx, "ledger archive failed",
					slog.String("error", err.Error()),
				)
			}
		}
	}
}

// ArchiveOnce exports all terminal ledger entries as one snapshot object and
// returns the number of entries written. With nothing settled yet it is a
// no-op.
func (a *Archiver) ArchiveOnce(ctx context.Context) (int, error) {
	states, err := a.store.Load(ctx)
	if err != nil {
		return 0, fmt.Errorf("archiver: load ledger: %w", err)
	}

	entries := make([]ledgerEntry, 0, len(states))
	for _, st := range states {
		if !st.Phase.Terminal() {
			continue
		}
		entries = append(entries, ledgerEntry{
			MatchID:   st.MatchID,
			League:    st.League,
			Fixture:   st.Fixture,
			Phase:     string(st.Phase),
			ScoreAt36: st.ScoreAt36,
			ScoreAt80: st.ScoreAt80,
			UpdatedAt: st.UpdatedAt,
		})
	}
	if len(entries) == 0 {
		return 0, nil
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].MatchID < entries[j].MatchID
	})

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return 0, fmt.Errorf("archiver: encode snapshot: %w", err)
	}

	now := time.Now().UTC()
	key := fmt.Sprintf("%s/%s/%s.json", a.prefix, now.Format("2006/01/02"), uuid.NewString())
	if err := a.writer.Put(ctx, key, bytes.NewReader(data), "application/json"); err != nil {
		return 0, fmt.Errorf("archiver: upload snapshot: %w", err)
	}

	a.logger.InfoContext(ctx, "ledger snapshot archived",
		slog.String("key", key),
		slog.Int("entries", len(entries)),
	)
	return len(entries), nil
}
