package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/atho-gitrepo/36-80-live-bet/internal/domain"
)

// TrackerStore implements domain.TrackerStore, keeping each match's BetState
// as a JSONB document keyed by match id.
type TrackerStore struct {
	pool *pgxpool.Pool
}

// NewTrackerStore creates a new TrackerStore backed by the given connection
// pool.
func NewTrackerStore(pool *pgxpool.Pool) *TrackerStore {
	return &TrackerStore{pool: pool}
}

// Load returns the full decision ledger. An undecodable row is a corrupt
// store and aborts the load: proceeding with partial state risks duplicate
// bets.
func (s *TrackerStore) Load(ctx context.Context) (map[string]domain.BetState, error) {
	rows, err := s.pool.Query(ctx, "SELECT match_id, state FROM tracked_matches")
	if err != nil {
		return nil, fmt.Errorf("postgres: load tracked matches: %w", err)
	}
	defer rows.Close()

	states := make(map[string]domain.BetState)
	for rows.Next() {
		var (
			matchID string
			raw     []byte
		)
		if err := rows.Scan(&matchID, &raw); err != nil {
			return nil, fmt.Errorf("postgres: scan tracked match: %w", err)
		}
		var st domain.BetState
		if err := json.Unmarshal(raw, &st); err != nil {
			return nil, fmt.Errorf("postgres: decode state for %s: %v: %w", matchID, err, domain.ErrStoreCorrupt)
		}
		states[matchID] = st
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: load tracked matches: %w", err)
	}
	return states, nil
}

// Save upserts every entry of the ledger in one transaction.
func (s *TrackerStore) Save(ctx context.Context, states map[string]domain.BetState) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("postgres: begin save: %w", err)
	}
	defer tx.Rollback(ctx)

	const query = `
		INSERT INTO tracked_matches (match_id, state, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (match_id) DO UPDATE
		SET state = EXCLUDED.state, updated_at = NOW()`

	for matchID, st := range states {
		raw, err := json.Marshal(st)
		if err != nil {
			return fmt.Errorf("postgres: encode state for %s: %w", matchID, err)
		}
		if _, err := tx.Exec(ctx, query, matchID, raw); err != nil {
			return fmt.Errorf("postgres: upsert %s: %w", matchID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("postgres: commit save: %w", err)
	}
	return nil
}
