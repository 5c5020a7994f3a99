package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/atho-gitrepo/36-80-live-bet/internal/domain"
)

// trackedKey is the hash holding the full decision ledger, one field per
// match id.
const trackedKey = "livebet:tracked"

// TrackerStore implements domain.TrackerStore on a Redis hash.
type TrackerStore struct {
	rdb *redis.Client
}

// NewTrackerStore creates a TrackerStore using the given client.
func NewTrackerStore(c *Client) *TrackerStore {
	return &TrackerStore{rdb: c.Underlying()}
}

// Load reads the full ledger hash. A field that fails to decode marks the
// store corrupt and aborts the load.
func (s *TrackerStore) Load(ctx context.Context) (map[string]domain.BetState, error) {
	fields, err := s.rdb.HGetAll(ctx, trackedKey).Result()
	if err != nil {
		return nil, fmt.Errorf("redis: load %s: %w", trackedKey, err)
	}

	states := make(map[string]domain.BetState, len(fields))
	for matchID, raw := range fields {
		var st domain.BetState
		if err := json.Unmarshal([]byte(raw), &st); err != nil {
			return nil, fmt.Errorf("redis: decode state for %s: %v: %w", matchID, err, domain.ErrStoreCorrupt)
		}
		states[matchID] = st
	}
	return states, nil
}

// Save writes every ledger entry back to the hash in one pipeline.
func (s *TrackerStore) Save(ctx context.Context, states map[string]domain.BetState) error {
	if len(states) == 0 {
		return nil
	}

	pipe := s.rdb.Pipeline()
	for matchID, st := range states {
		raw, err := json.Marshal(st)
		if err != nil {
			return fmt.Errorf("redis: encode state for %s: %w", matchID, err)
		}
		pipe.HSet(ctx, trackedKey, matchID, raw)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis: save %s: %w", trackedKey, err)
	}
	return nil
}
