package domain

import (
	"context"
	"io"
)

// TrackerStore persists the per-match decision ledger. The poller is the sole
// writer for the lifetime of the process, so implementations do not need
// locking.
//
// Load must distinguish an empty deployment (no backing data yet, returns an
// empty map) from an unreadable or corrupt backing store (returns an error
// wrapping ErrStoreCorrupt). Proceeding with silently-empty state on an
// existing deployment would cause duplicate bets.
type TrackerStore interface {
	Load(ctx context.Context) (map[string]BetState, error)
	Save(ctx context.Context, states map[string]BetState) error
}

// BlobWriter uploads an object to blob storage. Implemented by the S3 ledger
// archiver backend.
type BlobWriter interface {
	Put(ctx context.Context, path string, data io.Reader, contentType string) error
}
