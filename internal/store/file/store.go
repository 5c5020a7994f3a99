// Package file implements domain.TrackerStore as a single JSON document on
// local disk. It is the default backend and needs no external services.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/atho-gitrepo/36-80-live-bet/internal/domain"
)

// Store persists the decision ledger to a JSON file. Writes go through a
// temporary file in the same directory followed by a rename, so a crash
// mid-save never leaves a half-written ledger behind.
type Store struct {
	path string
}

// New creates a Store persisting to the given path. The file is created on
// first Save.
func New(path string) *Store {
	return &Store{path: path}
}

// Load reads the ledger from disk. A missing file means a fresh deployment
// and yields an empty map; any other read or decode failure is fatal and
// wraps domain.ErrStoreCorrupt.
func (s *Store) Load(_ context.Context) (map[string]domain.BetState, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return make(map[string]domain.BetState), nil
		}
		return nil, fmt.Errorf("file: read %s: %w", s.path, err)
	}

	states := make(map[string]domain.BetState)
	if err := json.Unmarshal(data, &states); err != nil {
		return nil, fmt.Errorf("file: decode %s: %v: %w", s.path, err, domain.ErrStoreCorrupt)
	}
	return states, nil
}

// Save atomically replaces the ledger file with the given states.
func (s *Store) Save(_ context.Context, states map[string]domain.BetState) error {
	data, err := json.MarshalIndent(states, "", "  ")
	if err != nil {
		return fmt.Errorf("file: encode ledger: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("file: create temp file in %s: %w", dir, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("file: write %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("file: close %s: %w", tmpName, err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("file: rename %s -> %s: %w", tmpName, s.path, err)
	}
	return nil
}
