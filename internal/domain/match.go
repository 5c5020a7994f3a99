// Package domain defines the core types shared across the live-bet worker:
// match snapshots, per-match betting state, notifications, store interfaces,
// and sentinel errors.
package domain

import "fmt"

// MatchStatus is the coarse lifecycle status of a fixture as observed in a
// single poll snapshot.
type MatchStatus string

const (
	StatusScheduled MatchStatus = "scheduled"
	StatusLive      MatchStatus = "live"
	StatusHalfTime  MatchStatus = "half_time"
	StatusFullTime  MatchStatus = "full_time"
)

// Score is an ordered (home, away) goal pair.
type Score struct {
	Home int `json:"home"`
	Away int `json:"away"`
}

// String renders the score in the canonical "home-away" form used for
// rule matching and persisted state, e.g. "1-1".
func (s Score) String() string {
	return fmt.Sprintf("%d-%d", s.Home, s.Away)
}

// ParseScore parses a "home-away" scoreline string.
func ParseScore(v string) (Score, error) {
	var s Score
	if _, err := fmt.Sscanf(v, "%d-%d", &s.Home, &s.Away); err != nil {
		return Score{}, fmt.Errorf("domain: parse score %q: %w", v, err)
	}
	if s.Home < 0 || s.Away < 0 {
		return Score{}, fmt.Errorf("domain: parse score %q: negative goals", v)
	}
	return s, nil
}

// MatchRecord is one poll snapshot of a fixture. It is ephemeral; only the
// derived BetState is persisted.
type MatchRecord struct {
	MatchID string
	League  string
	Home    string
	Away    string
	Minute  int
	Score   Score
	Status  MatchStatus
}

// Fixture returns the human-readable "Home vs Away" label used in
// notifications and the persisted ledger.
func (m MatchRecord) Fixture() string {
	return m.Home + " vs " + m.Away
}
