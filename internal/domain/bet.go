package domain

import "time"

// Phase is the discrete stage of a match's betting lifecycle. A phase only
// ever advances through the ordering below; it never regresses.
type Phase string

const (
	PhaseNone           Phase = "none"
	PhaseFirstBetPlaced Phase = "first_bet_placed"
	PhaseFirstBetWon    Phase = "first_bet_won"
	PhaseFirstBetLost   Phase = "first_bet_lost"
	PhaseChaseBetPlaced Phase = "chase_bet_placed"
	PhaseChaseBetWon    Phase = "chase_bet_won"
	PhaseChaseBetLost   Phase = "chase_bet_lost"
	PhaseClosed         Phase = "closed"
)

// phaseRank orders phases for the monotonicity invariant. The empty phase
// ranks the same as PhaseNone so zero-valued states are valid starting points.
var phaseRank = map[Phase]int{
	Phase(""):           0,
	PhaseNone:           0,
	PhaseFirstBetPlaced: 1,
	PhaseFirstBetWon:    2,
	PhaseFirstBetLost:   2,
	PhaseChaseBetPlaced: 3,
	PhaseChaseBetWon:    4,
	PhaseChaseBetLost:   4,
	PhaseClosed:         5,
}

// Rank returns the position of p in the forward-only phase ordering.
func (p Phase) Rank() int {
	return phaseRank[p]
}

// Terminal reports whether p is an absorbing phase with no further action.
// PhaseFirstBetLost is not terminal: a chase bet may still follow at
// minute 80, and a match ending in this phase moves to PhaseClosed at
// full time.
func (p Phase) Terminal() bool {
	switch p {
	case PhaseFirstBetWon, PhaseChaseBetWon, PhaseChaseBetLost, PhaseClosed:
		return true
	default:
		return false
	}
}

// BetState is the persisted decision state for one match. It is created on
// first observation of a fixture and never deleted, forming an append-only
// ledger keyed by match id.
type BetState struct {
	MatchID   string          `json:"match_id"`
	League    string          `json:"league,omitempty"`
	Fixture   string          `json:"fixture,omitempty"`
	Phase     Phase           `json:"phase"`
	ScoreAt36 string          `json:"score_at_36,omitempty"`
	ScoreAt80 string          `json:"score_at_80,omitempty"`
	Notified  map[string]bool `json:"notified,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// NewBetState returns the initial state for a freshly observed match.
func NewBetState(matchID string) BetState {
	now := time.Now().UTC()
	return BetState{
		MatchID:   matchID,
		Phase:     PhaseNone,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Clone returns a deep copy of s. The rule engine mutates only the copy so
// callers can compare before/after states.
func (s BetState) Clone() BetState {
	out := s
	if s.Notified != nil {
		out.Notified = make(map[string]bool, len(s.Notified))
		for k, v := range s.Notified {
			out.Notified[k] = v
		}
	}
	return out
}

// HasNotified reports whether the notification identified by key has already
// been emitted for this match.
func (s BetState) HasNotified(key string) bool {
	return s.Notified[key]
}

// MarkNotified records that the notification identified by key has been
// emitted, guaranteeing at-most-once delivery per (match, event).
func (s *BetState) MarkNotified(key string) {
	if s.Notified == nil {
		s.Notified = make(map[string]bool)
	}
	s.Notified[key] = true
}

// Notification event types, used by the notifier's event filter.
const (
	EventBetPlaced   = "bet_placed"
	EventBetResult   = "bet_result"
	EventChasePlaced = "chase_placed"
	EventMatchStatus = "match_status"
	EventError       = "error"
)

// Notification is an outbound plain-text message produced by the rule engine
// and delivered best-effort by the notifier.
type Notification struct {
	Event   string
	Title   string
	Message string
}
