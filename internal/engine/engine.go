// Package engine implements the betting rule engine: a pure function mapping
// (match snapshot, stored state) to (new state, notifications). All I/O lives
// in the poller; the engine itself performs no clock reads, no logging, and no
// network calls, which is what makes its idempotence testable.
package engine

import (
	"fmt"

	"github.com/atho-gitrepo/36-80-live-bet/internal/domain"
)

// Minute thresholds of the fixed rule. The first bet window opens at the 36th
// minute; the chase window (and first-bet settlement) opens at the 80th.
const (
	firstBetMinute = 36
	chaseMinute    = 80
)

// Notification dedup keys recorded in BetState.Notified.
const (
	keyFirstBetPlaced = "36:bet_placed"
	keyFirstBetResult = "first_bet:result"
	keyChasePlaced    = "80:chase_placed"
	keyChaseResult    = "chase_bet:result"
	keyHalfTime       = "status:half_time"
	keyFullTime       = "status:full_time"
)

// Config holds the rule parameters that are operator-tunable. The minute
// thresholds are fixed; only the set of scorelines eligible for the first bet
// is configuration.
type Config struct {
	// ValidScores lists the "home-away" scorelines that open the first bet
	// window at minute 36, e.g. {"0-0", "1-0", "0-1", "1-1"}.
	ValidScores []string
}

// Engine evaluates match snapshots against stored betting state.
type Engine struct {
	valid map[string]bool
}

// New creates an Engine from the given rule configuration.
func New(cfg Config) *Engine {
	valid := make(map[string]bool, len(cfg.ValidScores))
	for _, s := range cfg.ValidScores {
		valid[s] = true
	}
	return &Engine{valid: valid}
}

// Evaluate applies the fixed betting rule to one snapshot and returns the
// advanced state plus zero or more notifications. The input state is never
// mutated. Re-evaluating the same (record, state) pair returns an identical
// state and no notifications: every transition is guarded by the forward-only
// phase ordering and the notified-event set.
func (e *Engine) Evaluate(rec domain.MatchRecord, st domain.BetState) (domain.BetState, []domain.Notification) {
	out := st.Clone()
	if out.MatchID == "" {
		out = domain.NewBetState(rec.MatchID)
	}
	if out.Phase == "" {
		out.Phase = domain.PhaseNone
	}
	if out.Fixture == "" {
		out.Fixture = rec.Fixture()
	}
	if out.League == "" {
		out.League = rec.League
	}

	var notes []domain.Notification

	emit := func(key string, n domain.Notification) {
		if out.HasNotified(key) {
			return
		}
		out.MarkNotified(key)
		notes = append(notes, n)
	}

	// Informational status notifications fire independently of the betting
	// phase, once per match per status.
	switch rec.Status {
	case domain.StatusHalfTime:
		emit(keyHalfTime, domain.Notification{
			Event:   domain.EventMatchStatus,
			Title:   fmt.Sprintf("HT %s", out.Fixture),
			Message: fmt.Sprintf("Half-time score: %s", rec.Score),
		})
	case domain.StatusFullTime:
		emit(keyFullTime, domain.Notification{
			Event:   domain.EventMatchStatus,
			Title:   fmt.Sprintf("FT %s", out.Fixture),
			Message: fmt.Sprintf("Full-time score: %s", rec.Score),
		})
	}

	switch out.Phase {
	case domain.PhaseNone:
		if rec.Status == domain.StatusFullTime {
			// Match ended without the bet window ever matching.
			out.Phase = domain.PhaseClosed
			break
		}
		if rec.Minute < firstBetMinute {
			break
		}
		if rec.Minute >= chaseMinute {
			// First observed after the bet window already passed.
			out.Phase = domain.PhaseClosed
			break
		}
		score := rec.Score.String()
		if !e.valid[score] {
			out.Phase = domain.PhaseClosed
			break
		}
		out.Phase = domain.PhaseFirstBetPlaced
		out.ScoreAt36 = score
		emit(keyFirstBetPlaced, domain.Notification{
			Event:   domain.EventBetPlaced,
			Title:   fmt.Sprintf("36' %s", out.Fixture),
			Message: fmt.Sprintf("Score: %s\nBet placed: goals after 36'", score),
		})

	case domain.PhaseFirstBetPlaced:
		if rec.Status != domain.StatusFullTime && rec.Minute < chaseMinute {
			break
		}
		if firstBetWins(out.ScoreAt36, rec.Score) {
			out.Phase = domain.PhaseFirstBetWon
			emit(keyFirstBetResult, domain.Notification{
				Event:   domain.EventBetResult,
				Title:   fmt.Sprintf("Result %s", out.Fixture),
				Message: fmt.Sprintf("Score: %s (locked %s)\nFirst bet WON", rec.Score, out.ScoreAt36),
			})
			break
		}
		out.Phase = domain.PhaseFirstBetLost
		emit(keyFirstBetResult, domain.Notification{
			Event:   domain.EventBetResult,
			Title:   fmt.Sprintf("Result %s", out.Fixture),
			Message: fmt.Sprintf("Score: %s (locked %s)\nFirst bet LOST", rec.Score, out.ScoreAt36),
		})
		e.placeChase(rec, &out, emit)

	case domain.PhaseFirstBetLost:
		e.placeChase(rec, &out, emit)

	case domain.PhaseChaseBetPlaced:
		if rec.Status != domain.StatusFullTime {
			break
		}
		final := rec.Score.String()
		if final != out.ScoreAt80 {
			out.Phase = domain.PhaseChaseBetWon
			emit(keyChaseResult, domain.Notification{
				Event:   domain.EventBetResult,
				Title:   fmt.Sprintf("FT result %s", out.Fixture),
				Message: fmt.Sprintf("Score: %s\n80' chase bet WON", final),
			})
		} else {
			out.Phase = domain.PhaseChaseBetLost
			emit(keyChaseResult, domain.Notification{
				Event:   domain.EventBetResult,
				Title:   fmt.Sprintf("FT result %s", out.Fixture),
				Message: fmt.Sprintf("Score: %s\n80' chase bet LOST", final),
			})
		}

	default:
		// Terminal phases are absorbing.
	}

	return out, notes
}

// placeChase enters the chase bet. Reachable only from PhaseFirstBetLost, at
// minute >= 80, while the match is still running. At full time there is
// nothing left to chase: the lost first bet stands as the final result and
// the match closes.
func (e *Engine) placeChase(rec domain.MatchRecord, out *domain.BetState, emit func(string, domain.Notification)) {
	if out.Phase != domain.PhaseFirstBetLost {
		return
	}
	if rec.Status == domain.StatusFullTime {
		out.Phase = domain.PhaseClosed
		return
	}
	if rec.Minute < chaseMinute {
		return
	}
	score := rec.Score.String()
	out.Phase = domain.PhaseChaseBetPlaced
	out.ScoreAt80 = score
	emit(keyChasePlaced, domain.Notification{
		Event:   domain.EventChasePlaced,
		Title:   fmt.Sprintf("80' %s", out.Fixture),
		Message: fmt.Sprintf("Score: %s\nChase bet placed", score),
	})
}

// firstBetWins is the fixed settlement table for the first bet, comparing the
// current score against the scoreline locked at minute 36:
//
//	unchanged            -> lost
//	both sides scored    -> won
//	one-sided change     -> lost
func firstBetWins(locked string, current domain.Score) bool {
	if current.String() == locked {
		return false
	}
	at36, err := domain.ParseScore(locked)
	if err != nil {
		return false
	}
	return current.Home > at36.Home && current.Away > at36.Away
}
