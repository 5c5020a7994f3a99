package engine

import (
	"reflect"
	"strings"
	"testing"

	"github.com/atho-gitrepo/36-80-live-bet/internal/domain"
)

func newTestEngine() *Engine {
	return New(Config{ValidScores: []string{"0-0", "1-0", "0-1", "1-1"}})
}

func liveRecord(id string, minute, home, away int) domain.MatchRecord {
	return domain.MatchRecord{
		MatchID: id,
		League:  "Premier League",
		Home:    "Alpha",
		Away:    "Beta",
		Minute:  minute,
		Score:   domain.Score{Home: home, Away: away},
		Status:  domain.StatusLive,
	}
}

func TestFirstBetPlacedForAllValidScores(t *testing.T) {
	e := newTestEngine()
	for _, score := range []domain.Score{{Home: 0, Away: 0}, {Home: 1, Away: 0}, {Home: 0, Away: 1}, {Home: 1, Away: 1}} {
		rec := liveRecord("m1", 36, score.Home, score.Away)
		st, notes := e.Evaluate(rec, domain.BetState{})

		if st.Phase != domain.PhaseFirstBetPlaced {
			t.Errorf("score %s: phase = %s, want %s", score, st.Phase, domain.PhaseFirstBetPlaced)
		}
		if st.ScoreAt36 != score.String() {
			t.Errorf("score %s: score_at_36 = %q", score, st.ScoreAt36)
		}
		if len(notes) != 1 {
			t.Fatalf("score %s: got %d notifications, want 1", score, len(notes))
		}
		if notes[0].Event != domain.EventBetPlaced {
			t.Errorf("score %s: event = %s", score, notes[0].Event)
		}
	}
}

func TestInvalidScoreAt36Closes(t *testing.T) {
	e := newTestEngine()
	for _, score := range []domain.Score{{Home: 2, Away: 0}, {Home: 0, Away: 2}, {Home: 2, Away: 1}, {Home: 3, Away: 3}} {
		rec := liveRecord("m2", 36, score.Home, score.Away)
		st, notes := e.Evaluate(rec, domain.BetState{})

		if st.Phase != domain.PhaseClosed {
			t.Errorf("score %s: phase = %s, want %s", score, st.Phase, domain.PhaseClosed)
		}
		for _, n := range notes {
			if n.Event == domain.EventBetPlaced {
				t.Errorf("score %s: unexpected bet placement notification", score)
			}
		}
	}
}

func TestScenarioMinute36Tie(t *testing.T) {
	e := newTestEngine()
	rec := liveRecord("M1", 36, 1, 1)
	st, notes := e.Evaluate(rec, domain.BetState{})

	if st.Phase != domain.PhaseFirstBetPlaced {
		t.Fatalf("phase = %s, want %s", st.Phase, domain.PhaseFirstBetPlaced)
	}
	if st.ScoreAt36 != "1-1" {
		t.Fatalf("score_at_36 = %q, want 1-1", st.ScoreAt36)
	}
	if len(notes) != 1 {
		t.Fatalf("got %d notifications, want 1", len(notes))
	}
	text := notes[0].Title + "\n" + notes[0].Message
	if !strings.Contains(text, "1-1") || !strings.Contains(text, "36") {
		t.Errorf("notification should mention score and minute: %q", text)
	}
}

func TestScenarioLostThenChase(t *testing.T) {
	e := newTestEngine()

	st := domain.NewBetState("M1")
	st.Phase = domain.PhaseFirstBetPlaced
	st.ScoreAt36 = "1-1"

	rec := liveRecord("M1", 80, 1, 2)
	next, notes := e.Evaluate(rec, st)

	if next.Phase != domain.PhaseChaseBetPlaced {
		t.Fatalf("phase = %s, want %s", next.Phase, domain.PhaseChaseBetPlaced)
	}
	if next.ScoreAt80 != "1-2" {
		t.Errorf("score_at_80 = %q, want 1-2", next.ScoreAt80)
	}
	if len(notes) != 2 {
		t.Fatalf("got %d notifications, want result + chase", len(notes))
	}
	if notes[0].Event != domain.EventBetResult || !strings.Contains(notes[0].Message, "LOST") {
		t.Errorf("first notification = %+v, want lost result", notes[0])
	}
	if notes[1].Event != domain.EventChasePlaced {
		t.Errorf("second notification = %+v, want chase placement", notes[1])
	}
}

func TestFirstBetSettlementTable(t *testing.T) {
	cases := []struct {
		locked  string
		current domain.Score
		won     bool
	}{
		{"1-1", domain.Score{Home: 1, Away: 1}, false}, // unchanged
		{"1-1", domain.Score{Home: 1, Away: 2}, false}, // one-sided
		{"1-1", domain.Score{Home: 3, Away: 1}, false}, // one-sided
		{"1-1", domain.Score{Home: 2, Away: 2}, true},  // both scored
		{"0-0", domain.Score{Home: 1, Away: 1}, true},
		{"0-0", domain.Score{Home: 0, Away: 1}, false},
		{"1-0", domain.Score{Home: 2, Away: 1}, true},
		{"0-1", domain.Score{Home: 1, Away: 1}, false},
	}
	for _, c := range cases {
		if got := firstBetWins(c.locked, c.current); got != c.won {
			t.Errorf("firstBetWins(%s, %s) = %v, want %v", c.locked, c.current, got, c.won)
		}
	}
}

func TestFirstBetWonAtMinute80(t *testing.T) {
	e := newTestEngine()

	st := domain.NewBetState("m3")
	st.Phase = domain.PhaseFirstBetPlaced
	st.ScoreAt36 = "0-0"

	next, notes := e.Evaluate(liveRecord("m3", 81, 1, 1), st)
	if next.Phase != domain.PhaseFirstBetWon {
		t.Fatalf("phase = %s, want %s", next.Phase, domain.PhaseFirstBetWon)
	}
	if len(notes) != 1 || !strings.Contains(notes[0].Message, "WON") {
		t.Fatalf("notes = %+v, want single won result", notes)
	}
}

func TestIdempotenceNoMinuteAdvance(t *testing.T) {
	e := newTestEngine()

	rec := liveRecord("m4", 36, 1, 1)
	st1, notes1 := e.Evaluate(rec, domain.BetState{})
	if len(notes1) != 1 {
		t.Fatalf("first pass: %d notifications", len(notes1))
	}

	st2, notes2 := e.Evaluate(rec, st1)
	if len(notes2) != 0 {
		t.Errorf("second pass emitted %d notifications, want 0", len(notes2))
	}
	if !reflect.DeepEqual(st1, st2) {
		t.Errorf("second pass changed state:\n first = %+v\nsecond = %+v", st1, st2)
	}
}

func TestPhaseNeverRegresses(t *testing.T) {
	e := newTestEngine()

	seq := []domain.MatchRecord{
		liveRecord("m5", 20, 0, 0),
		liveRecord("m5", 36, 1, 1),
		{MatchID: "m5", Home: "Alpha", Away: "Beta", Minute: 45, Score: domain.Score{Home: 1, Away: 1}, Status: domain.StatusHalfTime},
		liveRecord("m5", 60, 1, 1),
		liveRecord("m5", 80, 1, 1),
		liveRecord("m5", 85, 1, 2),
		{MatchID: "m5", Home: "Alpha", Away: "Beta", Minute: 90, Score: domain.Score{Home: 1, Away: 2}, Status: domain.StatusFullTime},
	}

	st := domain.BetState{}
	rank := 0
	for _, rec := range seq {
		var notes []domain.Notification
		st, notes = e.Evaluate(rec, st)
		if st.Phase.Rank() < rank {
			t.Fatalf("minute %d: phase %s regressed below rank %d", rec.Minute, st.Phase, rank)
		}
		rank = st.Phase.Rank()
		_ = notes
	}

	// 1-1 held to 80 (first bet lost, chase at 1-1), final 1-2 -> chase won.
	if st.Phase != domain.PhaseChaseBetWon {
		t.Fatalf("final phase = %s, want %s", st.Phase, domain.PhaseChaseBetWon)
	}
}

func TestChaseRequiresFirstBetLost(t *testing.T) {
	e := newTestEngine()

	for _, phase := range []domain.Phase{
		domain.PhaseNone,
		domain.PhaseFirstBetWon,
		domain.PhaseChaseBetWon,
		domain.PhaseChaseBetLost,
		domain.PhaseClosed,
	} {
		st := domain.NewBetState("m6")
		st.Phase = phase
		next, _ := e.Evaluate(liveRecord("m6", 82, 2, 0), st)
		if next.Phase == domain.PhaseChaseBetPlaced {
			t.Errorf("chase bet placed from phase %s", phase)
		}
	}

	// And from first_bet_lost below minute 80 it stays put.
	st := domain.NewBetState("m6")
	st.Phase = domain.PhaseFirstBetLost
	next, _ := e.Evaluate(liveRecord("m6", 79, 1, 1), st)
	if next.Phase != domain.PhaseFirstBetLost {
		t.Errorf("phase = %s, want unchanged %s", next.Phase, domain.PhaseFirstBetLost)
	}
}

func TestStatusNotificationsOncePerStatus(t *testing.T) {
	e := newTestEngine()

	rec := domain.MatchRecord{
		MatchID: "m7", Home: "Alpha", Away: "Beta",
		Minute: 45, Score: domain.Score{Home: 2, Away: 0}, Status: domain.StatusHalfTime,
	}
	st, notes := e.Evaluate(rec, domain.BetState{})

	var statusNotes int
	for _, n := range notes {
		if n.Event == domain.EventMatchStatus {
			statusNotes++
		}
	}
	if statusNotes != 1 {
		t.Fatalf("got %d half-time notifications, want 1", statusNotes)
	}

	_, notes = e.Evaluate(rec, st)
	if len(notes) != 0 {
		t.Errorf("repeat half-time snapshot emitted %d notifications", len(notes))
	}
}

func TestFullTimeResolvesOpenPhases(t *testing.T) {
	e := newTestEngine()

	ft := func(home, away int) domain.MatchRecord {
		return domain.MatchRecord{
			MatchID: "m8", Home: "Alpha", Away: "Beta",
			Minute: 90, Score: domain.Score{Home: home, Away: away}, Status: domain.StatusFullTime,
		}
	}

	// Open first bet resolves at full time; no chase after the whistle, so
	// the lost bet is final and the match closes.
	st := domain.NewBetState("m8")
	st.Phase = domain.PhaseFirstBetPlaced
	st.ScoreAt36 = "1-1"
	next, notes1 := e.Evaluate(ft(1, 1), st)
	if next.Phase != domain.PhaseClosed {
		t.Errorf("phase = %s, want %s", next.Phase, domain.PhaseClosed)
	}
	if !next.Phase.Terminal() {
		t.Error("first bet lost at full time should settle to a terminal phase")
	}
	var lostNote bool
	for _, n := range notes1 {
		if n.Event == domain.EventBetResult && strings.Contains(n.Message, "LOST") {
			lostNote = true
		}
	}
	if !lostNote {
		t.Error("missing lost-result notification at full time")
	}

	// A lost first bet still waiting for its chase window also closes at
	// full time.
	st = domain.NewBetState("m8")
	st.Phase = domain.PhaseFirstBetLost
	next, _ = e.Evaluate(ft(2, 1), st)
	if next.Phase != domain.PhaseClosed {
		t.Errorf("phase = %s, want %s", next.Phase, domain.PhaseClosed)
	}

	// Open chase bet resolves against the score locked at 80'.
	st = domain.NewBetState("m8")
	st.Phase = domain.PhaseChaseBetPlaced
	st.ScoreAt80 = "1-1"
	next, notes := e.Evaluate(ft(2, 1), st)
	if next.Phase != domain.PhaseChaseBetWon {
		t.Errorf("phase = %s, want %s", next.Phase, domain.PhaseChaseBetWon)
	}
	found := false
	for _, n := range notes {
		if n.Event == domain.EventBetResult && strings.Contains(n.Message, "WON") {
			found = true
		}
	}
	if !found {
		t.Errorf("missing chase result notification: %+v", notes)
	}

	// Never bet on this match: full time closes it.
	next, _ = e.Evaluate(ft(0, 0), domain.BetState{MatchID: "m8", Phase: domain.PhaseNone})
	if next.Phase != domain.PhaseClosed {
		t.Errorf("phase = %s, want %s", next.Phase, domain.PhaseClosed)
	}
}

func TestBetWindowMissed(t *testing.T) {
	e := newTestEngine()
	st, notes := e.Evaluate(liveRecord("m9", 83, 1, 1), domain.BetState{})
	if st.Phase != domain.PhaseClosed {
		t.Fatalf("phase = %s, want %s", st.Phase, domain.PhaseClosed)
	}
	if len(notes) != 0 {
		t.Errorf("got %d notifications, want 0", len(notes))
	}
}

func TestEvaluateDoesNotMutateInput(t *testing.T) {
	e := newTestEngine()
	st := domain.NewBetState("m10")
	before := st.Clone()

	e.Evaluate(liveRecord("m10", 36, 1, 1), st)
	if !reflect.DeepEqual(st, before) {
		t.Errorf("input state mutated: %+v", st)
	}
}
