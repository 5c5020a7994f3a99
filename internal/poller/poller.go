// Package poller implements the poll loop driver: it lists live fixtures,
// runs each snapshot through the rule engine against the stored decision
// state, persists every mutation, and dispatches the resulting notifications.
// Matches that drop out of the live list with a bet still open are looked up
// by id so their final result settles the bet.
package poller

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/atho-gitrepo/36-80-live-bet/internal/domain"
	"github.com/atho-gitrepo/36-80-live-bet/internal/engine"
)

// Fetcher lists the currently-live fixtures and looks up a single fixture for
// final-result resolution. Implemented by the apifootball client.
type Fetcher interface {
	LiveFixtures(ctx context.Context) ([]domain.MatchRecord, error)
	FixtureByID(ctx context.Context, id string) (domain.MatchRecord, error)
}

// Notifier delivers one notification best-effort. Implemented by
// notify.Notifier.
type Notifier interface {
	Dispatch(ctx context.Context, note domain.Notification) error
}

// Poller owns the decision state store for the lifetime of the process and
// drives one or more poll cycles. Errors it returns are store failures, which
// are fatal: continuing after a failed load or save risks duplicate bets.
// Fetch and notify failures are recovered locally and only logged.
type Poller struct {
	fetcher  Fetcher
	store    domain.TrackerStore
	engine   *engine.Engine
	notifier Notifier
	logger   *slog.Logger
}

// New creates a Poller.
func New(fetcher Fetcher, store domain.TrackerStore, eng *engine.Engine, notifier Notifier, logger *slog.Logger) *Poller {
	return &Poller{
		fetcher:  fetcher,
		store:    store,
		engine:   eng,
		notifier: notifier,
		logger:   logger.With(slog.String("component", "poller")),
	}
}

// RunOnce executes a single poll cycle. Matches are independent; each one's
// state write completes before the next match is evaluated, and a cancelled
// context stops the cycle only between matches so no write is left half done.
func (p *Poller) RunOnce(ctx context.Context) error {
	cycle := uuid.NewString()[:8]
	logger := p.logger.With(slog.String("cycle", cycle))

	records, err := p.fetcher.LiveFixtures(ctx)
	if err != nil {
		// Recovered locally: stored state is untouched and the next cycle
		// starts from the same ledger.
		logger.ErrorContext(ctx, "live fixture fetch failed, skipping cycle",
			slog.String("error", err.Error()),
		)
		return nil
	}
	logger.InfoContext(ctx, "poll cycle started", slog.Int("live_matches", len(records)))

	states, err := p.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("poller: load state: %w", err)
	}

	for _, rec := range records {
		if err := p.apply(ctx, logger, rec, states); err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}

	if err := p.resolveDeparted(ctx, logger, records, states); err != nil {
		return err
	}

	logger.InfoContext(ctx, "poll cycle complete")
	return nil
}

// apply evaluates one snapshot against the shared state map, persisting any
// mutation before dispatching its notifications.
func (p *Poller) apply(ctx context.Context, logger *slog.Logger, rec domain.MatchRecord, states map[string]domain.BetState) error {
	prev := states[rec.MatchID]
	next, notes := p.engine.Evaluate(rec, prev)

	_, known := states[rec.MatchID]
	changed := next.Phase != prev.Phase || len(notes) > 0
	if changed || !known {
		if changed {
			next.UpdatedAt = time.Now().UTC()
		}
		states[rec.MatchID] = next
		if err := p.store.Save(ctx, states); err != nil {
			return fmt.Errorf("poller: save state for %s: %w", rec.MatchID, err)
		}
		logger.InfoContext(ctx, "match evaluated",
			slog.String("match_id", rec.MatchID),
			slog.String("fixture", rec.Fixture()),
			slog.Int("minute", rec.Minute),
			slog.String("score", rec.Score.String()),
			slog.String("phase", string(next.Phase)),
		)
	}

	for _, note := range notes {
		if err := p.notifier.Dispatch(ctx, note); err != nil {
			logger.WarnContext(ctx, "notification delivery failed",
				slog.String("match_id", rec.MatchID),
				slog.String("event", note.Event),
				slog.String("error", err.Error()),
			)
		}
	}
	return nil
}

// resolveDeparted settles bets on matches that finished between polls. A
// fixture drops out of the live list at the final whistle, so a state still
// holding an open bet with no live snapshot this cycle is looked up by id and
// run through the engine with its final result. Lookup failures are recovered
// locally; the state stays open and the next cycle retries.
func (p *Poller) resolveDeparted(ctx context.Context, logger *slog.Logger, records []domain.MatchRecord, states map[string]domain.BetState) error {
	inLive := make(map[string]bool, len(records))
	for _, rec := range records {
		inLive[rec.MatchID] = true
	}

	var departed []string
	for id, st := range states {
		if !st.Phase.Terminal() && !inLive[id] {
			departed = append(departed, id)
		}
	}
	sort.Strings(departed)

	for _, id := range departed {
		rec, err := p.fetcher.FixtureByID(ctx, id)
		if err != nil {
			logger.WarnContext(ctx, "final-result lookup failed",
				slog.String("match_id", id),
				slog.String("error", err.Error()),
			)
			continue
		}
		if err := p.apply(ctx, logger, rec, states); err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
	return nil
}

// RunContinuous runs poll cycles on the given interval until the wall-clock
// budget is exhausted or ctx is cancelled. The first cycle runs immediately.
func (p *Poller) RunContinuous(ctx context.Context, interval, budget time.Duration) error {
	deadline := time.Now().Add(budget)
	p.logger.InfoContext(ctx, "continuous polling started",
		slog.Duration("interval", interval),
		slog.Duration("budget", budget),
	)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	if err := p.RunOnce(ctx); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if time.Now().After(deadline) {
				p.logger.InfoContext(ctx, "run budget exhausted, stopping")
				return nil
			}
			if err := p.RunOnce(ctx); err != nil {
				return err
			}
		}
	}
}
