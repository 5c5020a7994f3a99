package app

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/atho-gitrepo/36-80-live-bet/internal/poller"
)

// OnceMode runs exactly one poll cycle and exits. With archiving enabled a
// single ledger export follows the cycle, so cron-style deployments of the
// one-shot mode still produce snapshots.
func (a *App) OnceMode(ctx context.Context, deps *Dependencies) error {
	p := poller.New(deps.Fetcher, deps.Store, deps.Engine, deps.Notifier, a.logger)

	if err := p.RunOnce(ctx); err != nil {
		return fmt.Errorf("app: poll cycle: %w", err)
	}

	if deps.Archiver != nil {
		if _, err := deps.Archiver.ArchiveOnce(ctx); err != nil {
			// The cycle itself succeeded; a failed export is not fatal.
			a.logger.WarnContext(ctx, "ledger export failed", "error", err.Error())
		}
	}
	return nil
}

// ContinuousMode runs the poll loop on its configured interval until the run
// budget is exhausted, with the ledger archiver ticking alongside it. Either
// goroutine failing stops the other via the shared errgroup context.
func (a *App) ContinuousMode(ctx context.Context, deps *Dependencies) error {
	p := poller.New(deps.Fetcher, deps.Store, deps.Engine, deps.Notifier, a.logger)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		// Cancel so the archiver stops once the run budget is exhausted.
		defer cancel()
		err := p.RunContinuous(ctx, a.cfg.Poll.Interval.Duration, a.cfg.Poll.Duration.Duration)
		if err != nil && ctx.Err() == nil {
			return fmt.Errorf("app: poll loop: %w", err)
		}
		return err
	})

	if deps.Archiver != nil {
		g.Go(func() error {
			err := deps.Archiver.RunLoop(ctx, a.cfg.Archive.Interval.Duration)
			if ctx.Err() != nil {
				return nil // clean shutdown
			}
			return fmt.Errorf("app: archiver: %w", err)
		})
	}

	return g.Wait()
}
