// Package app provides the top-level application lifecycle for the live-bet
// worker. It wires together the store backend, the football API client, the
// rule engine, the notifier, and the optional ledger archiver, and runs the
// poll loop in the configured mode.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/atho-gitrepo/36-80-live-bet/internal/config"
)

// App is the root application object. It owns the configuration, logger, and
// a list of cleanup functions that are called in reverse order on shutdown.
type App struct {
	cfg     *config.Config
	logger  *slog.Logger
	closers []func()
}

// New creates a new App from the given configuration and logger.
func New(cfg *config.Config, logger *slog.Logger) *App {
	return &App{
		cfg:    cfg,
		logger: logger.With(slog.String("component", "app")),
	}
}

// Run wires all dependencies, selects the operating mode, and blocks until
// the run completes or the context is cancelled.
func (a *App) Run(ctx context.Context) error {
	a.logger.InfoContext(ctx, "starting worker",
		slog.Bool("continuous", a.cfg.Poll.Continuous),
		slog.String("store_backend", a.cfg.Store.Backend),
	)

	deps, cleanup, err := Wire(ctx, a.cfg)
	if err != nil {
		return fmt.Errorf("app: wire dependencies: %w", err)
	}
	a.closers = append(a.closers, cleanup)

	if a.cfg.Poll.Continuous {
		return a.ContinuousMode(ctx, deps)
	}
	return a.OnceMode(ctx, deps)
}

// Close tears down all resources in reverse registration order. It is safe to
// call multiple times; subsequent calls are no-ops.
func (a *App) Close() {
	a.logger.Info("shutting down worker")
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
