// Command livebet is the live-football betting worker. It loads
// configuration, wires dependencies, sets up signal handling, and runs either
// a single poll cycle (the default) or a continuous poll loop bounded by a
// wall-clock budget.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/atho-gitrepo/36-80-live-bet/internal/app"
	"github.com/atho-gitrepo/36-80-live-bet/internal/config"
)

func main() {
	configPath := flag.String("config", "config.toml", "path to configuration file")
	continuous := flag.Bool("continuous", false, "poll continuously until the duration budget is exhausted")
	interval := flag.Int("interval", 0, "seconds between polls in continuous mode (overrides config)")
	duration := flag.Int("duration", 0, "total continuous run budget in minutes (overrides config)")
	flag.Parse()

	// Setup structured JSON logger.
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Load configuration.
	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load config",
			slog.String("path", *configPath),
			slog.String("error", err.Error()),
		)
		os.Exit(1)
	}

	// Flags override file and environment settings.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "continuous":
			cfg.Poll.Continuous = *continuous
		case "interval":
			cfg.Poll.Interval.Duration = time.Duration(*interval) * time.Second
		case "duration":
			cfg.Poll.Duration.Duration = time.Duration(*duration) * time.Minute
		}
	})

	// Set log level from config.
	var level slog.Level
	switch strings.ToLower(cfg.LogLevel) {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	// Validate configuration.
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("live-bet worker starting",
		slog.Bool("continuous", cfg.Poll.Continuous),
		slog.String("config", *configPath),
	)
	logger.Info("configuration loaded", slog.Any("config", config.RedactedConfig(cfg)))

	// Create the application.
	application := app.New(cfg, logger)
	defer application.Close()

	// Setup signal handling for graceful shutdown. The poller finishes the
	// current match's state write before honouring the cancellation.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Run the application.
	if err := application.Run(ctx); err != nil {
		// context.Canceled is expected on clean shutdown.
		if errors.Is(err, context.Canceled) {
			logger.Info("worker shut down gracefully")
		} else {
			logger.Error("worker exited with error",
				slog.String("error", err.Error()),
			)
			fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
			os.Exit(1)
		}
	}

	logger.Info("live-bet worker stopped")
}
