package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	s3blob "github.com/atho-gitrepo/36-80-live-bet/internal/blob/s3"
	"github.com/atho-gitrepo/36-80-live-bet/internal/config"
	"github.com/atho-gitrepo/36-80-live-bet/internal/domain"
	"github.com/atho-gitrepo/36-80-live-bet/internal/engine"
	"github.com/atho-gitrepo/36-80-live-bet/internal/notify"
	"github.com/atho-gitrepo/36-80-live-bet/internal/platform/apifootball"
	filestore "github.com/atho-gitrepo/36-80-live-bet/internal/store/file"
	"github.com/atho-gitrepo/36-80-live-bet/internal/store/postgres"
	redisstore "github.com/atho-gitrepo/36-80-live-bet/internal/store/redis"
)

// Dependencies bundles everything the operating modes need.
type Dependencies struct {
	Store    domain.TrackerStore
	Fetcher  *apifootball.Client
	Engine   *engine.Engine
	Notifier *notify.Notifier
	Archiver *s3blob.Archiver // nil unless archiving is enabled
}

// Wire constructs all concrete dependency implementations from the given
// configuration and returns them together with a cleanup function that should
// be called on shutdown to release resources.
func Wire(ctx context.Context, cfg *config.Config) (*Dependencies, func(), error) {
	logger := slog.Default()

	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	deps := &Dependencies{
		Fetcher: apifootball.NewClient(cfg.API.BaseURL, cfg.API.Key),
		Engine:  engine.New(engine.Config{ValidScores: cfg.Rules.Valid36Scores}),
	}

	// --- Decision state store ---
	switch strings.ToLower(cfg.Store.Backend) {
	case "file":
		deps.Store = filestore.New(cfg.Store.File.Path)

	case "postgres":
		pgClient, err := postgres.New(ctx, postgres.ClientConfig{
			DSN:      cfg.Store.Postgres.DSN,
			Host:     cfg.Store.Postgres.Host,
			Port:     cfg.Store.Postgres.Port,
			Database: cfg.Store.Postgres.Database,
			User:     cfg.Store.Postgres.User,
			Password: cfg.Store.Postgres.Password,
			SSLMode:  cfg.Store.Postgres.SSLMode,
			MaxConns: cfg.Store.Postgres.PoolMaxConns,
			MinConns: cfg.Store.Postgres.PoolMinConns,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: postgres: %w", err)
		}
		closers = append(closers, pgClient.Close)

		if cfg.Store.Postgres.RunMigrations {
			if err := pgClient.RunMigrations(ctx); err != nil {
				cleanup()
				return nil, nil, fmt.Errorf("wire: postgres migrations: %w", err)
			}
		}
		deps.Store = postgres.NewTrackerStore(pgClient.Pool())

	case "redis":
		redisClient, err := redisstore.New(ctx, redisstore.ClientConfig{
			Addr:       cfg.Store.Redis.Addr,
			Password:   cfg.Store.Redis.Password,
			DB:         cfg.Store.Redis.DB,
			PoolSize:   cfg.Store.Redis.PoolSize,
			MaxRetries: cfg.Store.Redis.MaxRetries,
			TLSEnabled: cfg.Store.Redis.TLSEnabled,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: redis: %w", err)
		}
		closers = append(closers, func() { _ = redisClient.Close() })
		deps.Store = redisstore.NewTrackerStore(redisClient)

	default:
		cleanup()
		return nil, nil, fmt.Errorf("wire: unsupported store backend %q", cfg.Store.Backend)
	}

	// --- Notifications ---
	var senders []notify.Sender
	if cfg.Notify.TelegramToken != "" && cfg.Notify.TelegramChatID != "" {
		senders = append(senders, notify.NewTelegramSender(
			cfg.Notify.TelegramToken,
			cfg.Notify.TelegramChatID,
		))
	}
	if cfg.Notify.DiscordWebhookURL != "" {
		senders = append(senders, notify.NewDiscordSender(cfg.Notify.DiscordWebhookURL))
	}
	deps.Notifier = notify.NewNotifier(senders, cfg.Notify.Events, logger)

	// --- Ledger archiver (optional) ---
	if cfg.Archive.Enabled {
		s3Client, err := s3blob.New(ctx, s3blob.ClientConfig{
			Endpoint:       cfg.Archive.S3.Endpoint,
			Region:         cfg.Archive.S3.Region,
			Bucket:         cfg.Archive.S3.Bucket,
			AccessKey:      cfg.Archive.S3.AccessKey,
			SecretKey:      cfg.Archive.S3.SecretKey,
			UseSSL:         cfg.Archive.S3.UseSSL,
			ForcePathStyle: cfg.Archive.S3.ForcePathStyle,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: s3: %w", err)
		}
		closers = append(closers, func() { _ = s3Client.Close() })

		deps.Archiver = s3blob.NewArchiver(
			s3blob.NewWriter(s3Client),
			deps.Store,
			cfg.Archive.Prefix,
			logger,
		)
	}

	return deps, cleanup, nil
}
