// Package config defines the top-level configuration for the live-bet worker
// and provides loading and validation helpers.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/atho-gitrepo/36-80-live-bet/internal/domain"
)

// Config is the root configuration structure. Fields are populated from a TOML
// file and then optionally overridden by LIVEBET_* environment variables.
type Config struct {
	API      APIConfig      `toml:"api"`
	Notify   NotifyConfig   `toml:"notify"`
	Store    StoreConfig    `toml:"store"`
	Rules    RulesConfig    `toml:"rules"`
	Poll     PollConfig     `toml:"poll"`
	Archive  ArchiveConfig  `toml:"archive"`
	LogLevel string         `toml:"log_level"`
}

// APIConfig holds the football data API endpoint and credential.
type APIConfig struct {
	BaseURL string `toml:"base_url"`
	Key     string `toml:"key"`
}

// NotifyConfig holds notification channel credentials.
type NotifyConfig struct {
	TelegramToken     string   `toml:"telegram_token"`
	TelegramChatID    string   `toml:"telegram_chat_id"`
	DiscordWebhookURL string   `toml:"discord_webhook_url"`
	Events            []string `toml:"events"`
}

// StoreConfig selects and configures the decision state store backend.
type StoreConfig struct {
	// Backend is one of "file", "postgres", "redis".
	Backend  string         `toml:"backend"`
	File     FileConfig     `toml:"file"`
	Postgres PostgresConfig `toml:"postgres"`
	Redis    RedisConfig    `toml:"redis"`
}

// FileConfig holds parameters for the JSON file store backend.
type FileConfig struct {
	Path string `toml:"path"`
}

// PostgresConfig holds PostgreSQL connection parameters.
type PostgresConfig struct {
	DSN           string `toml:"dsn"`
	Host          string `toml:"host"`
	Port          int    `toml:"port"`
	Database      string `toml:"database"`
	User          string `toml:"user"`
	Password      string `toml:"password"`
	SSLMode       string `toml:"ssl_mode"`
	PoolMaxConns  int    `toml:"pool_max_conns"`
	PoolMinConns  int    `toml:"pool_min_conns"`
	RunMigrations bool   `toml:"run_migrations"`
}

// RedisConfig holds Redis connection parameters.
type RedisConfig struct {
	Addr       string `toml:"addr"`
	Password   string `toml:"password"`
	DB         int    `toml:"db"`
	PoolSize   int    `toml:"pool_size"`
	MaxRetries int    `toml:"max_retries"`
	TLSEnabled bool   `toml:"tls_enabled"`
}

// RulesConfig holds the operator-tunable betting rule parameters.
type RulesConfig struct {
	// Valid36Scores lists the scorelines eligible for the first bet at
	// minute 36, in "home-away" form.
	Valid36Scores []string `toml:"valid_36_scores"`
}

// PollConfig holds poll loop parameters.
type PollConfig struct {
	// Continuous selects the looping mode; when false the worker runs exactly
	// one poll cycle and exits.
	Continuous bool `toml:"continuous"`
	// Interval is the sleep between poll cycles in continuous mode.
	Interval duration `toml:"interval"`
	// Duration is the total continuous run budget.
	Duration duration `toml:"duration"`
}

// ArchiveConfig holds the optional S3 ledger archiver parameters.
type ArchiveConfig struct {
	Enabled  bool     `toml:"enabled"`
	Interval duration `toml:"interval"`
	Prefix   string   `toml:"prefix"`
	S3       S3Config `toml:"s3"`
}

// S3Config holds S3-compatible object storage parameters.
type S3Config struct {
	Endpoint       string `toml:"endpoint"`
	Region         string `toml:"region"`
	Bucket         string `toml:"bucket"`
	AccessKey      string `toml:"access_key"`
	SecretKey      string `toml:"secret_key"`
	UseSSL         bool   `toml:"use_ssl"`
	ForcePathStyle bool   `toml:"force_path_style"`
}

// duration is a wrapper around time.Duration that supports TOML string
// decoding (e.g. "90s", "2h").
type duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler so the TOML decoder can
// parse duration strings like "90s" or "2h".
func (d *duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText implements encoding.TextMarshaler for round-trip encoding.
func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Defaults returns a Config populated with reasonable default values.
func Defaults() Config {
	return Config{
		API: APIConfig{
			BaseURL: "https://v3.football.api-sports.io",
		},
		Notify: NotifyConfig{
			Events: []string{
				domain.EventBetPlaced,
				domain.EventBetResult,
				domain.EventChasePlaced,
				domain.EventMatchStatus,
				domain.EventError,
			},
		},
		Store: StoreConfig{
			Backend: "file",
			File: FileConfig{
				Path: "livebet_state.json",
			},
			Postgres: PostgresConfig{
				Host:          "localhost",
				Port:          5432,
				Database:      "livebet",
				User:          "postgres",
				SSLMode:       "disable",
				PoolMaxConns:  4,
				PoolMinConns:  1,
				RunMigrations: true,
			},
			Redis: RedisConfig{
				Addr:       "localhost:6379",
				PoolSize:   10,
				MaxRetries: 3,
			},
		},
		Rules: RulesConfig{
			Valid36Scores: []string{"0-0", "1-0", "0-1", "1-1"},
		},
		Poll: PollConfig{
			Continuous: false,
			Interval:   duration{60 * time.Second},
			Duration:   duration{120 * time.Minute},
		},
		Archive: ArchiveConfig{
			Enabled:  false,
			Interval: duration{1 * time.Hour},
			Prefix:   "ledger",
			S3: S3Config{
				Region:         "us-east-1",
				Bucket:         "livebet-data",
				UseSSL:         true,
				ForcePathStyle: false,
			},
		},
		LogLevel: "info",
	}
}

// validBackends enumerates the accepted values for StoreConfig.Backend.
var validBackends = map[string]bool{
	"file":     true,
	"postgres": true,
	"redis":    true,
}

// validLogLevels enumerates the accepted values for Config.LogLevel.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Validate checks Config for obviously invalid or missing values and returns a
// combined error describing every problem found.
func (c *Config) Validate() error {
	var errs []string

	if c.API.BaseURL == "" {
		errs = append(errs, "api: base_url must not be empty")
	}
	if c.API.Key == "" {
		errs = append(errs, "api: key is required (set LIVEBET_API_KEY or API_KEY)")
	}

	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Sprintf("unknown log_level %q (valid: debug, info, warn, error)", c.LogLevel))
	}

	// Notify: Telegram credentials must be set together.
	tk := c.Notify.TelegramToken != ""
	tc := c.Notify.TelegramChatID != ""
	if tk != tc {
		errs = append(errs, "notify: telegram_token and telegram_chat_id must be set together")
	}

	backend := strings.ToLower(c.Store.Backend)
	if !validBackends[backend] {
		errs = append(errs, fmt.Sprintf("store: unknown backend %q (valid: file, postgres, redis)", c.Store.Backend))
	}
	switch backend {
	case "file":
		if c.Store.File.Path == "" {
			errs = append(errs, "store: file.path must not be empty")
		}
	case "postgres":
		if strings.TrimSpace(c.Store.Postgres.DSN) == "" {
			if c.Store.Postgres.Host == "" {
				errs = append(errs, "store: postgres.host must not be empty (or set postgres.dsn)")
			}
			if c.Store.Postgres.Port <= 0 || c.Store.Postgres.Port > 65535 {
				errs = append(errs, fmt.Sprintf("store: postgres.port must be 1-65535, got %d", c.Store.Postgres.Port))
			}
			if c.Store.Postgres.Database == "" {
				errs = append(errs, "store: postgres.database must not be empty")
			}
		}
		if c.Store.Postgres.PoolMaxConns < 1 {
			errs = append(errs, "store: postgres.pool_max_conns must be >= 1")
		}
		if c.Store.Postgres.PoolMinConns < 0 || c.Store.Postgres.PoolMinConns > c.Store.Postgres.PoolMaxConns {
			errs = append(errs, "store: postgres.pool_min_conns must be between 0 and pool_max_conns")
		}
	case "redis":
		if c.Store.Redis.Addr == "" {
			errs = append(errs, "store: redis.addr must not be empty")
		}
		if c.Store.Redis.PoolSize < 1 {
			errs = append(errs, "store: redis.pool_size must be >= 1")
		}
	}

	if len(c.Rules.Valid36Scores) == 0 {
		errs = append(errs, "rules: valid_36_scores must not be empty")
	}
	for _, s := range c.Rules.Valid36Scores {
		if _, err := domain.ParseScore(s); err != nil {
			errs = append(errs, fmt.Sprintf("rules: invalid scoreline %q (expected \"home-away\", e.g. \"1-1\")", s))
		}
	}

	if c.Poll.Interval.Duration <= 0 {
		errs = append(errs, "poll: interval must be positive")
	}
	if c.Poll.Duration.Duration <= 0 {
		errs = append(errs, "poll: duration must be positive")
	}

	if c.Archive.Enabled {
		if c.Archive.S3.Bucket == "" {
			errs = append(errs, "archive: s3.bucket must not be empty when archiving is enabled")
		}
		if c.Archive.S3.Region == "" {
			errs = append(errs, "archive: s3.region must not be empty when archiving is enabled")
		}
		if c.Archive.Interval.Duration <= 0 {
			errs = append(errs, "archive: interval must be positive")
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
