package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies environment variable overrides, and returns the
// final Config. A missing config file is not an error: the worker can run
// entirely from defaults plus environment variables. The returned Config has
// NOT been validated; the caller should invoke Config.Validate() after Load.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides reads well-known LIVEBET_* environment variables and
// overwrites the corresponding Config fields when a variable is set. This lets
// operators inject secrets at deploy time without touching the TOML file. A
// handful of unprefixed aliases (API_KEY, TELEGRAM_TOKEN, TELEGRAM_CHAT_ID,
// VALID_36_SCORES, POLLING_INTERVAL, POLLING_DURATION) are kept for
// compatibility with existing deployments.
func applyEnvOverrides(cfg *Config) {
	// ── API ──
	setStr(&cfg.API.BaseURL, "LIVEBET_API_BASE_URL")
	setStr(&cfg.API.Key, "LIVEBET_API_KEY")
	setStr(&cfg.API.Key, "API_KEY") // compatibility alias

	// ── Notify ──
	setStr(&cfg.Notify.TelegramToken, "LIVEBET_TELEGRAM_TOKEN")
	setStr(&cfg.Notify.TelegramToken, "TELEGRAM_TOKEN") // compatibility alias
	setStr(&cfg.Notify.TelegramChatID, "LIVEBET_TELEGRAM_CHAT_ID")
	setStr(&cfg.Notify.TelegramChatID, "TELEGRAM_CHAT_ID") // compatibility alias
	setStr(&cfg.Notify.DiscordWebhookURL, "LIVEBET_DISCORD_WEBHOOK_URL")
	setStringSlice(&cfg.Notify.Events, "LIVEBET_NOTIFY_EVENTS")

	// ── Store ──
	setStr(&cfg.Store.Backend, "LIVEBET_STORE_BACKEND")
	setStr(&cfg.Store.File.Path, "LIVEBET_STORE_FILE_PATH")
	setStr(&cfg.Store.Postgres.DSN, "LIVEBET_POSTGRES_DSN")
	setStr(&cfg.Store.Postgres.Host, "LIVEBET_POSTGRES_HOST")
	setInt(&cfg.Store.Postgres.Port, "LIVEBET_POSTGRES_PORT")
	setStr(&cfg.Store.Postgres.Database, "LIVEBET_POSTGRES_DATABASE")
	setStr(&cfg.Store.Postgres.User, "LIVEBET_POSTGRES_USER")
	setStr(&cfg.Store.Postgres.Password, "LIVEBET_POSTGRES_PASSWORD")
	setStr(&cfg.Store.Postgres.SSLMode, "LIVEBET_POSTGRES_SSLMODE")
	setBool(&cfg.Store.Postgres.RunMigrations, "LIVEBET_POSTGRES_RUN_MIGRATIONS")
	setStr(&cfg.Store.Redis.Addr, "LIVEBET_REDIS_ADDR")
	setStr(&cfg.Store.Redis.Password, "LIVEBET_REDIS_PASSWORD")
	setInt(&cfg.Store.Redis.DB, "LIVEBET_REDIS_DB")
	setBool(&cfg.Store.Redis.TLSEnabled, "LIVEBET_REDIS_TLS_ENABLED")

	// ── Rules ──
	setStringSlice(&cfg.Rules.Valid36Scores, "LIVEBET_VALID_36_SCORES")
	setStringSlice(&cfg.Rules.Valid36Scores, "VALID_36_SCORES") // compatibility alias

	// ── Poll ──
	setBool(&cfg.Poll.Continuous, "LIVEBET_CONTINUOUS")
	setDuration(&cfg.Poll.Interval, "LIVEBET_POLL_INTERVAL", time.Second)
	setDuration(&cfg.Poll.Interval, "POLLING_INTERVAL", time.Second) // compatibility alias
	setDuration(&cfg.Poll.Duration, "LIVEBET_POLL_DURATION", time.Minute)
	setDuration(&cfg.Poll.Duration, "POLLING_DURATION", time.Minute) // compatibility alias

	// ── Archive ──
	setBool(&cfg.Archive.Enabled, "LIVEBET_ARCHIVE_ENABLED")
	setDuration(&cfg.Archive.Interval, "LIVEBET_ARCHIVE_INTERVAL", time.Minute)
	setStr(&cfg.Archive.Prefix, "LIVEBET_ARCHIVE_PREFIX")
	setStr(&cfg.Archive.S3.Endpoint, "LIVEBET_S3_ENDPOINT")
	setStr(&cfg.Archive.S3.Region, "LIVEBET_S3_REGION")
	setStr(&cfg.Archive.S3.Bucket, "LIVEBET_S3_BUCKET")
	setStr(&cfg.Archive.S3.AccessKey, "LIVEBET_S3_ACCESS_KEY")
	setStr(&cfg.Archive.S3.SecretKey, "LIVEBET_S3_SECRET_KEY")
	setBool(&cfg.Archive.S3.UseSSL, "LIVEBET_S3_USE_SSL")
	setBool(&cfg.Archive.S3.ForcePathStyle, "LIVEBET_S3_FORCE_PATH_STYLE")

	// ── Top-level ──
	setStr(&cfg.LogLevel, "LIVEBET_LOG_LEVEL")
}

// ---------------------------------------------------------------------------
// Typed env-var helpers. Each only mutates the target when the environment
// variable is present and non-empty.
// ---------------------------------------------------------------------------

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

// setDuration accepts either a Go duration string ("90s", "2h") or a bare
// number, which is interpreted in the given unit. The legacy POLLING_INTERVAL
// and POLLING_DURATION variables are plain seconds and minutes respectively.
func setDuration(dst *duration, key string, unit time.Duration) {
	v := os.Getenv(key)
	if v == "" {
		return
	}
	if d, err := time.ParseDuration(v); err == nil {
		dst.Duration = d
		return
	}
	if n, err := strconv.Atoi(v); err == nil && n > 0 {
		dst.Duration = time.Duration(n) * unit
	}
}

func setStringSlice(dst *[]string, key string) {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		cleaned := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				cleaned = append(cleaned, p)
			}
		}
		if len(cleaned) > 0 {
			*dst = cleaned
		}
	}
}
