package config

import (
	"strings"
	"testing"
	"time"
)

func validConfig() Config {
	cfg := Defaults()
	cfg.API.Key = "secret"
	return cfg
}

func TestDefaultsValidateWithKey(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults with api key should validate: %v", err)
	}
	if cfg.Poll.Interval.Duration != 60*time.Second {
		t.Errorf("default interval = %s", cfg.Poll.Interval.Duration)
	}
	if cfg.Poll.Duration.Duration != 120*time.Minute {
		t.Errorf("default duration = %s", cfg.Poll.Duration.Duration)
	}
}

func TestValidateMissingKey(t *testing.T) {
	cfg := Defaults()
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "api: key is required") {
		t.Fatalf("err = %v, want missing api key", err)
	}
}

func TestValidateBadScoreline(t *testing.T) {
	cfg := validConfig()
	cfg.Rules.Valid36Scores = []string{"1-1", "draw"}
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), `invalid scoreline "draw"`) {
		t.Fatalf("err = %v, want invalid scoreline", err)
	}
}

func TestValidateUnknownBackend(t *testing.T) {
	cfg := validConfig()
	cfg.Store.Backend = "firestore"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unknown store backend")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("API_KEY", "from-env")
	t.Setenv("VALID_36_SCORES", "1-1, 2-2 ,3-3")
	t.Setenv("POLLING_INTERVAL", "90")
	t.Setenv("POLLING_DURATION", "2h")
	t.Setenv("LIVEBET_STORE_BACKEND", "redis")

	cfg := Defaults()
	applyEnvOverrides(&cfg)

	if cfg.API.Key != "from-env" {
		t.Errorf("api key = %q", cfg.API.Key)
	}
	want := []string{"1-1", "2-2", "3-3"}
	if len(cfg.Rules.Valid36Scores) != len(want) {
		t.Fatalf("valid scores = %v", cfg.Rules.Valid36Scores)
	}
	for i, s := range want {
		if cfg.Rules.Valid36Scores[i] != s {
			t.Errorf("valid scores[%d] = %q, want %q", i, cfg.Rules.Valid36Scores[i], s)
		}
	}
	if cfg.Poll.Interval.Duration != 90*time.Second {
		t.Errorf("interval = %s, want 90s", cfg.Poll.Interval.Duration)
	}
	if cfg.Poll.Duration.Duration != 2*time.Hour {
		t.Errorf("duration = %s, want 2h", cfg.Poll.Duration.Duration)
	}
	if cfg.Store.Backend != "redis" {
		t.Errorf("backend = %q", cfg.Store.Backend)
	}
}

func TestRedactedConfig(t *testing.T) {
	cfg := validConfig()
	cfg.Notify.TelegramToken = "tok"
	cfg.Notify.TelegramChatID = "chat"
	cfg.Store.Postgres.Password = "pw"

	red := RedactedConfig(&cfg)
	if red.API.Key != "***" || red.Notify.TelegramToken != "***" || red.Store.Postgres.Password != "***" {
		t.Errorf("secrets not redacted: %+v", red)
	}
	if cfg.API.Key != "secret" {
		t.Errorf("original mutated: %q", cfg.API.Key)
	}
	if red.Notify.TelegramChatID != "chat" {
		t.Errorf("chat id should not be redacted")
	}
}
