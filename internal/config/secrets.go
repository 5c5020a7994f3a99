package config

// RedactedConfig returns a shallow copy of cfg with sensitive fields replaced
// by the redaction placeholder "***". Use this when logging or printing the
// active configuration so secrets are never accidentally exposed.
func RedactedConfig(cfg *Config) Config {
	out := *cfg // shallow copy of the top-level struct

	redact(&out.API.Key)
	redact(&out.Notify.TelegramToken)
	redact(&out.Notify.DiscordWebhookURL)
	redact(&out.Store.Postgres.DSN)
	redact(&out.Store.Postgres.Password)
	redact(&out.Store.Redis.Password)
	redact(&out.Archive.S3.AccessKey)
	redact(&out.Archive.S3.SecretKey)

	// Copy slices so callers cannot mutate the original through the redacted
	// copy.
	if cfg.Notify.Events != nil {
		out.Notify.Events = make([]string, len(cfg.Notify.Events))
		copy(out.Notify.Events, cfg.Notify.Events)
	}
	if cfg.Rules.Valid36Scores != nil {
		out.Rules.Valid36Scores = make([]string, len(cfg.Rules.Valid36Scores))
		copy(out.Rules.Valid36Scores, cfg.Rules.Valid36Scores)
	}

	return out
}

const redacted = "***"

// redact replaces a non-empty string with the redacted placeholder.
func redact(s *string) {
	if *s != "" {
		*s = redacted
	}
}
