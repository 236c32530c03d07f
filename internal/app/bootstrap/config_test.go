package bootstrap

import (
	"testing"
	"time"

	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

func validAppConfig() AppConfig {
	return AppConfig{
		MongoURI:          "mongodb://localhost:27017",
		MongoDatabase:     "skillarena",
		SessionKey:        "a-strong-key-with-plenty-of-entropy-123456",
		SweepInterval:     time.Minute,
		TournamentRuntime: 6 * time.Hour,
		PresenceThreshold: 5 * time.Minute,
	}
}

func TestValidateConfig(t *testing.T) {
	logger := zap.NewNop()

	t.Run("accepts a valid config", func(t *testing.T) {
		if err := ValidateConfig(&config.CoreConfig{Env: "dev"}, validAppConfig(), logger); err != nil {
			t.Errorf("expected valid config to pass, got %v", err)
		}
	})

	t.Run("rejects a malformed mongo uri", func(t *testing.T) {
		cfg := validAppConfig()
		cfg.MongoURI = "not-a-mongo-uri"
		if err := ValidateConfig(&config.CoreConfig{Env: "dev"}, cfg, logger); err == nil {
			t.Error("expected malformed URI to fail validation")
		}
	})

	t.Run("rejects the default session key in prod", func(t *testing.T) {
		cfg := validAppConfig()
		cfg.SessionKey = "dev-only-change-me-please-0123456789ABCDEF"
		if err := ValidateConfig(&config.CoreConfig{Env: "prod"}, cfg, logger); err == nil {
			t.Error("expected default session key to fail in prod")
		}
	})

	t.Run("rejects non-positive sweep settings", func(t *testing.T) {
		cfg := validAppConfig()
		cfg.SweepInterval = 0
		if err := ValidateConfig(&config.CoreConfig{Env: "dev"}, cfg, logger); err == nil {
			t.Error("expected zero sweep interval to fail validation")
		}
	})
}
