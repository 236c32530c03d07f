// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"time"

	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// appConfigKeys defines the configuration keys for SkillArena.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, session_name, etc.
//   - Environment variables: SKILLARENA_MONGO_URI, SKILLARENA_SESSION_NAME, etc.
//   - Command-line flags: --mongo_uri, --session_name, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "skillarena", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size"},

	{Name: "session_key", Default: "dev-only-change-me-please-0123456789ABCDEF", Desc: "Session signing key (must be strong in production)"},
	{Name: "session_name", Default: "skillarena-session", Desc: "Session cookie name"},
	{Name: "session_domain", Default: "", Desc: "Session cookie domain (blank means current host)"},

	{Name: "base_url", Default: "http://localhost:3000", Desc: "Base URL for OAuth callbacks"},

	// Google OAuth configuration
	{Name: "google_client_id", Default: "", Desc: "Google OAuth2 client ID"},
	{Name: "google_client_secret", Default: "", Desc: "Google OAuth2 client secret"},

	// Profile picture storage
	{Name: "avatar_s3_region", Default: "", Desc: "AWS region for the avatar bucket"},
	{Name: "avatar_s3_bucket", Default: "", Desc: "S3 bucket for profile pictures (blank disables uploads)"},
	{Name: "avatar_s3_prefix", Default: "profile-pictures", Desc: "S3 key prefix for profile pictures"},
	{Name: "avatar_base_url", Default: "", Desc: "Public base URL for uploaded pictures (blank derives the bucket URL)"},

	// Background maintenance
	{Name: "sweep_interval", Default: "1m", Desc: "How often tournament and presence sweeps run (e.g., 1m, 30s)"},
	{Name: "tournament_runtime", Default: "6h", Desc: "How long past its start a tournament stays ongoing"},
	{Name: "presence_threshold", Default: "5m", Desc: "How stale a heartbeat may be before a user shows offline"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig handles .env files, config files,
// environment variables (WAFFLE_* for core, SKILLARENA_* for app), and
// command-line flags, merged with precedence: flags > env > files > defaults.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "SKILLARENA", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		SessionKey:    appValues.String("session_key"),
		SessionName:   appValues.String("session_name"),
		SessionDomain: appValues.String("session_domain"),

		BaseURL: appValues.String("base_url"),

		GoogleClientID:     appValues.String("google_client_id"),
		GoogleClientSecret: appValues.String("google_client_secret"),

		AvatarS3Region: appValues.String("avatar_s3_region"),
		AvatarS3Bucket: appValues.String("avatar_s3_bucket"),
		AvatarS3Prefix: appValues.String("avatar_s3_prefix"),
		AvatarBaseURL:  appValues.String("avatar_base_url"),

		SweepInterval:     appValues.Duration("sweep_interval", time.Minute),
		TournamentRuntime: appValues.Duration("tournament_runtime", 6*time.Hour),
		PresenceThreshold: appValues.Duration("presence_threshold", 5*time.Minute),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation before any backends
// are touched, so misconfiguration fails startup with a clear message.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}

	if coreCfg.Env == "prod" && appCfg.SessionKey == "dev-only-change-me-please-0123456789ABCDEF" {
		return fmt.Errorf("session_key must be changed from the development default in production")
	}

	if appCfg.SweepInterval <= 0 || appCfg.TournamentRuntime <= 0 || appCfg.PresenceThreshold <= 0 {
		return fmt.Errorf("sweep_interval, tournament_runtime, and presence_threshold must be positive")
	}

	return nil
}
