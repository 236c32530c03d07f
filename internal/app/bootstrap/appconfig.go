// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). WAFFLE's CoreConfig handles
// framework-level settings (ports, TLS, logging, CORS); AppConfig is where
// everything specific to SkillArena lives.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64 // Max connection pool size
	MongoMinPoolSize uint64 // Min connection pool size

	// Session management configuration
	SessionKey    string // Secret key for signing session cookies (must be strong in production)
	SessionName   string // Cookie name for sessions (default: skillarena-session)
	SessionDomain string // Cookie domain (blank means current host)

	// Base URL for OAuth callbacks
	BaseURL string // e.g., "https://skillarena.app" or "http://localhost:3000"

	// Google OAuth configuration (optional; sign-in is hidden when unset)
	GoogleClientID     string
	GoogleClientSecret string

	// Profile picture storage (S3-compatible; uploads return 501 when unset)
	AvatarS3Region string // AWS region
	AvatarS3Bucket string // Bucket name
	AvatarS3Prefix string // Key prefix (e.g., "profile-pictures")
	AvatarBaseURL  string // Public base URL (CDN); blank derives the bucket URL

	// Background maintenance
	SweepInterval     time.Duration // How often the sweeper runs
	TournamentRuntime time.Duration // How long past its start a tournament stays ongoing
	PresenceThreshold time.Duration // How stale a heartbeat may be before a user shows offline
}
