package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"   validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth"     validate:"required"`
	Session  SessionConfig  `mapstructure:"session"  validate:"required"`
}

// ServerConfig contains all HTTP server related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all item repository related configuration settings.
// Driver selects the backend; URL is a postgres connection string for the
// postgres driver, or a file path (or ":memory:") for the sqlite driver,
// which is why it is not validated as a URL.
type DatabaseConfig struct {
	Driver string `mapstructure:"driver" validate:"required,oneof=postgres sqlite"`
	URL    string `mapstructure:"url"    validate:"required"`
}

// AuthConfig contains all authentication related settings.
// APIKeyHashes holds bcrypt hashes of keys accepted from trusted service
// callers; it may be empty, in which case only JWT bearer auth is accepted.
type AuthConfig struct {
	JWTSecret            string   `mapstructure:"jwt_secret"             validate:"required,min=32"`
	TokenLifetimeMinutes int      `mapstructure:"token_lifetime_minutes" validate:"required,gt=0"`
	APIKeyHashes         []string `mapstructure:"api_key_hashes"`
}

// SessionConfig contains settings for the in-memory session registry.
// ReapInterval controls how often the background reaper sweeps expired
// sessions; expiry itself is enforced lazily on access and does not depend
// on this interval.
type SessionConfig struct {
	ReapInterval time.Duration `mapstructure:"reap_interval" validate:"required,gt=0"`
}
