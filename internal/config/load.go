package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// envPrefix is the prefix for all environment variables read by Load.
// Nested keys use underscores, e.g. RECALL_SERVER_PORT, RECALL_DATABASE_URL.
const envPrefix = "RECALL"

// configKeys lists every key Load understands. Each is bound to its
// environment variable explicitly because viper only discovers env-backed
// keys on its own when they also carry a default.
var configKeys = []string{
	"server.port",
	"server.log_level",
	"database.driver",
	"database.url",
	"auth.jwt_secret",
	"auth.token_lifetime_minutes",
	"auth.api_key_hashes",
	"session.reap_interval",
}

// Load reads configuration from environment variables and an optional
// config.yaml in the working directory. Environment variables take
// precedence over values from the config file.
// Returns a populated Config struct or an error if loading/validation fails.
func Load() (*Config, error) {
	v := viper.New()

	// Defaults for everything that has a sensible one. Required secrets and
	// connection strings deliberately have none.
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("database.driver", "postgres")
	v.SetDefault("auth.token_lifetime_minutes", 60)
	v.SetDefault("session.reap_interval", "1m")

	// Optional config file. A missing file is fine; a malformed one is not.
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range configKeys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind environment variable for %s: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	validate := validator.New()
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}
