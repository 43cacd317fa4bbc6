// Package config loads application settings from RECALL_-prefixed
// environment variables (optionally seeded by a config.yaml), applies
// defaults, and validates the result before any component starts.
package config
