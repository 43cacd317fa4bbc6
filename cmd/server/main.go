// Package main implements the entry point for the recall API server
// which serves spaced repetition study sessions over HTTP.
package main

import (
	"context"
	"fmt"
	"log"

	"github.com/phrazzld/recall-api/internal/config"
	"github.com/phrazzld/recall-api/internal/platform/logger"
)

// main is the entry point for the recall-api server.
// It initializes configuration, sets up logging, establishes the database
// connection, injects dependencies, and starts the HTTP server.
func main() {
	if err := run(); err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}
}

// run wires configuration, logging, storage and services together and hands
// control to the application until shutdown. Keeping the wiring out of main
// lets every failure path return an error instead of exiting directly.
func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Set up structured logging using the configured log level
	logg, err := logger.Setup(cfg.Server)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}

	// Log configuration details using structured logging
	logg.Info("Server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"database_driver", cfg.Database.Driver)

	ctx := context.Background()

	// Establish the item repository connection
	db, itemStore, err := setupAppDatabase(ctx, cfg, logg)
	if err != nil {
		return fmt.Errorf("failed to set up database: %w", err)
	}

	// Initialize the application with all its dependencies
	app, err := newApplication(cfg, logg, db, itemStore)
	if err != nil {
		// The connection is owned by the application only once
		// initialization succeeds.
		if closeErr := db.Close(); closeErr != nil {
			logg.Error("Error closing database connection", "error", closeErr)
		}
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	return app.Run(ctx)
}
