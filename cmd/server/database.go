package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // Register pgx driver for database/sql

	"github.com/phrazzld/recall-api/internal/config"
	"github.com/phrazzld/recall-api/internal/platform/postgres"
	"github.com/phrazzld/recall-api/internal/platform/sqlite"
	"github.com/phrazzld/recall-api/internal/store"
)

// setupAppDatabase establishes a connection to the configured item repository
// backend and brings its schema up to date. Returns the database handle and
// an item store bound to it, or an error if the connection fails.
func setupAppDatabase(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
) (*sql.DB, store.ItemStore, error) {
	switch cfg.Database.Driver {
	case "postgres":
		return setupPostgres(ctx, cfg, logger)
	case "sqlite":
		return setupSQLite(ctx, cfg, logger)
	default:
		// config validation rejects unknown drivers before we get here
		return nil, nil, fmt.Errorf("unsupported database driver: %q", cfg.Database.Driver)
	}
}

// setupPostgres opens a pooled postgres connection and runs pending
// migrations before handing the store to the caller.
func setupPostgres(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
) (*sql.DB, store.ItemStore, error) {
	db, err := sql.Open("pgx", cfg.Database.URL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	// Configure connection pool with reasonable defaults
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	// Test the connection
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		closeDB(db, logger)
		return nil, nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := postgres.RunMigrations(db, logger); err != nil {
		closeDB(db, logger)
		return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	logger.Info("Database connection established", "driver", "postgres")
	return db, postgres.NewPostgresItemStore(db, logger), nil
}

// setupSQLite opens a sqlite database. Open applies the schema itself, so no
// separate migration step is needed.
func setupSQLite(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
) (*sql.DB, store.ItemStore, error) {
	db, err := sqlite.Open(ctx, cfg.Database.URL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}

	logger.Info("Database connection established", "driver", "sqlite")
	return db, sqlite.NewSQLiteItemStore(db, logger), nil
}

// closeDB closes a connection whose setup failed partway through.
func closeDB(db *sql.DB, logger *slog.Logger) {
	if err := db.Close(); err != nil {
		logger.Error("Error closing database connection", "error", err)
	}
}
