package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/phrazzld/recall-api/internal/config"
	"github.com/phrazzld/recall-api/internal/domain/srs"
	"github.com/phrazzld/recall-api/internal/service/auth"
	"github.com/phrazzld/recall-api/internal/service/study"
	"github.com/phrazzld/recall-api/internal/session"
	"github.com/phrazzld/recall-api/internal/store"
)

// application holds all the shared application dependencies to simplify management
// and ensure proper cleanup on shutdown.
type application struct {
	// Configuration
	config *config.Config

	// Core services
	logger *slog.Logger
	db     *sql.DB

	// Stores (using interfaces for proper abstraction)
	itemStore    store.ItemStore
	sessionStore *session.Store

	// Service interfaces
	jwtService     auth.JWTService
	apiKeyVerifier *auth.APIKeyVerifier
	srsService     srs.Service
	studyService   study.StudyService

	// Background maintenance
	reaper *session.Reaper
}

// newApplication creates a new application instance with all dependencies initialized.
// It accepts core dependencies like configuration, logger, and database connection that
// must be established before application initialization.
func newApplication(
	cfg *config.Config,
	logger *slog.Logger,
	db *sql.DB,
	itemStore store.ItemStore,
) (*application, error) {
	app := &application{
		config:    cfg,
		logger:    logger,
		db:        db,
		itemStore: itemStore,
	}

	// Initialize JWT service
	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		"token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes)

	// Initialize API key verifier for trusted service callers
	app.apiKeyVerifier = auth.NewAPIKeyVerifier(cfg.Auth.APIKeyHashes)
	if len(cfg.Auth.APIKeyHashes) > 0 {
		logger.Info("API key authentication enabled",
			"configured_keys", len(cfg.Auth.APIKeyHashes))
	}

	// Initialize SRS scheduler
	app.srsService = srs.NewDefaultService()

	// Initialize the in-memory session registry and start its reaper
	app.sessionStore = session.NewStore(app.srsService, logger)
	app.reaper = session.NewReaper(app.sessionStore, cfg.Session.ReapInterval, logger)
	app.reaper.Start()

	// Initialize study service
	app.studyService = study.NewStudyService(
		app.sessionStore,
		app.itemStore,
		app.srsService,
		logger,
	)

	logger.Info("Application initialized successfully")
	return app, nil
}

// Run starts the application server, handling lifecycle and cleanup.
// It returns an error if the server fails to start or encounters problems.
func (app *application) Run(ctx context.Context) error {
	// Set up router using the application dependencies
	router := app.setupRouter()

	// Start the HTTP server
	err := app.startHTTPServer(ctx, router)
	if err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	// Stop the session reaper
	if app.reaper != nil {
		app.reaper.Stop()
	}

	// Close database connection
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("Error closing database connection", "error", err)
		}
	}

	app.logger.Info("Application shutdown completed")
}
