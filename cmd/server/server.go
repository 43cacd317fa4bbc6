package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"
)

// shutdownTimeout bounds how long in-flight requests may run once shutdown
// has been requested.
const shutdownTimeout = 10 * time.Second

// startHTTPServer runs the HTTP server until ctx is cancelled or a SIGINT or
// SIGTERM arrives, then drains in-flight requests and releases application
// resources.
func (app *application) startHTTPServer(ctx context.Context, router http.Handler) error {
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", app.config.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	signalCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		app.logger.Info("Starting server", "port", app.config.Server.Port)
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		// Shutdown has not been requested yet, so this is a bind or
		// accept-loop failure, never http.ErrServerClosed.
		app.logger.Error("Server failed", "error", err)
		app.cleanup()
		return fmt.Errorf("listen and serve: %w", err)
	case <-signalCtx.Done():
		app.logger.Info("Shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		app.logger.Error("Server shutdown failed", "error", err)
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	app.cleanup()

	app.logger.Info("Server shutdown completed")
	return nil
}
