package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/recall-api/internal/api"
	apiMiddleware "github.com/phrazzld/recall-api/internal/api/middleware"
)

// setupRouter wires the HTTP routes. Trace IDs are assigned before
// authentication so rejected requests are traceable too; everything under
// /api requires a learner identity.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware)

	studyHandler := api.NewStudyHandler(app.studyService, app.logger)
	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService, app.apiKeyVerifier)

	r.Route("/api", func(r chi.Router) {
		r.Use(authMiddleware.Authenticate)

		// Study session lifecycle
		r.Post("/study/sessions", studyHandler.StartSession)
		r.Get("/study/sessions/{id}", studyHandler.GetSessionStatus)
		r.Get("/study/sessions/{id}/next", studyHandler.GetNextItem)
		r.Post("/study/sessions/{id}/review", studyHandler.SubmitReview)
		r.Post("/study/sessions/{id}/finish", studyHandler.FinishSession)

		// Aggregate statistics and due-item preview
		r.Get("/study/stats", studyHandler.GetGlobalStats)
		r.Get("/study/due", studyHandler.ListDueItems)
	})

	r.Get("/health", app.handleHealth)

	return r
}

// handleHealth reports process liveness. It skips authentication and never
// touches the database so load balancers always get a fast answer.
func (app *application) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("OK")); err != nil {
		app.logger.Error("Failed to write health check response", "error", err)
	}
}
