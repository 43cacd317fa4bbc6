package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/recall-api/internal/api/shared"
	"github.com/phrazzld/recall-api/internal/domain"
	"github.com/phrazzld/recall-api/internal/platform/logger"
)

// getLearnerIDFromContext returns the learner ID the authentication
// middleware stored in the request context. ok is false when the value is
// absent, of the wrong type, or the nil UUID.
func getLearnerIDFromContext(r *http.Request) (uuid.UUID, bool) {
	learnerID, ok := r.Context().Value(shared.LearnerIDContextKey).(uuid.UUID)
	if !ok || learnerID == uuid.Nil {
		return uuid.Nil, false
	}
	return learnerID, true
}

// getPathUUID parses the named chi path parameter as a UUID. The returned
// errors carry the parameter name so handlers can surface field-level
// messages.
func getPathUUID(r *http.Request, paramName string) (uuid.UUID, error) {
	raw := chi.URLParam(r, paramName)
	if raw == "" {
		return uuid.Nil, domain.NewValidationError(paramName, "is required", domain.ErrValidation)
	}

	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, domain.NewValidationError(paramName, "has invalid format", domain.ErrInvalidID)
	}
	return id, nil
}

// handleLearnerIDAndPathUUID resolves the two UUIDs nearly every session
// endpoint needs: the authenticated learner and the resource ID from the
// path. On failure it writes the error response itself and returns ok=false,
// so callers can simply return. A nil log falls back to the request logger.
func handleLearnerIDAndPathUUID(
	w http.ResponseWriter, r *http.Request, paramName string, log *slog.Logger,
) (uuid.UUID, uuid.UUID, bool) {
	if log == nil {
		log = logger.FromContextOrDefault(r.Context(), slog.Default())
	}

	learnerID, ok := getLearnerIDFromContext(r)
	if !ok {
		log.Warn("learner ID missing from authenticated request")
		HandleAPIError(w, r, domain.ErrUnauthorized, "")
		return uuid.Nil, uuid.Nil, false
	}

	pathID, err := getPathUUID(r, paramName)
	if err != nil {
		log.Warn("invalid path parameter",
			slog.String("param_name", paramName),
			slog.String("value", chi.URLParam(r, paramName)))
		HandleAPIError(w, r, err, "")
		return uuid.Nil, uuid.Nil, false
	}

	return learnerID, pathID, true
}
