package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/phrazzld/recall-api/internal/api/shared"
	"github.com/phrazzld/recall-api/internal/redact"
	"github.com/phrazzld/recall-api/internal/service/auth"
)

// Headers used by the API key authentication scheme. Keys identify a trusted
// service caller, not a learner, so the caller asserts the learner identity
// in a separate header.
const (
	APIKeyHeader    = "X-API-Key"
	LearnerIDHeader = "X-Learner-ID"
)

// AuthMiddleware authenticates requests. Two schemes are accepted: a Bearer
// JWT in the Authorization header, carrying the learner identity in its
// claims, or an API key paired with an explicit learner ID header.
type AuthMiddleware struct {
	jwtService auth.JWTService
	apiKeys    *auth.APIKeyVerifier
}

// NewAuthMiddleware creates a new AuthMiddleware with the given dependencies.
func NewAuthMiddleware(jwtService auth.JWTService, apiKeys *auth.APIKeyVerifier) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService: jwtService,
		apiKeys:    apiKeys,
	}
}

// Authenticate resolves the learner identity from one of the supported
// schemes and adds it to the request context for authorized requests.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get(APIKeyHeader) != "" {
			m.authenticateAPIKey(w, r, next)
			return
		}
		m.authenticateBearer(w, r, next)
	})
}

// authenticateBearer validates a JWT from the Authorization header.
func (m *AuthMiddleware) authenticateBearer(w http.ResponseWriter, r *http.Request, next http.Handler) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authorization header required")
		return
	}

	// Check Bearer prefix
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Invalid authorization format")
		return
	}

	token := parts[1]

	claims, err := m.jwtService.ValidateToken(r.Context(), token)
	if err != nil {
		switch err {
		case auth.ErrExpiredToken:
			shared.RespondWithError(w, r, http.StatusUnauthorized, "Token expired")
		case auth.ErrInvalidToken, auth.ErrWrongTokenType, auth.ErrTokenNotYetValid:
			shared.RespondWithError(w, r, http.StatusUnauthorized, "Invalid token")
		default:
			slog.Error("failed to validate token", "error", redact.Error(err))
			shared.RespondWithError(
				w,
				r,
				http.StatusInternalServerError,
				"Authentication error",
			)
		}
		return
	}

	serveWithLearner(w, r, next, claims.LearnerID)
}

// authenticateAPIKey validates the API key and the learner identity asserted
// alongside it.
func (m *AuthMiddleware) authenticateAPIKey(w http.ResponseWriter, r *http.Request, next http.Handler) {
	key := r.Header.Get(APIKeyHeader)
	if err := m.apiKeys.Verify(key); err != nil {
		// Repeated failures here mean a misconfigured or hostile caller.
		shared.RespondWithErrorAndLog(w, r, http.StatusUnauthorized, "Invalid API key", err,
			shared.WithElevatedLogLevel())
		return
	}

	rawLearnerID := r.Header.Get(LearnerIDHeader)
	if rawLearnerID == "" {
		shared.RespondWithError(w, r, http.StatusBadRequest, LearnerIDHeader+" header required")
		return
	}

	learnerID, err := uuid.Parse(rawLearnerID)
	if err != nil || learnerID == uuid.Nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid "+LearnerIDHeader+" header")
		return
	}

	serveWithLearner(w, r, next, learnerID)
}

// serveWithLearner stores the learner ID in the context and continues the chain.
func serveWithLearner(w http.ResponseWriter, r *http.Request, next http.Handler, learnerID uuid.UUID) {
	ctx := context.WithValue(r.Context(), shared.LearnerIDContextKey, learnerID)
	next.ServeHTTP(w, r.WithContext(ctx))
}

// GetLearnerID extracts the learner ID from the request context.
// Returns the learner ID and a boolean indicating if it was found.
func GetLearnerID(r *http.Request) (uuid.UUID, bool) {
	learnerID, ok := r.Context().Value(shared.LearnerIDContextKey).(uuid.UUID)
	return learnerID, ok
}
