package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/phrazzld/recall-api/internal/api/shared"
	"github.com/phrazzld/recall-api/internal/domain"
	"github.com/phrazzld/recall-api/internal/service/auth"
	"github.com/phrazzld/recall-api/internal/service/study"
	"github.com/phrazzld/recall-api/internal/session"
	"github.com/phrazzld/recall-api/internal/store"
)

// HandleAPIError maps an internal error to a status code and sanitized
// message and writes the JSON error response, logging the full detail.
// For internal server errors a non-empty defaultMsg replaces the generic
// client message.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, defaultMsg string) {
	status := MapErrorToStatusCode(err)
	message := GetSafeErrorMessage(err)
	if status == http.StatusInternalServerError && defaultMsg != "" {
		message = defaultMsg
	}
	shared.RespondWithErrorAndLog(w, r, status, message, err)
}

// HandleValidationError writes a 400 response for a request validation
// failure, preferring the field-level message when one is available.
func HandleValidationError(w http.ResponseWriter, r *http.Request, err error) {
	message := GetSafeErrorMessage(err)
	if !isValidationError(err) {
		message = SanitizeValidationError(err)
	}
	shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, message, err)
}

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Authentication errors
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrWrongTokenType),
		errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, auth.ErrInvalidAPIKey),
		errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized

	// Authorization errors
	case errors.Is(err, study.ErrSessionNotOwned),
		errors.Is(err, store.ErrAccessDenied):
		return http.StatusForbidden

	// Not found errors. An empty due queue reads as "nothing to study here",
	// which the API reports the same way as a missing resource.
	case errors.Is(err, session.ErrSessionNotFound),
		errors.Is(err, session.ErrNoCardsAvailable),
		errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	// Gone: the session existed but its deadline has passed
	case errors.Is(err, session.ErrSessionExpired):
		return http.StatusGone

	// Conflict errors
	case errors.Is(err, session.ErrSessionNotActive),
		errors.Is(err, session.ErrCardMismatch):
		return http.StatusConflict

	// Bad request errors
	case errors.Is(err, domain.ErrInvalidDifficulty),
		errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidID),
		errors.Is(err, store.ErrInvalidEntity),
		isValidationError(err):
		return http.StatusBadRequest

	// Default: internal server error
	default:
		return http.StatusInternalServerError
	}
}

// isValidationError reports whether err is a field-level ValidationError,
// including ones with a nil underlying cause.
func isValidationError(err error) bool {
	var validationErr *domain.ValidationError
	return errors.As(err, &validationErr)
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	// Handle nil error
	if err == nil {
		return "An unexpected error occurred"
	}

	// Field-level validation failures carry their own safe message
	var validationErr *domain.ValidationError
	if errors.As(err, &validationErr) {
		return fmt.Sprintf("Invalid %s: %s", validationErr.Field, validationErr.Message)
	}

	// Map specific error types to user-friendly messages
	switch {
	// Authentication errors
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrWrongTokenType),
		errors.Is(err, auth.ErrMissingToken):
		return "Invalid token"

	case errors.Is(err, auth.ErrInvalidAPIKey):
		return "Invalid API key"

	case errors.Is(err, domain.ErrUnauthorized):
		return "Unauthorized"

	// Authorization errors
	case errors.Is(err, study.ErrSessionNotOwned):
		return "You do not have access to this session"

	case errors.Is(err, store.ErrAccessDenied):
		return "You do not have access to this collection"

	// Not found errors
	case errors.Is(err, session.ErrSessionNotFound):
		return "Session not found"

	case errors.Is(err, session.ErrNoCardsAvailable):
		return "No cards available for review"

	case errors.Is(err, store.ErrItemNotFound):
		return "Item not found"

	case errors.Is(err, store.ErrCollectionNotFound):
		return "Collection not found"

	case errors.Is(err, store.ErrNotFound):
		return "Resource not found"

	// Lifecycle errors
	case errors.Is(err, session.ErrSessionExpired):
		return "Session has expired"

	case errors.Is(err, session.ErrSessionNotActive):
		return "Session is no longer active"

	case errors.Is(err, session.ErrCardMismatch):
		return "Item does not match the item awaiting review"

	// Bad request errors
	case errors.Is(err, domain.ErrInvalidDifficulty):
		return "Invalid difficulty: must be 1 (easy), 2 (normal) or 3 (hard)"

	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidID),
		errors.Is(err, store.ErrInvalidEntity):
		return "Invalid request data"

	// Default case for unknown errors
	default:
		return "An unexpected error occurred"
	}
}

// SanitizeValidationError removes sensitive details from validation errors
// and returns a user-friendly message.
func SanitizeValidationError(err error) string {
	errMsg := err.Error()

	// Check if this is likely a validation error message
	if strings.Contains(errMsg, "Field validation") {
		// Extract the field name and validation tag
		// Example format: "Key: 'StartSessionRequest.CollectionID' Error:Field validation for 'CollectionID' failed on the 'required' tag"
		parts := strings.Split(errMsg, "Error:")
		if len(parts) >= 2 {
			// Further split to get just the field validation part
			fieldParts := strings.Split(parts[1], "'")
			if len(fieldParts) >= 3 {
				field := fieldParts[1]
				var tag string
				if len(fieldParts) >= 5 {
					tag = fieldParts[3]
				}

				// Create a cleaner error message
				if tag != "" {
					return fmt.Sprintf("Invalid %s: %s", field, getValidationTagMessage(tag))
				}
				return fmt.Sprintf("Invalid %s", field)
			}
		}
	}

	// Fall back to a generic validation error message
	return "Validation error"
}

// getValidationTagMessage maps validation tags to user-friendly error messages
func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "uuid":
		return "invalid identifier format"
	case "min":
		return "too small"
	case "max":
		return "too large"
	case "oneof":
		return "invalid value"
	default:
		return "validation failed"
	}
}
