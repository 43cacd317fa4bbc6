package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/recall-api/internal/api/shared"
	"github.com/phrazzld/recall-api/internal/domain"
	"github.com/phrazzld/recall-api/internal/service/auth"
	"github.com/phrazzld/recall-api/internal/service/study"
	"github.com/phrazzld/recall-api/internal/session"
	"github.com/phrazzld/recall-api/internal/store"
)

// TestHandleAPIError verifies that all handlers handle errors consistently
// by using the centralized error handling functions.
func TestHandleAPIError(t *testing.T) {
	tests := []struct {
		name             string
		err              error
		defaultMsg       string
		expectedStatus   int
		expectedMessage  string
		expectDefaultMsg bool
	}{
		// Authentication errors
		{
			name:            "invalid token",
			err:             auth.ErrInvalidToken,
			defaultMsg:      "Custom default message",
			expectedStatus:  http.StatusUnauthorized,
			expectedMessage: "Invalid token",
		},
		{
			name:            "expired token",
			err:             auth.ErrExpiredToken,
			defaultMsg:      "Custom default message",
			expectedStatus:  http.StatusUnauthorized,
			expectedMessage: "Invalid token",
		},
		{
			name:            "invalid api key",
			err:             auth.ErrInvalidAPIKey,
			defaultMsg:      "Custom default message",
			expectedStatus:  http.StatusUnauthorized,
			expectedMessage: "Invalid API key",
		},
		// Authorization errors
		{
			name:            "session not owned",
			err:             study.ErrSessionNotOwned,
			defaultMsg:      "Custom default message",
			expectedStatus:  http.StatusForbidden,
			expectedMessage: "You do not have access to this session",
		},
		{
			name:            "collection access denied",
			err:             store.ErrAccessDenied,
			defaultMsg:      "Custom default message",
			expectedStatus:  http.StatusForbidden,
			expectedMessage: "You do not have access to this collection",
		},
		// Not found errors
		{
			name:            "session not found",
			err:             session.ErrSessionNotFound,
			defaultMsg:      "Custom default message",
			expectedStatus:  http.StatusNotFound,
			expectedMessage: "Session not found",
		},
		{
			name:            "no cards available",
			err:             session.ErrNoCardsAvailable,
			defaultMsg:      "Custom default message",
			expectedStatus:  http.StatusNotFound,
			expectedMessage: "No cards available for review",
		},
		// Lifecycle errors
		{
			name:            "session expired",
			err:             session.ErrSessionExpired,
			defaultMsg:      "Custom default message",
			expectedStatus:  http.StatusGone,
			expectedMessage: "Session has expired",
		},
		{
			name:            "session not active",
			err:             session.ErrSessionNotActive,
			defaultMsg:      "Custom default message",
			expectedStatus:  http.StatusConflict,
			expectedMessage: "Session is no longer active",
		},
		{
			name:            "item mismatch",
			err:             session.ErrCardMismatch,
			defaultMsg:      "Custom default message",
			expectedStatus:  http.StatusConflict,
			expectedMessage: "Item does not match the item awaiting review",
		},
		// Validation errors
		{
			name:            "invalid difficulty",
			err:             domain.ErrInvalidDifficulty,
			defaultMsg:      "Custom default message",
			expectedStatus:  http.StatusBadRequest,
			expectedMessage: "Invalid difficulty: must be 1 (easy), 2 (normal) or 3 (hard)",
		},
		{
			name: "field validation error",
			err: domain.NewValidationError(
				"collection_id",
				"has invalid format",
				domain.ErrInvalidID,
			),
			defaultMsg:      "Custom default message",
			expectedStatus:  http.StatusBadRequest,
			expectedMessage: "Invalid collection_id: has invalid format",
		},
		// Server errors
		{
			name:             "unexpected error",
			err:              errors.New("database connection error"),
			defaultMsg:       "Friendly server error message",
			expectedStatus:   http.StatusInternalServerError,
			expectedMessage:  "Friendly server error message",
			expectDefaultMsg: true,
		},
		{
			name:            "unexpected error without default message",
			err:             errors.New("database connection error"),
			defaultMsg:      "",
			expectedStatus:  http.StatusInternalServerError,
			expectedMessage: "An unexpected error occurred",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/test", nil)

			HandleAPIError(rr, req, tc.err, tc.defaultMsg)

			assert.Equal(t, tc.expectedStatus, rr.Code, "Wrong status code for HandleAPIError")

			var response map[string]interface{}
			err := json.NewDecoder(rr.Body).Decode(&response)
			require.NoError(t, err, "Failed to decode response")

			errorMsg, ok := response["error"].(string)
			require.True(t, ok, "Error field missing in response")

			if tc.expectDefaultMsg {
				assert.Equal(t, tc.defaultMsg, errorMsg, "Wrong error message for HandleAPIError")
			} else {
				assert.Equal(t, tc.expectedMessage, errorMsg, "Wrong error message for HandleAPIError")
			}
		})
	}
}

// TestHandleValidationError verifies that validation errors are handled
// consistently across handlers.
func TestHandleValidationError(t *testing.T) {
	tests := []struct {
		name            string
		err             error
		expectedStatus  int
		expectedMessage string
	}{
		{
			name: "domain validation error",
			err: domain.NewValidationError(
				"tag_id",
				"has invalid format",
				nil,
			),
			expectedStatus:  http.StatusBadRequest,
			expectedMessage: "Invalid tag_id: has invalid format",
		},
		{
			name: "validator field error",
			err: errors.New(
				"Key: 'StartSessionRequest.CollectionID' Error:Field validation for 'CollectionID' failed on the 'required' tag",
			),
			expectedStatus:  http.StatusBadRequest,
			expectedMessage: "Invalid CollectionID: required field",
		},
		{
			name: "validator uuid error",
			err: errors.New(
				"Key: 'SubmitReviewRequest.ItemID' Error:Field validation for 'ItemID' failed on the 'uuid' tag",
			),
			expectedStatus:  http.StatusBadRequest,
			expectedMessage: "Invalid ItemID: invalid identifier format",
		},
		{
			name:            "generic validation without field",
			err:             errors.New("validation error"),
			expectedStatus:  http.StatusBadRequest,
			expectedMessage: "Validation error",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/test", nil)

			HandleValidationError(rr, req, tc.err)

			assert.Equal(t, tc.expectedStatus, rr.Code, "Wrong status code for HandleValidationError")

			var response map[string]interface{}
			err := json.NewDecoder(rr.Body).Decode(&response)
			require.NoError(t, err, "Failed to decode response")

			errorMsg, ok := response["error"].(string)
			require.True(t, ok, "Error field missing in response")
			assert.Equal(t, tc.expectedMessage, errorMsg, "Wrong error message for HandleValidationError")
		})
	}
}

// TestMapErrorToStatusCode verifies the consistent status code mapping
func TestMapErrorToStatusCode(t *testing.T) {
	errorMap := map[error]int{
		// Authentication errors
		auth.ErrInvalidToken:     http.StatusUnauthorized,
		auth.ErrExpiredToken:     http.StatusUnauthorized,
		auth.ErrTokenNotYetValid: http.StatusUnauthorized,
		auth.ErrWrongTokenType:   http.StatusUnauthorized,
		auth.ErrMissingToken:     http.StatusUnauthorized,
		auth.ErrInvalidAPIKey:    http.StatusUnauthorized,
		domain.ErrUnauthorized:   http.StatusUnauthorized,

		// Authorization errors
		study.ErrSessionNotOwned: http.StatusForbidden,
		store.ErrAccessDenied:    http.StatusForbidden,

		// Not found errors
		session.ErrSessionNotFound:  http.StatusNotFound,
		session.ErrNoCardsAvailable: http.StatusNotFound,
		store.ErrItemNotFound:       http.StatusNotFound,
		store.ErrCollectionNotFound: http.StatusNotFound,
		store.ErrNotFound:           http.StatusNotFound,

		// Lifecycle errors
		session.ErrSessionExpired:   http.StatusGone,
		session.ErrSessionNotActive: http.StatusConflict,
		session.ErrCardMismatch:     http.StatusConflict,

		// Validation errors
		domain.ErrInvalidDifficulty: http.StatusBadRequest,
		domain.ErrValidation:        http.StatusBadRequest,
		domain.ErrInvalidID:         http.StatusBadRequest,
		store.ErrInvalidEntity:      http.StatusBadRequest,

		// Default case
		errors.New("unknown error"): http.StatusInternalServerError,
	}

	for err, expectedStatus := range errorMap {
		t.Run(err.Error(), func(t *testing.T) {
			actualStatus := MapErrorToStatusCode(err)
			assert.Equal(t, expectedStatus, actualStatus, "Error %v should map to status %d", err, expectedStatus)
		})
	}

	// A properly wrapped error keeps the original status code.
	properWrapped := fmt.Errorf("wrapper: %w", auth.ErrInvalidToken)
	assert.Equal(
		t,
		http.StatusUnauthorized,
		MapErrorToStatusCode(properWrapped),
		"Properly wrapped error should keep original status code",
	)

	// Nested wrapping still unwraps to the sentinel.
	nestedWrapped := fmt.Errorf("outer wrapper: %w", fmt.Errorf("inner wrapper: %w", session.ErrSessionExpired))
	assert.Equal(
		t,
		http.StatusGone,
		MapErrorToStatusCode(nestedWrapped),
		"Nested wrapped errors should keep original status code",
	)

	// String concatenation is not wrapping.
	concatenated := errors.New("wrapped: " + auth.ErrInvalidToken.Error())
	assert.Equal(
		t,
		http.StatusInternalServerError,
		MapErrorToStatusCode(concatenated),
		"String concatenated errors aren't properly wrapped",
	)

	// domain.ValidationError maps to 400, wrapped or not.
	validationErr := domain.NewValidationError("limit", "must be an integer", nil)
	assert.Equal(t, http.StatusBadRequest, MapErrorToStatusCode(validationErr))
	assert.Equal(t, http.StatusBadRequest, MapErrorToStatusCode(fmt.Errorf("rejected: %w", validationErr)))

	// store.StoreError wrapping a known error uses the wrapped error's code.
	storeErr := store.NewStoreError("item", "fetch_due", "failed to fetch due items", store.ErrCollectionNotFound)
	assert.Equal(
		t,
		http.StatusNotFound,
		MapErrorToStatusCode(storeErr),
		"StoreError wrapping a known error should use the wrapped error's status code",
	)

	// study.ServiceError wrapping a known error behaves the same way.
	serviceErr := &study.ServiceError{
		Operation: "get_next_item",
		Message:   "session lookup failed",
		Err:       session.ErrSessionNotFound,
	}
	assert.Equal(
		t,
		http.StatusNotFound,
		MapErrorToStatusCode(serviceErr),
		"ServiceError wrapping a known error should use the wrapped error's status code",
	)

	// A ServiceError with an unknown cause stays a server error.
	opaque := &study.ServiceError{
		Operation: "start_session",
		Message:   "failed to fetch due items",
		Err:       errors.New("connection refused"),
	}
	assert.Equal(t, http.StatusInternalServerError, MapErrorToStatusCode(opaque))
}

// TestGetSafeErrorMessage verifies the consistent error message generation
func TestGetSafeErrorMessage(t *testing.T) {
	errorMap := map[error]string{
		// Authentication errors
		auth.ErrInvalidToken:     "Invalid token",
		auth.ErrExpiredToken:     "Invalid token",
		auth.ErrTokenNotYetValid: "Invalid token",
		auth.ErrWrongTokenType:   "Invalid token",
		auth.ErrMissingToken:     "Invalid token",
		auth.ErrInvalidAPIKey:    "Invalid API key",
		domain.ErrUnauthorized:   "Unauthorized",

		// Authorization errors
		study.ErrSessionNotOwned: "You do not have access to this session",
		store.ErrAccessDenied:    "You do not have access to this collection",

		// Not found errors
		session.ErrSessionNotFound:  "Session not found",
		session.ErrNoCardsAvailable: "No cards available for review",
		store.ErrItemNotFound:       "Item not found",
		store.ErrCollectionNotFound: "Collection not found",
		store.ErrNotFound:           "Resource not found",

		// Lifecycle errors
		session.ErrSessionExpired:   "Session has expired",
		session.ErrSessionNotActive: "Session is no longer active",
		session.ErrCardMismatch:     "Item does not match the item awaiting review",

		// Validation errors
		domain.ErrInvalidDifficulty: "Invalid difficulty: must be 1 (easy), 2 (normal) or 3 (hard)",
		domain.ErrValidation:        "Invalid request data",
		domain.ErrInvalidID:         "Invalid request data",
		store.ErrInvalidEntity:      "Invalid request data",

		// Default case
		errors.New("unknown error"): "An unexpected error occurred",
	}

	for err, expectedMessage := range errorMap {
		t.Run(err.Error(), func(t *testing.T) {
			actualMessage := GetSafeErrorMessage(err)
			assert.Equal(t, expectedMessage, actualMessage, "Error %v should map to message '%s'", err, expectedMessage)
		})
	}

	// nil gets the generic message rather than panicking.
	assert.Equal(t, "An unexpected error occurred", GetSafeErrorMessage(nil))

	// domain.ValidationError carries its own safe message, wrapped or not.
	validationErr := domain.NewValidationError("item_id", "has invalid format", nil)
	assert.Equal(t, "Invalid item_id: has invalid format", GetSafeErrorMessage(validationErr))
	assert.Equal(
		t,
		"Invalid item_id: has invalid format",
		GetSafeErrorMessage(fmt.Errorf("rejected: %w", validationErr)),
	)

	// Wrapped sentinels resolve to the sentinel's message.
	storeErr := store.NewStoreError("item", "get_by_id", "lookup failed", store.ErrItemNotFound)
	assert.Equal(t, "Item not found", GetSafeErrorMessage(storeErr))

	serviceErr := &study.ServiceError{
		Operation: "submit_review",
		Message:   "failed to persist review outcome",
		Err:       errors.New("connection refused"),
	}
	assert.Equal(t, "An unexpected error occurred", GetSafeErrorMessage(serviceErr))
}

// TestResponseFormat verifies that error responses follow a consistent format
func TestResponseFormat(t *testing.T) {
	testCases := []struct {
		name           string
		err            error
		defaultMsg     string
		expectedStatus int
	}{
		{
			name:           "validation error",
			err:            domain.ErrValidation,
			defaultMsg:     "",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "not found error",
			err:            session.ErrSessionNotFound,
			defaultMsg:     "",
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "server error with default message",
			err:            errors.New("database error"),
			defaultMsg:     "An error occurred while processing your request",
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodGet, "/test", nil)

			// Add a context with a trace ID
			traceID := "test-trace-id"
			r = r.WithContext(context.WithValue(r.Context(), shared.TraceIDKey, traceID))

			HandleAPIError(w, r, tc.err, tc.defaultMsg)

			assert.Equal(t, tc.expectedStatus, w.Code)
			assert.Equal(
				t,
				"application/json",
				w.Header().Get("Content-Type"),
				"Content-Type should be application/json",
			)

			var response map[string]interface{}
			err := json.NewDecoder(w.Body).Decode(&response)
			require.NoError(t, err, "Failed to decode response")

			assert.Contains(t, response, "error", "Response should contain 'error' field")
			assert.Contains(t, response, "trace_id", "Response should contain 'trace_id' field")
			assert.Equal(t, traceID, response["trace_id"], "trace_id should match expected value")
		})
	}
}

func TestSanitizeValidationError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{
			name: "required tag",
			err: errors.New(
				"Key: 'StartSessionRequest.CollectionID' Error:Field validation for 'CollectionID' failed on the 'required' tag",
			),
			expected: "Invalid CollectionID: required field",
		},
		{
			name: "uuid tag",
			err: errors.New(
				"Key: 'StartSessionRequest.TagID' Error:Field validation for 'TagID' failed on the 'uuid' tag",
			),
			expected: "Invalid TagID: invalid identifier format",
		},
		{
			name: "unknown tag",
			err: errors.New(
				"Key: 'Request.Field' Error:Field validation for 'Field' failed on the 'hexadecimal' tag",
			),
			expected: "Invalid Field: validation failed",
		},
		{
			name:     "not a validator message",
			err:      errors.New("unexpected EOF"),
			expected: "Validation error",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, SanitizeValidationError(tc.err))
		})
	}
}
