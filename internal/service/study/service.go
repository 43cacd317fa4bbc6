package study

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/recall-api/internal/domain"
	"github.com/phrazzld/recall-api/internal/session"
)

// Limit bounds for due-item fetches. Requests outside the range are
// normalized rather than rejected.
const (
	// DefaultFetchLimit is used when a request does not name a limit.
	DefaultFetchLimit = 20

	// MaxFetchLimit caps how many items a single session or listing can pull.
	MaxFetchLimit = 50
)

// StartResult is the response to starting a study session. FirstItem is a
// preview of the queue head; the queue cursor has not advanced, so the first
// GetNextItem call returns this same item as the one to review.
type StartResult struct {
	SessionID    uuid.UUID
	CollectionID uuid.UUID
	TotalItems   int
	QueueLength  int
	FirstItem    *domain.Item
	Stats        session.Stats
	ExpiresAt    time.Time
}

// StudyService is the operation surface of the study engine: session
// lifecycle, item dispensing, review grading, and aggregate statistics.
// Sessions live in memory; only review outcomes reach durable storage.
type StudyService interface {
	// StartSession fetches the learner's due items in the collection
	// (optionally narrowed to one tag), freezes them into a new session
	// queue, and registers the session.
	//
	// limit bounds how many items the session holds; values outside
	// 1..MaxFetchLimit are normalized (DefaultFetchLimit when
	// non-positive, clamped to MaxFetchLimit above it).
	//
	// Returns session.ErrNoCardsAvailable when nothing is due,
	// store.ErrCollectionNotFound / store.ErrAccessDenied from the
	// repository ownership check.
	StartSession(
		ctx context.Context,
		learnerID, collectionID uuid.UUID,
		tagID *uuid.UUID,
		limit int,
	) (*StartResult, error)

	// GetNextItem dispenses the next queued item of the session. When the
	// queue is exhausted the session completes and the result carries
	// Finished == true with final stats instead of an item.
	//
	// Returns session.ErrSessionNotFound / ErrSessionExpired /
	// ErrSessionNotActive per the session lifecycle, and ErrSessionNotOwned
	// when the session belongs to another learner.
	GetNextItem(ctx context.Context, learnerID, sessionID uuid.UUID) (*session.NextResult, error)

	// SubmitReview grades the item currently awaiting review and persists
	// the new schedule through the item repository. The in-session review is
	// recorded even if persistence fails; the error is returned so the
	// caller knows the durable write is missing.
	//
	// Returns domain.ErrInvalidDifficulty and session.ErrCardMismatch for
	// rejected reviews, plus the session lifecycle errors of GetNextItem.
	SubmitReview(
		ctx context.Context,
		learnerID, sessionID, itemID uuid.UUID,
		difficulty domain.Difficulty,
	) (*session.ReviewResult, error)

	// GetStatus returns a read-only snapshot of the session: lifecycle
	// state, progress, running stats, and the item awaiting review if any.
	// Readable on Active sessions and on Finished ones within the retention
	// window.
	GetStatus(ctx context.Context, learnerID, sessionID uuid.UUID) (*session.Snapshot, error)

	// FinishSession ends the session early, returning final stats and the
	// completion rate over the original queue size.
	FinishSession(ctx context.Context, learnerID, sessionID uuid.UUID) (*session.FinishResult, error)

	// GetGlobalStats aggregates review activity across all sessions
	// currently tracked by the registry.
	GetGlobalStats(ctx context.Context) (session.GlobalStats, error)

	// ListDueItems previews the learner's due items in a collection without
	// starting a session. Same limit normalization and ownership rules as
	// StartSession.
	ListDueItems(
		ctx context.Context,
		learnerID, collectionID uuid.UUID,
		tagID *uuid.UUID,
		limit int,
	) ([]domain.Item, error)
}

// ErrSessionNotOwned indicates the session belongs to a different learner.
var ErrSessionNotOwned = errors.New("unauthorized access: session not owned by learner")

// ServiceError wraps errors from the study service with additional context.
// This allows consumers to differentiate between different types of service
// errors using errors.As instead of string matching.
type ServiceError struct {
	// Operation is the operation that failed (e.g., "start_session", "submit_review")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for ServiceError.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s operation failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("%s operation failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// newServiceError returns a ServiceError for the given operation.
func newServiceError(operation, message string, err error) *ServiceError {
	return &ServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
