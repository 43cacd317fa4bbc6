package study

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/recall-api/internal/domain"
	"github.com/phrazzld/recall-api/internal/domain/srs"
	"github.com/phrazzld/recall-api/internal/platform/logger"
	"github.com/phrazzld/recall-api/internal/session"
	"github.com/phrazzld/recall-api/internal/store"
)

// studyServiceImpl implements the StudyService interface.
type studyServiceImpl struct {
	sessions   *session.Store
	items      store.ItemStore
	srsService srs.Service
	logger     *slog.Logger
}

// NewStudyService creates a new StudyService with the given dependencies.
// It panics if any dependency is nil, enforcing the constructor contract.
func NewStudyService(
	sessions *session.Store,
	items store.ItemStore,
	srsService srs.Service,
	log *slog.Logger,
) StudyService {
	// ALLOW-PANIC: Constructor enforces non-nil dependencies via panic.
	if sessions == nil {
		panic("sessions cannot be nil")
	}
	if items == nil {
		panic("items cannot be nil")
	}
	if srsService == nil {
		panic("srsService cannot be nil")
	}
	if log == nil {
		panic("logger cannot be nil")
	}

	return &studyServiceImpl{
		sessions:   sessions,
		items:      items,
		srsService: srsService,
		logger:     log.With(slog.String("component", "study_service")),
	}
}

// StartSession implements StudyService.StartSession.
func (s *studyServiceImpl) StartSession(
	ctx context.Context,
	learnerID, collectionID uuid.UUID,
	tagID *uuid.UUID,
	limit int,
) (*StartResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	limit = normalizeLimit(limit)

	log.Debug("starting study session",
		slog.String("learner_id", learnerID.String()),
		slog.String("collection_id", collectionID.String()),
		slog.Int("limit", limit))

	items, err := s.items.FetchDue(ctx, learnerID, collectionID, tagID, limit)
	if err != nil {
		// Ownership and existence failures pass through for the caller to map.
		if store.IsNotFoundError(err) || errors.Is(err, store.ErrAccessDenied) {
			log.Debug("due item fetch rejected",
				slog.String("collection_id", collectionID.String()),
				slog.String("error", err.Error()))
			return nil, err
		}
		log.Error("failed to fetch due items",
			slog.String("collection_id", collectionID.String()),
			slog.String("error", err.Error()))
		return nil, newServiceError("start_session", "failed to fetch due items", err)
	}

	sess, err := s.sessions.Create(learnerID, collectionID, items)
	if err != nil {
		// Empty queues surface as ErrNoCardsAvailable.
		log.Debug("session not created",
			slog.String("collection_id", collectionID.String()),
			slog.String("error", err.Error()))
		return nil, err
	}

	result := &StartResult{
		SessionID:    sess.ID(),
		CollectionID: sess.CollectionID(),
		TotalItems:   len(items),
		QueueLength:  len(items),
		Stats:        sess.Stats(),
		ExpiresAt:    sess.ExpiresAt(),
	}
	if head, ok := sess.Peek(); ok {
		result.FirstItem = &head
	}

	log.Debug("study session started",
		slog.String("session_id", sess.ID().String()),
		slog.Int("total_items", len(items)))
	return result, nil
}

// GetNextItem implements StudyService.GetNextItem.
func (s *studyServiceImpl) GetNextItem(
	ctx context.Context,
	learnerID, sessionID uuid.UUID,
) (*session.NextResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	sess, err := s.ownedSession(learnerID, sessionID)
	if err != nil {
		log.Debug("session lookup failed",
			slog.String("session_id", sessionID.String()),
			slog.String("error", err.Error()))
		return nil, err
	}

	result, err := sess.Next(s.sessions.Now())
	if err != nil {
		log.Debug("next item rejected",
			slog.String("session_id", sessionID.String()),
			slog.String("error", err.Error()))
		return nil, err
	}

	if result.Finished {
		log.Debug("session completed by queue exhaustion",
			slog.String("session_id", sessionID.String()),
			slog.Int("cards_reviewed", result.Stats.CardsReviewed))
	}
	return &result, nil
}

// SubmitReview implements StudyService.SubmitReview.
func (s *studyServiceImpl) SubmitReview(
	ctx context.Context,
	learnerID, sessionID, itemID uuid.UUID,
	difficulty domain.Difficulty,
) (*session.ReviewResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	sess, err := s.ownedSession(learnerID, sessionID)
	if err != nil {
		log.Debug("session lookup failed",
			slog.String("session_id", sessionID.String()),
			slog.String("error", err.Error()))
		return nil, err
	}

	result, err := sess.Review(itemID, difficulty, s.sessions.Now())
	if err != nil {
		log.Debug("review rejected",
			slog.String("session_id", sessionID.String()),
			slog.String("item_id", itemID.String()),
			slog.String("error", err.Error()))
		return nil, err
	}

	// The session already holds the graded review; the durable write-back is
	// best effort from its perspective, but the caller still learns about a
	// failure so the missing persistence is visible.
	err = s.items.RecordReview(ctx, itemID, result.Item.NextReviewAt, result.Item.LastReviewedAt)
	if err != nil {
		log.Error("failed to persist review outcome",
			slog.String("session_id", sessionID.String()),
			slog.String("item_id", itemID.String()),
			slog.String("error", err.Error()))
		return nil, newServiceError("submit_review", "failed to persist review outcome", err)
	}

	log.Debug("review recorded",
		slog.String("session_id", sessionID.String()),
		slog.String("item_id", itemID.String()),
		slog.Int("difficulty", int(difficulty)))
	return &result, nil
}

// GetStatus implements StudyService.GetStatus.
func (s *studyServiceImpl) GetStatus(
	ctx context.Context,
	learnerID, sessionID uuid.UUID,
) (*session.Snapshot, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	sess, err := s.ownedSession(learnerID, sessionID)
	if err != nil {
		log.Debug("session lookup failed",
			slog.String("session_id", sessionID.String()),
			slog.String("error", err.Error()))
		return nil, err
	}

	snapshot, err := sess.StatusSnapshot(s.sessions.Now())
	if err != nil {
		return nil, err
	}
	return &snapshot, nil
}

// FinishSession implements StudyService.FinishSession.
func (s *studyServiceImpl) FinishSession(
	ctx context.Context,
	learnerID, sessionID uuid.UUID,
) (*session.FinishResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	sess, err := s.ownedSession(learnerID, sessionID)
	if err != nil {
		log.Debug("session lookup failed",
			slog.String("session_id", sessionID.String()),
			slog.String("error", err.Error()))
		return nil, err
	}

	result, err := sess.Finish(s.sessions.Now())
	if err != nil {
		log.Debug("finish rejected",
			slog.String("session_id", sessionID.String()),
			slog.String("error", err.Error()))
		return nil, err
	}

	log.Debug("session finished",
		slog.String("session_id", sessionID.String()),
		slog.Int("cards_reviewed", result.Stats.CardsReviewed),
		slog.Int("completion_rate", result.CompletionRate))
	return &result, nil
}

// GetGlobalStats implements StudyService.GetGlobalStats.
func (s *studyServiceImpl) GetGlobalStats(ctx context.Context) (session.GlobalStats, error) {
	return s.sessions.GlobalStats(), nil
}

// ListDueItems implements StudyService.ListDueItems.
func (s *studyServiceImpl) ListDueItems(
	ctx context.Context,
	learnerID, collectionID uuid.UUID,
	tagID *uuid.UUID,
	limit int,
) ([]domain.Item, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	limit = normalizeLimit(limit)

	items, err := s.items.FetchDue(ctx, learnerID, collectionID, tagID, limit)
	if err != nil {
		if store.IsNotFoundError(err) || errors.Is(err, store.ErrAccessDenied) {
			return nil, err
		}
		log.Error("failed to list due items",
			slog.String("collection_id", collectionID.String()),
			slog.String("error", err.Error()))
		return nil, newServiceError("list_due_items", "failed to fetch due items", err)
	}
	return items, nil
}

// ownedSession resolves the session and enforces learner ownership.
func (s *studyServiceImpl) ownedSession(learnerID, sessionID uuid.UUID) (*session.Session, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}
	if sess.LearnerID() != learnerID {
		return nil, fmt.Errorf("%w: session %s", ErrSessionNotOwned, sessionID)
	}
	return sess, nil
}

// normalizeLimit coerces a requested fetch limit into 1..MaxFetchLimit.
func normalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultFetchLimit
	}
	if limit > MaxFetchLimit {
		return MaxFetchLimit
	}
	return limit
}
