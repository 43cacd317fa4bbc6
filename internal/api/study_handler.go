package api

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/phrazzld/recall-api/internal/api/shared"
	"github.com/phrazzld/recall-api/internal/domain"
	"github.com/phrazzld/recall-api/internal/platform/logger"
	"github.com/phrazzld/recall-api/internal/redact"
	"github.com/phrazzld/recall-api/internal/service/study"
)

// StudyHandler handles study session HTTP requests
type StudyHandler struct {
	studyService study.StudyService
	logger       *slog.Logger
}

// NewStudyHandler creates a new StudyHandler
func NewStudyHandler(
	studyService study.StudyService,
	logger *slog.Logger,
) *StudyHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for StudyHandler")
	}

	return &StudyHandler{
		studyService: studyService,
		logger:       logger.With(slog.String("component", "study_handler")),
	}
}

// StartSession handles POST /study/sessions requests.
// It fetches the learner's due items and freezes them into a new session.
func (h *StudyHandler) StartSession(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	learnerID, ok := getLearnerIDFromContext(r)
	if !ok {
		log.Warn("learner ID not found or invalid in request context")
		HandleAPIError(w, r, domain.ErrUnauthorized, "")
		return
	}

	var req StartSessionRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		log.Warn("invalid request format",
			slog.String("error", redact.Error(err)),
			slog.String("learner_id", learnerID.String()))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := shared.ValidateRequest(req); err != nil {
		log.Warn("validation error",
			slog.String("error", redact.Error(err)),
			slog.String("learner_id", learnerID.String()))
		HandleValidationError(w, r, err)
		return
	}

	collectionID, err := uuid.Parse(req.CollectionID)
	if err != nil {
		HandleAPIError(w, r,
			domain.NewValidationError("collection_id", "has invalid format", domain.ErrInvalidID), "")
		return
	}
	var tagID *uuid.UUID
	if req.TagID != "" {
		parsed, err := uuid.Parse(req.TagID)
		if err != nil {
			HandleAPIError(w, r,
				domain.NewValidationError("tag_id", "has invalid format", domain.ErrInvalidID), "")
			return
		}
		tagID = &parsed
	}

	result, err := h.studyService.StartSession(r.Context(), learnerID, collectionID, tagID, req.Limit)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to start study session")
		return
	}

	log.Debug("study session started",
		slog.String("learner_id", learnerID.String()),
		slog.String("session_id", result.SessionID.String()),
		slog.Int("total_items", result.TotalItems))
	shared.RespondWithJSON(w, r, http.StatusCreated, startResultToResponse(result))
}

// GetNextItem handles GET /study/sessions/{id}/next requests.
// When the queue is exhausted the session completes and the response carries
// the final stats instead of an item.
func (h *StudyHandler) GetNextItem(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	learnerID, sessionID, ok := handleLearnerIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	result, err := h.studyService.GetNextItem(r.Context(), learnerID, sessionID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get next item")
		return
	}

	log.Debug("dispensed next item",
		slog.String("session_id", sessionID.String()),
		slog.Bool("finished", result.Finished))
	shared.RespondWithJSON(w, r, http.StatusOK, nextResultToResponse(result))
}

// SubmitReview handles POST /study/sessions/{id}/review requests.
// It grades the item currently awaiting review.
func (h *StudyHandler) SubmitReview(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	learnerID, sessionID, ok := handleLearnerIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	var req SubmitReviewRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		log.Warn("invalid request format",
			slog.String("error", redact.Error(err)),
			slog.String("session_id", sessionID.String()))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := shared.ValidateRequest(req); err != nil {
		log.Warn("validation error",
			slog.String("error", redact.Error(err)),
			slog.String("session_id", sessionID.String()))
		HandleValidationError(w, r, err)
		return
	}

	itemID, err := uuid.Parse(req.ItemID)
	if err != nil {
		HandleAPIError(w, r,
			domain.NewValidationError("item_id", "has invalid format", domain.ErrInvalidID), "")
		return
	}

	result, err := h.studyService.SubmitReview(
		r.Context(),
		learnerID,
		sessionID,
		itemID,
		domain.Difficulty(req.Difficulty),
	)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to submit review")
		return
	}

	log.Debug("review submitted",
		slog.String("session_id", sessionID.String()),
		slog.String("item_id", itemID.String()),
		slog.Int("difficulty", req.Difficulty))
	shared.RespondWithJSON(w, r, http.StatusOK, reviewResultToResponse(result))
}

// GetSessionStatus handles GET /study/sessions/{id} requests.
func (h *StudyHandler) GetSessionStatus(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	learnerID, sessionID, ok := handleLearnerIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	snapshot, err := h.studyService.GetStatus(r.Context(), learnerID, sessionID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get session status")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, snapshotToResponse(snapshot))
}

// FinishSession handles POST /study/sessions/{id}/finish requests.
func (h *StudyHandler) FinishSession(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	learnerID, sessionID, ok := handleLearnerIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	result, err := h.studyService.FinishSession(r.Context(), learnerID, sessionID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to finish session")
		return
	}

	log.Debug("session finished",
		slog.String("session_id", sessionID.String()),
		slog.Int("cards_reviewed", result.Stats.CardsReviewed),
		slog.Int("completion_rate", result.CompletionRate))
	shared.RespondWithJSON(w, r, http.StatusOK, finishResultToResponse(result))
}

// GetGlobalStats handles GET /study/stats requests.
func (h *StudyHandler) GetGlobalStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.studyService.GetGlobalStats(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get study stats")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, globalStatsToResponse(stats))
}

// ListDueItems handles GET /study/due requests. The collection is named by
// the required collection_id query parameter; tag_id and limit are optional.
func (h *StudyHandler) ListDueItems(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	learnerID, ok := getLearnerIDFromContext(r)
	if !ok {
		log.Warn("learner ID not found or invalid in request context")
		HandleAPIError(w, r, domain.ErrUnauthorized, "")
		return
	}

	query := r.URL.Query()

	rawCollectionID := query.Get("collection_id")
	if rawCollectionID == "" {
		HandleAPIError(w, r,
			domain.NewValidationError("collection_id", "is required", domain.ErrValidation), "")
		return
	}
	collectionID, err := uuid.Parse(rawCollectionID)
	if err != nil {
		HandleAPIError(w, r,
			domain.NewValidationError("collection_id", "has invalid format", domain.ErrInvalidID), "")
		return
	}

	var tagID *uuid.UUID
	if rawTagID := query.Get("tag_id"); rawTagID != "" {
		parsed, err := uuid.Parse(rawTagID)
		if err != nil {
			HandleAPIError(w, r,
				domain.NewValidationError("tag_id", "has invalid format", domain.ErrInvalidID), "")
			return
		}
		tagID = &parsed
	}

	// Out-of-range limits are normalized by the service, so parse errors are
	// the only rejection here.
	limit := 0
	if rawLimit := query.Get("limit"); rawLimit != "" {
		limit, err = strconv.Atoi(rawLimit)
		if err != nil {
			HandleAPIError(w, r,
				domain.NewValidationError("limit", "must be an integer", domain.ErrValidation), "")
			return
		}
	}

	items, err := h.studyService.ListDueItems(r.Context(), learnerID, collectionID, tagID, limit)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list due items")
		return
	}

	log.Debug("listed due items",
		slog.String("learner_id", learnerID.String()),
		slog.String("collection_id", collectionID.String()),
		slog.Int("count", len(items)))
	shared.RespondWithJSON(w, r, http.StatusOK, dueItemsToResponse(items))
}
