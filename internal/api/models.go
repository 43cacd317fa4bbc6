package api

import (
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/recall-api/internal/domain"
	"github.com/phrazzld/recall-api/internal/service/study"
	"github.com/phrazzld/recall-api/internal/session"
)

// Request payloads

// StartSessionRequest defines the payload for starting a study session.
// Limit is optional; out-of-range values are normalized by the service
// rather than rejected.
type StartSessionRequest struct {
	CollectionID string `json:"collection_id" validate:"required,uuid"`
	TagID        string `json:"tag_id,omitempty" validate:"omitempty,uuid"`
	Limit        int    `json:"limit,omitempty"`
}

// SubmitReviewRequest defines the payload for grading the item awaiting review.
type SubmitReviewRequest struct {
	ItemID     string `json:"item_id"    validate:"required,uuid"`
	Difficulty int    `json:"difficulty" validate:"required"`
}

// Response payloads. Durations are reported in whole milliseconds.

// StatsResponse carries per-session review counters.
type StatsResponse struct {
	CardsReviewed         int   `json:"cards_reviewed"`
	Easy                  int   `json:"easy"`
	Normal                int   `json:"normal"`
	Hard                  int   `json:"hard"`
	TimeSpentMs           int64 `json:"time_spent_ms"`
	AverageResponseTimeMs int64 `json:"average_response_time_ms"`
}

// ProgressResponse describes queue advancement within a session.
type ProgressResponse struct {
	Current    int `json:"current"`
	Total      int `json:"total"`
	Remaining  int `json:"remaining"`
	Percentage int `json:"percentage"`
}

// StartSessionResponse is returned when a session is created. CurrentItem
// previews the queue head without consuming it.
type StartSessionResponse struct {
	SessionID    uuid.UUID     `json:"session_id"`
	CollectionID uuid.UUID     `json:"collection_id"`
	TotalItems   int           `json:"total_items"`
	QueueLength  int           `json:"queue_length"`
	CurrentItem  *domain.Item  `json:"current_item"`
	Stats        StatsResponse `json:"stats"`
	ExpiresAt    time.Time     `json:"expires_at"`
}

// NextItemResponse is returned when dispensing the next item. When the queue
// is exhausted Finished is true, Item is absent, and Stats/CompletionRate
// carry the final numbers.
type NextItemResponse struct {
	Finished       bool             `json:"finished"`
	Item           *domain.Item     `json:"item,omitempty"`
	Progress       ProgressResponse `json:"progress"`
	Stats          StatsResponse    `json:"stats"`
	CompletionRate *int             `json:"completion_rate,omitempty"`
}

// SubmitReviewResponse is returned after a successful review: the
// rescheduled item and the updated counters.
type SubmitReviewResponse struct {
	Item     domain.Item      `json:"item"`
	Stats    StatsResponse    `json:"stats"`
	Progress ProgressResponse `json:"progress"`
}

// SessionStatusResponse is a read-only view of a session.
type SessionStatusResponse struct {
	SessionID      uuid.UUID        `json:"session_id"`
	CollectionID   uuid.UUID        `json:"collection_id"`
	LearnerID      uuid.UUID        `json:"learner_id"`
	Status         session.Status   `json:"status"`
	Progress       ProgressResponse `json:"progress"`
	Stats          StatsResponse    `json:"stats"`
	CurrentItem    *domain.Item     `json:"current_item,omitempty"`
	CompletionRate int              `json:"completion_rate"`
	CreatedAt      time.Time        `json:"created_at"`
	ExpiresAt      time.Time        `json:"expires_at"`
}

// FinishSessionResponse summarizes a completed session.
type FinishSessionResponse struct {
	Stats          StatsResponse `json:"stats"`
	CompletionRate int           `json:"completion_rate"`
}

// GlobalStatsResponse aggregates review activity across all live sessions.
type GlobalStatsResponse struct {
	TotalSessions        int   `json:"total_sessions"`
	ActiveSessions       int   `json:"active_sessions"`
	TotalCardsReviewed   int   `json:"total_cards_reviewed"`
	AverageSessionTimeMs int64 `json:"average_session_time_ms"`
}

// DueItemsResponse lists a learner's due items without starting a session.
type DueItemsResponse struct {
	Items []domain.Item `json:"items"`
	Count int           `json:"count"`
}

// Converters from service and session types to wire shapes.

func statsToResponse(s session.Stats) StatsResponse {
	return StatsResponse{
		CardsReviewed:         s.CardsReviewed,
		Easy:                  s.Easy,
		Normal:                s.Normal,
		Hard:                  s.Hard,
		TimeSpentMs:           s.TimeSpent.Milliseconds(),
		AverageResponseTimeMs: s.AverageResponseTime().Milliseconds(),
	}
}

func progressToResponse(p session.Progress) ProgressResponse {
	return ProgressResponse{
		Current:    p.Current,
		Total:      p.Total,
		Remaining:  p.Remaining,
		Percentage: p.Percentage,
	}
}

func startResultToResponse(r *study.StartResult) StartSessionResponse {
	return StartSessionResponse{
		SessionID:    r.SessionID,
		CollectionID: r.CollectionID,
		TotalItems:   r.TotalItems,
		QueueLength:  r.QueueLength,
		CurrentItem:  r.FirstItem,
		Stats:        statsToResponse(r.Stats),
		ExpiresAt:    r.ExpiresAt,
	}
}

func nextResultToResponse(r *session.NextResult) NextItemResponse {
	resp := NextItemResponse{
		Finished: r.Finished,
		Item:     r.Item,
		Progress: progressToResponse(r.Progress),
		Stats:    statsToResponse(r.Stats),
	}
	if r.Finished {
		rate := r.CompletionRate
		resp.CompletionRate = &rate
	}
	return resp
}

func reviewResultToResponse(r *session.ReviewResult) SubmitReviewResponse {
	return SubmitReviewResponse{
		Item:     r.Item,
		Stats:    statsToResponse(r.Stats),
		Progress: progressToResponse(r.Progress),
	}
}

func snapshotToResponse(s *session.Snapshot) SessionStatusResponse {
	return SessionStatusResponse{
		SessionID:      s.ID,
		CollectionID:   s.CollectionID,
		LearnerID:      s.LearnerID,
		Status:         s.Status,
		Progress:       progressToResponse(s.Progress),
		Stats:          statsToResponse(s.Stats),
		CurrentItem:    s.CurrentItem,
		CompletionRate: s.CompletionRate,
		CreatedAt:      s.CreatedAt,
		ExpiresAt:      s.ExpiresAt,
	}
}

func finishResultToResponse(r *session.FinishResult) FinishSessionResponse {
	return FinishSessionResponse{
		Stats:          statsToResponse(r.Stats),
		CompletionRate: r.CompletionRate,
	}
}

func globalStatsToResponse(s session.GlobalStats) GlobalStatsResponse {
	return GlobalStatsResponse{
		TotalSessions:        s.TotalSessions,
		ActiveSessions:       s.ActiveSessions,
		TotalCardsReviewed:   s.TotalCardsReviewed,
		AverageSessionTimeMs: s.AverageSessionTime.Milliseconds(),
	}
}

func dueItemsToResponse(items []domain.Item) DueItemsResponse {
	if items == nil {
		items = []domain.Item{}
	}
	return DueItemsResponse{
		Items: items,
		Count: len(items),
	}
}
