package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/recall-api/internal/domain"
	"github.com/phrazzld/recall-api/internal/domain/srs"
)

// Retention windows. Both are wire-level compatibility constants:
// TTL = 1800000 ms exactly, finished-session grace = 300000 ms exactly.
const (
	// TTL is how long a session stays usable after creation. A session
	// untouched past this deadline is Expired, whether or not the reaper
	// has run.
	TTL = 30 * time.Minute

	// FinishedRetention is the grace period a finished session remains
	// readable so the caller can collect final stats.
	FinishedRetention = 5 * time.Minute
)

// Status is the lifecycle state of a session. Active is the only state that
// accepts mutations; Finished and Expired are terminal.
type Status string

const (
	StatusActive   Status = "active"
	StatusFinished Status = "finished"
	StatusExpired  Status = "expired"
)

// NextResult is what a call to Next produces: either the next item to show,
// or notice that the queue is exhausted and the session has completed.
type NextResult struct {
	// Finished is true when the queue was already exhausted. The session has
	// transitioned to Finished and Stats/CompletionRate carry the final
	// numbers; Item is nil.
	Finished       bool
	Item           *domain.Item
	Progress       Progress
	Stats          Stats
	CompletionRate int
}

// ReviewResult carries the outcome of a graded review: the rescheduled item
// snapshot for the caller to persist, and the updated running stats.
type ReviewResult struct {
	Item     domain.Item
	Stats    Stats
	Progress Progress
}

// FinishResult is the summary returned when a session completes, whether by
// explicit Finish or by walking off the end of the queue.
type FinishResult struct {
	Stats          Stats
	CompletionRate int
}

// Snapshot is a read-only view of a session for status reporting.
type Snapshot struct {
	ID             uuid.UUID
	CollectionID   uuid.UUID
	LearnerID      uuid.UUID
	Status         Status
	Progress       Progress
	Stats          Stats
	CurrentItem    *domain.Item
	CompletionRate int
	CreatedAt      time.Time
	ExpiresAt      time.Time
}

// Session tracks one learner's pass through a frozen queue of due items.
// It is the unit of per-learner state: a queue cursor, running stats, the
// item currently awaiting review, and a three-state lifecycle.
//
// All methods take the current instant explicitly, so expiry is decided
// deterministically by the caller's clock rather than a hidden time.Now.
// A mutex serializes every operation: Next and Review each read and write
// several fields (cursor, stats, status, current item) that must change
// together, so callers hitting the same session concurrently are ordered
// rather than interleaved.
type Session struct {
	mu sync.Mutex

	id           uuid.UUID
	collectionID uuid.UUID
	learnerID    uuid.UUID

	status      Status
	createdAt   time.Time
	expiresAt   time.Time
	retainUntil time.Time

	queue *Queue
	stats Stats

	// current is the most recently dispensed item, nil before the first
	// Next. awaitingReview is true from dispense until a successful Review,
	// which is what keeps CardsReviewed from ever exceeding the queue total.
	current        *domain.Item
	awaitingReview bool
	dispensedAt    time.Time

	scheduler srs.Service
}

// newSession builds an Active session over the given due items. The item
// slice is copied into a frozen queue; an empty slice is rejected with
// ErrNoCardsAvailable. Only the Store creates sessions.
func newSession(
	learnerID, collectionID uuid.UUID,
	items []domain.Item,
	scheduler srs.Service,
	now time.Time,
) (*Session, error) {
	queue, err := NewQueue(items)
	if err != nil {
		return nil, err
	}

	return &Session{
		id:           uuid.New(),
		collectionID: collectionID,
		learnerID:    learnerID,
		status:       StatusActive,
		createdAt:    now,
		expiresAt:    now.Add(TTL),
		queue:        queue,
		stats:        Stats{StartedAt: now},
		scheduler:    scheduler,
	}, nil
}

// ID returns the session's unique identifier.
func (s *Session) ID() uuid.UUID {
	return s.id
}

// CollectionID returns the collection this session reviews.
func (s *Session) CollectionID() uuid.UUID {
	return s.collectionID
}

// LearnerID returns the learner the session belongs to.
func (s *Session) LearnerID() uuid.UUID {
	return s.learnerID
}

// CreatedAt returns when the session was created.
func (s *Session) CreatedAt() time.Time {
	return s.createdAt
}

// ExpiresAt returns the idle deadline after which the session is Expired.
func (s *Session) ExpiresAt() time.Time {
	return s.expiresAt
}

// Status returns the session's lifecycle state as of the given instant,
// applying the lazy expiry check first.
func (s *Session) Status(now time.Time) Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expireIfOverdueLocked(now)
	return s.status
}

// Peek returns the item the next call to Next will dispense, without
// advancing the queue. Used to preview the first item when a session is
// created. The second return value is false when the queue is exhausted.
func (s *Session) Peek() (domain.Item, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queue.Peek()
}

// Stats returns a copy of the session's running statistics.
func (s *Session) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

// Next dispenses the next queued item and marks it as awaiting review.
// When the queue is already exhausted it instead completes the session:
// the status flips to Finished, the retention window starts, and the
// result carries the final stats in the same call.
//
// Fails with ErrSessionExpired when the TTL has passed, or
// ErrSessionNotActive when the session already finished.
func (s *Session) Next(now time.Time) (NextResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureActiveLocked(now); err != nil {
		return NextResult{}, err
	}

	item, ok := s.queue.Next()
	if !ok {
		s.finishLocked(now)
		return NextResult{
			Finished:       true,
			Progress:       s.queue.Progress(),
			Stats:          s.stats,
			CompletionRate: s.completionRateLocked(),
		}, nil
	}

	s.current = &item
	s.awaitingReview = true
	s.dispensedAt = now

	dispensed := item
	return NextResult{
		Item:     &dispensed,
		Progress: s.queue.Progress(),
		Stats:    s.stats,
	}, nil
}

// Review grades the item currently awaiting review. On success it computes
// the new schedule for the item, folds the outcome into the stats, and
// returns the rescheduled snapshot for the caller to persist. The queue is
// not advanced; that is what the following Next call does.
//
// The rating must be one of the three accepted tiers
// (domain.ErrInvalidDifficulty otherwise) and itemID must name the item the
// last Next dispensed (ErrCardMismatch otherwise, including a second Review
// of an already-graded item). Either rejection leaves the stats and queue
// untouched.
func (s *Session) Review(
	itemID uuid.UUID,
	difficulty domain.Difficulty,
	now time.Time,
) (ReviewResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureActiveLocked(now); err != nil {
		return ReviewResult{}, err
	}

	if !difficulty.IsValid() {
		return ReviewResult{}, domain.ErrInvalidDifficulty
	}

	if s.current == nil || !s.awaitingReview || s.current.ID != itemID {
		return ReviewResult{}, ErrCardMismatch
	}

	updated, err := s.scheduler.CalculateNextReview(*s.current, difficulty, now)
	if err != nil {
		return ReviewResult{}, err
	}

	if err := s.stats.RecordReview(difficulty, now.Sub(s.dispensedAt)); err != nil {
		return ReviewResult{}, err
	}

	s.current = &updated
	s.awaitingReview = false

	return ReviewResult{
		Item:     updated,
		Stats:    s.stats,
		Progress: s.queue.Progress(),
	}, nil
}

// Finish ends the session early, keeping whatever progress was made. The
// completion rate reports how much of the original queue was actually
// reviewed. Fails with ErrSessionExpired past the TTL and
// ErrSessionNotActive when the session already finished.
func (s *Session) Finish(now time.Time) (FinishResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureActiveLocked(now); err != nil {
		return FinishResult{}, err
	}

	s.finishLocked(now)
	return FinishResult{
		Stats:          s.stats,
		CompletionRate: s.completionRateLocked(),
	}, nil
}

// StatusSnapshot returns a read-only view of the session. It is available
// while the session is Active and, after it finishes, for the length of the
// retention window (the Store evicts it afterwards). An expired session
// yields ErrSessionExpired.
func (s *Session) StatusSnapshot(now time.Time) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.expireIfOverdueLocked(now)
	if s.status == StatusExpired {
		return Snapshot{}, ErrSessionExpired
	}

	var current *domain.Item
	if s.current != nil {
		c := *s.current
		current = &c
	}

	return Snapshot{
		ID:             s.id,
		CollectionID:   s.collectionID,
		LearnerID:      s.learnerID,
		Status:         s.status,
		Progress:       s.queue.Progress(),
		Stats:          s.stats,
		CurrentItem:    current,
		CompletionRate: s.completionRateLocked(),
		CreatedAt:      s.createdAt,
		ExpiresAt:      s.expiresAt,
	}, nil
}

// ensureActiveLocked gates every mutating operation. It applies the lazy
// TTL check first, so an overdue session reports ErrSessionExpired exactly
// once per the state machine: the Active-past-deadline transition. Sessions
// already in a terminal state report ErrSessionNotActive.
func (s *Session) ensureActiveLocked(now time.Time) error {
	if s.status == StatusActive {
		if now.After(s.expiresAt) {
			s.status = StatusExpired
			return ErrSessionExpired
		}
		return nil
	}
	return ErrSessionNotActive
}

// expireIfOverdueLocked applies the lazy Active -> Expired transition.
func (s *Session) expireIfOverdueLocked(now time.Time) {
	if s.status == StatusActive && now.After(s.expiresAt) {
		s.status = StatusExpired
	}
}

// finishLocked transitions to Finished and opens the retention window.
func (s *Session) finishLocked(now time.Time) {
	s.status = StatusFinished
	s.retainUntil = now.Add(FinishedRetention)
	s.awaitingReview = false
}

// completionRateLocked is round(reviewed/total*100), capped at 100.
func (s *Session) completionRateLocked() int {
	rate := roundedPercent(s.stats.CardsReviewed, s.queue.Total())
	if rate > 100 {
		rate = 100
	}
	return rate
}

// access classifies the session for a registry lookup at the given instant,
// applying lazy expiry. It returns nil when the session may be handed out,
// ErrSessionExpired when the TTL has passed, and ErrSessionNotFound when a
// finished session's retention window has closed (the entry is due for
// eviction and the caller should treat it as gone).
func (s *Session) access(now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.status {
	case StatusActive:
		if now.After(s.expiresAt) {
			s.status = StatusExpired
			return ErrSessionExpired
		}
		return nil
	case StatusExpired:
		return ErrSessionExpired
	case StatusFinished:
		if now.After(s.retainUntil) {
			return ErrSessionNotFound
		}
		return nil
	default:
		return ErrSessionNotFound
	}
}

// reapable reports whether the session's retention window has elapsed:
// the TTL for Active sessions, the grace period for Finished ones. Expired
// sessions are always reapable.
func (s *Session) reapable(now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.status {
	case StatusActive:
		if now.After(s.expiresAt) {
			s.status = StatusExpired
			return true
		}
		return false
	case StatusExpired:
		return true
	case StatusFinished:
		return now.After(s.retainUntil)
	default:
		return true
	}
}

// statsView returns the stats and status under lock, for registry-wide
// aggregation.
func (s *Session) statsView(now time.Time) (Stats, Status) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expireIfOverdueLocked(now)
	return s.stats, s.status
}
