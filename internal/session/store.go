package session

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/recall-api/internal/domain"
	"github.com/phrazzld/recall-api/internal/domain/srs"
)

// Store is the in-memory session registry. It owns the map from session ID
// to live session and is the only component that creates or evicts them.
// Entries are dropped in two ways: lazily, when a lookup finds the entry
// past its retention window, and in bulk by the Reaper's periodic sweep.
//
// The registry lock only guards the map; per-session state is guarded by
// each session's own mutex. Lock order is always registry then session,
// never the reverse.
type Store struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session

	scheduler srs.Service
	logger    *slog.Logger

	// timeFunc returns the current time. Tests swap it for a fixed clock.
	timeFunc func() time.Time
}

// GlobalStats aggregates review activity across every session currently
// held in the registry, finished or active.
type GlobalStats struct {
	TotalSessions      int
	ActiveSessions     int
	TotalCardsReviewed int
	AverageSessionTime time.Duration
}

// NewStore creates a session registry using the given scheduler for review
// calculations.
//
// ALLOW-PANIC: Constructor enforces non-nil dependencies via panic.
func NewStore(scheduler srs.Service, logger *slog.Logger) *Store {
	if scheduler == nil {
		panic("scheduler cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}

	return &Store{
		sessions:  make(map[uuid.UUID]*Session),
		scheduler: scheduler,
		logger:    logger.With(slog.String("component", "session_store")),
		timeFunc:  func() time.Time { return time.Now().UTC() },
	}
}

// NewStoreWithClock creates a registry with an injected clock. Tests use it
// to drive expiry deterministically.
//
// ALLOW-PANIC: Constructor enforces non-nil dependencies via panic.
func NewStoreWithClock(scheduler srs.Service, logger *slog.Logger, timeFunc func() time.Time) *Store {
	if timeFunc == nil {
		panic("timeFunc cannot be nil")
	}
	store := NewStore(scheduler, logger)
	store.timeFunc = timeFunc
	return store
}

// Now returns the registry's current instant. Sessions handed out by Get
// expect this same clock for their Next/Review/Finish calls.
func (st *Store) Now() time.Time {
	return st.timeFunc()
}

// Create builds a new Active session over the given due items and registers
// it. An empty item slice is rejected with ErrNoCardsAvailable.
func (st *Store) Create(learnerID, collectionID uuid.UUID, items []domain.Item) (*Session, error) {
	now := st.timeFunc()

	sess, err := newSession(learnerID, collectionID, items, st.scheduler, now)
	if err != nil {
		return nil, err
	}

	st.mu.Lock()
	st.sessions[sess.ID()] = sess
	st.mu.Unlock()

	st.logger.Debug("session created",
		slog.String("session_id", sess.ID().String()),
		slog.String("learner_id", learnerID.String()),
		slog.Int("queue_length", sess.queue.Total()))

	return sess, nil
}

// Get returns the live session with the given ID. Lookups apply the
// retention rules: an unknown ID yields ErrSessionNotFound; an Active
// session past its TTL is evicted and yields ErrSessionExpired; a Finished
// session past its grace window is evicted and yields ErrSessionNotFound.
// Eviction on lookup means correctness never depends on the reaper having
// run.
func (st *Store) Get(id uuid.UUID) (*Session, error) {
	st.mu.RLock()
	sess, ok := st.sessions[id]
	st.mu.RUnlock()

	if !ok {
		return nil, ErrSessionNotFound
	}

	now := st.timeFunc()
	if err := sess.access(now); err != nil {
		st.Delete(id)
		return nil, err
	}

	return sess, nil
}

// Delete removes a session from the registry. Removing an absent ID is a
// no-op.
func (st *Store) Delete(id uuid.UUID) {
	st.mu.Lock()
	delete(st.sessions, id)
	st.mu.Unlock()
}

// Len returns the number of sessions currently registered, including
// finished and expired ones that have not been swept yet.
func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

// Reap evicts every session whose retention window has elapsed and returns
// how many were removed. The Reaper calls this periodically; it is also
// safe to call directly.
func (st *Store) Reap() int {
	now := st.timeFunc()

	st.mu.RLock()
	candidates := make([]*Session, 0, len(st.sessions))
	for _, sess := range st.sessions {
		candidates = append(candidates, sess)
	}
	st.mu.RUnlock()

	var expired []uuid.UUID
	for _, sess := range candidates {
		if sess.reapable(now) {
			expired = append(expired, sess.ID())
		}
	}

	if len(expired) == 0 {
		return 0
	}

	st.mu.Lock()
	for _, id := range expired {
		delete(st.sessions, id)
	}
	st.mu.Unlock()

	st.logger.Info("reaped sessions",
		slog.Int("count", len(expired)),
		slog.Int("remaining", st.Len()))

	return len(expired)
}

// GlobalStats aggregates the registry: total and active session counts,
// cards reviewed across all sessions, and the mean session duration.
func (st *Store) GlobalStats() GlobalStats {
	now := st.timeFunc()

	st.mu.RLock()
	sessions := make([]*Session, 0, len(st.sessions))
	for _, sess := range st.sessions {
		sessions = append(sessions, sess)
	}
	st.mu.RUnlock()

	var agg GlobalStats
	var totalTime time.Duration
	for _, sess := range sessions {
		stats, status := sess.statsView(now)
		agg.TotalSessions++
		if status == StatusActive {
			agg.ActiveSessions++
		}
		agg.TotalCardsReviewed += stats.CardsReviewed
		totalTime += stats.TimeSpent
	}

	if agg.TotalSessions > 0 {
		agg.AverageSessionTime = totalTime / time.Duration(agg.TotalSessions)
	}

	return agg
}
