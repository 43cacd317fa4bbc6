package session

import "errors"

// Session lifecycle and review errors. These are the stable failure modes of
// the study engine; callers branch on them with errors.Is and the API layer
// maps each to a distinct HTTP status.
var (
	// ErrNoCardsAvailable is returned when a session is requested for a
	// collection with no due items.
	ErrNoCardsAvailable = errors.New("no cards available for review")

	// ErrSessionNotFound is returned when no session exists for the given ID,
	// including sessions already reclaimed after their retention window.
	ErrSessionNotFound = errors.New("study session not found")

	// ErrSessionExpired is returned when a session has outlived its idle TTL.
	// The session is treated as gone from the moment the deadline passes,
	// even before the reaper has removed it.
	ErrSessionExpired = errors.New("study session expired")

	// ErrSessionNotActive is returned when a mutating operation targets a
	// finished session.
	ErrSessionNotActive = errors.New("study session is not active")

	// ErrCardMismatch is returned when a review targets an item other than
	// the one currently awaiting review. The queue does not advance and the
	// stats are untouched.
	ErrCardMismatch = errors.New("submitted item is not the current item awaiting review")
)
