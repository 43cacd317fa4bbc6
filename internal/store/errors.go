package store

import (
	"errors"
	"fmt"
)

// Sentinel errors shared by all store implementations. Entity-specific
// sentinels wrap ErrNotFound so callers can match either the broad or the
// narrow error with errors.Is.
var (
	// ErrNotFound is returned when a requested entity does not exist.
	ErrNotFound = errors.New("entity not found")

	// ErrInvalidEntity is returned when an entity fails validation before
	// being stored. The wrapped error carries the specifics.
	ErrInvalidEntity = errors.New("invalid entity")

	// ErrAccessDenied is returned when an operation targets an entity the
	// requesting learner does not own, such as fetching due items from
	// another learner's collection. It deliberately carries no detail about
	// the entity itself.
	ErrAccessDenied = errors.New("access denied")

	// ErrItemNotFound is the item-specific ErrNotFound.
	ErrItemNotFound = fmt.Errorf("%w: item", ErrNotFound)

	// ErrCollectionNotFound is the collection-specific ErrNotFound.
	ErrCollectionNotFound = fmt.Errorf("%w: collection", ErrNotFound)
)

// IsNotFoundError reports whether err is ErrNotFound or one of the
// entity-specific sentinels derived from it.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// StoreError attaches entity and operation context to a store failure.
type StoreError struct {
	Entity    string // e.g. "item", "collection"
	Operation string // e.g. "fetch_due", "record_review"
	Message   string
	Err       error // original error, if any
}

func (e *StoreError) Error() string {
	msg := fmt.Sprintf("%s operation on %s failed: %s", e.Operation, e.Entity, e.Message)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap supports errors.Is and errors.As on the original error.
func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError builds a StoreError wrapping err, which may be nil.
func NewStoreError(entity, operation, message string, err error) *StoreError {
	return &StoreError{
		Entity:    entity,
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
