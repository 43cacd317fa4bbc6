package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// MaxContentLength is the maximum number of characters allowed on either
// side of an item.
const MaxContentLength = 5000

// Item-specific validation errors
var (
	// ErrItemIDEmpty is returned when an item ID is empty or nil.
	ErrItemIDEmpty = errors.New("item ID cannot be empty")

	// ErrItemCollectionIDEmpty is returned when an item's collection ID is empty or nil.
	ErrItemCollectionIDEmpty = errors.New("item collection ID cannot be empty")

	// ErrItemFrontEmpty is returned when an item's front side is empty.
	ErrItemFrontEmpty = errors.New("item front cannot be empty")

	// ErrItemBackEmpty is returned when an item's back side is empty.
	ErrItemBackEmpty = errors.New("item back cannot be empty")

	// ErrItemContentTooLong is returned when either side exceeds MaxContentLength.
	ErrItemContentTooLong = errors.New("item content exceeds maximum length")

	// ErrItemReviewCountNegative is returned when an item carries a negative review count.
	ErrItemReviewCountNegative = errors.New("item review count cannot be negative")
)

// Item is a reviewable flashcard as seen by a study session. Sessions work
// on value copies frozen at session start, so a later change to the stored
// row never alters what a running session dispenses. Scheduling updates
// produce a new value rather than mutating the receiver.
//
// A zero LastReviewedAt means the item has never been reviewed; a zero
// NextReviewAt means it has never been scheduled and is due immediately.
type Item struct {
	ID             uuid.UUID  `json:"id"`
	CollectionID   uuid.UUID  `json:"collection_id"`
	TagID          *uuid.UUID `json:"tag_id,omitempty"`
	Front          string     `json:"front"`
	Back           string     `json:"back"`
	ReviewCount    int        `json:"review_count"`
	LastReviewedAt time.Time  `json:"last_reviewed_at"`
	NextReviewAt   time.Time  `json:"next_review_at"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// NewItem creates a new Item in the given collection with the given sides.
// It generates a new UUID for the item ID and sets the creation/update
// timestamps. The item starts unscheduled (due immediately).
// Returns an error if validation fails.
func NewItem(collectionID uuid.UUID, front, back string, tagID *uuid.UUID) (Item, error) {
	now := time.Now().UTC()
	item := Item{
		ID:           uuid.New(),
		CollectionID: collectionID,
		TagID:        tagID,
		Front:        front,
		Back:         back,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := item.Validate(); err != nil {
		return Item{}, err
	}

	return item, nil
}

// Validate checks if the Item has valid data.
// Returns an error if any field fails validation.
func (i Item) Validate() error {
	if i.ID == uuid.Nil {
		return ErrItemIDEmpty
	}

	if i.CollectionID == uuid.Nil {
		return ErrItemCollectionIDEmpty
	}

	if i.Front == "" {
		return ErrItemFrontEmpty
	}

	if i.Back == "" {
		return ErrItemBackEmpty
	}

	if len(i.Front) > MaxContentLength || len(i.Back) > MaxContentLength {
		return ErrItemContentTooLong
	}

	if i.ReviewCount < 0 {
		return ErrItemReviewCountNegative
	}

	return nil
}
