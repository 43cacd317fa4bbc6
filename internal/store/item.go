package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/recall-api/internal/domain"
)

// ItemStore defines the interface for item persistence as seen by the study
// engine. Sessions hold value snapshots fetched through it at start and
// write review outcomes back through it one at a time; nothing else about
// item lifecycle (creation, editing, deletion) flows through this interface.
type ItemStore interface {
	// FetchDue retrieves the items in the given collection that are due for
	// review, ordered for study: never-reviewed items first, then ascending
	// next review time. An item is due when it has never been scheduled or
	// its next review time is not after the current time. Inactive items are
	// excluded. The result is capped at limit.
	//
	// tagID, when non-nil, restricts the result to items carrying that tag.
	//
	// Ownership is enforced here: returns ErrCollectionNotFound when the
	// collection does not exist and ErrAccessDenied when it belongs to a
	// learner other than learnerID. An owned collection with nothing due
	// returns an empty slice and no error.
	FetchDue(
		ctx context.Context,
		learnerID, collectionID uuid.UUID,
		tagID *uuid.UUID,
		limit int,
	) ([]domain.Item, error)

	// GetByID retrieves an item by its unique ID.
	// Returns ErrItemNotFound if the item does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Item, error)

	// RecordReview persists the outcome of one graded review: the new
	// schedule, the review timestamp, and a review count incremented by one.
	// The increment happens in the database so concurrent sessions reviewing
	// the same item cannot lose counts.
	// Returns ErrItemNotFound if the item does not exist.
	RecordReview(ctx context.Context, itemID uuid.UUID, nextReviewAt, lastReviewedAt time.Time) error
}
