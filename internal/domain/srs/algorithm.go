package srs

import (
	"time"

	"github.com/phrazzld/recall-api/internal/domain"
)

// calculateNextReview applies a review at the given difficulty to an item and
// returns the rescheduled copy.
//
// Unlike adaptive SM-2 style algorithms, the schedule here is a fixed
// three-tier table: the next review lands at now plus the interval configured
// for the difficulty, regardless of the item's history. Harder items
// therefore come back sooner and easier items later, with no per-item state
// beyond the timestamps themselves.
//
// Parameters:
//   - item: The item that was reviewed; it is copied, never mutated
//   - difficulty: The learner's rating, already validated by the caller
//   - now: The moment the review is recorded; the new schedule is measured from it
//   - params: Configuration holding the per-tier intervals
//
// Returns:
//   - A new item with NextReviewAt = now + interval, LastReviewedAt = now,
//     ReviewCount incremented by one, and UpdatedAt = now
func calculateNextReview(
	item domain.Item,
	difficulty domain.Difficulty,
	now time.Time,
	params *Params,
) domain.Item {
	interval := params.Intervals[difficulty]

	item.NextReviewAt = now.Add(interval)
	item.LastReviewedAt = now
	item.ReviewCount++
	item.UpdatedAt = now

	return item
}
