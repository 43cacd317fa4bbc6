package session

import (
	"math"

	"github.com/phrazzld/recall-api/internal/domain"
)

// Progress describes how far a session has advanced through its queue.
// Current counts items dispensed so far, so Percentage is monotonically
// non-decreasing and reaches exactly 100 when the queue is exhausted.
type Progress struct {
	Current    int
	Total      int
	Remaining  int
	Percentage int
}

// Queue is the frozen, ordered set of items a session walks through.
// It is built once from the due-item list fetched at session start and is
// never re-sorted or refreshed: items that become due mid-session wait for
// the next session. The zero cursor means nothing has been dispensed yet.
//
// Queue is not safe for concurrent use; the owning Session serializes access.
type Queue struct {
	items  []domain.Item
	cursor int
}

// NewQueue builds a queue from the given ordered items. The slice is copied
// so later changes to the caller's slice cannot reach the session.
// Returns ErrNoCardsAvailable when items is empty.
func NewQueue(items []domain.Item) (*Queue, error) {
	if len(items) == 0 {
		return nil, ErrNoCardsAvailable
	}

	frozen := make([]domain.Item, len(items))
	copy(frozen, items)

	return &Queue{items: frozen}, nil
}

// Next returns the item at the cursor and advances past it.
// The second return value is false when the queue is exhausted.
func (q *Queue) Next() (domain.Item, bool) {
	if q.cursor >= len(q.items) {
		return domain.Item{}, false
	}

	item := q.items[q.cursor]
	q.cursor++
	return item, true
}

// Peek returns the item at the cursor without advancing.
// The second return value is false when the queue is exhausted.
func (q *Queue) Peek() (domain.Item, bool) {
	if q.cursor >= len(q.items) {
		return domain.Item{}, false
	}
	return q.items[q.cursor], true
}

// HasNext reports whether any items remain to be dispensed.
func (q *Queue) HasNext() bool {
	return q.cursor < len(q.items)
}

// Total returns the frozen queue size.
func (q *Queue) Total() int {
	return len(q.items)
}

// Progress returns the current position counters.
func (q *Queue) Progress() Progress {
	total := len(q.items)
	return Progress{
		Current:    q.cursor,
		Total:      total,
		Remaining:  total - q.cursor,
		Percentage: roundedPercent(q.cursor, total),
	}
}

// roundedPercent computes round(part/whole*100) with a zero whole guarded.
func roundedPercent(part, whole int) int {
	if whole == 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(whole) * 100))
}
