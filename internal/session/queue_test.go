package session

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/recall-api/internal/domain"
)

// testItems builds n distinct valid items in a single collection.
func testItems(t *testing.T, n int) []domain.Item {
	t.Helper()

	collectionID := uuid.New()
	items := make([]domain.Item, 0, n)
	for i := 0; i < n; i++ {
		item, err := domain.NewItem(collectionID, "front", "back", nil)
		require.NoError(t, err, "Failed to create test item")
		items = append(items, item)
	}
	return items
}

func TestNewQueue(t *testing.T) {
	t.Parallel() // Enable parallel execution

	t.Run("empty item list is rejected", func(t *testing.T) {
		t.Parallel()
		queue, err := NewQueue(nil)
		require.ErrorIs(t, err, ErrNoCardsAvailable)
		require.Nil(t, queue)

		queue, err = NewQueue([]domain.Item{})
		require.ErrorIs(t, err, ErrNoCardsAvailable)
		require.Nil(t, queue)
	})

	t.Run("items are copied at construction", func(t *testing.T) {
		t.Parallel()
		items := testItems(t, 2)
		originalFront := items[0].Front

		queue, err := NewQueue(items)
		require.NoError(t, err)

		// Mutating the caller's slice must not reach the queue.
		items[0].Front = "changed after construction"

		got, ok := queue.Next()
		require.True(t, ok)
		require.Equal(t, originalFront, got.Front)
	})
}

func TestQueueNextAndPeek(t *testing.T) {
	t.Parallel() // Enable parallel execution
	items := testItems(t, 3)
	queue, err := NewQueue(items)
	require.NoError(t, err)

	// Peek shows the head without consuming it.
	head, ok := queue.Peek()
	require.True(t, ok)
	require.Equal(t, items[0].ID, head.ID)
	require.Equal(t, 3, queue.Progress().Remaining)

	// Items come back in insertion order.
	for i := 0; i < 3; i++ {
		require.True(t, queue.HasNext())
		item, ok := queue.Next()
		require.True(t, ok)
		require.Equal(t, items[i].ID, item.ID, "items should dispense in order")
	}

	// Exhausted queue reports done from every angle.
	require.False(t, queue.HasNext())
	if _, ok := queue.Next(); ok {
		t.Error("Expected Next to report exhaustion")
	}
	if _, ok := queue.Peek(); ok {
		t.Error("Expected Peek to report exhaustion")
	}
}

func TestQueueProgress(t *testing.T) {
	t.Parallel() // Enable parallel execution

	t.Run("percentage uses round half away from zero", func(t *testing.T) {
		t.Parallel()
		queue, err := NewQueue(testItems(t, 7))
		require.NoError(t, err)

		// 1/7 = 14.28 -> 14, 2/7 = 28.57 -> 29, and so on up to exactly 100.
		wantPercent := []int{14, 29, 43, 57, 71, 86, 100}
		for i, want := range wantPercent {
			_, ok := queue.Next()
			require.True(t, ok)

			p := queue.Progress()
			require.Equal(t, i+1, p.Current)
			require.Equal(t, 7, p.Total)
			require.Equal(t, 7-(i+1), p.Remaining)
			require.Equal(t, want, p.Percentage, "percentage after %d of 7", i+1)
		}
	})

	t.Run("percentage never decreases", func(t *testing.T) {
		t.Parallel()
		queue, err := NewQueue(testItems(t, 13))
		require.NoError(t, err)

		last := queue.Progress().Percentage
		require.Equal(t, 0, last)

		for queue.HasNext() {
			_, _ = queue.Next()
			p := queue.Progress().Percentage
			if p < last {
				t.Fatalf("Percentage decreased from %d to %d", last, p)
			}
			last = p
		}
		require.Equal(t, 100, last, "exhausted queue should report exactly 100")
	})

	t.Run("single item jumps straight to 100", func(t *testing.T) {
		t.Parallel()
		queue, err := NewQueue(testItems(t, 1))
		require.NoError(t, err)

		require.Equal(t, 0, queue.Progress().Percentage)
		_, ok := queue.Next()
		require.True(t, ok)
		require.Equal(t, 100, queue.Progress().Percentage)
	})
}

func TestQueueFrozenSnapshot(t *testing.T) {
	t.Parallel() // Enable parallel execution
	items := testItems(t, 2)

	// Give the second item a schedule far in the future, as if it were
	// reviewed after the queue was built.
	items[1].NextReviewAt = time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)

	queue, err := NewQueue(items)
	require.NoError(t, err)

	_, _ = queue.Next()
	second, ok := queue.Next()
	require.True(t, ok)

	// The queue still dispenses the frozen copy regardless of schedule.
	require.Equal(t, items[1].ID, second.ID)
	require.Equal(t, 2, queue.Total())
}
