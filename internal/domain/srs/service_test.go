package srs

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/recall-api/internal/domain"
)

func TestNewDefaultService(t *testing.T) {
	t.Parallel() // Enable parallel execution
	service := NewDefaultService()
	if service == nil {
		t.Fatal("Expected non-nil service")
	}

	// Check if default params are present
	defaultService, ok := service.(*defaultService)
	if !ok {
		t.Fatal("Expected *defaultService type")
	}

	if defaultService.params == nil {
		t.Fatal("Expected non-nil params")
	}
}

func TestServiceCalculateNextReview(t *testing.T) {
	t.Parallel() // Enable parallel execution
	service := NewDefaultService()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	item, err := domain.NewItem(uuid.New(), "front", "back", nil)
	require.NoError(t, err, "Failed to create item")

	testCases := []struct {
		name        string
		difficulty  domain.Difficulty
		expectedGap time.Duration
		expectErr   error
	}{
		{
			name:        "easy schedules four days out",
			difficulty:  domain.DifficultyEasy,
			expectedGap: 4 * 24 * time.Hour,
		},
		{
			name:        "normal schedules one day out",
			difficulty:  domain.DifficultyNormal,
			expectedGap: 24 * time.Hour,
		},
		{
			name:        "hard schedules four hours out",
			difficulty:  domain.DifficultyHard,
			expectedGap: 4 * time.Hour,
		},
		{
			name:       "out of range difficulty is rejected",
			difficulty: domain.Difficulty(4),
			expectErr:  domain.ErrInvalidDifficulty,
		},
		{
			name:       "zero difficulty is rejected",
			difficulty: domain.Difficulty(0),
			expectErr:  domain.ErrInvalidDifficulty,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			updated, err := service.CalculateNextReview(item, tc.difficulty, now)

			if tc.expectErr != nil {
				require.ErrorIs(t, err, tc.expectErr)
				require.Equal(t, domain.Item{}, updated, "rejected review should return a zero item")
				return
			}

			require.NoError(t, err)
			require.Equal(t, tc.expectedGap, updated.NextReviewAt.Sub(now))
			require.True(t, updated.LastReviewedAt.Equal(now))
			require.Equal(t, item.ReviewCount+1, updated.ReviewCount)

			// The caller's copy stays untouched.
			require.True(t, item.LastReviewedAt.IsZero())
			require.Equal(t, 0, item.ReviewCount)
		})
	}
}

func TestServiceInterval(t *testing.T) {
	t.Parallel() // Enable parallel execution
	service := NewDefaultService()

	gap, err := service.Interval(domain.DifficultyHard)
	require.NoError(t, err)
	require.Equal(t, HardInterval, gap)

	_, err = service.Interval(domain.Difficulty(42))
	if !errors.Is(err, domain.ErrInvalidDifficulty) {
		t.Errorf("Expected ErrInvalidDifficulty, got %v", err)
	}
}

func TestServiceWithCustomParams(t *testing.T) {
	t.Parallel() // Enable parallel execution
	service := NewServiceWithParams(NewParams(ParamsConfig{
		HardInterval: 30 * time.Minute,
	}))
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	item, err := domain.NewItem(uuid.New(), "front", "back", nil)
	require.NoError(t, err, "Failed to create item")

	updated, err := service.CalculateNextReview(item, domain.DifficultyHard, now)
	require.NoError(t, err)
	require.Equal(t, 30*time.Minute, updated.NextReviewAt.Sub(now))
}
