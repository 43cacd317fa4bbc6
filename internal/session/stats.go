package session

import (
	"time"

	"github.com/phrazzld/recall-api/internal/domain"
)

// Stats holds the running counters for a session. Values are returned to
// callers by copy; only the owning Session mutates them, through
// RecordReview. The per-tier counters always sum to CardsReviewed.
type Stats struct {
	CardsReviewed int
	Easy          int
	Normal        int
	Hard          int
	TimeSpent     time.Duration
	StartedAt     time.Time
}

// RecordReview folds one graded review into the counters. Exactly one tier
// counter is incremented per call, keeping the tier sum equal to
// CardsReviewed. A rejected difficulty leaves the counters untouched.
// Negative response times (possible only with a skewed injected clock) are
// clamped to zero so TimeSpent stays non-negative.
func (s *Stats) RecordReview(difficulty domain.Difficulty, responseTime time.Duration) error {
	if responseTime < 0 {
		responseTime = 0
	}

	switch difficulty {
	case domain.DifficultyEasy:
		s.Easy++
	case domain.DifficultyNormal:
		s.Normal++
	case domain.DifficultyHard:
		s.Hard++
	default:
		return domain.ErrInvalidDifficulty
	}

	s.CardsReviewed++
	s.TimeSpent += responseTime
	return nil
}

// AverageResponseTime returns TimeSpent divided by CardsReviewed using exact
// integer duration division, or zero before the first review.
func (s Stats) AverageResponseTime() time.Duration {
	if s.CardsReviewed == 0 {
		return 0
	}
	return s.TimeSpent / time.Duration(s.CardsReviewed)
}
