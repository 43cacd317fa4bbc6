package srs

import (
	"time"

	"github.com/phrazzld/recall-api/internal/domain"
)

// Service defines the interface for scheduling operations.
type Service interface {
	// CalculateNextReview computes the rescheduled item for a review at the
	// given difficulty. The input item is never mutated; the returned copy
	// carries the new schedule. Returns domain.ErrInvalidDifficulty when the
	// rating is outside the accepted range.
	CalculateNextReview(
		item domain.Item,
		difficulty domain.Difficulty,
		now time.Time,
	) (domain.Item, error)

	// Interval returns the configured delay until the next review for the
	// given difficulty. Returns domain.ErrInvalidDifficulty when the rating
	// is outside the accepted range.
	Interval(difficulty domain.Difficulty) (time.Duration, error)
}

// defaultService is the standard implementation of the Service interface
type defaultService struct {
	params *Params
}

// NewDefaultService creates a new scheduler service with default parameters
func NewDefaultService() Service {
	return &defaultService{
		params: NewDefaultParams(),
	}
}

// NewServiceWithParams creates a new scheduler service with custom parameters
func NewServiceWithParams(params *Params) Service {
	return &defaultService{
		params: params,
	}
}

// CalculateNextReview implements the Service interface for rescheduling items
func (s *defaultService) CalculateNextReview(
	item domain.Item,
	difficulty domain.Difficulty,
	now time.Time,
) (domain.Item, error) {
	if !difficulty.IsValid() {
		return domain.Item{}, domain.ErrInvalidDifficulty
	}

	return calculateNextReview(item, difficulty, now, s.params), nil
}

// Interval implements the Service interface for interval lookups
func (s *defaultService) Interval(difficulty domain.Difficulty) (time.Duration, error) {
	if !difficulty.IsValid() {
		return 0, domain.ErrInvalidDifficulty
	}

	return s.params.Intervals[difficulty], nil
}
