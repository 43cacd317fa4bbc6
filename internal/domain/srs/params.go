package srs

import (
	"time"

	"github.com/phrazzld/recall-api/internal/domain"
)

// Fixed default review intervals per difficulty tier. These values are a
// compatibility contract with existing clients and stored schedules:
// easy = 345600000 ms, normal = 86400000 ms, hard = 14400000 ms exactly.
const (
	EasyInterval   = 4 * 24 * time.Hour
	NormalInterval = 24 * time.Hour
	HardInterval   = 4 * time.Hour
)

// Params defines the configurable parameters for the scheduler.
type Params struct {
	// Intervals maps each difficulty tier to the delay until the next review.
	Intervals map[domain.Difficulty]time.Duration
}

// ParamsConfig allows overriding the default intervals when creating a new
// Params instance. Zero values keep the corresponding default.
type ParamsConfig struct {
	EasyInterval   time.Duration
	NormalInterval time.Duration
	HardInterval   time.Duration
}

// NewDefaultParams creates a new Params instance with the default intervals.
func NewDefaultParams() *Params {
	return &Params{
		Intervals: map[domain.Difficulty]time.Duration{
			domain.DifficultyEasy:   EasyInterval,
			domain.DifficultyNormal: NormalInterval,
			domain.DifficultyHard:   HardInterval,
		},
	}
}

// NewParams creates a new Params instance with custom configuration.
func NewParams(config ParamsConfig) *Params {
	params := NewDefaultParams()

	if config.EasyInterval > 0 {
		params.Intervals[domain.DifficultyEasy] = config.EasyInterval
	}
	if config.NormalInterval > 0 {
		params.Intervals[domain.DifficultyNormal] = config.NormalInterval
	}
	if config.HardInterval > 0 {
		params.Intervals[domain.DifficultyHard] = config.HardInterval
	}

	return params
}
