package domain

import "fmt"

// Difficulty is the learner's rating of how hard an item was to recall.
// The numeric values are fixed wire-level constants: clients submit them as
// integers and the scheduler keys its interval table on them.
type Difficulty int

const (
	// DifficultyEasy means the item was recalled without effort.
	DifficultyEasy Difficulty = 1

	// DifficultyNormal means the item was recalled with some effort.
	DifficultyNormal Difficulty = 2

	// DifficultyHard means the item was barely recalled or not at all.
	DifficultyHard Difficulty = 3
)

// IsValid reports whether d is one of the three accepted ratings.
func (d Difficulty) IsValid() bool {
	switch d {
	case DifficultyEasy, DifficultyNormal, DifficultyHard:
		return true
	default:
		return false
	}
}

// String returns the lowercase name of the rating, or a descriptive
// placeholder for out-of-range values.
func (d Difficulty) String() string {
	switch d {
	case DifficultyEasy:
		return "easy"
	case DifficultyNormal:
		return "normal"
	case DifficultyHard:
		return "hard"
	default:
		return fmt.Sprintf("invalid(%d)", int(d))
	}
}

// MarshalText implements encoding.TextMarshaler using the lowercase rating
// name. Out-of-range values fail rather than emitting the placeholder.
func (d Difficulty) MarshalText() ([]byte, error) {
	if !d.IsValid() {
		return nil, ErrInvalidDifficulty
	}
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. It accepts exactly
// the lowercase rating names.
func (d *Difficulty) UnmarshalText(text []byte) error {
	switch string(text) {
	case "easy":
		*d = DifficultyEasy
	case "normal":
		*d = DifficultyNormal
	case "hard":
		*d = DifficultyHard
	default:
		return ErrInvalidDifficulty
	}
	return nil
}

// ParseDifficulty converts a raw integer (typically from a request body)
// into a Difficulty. Returns ErrInvalidDifficulty for anything outside
// the accepted range; the stats counters and queue are never touched by
// a rejected rating.
func ParseDifficulty(v int) (Difficulty, error) {
	d := Difficulty(v)
	if !d.IsValid() {
		return 0, ErrInvalidDifficulty
	}
	return d, nil
}
