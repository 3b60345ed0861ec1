package models

import (
	"fmt"
	"strings"
)

// Difficulty selects the number range and time budget of a quiz session.
type Difficulty string

const (
	DifficultyEasy Difficulty = "easy" // 0-9, 45s
	DifficultyHard Difficulty = "hard" // 10-20, 30s
)

// ParseDifficulty accepts "easy" or "hard" in any case.
func ParseDifficulty(s string) (Difficulty, error) {
	switch Difficulty(strings.ToLower(strings.TrimSpace(s))) {
	case DifficultyEasy:
		return DifficultyEasy, nil
	case DifficultyHard:
		return DifficultyHard, nil
	default:
		return "", fmt.Errorf("unknown difficulty %q", s)
	}
}

// Valid reports whether d is a known difficulty.
func (d Difficulty) Valid() bool {
	return d == DifficultyEasy || d == DifficultyHard
}

// Range returns the inclusive bounds targets and options are drawn from.
func (d Difficulty) Range() (min, max int) {
	if d == DifficultyHard {
		return 10, 20
	}
	return 0, 9
}

// TimeBudget returns the session length in seconds.
func (d Difficulty) TimeBudget() int {
	if d == DifficultyHard {
		return 30
	}
	return 45
}

// Title is the header shown while playing.
func (d Difficulty) Title() string {
	if d == DifficultyHard {
		return "Hard Mode"
	}
	return "Easy Mode"
}
