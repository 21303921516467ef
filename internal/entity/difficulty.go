package entity

import (
	"fmt"
	"strings"
)

// Difficulty classifies how hard a card is to recall.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Rank orders difficulties from easiest (0) to hardest (2). Unknown values rank last.
func (d Difficulty) Rank() int {
	switch d {
	case DifficultyEasy:
		return 0
	case DifficultyMedium:
		return 1
	case DifficultyHard:
		return 2
	default:
		return 3
	}
}

// IsValid reports whether d is one of the supported difficulties.
func (d Difficulty) IsValid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	default:
		return false
	}
}

// OrDefault falls back to medium when the difficulty is unspecified.
func (d Difficulty) OrDefault() Difficulty {
	if d == "" {
		return DifficultyMedium
	}
	return d
}

func (d Difficulty) String() string { return string(d) }

// ParseDifficulty converts an arbitrary string into a Difficulty. Empty input yields medium.
func ParseDifficulty(raw string) (Difficulty, error) {
	d := Difficulty(strings.ToLower(strings.TrimSpace(raw))).OrDefault()
	if !d.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidDifficulty, raw)
	}
	return d, nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Difficulty) UnmarshalText(text []byte) error {
	parsed, err := ParseDifficulty(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
