package entity

import (
	"fmt"
	"strings"
)

// CardState is the learning stage of a card.
//
// Cards start as new, move to learning after the first pass, to reviewing
// after the second and to learned once the review interval exceeds
// LearnedAfterDays. A failed review sends any card back to learning.
type CardState string

const (
	CardStateNew       CardState = "new"
	CardStateLearning  CardState = "learning"
	CardStateReviewing CardState = "reviewing"
	CardStateLearned   CardState = "learned"
)

// IsValid reports whether s is one of the known states.
func (s CardState) IsValid() bool {
	switch s {
	case CardStateNew, CardStateLearning, CardStateReviewing, CardStateLearned:
		return true
	default:
		return false
	}
}

func (s CardState) String() string { return string(s) }

// ParseCardState converts an arbitrary string into a CardState.
func ParseCardState(raw string) (CardState, error) {
	s := CardState(strings.ToLower(strings.TrimSpace(raw)))
	if !s.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidCardState, raw)
	}
	return s, nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *CardState) UnmarshalText(text []byte) error {
	parsed, err := ParseCardState(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
