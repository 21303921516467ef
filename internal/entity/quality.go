package entity

import (
	"fmt"
	"strconv"
	"strings"
)

// Quality grades self-reported recall strength for a single review, 0 (blackout) to 5 (perfect).
type Quality int

const (
	MinQuality  Quality = 0
	MaxQuality  Quality = 5
	PassQuality Quality = 3
)

// IsValid reports whether q lies within [MinQuality, MaxQuality].
func (q Quality) IsValid() bool {
	return q >= MinQuality && q <= MaxQuality
}

// Passed reports whether the review counts as a successful recall.
func (q Quality) Passed() bool {
	return q >= PassQuality
}

// Validate returns ErrInvalidQuality for out-of-range values.
func (q Quality) Validate() error {
	if !q.IsValid() {
		return fmt.Errorf("%w: got %d", ErrInvalidQuality, int(q))
	}
	return nil
}

// ParseQuality converts user input such as "4" into a validated Quality.
func ParseQuality(raw string) (Quality, error) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidQuality, raw)
	}
	q := Quality(n)
	if err := q.Validate(); err != nil {
		return 0, err
	}
	return q, nil
}
