package entity

import "fmt"

// SM-2 tuning shared by the scheduler and the card store.
const (
	DefaultEaseFactor = 2.5
	MinEaseFactor     = 1.3
	MaxIntervalDays   = 365
	LearnedAfterDays  = 30
)

// CardRecord is the mutable learning state kept for every card of a deck.
type CardRecord struct {
	State          CardState  `json:"state"`
	EaseFactor     float64    `json:"ease_factor"`
	IntervalDays   int        `json:"interval_days"`
	Repetitions    int        `json:"repetitions"`
	LastQuality    Quality    `json:"last_quality"`
	LastReviewDate *Date      `json:"last_review_date"`
	NextReviewDate *Date      `json:"next_review_date"`
	Difficulty     Difficulty `json:"difficulty"`
}

// Validate checks the invariants a persisted record must satisfy.
func (r CardRecord) Validate() error {
	if !r.State.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidCardState, r.State)
	}
	if !r.Difficulty.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidDifficulty, r.Difficulty)
	}
	if err := r.LastQuality.Validate(); err != nil {
		return err
	}
	if r.EaseFactor < MinEaseFactor {
		return fmt.Errorf("ease factor %.2f below minimum %.2f", r.EaseFactor, MinEaseFactor)
	}
	if r.IntervalDays < 0 || r.IntervalDays > MaxIntervalDays {
		return fmt.Errorf("interval %d outside [0, %d]", r.IntervalDays, MaxIntervalDays)
	}
	if r.Repetitions < 0 {
		return fmt.Errorf("negative repetitions %d", r.Repetitions)
	}
	return nil
}

// NewCardRecord returns the initial record for a card that has never been reviewed.
func NewCardRecord(card Card) CardRecord {
	return CardRecord{
		State:      CardStateNew,
		EaseFactor: DefaultEaseFactor,
		Difficulty: card.BaseDifficulty.OrDefault(),
	}
}

// Clone returns a deep copy of the record. Date pointers are copied by value.
func (r CardRecord) Clone() CardRecord {
	out := r
	if r.LastReviewDate != nil {
		v := *r.LastReviewDate
		out.LastReviewDate = &v
	}
	if r.NextReviewDate != nil {
		v := *r.NextReviewDate
		out.NextReviewDate = &v
	}
	return out
}
