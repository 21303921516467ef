package entity

import (
	"fmt"
	"strings"
)

// Card is a deck entry supplied by the caller. It is immutable for scheduling purposes.
type Card struct {
	ID             string
	Category       Category
	BaseDifficulty Difficulty
	Front          string
	Back           string
}

// Normalize trims identifiers and applies defaults before the card enters a deck.
func (c *Card) Normalize() {
	c.ID = strings.TrimSpace(c.ID)
	c.Category = NormalizeCategory(string(c.Category))
	c.BaseDifficulty = c.BaseDifficulty.OrDefault()
	c.Front = strings.TrimSpace(c.Front)
	c.Back = strings.TrimSpace(c.Back)
}

// Validate checks the fields the scheduler depends on.
func (c Card) Validate() error {
	if strings.TrimSpace(c.ID) == "" {
		return ErrInvalidCardID
	}
	if c.Category.Code() == "" || NormalizeCategory(string(c.Category)) == CategoryAll || !c.Category.wellFormed() {
		return fmt.Errorf("%w: card %s has category %q", ErrInvalidCategory, c.ID, c.Category)
	}
	if !c.BaseDifficulty.OrDefault().IsValid() {
		return fmt.Errorf("%w: card %s has difficulty %q", ErrInvalidDifficulty, c.ID, c.BaseDifficulty)
	}
	return nil
}
