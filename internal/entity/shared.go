package entity

import (
	"fmt"
	"strings"
	"unicode"
)

// Category tags a card with a caller-defined subject area (e.g. "pain", "respiratory").
type Category string

// CategoryAll disables category filtering when selecting due cards.
const CategoryAll Category = "all"

// Code returns the trimmed category value (without defaulting).
func (c Category) Code() string {
	return strings.TrimSpace(string(c))
}

// IsAll reports whether the category selects every card.
func (c Category) IsAll() bool {
	return c.Code() == "" || NormalizeCategory(string(c)) == CategoryAll
}

// Matches reports whether a card tagged with other passes this category filter.
func (c Category) Matches(other Category) bool {
	if c.IsAll() {
		return true
	}
	return NormalizeCategory(string(c)) == NormalizeCategory(string(other))
}

// NormalizeCategory lowercases and trims a raw category tag.
func NormalizeCategory(raw string) Category {
	return Category(strings.ToLower(strings.TrimSpace(raw)))
}

// ParseCategory converts user input into a category filter. An empty value selects all cards.
func ParseCategory(raw string) (Category, error) {
	c := NormalizeCategory(raw)
	if c == "" {
		return CategoryAll, nil
	}
	if !c.wellFormed() {
		return "", fmt.Errorf("%w: %q", ErrInvalidCategory, raw)
	}
	return c, nil
}

// wellFormed allows inner spaces ("skin care") but no control characters.
func (c Category) wellFormed() bool {
	return strings.IndexFunc(string(c), unicode.IsControl) < 0
}
