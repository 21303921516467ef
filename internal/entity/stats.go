package entity

import "time"

// DeckStats aggregates learning progress over every record of a deck.
type DeckStats struct {
	Total          int
	LearnedCount   int
	ToReviewCount  int
	DifficultCount int
	MasteryPercent int
}

// SessionStats summarises a single study session for the analytics collaborator.
type SessionStats struct {
	SessionID  string
	StartedAt  time.Time
	FinishedAt time.Time
	Studied    int
	Passed     int
	Failed     int
	ByCategory map[Category]int
	Deck       DeckStats
}
