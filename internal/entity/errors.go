package entity

import "errors"

// Domain errors for cards, their learning records and persisted progress.
var (
	ErrCardNotFound        = errors.New("card not found")
	ErrInvalidCardID       = errors.New("invalid card ID")
	ErrInvalidCategory     = errors.New("invalid category")
	ErrInvalidDifficulty   = errors.New("invalid difficulty")
	ErrInvalidCardState    = errors.New("invalid card state")
	ErrInvalidQuality      = errors.New("invalid quality: must be an integer between 0 and 5")
	ErrInvalidDate         = errors.New("invalid date")
	ErrInvalidFilter       = errors.New("invalid filter expression")
	ErrUnsupportedSnapshot = errors.New("unsupported progress snapshot version")
)
