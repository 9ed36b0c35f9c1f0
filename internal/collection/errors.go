package collection

import "errors"

var (
	// ErrInvalidInput wraps every validation failure.
	ErrInvalidInput = errors.New("invalid input")

	ErrDeckNotFound  = errors.New("deck not found")
	ErrGameNotFound  = errors.New("game not found")
	ErrDuplicateDeck = errors.New("a deck with that name already exists")
)
