package domain

import "errors"

// -----------------------------------------------------------------------------
// Domain Errors
// Validation failures returned by domain helpers. The state machine treats
// every one of them as a rejected intent, never as a fatal condition.
// -----------------------------------------------------------------------------

// Player errors
var (
	ErrInvalidName   = errors.New("player name must not be empty")
	ErrNameTooLong   = errors.New("player name is too long")
	ErrInvalidAvatar = errors.New("unknown avatar")
	ErrInvalidDesign = errors.New("unknown design theme")
)

// Question errors
var (
	ErrInvalidQuestion = errors.New("invalid question")
)

// Catalog errors
var (
	ErrUnknownSticker   = errors.New("unknown sticker")
	ErrUnknownAdventure = errors.New("unknown adventure theme")
	ErrUnknownTopic     = errors.New("unknown math topic")
)
