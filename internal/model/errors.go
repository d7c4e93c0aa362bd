package model

import "errors"

// Common errors used across the client
var (
	// Session errors
	ErrNotAuthenticated   = errors.New("not authenticated")
	ErrMissingCredentials = errors.New("username and password are required")
	ErrPasswordMismatch   = errors.New("passwords do not match")

	// Game errors
	ErrNoCategory   = errors.New("no category selected")
	ErrDeclined     = errors.New("action declined")
	ErrNoActiveGame = errors.New("no active game")
	ErrNoHints      = errors.New("no hints available")

	// Battle errors
	ErrInvalidJoinCode  = errors.New("join code must be exactly 6 characters")
	ErrNoActiveBattle   = errors.New("no active battle")
	ErrBattleInProgress = errors.New("a battle is already active")
	ErrEmoteNotOwned    = errors.New("emote is not owned")
	ErrChannelClosed    = errors.New("battle channel closed")
	ErrNotMatchmaking   = errors.New("not waiting for an opponent")

	// Shop errors
	ErrUnknownItem         = errors.New("unknown catalog item")
	ErrAlreadyOwned        = errors.New("item is already owned")
	ErrNotOwned            = errors.New("item is not owned")
	ErrNotEquippable       = errors.New("items of this kind cannot be equipped")
	ErrInsufficientBalance = errors.New("insufficient points")
	ErrInvalidQuantity     = errors.New("hint quantity must be between 1 and 100")
	ErrInvalidPoints       = errors.New("points must be between 0 and 10000")

	// Storage errors
	ErrProfileNotFound = errors.New("profile not found")
)
