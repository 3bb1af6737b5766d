package service

import "errors"

// Common service errors
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotSignedIn  = errors.New("not signed in")
)

// Matchmaking errors
var (
	ErrAlreadyInQueue = errors.New("already in matchmaking queue")
)

// Room errors
var (
	ErrRoomNotFound    = errors.New("room not found")
	ErrRoomExpired     = errors.New("room code expired")
	ErrInvalidRoomCode = errors.New("invalid room code")
	ErrRoomUnavailable = errors.New("could not allocate room code")
)

// Game session errors
var (
	ErrGameNotFound       = errors.New("game not found")
	ErrGameAlreadyStarted = errors.New("game already started")
	ErrGameFull           = errors.New("game is full")
	ErrOwnGame            = errors.New("cannot join your own game")
	ErrNoActiveGame       = errors.New("no active game")
)
