package service

import "errors"

var (
	ErrGameNotFound    = errors.New("game not found")
	ErrGameExists      = errors.New("game already exists")
	ErrGameFull        = errors.New("game is full")
	ErrPlayerNotInGame = errors.New("player is not seated in this game")
	ErrNotAuthorized   = errors.New("not authorized")
	ErrUnknownMode     = errors.New("unknown game mode")
	ErrStateChanged    = errors.New("game changed while the computer was thinking")
	ErrNotConnected    = errors.New("player has no open connection")
)
