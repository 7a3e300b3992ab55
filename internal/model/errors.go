package model

import "errors"

var (
	ErrIllegalMove        = errors.New("illegal move")
	ErrNoPiece            = errors.New("no piece at from square")
	ErrNotYourTurn        = errors.New("not your turn")
	ErrGameOver           = errors.New("game is over")
	ErrOutOfBounds        = errors.New("square out of bounds")
	ErrPromotionRequired  = errors.New("promotion piece required")
	ErrInvalidPromotion   = errors.New("invalid promotion")
	ErrNoPendingPromotion = errors.New("no pending promotion")
	ErrPromotionPending   = errors.New("promotion pending")
	ErrPlayerInQueue      = errors.New("player already in queue")
	ErrQueueTooSmall      = errors.New("not enough players in queue")
)
