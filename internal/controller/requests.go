package controller

import (
	"github.com/benbeisheim/chess-backend/internal/model"
	"github.com/benbeisheim/chess-backend/internal/notation"
)

type createRequest struct {
	Mode       string `json:"mode"`
	Difficulty string `json:"difficulty"`
}

// squareRequest names a square either as {"square":"e2"} or as
// {"row":6,"col":4}.
type squareRequest struct {
	Square string `json:"square"`
	Row    *int   `json:"row"`
	Col    *int   `json:"col"`
}

func (r squareRequest) position() (model.Position, error) {
	if r.Square != "" {
		return notation.ParseSquare(r.Square)
	}
	if r.Row == nil || r.Col == nil {
		return model.Position{}, notation.ErrInvalidSquare
	}
	pos := model.Position{Row: *r.Row, Col: *r.Col}
	if !pos.InBounds() {
		return model.Position{}, model.ErrOutOfBounds
	}
	return pos, nil
}

// moveRequest is either a coordinate move or a move in notation such as
// "Nf3" or "e7e8q".
type moveRequest struct {
	From      *model.Position `json:"from"`
	To        *model.Position `json:"to"`
	Promotion model.PieceType `json:"promotion"`
	Notation  string          `json:"notation"`
}

type promoteRequest struct {
	Piece model.PieceType `json:"piece"`
}

func modelMove(r moveRequest) model.Move {
	return model.Move{From: *r.From, To: *r.To, Promotion: r.Promotion}
}
