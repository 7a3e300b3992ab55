package model

import (
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

// pos builds a Position from a square name such as "e2".
func pos(square string) Position {
	return Position{Row: 8 - int(square[1]-'0'), Col: int(square[0] - 'a')}
}

func piece(t PieceType, c Color, square string) Piece {
	return Piece{Type: t, Color: c, Position: pos(square), HasMoved: true}
}

func unmoved(p Piece) Piece {
	p.HasMoved = false
	return p
}

func boardWith(pieces ...Piece) Board {
	var b Board
	for _, p := range pieces {
		b.Place(p.Position, p)
	}
	return b
}

func squares(names ...string) []Position {
	out := make([]Position, 0, len(names))
	for _, n := range names {
		out = append(out, pos(n))
	}
	return out
}

var (
	sortPositions = cmpopts.SortSlices(func(a, b Position) bool {
		if a.Row != b.Row {
			return a.Row < b.Row
		}
		return a.Col < b.Col
	})
	sortMoves = cmpopts.SortSlices(func(a, b Move) bool {
		if a.From != b.From {
			return a.From.Row*8+a.From.Col < b.From.Row*8+b.From.Col
		}
		return a.To.Row*8+a.To.Col < b.To.Row*8+b.To.Col
	})
	compareBoards = cmp.AllowUnexported(Board{})
)
