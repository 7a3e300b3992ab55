package model

import "fmt"

// ApplyMove returns a copy of b with the piece on from moved to to. Whatever
// stood on to is overwritten. A king moving two columns also brings the
// corner rook across. The moved pieces are marked as having moved. b itself
// is never modified, and an empty from square yields an unchanged copy.
func ApplyMove(b Board, from, to Position) Board {
	piece, ok := b.At(from)
	if !ok {
		return b
	}
	b.Clear(from)
	piece.HasMoved = true
	b.Place(to, piece)

	if rookMove := castleRookMove(piece, from, to); rookMove != nil {
		rook, _ := b.At(rookMove.From)
		b.Clear(rookMove.From)
		rook.HasMoved = true
		b.Place(rookMove.To, rook)
	}
	return b
}

// ApplyPromotion applies a pawn move onto its last rank and replaces the pawn
// with kind.
func ApplyPromotion(b Board, from, to Position, kind PieceType) (Board, error) {
	piece, ok := b.At(from)
	if !ok {
		return b, ErrNoPiece
	}
	if !CanPromote(piece, to) {
		return b, fmt.Errorf("%w: %s pawn cannot promote on %s", ErrInvalidPromotion, piece.Color, to)
	}
	if !promotable(kind) {
		return b, fmt.Errorf("%w: %q", ErrInvalidPromotion, kind)
	}
	next := ApplyMove(b, from, to)
	promoted, _ := next.At(to)
	promoted.Type = kind
	next.Place(to, promoted)
	return next, nil
}

func promotable(kind PieceType) bool {
	switch kind {
	case Queen, Rook, Bishop, Knight:
		return true
	}
	return false
}

// castleRookMove returns the rook relocation implied by a king moving from
// -> to, or nil when the move is not a castle.
func castleRookMove(piece Piece, from, to Position) *CastleRookMove {
	if piece.Type != King || abs(to.Col-from.Col) != 2 {
		return nil
	}
	if to.Col > from.Col {
		return &CastleRookMove{From: Position{Row: from.Row, Col: 7}, To: Position{Row: from.Row, Col: 5}}
	}
	return &CastleRookMove{From: Position{Row: from.Row, Col: 0}, To: Position{Row: from.Row, Col: 3}}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
