package model

// LegalMoves returns the destinations of the piece on pos that do not leave
// its own king in check. An empty square yields no moves.
func LegalMoves(b Board, pos Position) []Position {
	p, ok := b.At(pos)
	if !ok {
		return []Position{}
	}
	return legalMovesForPiece(b, p)
}

func legalMovesForPiece(b Board, p Piece) []Position {
	legal := []Position{}
	for _, target := range PseudoLegalMoves(b, p) {
		// ApplyMove works on its own copy, so b stays untouched.
		next := ApplyMove(b, p.Position, target)
		if !IsInCheck(next, p.Color) {
			legal = append(legal, target)
		}
	}
	return legal
}

// LegalMovesForColor lists every legal move of color. A pawn move onto the
// last rank is listed once; the promotion kind is chosen when it is applied.
func LegalMovesForColor(b Board, color Color) []Move {
	moves := []Move{}
	for _, p := range b.Pieces(color) {
		for _, target := range legalMovesForPiece(b, p) {
			moves = append(moves, Move{From: p.Position, To: target})
		}
	}
	return moves
}

// HasLegalMove reports whether color can make at least one legal move.
func HasLegalMove(b Board, color Color) bool {
	for _, p := range b.Pieces(color) {
		if len(legalMovesForPiece(b, p)) > 0 {
			return true
		}
	}
	return false
}

func IsCheckmate(b Board, color Color) bool {
	return IsInCheck(b, color) && !HasLegalMove(b, color)
}

func IsStalemate(b Board, color Color) bool {
	return !IsInCheck(b, color) && !HasLegalMove(b, color)
}

// IsLegalMove reports whether m is among the legal moves of the piece on m.From.
func IsLegalMove(b Board, m Move) bool {
	for _, target := range LegalMoves(b, m.From) {
		if target == m.To {
			return true
		}
	}
	return false
}
