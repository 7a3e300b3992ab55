package model

// IsInCheck reports whether color's king is attacked. A board without such a
// king is treated as not in check.
func IsInCheck(b Board, color Color) bool {
	king, ok := b.KingPosition(color)
	if !ok {
		return false
	}
	return IsSquareAttacked(b, king, color.Opponent())
}

// IsSquareAttacked reports whether any piece of color by attacks pos.
// Attacks come from movement patterns only: castling never attacks, and
// pawns attack both forward diagonals whether or not they are occupied.
func IsSquareAttacked(b Board, pos Position, by Color) bool {
	for _, p := range b.Pieces(by) {
		var targets []Position
		if p.Type == Pawn {
			targets = pawnAttacks(p)
		} else {
			targets = basicMoves(&b, p)
		}
		for _, target := range targets {
			if target == pos {
				return true
			}
		}
	}
	return false
}
