package model

var (
	rookDirs   = []Position{{Row: 1, Col: 0}, {Row: -1, Col: 0}, {Row: 0, Col: 1}, {Row: 0, Col: -1}}
	bishopDirs = []Position{{Row: 1, Col: 1}, {Row: 1, Col: -1}, {Row: -1, Col: 1}, {Row: -1, Col: -1}}
	queenDirs  = append(append([]Position{}, rookDirs...), bishopDirs...)
	knightDirs = []Position{{Row: 2, Col: 1}, {Row: 2, Col: -1}, {Row: -2, Col: 1}, {Row: -2, Col: -1}, {Row: 1, Col: 2}, {Row: 1, Col: -2}, {Row: -1, Col: 2}, {Row: -1, Col: -2}}
)

// moveRule enumerates the destinations a piece reaches by its own movement
// pattern, ignoring castling and whether its king is left in check.
type moveRule func(b *Board, p Piece) []Position

var moveRules = map[PieceType]moveRule{
	Pawn:   pawnMoves,
	Knight: func(b *Board, p Piece) []Position { return stepMoves(b, p, knightDirs) },
	Bishop: func(b *Board, p Piece) []Position { return slideMoves(b, p, bishopDirs) },
	Rook:   func(b *Board, p Piece) []Position { return slideMoves(b, p, rookDirs) },
	Queen:  func(b *Board, p Piece) []Position { return slideMoves(b, p, queenDirs) },
	King:   func(b *Board, p Piece) []Position { return stepMoves(b, p, queenDirs) },
}

// PseudoLegalMoves returns every destination p can reach by its movement
// pattern, including castling candidates for an unmoved king. The result may
// leave p's own king in check; see LegalMoves.
func PseudoLegalMoves(b Board, p Piece) []Position {
	moves := basicMoves(&b, p)
	if p.Type == King {
		moves = append(moves, castlingMoves(&b, p)...)
	}
	return moves
}

func basicMoves(b *Board, p Piece) []Position {
	rule, ok := moveRules[p.Type]
	if !ok {
		return nil
	}
	return rule(b, p)
}

// canLand reports whether p may finish on target: on the board and not
// occupied by a friendly piece.
func canLand(b *Board, p Piece, target Position) bool {
	if !target.InBounds() {
		return false
	}
	occupant, occupied := b.At(target)
	return !occupied || occupant.Color != p.Color
}

func stepMoves(b *Board, p Piece, dirs []Position) []Position {
	moves := []Position{}
	for _, dir := range dirs {
		target := p.Position.offset(dir.Row, dir.Col)
		if canLand(b, p, target) {
			moves = append(moves, target)
		}
	}
	return moves
}

func slideMoves(b *Board, p Piece, dirs []Position) []Position {
	moves := []Position{}
	for _, dir := range dirs {
		target := p.Position.offset(dir.Row, dir.Col)
		for target.InBounds() {
			occupant, occupied := b.At(target)
			if !occupied {
				moves = append(moves, target)
			} else {
				if occupant.Color != p.Color {
					moves = append(moves, target)
				}
				break
			}
			target = target.offset(dir.Row, dir.Col)
		}
	}
	return moves
}

// PawnDirection is the row delta of a forward pawn step: white pawns advance
// toward row 0, black pawns toward row 7.
func PawnDirection(color Color) int {
	if color == White {
		return -1
	}
	return 1
}

// En passant is not implemented.
func pawnMoves(b *Board, p Piece) []Position {
	moves := []Position{}
	dir := PawnDirection(p.Color)

	one := p.Position.offset(dir, 0)
	if one.InBounds() {
		if _, occupied := b.At(one); !occupied {
			moves = append(moves, one)
			two := p.Position.offset(2*dir, 0)
			if !p.HasMoved && two.InBounds() {
				if _, occupied := b.At(two); !occupied {
					moves = append(moves, two)
				}
			}
		}
	}

	for _, target := range pawnAttacks(p) {
		if occupant, occupied := b.At(target); occupied && occupant.Color != p.Color {
			moves = append(moves, target)
		}
	}
	return moves
}

// pawnAttacks returns the on-board diagonal squares a pawn threatens,
// regardless of what stands on them.
func pawnAttacks(p Piece) []Position {
	dir := PawnDirection(p.Color)
	attacks := make([]Position, 0, 2)
	for _, dCol := range []int{-1, 1} {
		if target := p.Position.offset(dir, dCol); target.InBounds() {
			attacks = append(attacks, target)
		}
	}
	return attacks
}

// castlingMoves returns the king's castling destinations: column 6 for the
// king side, column 2 for the queen side.
func castlingMoves(b *Board, king Piece) []Position {
	if king.HasMoved {
		return nil
	}
	moves := []Position{}
	row := king.Position.Row
	for _, side := range []struct{ rookCol, dest int }{{rookCol: 7, dest: 6}, {rookCol: 0, dest: 2}} {
		rook, ok := b.At(Position{Row: row, Col: side.rookCol})
		if !ok || rook.Type != Rook || rook.Color != king.Color || rook.HasMoved {
			continue
		}
		if !pathClear(b, row, king.Position.Col, side.rookCol) {
			continue
		}
		if kingPathAttacked(b, king, side.dest) {
			continue
		}
		moves = append(moves, Position{Row: row, Col: side.dest})
	}
	return moves
}

// pathClear reports whether every square strictly between two columns on row
// is empty.
func pathClear(b *Board, row, fromCol, toCol int) bool {
	step := 1
	if toCol < fromCol {
		step = -1
	}
	for col := fromCol + step; col != toCol; col += step {
		if _, occupied := b.At(Position{Row: row, Col: col}); occupied {
			return false
		}
	}
	return true
}

// kingPathAttacked checks the king's square, every square it crosses and its
// destination.
func kingPathAttacked(b *Board, king Piece, destCol int) bool {
	step := 1
	if destCol < king.Position.Col {
		step = -1
	}
	by := king.Color.Opponent()
	for col := king.Position.Col; ; col += step {
		if IsSquareAttacked(*b, Position{Row: king.Position.Row, Col: col}, by) {
			return true
		}
		if col == destCol {
			return false
		}
	}
}

// CanPromote reports whether p standing on pos would be eligible for
// promotion: a pawn on the farthest rank for its color.
func CanPromote(p Piece, pos Position) bool {
	if p.Type != Pawn {
		return false
	}
	if p.Color == White {
		return pos.Row == 0
	}
	return pos.Row == 7
}
