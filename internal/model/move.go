package model

// Move is a transient (from, to) pair. Promotion names the replacement kind
// when a pawn reaches its last rank and is empty otherwise.
type Move struct {
	From      Position  `json:"from"`
	To        Position  `json:"to"`
	Promotion PieceType `json:"promotion,omitempty"`
}

// SameSquares reports whether m and other connect the same two squares,
// ignoring the promotion kind.
func (m Move) SameSquares(other Move) bool {
	return m.From == other.From && m.To == other.To
}

type CastleRookMove struct {
	From Position `json:"from"`
	To   Position `json:"to"`
}

// Ply records one executed half-move.
type Ply struct {
	Piece          Piece           `json:"piece"`
	From           Position        `json:"from"`
	To             Position        `json:"to"`
	CapturedPiece  *Piece          `json:"capturedPiece"`
	CastleRookMove *CastleRookMove `json:"castleRookMove"`
	Promotion      PieceType       `json:"promotion,omitempty"`
}
