package model

import (
	"encoding/json"
	"fmt"
)

type PieceType string

const (
	King   PieceType = "king"
	Queen  PieceType = "queen"
	Rook   PieceType = "rook"
	Bishop PieceType = "bishop"
	Knight PieceType = "knight"
	Pawn   PieceType = "pawn"
)

// Letter returns the upper-case piece letter used by chess notations.
func (p PieceType) Letter() string {
	switch p {
	case King:
		return "K"
	case Queen:
		return "Q"
	case Rook:
		return "R"
	case Bishop:
		return "B"
	case Knight:
		return "N"
	case Pawn:
		return "P"
	}
	return ""
}

type Color string

const (
	White Color = "white"
	Black Color = "black"
)

func (c Color) Opponent() Color {
	if c == White {
		return Black
	}
	return White
}

// Position is a (row, col) square. Row 0 is black's back rank, row 7 white's.
type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func (p Position) InBounds() bool {
	return p.Row >= 0 && p.Row < 8 && p.Col >= 0 && p.Col < 8
}

func (p Position) offset(dRow, dCol int) Position {
	return Position{Row: p.Row + dRow, Col: p.Col + dCol}
}

func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.Row, p.Col)
}

type Piece struct {
	Type     PieceType `json:"type"`
	Color    Color     `json:"color"`
	Position Position  `json:"position"`
	HasMoved bool      `json:"hasMoved"`
}

// Empty reports whether p is the zero value that marks an unoccupied square.
func (p Piece) Empty() bool {
	return p.Type == ""
}

// Board is an 8x8 grid of pieces. It is a plain value: assigning a Board
// copies every square, so simulations never alias the caller's board.
type Board struct {
	squares [8][8]Piece
}

// At returns the piece on pos and whether the square is occupied.
// Out-of-bounds positions read as empty.
func (b *Board) At(pos Position) (Piece, bool) {
	if !pos.InBounds() {
		return Piece{}, false
	}
	p := b.squares[pos.Row][pos.Col]
	return p, !p.Empty()
}

// Place puts p on pos, overwriting any occupant, and keeps p.Position in sync.
func (b *Board) Place(pos Position, p Piece) {
	p.Position = pos
	b.squares[pos.Row][pos.Col] = p
}

func (b *Board) Clear(pos Position) {
	b.squares[pos.Row][pos.Col] = Piece{}
}

// Pieces returns every piece of the given color in row-major order.
func (b *Board) Pieces(color Color) []Piece {
	pieces := make([]Piece, 0, 16)
	for row := 0; row < 8; row++ {
		for col := 0; col < 8; col++ {
			p := b.squares[row][col]
			if !p.Empty() && p.Color == color {
				pieces = append(pieces, p)
			}
		}
	}
	return pieces
}

// KingPosition locates the king of color. ok is false on a board without one.
func (b *Board) KingPosition(color Color) (Position, bool) {
	for row := 0; row < 8; row++ {
		for col := 0; col < 8; col++ {
			p := b.squares[row][col]
			if p.Type == King && p.Color == color {
				return p.Position, true
			}
		}
	}
	return Position{}, false
}

func (b Board) MarshalJSON() ([]byte, error) {
	rows := make([][]*Piece, 8)
	for row := 0; row < 8; row++ {
		rows[row] = make([]*Piece, 8)
		for col := 0; col < 8; col++ {
			if p := b.squares[row][col]; !p.Empty() {
				rows[row][col] = &p
			}
		}
	}
	return json.Marshal(rows)
}

func (b *Board) UnmarshalJSON(data []byte) error {
	var rows [][]*Piece
	if err := json.Unmarshal(data, &rows); err != nil {
		return err
	}
	var next Board
	for row := 0; row < len(rows) && row < 8; row++ {
		for col := 0; col < len(rows[row]) && col < 8; col++ {
			if p := rows[row][col]; p != nil {
				next.Place(Position{Row: row, Col: col}, *p)
			}
		}
	}
	*b = next
	return nil
}

var backRank = [8]PieceType{Rook, Knight, Bishop, Queen, King, Bishop, Knight, Rook}

// InitialBoard returns the standard starting position, black on rows 0-1.
func InitialBoard() Board {
	var board Board
	for col := 0; col < 8; col++ {
		board.Place(Position{Row: 0, Col: col}, Piece{Type: backRank[col], Color: Black})
		board.Place(Position{Row: 1, Col: col}, Piece{Type: Pawn, Color: Black})
		board.Place(Position{Row: 6, Col: col}, Piece{Type: Pawn, Color: White})
		board.Place(Position{Row: 7, Col: col}, Piece{Type: backRank[col], Color: White})
	}
	return board
}
