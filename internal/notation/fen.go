package notation

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/benbeisheim/chess-backend/internal/model"
)

var fenPieces = map[byte]model.PieceType{
	'p': model.Pawn,
	'n': model.Knight,
	'b': model.Bishop,
	'r': model.Rook,
	'q': model.Queen,
	'k': model.King,
}

func pieceChar(p model.Piece) string {
	letter := p.Type.Letter()
	if p.Color == model.Black {
		return strings.ToLower(letter)
	}
	return letter
}

// FEN renders the board with toMove to play. Castling rights come from the
// has-moved flags of the kings and corner rooks; the en-passant field is
// always "-" and the halfmove clock is always 0.
func FEN(b model.Board, toMove model.Color, fullmove int) string {
	var sb strings.Builder
	sb.WriteString(Placement(b))

	if toMove == model.White {
		sb.WriteString(" w ")
	} else {
		sb.WriteString(" b ")
	}
	sb.WriteString(castlingRights(b))
	if fullmove < 1 {
		fullmove = 1
	}
	fmt.Fprintf(&sb, " - 0 %d", fullmove)
	return sb.String()
}

// Placement renders only the piece-placement field of a FEN string.
func Placement(b model.Board) string {
	var sb strings.Builder
	for row := 0; row < 8; row++ {
		empty := 0
		for col := 0; col < 8; col++ {
			p, ok := b.At(model.Position{Row: row, Col: col})
			if !ok {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteString(strconv.Itoa(empty))
				empty = 0
			}
			sb.WriteString(pieceChar(p))
		}
		if empty > 0 {
			sb.WriteString(strconv.Itoa(empty))
		}
		if row < 7 {
			sb.WriteByte('/')
		}
	}
	return sb.String()
}

type castleRight struct {
	symbol string
	color  model.Color
	king   model.Position
	rook   model.Position
}

var castleRights = []castleRight{
	{"K", model.White, model.Position{Row: 7, Col: 4}, model.Position{Row: 7, Col: 7}},
	{"Q", model.White, model.Position{Row: 7, Col: 4}, model.Position{Row: 7, Col: 0}},
	{"k", model.Black, model.Position{Row: 0, Col: 4}, model.Position{Row: 0, Col: 7}},
	{"q", model.Black, model.Position{Row: 0, Col: 4}, model.Position{Row: 0, Col: 0}},
}

func castlingRights(b model.Board) string {
	rights := ""
	for _, r := range castleRights {
		king, ok := b.At(r.king)
		if !ok || king.Type != model.King || king.Color != r.color || king.HasMoved {
			continue
		}
		rook, ok := b.At(r.rook)
		if !ok || rook.Type != model.Rook || rook.Color != r.color || rook.HasMoved {
			continue
		}
		rights += r.symbol
	}
	if rights == "" {
		return "-"
	}
	return rights
}

// ParseFEN reads the placement, side-to-move and castling fields of a FEN
// string; the remaining fields are accepted but ignored. Pieces are marked as
// moved unless they are pawns on their starting rank, or kings and rooks
// covered by a castling right.
func ParseFEN(fen string) (model.Board, model.Color, error) {
	var board model.Board
	fields := strings.Fields(fen)
	if len(fields) < 2 {
		return board, "", fmt.Errorf("%w: expected at least 2 fields, got %d", ErrInvalidFEN, len(fields))
	}

	ranks := strings.Split(fields[0], "/")
	if len(ranks) != 8 {
		return board, "", fmt.Errorf("%w: expected 8 ranks, got %d", ErrInvalidFEN, len(ranks))
	}
	for row, rank := range ranks {
		col := 0
		for i := 0; i < len(rank); i++ {
			c := rank[i]
			if c >= '1' && c <= '8' {
				col += int(c - '0')
				continue
			}
			kind, ok := fenPieces[toLower(c)]
			if !ok {
				return board, "", fmt.Errorf("%w: unknown piece %q", ErrInvalidFEN, c)
			}
			if col > 7 {
				return board, "", fmt.Errorf("%w: rank %d overflows", ErrInvalidFEN, 8-row)
			}
			color := model.Black
			if c >= 'A' && c <= 'Z' {
				color = model.White
			}
			board.Place(model.Position{Row: row, Col: col}, model.Piece{
				Type:     kind,
				Color:    color,
				HasMoved: !pawnOnStartRank(kind, color, row),
			})
			col++
		}
		if col != 8 {
			return board, "", fmt.Errorf("%w: rank %d has %d squares", ErrInvalidFEN, 8-row, col)
		}
	}

	var toMove model.Color
	switch fields[1] {
	case "w":
		toMove = model.White
	case "b":
		toMove = model.Black
	default:
		return board, "", fmt.Errorf("%w: side to move %q", ErrInvalidFEN, fields[1])
	}

	if len(fields) > 2 && fields[2] != "-" {
		for _, symbol := range fields[2] {
			right, ok := lookupRight(string(symbol))
			if !ok {
				return board, "", fmt.Errorf("%w: castling right %q", ErrInvalidFEN, symbol)
			}
			markUnmoved(&board, right.king, model.King, right.color)
			markUnmoved(&board, right.rook, model.Rook, right.color)
		}
	}
	return board, toMove, nil
}

func lookupRight(symbol string) (castleRight, bool) {
	for _, r := range castleRights {
		if r.symbol == symbol {
			return r, true
		}
	}
	return castleRight{}, false
}

func markUnmoved(b *model.Board, pos model.Position, kind model.PieceType, color model.Color) {
	p, ok := b.At(pos)
	if !ok || p.Type != kind || p.Color != color {
		return
	}
	p.HasMoved = false
	b.Place(pos, p)
}

func pawnOnStartRank(kind model.PieceType, color model.Color, row int) bool {
	if kind != model.Pawn {
		return false
	}
	if color == model.White {
		return row == 6
	}
	return row == 1
}

func toLower(c byte) byte {
	if c >= 'A' && c <= 'Z' {
		return c + 'a' - 'A'
	}
	return c
}
