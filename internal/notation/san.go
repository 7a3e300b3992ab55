package notation

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/benbeisheim/chess-backend/internal/model"
)

var promotionKinds = []model.PieceType{model.Queen, model.Rook, model.Bishop, model.Knight}

// SAN renders m, a legal move on b, in standard algebraic notation,
// including disambiguation and a check or mate suffix. A promotion move with
// no kind chosen is rendered without the "=X" suffix.
func SAN(b model.Board, m model.Move) string {
	p, ok := b.At(m.From)
	if !ok {
		return ""
	}
	san := sanBody(b, p, m)

	var next model.Board
	if m.Promotion != "" && model.CanPromote(p, m.To) {
		promoted, err := model.ApplyPromotion(b, m.From, m.To, m.Promotion)
		if err != nil {
			return san
		}
		next = promoted
	} else {
		next = model.ApplyMove(b, m.From, m.To)
	}

	opponent := p.Color.Opponent()
	switch {
	case model.IsCheckmate(next, opponent):
		san += "#"
	case model.IsInCheck(next, opponent):
		san += "+"
	}
	return san
}

func sanBody(b model.Board, p model.Piece, m model.Move) string {
	if p.Type == model.King && abs(m.To.Col-m.From.Col) == 2 {
		if m.To.Col > m.From.Col {
			return "O-O"
		}
		return "O-O-O"
	}

	_, capture := b.At(m.To)
	var sb strings.Builder
	if p.Type == model.Pawn {
		if capture || m.From.Col != m.To.Col {
			sb.WriteString(fileName(m.From))
			sb.WriteByte('x')
		}
		sb.WriteString(SquareName(m.To))
		if m.Promotion != "" && model.CanPromote(p, m.To) {
			sb.WriteByte('=')
			sb.WriteString(m.Promotion.Letter())
		}
		return sb.String()
	}

	sb.WriteString(p.Type.Letter())
	sb.WriteString(disambiguation(b, p, m))
	if capture {
		sb.WriteByte('x')
	}
	sb.WriteString(SquareName(m.To))
	return sb.String()
}

// disambiguation returns the file, rank or full square needed to tell p
// apart from other pieces of the same kind that can also reach m.To.
func disambiguation(b model.Board, p model.Piece, m model.Move) string {
	var rivals []model.Position
	for _, other := range b.Pieces(p.Color) {
		if other.Type != p.Type || other.Position == p.Position {
			continue
		}
		if model.IsLegalMove(b, model.Move{From: other.Position, To: m.To}) {
			rivals = append(rivals, other.Position)
		}
	}
	if len(rivals) == 0 {
		return ""
	}
	sameFile, sameRank := false, false
	for _, r := range rivals {
		if r.Col == p.Position.Col {
			sameFile = true
		}
		if r.Row == p.Position.Row {
			sameRank = true
		}
	}
	switch {
	case !sameFile:
		return fileName(p.Position)
	case !sameRank:
		return rankName(p.Position)
	default:
		return SquareName(p.Position)
	}
}

var longForm = regexp.MustCompile(`^([a-h][1-8])-?x?([a-h][1-8])=?([qrbnQRBN])?$`)

// ParseMove decodes text as a legal move for color on b. It accepts SAN
// (with or without check marks, "0-0" for castling) and the long form used by
// UCI engines such as "e2e4" or "e7e8q". The returned move is always legal;
// anything else yields ErrUnknownMove.
func ParseMove(b model.Board, color model.Color, text string) (model.Move, error) {
	cleaned := normalize(text)
	if cleaned == "" {
		return model.Move{}, fmt.Errorf("%w: empty", ErrUnknownMove)
	}
	legal := model.LegalMovesForColor(b, color)

	if match := longForm.FindStringSubmatch(cleaned); match != nil {
		from, _ := ParseSquare(match[1])
		to, _ := ParseSquare(match[2])
		for _, m := range legal {
			if m.From != from || m.To != to {
				continue
			}
			if match[3] == "" {
				return m, nil
			}
			if !model.CanPromote(mustPiece(b, m.From), m.To) {
				return model.Move{}, fmt.Errorf("%w: %q does not promote", ErrUnknownMove, text)
			}
			m.Promotion = fenPieces[toLower(match[3][0])]
			return m, nil
		}
	}

	for _, m := range legal {
		for _, candidate := range withPromotions(b, m) {
			if stripMarks(sanBody(b, mustPiece(b, m.From), candidate)) == cleaned {
				return candidate, nil
			}
		}
	}
	return model.Move{}, fmt.Errorf("%w: %q", ErrUnknownMove, text)
}

func withPromotions(b model.Board, m model.Move) []model.Move {
	p, _ := b.At(m.From)
	if !model.CanPromote(p, m.To) {
		return []model.Move{m}
	}
	out := []model.Move{m}
	for _, kind := range promotionKinds {
		out = append(out, model.Move{From: m.From, To: m.To, Promotion: kind})
	}
	return out
}

func mustPiece(b model.Board, pos model.Position) model.Piece {
	p, _ := b.At(pos)
	return p
}

func normalize(text string) string {
	s := strings.TrimSpace(text)
	s = strings.Trim(s, `"'.`)
	s = strings.TrimRight(s, "+#!?")
	s = strings.ReplaceAll(s, "0", "O")
	return strings.ReplaceAll(s, "=", "")
}

// stripMarks reduces a SAN string to the form normalize produces.
func stripMarks(san string) string {
	return strings.ReplaceAll(strings.TrimRight(san, "+#"), "=", "")
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
