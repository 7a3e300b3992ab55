// Package notation converts engine values to and from the text notations
// used outside the engine: square names, FEN and standard algebraic notation.
package notation

import (
	"errors"
	"fmt"

	"github.com/benbeisheim/chess-backend/internal/model"
)

var (
	ErrInvalidSquare = errors.New("invalid square")
	ErrInvalidFEN    = errors.New("invalid FEN")
	ErrUnknownMove   = errors.New("move not recognised")
)

// SquareName returns the algebraic name of p: file a-h from the column and
// rank 8 on row 0 down to rank 1 on row 7.
func SquareName(p model.Position) string {
	return fmt.Sprintf("%c%d", 'a'+p.Col, 8-p.Row)
}

func fileName(p model.Position) string {
	return string(rune('a' + p.Col))
}

func rankName(p model.Position) string {
	return string(rune('0' + 8 - p.Row))
}

func ParseSquare(s string) (model.Position, error) {
	if len(s) != 2 || s[0] < 'a' || s[0] > 'h' || s[1] < '1' || s[1] > '8' {
		return model.Position{}, fmt.Errorf("%w: %q", ErrInvalidSquare, s)
	}
	return model.Position{Row: 8 - int(s[1]-'0'), Col: int(s[0] - 'a')}, nil
}
