package suggest

import (
	"context"
	"fmt"

	"github.com/apex/log"

	"github.com/benbeisheim/chess-backend/internal/model"
	"github.com/benbeisheim/chess-backend/internal/notation"
)

// Chooser turns a suggestion into a legal move for the side to move.
type Chooser struct {
	suggester Suggester
	fallback  *Random
}

func NewChooser(s Suggester, fallback *Random) *Chooser {
	return &Chooser{suggester: s, fallback: fallback}
}

// Choose asks the suggester for a move in state and returns it when it is a
// member of the legal moves that were offered. Any failure of the suggester
// falls back to a uniformly random legal move. Promotions default to a queen
// unless the suggestion names another kind.
func (c *Chooser) Choose(ctx context.Context, state model.GameState, difficulty Difficulty) (model.Move, error) {
	legal := state.AllLegalMoves()
	if len(legal) == 0 {
		return model.Move{}, ErrNoLegalMoves
	}

	req := Request{
		FEN:        notation.FEN(state.Board, state.ToMove, len(state.History)/2+1),
		Moves:      make([]string, 0, len(legal)),
		Difficulty: difficulty,
	}
	for _, m := range legal {
		req.Moves = append(req.Moves, notation.SAN(state.Board, withQueen(state.Board, m)))
	}

	logger := log.WithFields(log.Fields{
		"difficulty": difficulty,
		"fen":        req.FEN,
	})

	text, err := c.suggester.Suggest(ctx, req)
	if err == nil {
		var m model.Move
		if m, err = accept(state, legal, text); err == nil {
			logger.WithField("move", text).Debug("suggestion accepted")
			return m, nil
		}
	}
	logger.WithError(err).Warn("suggestion unusable, playing a random legal move")

	return c.RandomMove(state)
}

func accept(state model.GameState, legal []model.Move, text string) (model.Move, error) {
	m, err := notation.ParseMove(state.Board, state.ToMove, text)
	if err != nil {
		return model.Move{}, fmt.Errorf("%w: %v", ErrSuggestionRejected, err)
	}
	for _, l := range legal {
		if !l.SameSquares(m) {
			continue
		}
		m = withQueen(state.Board, m)
		if _, err := state.ApplyTurn(m); err != nil {
			return model.Move{}, fmt.Errorf("%w: %q: %v", ErrSuggestionRejected, text, err)
		}
		return m, nil
	}
	return model.Move{}, fmt.Errorf("%w: %q", ErrSuggestionRejected, text)
}

// RandomMove picks a uniformly random legal move for the side to move,
// promoting to a queen.
func (c *Chooser) RandomMove(state model.GameState) (model.Move, error) {
	legal := state.AllLegalMoves()
	if len(legal) == 0 {
		return model.Move{}, ErrNoLegalMoves
	}
	return withQueen(state.Board, legal[c.fallback.intN(len(legal))]), nil
}

func withQueen(b model.Board, m model.Move) model.Move {
	if p, ok := b.At(m.From); ok && model.CanPromote(p, m.To) && m.Promotion == "" {
		m.Promotion = model.Queen
	}
	return m
}
