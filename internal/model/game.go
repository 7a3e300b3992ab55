package model

import (
	"fmt"
	"slices"
)

type Phase string

const (
	PhaseAwaitingSelection Phase = "awaiting-selection"
	PhasePieceSelected     Phase = "piece-selected"
	PhaseAwaitingPromotion Phase = "awaiting-promotion"
	PhaseCheckmate         Phase = "checkmate"
	PhaseStalemate         Phase = "stalemate"
)

// GameState is the whole of one game: the board, whose turn it is, the
// check status of the side to move and the current selection. It is a value;
// every transition returns a new GameState and leaves the receiver as it was.
type GameState struct {
	Board            Board      `json:"boardState"`
	ToMove           Color      `json:"toMove"`
	Phase            Phase      `json:"phase"`
	IsCheck          bool       `json:"isCheck"`
	IsCheckmate      bool       `json:"isCheckmate"`
	IsStalemate      bool       `json:"isStalemate"`
	SelectedSquare   *Position  `json:"selectedSquare"`
	LegalMoves       []Position `json:"legalMoves"`
	PendingPromotion *Move      `json:"pendingPromotion"`
	LastMove         *Move      `json:"lastMove"`
	History          []Ply      `json:"moveHistory"`
}

func NewGameState() GameState {
	return NewGameStateFrom(InitialBoard(), White)
}

// NewGameStateFrom starts a game from an arbitrary position with toMove to
// play. Check, checkmate and stalemate are evaluated immediately.
func NewGameStateFrom(board Board, toMove Color) GameState {
	s := GameState{
		Board:      board,
		ToMove:     toMove,
		LegalMoves: []Position{},
		History:    []Ply{},
	}
	return s.withStatus()
}

func (s GameState) withStatus() GameState {
	s.IsCheck = IsInCheck(s.Board, s.ToMove)
	canMove := HasLegalMove(s.Board, s.ToMove)
	s.IsCheckmate = s.IsCheck && !canMove
	s.IsStalemate = !s.IsCheck && !canMove
	switch {
	case s.IsCheckmate:
		s.Phase = PhaseCheckmate
	case s.IsStalemate:
		s.Phase = PhaseStalemate
	default:
		s.Phase = PhaseAwaitingSelection
	}
	return s
}

// Over reports whether the game has reached a terminal phase.
func (s GameState) Over() bool {
	return s.Phase == PhaseCheckmate || s.Phase == PhaseStalemate
}

// Winner returns the side that delivered checkmate.
func (s GameState) Winner() (Color, bool) {
	if s.Phase != PhaseCheckmate {
		return "", false
	}
	return s.ToMove.Opponent(), true
}

// AllLegalMoves lists the legal moves of the side to move.
func (s GameState) AllLegalMoves() []Move {
	if s.Over() {
		return []Move{}
	}
	return LegalMovesForColor(s.Board, s.ToMove)
}

// Click advances the selection state machine by one square click:
//   - a friendly piece with at least one legal move becomes selected;
//   - a legal destination of the selected piece executes the move, or parks
//     it as a pending promotion when a pawn reaches its last rank;
//   - anything else clears the selection.
//
// Terminal games and pending promotions ignore clicks.
func (s GameState) Click(pos Position) GameState {
	switch s.Phase {
	case PhaseCheckmate, PhaseStalemate, PhaseAwaitingPromotion:
		return s
	case PhasePieceSelected:
		if s.SelectedSquare != nil && slices.Contains(s.LegalMoves, pos) {
			return s.clickDestination(Move{From: *s.SelectedSquare, To: pos})
		}
		if next, ok := s.selectPiece(pos); ok {
			return next
		}
		return s.deselect()
	default:
		if next, ok := s.selectPiece(pos); ok {
			return next
		}
		return s
	}
}

func (s GameState) clickDestination(m Move) GameState {
	piece, _ := s.Board.At(m.From)
	if CanPromote(piece, m.To) {
		s.PendingPromotion = &m
		s.Phase = PhaseAwaitingPromotion
		return s
	}
	next, err := s.ApplyTurn(m)
	if err != nil {
		return s.deselect()
	}
	return next
}

func (s GameState) selectPiece(pos Position) (GameState, bool) {
	piece, ok := s.Board.At(pos)
	if !ok || piece.Color != s.ToMove {
		return s, false
	}
	moves := LegalMoves(s.Board, pos)
	if len(moves) == 0 {
		return s, false
	}
	selected := pos
	s.SelectedSquare = &selected
	s.LegalMoves = moves
	s.Phase = PhasePieceSelected
	return s, true
}

func (s GameState) deselect() GameState {
	s.SelectedSquare = nil
	s.LegalMoves = []Position{}
	s.PendingPromotion = nil
	s.Phase = PhaseAwaitingSelection
	return s
}

// ApplyTurn validates and executes m for the side to move, then recomputes
// check, checkmate and stalemate for the opponent and hands the turn over.
// A rejected move returns the receiver unchanged together with the reason.
func (s GameState) ApplyTurn(m Move) (GameState, error) {
	if s.Over() {
		return s, ErrGameOver
	}
	if s.Phase == PhaseAwaitingPromotion {
		return s, ErrPromotionPending
	}
	return s.execute(m)
}

// Promote completes a pending promotion with kind.
func (s GameState) Promote(kind PieceType) (GameState, error) {
	if s.Phase != PhaseAwaitingPromotion || s.PendingPromotion == nil {
		return s, ErrNoPendingPromotion
	}
	m := *s.PendingPromotion
	m.Promotion = kind
	return s.execute(m)
}

func (s GameState) execute(m Move) (GameState, error) {
	if !m.From.InBounds() || !m.To.InBounds() {
		return s, ErrOutOfBounds
	}
	piece, ok := s.Board.At(m.From)
	if !ok {
		return s, ErrNoPiece
	}
	if piece.Color != s.ToMove {
		return s, ErrNotYourTurn
	}
	if !IsLegalMove(s.Board, m) {
		return s, fmt.Errorf("%w: %s to %s", ErrIllegalMove, m.From, m.To)
	}

	var board Board
	if CanPromote(piece, m.To) {
		if m.Promotion == "" {
			return s, ErrPromotionRequired
		}
		promoted, err := ApplyPromotion(s.Board, m.From, m.To, m.Promotion)
		if err != nil {
			return s, err
		}
		board = promoted
	} else {
		if m.Promotion != "" {
			return s, fmt.Errorf("%w: %s does not reach the last rank", ErrInvalidPromotion, piece.Type)
		}
		board = ApplyMove(s.Board, m.From, m.To)
	}

	ply := Ply{
		Piece:          piece,
		From:           m.From,
		To:             m.To,
		CastleRookMove: castleRookMove(piece, m.From, m.To),
		Promotion:      m.Promotion,
	}
	if captured, ok := s.Board.At(m.To); ok {
		ply.CapturedPiece = &captured
	}

	next := GameState{
		Board:      board,
		ToMove:     s.ToMove.Opponent(),
		LegalMoves: []Position{},
		LastMove:   &m,
		History:    append(slices.Clone(s.History), ply),
	}
	return next.withStatus(), nil
}
