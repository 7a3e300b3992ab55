package service

import (
	"fmt"
	"sync"

	"github.com/benbeisheim/chess-backend/internal/model"
	"github.com/benbeisheim/chess-backend/internal/notation"
	"github.com/benbeisheim/chess-backend/internal/suggest"
)

type Mode string

const (
	ModeHuman    Mode = "human"
	ModeComputer Mode = "computer"
)

// ComputerPlayerID seats the computer side of a computer game. Requests
// carrying it are never authorized.
const ComputerPlayerID = "computer"

func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "", ModeHuman:
		return ModeHuman, nil
	case ModeComputer:
		return ModeComputer, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
}

// Snapshot is the JSON view of a game sent to clients.
type Snapshot struct {
	model.GameState
	ID         string             `json:"id"`
	Mode       Mode               `json:"mode"`
	Difficulty suggest.Difficulty `json:"difficulty,omitempty"`
	Players    model.Seats        `json:"players"`
	SAN        []string           `json:"san"`
	FEN        string             `json:"fen"`
	Winner     model.Color        `json:"winner,omitempty"`
}

// Game is one session: the rules state, who sits on each side, the move list
// in SAN and the sockets watching it.
type Game struct {
	ID          string
	Mode        Mode
	Difficulty  suggest.Difficulty
	mu          sync.Mutex
	state       model.GameState
	seats       model.Seats
	san         []string
	version     int
	connections *Connections
}

func NewGame(id string, mode Mode, difficulty suggest.Difficulty) *Game {
	g := &Game{
		ID:          id,
		Mode:        mode,
		state:       model.NewGameState(),
		san:         []string{},
		connections: NewConnections(),
	}
	if mode == ModeComputer {
		g.Difficulty = difficulty
		g.seats.Black = model.Player{ID: ComputerPlayerID, Color: model.Black}
	}
	return g
}

// AddPlayer seats playerID on the first free side and returns its color. A
// player already seated gets their existing color back.
func (g *Game) AddPlayer(playerID string) (model.Color, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if playerID == ComputerPlayerID {
		return "", ErrNotAuthorized
	}
	if color, ok := g.seats.ColorOf(playerID); ok {
		return color, nil
	}
	switch {
	case g.seats.White.ID == "":
		g.seats.White = model.Player{ID: playerID, Color: model.White}
		return model.White, nil
	case g.seats.Black.ID == "":
		g.seats.Black = model.Player{ID: playerID, Color: model.Black}
		return model.Black, nil
	}
	return "", ErrGameFull
}

func (g *Game) Snapshot() Snapshot {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.snapshot()
}

func (g *Game) snapshot() Snapshot {
	s := Snapshot{
		GameState:  g.state,
		ID:         g.ID,
		Mode:       g.Mode,
		Difficulty: g.Difficulty,
		Players:    g.seats,
		SAN:        append([]string{}, g.san...),
		FEN:        notation.FEN(g.state.Board, g.state.ToMove, len(g.state.History)/2+1),
	}
	if winner, ok := g.state.Winner(); ok {
		s.Winner = winner
	}
	return s
}

// LegalMoves lists the legal destinations of the piece on pos.
func (g *Game) LegalMoves(pos model.Position) []model.Position {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state.Over() {
		return []model.Position{}
	}
	return model.LegalMoves(g.state.Board, pos)
}

func (g *Game) Click(playerID string, pos model.Position) (Snapshot, error) {
	return g.act(playerID, func(s model.GameState) (model.GameState, error) {
		return s.Click(pos), nil
	})
}

func (g *Game) Move(playerID string, m model.Move) (Snapshot, error) {
	return g.act(playerID, func(s model.GameState) (model.GameState, error) {
		return s.ApplyTurn(m)
	})
}

// MoveNotation plays a move written in SAN or long algebraic form.
func (g *Game) MoveNotation(playerID, text string) (Snapshot, error) {
	return g.act(playerID, func(s model.GameState) (model.GameState, error) {
		m, err := notation.ParseMove(s.Board, s.ToMove, text)
		if err != nil {
			return s, err
		}
		return s.ApplyTurn(m)
	})
}

func (g *Game) Promote(playerID string, kind model.PieceType) (Snapshot, error) {
	return g.act(playerID, func(s model.GameState) (model.GameState, error) {
		return s.Promote(kind)
	})
}

// Reset starts the game over with the same players.
func (g *Game) Reset(playerID string) (Snapshot, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, err := g.seat(playerID); err != nil {
		return Snapshot{}, err
	}
	g.state = model.NewGameState()
	g.san = []string{}
	g.version++
	return g.snapshot(), nil
}

// act runs one player action against the state. The player must be seated
// on the side to move.
func (g *Game) act(playerID string, fn func(model.GameState) (model.GameState, error)) (Snapshot, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	color, err := g.seat(playerID)
	if err != nil {
		return Snapshot{}, err
	}
	if g.state.Over() {
		return Snapshot{}, model.ErrGameOver
	}
	if color != g.state.ToMove {
		return Snapshot{}, model.ErrNotYourTurn
	}
	next, err := fn(g.state)
	if err != nil {
		return Snapshot{}, err
	}
	g.commit(next)
	return g.snapshot(), nil
}

func (g *Game) seat(playerID string) (model.Color, error) {
	if playerID == ComputerPlayerID {
		return "", ErrNotAuthorized
	}
	color, ok := g.seats.ColorOf(playerID)
	if !ok {
		return "", fmt.Errorf("%w: %w", ErrNotAuthorized, ErrPlayerNotInGame)
	}
	return color, nil
}

// commit replaces the state, recording the SAN of a move if one was made.
func (g *Game) commit(next model.GameState) {
	if len(next.History) > len(g.state.History) && next.LastMove != nil {
		g.san = append(g.san, notation.SAN(g.state.Board, *next.LastMove))
		g.version++
	}
	g.state = next
}

// computerToMove reports whether the computer side should play next, along
// with the state and version it should play from.
func (g *Game) computerToMove() (model.GameState, int, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	ok := g.Mode == ModeComputer && !g.state.Over() && g.state.ToMove == model.Black
	return g.state, g.version, ok
}

// applyComputerMove plays m for the computer when the game is still at
// version.
func (g *Game) applyComputerMove(version int, m model.Move) (Snapshot, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.version != version {
		return Snapshot{}, ErrStateChanged
	}
	next, err := g.state.ApplyTurn(m)
	if err != nil {
		return Snapshot{}, err
	}
	g.commit(next)
	return g.snapshot(), nil
}

func (g *Game) RegisterConnection(playerID string, conn Conn) {
	g.connections.Register(playerID, conn)
}

func (g *Game) UnregisterConnection(playerID string) {
	g.connections.Unregister(playerID)
}

func (g *Game) broadcast(snapshot Snapshot) error {
	msg, err := stateMessage(snapshot)
	if err != nil {
		return err
	}
	g.connections.Broadcast(msg)
	return nil
}
