package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/apex/log"
	"github.com/google/uuid"

	"github.com/benbeisheim/chess-backend/internal/model"
	"github.com/benbeisheim/chess-backend/internal/suggest"
	"github.com/benbeisheim/chess-backend/internal/ws"
)

// moveChooser picks computer moves. *suggest.Chooser implements it.
type moveChooser interface {
	Choose(ctx context.Context, state model.GameState, difficulty suggest.Difficulty) (model.Move, error)
	RandomMove(state model.GameState) (model.Move, error)
}

type GameService struct {
	gameManager     *GameManager
	chooser         moveChooser
	computerTimeout time.Duration
	computerTurns   sync.WaitGroup
}

// NewGameService wires the manager to a move chooser for computer games.
// computerTimeout bounds how long one computer reply may wait for its
// suggester.
func NewGameService(gameManager *GameManager, chooser *suggest.Chooser, computerTimeout time.Duration) *GameService {
	return &GameService{
		gameManager:     gameManager,
		chooser:         chooser,
		computerTimeout: computerTimeout,
	}
}

// CreateGame starts a game and seats playerID as white.
func (gs *GameService) CreateGame(playerID string, mode Mode, difficulty suggest.Difficulty) (string, model.Color, error) {
	gameID := uuid.New().String()

	game, err := gs.gameManager.CreateGame(gameID, mode, difficulty)
	if err != nil {
		return "", "", fmt.Errorf("failed to create game: %w", err)
	}
	color, err := game.AddPlayer(playerID)
	if err != nil {
		return "", "", err
	}
	log.WithFields(log.Fields{
		"game":   gameID,
		"player": playerID,
		"mode":   mode,
	}).Info("game created")
	return gameID, color, nil
}

func (gs *GameService) JoinGame(gameID string, playerID string) (model.Color, error) {
	game, err := gs.gameManager.GetGame(gameID)
	if err != nil {
		return "", err
	}
	color, err := game.AddPlayer(playerID)
	if err != nil {
		return "", err
	}
	gs.publish(game, game.Snapshot())
	return color, nil
}

func (gs *GameService) GetGameState(gameID string) (Snapshot, error) {
	game, err := gs.gameManager.GetGame(gameID)
	if err != nil {
		return Snapshot{}, err
	}
	return game.Snapshot(), nil
}

func (gs *GameService) LegalMoves(gameID string, pos model.Position) ([]model.Position, error) {
	if !pos.InBounds() {
		return nil, model.ErrOutOfBounds
	}
	game, err := gs.gameManager.GetGame(gameID)
	if err != nil {
		return nil, err
	}
	return game.LegalMoves(pos), nil
}

func (gs *GameService) Click(gameID, playerID string, pos model.Position) (Snapshot, error) {
	return gs.update(gameID, func(g *Game) (Snapshot, error) {
		return g.Click(playerID, pos)
	})
}

func (gs *GameService) HandleMove(gameID, playerID string, move model.Move) (Snapshot, error) {
	return gs.update(gameID, func(g *Game) (Snapshot, error) {
		return g.Move(playerID, move)
	})
}

func (gs *GameService) HandleNotationMove(gameID, playerID, text string) (Snapshot, error) {
	return gs.update(gameID, func(g *Game) (Snapshot, error) {
		return g.MoveNotation(playerID, text)
	})
}

func (gs *GameService) Promote(gameID, playerID string, kind model.PieceType) (Snapshot, error) {
	return gs.update(gameID, func(g *Game) (Snapshot, error) {
		return g.Promote(playerID, kind)
	})
}

func (gs *GameService) Reset(gameID, playerID string) (Snapshot, error) {
	return gs.update(gameID, func(g *Game) (Snapshot, error) {
		return g.Reset(playerID)
	})
}

func (gs *GameService) update(gameID string, fn func(*Game) (Snapshot, error)) (Snapshot, error) {
	game, err := gs.gameManager.GetGame(gameID)
	if err != nil {
		return Snapshot{}, err
	}
	snapshot, err := fn(game)
	if err != nil {
		return Snapshot{}, err
	}
	gs.publish(game, snapshot)
	return snapshot, nil
}

// publish pushes snapshot to the game's sockets and schedules the computer
// reply when it is the computer's turn.
func (gs *GameService) publish(game *Game, snapshot Snapshot) {
	if err := game.broadcast(snapshot); err != nil {
		log.WithError(err).WithField("game", game.ID).Error("broadcasting state")
	}
	if _, _, ok := game.computerToMove(); ok {
		gs.scheduleComputerTurn(game.ID)
	}
}

func (gs *GameService) scheduleComputerTurn(gameID string) {
	gs.computerTurns.Add(1)
	go func() {
		defer gs.computerTurns.Done()
		ctx, cancel := context.WithTimeout(context.Background(), gs.computerTimeout)
		defer cancel()
		if err := gs.PlayComputerTurn(ctx, gameID); err != nil && !errors.Is(err, ErrStateChanged) {
			log.WithError(err).WithField("game", gameID).Error("computer turn")
		}
	}()
}

// PlayComputerTurn plays the computer's reply in a computer game. It does
// nothing when the computer is not to move.
func (gs *GameService) PlayComputerTurn(ctx context.Context, gameID string) error {
	game, err := gs.gameManager.GetGame(gameID)
	if err != nil {
		return err
	}
	state, version, ok := game.computerToMove()
	if !ok {
		return nil
	}

	move, err := gs.chooser.Choose(ctx, state, game.Difficulty)
	if err != nil {
		return err
	}
	snapshot, err := game.applyComputerMove(version, move)
	if err != nil && !errors.Is(err, ErrStateChanged) {
		log.WithError(err).WithField("game", gameID).Warn("computer move rejected, retrying with a random legal move")
		if move, err = gs.chooser.RandomMove(state); err != nil {
			return err
		}
		snapshot, err = game.applyComputerMove(version, move)
	}
	if err != nil {
		return err
	}
	log.WithFields(log.Fields{
		"game": gameID,
		"move": snapshot.SAN[len(snapshot.SAN)-1],
	}).Info("computer moved")
	gs.publish(game, snapshot)
	return nil
}

// Wait blocks until every scheduled computer turn has finished.
func (gs *GameService) Wait() {
	gs.computerTurns.Wait()
}

func (gs *GameService) JoinMatchmaking(playerID string) error {
	return gs.gameManager.JoinMatchmaking(playerID)
}

func (gs *GameService) LeaveMatchmaking(playerID string) bool {
	return gs.gameManager.LeaveMatchmaking(playerID)
}

func (gs *GameService) MatchmakingStatus(playerID string) Matchmaking {
	return gs.gameManager.MatchmakingStatus(playerID)
}

func (gs *GameService) RegisterMatchmakingChannel(playerID string, ch chan string) {
	gs.gameManager.RegisterMatchmakingChannel(playerID, ch)
}

func (gs *GameService) UnregisterMatchmakingChannel(playerID string, ch chan string) {
	gs.gameManager.UnregisterMatchmakingChannel(playerID, ch)
}

// RegisterConnection attaches conn to the game and sends it the current
// state.
func (gs *GameService) RegisterConnection(gameID string, playerID string, conn Conn) error {
	game, err := gs.gameManager.GetGame(gameID)
	if err != nil {
		return err
	}
	game.RegisterConnection(playerID, conn)
	msg, err := stateMessage(game.Snapshot())
	if err != nil {
		return err
	}
	return game.connections.Send(playerID, msg)
}

func (gs *GameService) UnregisterConnection(gameID string, playerID string) {
	game, err := gs.gameManager.GetGame(gameID)
	if err != nil {
		return
	}
	game.UnregisterConnection(playerID)
}

// SendTo writes msg to one player's connection in the game.
func (gs *GameService) SendTo(gameID, playerID string, msg ws.Message) error {
	game, err := gs.gameManager.GetGame(gameID)
	if err != nil {
		return err
	}
	return game.connections.Send(playerID, msg)
}
