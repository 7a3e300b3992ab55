package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/apex/log"
	"github.com/google/uuid"

	"github.com/benbeisheim/chess-backend/internal/model"
	"github.com/benbeisheim/chess-backend/internal/suggest"
)

type MatchFoundEvent struct {
	GameID string      `json:"gameId"`
	Color  model.Color `json:"color"`
}

type MatchStatus string

const (
	MatchIdle    MatchStatus = "idle"
	MatchQueued  MatchStatus = "queued"
	MatchMatched MatchStatus = "matched"
)

type Matchmaking struct {
	Status MatchStatus `json:"status"`
	GameID string      `json:"gameId,omitempty"`
	Color  model.Color `json:"color,omitempty"`
}

// GameManager owns every live game and pairs queued players.
type GameManager struct {
	games            map[string]*Game
	queue            *model.Queue
	matches          map[string]MatchFoundEvent
	matchingChannels map[string]chan string
	mu               sync.RWMutex
}

func NewGameManager() *GameManager {
	return &GameManager{
		games:            make(map[string]*Game),
		queue:            model.NewQueue(),
		matches:          make(map[string]MatchFoundEvent),
		matchingChannels: make(map[string]chan string),
	}
}

// Run pairs queued players every interval until ctx is done.
func (gm *GameManager) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			gm.processMatchmaking()
		}
	}
}

// processMatchmaking pairs the two longest waiting players, if any, into a
// new human game and notifies both.
func (gm *GameManager) processMatchmaking() {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	player1, player2, err := gm.queue.NextPair()
	if err != nil {
		return
	}

	gameID := uuid.New().String()
	game := NewGame(gameID, ModeHuman, "")
	color1, err := game.AddPlayer(player1.ID)
	if err != nil {
		log.WithError(err).WithField("player", player1.ID).Error("seating matched player")
		return
	}
	color2, err := game.AddPlayer(player2.ID)
	if err != nil {
		log.WithError(err).WithField("player", player2.ID).Error("seating matched player")
		return
	}
	gm.games[gameID] = game

	events := []struct {
		playerID string
		event    MatchFoundEvent
	}{
		{player1.ID, MatchFoundEvent{GameID: gameID, Color: color1}},
		{player2.ID, MatchFoundEvent{GameID: gameID, Color: color2}},
	}
	for _, e := range events {
		gm.matches[e.playerID] = e.event
		gm.notifyMatch(e.playerID, e.event)
	}
	log.WithFields(log.Fields{
		"game":  gameID,
		"white": game.seats.White.ID,
		"black": game.seats.Black.ID,
	}).Info("match found")
}

// notifyMatch sends event on the player's matchmaking channel, if one is
// registered, and closes it. Must be called with gm.mu held.
func (gm *GameManager) notifyMatch(playerID string, event MatchFoundEvent) {
	ch, ok := gm.matchingChannels[playerID]
	if !ok {
		return
	}
	select {
	case ch <- mustJSON(event):
	default:
		log.WithField("player", playerID).Warn("matchmaking channel full, player must poll for the match")
	}
	delete(gm.matchingChannels, playerID)
	close(ch)
}

func (gm *GameManager) RegisterMatchmakingChannel(playerID string, ch chan string) {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	if existing, ok := gm.matchingChannels[playerID]; ok {
		delete(gm.matchingChannels, playerID)
		close(existing)
	}
	gm.matchingChannels[playerID] = ch
}

// UnregisterMatchmakingChannel forgets the player's channel without closing
// it if ch is still the registered one.
func (gm *GameManager) UnregisterMatchmakingChannel(playerID string, ch chan string) {
	gm.mu.Lock()
	defer gm.mu.Unlock()
	if gm.matchingChannels[playerID] == ch {
		delete(gm.matchingChannels, playerID)
	}
}

func mustJSON(v interface{}) string {
	bytes, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return string(bytes)
}

func (gm *GameManager) CreateGame(gameID string, mode Mode, difficulty suggest.Difficulty) (*Game, error) {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	if _, exists := gm.games[gameID]; exists {
		return nil, fmt.Errorf("%w: %s", ErrGameExists, gameID)
	}
	game := NewGame(gameID, mode, difficulty)
	gm.games[gameID] = game
	return game, nil
}

func (gm *GameManager) GetGame(gameID string) (*Game, error) {
	gm.mu.RLock()
	defer gm.mu.RUnlock()

	game, exists := gm.games[gameID]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrGameNotFound, gameID)
	}
	return game, nil
}

func (gm *GameManager) JoinMatchmaking(playerID string) error {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	// A new request replaces a match the player has not picked up.
	delete(gm.matches, playerID)
	return gm.queue.AddPlayer(model.Player{ID: playerID})
}

func (gm *GameManager) LeaveMatchmaking(playerID string) bool {
	gm.mu.Lock()
	defer gm.mu.Unlock()
	return gm.queue.Remove(playerID)
}

// MatchmakingStatus reports whether playerID is waiting, has been matched
// or is not in matchmaking at all.
func (gm *GameManager) MatchmakingStatus(playerID string) Matchmaking {
	gm.mu.RLock()
	defer gm.mu.RUnlock()

	if event, ok := gm.matches[playerID]; ok {
		return Matchmaking{Status: MatchMatched, GameID: event.GameID, Color: event.Color}
	}
	if gm.queue.Contains(playerID) {
		return Matchmaking{Status: MatchQueued}
	}
	return Matchmaking{Status: MatchIdle}
}
