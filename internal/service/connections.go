package service

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/apex/log"

	"github.com/benbeisheim/chess-backend/internal/ws"
)

// Conn is the part of a websocket connection a game writes to.
type Conn interface {
	WriteJSON(v interface{}) error
}

// Connections holds the open sockets of one game, keyed by player id.
// Writes are serialized so a broadcast never interleaves with a direct reply.
type Connections struct {
	conns map[string]Conn
	mu    sync.Mutex
}

func NewConnections() *Connections {
	return &Connections{conns: make(map[string]Conn)}
}

func (c *Connections) Register(playerID string, conn Conn) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conns[playerID] = conn
}

func (c *Connections) Unregister(playerID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.conns, playerID)
}

func (c *Connections) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.conns)
}

// Send writes msg to one player's connection.
func (c *Connections) Send(playerID string, msg ws.Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	conn, ok := c.conns[playerID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotConnected, playerID)
	}
	return conn.WriteJSON(msg)
}

// Broadcast writes msg to every connection. A connection that fails to
// accept the write is dropped.
func (c *Connections) Broadcast(msg ws.Message) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for playerID, conn := range c.conns {
		if err := conn.WriteJSON(msg); err != nil {
			log.WithError(err).WithField("player", playerID).Warn("dropping connection after failed write")
			delete(c.conns, playerID)
		}
	}
}

func stateMessage(snapshot Snapshot) (ws.Message, error) {
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return ws.Message{}, err
	}
	return ws.Message{Type: ws.MessageTypeGameState, Payload: payload}, nil
}
