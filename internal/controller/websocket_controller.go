package controller

import (
	"encoding/json"
	"fmt"

	"github.com/apex/log"
	"github.com/gofiber/websocket/v2"

	"github.com/benbeisheim/chess-backend/internal/service"
	"github.com/benbeisheim/chess-backend/internal/ws"
)

type WebSocketController struct {
	gameService *service.GameService
}

func NewWebSocketController(gameService *service.GameService) *WebSocketController {
	return &WebSocketController{
		gameService: gameService,
	}
}

// HandleConnection is called when a new game socket is established. It
// serves move, click, promote and reset frames until the socket closes.
func (wsc *WebSocketController) HandleConnection(c *websocket.Conn) {
	gameID := c.Params("gameId")
	playerID := c.Locals("playerID").(string)
	logger := log.WithFields(log.Fields{"game": gameID, "player": playerID})

	if err := wsc.gameService.RegisterConnection(gameID, playerID, c); err != nil {
		logger.WithError(err).Warn("failed to register connection")
		c.WriteJSON(ws.NewError(err.Error()))
		c.Close()
		return
	}
	logger.Info("socket connected")

	for {
		messageType, message, err := c.ReadMessage()
		if err != nil {
			logger.WithError(err).Debug("read ended")
			break
		}
		if messageType != websocket.TextMessage {
			continue
		}

		var msg ws.Message
		if err := json.Unmarshal(message, &msg); err != nil {
			logger.WithError(err).Warn("unparseable frame")
			wsc.sendError(gameID, playerID, "malformed message")
			continue
		}
		if err := wsc.handleMessage(gameID, playerID, msg); err != nil {
			logger.WithError(err).WithField("type", msg.Type).Debug("message rejected")
			wsc.sendError(gameID, playerID, err.Error())
		}
	}

	wsc.gameService.UnregisterConnection(gameID, playerID)
	logger.Info("socket disconnected")
}

// handleMessage applies one frame. The resulting state reaches every socket
// of the game through the service's broadcast.
func (wsc *WebSocketController) handleMessage(gameID, playerID string, msg ws.Message) error {
	var err error
	switch msg.Type {
	case ws.MessageTypeMove:
		var req moveRequest
		if err := json.Unmarshal(msg.Payload, &req); err != nil {
			return err
		}
		switch {
		case req.Notation != "":
			_, err = wsc.gameService.HandleNotationMove(gameID, playerID, req.Notation)
		case req.From != nil && req.To != nil:
			_, err = wsc.gameService.HandleMove(gameID, playerID, modelMove(req))
		default:
			return fmt.Errorf("move needs from and to, or notation")
		}

	case ws.MessageTypeClick:
		var req squareRequest
		if err := json.Unmarshal(msg.Payload, &req); err != nil {
			return err
		}
		pos, perr := req.position()
		if perr != nil {
			return perr
		}
		_, err = wsc.gameService.Click(gameID, playerID, pos)

	case ws.MessageTypePromote:
		var req promoteRequest
		if err := json.Unmarshal(msg.Payload, &req); err != nil {
			return err
		}
		_, err = wsc.gameService.Promote(gameID, playerID, req.Piece)

	case ws.MessageTypeReset:
		_, err = wsc.gameService.Reset(gameID, playerID)

	default:
		return fmt.Errorf("unknown message type: %s", msg.Type)
	}
	return err
}

func (wsc *WebSocketController) sendError(gameID, playerID, errorMsg string) {
	if err := wsc.gameService.SendTo(gameID, playerID, ws.NewError(errorMsg)); err != nil {
		log.WithError(err).WithField("player", playerID).Debug("could not deliver error")
	}
}

// HandleMatchmaking queues the player and holds the socket open until a
// match is found, then sends a matchFound frame and closes.
func (wsc *WebSocketController) HandleMatchmaking(c *websocket.Conn) {
	playerID := c.Locals("playerID").(string)
	logger := log.WithField("player", playerID)

	ch := make(chan string, 1)
	wsc.gameService.RegisterMatchmakingChannel(playerID, ch)
	defer wsc.gameService.UnregisterMatchmakingChannel(playerID, ch)

	if err := wsc.gameService.JoinMatchmaking(playerID); err != nil {
		logger.WithError(err).Debug("already queued")
	}

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				return
			}
		}
	}()

	select {
	case event, ok := <-ch:
		if !ok {
			return
		}
		if err := c.WriteJSON(ws.Message{Type: ws.MessageTypeMatchFound, Payload: json.RawMessage(event)}); err != nil {
			logger.WithError(err).Warn("failed to send match")
		}
	case <-closed:
		wsc.gameService.LeaveMatchmaking(playerID)
		logger.Info("left matchmaking")
	}
}
