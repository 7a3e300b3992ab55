package ws

import (
	"encoding/json"
)

// MessageType represents the different kinds of messages exchanged over a socket
type MessageType string

const (
	MessageTypeMove       MessageType = "move"
	MessageTypeClick      MessageType = "click"
	MessageTypePromote    MessageType = "promote"
	MessageTypeReset      MessageType = "reset"
	MessageTypeGameState  MessageType = "gameState"
	MessageTypeMatchFound MessageType = "matchFound"
	MessageTypeError      MessageType = "error"
)

// Message is the envelope of every websocket frame
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type ErrorPayload struct {
	Error string `json:"error"`
}

// NewError builds an error frame for text.
func NewError(text string) Message {
	payload, _ := json.Marshal(ErrorPayload{Error: text})
	return Message{Type: MessageTypeError, Payload: payload}
}
