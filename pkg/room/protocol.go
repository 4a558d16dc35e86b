package room

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"holdem-server/pkg/holdem"
	"holdem-server/pkg/poker/action"
)

// MessageType identifies the payload carried by a socket envelope
type MessageType string

// inbound message types
const (
	TypeJoinRoom    MessageType = "join_room"
	TypeLeaveRoom   MessageType = "leave_room"
	TypeGameAction  MessageType = "game_action"
	TypeChatMessage MessageType = "chat_message"
)

// outbound message types
const (
	TypeConnectionSuccess  MessageType = "connection_success"
	TypeJoinRoomSuccess    MessageType = "join_room_success"
	TypeLeaveRoomSuccess   MessageType = "leave_room_success"
	TypePlayerJoined       MessageType = "player_joined"
	TypePlayerLeft         MessageType = "player_left"
	TypePlayerDisconnected MessageType = "player_disconnected"
	TypeGameStateUpdate    MessageType = "game_state_update"
	TypeError              MessageType = "error"
)

// ErrMalformedMessage is returned when a socket payload cannot be decoded
var ErrMalformedMessage = errors.New("malformed message")

// ErrUnknownMessageType is returned for an envelope with an unsupported type
var ErrUnknownMessageType = errors.New("unknown message type")

type envelope struct {
	Type MessageType     `json:"type"`
	Data json.RawMessage `json:"data"`
}

// Inbound is a decoded client message
// It is one of *JoinRoom, *LeaveRoom, *GameAction or *ChatMessage
type Inbound interface {
	validate() error
}

// JoinRoom subscribes the connection to a room
type JoinRoom struct {
	RoomID string `json:"roomId"`
}

func (j *JoinRoom) validate() error {
	return requireRoomID(j.RoomID)
}

// LeaveRoom unsubscribes the connection from its room
type LeaveRoom struct {
	RoomID string `json:"roomId"`
}

func (l *LeaveRoom) validate() error {
	return requireRoomID(l.RoomID)
}

// ActionPayload is the action a player submits
type ActionPayload struct {
	Type   action.Action `json:"action_type"`
	Amount int           `json:"amount"`
}

// GameAction submits an action to a running hand
type GameAction struct {
	SessionID string         `json:"sessionId"`
	Action    *ActionPayload `json:"action"`
}

func (g *GameAction) validate() error {
	if strings.TrimSpace(g.SessionID) == "" {
		return fmt.Errorf("%w: sessionId is required", ErrMalformedMessage)
	}

	if g.Action == nil {
		return fmt.Errorf("%w: action is required", ErrMalformedMessage)
	}

	if !g.Action.Type.IsValid() {
		return fmt.Errorf("%w: %q cannot be submitted", ErrMalformedMessage, string(g.Action.Type))
	}

	if g.Action.Amount < 0 {
		return fmt.Errorf("%w: amount cannot be negative", ErrMalformedMessage)
	}

	return nil
}

// ChatMessage is relayed to everyone in the room
type ChatMessage struct {
	RoomID  string `json:"roomId"`
	Message string `json:"message"`
}

func (c *ChatMessage) validate() error {
	if err := requireRoomID(c.RoomID); err != nil {
		return err
	}

	if strings.TrimSpace(c.Message) == "" {
		return fmt.Errorf("%w: message is required", ErrMalformedMessage)
	}

	return nil
}

func requireRoomID(roomID string) error {
	if strings.TrimSpace(roomID) == "" {
		return fmt.Errorf("%w: roomId is required", ErrMalformedMessage)
	}

	return nil
}

// DecodeMessage decodes and validates a client envelope
func DecodeMessage(b []byte) (Inbound, error) {
	var env envelope
	if err := json.Unmarshal(b, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}

	var msg Inbound
	switch env.Type {
	case TypeJoinRoom:
		msg = &JoinRoom{}
	case TypeLeaveRoom:
		msg = &LeaveRoom{}
	case TypeGameAction:
		msg = &GameAction{}
	case TypeChatMessage:
		msg = &ChatMessage{}
	case "":
		return nil, fmt.Errorf("%w: type is required", ErrMalformedMessage)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownMessageType, env.Type)
	}

	if len(env.Data) == 0 || string(env.Data) == "null" {
		return nil, fmt.Errorf("%w: data is required", ErrMalformedMessage)
	}

	if err := json.Unmarshal(env.Data, msg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}

	if err := msg.validate(); err != nil {
		return nil, err
	}

	return msg, nil
}

// Message is an envelope sent to a client
type Message struct {
	Type MessageType `json:"type"`
	Data interface{} `json:"data"`
}

// ConnectionSuccess acknowledges an authenticated connection
type ConnectionSuccess struct {
	ClientID string `json:"clientId"`
	UserID   int64  `json:"userId"`
}

// RoomAck acknowledges a join or leave
type RoomAck struct {
	RoomID string `json:"roomId"`
}

// MemberNotice announces a change in room membership
type MemberNotice struct {
	UserID int64  `json:"userId"`
	RoomID string `json:"roomId"`
}

// ChatRelay is a chat message as delivered to the room
type ChatRelay struct {
	UserID    int64  `json:"userId"`
	RoomID    string `json:"roomId"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// ErrorPayload carries a displayable error
type ErrorPayload struct {
	Message string `json:"message"`
}

func newGameStateUpdate(state *holdem.GameState) *Message {
	return &Message{Type: TypeGameStateUpdate, Data: state}
}

func newChatRelay(userID int64, msg *ChatMessage, at time.Time) *Message {
	return &Message{
		Type: TypeChatMessage,
		Data: &ChatRelay{
			UserID:    userID,
			RoomID:    msg.RoomID,
			Message:   msg.Message,
			Timestamp: at.UTC().Format(time.RFC3339Nano),
		},
	}
}
