package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	apperrors "whiteboard/internal/errors"

	"github.com/go-playground/validator/v10"
)

type MessageType string

const (
	MessageTypeJoinRoom  MessageType = "join_room"
	MessageTypeLeaveRoom MessageType = "leave_room"
	MessageTypeDrawing   MessageType = "drawing"
	MessageTypeCursor    MessageType = "cursor"
	MessageTypeChat      MessageType = "chat"

	MessageTypeScene       MessageType = "scene"
	MessageTypeChatHistory MessageType = "chat_history"
)

// Inbound is one of the client message kinds. The set is closed: only types
// in this package implement it.
type Inbound interface {
	Room() string
	inbound()
}

type JoinRoom struct {
	RoomID string `json:"roomId" validate:"required"`
}

type LeaveRoom struct {
	RoomID string `json:"roomId" validate:"required"`
}

type Drawing struct {
	RoomID   string    `json:"roomId" validate:"required"`
	Elements []Element `json:"elements" validate:"min=1"`
	ClientID string    `json:"clientId"`
}

type Pointer struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type Cursor struct {
	RoomID   string   `json:"roomId" validate:"required"`
	Pointer  *Pointer `json:"pointer" validate:"required"`
	ClientID string   `json:"clientId"`
	Color    string   `json:"color"`
	Username string   `json:"username,omitempty"`
}

type Chat struct {
	RoomID  string `json:"roomId" validate:"required"`
	Content string `json:"content" validate:"required"`
}

func (m *JoinRoom) Room() string  { return m.RoomID }
func (m *LeaveRoom) Room() string { return m.RoomID }
func (m *Drawing) Room() string   { return m.RoomID }
func (m *Cursor) Room() string    { return m.RoomID }
func (m *Chat) Room() string      { return m.RoomID }

func (*JoinRoom) inbound()  {}
func (*LeaveRoom) inbound() {}
func (*Drawing) inbound()   {}
func (*Cursor) inbound()    {}
func (*Chat) inbound()      {}

// UnmarshalJSON accepts a single element object where an array is expected.
func (m *Drawing) UnmarshalJSON(data []byte) error {
	var aux struct {
		RoomID   string          `json:"roomId"`
		Elements json.RawMessage `json:"elements"`
		ClientID string          `json:"clientId"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	m.RoomID = aux.RoomID
	m.ClientID = aux.ClientID
	m.Elements = nil

	raw := bytes.TrimSpace(aux.Elements)
	switch {
	case len(raw) == 0 || bytes.Equal(raw, []byte("null")):
		return nil
	case raw[0] == '{':
		var el Element
		if err := json.Unmarshal(raw, &el); err != nil {
			return err
		}
		m.Elements = []Element{el}
		return nil
	default:
		return json.Unmarshal(raw, &m.Elements)
	}
}

// UnmarshalJSON also reads the older "message" field used by earlier clients.
func (m *Chat) UnmarshalJSON(data []byte) error {
	var aux struct {
		RoomID  string `json:"roomId"`
		Content string `json:"content"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	m.RoomID = aux.RoomID
	m.Content = aux.Content
	if strings.TrimSpace(m.Content) == "" {
		m.Content = aux.Message
	}
	m.Content = strings.TrimSpace(m.Content)
	return nil
}

var validate = validator.New()

// Decode parses one wire frame into its message kind and validates required fields.
func Decode(data []byte) (Inbound, error) {
	// Peers receive these bytes in text frames, which must be valid UTF-8.
	if !utf8.Valid(data) {
		return nil, fmt.Errorf("%w: invalid UTF-8", apperrors.ErrMalformedMessage)
	}

	var envelope struct {
		Type MessageType `json:"type"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrMalformedMessage, err)
	}

	var msg Inbound
	switch envelope.Type {
	case MessageTypeJoinRoom:
		msg = &JoinRoom{}
	case MessageTypeLeaveRoom:
		msg = &LeaveRoom{}
	case MessageTypeDrawing:
		msg = &Drawing{}
	case MessageTypeCursor:
		msg = &Cursor{}
	case MessageTypeChat:
		msg = &Chat{}
	default:
		return nil, fmt.Errorf("%w: %w %q", apperrors.ErrMalformedMessage, apperrors.ErrUnknownMessageType, envelope.Type)
	}

	if err := json.Unmarshal(data, msg); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", apperrors.ErrMalformedMessage, envelope.Type, err)
	}
	if err := validate.Struct(msg); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", apperrors.ErrMalformedMessage, envelope.Type, err)
	}
	return msg, nil
}

type DrawingEvent struct {
	Type     MessageType `json:"type"`
	RoomID   string      `json:"roomId"`
	Elements []Element   `json:"elements"`
	ClientID string      `json:"clientId,omitempty"`
	UserID   string      `json:"userId"`
}

type CursorEvent struct {
	Type     MessageType `json:"type"`
	RoomID   string      `json:"roomId"`
	Pointer  Pointer     `json:"pointer"`
	ClientID string      `json:"clientId,omitempty"`
	Color    string      `json:"color,omitempty"`
	Username string      `json:"username"`
	UserID   string      `json:"userId"`
}

type ChatEvent struct {
	Type    MessageType `json:"type"`
	RoomID  string      `json:"roomId"`
	Message ChatMessage `json:"message"`
}

type SceneEvent struct {
	Type     MessageType `json:"type"`
	RoomID   string      `json:"roomId"`
	Elements []Element   `json:"elements"`
}

type ChatHistoryEvent struct {
	Type     MessageType    `json:"type"`
	RoomID   string         `json:"roomId"`
	Messages []*ChatMessage `json:"messages"`
}
