package proto

import (
	"encoding/json"
	"time"
)

// Inbound is the envelope for messages coming from the client.
type Inbound struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

const (
	ProtocolVersion = 1

	InboundTypeHello       = "hello"
	InboundTypeJoinRoom    = "joinRoom"
	InboundTypeSendMessage = "sendMessage"
	InboundTypeLeaveRoom   = "leaveRoom"

	OutboundTypeEvent = "event"
	OutboundTypeError = "error"

	EventMessage = "message"
	EventJoined  = "joined"
	EventLeft    = "left"
	EventHistory = "history"
)

// Protocol-level error codes that never reach the core.
const (
	ErrCodeInvalidMessage     = "invalid_message"
	ErrCodeUnsupportedVersion = "unsupported_version"
)

// HelloData is sent by the client to negotiate the protocol version.
type HelloData struct {
	Protocol int `json:"protocol,omitempty"`
}

// JoinRoomData asks to join a chat as a known user.
type JoinRoomData struct {
	ChatID string `json:"chat_id"`
	UserID string `json:"user_id"`
}

// SendMessageData is a chat message from the client.
type SendMessageData struct {
	ChatID      string `json:"chat_id"`
	Content     string `json:"content"`
	SenderID    string `json:"sender_id"`
	ContentType string `json:"content_type,omitempty"`
}

// LeaveRoomData asks to leave the current chat.
type LeaveRoomData struct {
	ChatID string `json:"chat_id"`
}

// Outbound is the envelope for messages sent to the client.
type Outbound struct {
	Type  string `json:"type"`
	Event string `json:"event,omitempty"`
	Data  any    `json:"data,omitempty"`
	Error *Error `json:"error,omitempty"`
}

// MessageBody is the nested content part of a message document.
type MessageBody struct {
	Content     string `json:"content"`
	ContentType string `json:"content_type"`
}

// MessageDoc is a persisted chat message as broadcast to room members.
type MessageDoc struct {
	ObjectID   string      `json:"_id"`
	ChatID     string      `json:"chat_id"`
	Message    MessageBody `json:"message"`
	Sender     string      `json:"sender"`
	SenderName string      `json:"sender_name,omitempty"`
	Status     string      `json:"status"`
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`
	ID         int64       `json:"id"`
	RecordID   string      `json:"record_id"`
}

// JoinedData confirms a join to the requesting connection.
type JoinedData struct {
	ChatID string `json:"chat_id"`
	UserID string `json:"user_id"`
	Name   string `json:"name,omitempty"`
}

// LeftData confirms a leave.
type LeftData struct {
	ChatID string `json:"chat_id"`
}

// HistoryData carries recent messages of a chat, oldest first.
type HistoryData struct {
	ChatID   string       `json:"chat_id"`
	Messages []MessageDoc `json:"messages"`
}

// Error describes a protocol-level error response.
type Error struct {
	Code string `json:"code"`
	Msg  string `json:"msg"`
}

// ErrorFrame builds an error envelope.
func ErrorFrame(code, msg string) Outbound {
	return Outbound{Type: OutboundTypeError, Error: &Error{Code: code, Msg: msg}}
}
