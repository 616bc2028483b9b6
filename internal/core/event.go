package core

import "github.com/vovakirdan/relaychat-server/internal/store"

// EventKind is a notification the core emits to clients.
type EventKind int

const (
	// EventRoomMessage notifies clients about a chat message in a room.
	EventRoomMessage EventKind = iota
	// EventJoined confirms a join to the requesting client.
	EventJoined
	// EventLeft confirms a leave to the requesting client.
	EventLeft
	// EventHistory delivers recent messages to a client upon joining a room.
	EventHistory
	// EventError notifies a client that its request failed.
	EventError
)

// Event is sent to clients to describe what happened in the system.
type Event struct {
	Kind     EventKind
	Room     string
	UserID   string
	UserName string
	Message  *store.Message
	Messages []*store.Message // For EventHistory
	Error    *CoreError
}
