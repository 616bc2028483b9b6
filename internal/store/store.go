package store

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound is wrapped by lookups that match no record.
	ErrNotFound = errors.New("not found")
	// ErrConflict is wrapped by inserts that collide with an existing key.
	ErrConflict = errors.New("already exists")
)

// User represents a chat participant record.
type User struct {
	ID           string
	ChatID       string
	UniqueKey    string // external lookup key (unique_id.user)
	Name         string
	PhotoService string
	PhotoTarget  string
	AddedBy      string
	IsChatAdmin  bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Chat describes a named room.
type Chat struct {
	ID        string
	Name      string
	CreatedBy string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// MessageStatus is the delivery status recorded with a message.
type MessageStatus string

const (
	MessageStatusSent   MessageStatus = "Sent"
	MessageStatusFailed MessageStatus = "Failed"
)

// ContentTypeText is the default message content type.
const ContentTypeText = "text"

// Message represents a persisted chat message.
type Message struct {
	ID          string
	RecordID    string
	Seq         int64
	ChatID      string
	Content     string
	ContentType string
	Sender      string // User.ID of the sender
	SenderName  string
	Status      MessageStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// UserStore handles user persistence.
type UserStore interface {
	// CreateUser inserts a user. ID and timestamps are filled in when empty.
	CreateUser(ctx context.Context, user *User) error

	// FindUserByKey retrieves a user by its unique key.
	FindUserByKey(ctx context.Context, key string) (*User, error)

	// GetUserByID retrieves a user by ID.
	GetUserByID(ctx context.Context, id string) (*User, error)
}

// ChatStore handles chat persistence.
type ChatStore interface {
	// CreateChat inserts a chat. ID and timestamps are filled in when empty.
	CreateChat(ctx context.Context, chat *Chat) error

	// GetChat retrieves a chat by ID.
	GetChat(ctx context.Context, id string) (*Chat, error)
}

// MessageStore handles message persistence.
type MessageStore interface {
	// CreateMessage persists a message.
	CreateMessage(ctx context.Context, msg *Message) error

	// ListMessages returns up to limit most recent messages of a chat,
	// oldest first.
	ListMessages(ctx context.Context, chatID string, limit int) ([]*Message, error)
}

// Store aggregates all storage interfaces.
type Store interface {
	UserStore
	ChatStore
	MessageStore

	// Close closes the underlying database connection.
	Close() error
}
