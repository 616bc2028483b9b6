package core

import (
	"context"

	"github.com/vovakirdan/relaychat-server/internal/store"
)

// Storage is the persistence boundary used by Membership and Relay.
type Storage interface {
	// FindUserByKey returns an error wrapping store.ErrNotFound on a miss.
	FindUserByKey(ctx context.Context, key string) (*store.User, error)

	// CreateMessage durably records a message.
	CreateMessage(ctx context.Context, msg *store.Message) error
}

// HistoryStorage is implemented by storages that can replay recent messages.
type HistoryStorage interface {
	ListMessages(ctx context.Context, chatID string, limit int) ([]*store.Message, error)
}

// Recorder receives counters about relay activity.
type Recorder interface {
	ConnectionOpened()
	ConnectionClosed()
	JoinAccepted()
	Rejected(op, code string)
	MessageRelayed(delivered, failed int)
}

type nopRecorder struct{}

func (nopRecorder) ConnectionOpened() {}
func (nopRecorder) ConnectionClosed() {}
func (nopRecorder) JoinAccepted() {}
func (nopRecorder) Rejected(string, string) {}
func (nopRecorder) MessageRelayed(int, int) {}
