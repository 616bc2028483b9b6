package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/relaychat-server/internal/store"
)

// JoinedRoom confirms a successful join.
type JoinedRoom struct {
	Room    string
	User    *store.User
	History []*store.Message
}

// Membership validates and executes join and leave requests.
type Membership struct {
	storage      Storage
	directory    *Directory
	registry     *Registry
	historyLimit int
	rec          Recorder
	log          *zerolog.Logger
}

// NewMembership builds a membership manager. historyLimit <= 0 disables
// history on join.
func NewMembership(storage Storage, dir *Directory, reg *Registry, historyLimit int, rec Recorder, logger *zerolog.Logger) *Membership {
	if rec == nil {
		rec = nopRecorder{}
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Membership{
		storage:      storage,
		directory:    dir,
		registry:     reg,
		historyLimit: historyLimit,
		rec:          rec,
		log:          logger,
	}
}

// Join resolves userKey and moves connID into chatID. The directory is left
// untouched when the user cannot be resolved.
func (m *Membership) Join(ctx context.Context, chatID, userKey, connID string) (*JoinedRoom, error) {
	if chatID == "" || userKey == "" {
		m.rec.Rejected("join", ErrCodeBadRequest)
		return nil, fmt.Errorf("%w: chat_id and user_id are required", ErrBadRequest)
	}
	if !m.registry.IsRegistered(connID) {
		m.rec.Rejected("join", ErrCodeNotConnected)
		return nil, ErrNotConnected
	}

	user, err := m.storage.FindUserByKey(ctx, userKey)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			m.rec.Rejected("join", ErrCodeUserNotFound)
			return nil, fmt.Errorf("%w: %s", ErrUserNotFound, userKey)
		}
		m.rec.Rejected("join", ErrCodeInternal)
		return nil, fmt.Errorf("%w: %w", ErrLookupFailed, err)
	}

	m.directory.AddMember(chatID, connID)
	if !m.registry.IsRegistered(connID) {
		// Disconnected while the lookup was in flight.
		m.directory.RemoveMember(chatID, connID)
		return nil, ErrNotConnected
	}
	m.rec.JoinAccepted()

	m.log.Info().
		Str("conn_id", connID).
		Str("chat_id", chatID).
		Str("user", user.Name).
		Msg("user joined chat")

	return &JoinedRoom{
		Room:    chatID,
		User:    user,
		History: m.history(ctx, chatID),
	}, nil
}

func (m *Membership) history(ctx context.Context, chatID string) []*store.Message {
	if m.historyLimit <= 0 {
		return nil
	}
	hs, ok := m.storage.(HistoryStorage)
	if !ok {
		return nil
	}
	msgs, err := hs.ListMessages(ctx, chatID, m.historyLimit)
	if err != nil {
		m.log.Warn().Err(err).Str("chat_id", chatID).Msg("failed to load history")
		return nil
	}
	if msgs == nil {
		// Enabled history is always reported, even when the chat has none yet.
		msgs = []*store.Message{}
	}
	return msgs
}

// Leave removes connID from chatID.
func (m *Membership) Leave(chatID, connID string) error {
	if chatID == "" {
		return fmt.Errorf("%w: chat_id is required", ErrBadRequest)
	}
	if !m.directory.RemoveMember(chatID, connID) {
		return fmt.Errorf("%w: %s", ErrNotInRoom, chatID)
	}
	m.log.Debug().Str("conn_id", connID).Str("chat_id", chatID).Msg("connection left chat")
	return nil
}
