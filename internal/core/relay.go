package core

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/relaychat-server/internal/store"
	"github.com/vovakirdan/relaychat-server/internal/utils"
)

// SendRequest is a message submitted by a client.
type SendRequest struct {
	ChatID      string
	Content     string
	ContentType string // defaults to "text"
	SenderKey   string
}

// Delivery summarizes one broadcast.
type Delivery struct {
	Attempted int
	Delivered int
	Failed    int
}

// Relay persists messages and broadcasts them to room members.
type Relay struct {
	storage         Storage
	directory       *Directory
	registry        *Registry
	deliveryTimeout time.Duration
	rec             Recorder
	log             *zerolog.Logger

	seq       atomic.Int64
	roomLocks sync.Map // room id -> *sync.Mutex
	now       func() time.Time
}

// NewRelay builds a message relay. deliveryTimeout bounds each
// per-connection delivery; zero means no bound beyond the caller's context.
func NewRelay(storage Storage, dir *Directory, reg *Registry, deliveryTimeout time.Duration, rec Recorder, logger *zerolog.Logger) *Relay {
	if rec == nil {
		rec = nopRecorder{}
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Relay{
		storage:         storage,
		directory:       dir,
		registry:        reg,
		deliveryTimeout: deliveryTimeout,
		rec:             rec,
		log:             logger,
		now:             time.Now,
	}
}

func (r *Relay) roomLock(chatID string) *sync.Mutex {
	mu, _ := r.roomLocks.LoadOrStore(chatID, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

// Send validates the sender, persists the message and broadcasts it to the
// current members of the room. Nothing is broadcast unless persistence
// succeeded.
func (r *Relay) Send(ctx context.Context, req SendRequest) (*store.Message, Delivery, error) {
	if req.ChatID == "" || req.SenderKey == "" {
		r.rec.Rejected("send", ErrCodeBadRequest)
		return nil, Delivery{}, fmt.Errorf("%w: chat_id and sender_id are required", ErrBadRequest)
	}

	sender, err := r.storage.FindUserByKey(ctx, req.SenderKey)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			r.rec.Rejected("send", ErrCodeSenderNotFound)
			return nil, Delivery{}, fmt.Errorf("%w: %s", ErrSenderNotFound, req.SenderKey)
		}
		r.rec.Rejected("send", ErrCodeInternal)
		return nil, Delivery{}, fmt.Errorf("%w: %w", ErrLookupFailed, err)
	}

	contentType := req.ContentType
	if contentType == "" {
		contentType = store.ContentTypeText
	}

	// Persisting and starting the broadcast happen under the room lock, so
	// broadcasts in one room start in the order their writes completed.
	mu := r.roomLock(req.ChatID)
	mu.Lock()
	defer mu.Unlock()

	now := r.now().UTC()
	msg := &store.Message{
		ID:          utils.NewOrderedID(),
		RecordID:    utils.NewID(),
		Seq:         r.seq.Add(1),
		ChatID:      req.ChatID,
		Content:     req.Content,
		ContentType: contentType,
		Sender:      sender.ID,
		SenderName:  sender.Name,
		Status:      store.MessageStatusSent,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := r.storage.CreateMessage(ctx, msg); err != nil {
		r.rec.Rejected("send", ErrCodePersistenceFailed)
		r.log.Error().Err(err).Str("chat_id", req.ChatID).Str("sender", sender.ID).Msg("failed to persist message")
		return nil, Delivery{}, fmt.Errorf("%w: %w", ErrPersistenceFailed, err)
	}

	delivery := r.broadcast(ctx, msg)
	r.rec.MessageRelayed(delivery.Delivered, delivery.Failed)

	r.log.Info().
		Str("chat_id", msg.ChatID).
		Str("user", sender.Name).
		Int("delivered", delivery.Delivered).
		Int("failed", delivery.Failed).
		Msg("message relayed")

	return msg, delivery, nil
}

// broadcast makes exactly one delivery attempt per member in the snapshot.
// A failed attempt is logged and does not affect other members.
func (r *Relay) broadcast(ctx context.Context, msg *store.Message) Delivery {
	members := r.directory.MembersOf(msg.ChatID)
	event := &Event{Kind: EventRoomMessage, Room: msg.ChatID, Message: msg}

	// Delivery must not be cut short because the sender's request ended.
	ctx = context.WithoutCancel(ctx)

	d := Delivery{Attempted: len(members)}
	for _, connID := range members {
		if err := r.deliver(ctx, connID, event); err != nil {
			d.Failed++
			r.log.Warn().
				Err(fmt.Errorf("%w: %w", ErrDeliveryFailed, err)).
				Str("conn_id", connID).
				Str("chat_id", msg.ChatID).
				Str("message_id", msg.ID).
				Msg("broadcast delivery failed")
			continue
		}
		d.Delivered++
	}
	return d
}

func (r *Relay) deliver(ctx context.Context, connID string, event *Event) error {
	client, ok := r.registry.Get(connID)
	if !ok {
		return ErrConnectionClosed
	}
	if r.deliveryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.deliveryTimeout)
		defer cancel()
	}
	return client.Deliver(ctx, event)
}
