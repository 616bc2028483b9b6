package core

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/relaychat-server/internal/store"
)

// Options tunes a Hub.
type Options struct {
	// HistoryLimit is the number of recent messages replayed on join. Zero disables replay.
	HistoryLimit int
	// DeliveryTimeout bounds each per-connection delivery.
	DeliveryTimeout time.Duration
	Recorder        Recorder
	Logger          *zerolog.Logger
}

// Hub composes the connection registry, room directory, membership manager
// and message relay behind the operations the transport needs.
type Hub struct {
	registry   *Registry
	directory  *Directory
	membership *Membership
	relay      *Relay
	rec        Recorder
	log        *zerolog.Logger
}

// NewHub creates a new chat hub backed by storage.
func NewHub(storage Storage, opts Options) *Hub {
	if opts.Recorder == nil {
		opts.Recorder = nopRecorder{}
	}
	if opts.Logger == nil {
		nop := zerolog.Nop()
		opts.Logger = &nop
	}

	dir := NewDirectory()
	reg := NewRegistry(dir)
	return &Hub{
		registry:   reg,
		directory:  dir,
		membership: NewMembership(storage, dir, reg, opts.HistoryLimit, opts.Recorder, opts.Logger),
		relay:      NewRelay(storage, dir, reg, opts.DeliveryTimeout, opts.Recorder, opts.Logger),
		rec:        opts.Recorder,
		log:        opts.Logger,
	}
}

// RegisterClient admits a new connection. Returns false if its ID is taken.
func (h *Hub) RegisterClient(c *Client) bool {
	if !h.registry.Register(c) {
		return false
	}
	h.rec.ConnectionOpened()
	h.log.Debug().Str("conn_id", c.ID).Msg("client connected")
	return true
}

// UnregisterClient removes a connection and its room membership.
func (h *Hub) UnregisterClient(id string) {
	if !h.registry.Unregister(id) {
		return
	}
	h.rec.ConnectionClosed()
	h.log.Debug().Str("conn_id", id).Msg("client disconnected")
}

// Join moves a connection into a room as the user identified by userKey.
func (h *Hub) Join(ctx context.Context, chatID, userKey, connID string) (*JoinedRoom, error) {
	return h.membership.Join(ctx, chatID, userKey, connID)
}

// Leave removes a connection from a room.
func (h *Hub) Leave(chatID, connID string) error {
	return h.membership.Leave(chatID, connID)
}

// Send persists and broadcasts a message.
func (h *Hub) Send(ctx context.Context, req SendRequest) (*store.Message, Delivery, error) {
	return h.relay.Send(ctx, req)
}

// Handle executes a client command and reports the outcome back to the client.
// Broadcast messages reach the sender through its room membership, like any
// other member.
func (h *Hub) Handle(ctx context.Context, c *Client, cmd *Command) {
	switch cmd.Kind {
	case CommandJoinRoom:
		joined, err := h.Join(ctx, cmd.Room, cmd.UserKey, c.ID)
		if err != nil {
			h.replyError(ctx, c, cmd.Room, err)
			return
		}
		h.reply(ctx, c, &Event{Kind: EventJoined, Room: joined.Room, UserID: joined.User.ID, UserName: joined.User.Name})
		if joined.History != nil {
			h.reply(ctx, c, &Event{Kind: EventHistory, Room: joined.Room, Messages: joined.History})
		}
	case CommandLeaveRoom:
		if err := h.Leave(cmd.Room, c.ID); err != nil {
			h.replyError(ctx, c, cmd.Room, err)
			return
		}
		h.reply(ctx, c, &Event{Kind: EventLeft, Room: cmd.Room})
	case CommandSendRoomMessage:
		_, _, err := h.Send(ctx, SendRequest{
			ChatID:      cmd.Room,
			Content:     cmd.Content,
			ContentType: cmd.ContentType,
			SenderKey:   cmd.UserKey,
		})
		if err != nil {
			h.replyError(ctx, c, cmd.Room, err)
		}
	default:
		h.replyError(ctx, c, cmd.Room, coreError(ErrCodeBadRequest, "unknown command"))
	}
}

func (h *Hub) replyError(ctx context.Context, c *Client, room string, err error) {
	h.log.Debug().Err(err).Str("conn_id", c.ID).Str("chat_id", room).Msg("request rejected")
	h.reply(ctx, c, &Event{Kind: EventError, Room: room, Error: toCoreError(err)})
}

func (h *Hub) reply(ctx context.Context, c *Client, ev *Event) {
	if err := c.Deliver(ctx, ev); err != nil {
		h.log.Warn().Err(err).Str("conn_id", c.ID).Msg("failed to reply to client")
	}
}

// MembersOf returns a snapshot of the connections in a room.
func (h *Hub) MembersOf(chatID string) []string {
	return h.directory.MembersOf(chatID)
}

// MemberCount returns the number of connections in a room.
func (h *Hub) MemberCount(chatID string) int {
	return h.directory.MemberCount(chatID)
}

// RoomOf returns the room a connection is in.
func (h *Hub) RoomOf(connID string) (string, bool) {
	return h.directory.RoomOf(connID)
}

// ConnectionCount returns the number of live connections.
func (h *Hub) ConnectionCount() int {
	return h.registry.Count()
}

// RoomCount returns the number of rooms known to the directory.
func (h *Hub) RoomCount() int {
	return h.directory.RoomCount()
}

// Shutdown disconnects every live connection.
func (h *Hub) Shutdown() {
	ids := h.registry.IDs()
	for _, id := range ids {
		h.UnregisterClient(id)
	}
	h.log.Info().Int("connections", len(ids)).Msg("hub shut down")
}
