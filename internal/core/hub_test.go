package core

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/relaychat-server/internal/store"
)

func TestHubJoinBroadcastAndDisconnect(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	hub := NewHub(newMemStorage(testUser("U1", "alice"), testUser("U2", "bob")), Options{})

	a := NewClient("A", 8)
	b := NewClient("B", 8)
	require.True(t, hub.RegisterClient(a))
	require.True(t, hub.RegisterClient(b))

	hub.Handle(ctx, a, &Command{Kind: CommandJoinRoom, Room: "R1", UserKey: "U1"})
	joinEv := mustEvent(t, a.Events, EventJoined)
	assert.Equal(t, "R1", joinEv.Room)
	assert.Equal(t, "alice", joinEv.UserName)
	assert.Equal(t, []string{"A"}, hub.MembersOf("R1"))

	hub.Handle(ctx, b, &Command{Kind: CommandJoinRoom, Room: "R1", UserKey: "U2"})
	mustEvent(t, b.Events, EventJoined)
	assert.ElementsMatch(t, []string{"A", "B"}, hub.MembersOf("R1"))

	hub.Handle(ctx, a, &Command{Kind: CommandSendRoomMessage, Room: "R1", UserKey: "U1", Content: "hello"})
	for _, c := range []*Client{a, b} {
		ev := mustEvent(t, c.Events, EventRoomMessage)
		require.NotNil(t, ev.Message)
		assert.Equal(t, "hello", ev.Message.Content)
		assert.Equal(t, "U1", ev.Message.Sender)
		assert.Equal(t, store.MessageStatusSent, ev.Message.Status)
		assert.Equal(t, "text", ev.Message.ContentType)
	}

	hub.UnregisterClient("B")
	assert.Equal(t, []string{"A"}, hub.MembersOf("R1"))
	assert.Equal(t, 1, hub.ConnectionCount())
}

func TestHubJoinUnknownUserProducesError(t *testing.T) {
	hub := NewHub(newMemStorage(), Options{})
	a := NewClient("A", 4)
	hub.RegisterClient(a)

	hub.Handle(context.Background(), a, &Command{Kind: CommandJoinRoom, Room: "R1", UserKey: "ghost"})

	ev := mustEvent(t, a.Events, EventError)
	require.NotNil(t, ev.Error)
	assert.Equal(t, ErrCodeUserNotFound, ev.Error.Code)
	assert.Empty(t, hub.MembersOf("R1"))
}

func TestHubSendUnknownSenderProducesError(t *testing.T) {
	hub := NewHub(newMemStorage(testUser("U1", "alice")), Options{})
	a := NewClient("A", 4)
	hub.RegisterClient(a)
	hub.Handle(context.Background(), a, &Command{Kind: CommandJoinRoom, Room: "R1", UserKey: "U1"})
	mustEvent(t, a.Events, EventJoined)

	hub.Handle(context.Background(), a, &Command{Kind: CommandSendRoomMessage, Room: "R1", UserKey: "ghost", Content: "hi"})

	ev := mustEvent(t, a.Events, EventError)
	assert.Equal(t, ErrCodeSenderNotFound, ev.Error.Code)
}

func TestHubPersistenceFailureIsReportedWithoutDetails(t *testing.T) {
	st := newMemStorage(testUser("U1", "alice"))
	st.createErr = errors.New("disk full")
	hub := NewHub(st, Options{})
	a := NewClient("A", 4)
	hub.RegisterClient(a)
	hub.Handle(context.Background(), a, &Command{Kind: CommandJoinRoom, Room: "R1", UserKey: "U1"})
	mustEvent(t, a.Events, EventJoined)

	hub.Handle(context.Background(), a, &Command{Kind: CommandSendRoomMessage, Room: "R1", UserKey: "U1", Content: "hi"})

	ev := mustEvent(t, a.Events, EventError)
	assert.Equal(t, ErrCodePersistenceFailed, ev.Error.Code)
	assert.Len(t, a.Events, 0, "no broadcast after a failed write")
}

func TestHubLeaveUnknownRoomError(t *testing.T) {
	hub := NewHub(newMemStorage(), Options{})
	a := NewClient("A", 4)
	hub.RegisterClient(a)

	hub.Handle(context.Background(), a, &Command{Kind: CommandLeaveRoom, Room: "ghost"})

	ev := mustEvent(t, a.Events, EventError)
	assert.Equal(t, ErrCodeNotInRoom, ev.Error.Code)
}

func TestHubJoinReplaysHistory(t *testing.T) {
	st := newMemStorage(testUser("U1", "alice"))
	hub := NewHub(st, Options{HistoryLimit: 10})
	a := NewClient("A", 8)
	hub.RegisterClient(a)

	_, _, err := hub.Send(context.Background(), SendRequest{ChatID: "R1", Content: "earlier", SenderKey: "U1"})
	require.NoError(t, err)

	hub.Handle(context.Background(), a, &Command{Kind: CommandJoinRoom, Room: "R1", UserKey: "U1"})
	mustEvent(t, a.Events, EventJoined)
	ev := mustEvent(t, a.Events, EventHistory)
	require.Len(t, ev.Messages, 1)
	assert.Equal(t, "earlier", ev.Messages[0].Content)
}

func TestHubShutdownDisconnectsEveryone(t *testing.T) {
	hub := NewHub(newMemStorage(testUser("U1", "alice")), Options{})
	clients := []*Client{NewClient("A", 4), NewClient("B", 4)}
	for _, c := range clients {
		hub.RegisterClient(c)
		_, err := hub.Join(context.Background(), "R1", "U1", c.ID)
		require.NoError(t, err)
	}

	hub.Shutdown()

	assert.Zero(t, hub.ConnectionCount())
	assert.Empty(t, hub.MembersOf("R1"))
	for _, c := range clients {
		assert.Equal(t, StateDisconnected, c.State())
	}
}
