package http

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/relaychat-server/internal/config"
	"github.com/vovakirdan/relaychat-server/internal/core"
	"github.com/vovakirdan/relaychat-server/internal/metrics"
	"github.com/vovakirdan/relaychat-server/internal/proto"
	"github.com/vovakirdan/relaychat-server/internal/store"
	"github.com/vovakirdan/relaychat-server/internal/store/sqlite"
)

type testEnv struct {
	ts    *httptest.Server
	hub   *core.Hub
	store *sqlite.SQLiteStore
	reg   *prometheus.Registry
}

// startTestServer serves the full router over an in-memory SQLite store.
func startTestServer(t *testing.T, mutate func(*config.Config)) *testEnv {
	t.Helper()

	st, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	cfg := config.Default()
	cfg.Port = 0
	cfg.ReadHeaderTimeout = time.Second
	if mutate != nil {
		mutate(&cfg)
	}

	disabledLogger := zerolog.New(nil).Level(zerolog.Disabled)
	reg := prometheus.NewRegistry()
	hub := core.NewHub(st, core.Options{
		HistoryLimit:    cfg.HistoryLimit,
		DeliveryTimeout: cfg.DeliveryTimeout,
		Recorder:        metrics.New(reg),
		Logger:          &disabledLogger,
	})

	server := NewServer(hub, st, &cfg, reg, &disabledLogger)
	ts := httptest.NewServer(server.Handler)
	t.Cleanup(ts.Close)

	return &testEnv{ts: ts, hub: hub, store: st, reg: reg}
}

func (e *testEnv) seedUser(t *testing.T, key, name string) *store.User {
	t.Helper()
	u := &store.User{UniqueKey: key, Name: name}
	require.NoError(t, e.store.CreateUser(context.Background(), u))
	return u
}

// counterValue sums every series of the named counter family.
func (e *testEnv) counterValue(t *testing.T, name string) float64 {
	t.Helper()
	families, err := e.reg.Gather()
	require.NoError(t, err)
	var total float64
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			total += m.GetCounter().GetValue()
		}
	}
	return total
}

func (e *testEnv) dial(t *testing.T, ctx context.Context) *websocket.Conn {
	t.Helper()
	wsURL := strings.Replace(e.ts.URL, "http", "ws", 1) + "/ws"
	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close(websocket.StatusNormalClosure, "done") })
	return conn
}

func send(t *testing.T, ctx context.Context, conn *websocket.Conn, typ string, data any) {
	t.Helper()
	payload, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, wsjson.Write(ctx, conn, proto.Inbound{Type: typ, Data: payload}))
}

// inboundFrame mirrors proto.Outbound with the payload left raw.
type inboundFrame struct {
	Type  string          `json:"type"`
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
	Error *proto.Error    `json:"error"`
}

func readFrame(t *testing.T, ctx context.Context, conn *websocket.Conn) inboundFrame {
	t.Helper()
	var frame inboundFrame
	require.NoError(t, wsjson.Read(ctx, conn, &frame))
	return frame
}

func readEvent[T any](t *testing.T, ctx context.Context, conn *websocket.Conn, event string) T {
	t.Helper()
	frame := readFrame(t, ctx, conn)
	require.Equal(t, proto.OutboundTypeEvent, frame.Type, "unexpected frame: %+v", frame)
	require.Equal(t, event, frame.Event)
	var data T
	require.NoError(t, json.Unmarshal(frame.Data, &data))
	return data
}

func readError(t *testing.T, ctx context.Context, conn *websocket.Conn) *proto.Error {
	t.Helper()
	frame := readFrame(t, ctx, conn)
	require.Equal(t, proto.OutboundTypeError, frame.Type, "unexpected frame: %+v", frame)
	require.NotNil(t, frame.Error)
	return frame.Error
}

func join(t *testing.T, ctx context.Context, conn *websocket.Conn, chatID, userKey string) proto.JoinedData {
	t.Helper()
	send(t, ctx, conn, proto.InboundTypeJoinRoom, proto.JoinRoomData{ChatID: chatID, UserID: userKey})
	return readEvent[proto.JoinedData](t, ctx, conn, proto.EventJoined)
}
