package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/relaychat-server/internal/core"
	"github.com/vovakirdan/relaychat-server/internal/proto"
)

func doJSON(t *testing.T, env *testEnv, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	env.ts.Config.Handler.ServeHTTP(resp, req)
	return resp
}

func TestCreateAndGetUser(t *testing.T) {
	env := startTestServer(t, nil)

	resp := doJSON(t, env, http.MethodPost, "/api/users",
		`{"unique_key":"alice-key","name":"Alice","photo":{"service":"s3","target":"a.png"},"is_chat_admin":true}`)
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	var created UserResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &created))
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "Alice", created.Name)
	assert.Equal(t, "a.png", created.Photo.Target)
	assert.True(t, created.IsChatAdmin)

	resp = doJSON(t, env, http.MethodGet, "/api/users/alice-key", "")
	require.Equal(t, http.StatusOK, resp.Code)
	var fetched UserResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &fetched))
	assert.Equal(t, created.ID, fetched.ID)

	resp = doJSON(t, env, http.MethodPost, "/api/users", `{"unique_key":"alice-key","name":"Again"}`)
	assert.Equal(t, http.StatusConflict, resp.Code)

	resp = doJSON(t, env, http.MethodPost, "/api/users", `{"name":"No Key"}`)
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	resp = doJSON(t, env, http.MethodGet, "/api/users/nobody", "")
	assert.Equal(t, http.StatusNotFound, resp.Code)
	var errResp ErrorResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &errResp))
	assert.Equal(t, "user not found", errResp.Error)
}

func TestCreateAndGetChat(t *testing.T) {
	env := startTestServer(t, nil)

	resp := doJSON(t, env, http.MethodPost, "/api/chats", `{"id":"general","name":"General","created_by":"admin"}`)
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	resp = doJSON(t, env, http.MethodGet, "/api/chats/general", "")
	require.Equal(t, http.StatusOK, resp.Code)
	var chat ChatResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &chat))
	assert.Equal(t, "General", chat.Name)
	assert.Equal(t, "admin", chat.CreatedBy)

	resp = doJSON(t, env, http.MethodPost, "/api/chats", `{"id":"general","name":"Dup"}`)
	assert.Equal(t, http.StatusConflict, resp.Code)

	resp = doJSON(t, env, http.MethodGet, "/api/chats/missing", "")
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestListChatMessages(t *testing.T) {
	env := startTestServer(t, nil)
	env.seedUser(t, "alice-key", "Alice")
	ctx := context.Background()

	for _, text := range []string{"a", "b", "c"} {
		_, _, err := env.hub.Send(ctx, core.SendRequest{ChatID: "R1", Content: text, SenderKey: "alice-key"})
		require.NoError(t, err)
	}

	resp := doJSON(t, env, http.MethodGet, "/api/chats/R1/messages?limit=2", "")
	require.Equal(t, http.StatusOK, resp.Code)
	var page proto.HistoryData
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &page))
	require.Len(t, page.Messages, 2)
	assert.Equal(t, "b", page.Messages[0].Message.Content)
	assert.Equal(t, "c", page.Messages[1].Message.Content)

	resp = doJSON(t, env, http.MethodGet, "/api/chats/R1/messages?limit=zero", "")
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestChatMembersCountsLiveConnections(t *testing.T) {
	env := startTestServer(t, nil)
	env.seedUser(t, "alice-key", "Alice")

	for _, id := range []string{"c1", "c2"} {
		c := core.NewClient(id, 4)
		require.True(t, env.hub.RegisterClient(c))
		_, err := env.hub.Join(context.Background(), "R1", "alice-key", c.ID)
		require.NoError(t, err)
	}

	resp := doJSON(t, env, http.MethodGet, "/api/chats/R1/members", "")
	require.Equal(t, http.StatusOK, resp.Code)
	var members MembersResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &members))
	assert.Equal(t, 2, members.Members)

	env.hub.UnregisterClient("c1")
	resp = doJSON(t, env, http.MethodGet, "/api/chats/R1/members", "")
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &members))
	assert.Equal(t, 1, members.Members)
}

func TestMetricsEndpoint(t *testing.T) {
	env := startTestServer(t, nil)

	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(env.ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "relaychat_connections_active")
}
