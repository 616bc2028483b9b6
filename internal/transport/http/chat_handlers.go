package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/relaychat-server/internal/core"
	"github.com/vovakirdan/relaychat-server/internal/proto"
	"github.com/vovakirdan/relaychat-server/internal/store"
)

// ChatHandlers provides HTTP handlers for chat records, history and live rooms.
type ChatHandlers struct {
	store store.Store
	hub   *core.Hub
	log   *zerolog.Logger
}

// NewChatHandlers creates a new chat handlers instance.
func NewChatHandlers(st store.Store, hub *core.Hub, logger *zerolog.Logger) *ChatHandlers {
	return &ChatHandlers{
		store: st,
		hub:   hub,
		log:   logger,
	}
}

// CreateChatRequest represents the create chat request body.
type CreateChatRequest struct {
	ID        string `json:"id" binding:"max=128"`
	Name      string `json:"name" binding:"required,min=1,max=64"`
	CreatedBy string `json:"created_by"`
}

// ChatResponse represents a chat in API responses.
type ChatResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedBy string    `json:"created_by,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// MembersResponse reports live room occupancy.
type MembersResponse struct {
	ChatID  string `json:"chat_id"`
	Members int    `json:"members"`
}

// CreateChat stores a chat record.
// POST /api/chats
func (h *ChatHandlers) CreateChat(c *gin.Context) {
	var req CreateChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Debug().Err(err).Msg("invalid create chat request")
		abortWithError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	chat := &store.Chat{ID: req.ID, Name: req.Name, CreatedBy: req.CreatedBy}
	if err := h.store.CreateChat(c.Request.Context(), chat); err != nil {
		if errors.Is(err, store.ErrConflict) {
			abortWithError(c, http.StatusConflict, "chat with this id already exists")
			return
		}
		h.log.Error().Err(err).Str("chat_name", req.Name).Msg("failed to create chat")
		abortWithError(c, http.StatusInternalServerError, "internal server error")
		return
	}

	h.log.Info().Str("chat_id", chat.ID).Str("chat_name", chat.Name).Msg("chat created")
	c.JSON(http.StatusCreated, chatResponse(chat))
}

// GetChat returns a chat record.
// GET /api/chats/:id
func (h *ChatHandlers) GetChat(c *gin.Context) {
	chat, err := h.store.GetChat(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			abortWithError(c, http.StatusNotFound, "chat not found")
			return
		}
		h.log.Error().Err(err).Str("chat_id", c.Param("id")).Msg("failed to get chat")
		abortWithError(c, http.StatusInternalServerError, "internal server error")
		return
	}
	c.JSON(http.StatusOK, chatResponse(chat))
}

// ListMessages returns persisted messages of a chat, oldest first.
// Rooms without a chat record still have history, so no record is required.
// GET /api/chats/:id/messages?limit=50
func (h *ChatHandlers) ListMessages(c *gin.Context) {
	limit := defaultHistoryPage
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			abortWithError(c, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, maxHistoryPage)
	}

	chatID := c.Param("id")
	messages, err := h.store.ListMessages(c.Request.Context(), chatID, limit)
	if err != nil {
		h.log.Error().Err(err).Str("chat_id", chatID).Msg("failed to list messages")
		abortWithError(c, http.StatusInternalServerError, "internal server error")
		return
	}

	c.JSON(http.StatusOK, proto.HistoryData{ChatID: chatID, Messages: messageDocs(messages)})
}

// Members reports how many live connections are in a room.
// GET /api/chats/:id/members
func (h *ChatHandlers) Members(c *gin.Context) {
	chatID := c.Param("id")
	c.JSON(http.StatusOK, MembersResponse{ChatID: chatID, Members: h.hub.MemberCount(chatID)})
}

func chatResponse(chat *store.Chat) ChatResponse {
	return ChatResponse{
		ID:        chat.ID,
		Name:      chat.Name,
		CreatedBy: chat.CreatedBy,
		CreatedAt: chat.CreatedAt,
		UpdatedAt: chat.UpdatedAt,
	}
}
