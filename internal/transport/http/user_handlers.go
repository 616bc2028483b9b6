package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/relaychat-server/internal/store"
)

// UserHandlers provides HTTP handlers for user records.
type UserHandlers struct {
	store store.UserStore
	log   *zerolog.Logger
}

// NewUserHandlers creates a new user handlers instance.
func NewUserHandlers(st store.UserStore, logger *zerolog.Logger) *UserHandlers {
	return &UserHandlers{
		store: st,
		log:   logger,
	}
}

// PhotoPayload is the avatar reference of a user.
type PhotoPayload struct {
	Service string `json:"service"`
	Target  string `json:"target"`
}

// CreateUserRequest represents the create user request body.
type CreateUserRequest struct {
	UniqueKey   string       `json:"unique_key" binding:"required,max=128"`
	Name        string       `json:"name" binding:"required,max=128"`
	ChatID      string       `json:"chat_id"`
	Photo       PhotoPayload `json:"photo"`
	AddedBy     string       `json:"added_by"`
	IsChatAdmin bool         `json:"is_chat_admin"`
}

// UserResponse represents a user in API responses.
type UserResponse struct {
	ID          string       `json:"id"`
	UniqueKey   string       `json:"unique_key"`
	Name        string       `json:"name"`
	ChatID      string       `json:"chat_id,omitempty"`
	Photo       PhotoPayload `json:"photo"`
	AddedBy     string       `json:"added_by,omitempty"`
	IsChatAdmin bool         `json:"is_chat_admin"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// CreateUser stores a new user record.
// POST /api/users
func (h *UserHandlers) CreateUser(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Debug().Err(err).Msg("invalid create user request")
		abortWithError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	user := &store.User{
		ChatID:       req.ChatID,
		UniqueKey:    req.UniqueKey,
		Name:         req.Name,
		PhotoService: req.Photo.Service,
		PhotoTarget:  req.Photo.Target,
		AddedBy:      req.AddedBy,
		IsChatAdmin:  req.IsChatAdmin,
	}
	if err := h.store.CreateUser(c.Request.Context(), user); err != nil {
		if errors.Is(err, store.ErrConflict) {
			abortWithError(c, http.StatusConflict, "user with this key already exists")
			return
		}
		h.log.Error().Err(err).Str("user", req.UniqueKey).Msg("failed to create user")
		abortWithError(c, http.StatusInternalServerError, "internal server error")
		return
	}

	h.log.Info().Str("user", user.UniqueKey).Str("user_id", user.ID).Msg("user created")
	c.JSON(http.StatusCreated, userResponse(user))
}

// GetUser looks a user up by unique key.
// GET /api/users/:key
func (h *UserHandlers) GetUser(c *gin.Context) {
	user, err := h.store.FindUserByKey(c.Request.Context(), c.Param("key"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			abortWithError(c, http.StatusNotFound, "user not found")
			return
		}
		h.log.Error().Err(err).Str("user", c.Param("key")).Msg("failed to look up user")
		abortWithError(c, http.StatusInternalServerError, "internal server error")
		return
	}
	c.JSON(http.StatusOK, userResponse(user))
}

func userResponse(u *store.User) UserResponse {
	return UserResponse{
		ID:          u.ID,
		UniqueKey:   u.UniqueKey,
		Name:        u.Name,
		ChatID:      u.ChatID,
		Photo:       PhotoPayload{Service: u.PhotoService, Target: u.PhotoTarget},
		AddedBy:     u.AddedBy,
		IsChatAdmin: u.IsChatAdmin,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}
