package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	defaultHistoryPage = 50
	maxHistoryPage     = 500
)

// ErrorResponse represents an error response body.
type ErrorResponse struct {
	Error string `json:"error"`
}

// GET /health
func healthHandler(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}

func abortWithError(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, ErrorResponse{Error: msg})
}
