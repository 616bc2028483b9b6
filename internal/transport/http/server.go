package http

import (
	stdhttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/relaychat-server/internal/config"
	"github.com/vovakirdan/relaychat-server/internal/core"
	"github.com/vovakirdan/relaychat-server/internal/store"
)

// NewServer builds an HTTP server with the WebSocket endpoint, the REST API
// and, when gatherer is set, the Prometheus scrape endpoint.
func NewServer(hub *core.Hub, st store.Store, cfg *config.Config, gatherer prometheus.Gatherer, logger *zerolog.Logger) *stdhttp.Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), LoggerMiddleware(logger))

	router.GET("/health", healthHandler)
	if gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}

	userHandlers := NewUserHandlers(st, logger)
	chatHandlers := NewChatHandlers(st, hub, logger)

	api := router.Group("/api")
	{
		api.POST("/users", userHandlers.CreateUser)
		api.GET("/users/:key", userHandlers.GetUser)

		api.POST("/chats", chatHandlers.CreateChat)
		api.GET("/chats/:id", chatHandlers.GetChat)
		api.GET("/chats/:id/messages", chatHandlers.ListMessages)
		api.GET("/chats/:id/members", chatHandlers.Members)
	}

	// The WebSocket upgrade needs an untouched ResponseWriter to hijack, and
	// gin's writer refuses once a header is written, so /ws stays outside gin.
	mux := stdhttp.NewServeMux()
	mux.Handle("/ws", NewWSHandler(hub, cfg, logger))
	mux.Handle("/", router)

	return &stdhttp.Server{
		Addr:              cfg.Addr(),
		Handler:           mux,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}
