package http

import (
	stdhttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/roomtalk/roomtalk-server/internal/config"
	"github.com/roomtalk/roomtalk-server/internal/core"
	"github.com/roomtalk/roomtalk-server/internal/store"
)

// NewServer builds the HTTP server carrying the REST API and the websocket
// endpoint.
func NewServer(hub *core.Hub, st store.Store, cfg *config.Config, logger *zerolog.Logger) *stdhttp.Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(LoggerMiddleware(logger))
	router.Use(CORSMiddleware(cfg.AllowedOrigins))

	userHandlers := NewUserHandlers(st, hub, logger)

	router.GET("/health", func(c *gin.Context) {
		c.String(stdhttp.StatusOK, "ok")
	})
	router.GET("/rooms", func(c *gin.Context) {
		c.JSON(stdhttp.StatusOK, cfg.Rooms)
	})
	router.POST("/users", userHandlers.Signup)
	router.POST("/users/login", userHandlers.Login)
	router.DELETE("/logout", userHandlers.Logout)
	router.GET("/ws", gin.WrapH(NewWSHandler(hub, cfg.AllowedOrigins, logger)))

	return &stdhttp.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}
