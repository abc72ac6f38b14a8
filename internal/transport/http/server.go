package http

import (
	"fmt"
	stdhttp "net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/mailbridge/internal/config"
	"github.com/vovakirdan/mailbridge/internal/core"
)

// NewServer builds the web shell over the user's side of the conversation:
// messages are submitted to ch's outbound mailbox and history covers both.
func NewServer(ch *core.Channel, cfg *config.Config, logger *zerolog.Logger) *stdhttp.Server {
	return &stdhttp.Server{
		Addr:              cfg.Addr,
		Handler:           NewRouter(ch, logger),
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}

// NewRouter registers the shell routes on a fresh gin engine.
func NewRouter(ch *core.Channel, logger *zerolog.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(MetricsMiddleware())
	engine.Use(LoggerMiddleware(logger))

	handlers := NewMessageHandlers(ch, logger)

	engine.GET("/", pageHandler)
	engine.GET("/index.html", pageHandler)
	engine.GET("/health", healthHandler)
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := engine.Group("/api")
	api.GET("/messages", handlers.ListMessages)
	api.POST("/send", handlers.Send)

	engine.NoRoute(func(c *gin.Context) {
		if c.Request.Method == stdhttp.MethodGet && !strings.HasPrefix(c.Request.URL.Path, "/api/") {
			pageHandler(c)
			return
		}
		c.Status(stdhttp.StatusNotFound)
	})

	return engine
}

func healthHandler(c *gin.Context) {
	_, _ = fmt.Fprint(c.Writer, "ok")
}
