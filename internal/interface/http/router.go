package http

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/faq-engine/internal/domain/admin"
	"github.com/yanqian/faq-engine/internal/infra/config"
)

// NewRouter wires up the HTTP handlers and returns a configured server. mcpHandler may be nil
// when the MCP endpoint is disabled.
func NewRouter(cfg *config.Config, handler *Handler, adminSvc admin.Service, mcpHandler http.Handler) *http.Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(
		gin.Recovery(),
		requestLogger(handler.logger),
		corsMiddleware(cfg.HTTP.CORS.AllowedOrigins),
		errorHandlingMiddleware(handler.logger),
		rateLimitMiddleware(cfg.HTTP.RateLimit, handler.logger),
	)

	router.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	api := router.Group("/api/v1")
	{
		api.POST("/faq/search", handler.SearchFAQ)
		api.GET("/faq/trending", handler.TrendingFAQ)
		api.POST("/admin/login", handler.AdminLogin)

		protected := api.Group("/admin", adminMiddleware(adminSvc))
		protected.POST("/faqs", handler.AddFAQ)
		protected.GET("/faqs/recent", handler.RecentFAQs)
		protected.GET("/faqs/export", handler.ExportFAQs)
		protected.POST("/cache/invalidate", handler.InvalidateCache)
		protected.GET("/stats", handler.Stats)
	}

	retry := cfg.HTTP.Retry
	if mcpHandler != nil && cfg.MCP.Enabled {
		path := cfg.MCP.Path
		if !strings.HasPrefix(path, "/") {
			path = "/" + path
		}
		router.Any(path, gin.WrapH(mcpHandler))
		// MCP responses stream and tool calls are not idempotent.
		retry.Exclude = append(append([]string(nil), retry.Exclude...), path)
	}

	return &http.Server{
		Addr:           cfg.HTTP.Address,
		Handler:        withRetry(router, retry, handler.logger),
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		MaxHeaderBytes: 1 << 20,
	}
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("http request", "method", c.Request.Method, "path", c.Request.URL.Path, "status", c.Writer.Status(), "latency_ms", latency.Milliseconds())
	}
}
