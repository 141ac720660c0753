package http

import (
	"log/slog"
	"math"
	"net/http"

	"github.com/gin-gonic/gin"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/time/rate"

	"github.com/yanqian/faq-engine/internal/infra/config"
)

// maxTrackedClients bounds the per-IP limiter table; the least recently seen client is evicted.
const maxTrackedClients = 10_000

func errorHandlingMiddleware(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		httpErr := asHTTPError(c.Errors.Last().Err)
		message := httpErr.Message
		if message == "" {
			message = httpErr.Error()
		}

		if httpErr.Status >= http.StatusInternalServerError {
			logger.Error("request failed", "code", httpErr.Code, "status", httpErr.Status, "path", c.Request.URL.Path, "error", httpErr.Err)
		} else {
			logger.Warn("request failed", "code", httpErr.Code, "status", httpErr.Status, "path", c.Request.URL.Path, "error", httpErr.Err)
		}

		c.JSON(httpErr.Status, gin.H{
			"error": gin.H{
				"code":    httpErr.Code,
				"message": message,
			},
		})
	}
}

func rateLimitMiddleware(cfg config.RateLimitConfig, logger *slog.Logger) gin.HandlerFunc {
	if !cfg.Enabled || cfg.RequestsPerMinute <= 0 {
		return func(c *gin.Context) { c.Next() }
	}

	limiters := newClientLimiters(cfg)
	return func(c *gin.Context) {
		ip := c.ClientIP()
		if limiters.allow(ip) {
			c.Next()
			return
		}
		logger.Warn("rate limit exceeded", "ip", ip, "path", c.Request.URL.Path)
		abortWithError(c, NewHTTPError(http.StatusTooManyRequests, "rate_limit_exceeded", "too many requests", nil))
	}
}

// clientLimiters hands out one token bucket per client IP.
type clientLimiters struct {
	buckets *lru.Cache[string, *rate.Limiter]
	limit   rate.Limit
	burst   int
}

func newClientLimiters(cfg config.RateLimitConfig) *clientLimiters {
	buckets, _ := lru.New[string, *rate.Limiter](maxTrackedClients)
	burst := cfg.Burst
	if burst <= 0 {
		burst = int(math.Max(1, float64(cfg.RequestsPerMinute)/60))
	}
	return &clientLimiters{
		buckets: buckets,
		limit:   rate.Limit(float64(cfg.RequestsPerMinute) / 60),
		burst:   burst,
	}
}

func (l *clientLimiters) allow(ip string) bool {
	limiter, ok := l.buckets.Get(ip)
	if !ok {
		limiter = rate.NewLimiter(l.limit, l.burst)
		if prev, loaded, _ := l.buckets.PeekOrAdd(ip, limiter); loaded {
			limiter = prev
		}
	}
	return limiter.Allow()
}
