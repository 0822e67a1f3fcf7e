package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"fooddelivery/api/ctxutil"
	"fooddelivery/api/response"
	"fooddelivery/config"
	"fooddelivery/infrastructure/persistence"
	apperrors "fooddelivery/pkg/errors"
	"fooddelivery/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const RequestIDHeader = "X-Request-ID"

const maxRequestIDLen = 128

// RequestIDMiddleware adopts the caller's X-Request-ID or mints a UUIDv7,
// echoes it back and puts it on the request context so SQL and payment logs
// below the controller carry it too.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(RequestIDHeader))
		if id == "" || len(id) > maxRequestIDLen {
			id = newRequestID()
		}
		c.Set(response.RequestIDKey, id)
		c.Header(RequestIDHeader, id)
		c.Request = c.Request.WithContext(persistence.ContextWithRequestID(c.Request.Context(), id))
		c.Next()
	}
}

func newRequestID() string {
	if id, err := uuid.NewV7(); err == nil {
		return id.String()
	}
	return uuid.NewString()
}

// LoggingMiddleware writes one access line per request, keyed by the route
// template so /orders/:id aggregates across orders.
func LoggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("route", route),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		}
		if userID, ok := ctxutil.LoggedInUserID(c); ok {
			fields = append(fields, zap.Int64("user_id", userID))
		}

		log := logger.WithRequestID(response.GetRequestID(c))
		switch {
		case status >= http.StatusInternalServerError:
			log.Error("request", fields...)
		case status >= http.StatusBadRequest:
			log.Warn("request", fields...)
		default:
			log.Info("request", fields...)
		}
	}
}

// RecoveryMiddleware turns a handler panic into the generic 500 envelope.
func RecoveryMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				logger.WithRequestID(response.GetRequestID(c)).Error("panic in handler",
					zap.String("route", c.FullPath()),
					zap.Any("panic", r),
					zap.Stack("stack"))
				response.HandleAppError(c, fmt.Errorf("panic: %v", r))
			}
		}()
		c.Next()
	}
}

// CORSMiddleware serves the storefront and restaurant dashboards. Preflight
// requests are answered here and never reach a controller.
func CORSMiddleware(cfg *config.CORSConfig) gin.HandlerFunc {
	origins := make(map[string]bool, len(cfg.AllowOrigins))
	for _, o := range cfg.AllowOrigins {
		origins[o] = true
	}
	preflight := map[string]string{
		"Access-Control-Allow-Methods": strings.Join(cfg.AllowMethods, ", "),
		"Access-Control-Allow-Headers": strings.Join(cfg.AllowHeaders, ", "),
		"Access-Control-Max-Age":       strconv.Itoa(cfg.MaxAge),
	}

	return func(c *gin.Context) {
		if origin := c.GetHeader("Origin"); origin != "" && (origins["*"] || origins[origin]) {
			h := c.Writer.Header()
			h.Set("Access-Control-Allow-Origin", origin)
			h.Add("Vary", "Origin")
			h.Set("Access-Control-Expose-Headers", RequestIDHeader)
			if cfg.AllowCredentials {
				h.Set("Access-Control-Allow-Credentials", "true")
			}
		}
		if c.Request.Method != http.MethodOptions {
			c.Next()
			return
		}
		for k, v := range preflight {
			c.Header(k, v)
		}
		c.AbortWithStatus(http.StatusNoContent)
	}
}

// RateLimiter keeps one token bucket per caller.
type RateLimiter struct {
	buckets sync.Map
	limit   rate.Limit
	burst   int
}

func NewRateLimiter(perSecond float64, burst int) *RateLimiter {
	return &RateLimiter{limit: rate.Limit(perSecond), burst: burst}
}

// Allow spends one token from key's bucket.
func (rl *RateLimiter) Allow(key string) bool {
	b, ok := rl.buckets.Load(key)
	if !ok {
		b, _ = rl.buckets.LoadOrStore(key, rate.NewLimiter(rl.limit, rl.burst))
	}
	return b.(*rate.Limiter).Allow()
}

// RateLimitMiddleware answers 429 once a caller exhausts its budget. Callers
// already identified share a bucket across addresses; the rest are keyed by
// client ip.
func RateLimitMiddleware(cfg *config.RateLimitConfig) gin.HandlerFunc {
	if !cfg.Enabled {
		return func(c *gin.Context) { c.Next() }
	}
	limiter := NewRateLimiter(cfg.Rate, cfg.Burst)

	return func(c *gin.Context) {
		key := "ip:" + c.ClientIP()
		if userID, ok := ctxutil.LoggedInUserID(c); ok {
			key = "user:" + strconv.FormatInt(userID, 10)
		}
		if !limiter.Allow(key) {
			response.HandleAppError(c, apperrors.TooManyRequests("too many requests, slow down"))
			return
		}
		c.Next()
	}
}
