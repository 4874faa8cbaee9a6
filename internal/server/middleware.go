package server

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	memberdomain "github.com/meritworks/meritboard/internal/member/domain"
	"go.uber.org/zap"
)

// RequestLogMiddleware logs each request with a correlation id.
func RequestLogMiddleware(log *zap.Logger) gin.HandlerFunc {
	log = log.Named("http")
	return func(c *gin.Context) {
		start := time.Now()
		requestID := strings.TrimSpace(c.GetHeader("X-Request-Id"))
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set("request_id", requestID)
		c.Header("X-Request-Id", requestID)

		c.Next()

		route := c.FullPath()
		if strings.TrimSpace(route) == "" {
			route = "unknown"
		}
		fields := []zap.Field{
			zap.String("request_id", requestID),
			zap.String("method", c.Request.Method),
			zap.String("route", route),
			zap.Int("status", c.Writer.Status()),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
		}
		if lastErr := c.Errors.Last(); lastErr != nil {
			fields = append(fields, zap.Error(lastErr.Err))
		}

		switch {
		case c.Writer.Status() >= 500:
			log.Error("request", fields...)
		case c.Writer.Status() >= 400:
			log.Warn("request", fields...)
		default:
			log.Info("request", fields...)
		}
	}
}

// actorFrom reads the caller identity resolved by the upstream identity
// subsystem. The engine trusts these headers; authenticating them is out
// of scope here.
func actorFrom(c *gin.Context) memberdomain.Actor {
	return memberdomain.Actor{
		MemberID: strings.TrimSpace(c.GetHeader("X-Member-Id")),
		Role:     memberdomain.Role(strings.TrimSpace(c.GetHeader("X-Member-Role"))),
	}
}
