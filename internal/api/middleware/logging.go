package middleware

import (
	"context"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/AnhAnhii/veterans-verify-system/internal/models"
)

// APILogRecorder queues an API log entry for persistence.
type APILogRecorder interface {
	EnqueueAPILog(ctx context.Context, entry *models.APILog) error
}

// AccessLogMiddleware writes a structured access log line per request and queues
// an api_logs entry for every /api request. recorder may be nil.
func AccessLogMiddleware(log *zap.Logger, recorder APILogRecorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		duration := time.Since(start)

		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		status := c.Writer.Status()
		fields := []zap.Field{
			zap.String("request_id", c.GetString(ContextKeyRequestID)),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Int("status", status),
			zap.Duration("duration", duration),
			zap.String("ip", c.ClientIP()),
		}
		if id := ProfileID(c); id != "" {
			fields = append(fields, zap.String("profile_id", id))
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}

		switch {
		case status >= 500:
			log.Error("request", fields...)
		case status >= 400:
			log.Warn("request", fields...)
		default:
			log.Info("request", fields...)
		}

		if recorder == nil || !strings.HasPrefix(c.Request.URL.Path, "/api/") {
			return
		}
		entry := &models.APILog{
			RequestID:  c.GetString(ContextKeyRequestID),
			ProfileID:  ProfileID(c),
			Endpoint:   path,
			Method:     c.Request.Method,
			StatusCode: status,
			DurationMs: duration.Milliseconds(),
			IPAddress:  c.ClientIP(),
			UserAgent:  c.Request.UserAgent(),
			CreatedAt:  start.UTC(),
		}
		if err := recorder.EnqueueAPILog(context.WithoutCancel(c.Request.Context()), entry); err != nil {
			log.Warn("api log not queued", zap.Error(err))
		}
	}
}
