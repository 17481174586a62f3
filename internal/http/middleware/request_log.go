package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/materials-backend/internal/http/response"
	"github.com/yungbote/materials-backend/internal/platform/ctxutil"
	"github.com/yungbote/materials-backend/internal/platform/logger"
)

// RequestLogger writes one access line per request. Form submissions are
// answered with 200 either way, so their feedback outcome is logged too and a
// rejected submission is logged as a warning. Skipped routes are not logged.
func RequestLogger(log *logger.Logger, skip ...string) gin.HandlerFunc {
	skipped := make(map[string]bool, len(skip))
	for _, route := range skip {
		skipped[route] = true
	}
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		if log == nil || skipped[c.FullPath()] {
			return
		}

		status := c.Writer.Status()
		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		fields := []interface{}{
			"method", c.Request.Method,
			"route", route,
			"status", status,
			"bytes", c.Writer.Size(),
			"duration_ms", time.Since(start).Milliseconds(),
		}
		fields = append(fields, ctxutil.LogFields(c.Request.Context())...)
		if rd := ctxutil.GetRequestData(c.Request.Context()); rd != nil && rd.UserID != uuid.Nil {
			fields = append(fields, "user_id", rd.UserID.String())
		}
		outcome := c.GetString(response.FeedbackKey)
		if outcome != "" {
			fields = append(fields, "feedback", outcome)
		}

		switch {
		case status >= 500:
			log.Error("HTTP request", fields...)
		case status >= 400, outcome == response.FeedbackFailure:
			log.Warn("HTTP request", fields...)
		default:
			log.Info("HTTP request", fields...)
		}
	}
}
