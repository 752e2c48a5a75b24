package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/realtime-svg/realtime-svg/internal/logger"
)

// RequestLogger emits one structured log line per request with a
// generated request id, and echoes the id in the X-Request-ID response
// header for correlation.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := uuid.New().String()
		c.Header("X-Request-ID", requestID)
		start := time.Now()

		c.Next()

		logger.HTTP().Info().
			Str("request_id", requestID).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Msg("Request completed")
	}
}
