package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"paybatch/pkg/logger"
)

// Logger logs each request with timing and status.
func Logger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		status := c.Writer.Status()
		l := log.WithContext(c.Request.Context())
		kv := []any{
			"method", c.Request.Method,
			"path", path,
			"query", query,
			"status", status,
			"latency_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
		}
		if len(c.Errors) > 0 {
			kv = append(kv, "error", c.Errors.Last().Error())
		}
		if status >= 500 {
			l.Errorw("http request", kv...)
			return
		}
		l.Infow("http request", kv...)
	}
}
