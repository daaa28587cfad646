package middleware

import (
	"github.com/gin-gonic/gin"

	"paybatch/internal/core/appctx"
)

const (
	HeaderRequestID = "X-Request-ID"
	HeaderTraceID   = "X-Trace-ID"

	keyRequestID  = "request_id"
	keyTraceID    = "trace_id"
	keyOperatorID = "operator_id"
)

// Trace puts a TraceContext in the request context and echoes ids in headers.
func Trace() gin.HandlerFunc {
	return func(c *gin.Context) {
		trace := appctx.NewTraceContext(c.GetHeader(HeaderRequestID))
		if incoming := c.GetHeader(HeaderTraceID); incoming != "" {
			trace.TraceID = incoming
		}

		c.Request = c.Request.WithContext(appctx.WithTrace(c.Request.Context(), trace))
		c.Set(keyTraceID, trace.TraceID)
		c.Set(keyRequestID, trace.RequestID)

		c.Header(HeaderRequestID, trace.RequestID)
		c.Header(HeaderTraceID, trace.TraceID)

		c.Next()
	}
}
