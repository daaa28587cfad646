// Package middleware provides HTTP middleware components.
package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"paybatch/internal/core/appctx"
	"paybatch/internal/core/apperror"
	"paybatch/pkg/logger"
)

// Recovery turns panics into INTERNAL_ERROR. The stack is logged, never returned.
// http.ErrAbortHandler is re-raised so the server drops the connection.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if err, ok := rec.(error); ok && errors.Is(err, http.ErrAbortHandler) {
				panic(rec)
			}

			logger.Error(c.Request.Context(), "panic in handler",
				"method", c.Request.Method,
				"route", c.FullPath(),
				"panic", rec,
				"stack", string(debug.Stack()),
			)
			if c.Writer.Written() {
				// Headers are gone; a JSON error would corrupt the body.
				c.Abort()
				return
			}
			_ = c.Error(
				apperror.NewInternal(fmt.Errorf("panic: %v", rec)).
					WithDetail("request_id", appctx.GetRequestID(c.Request.Context())),
			)
			c.Abort()
		}()
		c.Next()
	}
}
