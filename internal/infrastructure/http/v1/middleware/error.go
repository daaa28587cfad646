package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"paybatch/internal/core/appctx"
	"paybatch/internal/core/apperror"
	"paybatch/internal/infrastructure/http/v1/dto"
	"paybatch/pkg/logger"
)

// ErrorHandler renders the last handler error as a JSON ErrorResponse.
// Causes are logged and never sent to the client.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		err := c.Errors.Last().Err

		if appErr, ok := apperror.AsAppError(err); ok {
			if appErr.Err != nil {
				logger.Error(c.Request.Context(), "request error",
					"code", appErr.Code,
					"cause", appErr.Err,
				)
			}
			c.JSON(appErr.HTTPStatus, dto.ErrorResponse{
				Code:    appErr.Code,
				Message: appErr.Message,
				Details: appErr.Details,
			})
			return
		}

		logger.Error(c.Request.Context(), "unhandled error", "error", err)
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Code:    apperror.CodeInternal,
			Message: "Internal server error",
			Details: map[string]any{"request_id": appctx.GetRequestID(c.Request.Context())},
		})
	}
}
