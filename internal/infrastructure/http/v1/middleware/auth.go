package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"paybatch/internal/core/appctx"
	"paybatch/internal/core/apperror"
)

// JWTValidator interface for token validation.
type JWTValidator interface {
	ValidateToken(tokenString string) (*appctx.Operator, error)
}

// Auth requires a valid bearer token and puts the operator in context.
func Auth(validator JWTValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortUnauthorized(c, "missing authorization header")
			return
		}

		scheme, token, ok := strings.Cut(authHeader, " ")
		if !ok || !strings.EqualFold(scheme, "bearer") || token == "" {
			abortUnauthorized(c, "invalid authorization header format")
			return
		}

		op, err := validator.ValidateToken(token)
		if err != nil {
			_ = c.Error(err)
			c.Abort()
			return
		}

		c.Request = c.Request.WithContext(appctx.WithOperator(c.Request.Context(), op))
		c.Set(keyOperatorID, op.ID)
		c.Next()
	}
}

// RequireRole allows the request when the operator has any of roles.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		if appctx.GetOperator(ctx) == nil {
			abortUnauthorized(c, "authentication required")
			return
		}
		for _, r := range roles {
			if appctx.HasRole(ctx, r) {
				c.Next()
				return
			}
		}
		_ = c.Error(
			apperror.NewForbidden("insufficient role").
				WithDetail("required_roles", roles),
		)
		c.Abort()
	}
}

func abortUnauthorized(c *gin.Context, message string) {
	_ = c.Error(apperror.NewUnauthorized(message))
	c.Abort()
}
