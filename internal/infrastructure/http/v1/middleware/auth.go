package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"bizbooks/internal/core/apperror"
	"bizbooks/internal/core/security"
)

// Authenticator resolves bearer tokens and re-checks the account behind them.
type Authenticator interface {
	ValidateToken(token string) (security.Principal, error)
	Authorize(ctx context.Context, p security.Principal) (security.Principal, error)
}

const principalKey = "principal"

// Auth validates the bearer token, applies the blocked and expiry gates
// against the live account and stores the principal in the request context.
func Auth(authn Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortUnauthorized(c, "missing authorization header")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || parts[1] == "" {
			abortUnauthorized(c, "invalid authorization header format")
			return
		}

		claimed, err := authn.ValidateToken(parts[1])
		if err != nil {
			_ = c.Error(err)
			c.Abort()
			return
		}

		p, err := authn.Authorize(c.Request.Context(), claimed)
		if err != nil {
			_ = c.Error(err)
			c.Abort()
			return
		}

		c.Request = c.Request.WithContext(security.WithPrincipal(c.Request.Context(), p))
		c.Set(principalKey, p)
		c.Next()
	}
}

// RequireActive blocks accounts that still owe a forced password change.
func RequireActive() gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := security.PrincipalFrom(c.Request.Context())
		if !ok {
			abortUnauthorized(c, "authentication required")
			return
		}
		if err := security.RequireActive(p); err != nil {
			_ = c.Error(err)
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireAdmin blocks non-administrators.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := security.PrincipalFrom(c.Request.Context())
		if !ok {
			abortUnauthorized(c, "authentication required")
			return
		}
		if err := security.RequireAdmin(p); err != nil {
			_ = c.Error(err)
			c.Abort()
			return
		}
		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, message string) {
	_ = c.Error(apperror.NewUnauthorized(message))
	c.Abort()
}
