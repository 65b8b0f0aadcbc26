package middlewares

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/arbenl/ecohubkosova-sub002/internal/identity"
	"github.com/gin-gonic/gin"
)

// UserVerifier is the slice of the identity provider the middleware needs.
// Kept small so tests can fake it easily.
type UserVerifier interface {
	User(ctx context.Context, accessToken string) (*identity.User, error)
}

type AuthMiddleware struct {
	provider UserVerifier
}

func NewAuthMiddleware(provider UserVerifier) *AuthMiddleware {
	return &AuthMiddleware{provider: provider}
}

func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			abortUnauthorized(c, "Missing or invalid Authorization header")
			return
		}

		raw := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer"))
		if raw == "" {
			abortUnauthorized(c, "Missing or invalid access token")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		user, err := m.provider.User(ctx, raw)
		if err != nil {
			abortUnauthorized(c, "Invalid or expired access token")
			return
		}

		c.Set(ctxUserIDKey, user.ID)
		c.Set(ctxEmailKey, user.Email)
		c.Set(ctxTokenKey, raw)

		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error": gin.H{
			"code":    "unauthorized",
			"message": message,
		},
	})
}

// Helpers so handlers don't need to know the magic keys.

func UserIDFromContext(c *gin.Context) (string, bool) {
	v, ok := c.Get(ctxUserIDKey)
	if !ok {
		return "", false
	}
	id, ok := v.(string)
	return id, ok
}

func EmailFromContext(c *gin.Context) (string, bool) {
	v, ok := c.Get(ctxEmailKey)
	if !ok {
		return "", false
	}
	email, ok := v.(string)
	return email, ok
}

func TokenFromContext(c *gin.Context) (string, bool) {
	v, ok := c.Get(ctxTokenKey)
	if !ok {
		return "", false
	}
	token, ok := v.(string)
	return token, ok
}
