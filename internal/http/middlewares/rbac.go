package middlewares

import (
	"context"
	"net/http"
	"time"

	"github.com/arbenl/ecohubkosova-sub002/internal/domain/profile"
	"github.com/gin-gonic/gin"
)

// ProfileResolver resolves the domain profile behind an authenticated user.
type ProfileResolver interface {
	Resolve(ctx context.Context, userID string) (*profile.Profile, error)
}

// RequireAdmin gates admin routes on the profile role, not the token: the
// token only proves identity, the users table decides privileges. A missing
// or unresolvable profile means no admin access.
func (m *AuthMiddleware) RequireAdmin(resolver ProfileResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := UserIDFromContext(c)
		if !ok || id == "" {
			abortUnauthorized(c, "Missing identity context")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		p, err := resolver.Resolve(ctx, id)
		if err != nil || p == nil || p.Roli != profile.RoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": gin.H{
					"code":    "forbidden",
					"message": "Admin role required",
				},
			})
			return
		}

		c.Next()
	}
}
