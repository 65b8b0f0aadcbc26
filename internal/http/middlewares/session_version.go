package middlewares

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/arbenl/ecohubkosova-sub002/internal/sessions"
	"github.com/gin-gonic/gin"
)

// VersionReader is the slice of the session version store this middleware
// needs.
type VersionReader interface {
	Current(ctx context.Context, userID string) (int64, error)
}

// SessionVersion compares the version cookie against the stored per-user
// session version. A mismatch means the session changed elsewhere (another
// tab signed in or out); the response carries the fresh version and a
// staleness marker so the client re-primes its cached auth state. Store
// outages fail open: the session stays usable without the signal.
func SessionVersion(store VersionReader, secure bool, log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := UserIDFromContext(c)
		if !ok || userID == "" {
			c.Next()
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		current, err := store.Current(ctx, userID)
		if err != nil {
			log.Warn("session version lookup failed", "user_id", userID, "err", err.Error())
			c.Next()
			return
		}

		raw, cerr := c.Cookie(sessions.CookieName)
		if cerr != nil {
			// first request without the cookie: prime it, nothing is stale yet
			SetSessionVersionCookie(c, current, secure)
			c.Next()
			return
		}

		seen, perr := strconv.ParseInt(raw, 10, 64)
		if perr != nil || seen != current {
			c.Header("X-Session-Stale", "true")
			SetSessionVersionCookie(c, current, secure)
		}

		c.Next()
	}
}

// SetSessionVersionCookie writes the version cookie. Deliberately not
// HttpOnly: the browser client reads it to detect cross-tab session changes.
func SetSessionVersionCookie(c *gin.Context, version int64, secure bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(
		sessions.CookieName,
		strconv.FormatInt(version, 10),
		int((30 * 24 * time.Hour).Seconds()),
		"/",
		"",
		secure,
		false,
	)
}

// ClearSessionVersionCookie drops the version cookie on sign-out.
func ClearSessionVersionCookie(c *gin.Context, secure bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sessions.CookieName, "", -1, "/", "", secure, false)
}
