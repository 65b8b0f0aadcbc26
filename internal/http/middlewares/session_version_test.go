package middlewares

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/arbenl/ecohubkosova-sub002/internal/sessions"
	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeVersions struct {
	current int64
	err     error
}

func (f *fakeVersions) Current(ctx context.Context, userID string) (int64, error) {
	return f.current, f.err
}

func versionRouter(store VersionReader) *gin.Engine {
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(ctxUserIDKey, "u1")
	})
	r.Use(SessionVersion(store, false, discardLogger()))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func TestSessionVersionMarksStaleCookie(t *testing.T) {
	r := versionRouter(&fakeVersions{current: 3})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.AddCookie(&http.Cookie{Name: sessions.CookieName, Value: "2"})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if w.Header().Get("X-Session-Stale") != "true" {
		t.Fatal("stale marker missing on version mismatch")
	}
	if cookie := w.Header().Get("Set-Cookie"); !strings.Contains(cookie, sessions.CookieName+"=3") {
		t.Fatalf("Set-Cookie = %q, want refreshed version 3", cookie)
	}
}

func TestSessionVersionFreshCookiePassesQuietly(t *testing.T) {
	r := versionRouter(&fakeVersions{current: 3})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.AddCookie(&http.Cookie{Name: sessions.CookieName, Value: "3"})
	r.ServeHTTP(w, req)

	if w.Header().Get("X-Session-Stale") != "" {
		t.Fatal("fresh cookie must not be marked stale")
	}
	if cookie := w.Header().Get("Set-Cookie"); cookie != "" {
		t.Fatalf("no cookie rewrite expected, got %q", cookie)
	}
}

func TestSessionVersionPrimesMissingCookieQuietly(t *testing.T) {
	r := versionRouter(&fakeVersions{current: 3})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if w.Header().Get("X-Session-Stale") != "" {
		t.Fatal("a first request without the cookie is not stale")
	}
	if cookie := w.Header().Get("Set-Cookie"); !strings.Contains(cookie, sessions.CookieName+"=3") {
		t.Fatalf("Set-Cookie = %q, want the cookie primed to 3", cookie)
	}
}

func TestSessionVersionFailsOpen(t *testing.T) {
	r := versionRouter(&fakeVersions{err: errors.New("connection refused")})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, store outage must not block the request", w.Code)
	}
	if w.Header().Get("X-Session-Stale") != "" {
		t.Fatal("no staleness signal without a store read")
	}
}
