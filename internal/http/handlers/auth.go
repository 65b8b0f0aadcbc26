package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/arbenl/ecohubkosova-sub002/internal/authsync"
	"github.com/arbenl/ecohubkosova-sub002/internal/domain/profile"
	"github.com/arbenl/ecohubkosova-sub002/internal/http/middlewares"
	"github.com/arbenl/ecohubkosova-sub002/internal/identity"
	"github.com/gin-gonic/gin"
)

// VersionBumper advances the per-user session version on sign-in/sign-out.
type VersionBumper interface {
	Bump(ctx context.Context, userID string) (int64, error)
}

// ProfileResolver yields the marketplace profile for the authenticated user.
type ProfileResolver interface {
	Resolve(ctx context.Context, userID string) (*profile.Profile, error)
}

type AuthHandler struct {
	sync     *authsync.Synchronizer
	provider identity.Provider
	profiles ProfileResolver
	versions VersionBumper
	secure   bool
	log      *slog.Logger
}

func NewAuthHandler(sync *authsync.Synchronizer, provider identity.Provider, profiles ProfileResolver, versions VersionBumper, secure bool, log *slog.Logger) *AuthHandler {
	return &AuthHandler{
		sync:     sync,
		provider: provider,
		profiles: profiles,
		versions: versions,
		secure:   secure,
		log:      log,
	}
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Login(ctx *gin.Context) {
	var req LoginRequest
	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 10*time.Second)
	defer cancel()

	session, err := h.sync.SignInWithPassword(cctx, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, identity.ErrInvalidCredentials) {
			// provider message verbatim, no session cookie on failure
			RespondUnAuthorized(ctx, "invalid_credentials", err.Error())
			return
		}
		h.log.Error("sign in failed", "err", err.Error())
		RespondUnavailable(ctx, "Sign in is temporarily unavailable.")
		return
	}

	user, err := h.provider.User(cctx, session.AccessToken)
	if err != nil {
		h.log.Error("post-login user lookup failed", "err", err.Error())
		RespondInternal(ctx, "Could not establish session")
		return
	}

	version, err := h.versions.Bump(cctx, user.ID)
	if err != nil {
		// the session still works without the cross-tab signal
		h.log.Warn("session version bump failed", "user_id", user.ID, "err", err.Error())
	} else {
		middlewares.SetSessionVersionCookie(ctx, version, h.secure)
	}

	RespondData(ctx, http.StatusOK, gin.H{
		"accessToken": session.AccessToken,
		"expiresAt":   session.ExpiresAt,
		"user": gin.H{
			"id":    user.ID,
			"email": user.Email,
			"name":  user.Name,
		},
	})
}

// SignOut clears the session. Local state drops immediately, the provider
// revocation runs in the background, and the response never waits on it.
func (h *AuthHandler) SignOut(ctx *gin.Context) {
	if id, ok := middlewares.UserIDFromContext(ctx); ok && id != "" {
		cctx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
		defer cancel()

		if _, err := h.versions.Bump(cctx, id); err != nil {
			h.log.Warn("session version bump failed", "user_id", id, "err", err.Error())
		}
	}

	h.sync.SignOut(ctx.Request.Context())

	middlewares.ClearSessionVersionCookie(ctx, h.secure)
	ctx.Status(http.StatusNoContent)
}

// State primes the client's auth view. The answer is scoped to the caller:
// identity comes from the verified bearer token, profile and role from the
// users table keyed by that identity. Nothing shared across callers is read.
func (h *AuthHandler) State(ctx *gin.Context) {
	token, ok := middlewares.TokenFromContext(ctx)
	if !ok || token == "" {
		RespondUnAuthorized(ctx, "unauthorized", "Authentication required")
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 10*time.Second)
	defer cancel()

	user, err := h.provider.User(cctx, token)
	if err != nil {
		if errors.Is(err, identity.ErrUnauthorized) {
			RespondUnAuthorized(ctx, "unauthorized", "Session is no longer valid")
			return
		}
		h.log.Error("auth state user lookup failed", "err", err.Error())
		RespondUnavailable(ctx, "Auth state is temporarily unavailable.")
		return
	}

	out := gin.H{
		"isLoading": false,
		"isAdmin":   false,
		"user":      user,
	}

	p, err := h.profiles.Resolve(cctx, user.ID)
	if err != nil {
		// same contract as sign-in hydration: identity stands, profile absent
		h.log.Warn("auth state profile resolve failed", "user_id", user.ID, "err", err.Error())
	} else if p != nil {
		out["profile"] = p
		out["isAdmin"] = p.Roli == profile.RoleAdmin
	}

	RespondData(ctx, http.StatusOK, out)
}
