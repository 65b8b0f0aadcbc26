package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/arbenl/ecohubkosova-sub002/internal/domain/profile"
	"github.com/arbenl/ecohubkosova-sub002/internal/http/middlewares"
	"github.com/arbenl/ecohubkosova-sub002/internal/profiles"
	"github.com/gin-gonic/gin"
)

type ProfileService interface {
	Resolve(ctx context.Context, userID string) (*profile.Profile, error)
	Update(ctx context.Context, userID string, patch profile.Patch) (*profile.Profile, error)
}

type ProfileHandler struct {
	svc ProfileService
	log *slog.Logger
}

func NewProfileHandler(svc ProfileService, log *slog.Logger) *ProfileHandler {
	return &ProfileHandler{svc: svc, log: log}
}

// Me returns the caller's profile, creating the default one on first visit.
// A nil profile with no error means identity lookup failed upstream; the
// caller stays signed in without profile-derived content.
func (h *ProfileHandler) Me(ctx *gin.Context) {
	id, ok := middlewares.UserIDFromContext(ctx)
	if !ok || id == "" {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity context")
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 10*time.Second)
	defer cancel()

	p, err := h.svc.Resolve(cctx, id)
	if err != nil {
		h.log.Error("profile resolve failed", "user_id", id, "err", err.Error())
		RespondUnavailable(ctx, "Profile is temporarily unavailable.")
		return
	}

	RespondData(ctx, http.StatusOK, p)
}

type UpdateProfileRequest struct {
	EmriIPlote  *string `json:"emri_i_plote" binding:"omitempty,min=2,max=120"`
	Vendndodhja *string `json:"vendndodhja" binding:"omitempty,max=120"`
}

func (h *ProfileHandler) UpdateMe(ctx *gin.Context) {
	id, ok := middlewares.UserIDFromContext(ctx)
	if !ok || id == "" {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity context")
		return
	}

	var req UpdateProfileRequest
	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 10*time.Second)
	defer cancel()

	p, err := h.svc.Update(cctx, id, profile.Patch{
		EmriIPlote:  req.EmriIPlote,
		Vendndodhja: req.Vendndodhja,
	})
	if err != nil {
		if err == profiles.ErrEmptyUserID {
			RespondBadRequest(ctx, "Missing user id", nil)
			return
		}
		h.log.Error("profile update failed", "user_id", id, "err", err.Error())
		RespondUnavailable(ctx, "Profile is temporarily unavailable.")
		return
	}

	RespondData(ctx, http.StatusOK, p)
}
