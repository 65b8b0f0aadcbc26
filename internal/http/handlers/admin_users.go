package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/arbenl/ecohubkosova-sub002/internal/admin"
	"github.com/arbenl/ecohubkosova-sub002/internal/domain/profile"
	"github.com/gin-gonic/gin"
)

type AdminUsersHandler struct {
	svc *admin.Users
}

func NewAdminUsersHandler(svc *admin.Users) *AdminUsersHandler {
	return &AdminUsersHandler{svc: svc}
}

func (h *AdminUsersHandler) List(ctx *gin.Context) {
	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 10*time.Second)
	defer cancel()

	users, err := h.svc.FetchAdminUsers(cctx)
	if err != nil {
		RespondUnavailable(ctx, "Could not load users.")
		return
	}

	RespondData(ctx, http.StatusOK, users)
}

type AdminUserPatch struct {
	EmriIPlote    *string `json:"emri_i_plote" binding:"omitempty,min=2,max=120"`
	Vendndodhja   *string `json:"vendndodhja" binding:"omitempty,max=120"`
	Roli          *string `json:"roli" binding:"omitempty,oneof=Individual Admin Organizate"`
	EshteAprovuar *bool   `json:"eshte_aprovuar"`
}

func (h *AdminUsersHandler) Update(ctx *gin.Context) {
	id := ctx.Param("id")

	var req AdminUserPatch
	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 10*time.Second)
	defer cancel()

	updated, err := h.svc.UpdateUserRecord(cctx, id, profile.Patch{
		EmriIPlote:    req.EmriIPlote,
		Vendndodhja:   req.Vendndodhja,
		Roli:          req.Roli,
		EshteAprovuar: req.EshteAprovuar,
	})
	if err != nil {
		if errors.Is(err, profile.ErrNotFound) {
			RespondNotFound(ctx, "User not found.")
			return
		}
		RespondUnavailable(ctx, "Could not update user.")
		return
	}

	RespondData(ctx, http.StatusOK, updated)
}

func (h *AdminUsersHandler) Delete(ctx *gin.Context) {
	id := ctx.Param("id")

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 10*time.Second)
	defer cancel()

	if err := h.svc.DeleteUserRecord(cctx, id); err != nil {
		if errors.Is(err, profile.ErrNotFound) {
			RespondNotFound(ctx, "User not found.")
			return
		}
		RespondUnavailable(ctx, "Could not delete user.")
		return
	}

	ctx.Status(http.StatusNoContent)
}
