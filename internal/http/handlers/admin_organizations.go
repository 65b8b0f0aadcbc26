package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/arbenl/ecohubkosova-sub002/internal/admin"
	"github.com/arbenl/ecohubkosova-sub002/internal/domain/organization"
	"github.com/gin-gonic/gin"
)

type AdminOrganizationsHandler struct {
	svc *admin.Organizations
}

func NewAdminOrganizationsHandler(svc *admin.Organizations) *AdminOrganizationsHandler {
	return &AdminOrganizationsHandler{svc: svc}
}

func (h *AdminOrganizationsHandler) List(ctx *gin.Context) {
	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 10*time.Second)
	defer cancel()

	orgs, err := h.svc.FetchAdminOrganizations(cctx)
	if err != nil {
		RespondUnavailable(ctx, "Could not load organizations.")
		return
	}

	RespondData(ctx, http.StatusOK, orgs)
}

type AdminOrganizationPatch struct {
	Emri          *string `json:"emri" binding:"omitempty,min=2"`
	Pershkrimi    *string `json:"pershkrimi"`
	Qyteti        *string `json:"qyteti"`
	Email         *string `json:"email" binding:"omitempty,email"`
	EshteAprovuar *bool   `json:"eshte_aprovuar"`
}

func (h *AdminOrganizationsHandler) Update(ctx *gin.Context) {
	id := ctx.Param("id")

	var req AdminOrganizationPatch
	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 10*time.Second)
	defer cancel()

	updated, err := h.svc.UpdateOrganizationRecord(cctx, id, organization.Patch{
		Emri:          req.Emri,
		Pershkrimi:    req.Pershkrimi,
		Qyteti:        req.Qyteti,
		Email:         req.Email,
		EshteAprovuar: req.EshteAprovuar,
	})
	if err != nil {
		if errors.Is(err, organization.ErrNotFound) {
			RespondNotFound(ctx, "Organization not found.")
			return
		}
		RespondUnavailable(ctx, "Could not update organization.")
		return
	}

	RespondData(ctx, http.StatusOK, updated)
}

func (h *AdminOrganizationsHandler) Delete(ctx *gin.Context) {
	id := ctx.Param("id")

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 10*time.Second)
	defer cancel()

	if err := h.svc.DeleteOrganizationRecord(cctx, id); err != nil {
		if errors.Is(err, organization.ErrNotFound) {
			RespondNotFound(ctx, "Organization not found.")
			return
		}
		RespondUnavailable(ctx, "Could not delete organization.")
		return
	}

	ctx.Status(http.StatusNoContent)
}
