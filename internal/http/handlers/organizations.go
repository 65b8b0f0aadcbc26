package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/arbenl/ecohubkosova-sub002/internal/domain/organization"
	"github.com/arbenl/ecohubkosova-sub002/internal/http/middlewares"
	"github.com/gin-gonic/gin"
)

// OrganizationCreator runs the onboarding transaction: insert the
// organization, record the caller as owner and promote their role, all or
// nothing.
type OrganizationCreator interface {
	CreateWithOwner(ctx context.Context, org organization.Organization) (organization.Organization, error)
}

type OrganizationsHandler struct {
	creator OrganizationCreator
	log     *slog.Logger
}

func NewOrganizationsHandler(creator OrganizationCreator, log *slog.Logger) *OrganizationsHandler {
	return &OrganizationsHandler{creator: creator, log: log}
}

func (h *OrganizationsHandler) Create(ctx *gin.Context) {
	ownerID, ok := middlewares.UserIDFromContext(ctx)
	if !ok || ownerID == "" {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity context")
		return
	}

	var req organization.CreateRequest
	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 10*time.Second)
	defer cancel()

	org, err := h.creator.CreateWithOwner(cctx, organization.NewFromCreateRequest(ownerID, req))
	if err != nil {
		h.log.Error("organization onboarding failed", "owner_id", ownerID, "err", err.Error())
		RespondUnavailable(ctx, "Organization onboarding is temporarily unavailable.")
		return
	}

	RespondData(ctx, http.StatusCreated, org)
}
