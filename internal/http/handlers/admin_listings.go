package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/arbenl/ecohubkosova-sub002/internal/admin"
	"github.com/arbenl/ecohubkosova-sub002/internal/domain/listing"
	"github.com/gin-gonic/gin"
)

type AdminListingsHandler struct {
	svc *admin.Listings
}

func NewAdminListingsHandler(svc *admin.Listings) *AdminListingsHandler {
	return &AdminListingsHandler{svc: svc}
}

func (h *AdminListingsHandler) List(ctx *gin.Context) {
	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 10*time.Second)
	defer cancel()

	items, err := h.svc.FetchAdminListings(cctx)
	if err != nil {
		RespondUnavailable(ctx, "Could not load listings.")
		return
	}

	RespondData(ctx, http.StatusOK, items)
}

type AdminListingPatch struct {
	Titulli    *string  `json:"titulli" binding:"omitempty,min=2"`
	Pershkrimi *string  `json:"pershkrimi"`
	Kategoria  *string  `json:"kategoria"`
	Qyteti     *string  `json:"qyteti"`
	Cmimi      *float64 `json:"cmimi" binding:"omitempty,gte=0"`
	Njesia     *string  `json:"njesia"`
	EshteAktiv *bool    `json:"eshte_aktiv"`
}

func (h *AdminListingsHandler) Update(ctx *gin.Context) {
	id := ctx.Param("id")

	var req AdminListingPatch
	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 10*time.Second)
	defer cancel()

	updated, err := h.svc.UpdateListingRecord(cctx, id, listing.Patch{
		Titulli:    req.Titulli,
		Pershkrimi: req.Pershkrimi,
		Kategoria:  req.Kategoria,
		Qyteti:     req.Qyteti,
		Cmimi:      req.Cmimi,
		Njesia:     req.Njesia,
		EshteAktiv: req.EshteAktiv,
	})
	if err != nil {
		if errors.Is(err, listing.ErrNotFound) {
			RespondNotFound(ctx, "Listing not found.")
			return
		}
		RespondUnavailable(ctx, "Could not update listing.")
		return
	}

	RespondData(ctx, http.StatusOK, updated)
}

func (h *AdminListingsHandler) Delete(ctx *gin.Context) {
	id := ctx.Param("id")

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 10*time.Second)
	defer cancel()

	if err := h.svc.DeleteListingRecord(cctx, id); err != nil {
		if errors.Is(err, listing.ErrNotFound) {
			RespondNotFound(ctx, "Listing not found.")
			return
		}
		RespondUnavailable(ctx, "Could not delete listing.")
		return
	}

	ctx.Status(http.StatusNoContent)
}
