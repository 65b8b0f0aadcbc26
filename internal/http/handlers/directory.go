package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/arbenl/ecohubkosova-sub002/internal/cache"
	"github.com/arbenl/ecohubkosova-sub002/internal/domain/article"
	"github.com/arbenl/ecohubkosova-sub002/internal/domain/listing"
	"github.com/arbenl/ecohubkosova-sub002/internal/domain/organization"
	"github.com/arbenl/ecohubkosova-sub002/internal/store"
	"github.com/arbenl/ecohubkosova-sub002/internal/utils"
	"github.com/gin-gonic/gin"
)

// DirectoryHandler serves the public, unauthenticated marketplace surface:
// approved organizations, active listings and published articles.
type DirectoryHandler struct {
	orgs     store.Organizations
	listings store.Listings
	articles store.Articles

	listingCache *cache.Cache[[]listing.Listing]
	orgCache     *cache.Cache[[]organization.Organization]
	articleCache *cache.Cache[[]article.Article]

	log *slog.Logger
}

func NewDirectoryHandler(orgs store.Organizations, listings store.Listings, articles store.Articles, log *slog.Logger) *DirectoryHandler {
	return &DirectoryHandler{
		orgs:         orgs,
		listings:     listings,
		articles:     articles,
		listingCache: cache.New[[]listing.Listing](30 * time.Second),
		orgCache:     cache.New[[]organization.Organization](30 * time.Second),
		articleCache: cache.New[[]article.Article](30 * time.Second),
		log:          log,
	}
}

func (h *DirectoryHandler) ListOrganizations(ctx *gin.Context) {
	const key = "organizatat:approved:v1"

	if cached, ok := h.orgCache.Get(key); ok {
		RespondData(ctx, http.StatusOK, cached)
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 10*time.Second)
	defer cancel()

	orgs, err := h.orgs.ListApproved(cctx)
	if err != nil {
		h.log.Error("list approved organizations failed", "err", err.Error())
		RespondUnavailable(ctx, "Directory is temporarily unavailable.")
		return
	}

	h.orgCache.Set(key, orgs)
	RespondData(ctx, http.StatusOK, orgs)
}

func (h *DirectoryHandler) ListListings(ctx *gin.Context) {
	filter := listing.Filter{
		Limit:  parseIntQuery(ctx, "limit", 0),
		Offset: parseIntQuery(ctx, "offset", 0),
	}
	if q := ctx.Query("qyteti"); q != "" {
		filter.Qyteti = &q
	}
	if k := ctx.Query("kategoria"); k != "" {
		filter.Kategoria = &k
	}

	rawCursor := ctx.Query("cursor")
	if rawCursor != "" {
		cur, err := utils.DecodeListingCursor(rawCursor)
		if err != nil {
			RespondBadRequest(ctx, "Invalid cursor", nil)
			return
		}
		filter.AfterCreatedAt = &cur.CreatedAt
		filter.AfterID = &cur.ID
	}

	key := cache.ListingsKey(ctx.Query("qyteti"), ctx.Query("kategoria"), filter.Limit, filter.Offset) + ":cursor=" + rawCursor
	if cached, ok := h.listingCache.Get(key); ok {
		respondListingsPage(ctx, cached, filter.Limit)
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 10*time.Second)
	defer cancel()

	items, err := h.listings.ListPublic(cctx, filter)
	if err != nil {
		h.log.Error("list public listings failed", "err", err.Error())
		RespondUnavailable(ctx, "Directory is temporarily unavailable.")
		return
	}

	h.listingCache.Set(key, items)
	respondListingsPage(ctx, items, filter.Limit)
}

// respondListingsPage attaches the keyset cursor for the next page when the
// current one came back full.
func respondListingsPage(ctx *gin.Context, items []listing.Listing, limit int) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	out := gin.H{"items": items}

	if len(items) == limit {
		last := items[len(items)-1]
		if next, err := utils.EncodeListingCursor(last.CreatedAt, last.ID); err == nil {
			out["nextCursor"] = next
		}
	}

	RespondData(ctx, http.StatusOK, out)
}

func (h *DirectoryHandler) ListArticles(ctx *gin.Context) {
	const key = "artikujt:published:v1"

	if cached, ok := h.articleCache.Get(key); ok {
		RespondData(ctx, http.StatusOK, cached)
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 10*time.Second)
	defer cancel()

	items, err := h.articles.ListPublished(cctx)
	if err != nil {
		h.log.Error("list published articles failed", "err", err.Error())
		RespondUnavailable(ctx, "Directory is temporarily unavailable.")
		return
	}

	h.articleCache.Set(key, items)
	RespondData(ctx, http.StatusOK, items)
}

func parseIntQuery(ctx *gin.Context, name string, fallback int) int {
	raw := ctx.Query(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return fallback
	}
	return v
}
