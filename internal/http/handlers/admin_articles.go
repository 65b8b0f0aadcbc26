package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/arbenl/ecohubkosova-sub002/internal/admin"
	"github.com/arbenl/ecohubkosova-sub002/internal/domain/article"
	"github.com/gin-gonic/gin"
)

type AdminArticlesHandler struct {
	svc *admin.Articles
}

func NewAdminArticlesHandler(svc *admin.Articles) *AdminArticlesHandler {
	return &AdminArticlesHandler{svc: svc}
}

func (h *AdminArticlesHandler) List(ctx *gin.Context) {
	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 10*time.Second)
	defer cancel()

	items, err := h.svc.FetchAdminArticles(cctx)
	if err != nil {
		RespondUnavailable(ctx, "Could not load articles.")
		return
	}

	RespondData(ctx, http.StatusOK, items)
}

type AdminArticlePatch struct {
	Titulli        *string `json:"titulli" binding:"omitempty,min=2"`
	Permbajtja     *string `json:"permbajtja"`
	EshtePublikuar *bool   `json:"eshte_publikuar"`
}

func (h *AdminArticlesHandler) Update(ctx *gin.Context) {
	id := ctx.Param("id")

	var req AdminArticlePatch
	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 10*time.Second)
	defer cancel()

	updated, err := h.svc.UpdateArticleRecord(cctx, id, article.Patch{
		Titulli:        req.Titulli,
		Permbajtja:     req.Permbajtja,
		EshtePublikuar: req.EshtePublikuar,
	})
	if err != nil {
		if errors.Is(err, article.ErrNotFound) {
			RespondNotFound(ctx, "Article not found.")
			return
		}
		RespondUnavailable(ctx, "Could not update article.")
		return
	}

	RespondData(ctx, http.StatusOK, updated)
}

func (h *AdminArticlesHandler) Delete(ctx *gin.Context) {
	id := ctx.Param("id")

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 10*time.Second)
	defer cancel()

	if err := h.svc.DeleteArticleRecord(cctx, id); err != nil {
		if errors.Is(err, article.ErrNotFound) {
			RespondNotFound(ctx, "Article not found.")
			return
		}
		RespondUnavailable(ctx, "Could not delete article.")
		return
	}

	ctx.Status(http.StatusNoContent)
}
