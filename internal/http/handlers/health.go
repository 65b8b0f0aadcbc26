package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// DBChecker is implemented by the connection pool.
type DBChecker interface {
	HealthCheck(ctx context.Context) (time.Duration, error)
}

type HealthHandler struct {
	db DBChecker
}

func NewHealthHandler(db DBChecker) *HealthHandler {
	return &HealthHandler{db: db}
}

func (h *HealthHandler) Healthz(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *HealthHandler) Readyz(ctx *gin.Context) {
	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	if _, err := h.db.HealthCheck(cctx); err != nil {
		ctx.JSON(http.StatusServiceUnavailable, gin.H{"status": "not ready"})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"status": "ready"})
}

// DatabaseHealth reports database connectivity with latency, 503 when the
// round trip fails.
func (h *HealthHandler) DatabaseHealth(ctx *gin.Context) {
	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 5*time.Second)
	defer cancel()

	latency, err := h.db.HealthCheck(cctx)
	now := time.Now().UTC().Format(time.RFC3339)

	if err != nil {
		ctx.JSON(http.StatusServiceUnavailable, gin.H{
			"status":    "unhealthy",
			"timestamp": now,
			"database": gin.H{
				"connected": false,
				"error":     err.Error(),
			},
		})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": now,
		"database": gin.H{
			"connected":    true,
			"responseTime": latency.Milliseconds(),
		},
	})
}
