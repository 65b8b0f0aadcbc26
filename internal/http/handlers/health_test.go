package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/arbenl/ecohubkosova-sub002/internal/http/handlers"
	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeDB struct {
	latency time.Duration
	err     error
}

func (f *fakeDB) HealthCheck(ctx context.Context) (time.Duration, error) {
	return f.latency, f.err
}

func TestDatabaseHealthOK(t *testing.T) {
	h := handlers.NewHealthHandler(&fakeDB{latency: 12 * time.Millisecond})

	r := gin.New()
	r.GET("/api/health/db", h.DatabaseHealth)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/health/db", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var body struct {
		Status    string `json:"status"`
		Timestamp string `json:"timestamp"`
		Database  struct {
			Connected    bool    `json:"connected"`
			ResponseTime *int64  `json:"responseTime"`
			Error        *string `json:"error"`
		} `json:"database"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}

	if body.Status != "ok" || !body.Database.Connected {
		t.Fatalf("body = %+v", body)
	}
	if body.Database.ResponseTime == nil || *body.Database.ResponseTime != 12 {
		t.Fatalf("responseTime = %v, want 12", body.Database.ResponseTime)
	}
	if body.Database.Error != nil {
		t.Fatalf("error field present on healthy response: %v", *body.Database.Error)
	}
	if body.Timestamp == "" {
		t.Fatal("missing timestamp")
	}
}

func TestDatabaseHealthDown(t *testing.T) {
	h := handlers.NewHealthHandler(&fakeDB{err: errors.New("connection refused")})

	r := gin.New()
	r.GET("/api/health/db", h.DatabaseHealth)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/health/db", nil))

	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", w.Code)
	}

	var body struct {
		Status   string `json:"status"`
		Database struct {
			Connected bool   `json:"connected"`
			Error     string `json:"error"`
		} `json:"database"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}

	if body.Status != "unhealthy" || body.Database.Connected {
		t.Fatalf("body = %+v", body)
	}
	if body.Database.Error == "" {
		t.Fatal("error detail missing on unhealthy response")
	}
}

func TestReadyzDown(t *testing.T) {
	h := handlers.NewHealthHandler(&fakeDB{err: errors.New("closed pool")})

	r := gin.New()
	r.GET("/readyz", h.Readyz)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", w.Code)
	}
}
