package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/arbenl/ecohubkosova-sub002/internal/admin"
	"github.com/arbenl/ecohubkosova-sub002/internal/domain/profile"
	"github.com/arbenl/ecohubkosova-sub002/internal/http/handlers"
	"github.com/gin-gonic/gin"
)

type memUsers struct {
	m map[string]profile.Profile
}

func (s *memUsers) GetByID(ctx context.Context, id string) (profile.Profile, error) {
	p, ok := s.m[id]
	if !ok {
		return profile.Profile{}, profile.ErrNotFound
	}
	return p, nil
}

func (s *memUsers) Insert(ctx context.Context, p profile.Profile) (profile.Profile, error) {
	s.m[p.ID] = p
	return p, nil
}

func (s *memUsers) List(ctx context.Context) ([]profile.Profile, error) {
	out := make([]profile.Profile, 0, len(s.m))
	for _, p := range s.m {
		out = append(out, p)
	}
	return out, nil
}

func (s *memUsers) Update(ctx context.Context, id string, patch profile.Patch) (profile.Profile, error) {
	p, ok := s.m[id]
	if !ok {
		return profile.Profile{}, profile.ErrNotFound
	}
	if patch.EmriIPlote != nil {
		p.EmriIPlote = *patch.EmriIPlote
	}
	if patch.Vendndodhja != nil {
		p.Vendndodhja = *patch.Vendndodhja
	}
	if patch.Roli != nil {
		p.Roli = *patch.Roli
	}
	if patch.EshteAprovuar != nil {
		p.EshteAprovuar = *patch.EshteAprovuar
	}
	p.UpdatedAt = time.Now().UTC()
	s.m[id] = p
	return p, nil
}

func (s *memUsers) Delete(ctx context.Context, id string) error {
	if _, ok := s.m[id]; !ok {
		return profile.ErrNotFound
	}
	delete(s.m, id)
	return nil
}

func newAdminUsersRouter(store *memUsers) *gin.Engine {
	h := handlers.NewAdminUsersHandler(admin.NewUsers(store, discardLogger()))

	r := gin.New()
	r.GET("/api/admin/users", h.List)
	r.PATCH("/api/admin/users/:id", h.Update)
	r.DELETE("/api/admin/users/:id", h.Delete)
	return r
}

func TestAdminUsersList(t *testing.T) {
	store := &memUsers{m: map[string]profile.Profile{
		"u1": {ID: "u1", Email: "u1@example.com", Roli: profile.RoleIndividual},
		"u2": {ID: "u2", Email: "u2@example.com", Roli: profile.RoleAdmin},
	}}
	r := newAdminUsersRouter(store)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/admin/users", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	var body struct {
		Data []profile.Profile `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Data) != 2 {
		t.Fatalf("users = %d, want 2", len(body.Data))
	}
}

func TestAdminUserApprovalRefreshesUpdatedAt(t *testing.T) {
	old := time.Now().Add(-24 * time.Hour).UTC()
	store := &memUsers{m: map[string]profile.Profile{
		"u1": {ID: "u1", Roli: profile.RoleIndividual, UpdatedAt: old},
	}}
	r := newAdminUsersRouter(store)

	w := postPatch(r, "/api/admin/users/u1", `{"eshte_aprovuar":true}`)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}

	var body struct {
		Data profile.Profile `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !body.Data.EshteAprovuar {
		t.Fatal("approval flag not applied")
	}
	if !body.Data.UpdatedAt.After(old) {
		t.Fatalf("updated_at not refreshed: %v", body.Data.UpdatedAt)
	}
}

func TestAdminUserUpdateNotFound(t *testing.T) {
	r := newAdminUsersRouter(&memUsers{m: map[string]profile.Profile{}})

	w := postPatch(r, "/api/admin/users/missing", `{"eshte_aprovuar":true}`)

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}

func TestAdminUserRoleValidation(t *testing.T) {
	store := &memUsers{m: map[string]profile.Profile{
		"u1": {ID: "u1", Roli: profile.RoleIndividual},
	}}
	r := newAdminUsersRouter(store)

	w := postPatch(r, "/api/admin/users/u1", `{"roli":"Mbret"}`)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestAdminUserDelete(t *testing.T) {
	store := &memUsers{m: map[string]profile.Profile{
		"u1": {ID: "u1"},
	}}
	r := newAdminUsersRouter(store)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/admin/users/u1", nil))

	if w.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", w.Code)
	}
	if len(store.m) != 0 {
		t.Fatal("row not deleted")
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/admin/users/u1", nil))

	if w.Code != http.StatusNotFound {
		t.Fatalf("second delete status = %d, want 404", w.Code)
	}
}

func postPatch(r http.Handler, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPatch, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}
