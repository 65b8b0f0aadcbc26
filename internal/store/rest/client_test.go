package rest_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/arbenl/ecohubkosova-sub002/internal/store"
	"github.com/arbenl/ecohubkosova-sub002/internal/store/rest"
)

func TestSelectSendsServiceHeaders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("apikey"); got != "service-key" {
			t.Errorf("apikey header = %q", got)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer service-key" {
			t.Errorf("authorization header = %q", got)
		}
		if r.URL.Path != "/users" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if got := r.URL.Query().Get("id"); got != "eq.u1" {
			t.Errorf("id filter = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id":"u1","email":"u1@example.com"}]`))
	}))
	defer srv.Close()

	c := rest.NewClient(srv.URL, "service-key")
	p := rest.NewProfiles(c)

	got, err := p.GetByID(context.Background(), "u1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.ID != "u1" || got.Email != "u1@example.com" {
		t.Fatalf("profile = %+v", got)
	}
}

func TestServerErrorClassifiesAsInfrastructure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream connect error", http.StatusBadGateway)
	}))
	defer srv.Close()

	c := rest.NewClient(srv.URL, "service-key")
	p := rest.NewProfiles(c)

	_, err := p.GetByID(context.Background(), "u1")

	var restErr *store.RESTError
	if !errors.As(err, &restErr) {
		t.Fatalf("err = %v, want RESTError", err)
	}
	if restErr.Status != http.StatusBadGateway {
		t.Fatalf("status = %d", restErr.Status)
	}
	if !store.IsInfrastructure(err) {
		t.Fatal("5xx from the REST path must classify as infrastructure")
	}
}

func TestEmptyRepresentationMeansNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := rest.NewClient(srv.URL, "service-key")
	p := rest.NewProfiles(c)

	_, err := p.GetByID(context.Background(), "missing")
	if err == nil {
		t.Fatal("expected not-found error")
	}
	if store.IsInfrastructure(err) {
		t.Fatal("a missing row is a domain outcome, not infrastructure")
	}
}
