package store_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/arbenl/ecohubkosova-sub002/internal/domain/profile"
	"github.com/arbenl/ecohubkosova-sub002/internal/store"
	"github.com/jackc/pgx/v5/pgconn"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeProfiles struct {
	getFn    func(ctx context.Context, id string) (profile.Profile, error)
	insertFn func(ctx context.Context, p profile.Profile) (profile.Profile, error)
	listFn   func(ctx context.Context) ([]profile.Profile, error)
	updateFn func(ctx context.Context, id string, patch profile.Patch) (profile.Profile, error)
	deleteFn func(ctx context.Context, id string) error
}

func (f *fakeProfiles) GetByID(ctx context.Context, id string) (profile.Profile, error) {
	if f.getFn != nil {
		return f.getFn(ctx, id)
	}
	return profile.Profile{}, nil
}

func (f *fakeProfiles) Insert(ctx context.Context, p profile.Profile) (profile.Profile, error) {
	if f.insertFn != nil {
		return f.insertFn(ctx, p)
	}
	return p, nil
}

func (f *fakeProfiles) List(ctx context.Context) ([]profile.Profile, error) {
	if f.listFn != nil {
		return f.listFn(ctx)
	}
	return nil, nil
}

func (f *fakeProfiles) Update(ctx context.Context, id string, patch profile.Patch) (profile.Profile, error) {
	if f.updateFn != nil {
		return f.updateFn(ctx, id, patch)
	}
	return profile.Profile{}, nil
}

func (f *fakeProfiles) Delete(ctx context.Context, id string) error {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, id)
	}
	return nil
}

func TestFallbackRecoversOnInfrastructureError(t *testing.T) {
	infraErr := &pgconn.PgError{Code: "08006"}

	var fallbacks []string

	s := &store.FallbackProfiles{
		Decorator: &store.Decorator{
			Log: discardLogger(),
			OnFallback: func(op, outcome string) {
				fallbacks = append(fallbacks, op+"/"+outcome)
			},
		},
		Primary: &fakeProfiles{
			getFn: func(ctx context.Context, id string) (profile.Profile, error) {
				return profile.Profile{}, infraErr
			},
		},
		Secondary: &fakeProfiles{
			getFn: func(ctx context.Context, id string) (profile.Profile, error) {
				return profile.Profile{ID: id, Roli: profile.RoleIndividual}, nil
			},
		},
	}

	got, err := s.GetByID(context.Background(), "u1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.ID != "u1" {
		t.Fatalf("got profile %q, want u1", got.ID)
	}
	if len(fallbacks) != 1 || fallbacks[0] != "profiles.get/recovered" {
		t.Fatalf("fallback observations = %v", fallbacks)
	}
}

func TestFallbackSkipsDomainErrors(t *testing.T) {
	secondaryCalled := false

	s := &store.FallbackProfiles{
		Decorator: &store.Decorator{Log: discardLogger()},
		Primary: &fakeProfiles{
			getFn: func(ctx context.Context, id string) (profile.Profile, error) {
				return profile.Profile{}, profile.ErrNotFound
			},
		},
		Secondary: &fakeProfiles{
			getFn: func(ctx context.Context, id string) (profile.Profile, error) {
				secondaryCalled = true
				return profile.Profile{}, nil
			},
		},
	}

	_, err := s.GetByID(context.Background(), "u1")
	if !errors.Is(err, profile.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if secondaryCalled {
		t.Fatal("secondary must not run for a domain error")
	}
}

func TestFallbackExhausted(t *testing.T) {
	primaryErr := &pgconn.PgError{Code: "57P01"}
	secondaryErr := &store.RESTError{Status: 502, Body: "bad gateway"}

	var outcomes []string

	s := &store.FallbackProfiles{
		Decorator: &store.Decorator{
			Log: discardLogger(),
			OnFallback: func(op, outcome string) {
				outcomes = append(outcomes, outcome)
			},
		},
		Primary: &fakeProfiles{
			getFn: func(ctx context.Context, id string) (profile.Profile, error) {
				return profile.Profile{}, primaryErr
			},
		},
		Secondary: &fakeProfiles{
			getFn: func(ctx context.Context, id string) (profile.Profile, error) {
				return profile.Profile{}, secondaryErr
			},
		},
	}

	_, err := s.GetByID(context.Background(), "u1")

	var restErr *store.RESTError
	if !errors.As(err, &restErr) {
		t.Fatalf("err = %v, want the secondary error", err)
	}
	if len(outcomes) != 1 || outcomes[0] != "exhausted" {
		t.Fatalf("outcomes = %v, want [exhausted]", outcomes)
	}
}

func TestFallbackSkippedWhenRequestGone(t *testing.T) {
	secondaryCalled := false

	s := &store.FallbackProfiles{
		Decorator: &store.Decorator{Log: discardLogger()},
		Primary: &fakeProfiles{
			getFn: func(ctx context.Context, id string) (profile.Profile, error) {
				return profile.Profile{}, &pgconn.PgError{Code: "08006"}
			},
		},
		Secondary: &fakeProfiles{
			getFn: func(ctx context.Context, id string) (profile.Profile, error) {
				secondaryCalled = true
				return profile.Profile{}, nil
			},
		},
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := s.GetByID(ctx, "u1"); err == nil {
		t.Fatal("expected the primary error back")
	}
	if secondaryCalled {
		t.Fatal("secondary must not run once the request context is done")
	}
}
