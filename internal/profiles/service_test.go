package profiles_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/arbenl/ecohubkosova-sub002/internal/domain/profile"
	"github.com/arbenl/ecohubkosova-sub002/internal/identity"
	"github.com/arbenl/ecohubkosova-sub002/internal/profiles"
	"github.com/jackc/pgx/v5/pgconn"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// memProfiles is an in-memory Profiles store.
type memProfiles struct {
	mu sync.Mutex
	m  map[string]profile.Profile

	getErr    error
	insertErr error
	inserts   int
}

func newMemProfiles() *memProfiles {
	return &memProfiles{m: make(map[string]profile.Profile)}
}

func (s *memProfiles) GetByID(ctx context.Context, id string) (profile.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.getErr != nil {
		return profile.Profile{}, s.getErr
	}
	p, ok := s.m[id]
	if !ok {
		return profile.Profile{}, profile.ErrNotFound
	}
	return p, nil
}

func (s *memProfiles) Insert(ctx context.Context, p profile.Profile) (profile.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.inserts++
	if s.insertErr != nil {
		return profile.Profile{}, s.insertErr
	}
	if _, ok := s.m[p.ID]; ok {
		return profile.Profile{}, &pgconn.PgError{Code: "23505"}
	}
	s.m[p.ID] = p
	return p, nil
}

func (s *memProfiles) List(ctx context.Context) ([]profile.Profile, error) {
	return nil, nil
}

func (s *memProfiles) Update(ctx context.Context, id string, patch profile.Patch) (profile.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

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
	s.m[id] = p
	return p, nil
}

func (s *memProfiles) Delete(ctx context.Context, id string) error {
	return nil
}

type fakeIdentity struct {
	userFn func(ctx context.Context, id string) (*identity.User, error)
}

func (f *fakeIdentity) AdminUserByID(ctx context.Context, id string) (*identity.User, error) {
	if f.userFn != nil {
		return f.userFn(ctx, id)
	}
	return &identity.User{ID: id, Email: id + "@example.com", Name: "Test User"}, nil
}

func TestResolveCreatesDefaultProfileOnce(t *testing.T) {
	st := newMemProfiles()
	svc := profiles.NewService(st, nil, &fakeIdentity{}, discardLogger())

	p, err := svc.Resolve(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if p == nil {
		t.Fatal("expected a created profile")
	}
	if p.Roli != profile.RoleIndividual {
		t.Fatalf("roli = %q, want %q", p.Roli, profile.RoleIndividual)
	}
	if p.EshteAprovuar {
		t.Fatal("new profile must start unapproved")
	}

	// a second resolve returns the same row without inserting again
	again, err := svc.Resolve(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Resolve (second): %v", err)
	}
	if again == nil || again.ID != p.ID {
		t.Fatalf("second resolve = %+v, want the same profile", again)
	}
	if st.inserts != 1 {
		t.Fatalf("inserts = %d, want 1", st.inserts)
	}
}

func TestResolveEmptyUserID(t *testing.T) {
	svc := profiles.NewService(newMemProfiles(), nil, &fakeIdentity{}, discardLogger())

	if _, err := svc.Resolve(context.Background(), "  "); !errors.Is(err, profiles.ErrEmptyUserID) {
		t.Fatalf("err = %v, want ErrEmptyUserID", err)
	}
}

func TestResolveIdentityLookupFailureIsNotAnError(t *testing.T) {
	st := newMemProfiles()
	provider := &fakeIdentity{
		userFn: func(ctx context.Context, id string) (*identity.User, error) {
			return nil, identity.ErrUserNotFound
		},
	}
	svc := profiles.NewService(st, nil, provider, discardLogger())

	p, err := svc.Resolve(context.Background(), "ghost")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if p != nil {
		t.Fatalf("profile = %+v, want nil without error", p)
	}
	if st.inserts != 0 {
		t.Fatal("nothing must be inserted when identity lookup fails")
	}
}

func TestResolveConcurrentCreateLoses(t *testing.T) {
	st := newMemProfiles()
	// simulate the concurrent winner
	st.m["u1"] = profile.Profile{ID: "u1", Email: "u1@example.com", Roli: profile.RoleIndividual}
	st.insertErr = &pgconn.PgError{Code: "23505"}
	// first read misses, insert conflicts, re-read finds the winner's row
	first := true
	svc := profiles.NewService(&racingStore{inner: st, firstMiss: &first}, nil, &fakeIdentity{}, discardLogger())

	p, err := svc.Resolve(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if p == nil || p.ID != "u1" {
		t.Fatalf("profile = %+v, want the existing row", p)
	}
}

// racingStore misses the first GetByID to force the insert path.
type racingStore struct {
	inner     *memProfiles
	firstMiss *bool
}

func (s *racingStore) GetByID(ctx context.Context, id string) (profile.Profile, error) {
	if *s.firstMiss {
		*s.firstMiss = false
		return profile.Profile{}, profile.ErrNotFound
	}
	return s.inner.GetByID(ctx, id)
}

func (s *racingStore) Insert(ctx context.Context, p profile.Profile) (profile.Profile, error) {
	return s.inner.Insert(ctx, p)
}

func (s *racingStore) List(ctx context.Context) ([]profile.Profile, error) {
	return s.inner.List(ctx)
}

func (s *racingStore) Update(ctx context.Context, id string, patch profile.Patch) (profile.Profile, error) {
	return s.inner.Update(ctx, id, patch)
}

func (s *racingStore) Delete(ctx context.Context, id string) error {
	return s.inner.Delete(ctx, id)
}

func TestResolveFallsBackOnInfrastructureError(t *testing.T) {
	primary := newMemProfiles()
	primary.getErr = &pgconn.PgError{Code: "08006"}

	secondary := newMemProfiles()
	secondary.m["u1"] = profile.Profile{ID: "u1", Email: "u1@example.com", Roli: profile.RoleAdmin}

	svc := profiles.NewService(primary, secondary, &fakeIdentity{}, discardLogger())

	p, err := svc.Resolve(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if p == nil || p.Roli != profile.RoleAdmin {
		t.Fatalf("profile = %+v, want the secondary row", p)
	}
}

func TestResolveDomainErrorDoesNotFallBack(t *testing.T) {
	primary := newMemProfiles()
	provider := &fakeIdentity{
		userFn: func(ctx context.Context, id string) (*identity.User, error) {
			return nil, identity.ErrUserNotFound
		},
	}

	secondary := newMemProfiles()
	secondary.m["u1"] = profile.Profile{ID: "u1"}

	svc := profiles.NewService(primary, secondary, provider, discardLogger())

	// primary path completes with nil,nil; the secondary must stay untouched
	p, err := svc.Resolve(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if p != nil {
		t.Fatalf("profile = %+v, want nil", p)
	}
}

func TestUpdateStripsAdminOnlyFields(t *testing.T) {
	st := newMemProfiles()
	st.m["u1"] = profile.Profile{ID: "u1", Roli: profile.RoleIndividual}

	svc := profiles.NewService(st, nil, &fakeIdentity{}, discardLogger())

	name := "Arta Krasniqi"
	role := profile.RoleAdmin
	approved := true

	p, err := svc.Update(context.Background(), "u1", profile.Patch{
		EmriIPlote:    &name,
		Roli:          &role,
		EshteAprovuar: &approved,
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if p.EmriIPlote != name {
		t.Fatalf("emri = %q, want %q", p.EmriIPlote, name)
	}
	if p.Roli != profile.RoleIndividual || p.EshteAprovuar {
		t.Fatalf("admin-only fields leaked through: %+v", p)
	}
}
