package sessions_test

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/arbenl/ecohubkosova-sub002/internal/sessions"
	"github.com/redis/go-redis/v9"
)

func newTestStore(t *testing.T) *sessions.VersionStore {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return sessions.NewWithClient(client)
}

func TestBumpIncrements(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	v1, err := store.Bump(ctx, "u1")
	if err != nil {
		t.Fatalf("Bump: %v", err)
	}
	if v1 != 1 {
		t.Fatalf("first bump = %d, want 1", v1)
	}

	v2, err := store.Bump(ctx, "u1")
	if err != nil {
		t.Fatalf("Bump: %v", err)
	}
	if v2 != 2 {
		t.Fatalf("second bump = %d, want 2", v2)
	}
}

func TestCurrentDefaultsToZero(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	v, err := store.Current(ctx, "never-seen")
	if err != nil {
		t.Fatalf("Current: %v", err)
	}
	if v != 0 {
		t.Fatalf("version = %d, want 0", v)
	}
}

func TestVersionsAreIsolatedPerUser(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if _, err := store.Bump(ctx, "u1"); err != nil {
		t.Fatalf("Bump u1: %v", err)
	}
	if _, err := store.Bump(ctx, "u1"); err != nil {
		t.Fatalf("Bump u1: %v", err)
	}

	v, err := store.Current(ctx, "u2")
	if err != nil {
		t.Fatalf("Current u2: %v", err)
	}
	if v != 0 {
		t.Fatalf("u2 version = %d, want 0", v)
	}

	v, err = store.Current(ctx, "u1")
	if err != nil {
		t.Fatalf("Current u1: %v", err)
	}
	if v != 2 {
		t.Fatalf("u1 version = %d, want 2", v)
	}
}
