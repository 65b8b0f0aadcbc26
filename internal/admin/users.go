// Package admin holds the per-resource CRUD services behind the admin panel.
// Each service rides the dual-path store: the fallback to the REST path is
// already handled below them, so a returned error means both paths failed.
package admin

import (
	"context"
	"log/slog"

	"github.com/arbenl/ecohubkosova-sub002/internal/domain/profile"
	"github.com/arbenl/ecohubkosova-sub002/internal/store"
)

type Users struct {
	store store.Profiles
	log   *slog.Logger
}

func NewUsers(st store.Profiles, log *slog.Logger) *Users {
	return &Users{store: st, log: log}
}

func (s *Users) FetchAdminUsers(ctx context.Context) ([]profile.Profile, error) {
	out, err := s.store.List(ctx)

	if err != nil {
		s.log.Error("fetch admin users failed", "err", truncate(err.Error(), 200))
		return nil, err
	}
	return out, nil
}

func (s *Users) UpdateUserRecord(ctx context.Context, id string, patch profile.Patch) (profile.Profile, error) {
	p, err := s.store.Update(ctx, id, patch)

	if err != nil {
		s.log.Error("update user record failed", "id", id, "err", truncate(err.Error(), 200))
		return profile.Profile{}, err
	}
	return p, nil
}

func (s *Users) DeleteUserRecord(ctx context.Context, id string) error {
	err := s.store.Delete(ctx, id)

	if err != nil {
		s.log.Error("delete user record failed", "id", id, "err", truncate(err.Error(), 200))
	}
	return err
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
