package admin

import (
	"context"
	"log/slog"

	"github.com/arbenl/ecohubkosova-sub002/internal/domain/organization"
	"github.com/arbenl/ecohubkosova-sub002/internal/store"
)

type Organizations struct {
	store store.Organizations
	log   *slog.Logger
}

func NewOrganizations(st store.Organizations, log *slog.Logger) *Organizations {
	return &Organizations{store: st, log: log}
}

func (s *Organizations) FetchAdminOrganizations(ctx context.Context) ([]organization.Organization, error) {
	out, err := s.store.List(ctx)

	if err != nil {
		s.log.Error("fetch admin organizations failed", "err", truncate(err.Error(), 200))
		return nil, err
	}
	return out, nil
}

func (s *Organizations) UpdateOrganizationRecord(ctx context.Context, id string, patch organization.Patch) (organization.Organization, error) {
	o, err := s.store.Update(ctx, id, patch)

	if err != nil {
		s.log.Error("update organization record failed", "id", id, "err", truncate(err.Error(), 200))
		return organization.Organization{}, err
	}
	return o, nil
}

func (s *Organizations) DeleteOrganizationRecord(ctx context.Context, id string) error {
	err := s.store.Delete(ctx, id)

	if err != nil {
		s.log.Error("delete organization record failed", "id", id, "err", truncate(err.Error(), 200))
	}
	return err
}
