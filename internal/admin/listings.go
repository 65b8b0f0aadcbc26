package admin

import (
	"context"
	"log/slog"

	"github.com/arbenl/ecohubkosova-sub002/internal/domain/listing"
	"github.com/arbenl/ecohubkosova-sub002/internal/store"
)

type Listings struct {
	store store.Listings
	log   *slog.Logger
}

func NewListings(st store.Listings, log *slog.Logger) *Listings {
	return &Listings{store: st, log: log}
}

func (s *Listings) FetchAdminListings(ctx context.Context) ([]listing.Listing, error) {
	out, err := s.store.List(ctx)

	if err != nil {
		s.log.Error("fetch admin listings failed", "err", truncate(err.Error(), 200))
		return nil, err
	}
	return out, nil
}

func (s *Listings) UpdateListingRecord(ctx context.Context, id string, patch listing.Patch) (listing.Listing, error) {
	l, err := s.store.Update(ctx, id, patch)

	if err != nil {
		s.log.Error("update listing record failed", "id", id, "err", truncate(err.Error(), 200))
		return listing.Listing{}, err
	}
	return l, nil
}

func (s *Listings) DeleteListingRecord(ctx context.Context, id string) error {
	err := s.store.Delete(ctx, id)

	if err != nil {
		s.log.Error("delete listing record failed", "id", id, "err", truncate(err.Error(), 200))
	}
	return err
}
