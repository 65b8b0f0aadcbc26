// Package store defines the data-access strategy interfaces and the
// resilience decorator that falls back from the primary Postgres path to the
// REST path against the same database.
package store

import (
	"context"

	"github.com/arbenl/ecohubkosova-sub002/internal/domain/article"
	"github.com/arbenl/ecohubkosova-sub002/internal/domain/listing"
	"github.com/arbenl/ecohubkosova-sub002/internal/domain/organization"
	"github.com/arbenl/ecohubkosova-sub002/internal/domain/profile"
)

// Profiles is the strategy interface over the users table.
// Absent rows are reported with profile.ErrNotFound, never as plain errors.
type Profiles interface {
	GetByID(ctx context.Context, id string) (profile.Profile, error)
	Insert(ctx context.Context, p profile.Profile) (profile.Profile, error)
	List(ctx context.Context) ([]profile.Profile, error)
	Update(ctx context.Context, id string, patch profile.Patch) (profile.Profile, error)
	Delete(ctx context.Context, id string) error
}

type Organizations interface {
	List(ctx context.Context) ([]organization.Organization, error)
	ListApproved(ctx context.Context) ([]organization.Organization, error)
	Update(ctx context.Context, id string, patch organization.Patch) (organization.Organization, error)
	Delete(ctx context.Context, id string) error
}

type Listings interface {
	List(ctx context.Context) ([]listing.Listing, error)
	ListPublic(ctx context.Context, filter listing.Filter) ([]listing.Listing, error)
	Update(ctx context.Context, id string, patch listing.Patch) (listing.Listing, error)
	Delete(ctx context.Context, id string) error
}

type Articles interface {
	List(ctx context.Context) ([]article.Article, error)
	ListPublished(ctx context.Context) ([]article.Article, error)
	Update(ctx context.Context, id string, patch article.Patch) (article.Article, error)
	Delete(ctx context.Context, id string) error
}
