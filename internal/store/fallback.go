package store

import (
	"context"
	"log/slog"

	"github.com/arbenl/ecohubkosova-sub002/internal/domain/article"
	"github.com/arbenl/ecohubkosova-sub002/internal/domain/listing"
	"github.com/arbenl/ecohubkosova-sub002/internal/domain/organization"
	"github.com/arbenl/ecohubkosova-sub002/internal/domain/profile"
)

// Decorator is the try-primary / classify / delegate-to-secondary policy
// shared by every Fallback* store.
type Decorator struct {
	Log *slog.Logger
	// OnFallback observes fallback executions; outcome is "recovered" or
	// "exhausted". Optional.
	OnFallback func(op, outcome string)
}

// do runs primary first and delegates to secondary only on a classified
// infrastructure failure. Any other error is the caller's to handle.
func do[T any](ctx context.Context, d *Decorator, op string, primary, secondary func(context.Context) (T, error)) (T, error) {
	v, err := primary(ctx)

	if err == nil || !IsInfrastructure(err) {
		return v, err
	}

	if ctx.Err() != nil {
		// the request itself is gone; do not burn the fallback on it
		return v, err
	}

	d.Log.Warn("primary store path failed, using fallback",
		"op", op,
		"err", truncate(err.Error(), 200),
	)

	v2, err2 := secondary(ctx)

	outcome := "recovered"
	if err2 != nil {
		outcome = "exhausted"
	}
	if d.OnFallback != nil {
		d.OnFallback(op, outcome)
	}

	return v2, err2
}

func doErr(ctx context.Context, d *Decorator, op string, primary, secondary func(context.Context) error) error {
	_, err := do(ctx, d, op, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, primary(ctx)
	}, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, secondary(ctx)
	})
	return err
}

// FallbackProfiles decorates two Profiles strategies.
type FallbackProfiles struct {
	*Decorator
	Primary   Profiles
	Secondary Profiles
}

func (s *FallbackProfiles) GetByID(ctx context.Context, id string) (profile.Profile, error) {
	return do(ctx, s.Decorator, "profiles.get",
		func(ctx context.Context) (profile.Profile, error) { return s.Primary.GetByID(ctx, id) },
		func(ctx context.Context) (profile.Profile, error) { return s.Secondary.GetByID(ctx, id) },
	)
}

func (s *FallbackProfiles) Insert(ctx context.Context, p profile.Profile) (profile.Profile, error) {
	return do(ctx, s.Decorator, "profiles.insert",
		func(ctx context.Context) (profile.Profile, error) { return s.Primary.Insert(ctx, p) },
		func(ctx context.Context) (profile.Profile, error) { return s.Secondary.Insert(ctx, p) },
	)
}

func (s *FallbackProfiles) List(ctx context.Context) ([]profile.Profile, error) {
	return do(ctx, s.Decorator, "profiles.list",
		func(ctx context.Context) ([]profile.Profile, error) { return s.Primary.List(ctx) },
		func(ctx context.Context) ([]profile.Profile, error) { return s.Secondary.List(ctx) },
	)
}

func (s *FallbackProfiles) Update(ctx context.Context, id string, patch profile.Patch) (profile.Profile, error) {
	return do(ctx, s.Decorator, "profiles.update",
		func(ctx context.Context) (profile.Profile, error) { return s.Primary.Update(ctx, id, patch) },
		func(ctx context.Context) (profile.Profile, error) { return s.Secondary.Update(ctx, id, patch) },
	)
}

func (s *FallbackProfiles) Delete(ctx context.Context, id string) error {
	return doErr(ctx, s.Decorator, "profiles.delete",
		func(ctx context.Context) error { return s.Primary.Delete(ctx, id) },
		func(ctx context.Context) error { return s.Secondary.Delete(ctx, id) },
	)
}

// FallbackOrganizations decorates two Organizations strategies.
type FallbackOrganizations struct {
	*Decorator
	Primary   Organizations
	Secondary Organizations
}

func (s *FallbackOrganizations) List(ctx context.Context) ([]organization.Organization, error) {
	return do(ctx, s.Decorator, "organizations.list",
		func(ctx context.Context) ([]organization.Organization, error) { return s.Primary.List(ctx) },
		func(ctx context.Context) ([]organization.Organization, error) { return s.Secondary.List(ctx) },
	)
}

func (s *FallbackOrganizations) ListApproved(ctx context.Context) ([]organization.Organization, error) {
	return do(ctx, s.Decorator, "organizations.list_approved",
		func(ctx context.Context) ([]organization.Organization, error) { return s.Primary.ListApproved(ctx) },
		func(ctx context.Context) ([]organization.Organization, error) { return s.Secondary.ListApproved(ctx) },
	)
}

func (s *FallbackOrganizations) Update(ctx context.Context, id string, patch organization.Patch) (organization.Organization, error) {
	return do(ctx, s.Decorator, "organizations.update",
		func(ctx context.Context) (organization.Organization, error) { return s.Primary.Update(ctx, id, patch) },
		func(ctx context.Context) (organization.Organization, error) { return s.Secondary.Update(ctx, id, patch) },
	)
}

func (s *FallbackOrganizations) Delete(ctx context.Context, id string) error {
	return doErr(ctx, s.Decorator, "organizations.delete",
		func(ctx context.Context) error { return s.Primary.Delete(ctx, id) },
		func(ctx context.Context) error { return s.Secondary.Delete(ctx, id) },
	)
}

// FallbackListings decorates two Listings strategies.
type FallbackListings struct {
	*Decorator
	Primary   Listings
	Secondary Listings
}

func (s *FallbackListings) List(ctx context.Context) ([]listing.Listing, error) {
	return do(ctx, s.Decorator, "listings.list",
		func(ctx context.Context) ([]listing.Listing, error) { return s.Primary.List(ctx) },
		func(ctx context.Context) ([]listing.Listing, error) { return s.Secondary.List(ctx) },
	)
}

func (s *FallbackListings) ListPublic(ctx context.Context, filter listing.Filter) ([]listing.Listing, error) {
	return do(ctx, s.Decorator, "listings.list_public",
		func(ctx context.Context) ([]listing.Listing, error) { return s.Primary.ListPublic(ctx, filter) },
		func(ctx context.Context) ([]listing.Listing, error) { return s.Secondary.ListPublic(ctx, filter) },
	)
}

func (s *FallbackListings) Update(ctx context.Context, id string, patch listing.Patch) (listing.Listing, error) {
	return do(ctx, s.Decorator, "listings.update",
		func(ctx context.Context) (listing.Listing, error) { return s.Primary.Update(ctx, id, patch) },
		func(ctx context.Context) (listing.Listing, error) { return s.Secondary.Update(ctx, id, patch) },
	)
}

func (s *FallbackListings) Delete(ctx context.Context, id string) error {
	return doErr(ctx, s.Decorator, "listings.delete",
		func(ctx context.Context) error { return s.Primary.Delete(ctx, id) },
		func(ctx context.Context) error { return s.Secondary.Delete(ctx, id) },
	)
}

// FallbackArticles decorates two Articles strategies.
type FallbackArticles struct {
	*Decorator
	Primary   Articles
	Secondary Articles
}

func (s *FallbackArticles) List(ctx context.Context) ([]article.Article, error) {
	return do(ctx, s.Decorator, "articles.list",
		func(ctx context.Context) ([]article.Article, error) { return s.Primary.List(ctx) },
		func(ctx context.Context) ([]article.Article, error) { return s.Secondary.List(ctx) },
	)
}

func (s *FallbackArticles) ListPublished(ctx context.Context) ([]article.Article, error) {
	return do(ctx, s.Decorator, "articles.list_published",
		func(ctx context.Context) ([]article.Article, error) { return s.Primary.ListPublished(ctx) },
		func(ctx context.Context) ([]article.Article, error) { return s.Secondary.ListPublished(ctx) },
	)
}

func (s *FallbackArticles) Update(ctx context.Context, id string, patch article.Patch) (article.Article, error) {
	return do(ctx, s.Decorator, "articles.update",
		func(ctx context.Context) (article.Article, error) { return s.Primary.Update(ctx, id, patch) },
		func(ctx context.Context) (article.Article, error) { return s.Secondary.Update(ctx, id, patch) },
	)
}

func (s *FallbackArticles) Delete(ctx context.Context, id string) error {
	return doErr(ctx, s.Decorator, "articles.delete",
		func(ctx context.Context) error { return s.Primary.Delete(ctx, id) },
		func(ctx context.Context) error { return s.Secondary.Delete(ctx, id) },
	)
}
