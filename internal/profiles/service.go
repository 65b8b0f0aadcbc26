// Package profiles resolves application profiles for identity-provider
// users, creating the default row lazily on first authenticated access.
package profiles

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/arbenl/ecohubkosova-sub002/internal/domain/profile"
	"github.com/arbenl/ecohubkosova-sub002/internal/identity"
	"github.com/arbenl/ecohubkosova-sub002/internal/store"
	"github.com/jackc/pgx/v5/pgconn"
)

var ErrEmptyUserID = errors.New("profiles: empty user id")

// IdentityReader is the slice of the provider the resolver needs.
type IdentityReader interface {
	AdminUserByID(ctx context.Context, id string) (*identity.User, error)
}

type Service struct {
	primary   store.Profiles
	secondary store.Profiles
	provider  IdentityReader
	log       *slog.Logger
}

// NewService builds the resolver. secondary may be nil when no REST path is
// configured; the primary error is then returned as is.
func NewService(primary, secondary store.Profiles, provider IdentityReader, log *slog.Logger) *Service {
	return &Service{
		primary:   primary,
		secondary: secondary,
		provider:  provider,
		log:       log,
	}
}

// Resolve returns the profile for userID, creating the default row if none
// exists yet. A nil, nil return means "no profile, no error": the identity
// lookup failed so nothing could be synthesized. Callers must not treat nil
// as a failure.
func (s *Service) Resolve(ctx context.Context, userID string) (*profile.Profile, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrEmptyUserID
	}

	p, err := s.resolveWith(ctx, s.primary, userID)

	if err == nil {
		return p, nil
	}

	if !store.IsInfrastructure(err) || s.secondary == nil || ctx.Err() != nil {
		return nil, err
	}

	s.log.Warn("profile resolve: primary path failed, using fallback",
		"user_id", userID,
		"err", truncate(err.Error(), 200),
	)

	return s.resolveWith(ctx, s.secondary, userID)
}

// resolveWith runs the whole logical operation (read, lazy create) against
// one data path.
func (s *Service) resolveWith(ctx context.Context, st store.Profiles, userID string) (*profile.Profile, error) {
	p, err := st.GetByID(ctx, userID)

	if err == nil {
		return &p, nil
	}

	if !errors.Is(err, profile.ErrNotFound) {
		return nil, err
	}

	// first authenticated access: look the user up at the provider to get
	// email and display name for the default row
	u, err := s.provider.AdminUserByID(ctx, userID)

	if err != nil {
		// non-error empty result; distinguish it in logs, not the return value
		s.log.Warn("profile resolve: identity lookup failed, no profile created",
			"user_id", userID,
			"err", truncate(err.Error(), 200),
		)
		return nil, nil
	}

	created, err := st.Insert(ctx, profile.NewDefault(u.ID, u.Email, u.Name))

	if err != nil {
		// a concurrent first access may have won the insert
		if isUniqueViolation(err) {
			existing, err := st.GetByID(ctx, userID)
			if err != nil {
				return nil, err
			}
			return &existing, nil
		}
		return nil, err
	}

	s.log.Info("profile created",
		"user_id", created.ID,
		"roli", created.Roli,
	)
	return &created, nil
}

// Update applies a self-service patch (name, location). Role and approval
// are admin-only and stripped here.
func (s *Service) Update(ctx context.Context, userID string, patch profile.Patch) (*profile.Profile, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrEmptyUserID
	}

	patch.Roli = nil
	patch.EshteAprovuar = nil

	p, err := s.primary.Update(ctx, userID, patch)

	if err == nil {
		return &p, nil
	}

	if !store.IsInfrastructure(err) || s.secondary == nil || ctx.Err() != nil {
		return nil, err
	}

	s.log.Warn("profile update: primary path failed, using fallback",
		"user_id", userID,
		"err", truncate(err.Error(), 200),
	)

	p, err = s.secondary.Update(ctx, userID, patch)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}

	var restErr *store.RESTError
	if errors.As(err, &restErr) {
		return restErr.Status == 409
	}
	return false
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
