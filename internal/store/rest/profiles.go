package rest

import (
	"context"
	"net/url"
	"time"

	"github.com/arbenl/ecohubkosova-sub002/internal/domain/profile"
)

type Profiles struct {
	c *Client
}

func NewProfiles(c *Client) *Profiles {
	return &Profiles{c: c}
}

// profileRow is the wire shape of a users row on the REST path.
type profileRow struct {
	ID            string    `json:"id,omitempty"`
	EmriIPlote    string    `json:"emri_i_plote"`
	Email         string    `json:"email"`
	Vendndodhja   string    `json:"vendndodhja"`
	Roli          string    `json:"roli"`
	EshteAprovuar bool      `json:"eshte_aprovuar"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (r profileRow) toDomain() profile.Profile {
	return profile.Profile{
		ID:            r.ID,
		EmriIPlote:    r.EmriIPlote,
		Email:         r.Email,
		Vendndodhja:   r.Vendndodhja,
		Roli:          r.Roli,
		EshteAprovuar: r.EshteAprovuar,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}

func fromDomainProfile(p profile.Profile) profileRow {
	return profileRow{
		ID:            p.ID,
		EmriIPlote:    p.EmriIPlote,
		Email:         p.Email,
		Vendndodhja:   p.Vendndodhja,
		Roli:          p.Roli,
		EshteAprovuar: p.EshteAprovuar,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

func (s *Profiles) GetByID(ctx context.Context, id string) (profile.Profile, error) {
	var rows []profileRow

	query := eq("id", id)
	query.Set("limit", "1")

	if err := s.c.Select(ctx, "users", query, &rows); err != nil {
		return profile.Profile{}, err
	}
	if len(rows) == 0 {
		return profile.Profile{}, profile.ErrNotFound
	}
	return rows[0].toDomain(), nil
}

func (s *Profiles) Insert(ctx context.Context, p profile.Profile) (profile.Profile, error) {
	var rows []profileRow

	if err := s.c.Insert(ctx, "users", fromDomainProfile(p), &rows); err != nil {
		return profile.Profile{}, err
	}
	if len(rows) == 0 {
		return p, nil
	}
	return rows[0].toDomain(), nil
}

func (s *Profiles) List(ctx context.Context) ([]profile.Profile, error) {
	var rows []profileRow

	query := url.Values{"order": []string{"created_at.desc,id"}}

	if err := s.c.Select(ctx, "users", query, &rows); err != nil {
		return nil, err
	}

	out := make([]profile.Profile, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toDomain())
	}
	return out, nil
}

func (s *Profiles) Update(ctx context.Context, id string, patch profile.Patch) (profile.Profile, error) {
	if patch.Empty() {
		return s.GetByID(ctx, id)
	}

	// the primary path bumps updated_at in SQL; here it travels in the body
	body := map[string]any{"updated_at": time.Now().UTC()}
	if patch.EmriIPlote != nil {
		body["emri_i_plote"] = *patch.EmriIPlote
	}
	if patch.Vendndodhja != nil {
		body["vendndodhja"] = *patch.Vendndodhja
	}
	if patch.Roli != nil {
		body["roli"] = *patch.Roli
	}
	if patch.EshteAprovuar != nil {
		body["eshte_aprovuar"] = *patch.EshteAprovuar
	}

	var rows []profileRow

	if err := s.c.Patch(ctx, "users", eq("id", id), body, &rows); err != nil {
		return profile.Profile{}, err
	}
	if len(rows) == 0 {
		return profile.Profile{}, profile.ErrNotFound
	}
	return rows[0].toDomain(), nil
}

func (s *Profiles) Delete(ctx context.Context, id string) error {
	var rows []profileRow

	if err := s.c.Delete(ctx, "users", eq("id", id), &rows); err != nil {
		return err
	}
	if len(rows) == 0 {
		return profile.ErrNotFound
	}
	return nil
}
