package rest

import (
	"context"
	"net/url"
	"time"

	"github.com/arbenl/ecohubkosova-sub002/internal/domain/organization"
)

type Organizations struct {
	c *Client
}

func NewOrganizations(c *Client) *Organizations {
	return &Organizations{c: c}
}

type organizationRow struct {
	ID            string    `json:"id"`
	Emri          string    `json:"emri"`
	Pershkrimi    string    `json:"pershkrimi"`
	Qyteti        string    `json:"qyteti"`
	Email         string    `json:"email"`
	OwnerID       string    `json:"owner_id"`
	EshteAprovuar bool      `json:"eshte_aprovuar"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (r organizationRow) toDomain() organization.Organization {
	return organization.Organization{
		ID:            r.ID,
		Emri:          r.Emri,
		Pershkrimi:    r.Pershkrimi,
		Qyteti:        r.Qyteti,
		Email:         r.Email,
		OwnerID:       r.OwnerID,
		EshteAprovuar: r.EshteAprovuar,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}

func (s *Organizations) list(ctx context.Context, query url.Values) ([]organization.Organization, error) {
	var rows []organizationRow

	if err := s.c.Select(ctx, "organizatat", query, &rows); err != nil {
		return nil, err
	}

	out := make([]organization.Organization, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toDomain())
	}
	return out, nil
}

func (s *Organizations) List(ctx context.Context) ([]organization.Organization, error) {
	return s.list(ctx, url.Values{"order": []string{"created_at.desc,id"}})
}

func (s *Organizations) ListApproved(ctx context.Context) ([]organization.Organization, error) {
	query := url.Values{
		"order":          []string{"created_at.desc,id"},
		"eshte_aprovuar": []string{"eq.true"},
	}
	return s.list(ctx, query)
}

func (s *Organizations) Update(ctx context.Context, id string, patch organization.Patch) (organization.Organization, error) {
	if patch.Empty() {
		orgs, err := s.list(ctx, eq("id", id))
		if err != nil {
			return organization.Organization{}, err
		}
		if len(orgs) == 0 {
			return organization.Organization{}, organization.ErrNotFound
		}
		return orgs[0], nil
	}

	body := map[string]any{"updated_at": time.Now().UTC()}
	if patch.Emri != nil {
		body["emri"] = *patch.Emri
	}
	if patch.Pershkrimi != nil {
		body["pershkrimi"] = *patch.Pershkrimi
	}
	if patch.Qyteti != nil {
		body["qyteti"] = *patch.Qyteti
	}
	if patch.Email != nil {
		body["email"] = *patch.Email
	}
	if patch.EshteAprovuar != nil {
		body["eshte_aprovuar"] = *patch.EshteAprovuar
	}

	var rows []organizationRow

	if err := s.c.Patch(ctx, "organizatat", eq("id", id), body, &rows); err != nil {
		return organization.Organization{}, err
	}
	if len(rows) == 0 {
		return organization.Organization{}, organization.ErrNotFound
	}
	return rows[0].toDomain(), nil
}

func (s *Organizations) Delete(ctx context.Context, id string) error {
	var rows []organizationRow

	if err := s.c.Delete(ctx, "organizatat", eq("id", id), &rows); err != nil {
		return err
	}
	if len(rows) == 0 {
		return organization.ErrNotFound
	}
	return nil
}
