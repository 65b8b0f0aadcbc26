package rest

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/arbenl/ecohubkosova-sub002/internal/domain/listing"
)

type Listings struct {
	c *Client
}

func NewListings(c *Client) *Listings {
	return &Listings{c: c}
}

// cmimi is a text column, so it is a string on the wire here too.
type listingRow struct {
	ID             string    `json:"id"`
	OrganizationID string    `json:"organization_id"`
	Titulli        string    `json:"titulli"`
	Pershkrimi     string    `json:"pershkrimi"`
	Kategoria      string    `json:"kategoria"`
	Qyteti         string    `json:"qyteti"`
	Cmimi          string    `json:"cmimi"`
	Njesia         string    `json:"njesia"`
	EshteAktiv     bool      `json:"eshte_aktiv"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (r listingRow) toDomain() (listing.Listing, error) {
	l := listing.Listing{
		ID:             r.ID,
		OrganizationID: r.OrganizationID,
		Titulli:        r.Titulli,
		Pershkrimi:     r.Pershkrimi,
		Kategoria:      r.Kategoria,
		Qyteti:         r.Qyteti,
		Njesia:         r.Njesia,
		EshteAktiv:     r.EshteAktiv,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}

	if r.Cmimi != "" {
		v, err := strconv.ParseFloat(r.Cmimi, 64)
		if err != nil {
			return listing.Listing{}, fmt.Errorf("listing %s: bad cmimi %q: %w", r.ID, r.Cmimi, err)
		}
		l.Cmimi = v
	}
	return l, nil
}

func (s *Listings) list(ctx context.Context, query url.Values) ([]listing.Listing, error) {
	var rows []listingRow

	if err := s.c.Select(ctx, "listimet", query, &rows); err != nil {
		return nil, err
	}

	out := make([]listing.Listing, 0, len(rows))
	for _, r := range rows {
		l, err := r.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, nil
}

func (s *Listings) List(ctx context.Context) ([]listing.Listing, error) {
	return s.list(ctx, url.Values{"order": []string{"created_at.desc,id"}})
}

func (s *Listings) ListPublic(ctx context.Context, filter listing.Filter) ([]listing.Listing, error) {
	query := url.Values{
		"order":       []string{"created_at.desc,id.desc"},
		"eshte_aktiv": []string{"eq.true"},
	}

	if filter.Qyteti != nil {
		query.Set("qyteti", "eq."+*filter.Qyteti)
	}
	if filter.Kategoria != nil {
		query.Set("kategoria", "eq."+*filter.Kategoria)
	}

	limit := filter.Limit
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	query.Set("limit", strconv.Itoa(limit))

	if filter.AfterCreatedAt != nil && filter.AfterID != nil {
		ts := filter.AfterCreatedAt.UTC().Format(time.RFC3339Nano)
		query.Set("or", fmt.Sprintf("(created_at.lt.%s,and(created_at.eq.%s,id.lt.%s))", ts, ts, *filter.AfterID))
	} else if filter.Offset > 0 {
		query.Set("offset", strconv.Itoa(filter.Offset))
	}

	return s.list(ctx, query)
}

func (s *Listings) Update(ctx context.Context, id string, patch listing.Patch) (listing.Listing, error) {
	if patch.Empty() {
		listings, err := s.list(ctx, eq("id", id))
		if err != nil {
			return listing.Listing{}, err
		}
		if len(listings) == 0 {
			return listing.Listing{}, listing.ErrNotFound
		}
		return listings[0], nil
	}

	body := map[string]any{"updated_at": time.Now().UTC()}
	if patch.Titulli != nil {
		body["titulli"] = *patch.Titulli
	}
	if patch.Pershkrimi != nil {
		body["pershkrimi"] = *patch.Pershkrimi
	}
	if patch.Kategoria != nil {
		body["kategoria"] = *patch.Kategoria
	}
	if patch.Qyteti != nil {
		body["qyteti"] = *patch.Qyteti
	}
	if patch.Cmimi != nil {
		body["cmimi"] = strconv.FormatFloat(*patch.Cmimi, 'f', -1, 64)
	}
	if patch.Njesia != nil {
		body["njesia"] = *patch.Njesia
	}
	if patch.EshteAktiv != nil {
		body["eshte_aktiv"] = *patch.EshteAktiv
	}

	var rows []listingRow

	if err := s.c.Patch(ctx, "listimet", eq("id", id), body, &rows); err != nil {
		return listing.Listing{}, err
	}
	if len(rows) == 0 {
		return listing.Listing{}, listing.ErrNotFound
	}
	return rows[0].toDomain()
}

func (s *Listings) Delete(ctx context.Context, id string) error {
	var rows []listingRow

	if err := s.c.Delete(ctx, "listimet", eq("id", id), &rows); err != nil {
		return err
	}
	if len(rows) == 0 {
		return listing.ErrNotFound
	}
	return nil
}
