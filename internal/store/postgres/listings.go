package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/arbenl/ecohubkosova-sub002/internal/db"
	"github.com/arbenl/ecohubkosova-sub002/internal/domain/listing"
	"github.com/arbenl/ecohubkosova-sub002/internal/observability"
	"github.com/jackc/pgx/v5"
)

type ListingsRepo struct {
	base
}

func NewListingsRepo(pool *db.Pool, prom *observability.Prom) *ListingsRepo {
	return &ListingsRepo{base{db: pool, prom: prom}}
}

const listingColumns = `id, organization_id, titulli, pershkrimi, kategoria, qyteti, cmimi, njesia, eshte_aktiv, created_at, updated_at`

// cmimi is a text column in this path; normalize to float64 at the boundary.
func scanListing(row pgx.Row) (listing.Listing, error) {
	var l listing.Listing
	var cmimi string

	err := row.Scan(
		&l.ID,
		&l.OrganizationID,
		&l.Titulli,
		&l.Pershkrimi,
		&l.Kategoria,
		&l.Qyteti,
		&cmimi,
		&l.Njesia,
		&l.EshteAktiv,
		&l.CreatedAt,
		&l.UpdatedAt,
	)
	if err != nil {
		return listing.Listing{}, err
	}

	if cmimi != "" {
		l.Cmimi, err = strconv.ParseFloat(cmimi, 64)
		if err != nil {
			return listing.Listing{}, fmt.Errorf("listing %s: bad cmimi %q: %w", l.ID, cmimi, err)
		}
	}
	return l, nil
}

func formatCmimi(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func (r *ListingsRepo) queryListings(ctx context.Context, op, query string, args ...interface{}) ([]listing.Listing, error) {
	pool, err := r.db.Pgx(ctx)
	if err != nil {
		return nil, err
	}

	var out []listing.Listing

	err = r.observe(op, func() error {
		rows, err := pool.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		out = make([]listing.Listing, 0)

		for rows.Next() {
			l, err := scanListing(rows)
			if err != nil {
				return err
			}
			out = append(out, l)
		}
		return rows.Err()
	})

	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *ListingsRepo) List(ctx context.Context) ([]listing.Listing, error) {
	return r.queryListings(ctx, "listings.list",
		`SELECT `+listingColumns+` FROM listimet ORDER BY created_at DESC, id`)
}

func (r *ListingsRepo) ListPublic(ctx context.Context, filter listing.Filter) ([]listing.Listing, error) {
	conds := []string{"eshte_aktiv = TRUE"}
	var args []interface{}
	pos := 1

	if filter.Qyteti != nil {
		conds = append(conds, fmt.Sprintf("qyteti = $%d", pos))
		args = append(args, *filter.Qyteti)
		pos++
	}
	if filter.Kategoria != nil {
		conds = append(conds, fmt.Sprintf("kategoria = $%d", pos))
		args = append(args, *filter.Kategoria)
		pos++
	}

	limit := filter.Limit
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	// keyset cursor wins over offset
	if filter.AfterCreatedAt != nil && filter.AfterID != nil {
		conds = append(conds, fmt.Sprintf("(created_at, id) < ($%d, $%d)", pos, pos+1))
		args = append(args, *filter.AfterCreatedAt, *filter.AfterID)
		pos += 2

		query := `SELECT ` + listingColumns + ` FROM listimet WHERE ` + strings.Join(conds, " AND ") +
			fmt.Sprintf(` ORDER BY created_at DESC, id DESC LIMIT $%d`, pos)
		args = append(args, limit)

		return r.queryListings(ctx, "listings.list_public", query, args...)
	}

	query := `SELECT ` + listingColumns + ` FROM listimet WHERE ` + strings.Join(conds, " AND ") +
		fmt.Sprintf(` ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d`, pos, pos+1)
	args = append(args, limit, filter.Offset)

	return r.queryListings(ctx, "listings.list_public", query, args...)
}

func (r *ListingsRepo) Update(ctx context.Context, id string, patch listing.Patch) (listing.Listing, error) {
	if patch.Empty() {
		pool, err := r.db.Pgx(ctx)
		if err != nil {
			return listing.Listing{}, err
		}
		l, err := scanListing(pool.QueryRow(ctx,
			`SELECT `+listingColumns+` FROM listimet WHERE id = $1`, id))
		if errors.Is(err, pgx.ErrNoRows) {
			return listing.Listing{}, listing.ErrNotFound
		}
		return l, err
	}

	pool, err := r.db.Pgx(ctx)
	if err != nil {
		return listing.Listing{}, err
	}

	sets := []string{"updated_at = NOW()"}
	args := []interface{}{id}
	pos := 2

	if patch.Titulli != nil {
		sets = append(sets, fmt.Sprintf("titulli = $%d", pos))
		args = append(args, *patch.Titulli)
		pos++
	}
	if patch.Pershkrimi != nil {
		sets = append(sets, fmt.Sprintf("pershkrimi = $%d", pos))
		args = append(args, *patch.Pershkrimi)
		pos++
	}
	if patch.Kategoria != nil {
		sets = append(sets, fmt.Sprintf("kategoria = $%d", pos))
		args = append(args, *patch.Kategoria)
		pos++
	}
	if patch.Qyteti != nil {
		sets = append(sets, fmt.Sprintf("qyteti = $%d", pos))
		args = append(args, *patch.Qyteti)
		pos++
	}
	if patch.Cmimi != nil {
		sets = append(sets, fmt.Sprintf("cmimi = $%d", pos))
		args = append(args, formatCmimi(*patch.Cmimi))
		pos++
	}
	if patch.Njesia != nil {
		sets = append(sets, fmt.Sprintf("njesia = $%d", pos))
		args = append(args, *patch.Njesia)
		pos++
	}
	if patch.EshteAktiv != nil {
		sets = append(sets, fmt.Sprintf("eshte_aktiv = $%d", pos))
		args = append(args, *patch.EshteAktiv)
		pos++
	}

	query := `UPDATE listimet SET ` + strings.Join(sets, ", ") +
		` WHERE id = $1 RETURNING ` + listingColumns

	var l listing.Listing

	err = r.observe("listings.update", func() error {
		var scanErr error
		l, scanErr = scanListing(pool.QueryRow(ctx, query, args...))
		return scanErr
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return listing.Listing{}, listing.ErrNotFound
		}
		return listing.Listing{}, err
	}
	return l, nil
}

func (r *ListingsRepo) Delete(ctx context.Context, id string) error {
	pool, err := r.db.Pgx(ctx)
	if err != nil {
		return err
	}

	return r.observe("listings.delete", func() error {
		tag, err := pool.Exec(ctx, `DELETE FROM listimet WHERE id = $1`, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return listing.ErrNotFound
		}
		return nil
	})
}
