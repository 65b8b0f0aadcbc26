package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/arbenl/ecohubkosova-sub002/internal/db"
	"github.com/arbenl/ecohubkosova-sub002/internal/domain/organization"
	"github.com/arbenl/ecohubkosova-sub002/internal/domain/profile"
	"github.com/arbenl/ecohubkosova-sub002/internal/observability"
	"github.com/jackc/pgx/v5"
)

type OrganizationsRepo struct {
	base
}

func NewOrganizationsRepo(pool *db.Pool, prom *observability.Prom) *OrganizationsRepo {
	return &OrganizationsRepo{base{db: pool, prom: prom}}
}

const organizationColumns = `id, emri, pershkrimi, qyteti, email, owner_id, eshte_aprovuar, created_at, updated_at`

func scanOrganization(row pgx.Row) (organization.Organization, error) {
	var o organization.Organization

	err := row.Scan(
		&o.ID,
		&o.Emri,
		&o.Pershkrimi,
		&o.Qyteti,
		&o.Email,
		&o.OwnerID,
		&o.EshteAprovuar,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
	return o, err
}

func (r *OrganizationsRepo) list(ctx context.Context, op, where string) ([]organization.Organization, error) {
	pool, err := r.db.Pgx(ctx)
	if err != nil {
		return nil, err
	}

	var out []organization.Organization

	err = r.observe(op, func() error {
		rows, err := pool.Query(ctx,
			`SELECT `+organizationColumns+` FROM organizatat`+where+` ORDER BY created_at DESC, id`)
		if err != nil {
			return err
		}
		defer rows.Close()

		out = make([]organization.Organization, 0)

		for rows.Next() {
			o, err := scanOrganization(rows)
			if err != nil {
				return err
			}
			out = append(out, o)
		}
		return rows.Err()
	})

	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *OrganizationsRepo) List(ctx context.Context) ([]organization.Organization, error) {
	return r.list(ctx, "organizations.list", "")
}

func (r *OrganizationsRepo) ListApproved(ctx context.Context) ([]organization.Organization, error) {
	return r.list(ctx, "organizations.list_approved", " WHERE eshte_aprovuar = TRUE")
}

func (r *OrganizationsRepo) Update(ctx context.Context, id string, patch organization.Patch) (organization.Organization, error) {
	if patch.Empty() {
		pool, err := r.db.Pgx(ctx)
		if err != nil {
			return organization.Organization{}, err
		}
		o, err := scanOrganization(pool.QueryRow(ctx,
			`SELECT `+organizationColumns+` FROM organizatat WHERE id = $1`, id))
		if errors.Is(err, pgx.ErrNoRows) {
			return organization.Organization{}, organization.ErrNotFound
		}
		return o, err
	}

	pool, err := r.db.Pgx(ctx)
	if err != nil {
		return organization.Organization{}, err
	}

	sets := []string{"updated_at = NOW()"}
	args := []interface{}{id}
	pos := 2

	if patch.Emri != nil {
		sets = append(sets, fmt.Sprintf("emri = $%d", pos))
		args = append(args, *patch.Emri)
		pos++
	}
	if patch.Pershkrimi != nil {
		sets = append(sets, fmt.Sprintf("pershkrimi = $%d", pos))
		args = append(args, *patch.Pershkrimi)
		pos++
	}
	if patch.Qyteti != nil {
		sets = append(sets, fmt.Sprintf("qyteti = $%d", pos))
		args = append(args, *patch.Qyteti)
		pos++
	}
	if patch.Email != nil {
		sets = append(sets, fmt.Sprintf("email = $%d", pos))
		args = append(args, *patch.Email)
		pos++
	}
	if patch.EshteAprovuar != nil {
		sets = append(sets, fmt.Sprintf("eshte_aprovuar = $%d", pos))
		args = append(args, *patch.EshteAprovuar)
		pos++
	}

	query := `UPDATE organizatat SET ` + strings.Join(sets, ", ") +
		` WHERE id = $1 RETURNING ` + organizationColumns

	var o organization.Organization

	err = r.observe("organizations.update", func() error {
		var scanErr error
		o, scanErr = scanOrganization(pool.QueryRow(ctx, query, args...))
		return scanErr
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return organization.Organization{}, organization.ErrNotFound
		}
		return organization.Organization{}, err
	}
	return o, nil
}

func (r *OrganizationsRepo) Delete(ctx context.Context, id string) error {
	pool, err := r.db.Pgx(ctx)
	if err != nil {
		return err
	}

	return r.observe("organizations.delete", func() error {
		tag, err := pool.Exec(ctx, `DELETE FROM organizatat WHERE id = $1`, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return organization.ErrNotFound
		}
		return nil
	})
}

// CreateWithOwner runs the onboarding flow in a single transaction:
// the organization row, the owner membership and the owner's role update
// succeed or fail together. The REST path cannot express this, so onboarding
// has no fallback.
func (r *OrganizationsRepo) CreateWithOwner(ctx context.Context, org organization.Organization) (organization.Organization, error) {
	pool, err := r.db.Pgx(ctx)
	if err != nil {
		return organization.Organization{}, err
	}

	err = r.observe("organizations.create_with_owner", func() error {
		tx, err := pool.Begin(ctx)
		if err != nil {
			return err
		}
		defer func() { _ = tx.Rollback(ctx) }()

		_, err = tx.Exec(ctx,
			`INSERT INTO organizatat (id, emri, pershkrimi, qyteti, email, owner_id, eshte_aprovuar, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			org.ID, org.Emri, org.Pershkrimi, org.Qyteti, org.Email, org.OwnerID, org.EshteAprovuar, org.CreatedAt, org.UpdatedAt,
		)
		if err != nil {
			return err
		}

		_, err = tx.Exec(ctx,
			`INSERT INTO anetaret_organizates (organization_id, user_id, roli, created_at)
			 VALUES ($1, $2, $3, $4)`,
			org.ID, org.OwnerID, organization.MemberOwner, org.CreatedAt,
		)
		if err != nil {
			return err
		}

		_, err = tx.Exec(ctx,
			`UPDATE users SET roli = $2, updated_at = NOW() WHERE id = $1`,
			org.OwnerID, profile.RoleOrganization,
		)
		if err != nil {
			return err
		}

		return tx.Commit(ctx)
	})

	if err != nil {
		return organization.Organization{}, err
	}
	return org, nil
}

// MembersOf lists an organization's members.
func (r *OrganizationsRepo) MembersOf(ctx context.Context, orgID string) ([]organization.Member, error) {
	pool, err := r.db.Pgx(ctx)
	if err != nil {
		return nil, err
	}

	var out []organization.Member

	err = r.observe("organizations.members", func() error {
		rows, err := pool.Query(ctx,
			`SELECT organization_id, user_id, roli, created_at
			 FROM anetaret_organizates WHERE organization_id = $1 ORDER BY created_at`, orgID)
		if err != nil {
			return err
		}
		defer rows.Close()

		out = make([]organization.Member, 0)

		for rows.Next() {
			var m organization.Member
			if err := rows.Scan(&m.OrganizationID, &m.UserID, &m.Roli, &m.CreatedAt); err != nil {
				return err
			}
			out = append(out, m)
		}
		return rows.Err()
	})

	if err != nil {
		return nil, err
	}
	return out, nil
}
