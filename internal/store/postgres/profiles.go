package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/arbenl/ecohubkosova-sub002/internal/db"
	"github.com/arbenl/ecohubkosova-sub002/internal/domain/profile"
	"github.com/arbenl/ecohubkosova-sub002/internal/observability"
	"github.com/jackc/pgx/v5"
)

type ProfilesRepo struct {
	base
}

func NewProfilesRepo(pool *db.Pool, prom *observability.Prom) *ProfilesRepo {
	return &ProfilesRepo{base{db: pool, prom: prom}}
}

const profileColumns = `id, emri_i_plote, email, vendndodhja, roli, eshte_aprovuar, created_at, updated_at`

func scanProfile(row pgx.Row) (profile.Profile, error) {
	var p profile.Profile

	err := row.Scan(
		&p.ID,
		&p.EmriIPlote,
		&p.Email,
		&p.Vendndodhja,
		&p.Roli,
		&p.EshteAprovuar,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	return p, err
}

func (r *ProfilesRepo) GetByID(ctx context.Context, id string) (profile.Profile, error) {
	pool, err := r.db.Pgx(ctx)
	if err != nil {
		return profile.Profile{}, err
	}

	var p profile.Profile

	err = r.observe("profiles.get", func() error {
		var scanErr error
		p, scanErr = scanProfile(pool.QueryRow(ctx,
			`SELECT `+profileColumns+` FROM users WHERE id = $1`, id))
		return scanErr
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return profile.Profile{}, profile.ErrNotFound
		}
		return profile.Profile{}, err
	}
	return p, nil
}

func (r *ProfilesRepo) Insert(ctx context.Context, p profile.Profile) (profile.Profile, error) {
	pool, err := r.db.Pgx(ctx)
	if err != nil {
		return profile.Profile{}, err
	}

	err = r.observe("profiles.insert", func() error {
		_, execErr := pool.Exec(ctx,
			`INSERT INTO users (id, emri_i_plote, email, vendndodhja, roli, eshte_aprovuar, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			p.ID, p.EmriIPlote, p.Email, p.Vendndodhja, p.Roli, p.EshteAprovuar, p.CreatedAt, p.UpdatedAt,
		)
		return execErr
	})

	if err != nil {
		return profile.Profile{}, err
	}
	return p, nil
}

func (r *ProfilesRepo) List(ctx context.Context) ([]profile.Profile, error) {
	pool, err := r.db.Pgx(ctx)
	if err != nil {
		return nil, err
	}

	var out []profile.Profile

	err = r.observe("profiles.list", func() error {
		rows, err := pool.Query(ctx,
			`SELECT `+profileColumns+` FROM users ORDER BY created_at DESC, id`)
		if err != nil {
			return err
		}
		defer rows.Close()

		out = make([]profile.Profile, 0)

		for rows.Next() {
			p, err := scanProfile(rows)
			if err != nil {
				return err
			}
			out = append(out, p)
		}
		return rows.Err()
	})

	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *ProfilesRepo) Update(ctx context.Context, id string, patch profile.Patch) (profile.Profile, error) {
	if patch.Empty() {
		return r.GetByID(ctx, id)
	}

	pool, err := r.db.Pgx(ctx)
	if err != nil {
		return profile.Profile{}, err
	}

	sets := []string{"updated_at = NOW()"}
	args := []interface{}{id}
	pos := 2

	if patch.EmriIPlote != nil {
		sets = append(sets, fmt.Sprintf("emri_i_plote = $%d", pos))
		args = append(args, *patch.EmriIPlote)
		pos++
	}
	if patch.Vendndodhja != nil {
		sets = append(sets, fmt.Sprintf("vendndodhja = $%d", pos))
		args = append(args, *patch.Vendndodhja)
		pos++
	}
	if patch.Roli != nil {
		sets = append(sets, fmt.Sprintf("roli = $%d", pos))
		args = append(args, *patch.Roli)
		pos++
	}
	if patch.EshteAprovuar != nil {
		sets = append(sets, fmt.Sprintf("eshte_aprovuar = $%d", pos))
		args = append(args, *patch.EshteAprovuar)
		pos++
	}

	query := `UPDATE users SET ` + strings.Join(sets, ", ") +
		` WHERE id = $1 RETURNING ` + profileColumns

	var p profile.Profile

	err = r.observe("profiles.update", func() error {
		var scanErr error
		p, scanErr = scanProfile(pool.QueryRow(ctx, query, args...))
		return scanErr
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return profile.Profile{}, profile.ErrNotFound
		}
		return profile.Profile{}, err
	}
	return p, nil
}

func (r *ProfilesRepo) Delete(ctx context.Context, id string) error {
	pool, err := r.db.Pgx(ctx)
	if err != nil {
		return err
	}

	return r.observe("profiles.delete", func() error {
		tag, err := pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return profile.ErrNotFound
		}
		return nil
	})
}
