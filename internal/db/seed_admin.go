package db

import (
	"context"
	"fmt"
)

// EnsureAdmin upserts the bootstrap admin row so a fresh deployment always
// has one operator account. Existing rows only get the role reasserted.
func (p *Pool) EnsureAdmin(ctx context.Context, id, email, name string) error {
	pool, err := p.Pgx(ctx)
	if err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}

	_, err = pool.Exec(ctx, `
		INSERT INTO users (id, emri_i_plote, email, vendndodhja, roli, eshte_aprovuar, created_at, updated_at)
		VALUES ($1, $2, $3, '', 'Admin', TRUE, NOW(), NOW())
		ON CONFLICT (id) DO UPDATE SET roli = 'Admin', eshte_aprovuar = TRUE, updated_at = NOW()
	`, id, email, name)
	if err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	return nil
}
