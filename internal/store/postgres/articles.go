package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/arbenl/ecohubkosova-sub002/internal/db"
	"github.com/arbenl/ecohubkosova-sub002/internal/domain/article"
	"github.com/arbenl/ecohubkosova-sub002/internal/observability"
	"github.com/jackc/pgx/v5"
)

type ArticlesRepo struct {
	base
}

func NewArticlesRepo(pool *db.Pool, prom *observability.Prom) *ArticlesRepo {
	return &ArticlesRepo{base{db: pool, prom: prom}}
}

const articleColumns = `id, titulli, permbajtja, author_id, eshte_publikuar, created_at, updated_at`

func scanArticle(row pgx.Row) (article.Article, error) {
	var a article.Article

	err := row.Scan(
		&a.ID,
		&a.Titulli,
		&a.Permbajtja,
		&a.AuthorID,
		&a.EshtePublikuar,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	return a, err
}

func (r *ArticlesRepo) list(ctx context.Context, op, where string) ([]article.Article, error) {
	pool, err := r.db.Pgx(ctx)
	if err != nil {
		return nil, err
	}

	var out []article.Article

	err = r.observe(op, func() error {
		rows, err := pool.Query(ctx,
			`SELECT `+articleColumns+` FROM artikujt`+where+` ORDER BY created_at DESC, id`)
		if err != nil {
			return err
		}
		defer rows.Close()

		out = make([]article.Article, 0)

		for rows.Next() {
			a, err := scanArticle(rows)
			if err != nil {
				return err
			}
			out = append(out, a)
		}
		return rows.Err()
	})

	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *ArticlesRepo) List(ctx context.Context) ([]article.Article, error) {
	return r.list(ctx, "articles.list", "")
}

func (r *ArticlesRepo) ListPublished(ctx context.Context) ([]article.Article, error) {
	return r.list(ctx, "articles.list_published", " WHERE eshte_publikuar = TRUE")
}

func (r *ArticlesRepo) Update(ctx context.Context, id string, patch article.Patch) (article.Article, error) {
	if patch.Empty() {
		pool, err := r.db.Pgx(ctx)
		if err != nil {
			return article.Article{}, err
		}
		a, err := scanArticle(pool.QueryRow(ctx,
			`SELECT `+articleColumns+` FROM artikujt WHERE id = $1`, id))
		if errors.Is(err, pgx.ErrNoRows) {
			return article.Article{}, article.ErrNotFound
		}
		return a, err
	}

	pool, err := r.db.Pgx(ctx)
	if err != nil {
		return article.Article{}, err
	}

	sets := []string{"updated_at = NOW()"}
	args := []interface{}{id}
	pos := 2

	if patch.Titulli != nil {
		sets = append(sets, fmt.Sprintf("titulli = $%d", pos))
		args = append(args, *patch.Titulli)
		pos++
	}
	if patch.Permbajtja != nil {
		sets = append(sets, fmt.Sprintf("permbajtja = $%d", pos))
		args = append(args, *patch.Permbajtja)
		pos++
	}
	if patch.EshtePublikuar != nil {
		sets = append(sets, fmt.Sprintf("eshte_publikuar = $%d", pos))
		args = append(args, *patch.EshtePublikuar)
		pos++
	}

	query := `UPDATE artikujt SET ` + strings.Join(sets, ", ") +
		` WHERE id = $1 RETURNING ` + articleColumns

	var a article.Article

	err = r.observe("articles.update", func() error {
		var scanErr error
		a, scanErr = scanArticle(pool.QueryRow(ctx, query, args...))
		return scanErr
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return article.Article{}, article.ErrNotFound
		}
		return article.Article{}, err
	}
	return a, nil
}

func (r *ArticlesRepo) Delete(ctx context.Context, id string) error {
	pool, err := r.db.Pgx(ctx)
	if err != nil {
		return err
	}

	return r.observe("articles.delete", func() error {
		tag, err := pool.Exec(ctx, `DELETE FROM artikujt WHERE id = $1`, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return article.ErrNotFound
		}
		return nil
	})
}
