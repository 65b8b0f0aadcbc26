package rest

import (
	"context"
	"net/url"
	"time"

	"github.com/arbenl/ecohubkosova-sub002/internal/domain/article"
)

type Articles struct {
	c *Client
}

func NewArticles(c *Client) *Articles {
	return &Articles{c: c}
}

type articleRow struct {
	ID             string    `json:"id"`
	Titulli        string    `json:"titulli"`
	Permbajtja     string    `json:"permbajtja"`
	AuthorID       string    `json:"author_id"`
	EshtePublikuar bool      `json:"eshte_publikuar"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (r articleRow) toDomain() article.Article {
	return article.Article{
		ID:             r.ID,
		Titulli:        r.Titulli,
		Permbajtja:     r.Permbajtja,
		AuthorID:       r.AuthorID,
		EshtePublikuar: r.EshtePublikuar,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}

func (s *Articles) list(ctx context.Context, query url.Values) ([]article.Article, error) {
	var rows []articleRow

	if err := s.c.Select(ctx, "artikujt", query, &rows); err != nil {
		return nil, err
	}

	out := make([]article.Article, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toDomain())
	}
	return out, nil
}

func (s *Articles) List(ctx context.Context) ([]article.Article, error) {
	return s.list(ctx, url.Values{"order": []string{"created_at.desc,id"}})
}

func (s *Articles) ListPublished(ctx context.Context) ([]article.Article, error) {
	query := url.Values{
		"order":           []string{"created_at.desc,id"},
		"eshte_publikuar": []string{"eq.true"},
	}
	return s.list(ctx, query)
}

func (s *Articles) Update(ctx context.Context, id string, patch article.Patch) (article.Article, error) {
	if patch.Empty() {
		articles, err := s.list(ctx, eq("id", id))
		if err != nil {
			return article.Article{}, err
		}
		if len(articles) == 0 {
			return article.Article{}, article.ErrNotFound
		}
		return articles[0], nil
	}

	body := map[string]any{"updated_at": time.Now().UTC()}
	if patch.Titulli != nil {
		body["titulli"] = *patch.Titulli
	}
	if patch.Permbajtja != nil {
		body["permbajtja"] = *patch.Permbajtja
	}
	if patch.EshtePublikuar != nil {
		body["eshte_publikuar"] = *patch.EshtePublikuar
	}

	var rows []articleRow

	if err := s.c.Patch(ctx, "artikujt", eq("id", id), body, &rows); err != nil {
		return article.Article{}, err
	}
	if len(rows) == 0 {
		return article.Article{}, article.ErrNotFound
	}
	return rows[0].toDomain(), nil
}

func (s *Articles) Delete(ctx context.Context, id string) error {
	var rows []articleRow

	if err := s.c.Delete(ctx, "artikujt", eq("id", id), &rows); err != nil {
		return err
	}
	if len(rows) == 0 {
		return article.ErrNotFound
	}
	return nil
}
