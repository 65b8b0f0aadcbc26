package admin

import (
	"context"
	"log/slog"

	"github.com/arbenl/ecohubkosova-sub002/internal/domain/article"
	"github.com/arbenl/ecohubkosova-sub002/internal/store"
)

type Articles struct {
	store store.Articles
	log   *slog.Logger
}

func NewArticles(st store.Articles, log *slog.Logger) *Articles {
	return &Articles{store: st, log: log}
}

func (s *Articles) FetchAdminArticles(ctx context.Context) ([]article.Article, error) {
	out, err := s.store.List(ctx)

	if err != nil {
		s.log.Error("fetch admin articles failed", "err", truncate(err.Error(), 200))
		return nil, err
	}
	return out, nil
}

func (s *Articles) UpdateArticleRecord(ctx context.Context, id string, patch article.Patch) (article.Article, error) {
	a, err := s.store.Update(ctx, id, patch)

	if err != nil {
		s.log.Error("update article record failed", "id", id, "err", truncate(err.Error(), 200))
		return article.Article{}, err
	}
	return a, nil
}

func (s *Articles) DeleteArticleRecord(ctx context.Context, id string) error {
	err := s.store.Delete(ctx, id)

	if err != nil {
		s.log.Error("delete article record failed", "id", id, "err", truncate(err.Error(), 200))
	}
	return err
}
