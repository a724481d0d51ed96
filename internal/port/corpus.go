package port

import (
	"context"

	"github.com/RentoYabuki06/wikipedia-rag/internal/domain"
)

// CorpusLoader supplies normalized article records. Loaders skip
// records with empty id, title or text.
type CorpusLoader interface {
	Load(ctx context.Context, maxArticles int) ([]domain.Article, error)
}

// ArticleStore persists normalized articles between the ingest and
// build phases.
type ArticleStore interface {
	PutArticles(articles []domain.Article) error

	// ListArticles returns all stored articles in stable key order.
	ListArticles() ([]domain.Article, error)

	CountArticles() (int, error)

	GetStats() (domain.CorpusStats, error)

	UpdateStats(stats domain.CorpusStats) error

	Close() error
}
