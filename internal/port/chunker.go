package port

import "github.com/RentoYabuki06/wikipedia-rag/internal/domain"

type Chunker interface {
	Chunk(article domain.Article) ([]domain.Chunk, error)
}
