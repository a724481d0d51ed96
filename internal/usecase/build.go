package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/RentoYabuki06/wikipedia-rag/internal/adapter/store"
	"github.com/RentoYabuki06/wikipedia-rag/internal/domain"
	"github.com/RentoYabuki06/wikipedia-rag/internal/port"
)

// BuildProgress reports embedding progress to the caller (the CLI
// renders it as a progress bar).
type BuildProgress func(processed, total int)

// IndexBuilder runs the offline build: articles -> chunks -> chunk
// metadata file -> passage embeddings -> vector index blob. The chunk
// file and the index are written in lock-step order; line i of the
// metadata file describes vector i.
type IndexBuilder struct {
	chunker   port.Chunker
	embedder  port.Embedder
	index     port.VectorIndex
	batchSize int
	logger    *slog.Logger
	progress  BuildProgress
}

func NewIndexBuilder(
	chunker port.Chunker,
	embedder port.Embedder,
	index port.VectorIndex,
	batchSize int,
	logger *slog.Logger,
	progress BuildProgress,
) *IndexBuilder {
	if logger == nil {
		logger = slog.Default()
	}
	return &IndexBuilder{
		chunker:   chunker,
		embedder:  embedder,
		index:     index,
		batchSize: batchSize,
		logger:    logger,
		progress:  progress,
	}
}

// Build chunks the articles, persists the metadata to chunksPath,
// embeds every chunk text, builds the index and persists it to
// indexPath. Chunker and embedder errors halt the build and propagate
// unchanged.
func (b *IndexBuilder) Build(ctx context.Context, articles []domain.Article, chunksPath, indexPath string) (domain.CorpusStats, error) {
	var stats domain.CorpusStats
	stats.Articles = len(articles)

	var chunks []domain.Chunk
	for _, art := range articles {
		cs, err := b.chunker.Chunk(art)
		if err != nil {
			return stats, fmt.Errorf("chunk article %s: %w", art.ID, err)
		}
		chunks = append(chunks, cs...)
	}
	stats.Chunks = len(chunks)
	b.logger.Info("chunking complete", "articles", len(articles), "chunks", len(chunks))

	if len(chunks) == 0 {
		return stats, fmt.Errorf("no chunks produced from %d articles", len(articles))
	}

	if err := store.SaveChunks(chunksPath, chunks); err != nil {
		return stats, err
	}
	b.logger.Info("chunk metadata saved", "path", chunksPath)

	vectors, err := b.embedChunks(ctx, chunks)
	if err != nil {
		return stats, err
	}

	// Positional alignment is the join contract; a count drift here
	// would corrupt every future query.
	if len(vectors) != len(chunks) {
		return stats, fmt.Errorf("%w: %d vectors for %d chunks", domain.ErrDimensionMismatch, len(vectors), len(chunks))
	}

	if err := b.index.Build(vectors); err != nil {
		return stats, fmt.Errorf("build index: %w", err)
	}
	if err := b.index.Save(indexPath); err != nil {
		return stats, fmt.Errorf("save index: %w", err)
	}

	stats.Vectors = b.index.Count()
	stats.Dimension = b.index.Dimension()
	b.logger.Info("index built", "vectors", stats.Vectors, "dimension", stats.Dimension, "path", indexPath)

	return stats, nil
}

// embedChunks encodes chunk texts batch by batch so progress can be
// reported; outputs are independent of the batching either way.
func (b *IndexBuilder) embedChunks(ctx context.Context, chunks []domain.Chunk) ([][]float32, error) {
	batchSize := b.batchSize
	if batchSize <= 0 {
		batchSize = 32
	}

	texts := make([]string, len(chunks))
	for i, ch := range chunks {
		texts[i] = ch.Text
	}

	vectors := make([][]float32, 0, len(texts))
	for i := 0; i < len(texts); i += batchSize {
		end := i + batchSize
		if end > len(texts) {
			end = len(texts)
		}

		batch, err := b.embedder.EncodePassages(ctx, texts[i:end], batchSize)
		if err != nil {
			return nil, fmt.Errorf("embed chunks %d-%d: %w", i, end, err)
		}
		vectors = append(vectors, batch...)

		if b.progress != nil {
			b.progress(end, len(texts))
		}
	}

	return vectors, nil
}
