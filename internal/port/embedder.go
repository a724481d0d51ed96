package port

import "context"

// Embedder converts texts into L2-unit-normalized vectors. The role
// prefixes that the underlying model requires ("passage: " for
// documents, "query: " for questions) are owned by the implementation;
// callers pass raw text and must never prepend markers themselves.
type Embedder interface {
	// EncodePassages encodes document-side texts in groups of
	// batchSize. Batch size bounds peak memory only; outputs are
	// identical for any batch size.
	EncodePassages(ctx context.Context, texts []string, batchSize int) ([][]float32, error)

	// EncodeQuery encodes a single query-side text.
	EncodeQuery(ctx context.Context, text string) ([]float32, error)

	// Dimension returns the embedding vector dimension.
	Dimension() int

	// ModelName returns the name of the embedding model.
	ModelName() string
}
