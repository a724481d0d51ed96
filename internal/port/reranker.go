package port

import "context"

// RerankedResult is one cross-encoder score for a candidate passage.
type RerankedResult struct {
	Index int     // Original position in the input slice
	Score float64 // Relevance score (higher is better)
}

// Reranker re-scores (query, passage) pairs. It only reorders
// candidates that were already retrieved, never introduces new ones.
// Rerank is total: when the underlying model is unavailable or a call
// fails, it returns the first min(topK, len(passages)) passages in
// input order with strictly descending synthetic scores.
type Reranker interface {
	Rerank(ctx context.Context, query string, passages []string, topK int) []RerankedResult

	// Available reports whether the underlying pairwise model loaded.
	// Orchestration may log or report it but never needs to branch on
	// call-site error handling.
	Available() bool

	// ModelName returns the name of the reranking model.
	ModelName() string
}
