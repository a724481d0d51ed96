package domain

import "errors"

var (
	// ErrConfiguration marks invalid chunking or pipeline parameters.
	// The caller must fix its input; there is no recovery.
	ErrConfiguration = errors.New("invalid configuration")

	// ErrModelLoad marks an embedding or generation model that could
	// not be loaded. Fatal for the embedder; the reranker alone
	// degrades instead of failing.
	ErrModelLoad = errors.New("model load failed")

	// ErrDimensionMismatch marks a vector whose length differs from
	// the index's declared dimension.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")

	// ErrIndexLoad marks a corrupt or incompatible persisted index.
	// Loading never silently yields an empty index.
	ErrIndexLoad = errors.New("index load failed")

	// ErrDegenerateEmbedding marks a zero-norm embedding. It indicates
	// an upstream model or data bug and must never be masked: a zero
	// vector would corrupt inner-product ranking.
	ErrDegenerateEmbedding = errors.New("degenerate zero-norm embedding")
)
