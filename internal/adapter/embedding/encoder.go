package embedding

import (
	"context"
	"fmt"
	"math"

	"github.com/RentoYabuki06/wikipedia-rag/internal/domain"
)

const (
	passagePrefix = "passage: "
	queryPrefix   = "query: "

	defaultBatchSize = 32
)

// Backend turns already-prefixed texts into raw vectors. Implementations
// must be deterministic per input text.
type Backend interface {
	Vectorize(ctx context.Context, texts []string) ([][]float32, error)
	Dimension() int
	ModelName() string
}

// Encoder is the embedding component. It owns the role prefixes the
// model requires (document side vs query side), splits passage work
// into batches, and L2-normalizes every output vector. Callers pass
// raw text; mixing prefixes silently ruins retrieval quality, so they
// are never supplied from outside.
type Encoder struct {
	backend Backend
}

func NewEncoder(backend Backend) *Encoder {
	return &Encoder{backend: backend}
}

// EncodePassages encodes document-side texts in groups of batchSize.
// Batch size bounds peak memory; results are identical for any batch
// size because each text is vectorized independently.
func (e *Encoder) EncodePassages(ctx context.Context, texts []string, batchSize int) ([][]float32, error) {
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}

	prefixed := make([]string, len(texts))
	for i, t := range texts {
		prefixed[i] = passagePrefix + t
	}

	out := make([][]float32, 0, len(texts))
	for i := 0; i < len(prefixed); i += batchSize {
		end := i + batchSize
		if end > len(prefixed) {
			end = len(prefixed)
		}

		vectors, err := e.backend.Vectorize(ctx, prefixed[i:end])
		if err != nil {
			return nil, fmt.Errorf("passage batch %d: %w", i/batchSize, err)
		}
		for j, v := range vectors {
			if err := l2Normalize(v); err != nil {
				return nil, fmt.Errorf("passage %d: %w", i+j, err)
			}
			out = append(out, v)
		}
	}

	return out, nil
}

// EncodeQuery encodes a single query-side text.
func (e *Encoder) EncodeQuery(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.backend.Vectorize(ctx, []string{queryPrefix + text})
	if err != nil {
		return nil, fmt.Errorf("query embedding: %w", err)
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("query embedding: expected 1 vector, got %d", len(vectors))
	}
	if err := l2Normalize(vectors[0]); err != nil {
		return nil, fmt.Errorf("query embedding: %w", err)
	}
	return vectors[0], nil
}

func (e *Encoder) Dimension() int {
	return e.backend.Dimension()
}

func (e *Encoder) ModelName() string {
	return e.backend.ModelName()
}

// l2Normalize scales v to unit length in place. A zero-norm vector is
// a model or data bug and is surfaced, never returned as-is.
func l2Normalize(v []float32) error {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return domain.ErrDegenerateEmbedding
	}
	inv := float32(1.0 / math.Sqrt(sum))
	for i := range v {
		v[i] *= inv
	}
	return nil
}
