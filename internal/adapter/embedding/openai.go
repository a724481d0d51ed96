package embedding

import (
	"context"
	"fmt"
	"os"

	openai "github.com/sashabaranov/go-openai"

	"github.com/RentoYabuki06/wikipedia-rag/internal/domain"
)

// OpenAIBackend vectorizes texts through the OpenAI embeddings API.
type OpenAIBackend struct {
	client    *openai.Client
	model     string
	dimension int
}

// NewOpenAIBackend reads the API key from the named environment
// variable. A missing key means the model cannot be loaded; that is
// fatal for the embedder, not retried.
func NewOpenAIBackend(apiKeyEnv, model string) (*OpenAIBackend, error) {
	apiKey := os.Getenv(apiKeyEnv)
	if apiKey == "" {
		return nil, fmt.Errorf("%w: API key not found in environment variable %s", domain.ErrModelLoad, apiKeyEnv)
	}

	dimension := 1536
	switch model {
	case "text-embedding-3-small":
		dimension = 1536
	case "text-embedding-3-large":
		dimension = 3072
	case "text-embedding-ada-002":
		dimension = 1536
	}

	return &OpenAIBackend{
		client:    openai.NewClient(apiKey),
		model:     model,
		dimension: dimension,
	}, nil
}

func (b *OpenAIBackend) Vectorize(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	resp, err := b.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Model: openai.EmbeddingModel(b.model),
		Input: texts,
	})
	if err != nil {
		return nil, fmt.Errorf("embeddings API: %w", err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("embeddings API: expected %d vectors, got %d", len(texts), len(resp.Data))
	}

	vectors := make([][]float32, len(texts))
	for _, data := range resp.Data {
		if data.Index < 0 || data.Index >= len(vectors) {
			return nil, fmt.Errorf("embeddings API: vector index %d out of range", data.Index)
		}
		v := make([]float32, len(data.Embedding))
		copy(v, data.Embedding)
		vectors[data.Index] = v
	}

	return vectors, nil
}

func (b *OpenAIBackend) Dimension() int {
	return b.dimension
}

func (b *OpenAIBackend) ModelName() string {
	return b.model
}

// MockBackend produces deterministic local vectors so that builds and
// tests can run without network access. Identical texts always map to
// identical vectors.
type MockBackend struct {
	dimension int
}

func NewMockBackend(dimension int) *MockBackend {
	return &MockBackend{dimension: dimension}
}

func (b *MockBackend) Vectorize(_ context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		v := make([]float32, b.dimension)
		for j, r := range text {
			v[(j+int(r))%b.dimension] += float32(r%97) / 97.0
		}
		vectors[i] = v
	}
	return vectors, nil
}

func (b *MockBackend) Dimension() int {
	return b.dimension
}

func (b *MockBackend) ModelName() string {
	return "mock"
}
