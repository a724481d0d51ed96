package retriever

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"time"

	"github.com/RentoYabuki06/wikipedia-rag/internal/domain"
	"github.com/RentoYabuki06/wikipedia-rag/internal/port"
)

// PairScorer scores every (query, passage) pair with a cross-encoder
// model. It may fail; the CrossEncoder wrapper absorbs the failure.
type PairScorer interface {
	Score(ctx context.Context, query string, passages []string) ([]port.RerankedResult, error)
	ModelName() string
}

// CrossEncoder is the reranking component. It re-scores candidates
// already retrieved by vector search; it never introduces new ones.
// Reranking is a quality enhancement, not a correctness requirement,
// so this is the single place in the pipeline that recovers locally:
// when the scorer failed to construct, or a scoring call errors, the
// passages come back in their original order with synthetic strictly
// descending scores, and downstream code keeps working uniformly.
type CrossEncoder struct {
	scorer    PairScorer
	available bool
}

// NewCrossEncoder wraps a scorer. Pass the constructor error of the
// scorer: a scorer that failed to load leaves the component in the
// unavailable state instead of propagating, mirroring the model-load
// degradation policy.
func NewCrossEncoder(scorer PairScorer, loadErr error) *CrossEncoder {
	return &CrossEncoder{
		scorer:    scorer,
		available: scorer != nil && loadErr == nil,
	}
}

// Rerank returns the top-k passages by cross-encoder score, descending.
// It is total: any failure degrades to identity order for this call.
func (r *CrossEncoder) Rerank(ctx context.Context, query string, passages []string, topK int) []port.RerankedResult {
	n := topK
	if n > len(passages) {
		n = len(passages)
	}
	if n <= 0 {
		return nil
	}

	if !r.available {
		return identityOrder(n)
	}

	results, err := r.scorer.Score(ctx, query, passages)
	if err != nil || len(results) == 0 {
		return identityOrder(n)
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > n {
		results = results[:n]
	}
	return results
}

// Available reports whether the underlying model loaded.
func (r *CrossEncoder) Available() bool {
	return r.available
}

func (r *CrossEncoder) ModelName() string {
	if r.scorer == nil {
		return "unavailable"
	}
	return r.scorer.ModelName()
}

// identityOrder is the degradation result: original order, synthetic
// strictly descending scores.
func identityOrder(n int) []port.RerankedResult {
	results := make([]port.RerankedResult, n)
	for i := range results {
		results[i] = port.RerankedResult{Index: i, Score: 1.0 - float64(i)*0.1}
	}
	return results
}

// CohereScorer scores pairs through the Cohere rerank API.
type CohereScorer struct {
	apiKey string
	model  string
	client *http.Client
}

type cohereRerankRequest struct {
	Query     string   `json:"query"`
	Documents []string `json:"documents"`
	Model     string   `json:"model"`
}

type cohereRerankResponse struct {
	Results []cohereRerankResult `json:"results"`
}

type cohereRerankResult struct {
	Index          int     `json:"index"`
	RelevanceScore float64 `json:"relevance_score"`
}

// NewCohereScorer reads the API key from the named environment
// variable; a missing key is a model-load failure.
func NewCohereScorer(apiKeyEnv, model string) (*CohereScorer, error) {
	apiKey := os.Getenv(apiKeyEnv)
	if apiKey == "" {
		return nil, fmt.Errorf("%w: API key not found in environment variable %s", domain.ErrModelLoad, apiKeyEnv)
	}

	if model == "" {
		model = "rerank-multilingual-v3.0"
	}

	return &CohereScorer{
		apiKey: apiKey,
		model:  model,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}, nil
}

func (s *CohereScorer) Score(ctx context.Context, query string, passages []string) ([]port.RerankedResult, error) {
	if len(passages) == 0 {
		return nil, nil
	}

	// The API caps documents per request.
	const maxDocs = 1000
	if len(passages) > maxDocs {
		passages = passages[:maxDocs]
	}

	reqBody := cohereRerankRequest{
		Query:     query,
		Documents: passages,
		Model:     s.model,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, "https://api.cohere.ai/v1/rerank", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
	}

	var rerankResp cohereRerankResponse
	if err := json.Unmarshal(body, &rerankResp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	results := make([]port.RerankedResult, len(rerankResp.Results))
	for i, res := range rerankResp.Results {
		results[i] = port.RerankedResult{
			Index: res.Index,
			Score: res.RelevanceScore,
		}
	}

	return results, nil
}

func (s *CohereScorer) ModelName() string {
	return s.model
}
