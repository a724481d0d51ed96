package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/RentoYabuki06/wikipedia-rag/internal/domain"
	"github.com/RentoYabuki06/wikipedia-rag/internal/port"
)

// Pipeline stage names used for failure attribution.
const (
	stageEmbed  = "embed"
	stageSearch = "search"
	stageJoin   = "join"
)

// RetrieveOptions are the per-request retrieval parameters.
type RetrieveOptions struct {
	TopK      int  // candidates fetched by vector search
	TopN      int  // candidates kept in the final context
	UseRerank bool // request reranking (honored only if the reranker loaded)
}

// Retriever orchestrates one retrieval request: embed the question,
// search the vector index, join hits to chunk metadata by position,
// optionally rerank, and assemble the ContextSet.
//
// All components are loaded once and shared read-only across requests;
// nothing here mutates them, so concurrent Retrieve calls need no
// locking. Hot reload means building a new Retriever and swapping the
// reference.
type Retriever struct {
	embedder port.Embedder
	index    port.VectorIndex
	chunks   []domain.Chunk
	reranker port.Reranker
	logger   *slog.Logger
}

// NewRetriever wires the loaded components. The chunk list and the
// index are joined by position, so their lengths must match exactly;
// a mismatch means the persisted artifacts are out of sync and no
// query against them can be trusted.
func NewRetriever(
	embedder port.Embedder,
	index port.VectorIndex,
	chunks []domain.Chunk,
	reranker port.Reranker,
	logger *slog.Logger,
) (*Retriever, error) {
	if index.Count() != len(chunks) {
		return nil, fmt.Errorf("%w: index holds %d vectors but metadata has %d chunks",
			domain.ErrIndexLoad, index.Count(), len(chunks))
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Retriever{
		embedder: embedder,
		index:    index,
		chunks:   chunks,
		reranker: reranker,
		logger:   logger,
	}, nil
}

// Retrieve runs the full pipeline for one question. It never panics
// out and never returns a partial result: a stage failure is logged
// with the stage name and reported as an error ContextSet, so one bad
// request cannot take down a long-lived process. Zero search hits
// yield an explicit empty ContextSet; answer generation must not be
// invoked on it.
func (r *Retriever) Retrieve(ctx context.Context, question string, opts RetrieveOptions) domain.ContextSet {
	if opts.TopK <= 0 {
		opts.TopK = 5
	}
	if opts.TopN <= 0 {
		opts.TopN = 3
	}

	queryVec, err := r.embedder.EncodeQuery(ctx, question)
	if err != nil {
		return r.fail(question, stageEmbed, err)
	}

	hits, err := r.index.Search(queryVec, opts.TopK)
	if err != nil {
		return r.fail(question, stageSearch, err)
	}

	candidates, err := r.join(hits)
	if err != nil {
		return r.fail(question, stageJoin, err)
	}

	if len(candidates) == 0 {
		r.logger.Info("no matching context", "question", question)
		return domain.ContextSet{
			Question: question,
			Stats:    domain.SearchStats{},
		}
	}

	rerankUsed := opts.UseRerank && r.reranker != nil && r.reranker.Available()

	var final []domain.RankedCandidate
	if rerankUsed {
		final = r.rerank(ctx, question, candidates, opts.TopN)
	} else {
		n := opts.TopN
		if n > len(candidates) {
			n = len(candidates)
		}
		final = candidates[:n]
		for i := range final {
			final[i].FinalRank = i
		}
	}

	r.logger.Debug("retrieval complete",
		"question", question,
		"total_candidates", len(candidates),
		"final_candidates", len(final),
		"rerank_used", rerankUsed,
	)

	return domain.ContextSet{
		Question:   question,
		Candidates: final,
		Stats: domain.SearchStats{
			TotalCandidates: len(candidates),
			FinalCandidates: len(final),
			RerankUsed:      rerankUsed,
		},
	}
}

// join maps hit positions onto the chunk sequence. Positions out of
// range mean the positional alignment between index and metadata is
// broken, which the constructor should have caught; treat it as fatal
// for the request.
func (r *Retriever) join(hits []domain.SearchHit) ([]domain.RankedCandidate, error) {
	candidates := make([]domain.RankedCandidate, 0, len(hits))
	for _, hit := range hits {
		if hit.Position < 0 || hit.Position >= len(r.chunks) {
			return nil, fmt.Errorf("search hit position %d outside metadata range %d", hit.Position, len(r.chunks))
		}
		candidates = append(candidates, domain.RankedCandidate{
			Chunk:       r.chunks[hit.Position],
			VectorScore: hit.Score,
		})
	}
	return candidates, nil
}

// rerank re-scores every candidate's text and keeps the top n by
// rerank score. The rerank order replaces the vector order; the vector
// score stays on each candidate as metadata only.
func (r *Retriever) rerank(ctx context.Context, question string, candidates []domain.RankedCandidate, topN int) []domain.RankedCandidate {
	texts := make([]string, len(candidates))
	for i, c := range candidates {
		texts[i] = c.Text
	}

	results := r.reranker.Rerank(ctx, question, texts, topN)

	final := make([]domain.RankedCandidate, 0, len(results))
	for rank, res := range results {
		if res.Index < 0 || res.Index >= len(candidates) {
			continue
		}
		c := candidates[res.Index]
		c.RerankScore = res.Score
		c.FinalRank = rank
		final = append(final, c)
	}
	return final
}

func (r *Retriever) fail(question, stage string, err error) domain.ContextSet {
	r.logger.Error("retrieval failed", "stage", stage, "question", question, "error", err)
	return domain.ContextSet{
		Question:    question,
		Error:       err.Error(),
		FailedStage: stage,
	}
}
