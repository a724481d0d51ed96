package domain

// Article is a normalized source document supplied by a corpus loader.
type Article struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Text   string `json:"text"`
	Source string `json:"source"`
}

// Chunk is a contiguous window of one article, the retrieval unit.
// StartChar and EndChar are rune offsets into the normalized article
// text. The JSON field names are the persisted metadata format and
// must not change.
type Chunk struct {
	ID           string `json:"id"`
	Source       string `json:"source"`
	ChunkID      int    `json:"chunk_id"`
	Text         string `json:"text"`
	ArticleTitle string `json:"article_title"`
	StartChar    int    `json:"start_char"`
	EndChar      int    `json:"end_char"`
}

// SearchHit is one vector search match. Position is the stored vector
// position, which doubles as the chunk's line position in the
// persisted metadata file.
type SearchHit struct {
	Position int
	Score    float64
}

// RankedCandidate is a chunk joined with its retrieval scores.
// RerankScore and FinalRank are meaningful only when the context set
// reports RerankUsed.
type RankedCandidate struct {
	Chunk
	VectorScore float64 `json:"vector_score"`
	RerankScore float64 `json:"rerank_score,omitempty"`
	FinalRank   int     `json:"final_rank"`
}

// SearchStats are the diagnostic counts attached to a ContextSet.
type SearchStats struct {
	TotalCandidates int  `json:"total_candidates"`
	FinalCandidates int  `json:"final_candidates"`
	RerankUsed      bool `json:"rerank_used"`
}

// ContextSet is the orchestrator output for a single question: the
// ordered candidates plus diagnostics. A failed request carries Error
// and FailedStage and no candidates.
type ContextSet struct {
	Question    string            `json:"question"`
	Candidates  []RankedCandidate `json:"contexts"`
	Stats       SearchStats       `json:"search_stats"`
	Error       string            `json:"error,omitempty"`
	FailedStage string            `json:"failed_stage,omitempty"`
}

// Empty reports whether the set carries no context. Callers must not
// invoke answer generation on an empty set.
func (c ContextSet) Empty() bool {
	return len(c.Candidates) == 0
}

// Failed reports whether the request failed before assembling context.
func (c ContextSet) Failed() bool {
	return c.Error != ""
}

// CorpusStats summarizes the ingested corpus and built index.
type CorpusStats struct {
	Articles  int `json:"articles"`
	Chunks    int `json:"chunks"`
	Vectors   int `json:"vectors"`
	Dimension int `json:"dimension"`
}
