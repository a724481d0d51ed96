package generation

import (
	"strings"
	"testing"

	"github.com/RentoYabuki06/wikipedia-rag/internal/domain"
)

func candidate(title, text string, chunkID int) domain.RankedCandidate {
	return domain.RankedCandidate{
		Chunk: domain.Chunk{
			ID:           "chunk_x_0",
			Source:       "jawiki:" + title,
			ChunkID:      chunkID,
			Text:         text,
			ArticleTitle: title,
		},
	}
}

func TestBuildPromptCapsContexts(t *testing.T) {
	g := &Generator{maxContexts: 2, maxContextChars: 200}

	candidates := []domain.RankedCandidate{
		candidate("富士山", "富士山についての説明。", 0),
		candidate("琵琶湖", "琵琶湖についての説明。", 1),
		candidate("東京", "東京についての説明。", 2),
	}

	prompt := g.buildPrompt("日本一高い山は？", candidates)

	if !strings.Contains(prompt, "[0] 富士山についての説明。") {
		t.Error("prompt missing first context")
	}
	if !strings.Contains(prompt, "[1] 琵琶湖についての説明。") {
		t.Error("prompt missing second context")
	}
	if strings.Contains(prompt, "東京についての説明。") {
		t.Error("prompt should cap contexts at maxContexts")
	}
	if !strings.Contains(prompt, "【質問】\n日本一高い山は？") {
		t.Error("prompt missing question section")
	}
	if !strings.HasSuffix(prompt, "【回答】") {
		t.Error("prompt must end with the answer marker")
	}
}

func TestBuildPromptTruncatesLongContexts(t *testing.T) {
	g := &Generator{maxContexts: 2, maxContextChars: 10}

	long := strings.Repeat("長", 50)
	prompt := g.buildPrompt("q", []domain.RankedCandidate{candidate("t", long, 0)})

	if strings.Contains(prompt, strings.Repeat("長", 11)) {
		t.Error("context not truncated to maxContextChars runes")
	}
	if !strings.Contains(prompt, strings.Repeat("長", 10)) {
		t.Error("truncated context missing")
	}
}

func TestSourceReferences(t *testing.T) {
	refs := sourceReferences([]domain.RankedCandidate{
		candidate("富士山", "a", 3),
		candidate("琵琶湖", "b", 0),
	})

	if !strings.Contains(refs, "【参照元】") {
		t.Error("missing reference header")
	}
	if !strings.Contains(refs, "jawiki:富士山#chunk=3") {
		t.Errorf("missing first reference: %s", refs)
	}
	if !strings.Contains(refs, "jawiki:琵琶湖#chunk=0") {
		t.Errorf("missing second reference: %s", refs)
	}
}

func TestNewGeneratorRequiresKey(t *testing.T) {
	t.Setenv("WIKIRAG_TEST_OPENAI_KEY", "")

	if _, err := NewGenerator("WIKIRAG_TEST_OPENAI_KEY", "gpt-4o-mini", 200, 2, 200); err == nil {
		t.Fatal("expected error for missing API key")
	}
}
