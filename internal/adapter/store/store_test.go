package store

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/RentoYabuki06/wikipedia-rag/internal/domain"
)

func TestBoltStoreArticleRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corpus.db")

	st, err := NewBoltStore(path)
	if err != nil {
		t.Fatal(err)
	}
	defer st.Close()

	articles := []domain.Article{
		{ID: "001", Title: "富士山", Text: "富士山は日本一高い山。", Source: "jawiki:富士山"},
		{ID: "002", Title: "琵琶湖", Text: "琵琶湖は日本最大の湖。", Source: "jawiki:琵琶湖"},
	}
	if err := st.PutArticles(articles); err != nil {
		t.Fatal(err)
	}

	got, err := st.ListArticles()
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 articles, got %d", len(got))
	}
	// Bolt iterates keys in byte order, so listing is stable.
	if got[0].ID != "001" || got[1].ID != "002" {
		t.Errorf("articles out of key order: %s, %s", got[0].ID, got[1].ID)
	}
	if got[0].Title != "富士山" || got[0].Source != "jawiki:富士山" {
		t.Errorf("article fields lost: %+v", got[0])
	}

	count, err := st.CountArticles()
	if err != nil {
		t.Fatal(err)
	}
	if count != 2 {
		t.Errorf("expected count 2, got %d", count)
	}
}

func TestBoltStoreUpsertReplaces(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corpus.db")

	st, err := NewBoltStore(path)
	if err != nil {
		t.Fatal(err)
	}
	defer st.Close()

	if err := st.PutArticles([]domain.Article{{ID: "a", Title: "v1", Text: "t"}}); err != nil {
		t.Fatal(err)
	}
	if err := st.PutArticles([]domain.Article{{ID: "a", Title: "v2", Text: "t"}}); err != nil {
		t.Fatal(err)
	}

	got, err := st.ListArticles()
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Title != "v2" {
		t.Errorf("expected single updated article, got %+v", got)
	}
}

func TestBoltStoreRejectsEmptyID(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corpus.db")

	st, err := NewBoltStore(path)
	if err != nil {
		t.Fatal(err)
	}
	defer st.Close()

	if err := st.PutArticles([]domain.Article{{Title: "無題", Text: "t"}}); err == nil {
		t.Error("expected error for article with empty id")
	}
}

func TestBoltStoreStats(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corpus.db")

	st, err := NewBoltStore(path)
	if err != nil {
		t.Fatal(err)
	}
	defer st.Close()

	// Absent stats read as zero values.
	stats, err := st.GetStats()
	if err != nil {
		t.Fatal(err)
	}
	if stats.Chunks != 0 || stats.Vectors != 0 {
		t.Errorf("expected zero stats, got %+v", stats)
	}

	want := domain.CorpusStats{Articles: 3, Chunks: 42, Vectors: 42, Dimension: 64}
	if err := st.UpdateStats(want); err != nil {
		t.Fatal(err)
	}
	stats, err = st.GetStats()
	if err != nil {
		t.Fatal(err)
	}
	if stats != want {
		t.Errorf("stats round trip: got %+v, want %+v", stats, want)
	}
}

func sampleChunks() []domain.Chunk {
	return []domain.Chunk{
		{ID: "chunk_001_0", Source: "jawiki:富士山", ChunkID: 0, Text: "富士山は日本一高い山である。", ArticleTitle: "富士山", StartChar: 0, EndChar: 14},
		{ID: "chunk_001_1", Source: "jawiki:富士山", ChunkID: 1, Text: "標高は3776メートル。", ArticleTitle: "富士山", StartChar: 10, EndChar: 22},
		{ID: "chunk_002_0", Source: "jawiki:琵琶湖", ChunkID: 0, Text: "琵琶湖は日本最大の湖である。", ArticleTitle: "琵琶湖", StartChar: 0, EndChar: 14},
	}
}

func TestChunkFileRoundTripPreservesOrder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chunks.jsonl")

	chunks := sampleChunks()
	if err := SaveChunks(path, chunks); err != nil {
		t.Fatal(err)
	}

	loaded, err := LoadChunks(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(loaded) != len(chunks) {
		t.Fatalf("expected %d chunks, got %d", len(chunks), len(loaded))
	}
	for i := range chunks {
		if loaded[i] != chunks[i] {
			t.Errorf("chunk %d changed across round trip:\n got %+v\nwant %+v", i, loaded[i], chunks[i])
		}
	}
}

func TestChunkFileFieldNames(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chunks.jsonl")

	if err := SaveChunks(path, sampleChunks()[:1]); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	line := string(data)

	for _, field := range []string{`"id"`, `"source"`, `"chunk_id"`, `"text"`, `"article_title"`, `"start_char"`, `"end_char"`} {
		if !strings.Contains(line, field) {
			t.Errorf("persisted record is missing field %s: %s", field, line)
		}
	}
}

func TestChunkFileCorruptLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chunks.jsonl")
	if err := os.WriteFile(path, []byte("{\"id\":\"ok\"}\nnot json\n"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadChunks(path); err == nil {
		t.Error("expected error for corrupt metadata line")
	}
}

func TestChunkFileCreatesParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "chunks.jsonl")

	if err := SaveChunks(path, sampleChunks()); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatal(err)
	}
}
