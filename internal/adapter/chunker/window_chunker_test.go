package chunker

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/RentoYabuki06/wikipedia-rag/internal/domain"
)

func testArticle(text string) domain.Article {
	return domain.Article{
		ID:     "a1",
		Title:  "テスト記事",
		Text:   text,
		Source: "jawiki:テスト記事",
	}
}

func TestWindowChunkerRejectsBadParameters(t *testing.T) {
	cases := []struct {
		name          string
		size, overlap int
	}{
		{"zero size", 0, 0},
		{"negative size", -10, 0},
		{"overlap equals size", 100, 100},
		{"overlap exceeds size", 100, 150},
		{"negative overlap", 100, -1},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewWindowChunker(tc.size, tc.overlap, 10, 100)
			if !errors.Is(err, domain.ErrConfiguration) {
				t.Errorf("expected ErrConfiguration, got %v", err)
			}
		})
	}
}

func TestWindowChunkerEmptyText(t *testing.T) {
	c, err := NewWindowChunker(450, 60, 100, 100)
	if err != nil {
		t.Fatal(err)
	}

	chunks, err := c.Chunk(testArticle(""))
	if err != nil {
		t.Fatal(err)
	}
	if len(chunks) != 0 {
		t.Errorf("expected no chunks for empty text, got %d", len(chunks))
	}
}

// A 1000-rune article without any delimiter must produce windows at the
// raw step offsets: step = 450-60 = 390, so starts 0, 390, 780 and a
// final shortened window of 220 runes.
func TestWindowChunkerStepFormula(t *testing.T) {
	c, err := NewWindowChunker(450, 60, 100, 100)
	if err != nil {
		t.Fatal(err)
	}

	text := strings.Repeat("あ", 1000)
	chunks, err := c.Chunk(testArticle(text))
	if err != nil {
		t.Fatal(err)
	}

	wantStarts := []int{0, 390, 780}
	wantEnds := []int{450, 840, 1000}

	if len(chunks) != len(wantStarts) {
		t.Fatalf("expected %d chunks, got %d", len(wantStarts), len(chunks))
	}
	for i, ch := range chunks {
		if ch.StartChar != wantStarts[i] || ch.EndChar != wantEnds[i] {
			t.Errorf("chunk %d: range [%d,%d), want [%d,%d)", i, ch.StartChar, ch.EndChar, wantStarts[i], wantEnds[i])
		}
		if ch.ChunkID != i {
			t.Errorf("chunk %d: ordinal %d", i, ch.ChunkID)
		}
	}

	last := chunks[len(chunks)-1]
	if got := last.EndChar - last.StartChar; got != 220 {
		t.Errorf("final window length %d, want 220", got)
	}
}

// Before drop-filtering, windows must cover the text with consecutive
// ranges overlapping by exactly the configured overlap (except the
// final, shorter window).
func TestWindowChunkerCoverageAndOverlap(t *testing.T) {
	const size, overlap = 50, 10
	c, err := NewWindowChunker(size, overlap, 1, 5)
	if err != nil {
		t.Fatal(err)
	}

	text := strings.Repeat("x", 333)
	chunks, err := c.Chunk(testArticle(text))
	if err != nil {
		t.Fatal(err)
	}
	if len(chunks) < 2 {
		t.Fatalf("expected several chunks, got %d", len(chunks))
	}

	if chunks[0].StartChar != 0 {
		t.Errorf("first chunk starts at %d", chunks[0].StartChar)
	}
	if last := chunks[len(chunks)-1]; last.EndChar != 333 {
		t.Errorf("last chunk ends at %d, want 333", last.EndChar)
	}

	for i := 1; i < len(chunks); i++ {
		prev, cur := chunks[i-1], chunks[i]
		if cur.StartChar < prev.StartChar {
			t.Errorf("chunk %d starts before chunk %d", i, i-1)
		}
		got := prev.EndChar - cur.StartChar
		if got != overlap {
			t.Errorf("chunks %d/%d overlap by %d runes, want %d", i-1, i, got, overlap)
		}
	}
}

func TestWindowChunkerSnapsToSentenceBoundary(t *testing.T) {
	c, err := NewWindowChunker(30, 5, 1, 15)
	if err != nil {
		t.Fatal(err)
	}

	// A sentence terminator sits shortly before the raw cut at 30; the
	// first window must end just after it.
	text := strings.Repeat("あ", 24) + "。" + strings.Repeat("い", 50)
	chunks, err := c.Chunk(testArticle(text))
	if err != nil {
		t.Fatal(err)
	}
	if len(chunks) == 0 {
		t.Fatal("expected chunks")
	}

	if chunks[0].EndChar != 25 {
		t.Errorf("first window ends at %d, want 25 (after 。)", chunks[0].EndChar)
	}
	if !strings.HasSuffix(chunks[0].Text, "。") {
		t.Errorf("first chunk does not end at the sentence boundary: %q", chunks[0].Text)
	}
}

func TestWindowChunkerNoBoundaryInLookbackCutsRaw(t *testing.T) {
	c, err := NewWindowChunker(30, 5, 1, 10)
	if err != nil {
		t.Fatal(err)
	}

	// The only delimiter is outside the 10-rune lookback window.
	text := strings.Repeat("あ", 5) + "。" + strings.Repeat("い", 60)
	chunks, err := c.Chunk(testArticle(text))
	if err != nil {
		t.Fatal(err)
	}
	if chunks[0].EndChar != 30 {
		t.Errorf("first window ends at %d, want raw cut 30", chunks[0].EndChar)
	}
}

func TestWindowChunkerDropsShortWindows(t *testing.T) {
	c, err := NewWindowChunker(50, 10, 30, 5)
	if err != nil {
		t.Fatal(err)
	}

	// 60 runes: second window is 20 runes, below min length 30.
	text := strings.Repeat("x", 60)
	chunks, err := c.Chunk(testArticle(text))
	if err != nil {
		t.Fatal(err)
	}

	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk after drop-filtering, got %d", len(chunks))
	}
	for _, ch := range chunks {
		if n := len([]rune(ch.Text)); n < 30 {
			t.Errorf("chunk %s has trimmed length %d below minimum", ch.ID, n)
		}
	}
}

func TestWindowChunkerWhitespaceOnlyWindowDropped(t *testing.T) {
	c, err := NewWindowChunker(10, 2, 1, 3)
	if err != nil {
		t.Fatal(err)
	}

	chunks, err := c.Chunk(testArticle("          "))
	if err != nil {
		t.Fatal(err)
	}
	if len(chunks) != 0 {
		t.Errorf("expected whitespace-only windows to be dropped, got %d chunks", len(chunks))
	}
}

func TestWindowChunkerMetadata(t *testing.T) {
	c, err := NewWindowChunker(450, 60, 10, 100)
	if err != nil {
		t.Fatal(err)
	}

	art := testArticle("日本語のテキストです。" + strings.Repeat("内容", 300))
	chunks, err := c.Chunk(art)
	if err != nil {
		t.Fatal(err)
	}
	if len(chunks) == 0 {
		t.Fatal("expected chunks")
	}

	textLen := len([]rune(art.Text))
	for i, ch := range chunks {
		if want := fmt.Sprintf("chunk_a1_%d", i); ch.ID != want {
			t.Errorf("chunk %d: id %q, want %q", i, ch.ID, want)
		}
		if ch.ChunkID != i {
			t.Errorf("chunk %d: ordinal %d", i, ch.ChunkID)
		}
		if ch.Source != art.Source {
			t.Errorf("chunk %d: source %q", i, ch.Source)
		}
		if ch.ArticleTitle != art.Title {
			t.Errorf("chunk %d: title %q", i, ch.ArticleTitle)
		}
		if ch.StartChar < 0 || ch.EndChar <= ch.StartChar || ch.EndChar > textLen {
			t.Errorf("chunk %d: invalid range [%d,%d) for text of %d runes", i, ch.StartChar, ch.EndChar, textLen)
		}
	}
}
