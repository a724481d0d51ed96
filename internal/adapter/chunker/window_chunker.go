package chunker

import (
	"fmt"
	"strings"

	"github.com/RentoYabuki06/wikipedia-rag/internal/domain"
)

// preferredDelims are the cut-point candidates, in priority order.
// Japanese sentence terminators first, then clause punctuation, then
// their ASCII counterparts, then whitespace.
var preferredDelims = []rune{'。', '．', '、', '，', '！', '？', '.', '!', '?', ',', '\n', ' '}

// WindowChunker splits article text into overlapping fixed-length rune
// windows, snapping each cut to the nearest preceding sentence or
// clause boundary within the lookback distance.
type WindowChunker struct {
	size      int
	overlap   int
	minLength int
	lookback  int
}

// NewWindowChunker validates the chunking parameters. overlap must be
// smaller than size or the window could not advance.
func NewWindowChunker(size, overlap, minLength, lookback int) (*WindowChunker, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: chunk size must be positive, got %d", domain.ErrConfiguration, size)
	}
	if overlap < 0 {
		return nil, fmt.Errorf("%w: overlap must be non-negative, got %d", domain.ErrConfiguration, overlap)
	}
	if overlap >= size {
		return nil, fmt.Errorf("%w: overlap %d must be smaller than chunk size %d", domain.ErrConfiguration, overlap, size)
	}
	if minLength < 0 {
		minLength = 0
	}
	if lookback <= 0 {
		lookback = 100
	}
	return &WindowChunker{
		size:      size,
		overlap:   overlap,
		minLength: minLength,
		lookback:  lookback,
	}, nil
}

// Chunk splits the article text into chunks. Offsets are rune
// positions in article.Text. Windows whose trimmed text is empty or
// shorter than minLength are dropped without consuming an ordinal.
// Empty text yields no chunks and no error.
func (c *WindowChunker) Chunk(article domain.Article) ([]domain.Chunk, error) {
	var chunks []domain.Chunk

	text := []rune(article.Text)
	length := len(text)
	if length == 0 {
		return chunks, nil
	}

	start := 0
	ordinal := 0

	for start < length {
		target := start + c.size
		var end int
		if target >= length {
			end = length
		} else {
			split := c.findSplitPoint(text, target)
			if split > start {
				end = split
			} else {
				end = target
			}
		}

		trimmed := strings.TrimSpace(string(text[start:end]))
		if trimmed != "" && len([]rune(trimmed)) >= c.minLength {
			chunks = append(chunks, domain.Chunk{
				ID:           fmt.Sprintf("chunk_%s_%d", article.ID, ordinal),
				Source:       article.Source,
				ChunkID:      ordinal,
				Text:         trimmed,
				ArticleTitle: article.Title,
				StartChar:    start,
				EndChar:      end,
			})
			ordinal++
		}

		next := end - c.overlap
		if next <= start {
			next = end
		}
		start = next
	}

	return chunks, nil
}

// findSplitPoint searches the lookback window before target for the
// highest-priority delimiter and returns the position just after it.
// Returns target when no delimiter is found.
func (c *WindowChunker) findSplitPoint(text []rune, target int) int {
	searchStart := target - c.lookback
	if searchStart < 0 {
		searchStart = 0
	}
	segment := text[searchStart:target]

	for _, delim := range preferredDelims {
		for i := len(segment) - 1; i >= 0; i-- {
			if segment[i] == delim {
				return searchStart + i + 1
			}
		}
	}
	return target
}
