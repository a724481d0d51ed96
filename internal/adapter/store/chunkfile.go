package store

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/RentoYabuki06/wikipedia-rag/internal/domain"
)

// Chunk metadata is persisted as JSONL, one record per line in chunk
// emission order. The line position is the join key against the vector
// index: line i describes the vector stored at position i. That
// alignment is load-bearing and must survive every save/load cycle.

// maxChunkLine bounds a single metadata line; chunk texts are a few
// hundred runes, so 1MB leaves ample slack.
const maxChunkLine = 1 << 20

// SaveChunks writes chunks to path in the given order, creating the
// parent directory if needed.
func SaveChunks(path string, chunks []domain.Chunk) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create metadata dir: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create metadata file: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	enc := json.NewEncoder(w)
	for i, ch := range chunks {
		if err := enc.Encode(ch); err != nil {
			return fmt.Errorf("write chunk record %d: %w", i, err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("flush metadata file: %w", err)
	}
	return nil
}

// LoadChunks reads chunk records back in file order.
func LoadChunks(path string) ([]domain.Chunk, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open metadata file: %w", err)
	}
	defer f.Close()

	var chunks []domain.Chunk
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), maxChunkLine)

	line := 0
	for scanner.Scan() {
		line++
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}
		var ch domain.Chunk
		if err := json.Unmarshal(raw, &ch); err != nil {
			return nil, fmt.Errorf("corrupt chunk record at line %d: %w", line, err)
		}
		chunks = append(chunks, ch)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read metadata file: %w", err)
	}

	return chunks, nil
}
