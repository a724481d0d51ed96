package corpus

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/RentoYabuki06/wikipedia-rag/internal/domain"
)

// maxArticleLine bounds one dataset record; full wiki articles run to
// a few hundred KB, so 16MB is generous.
const maxArticleLine = 16 << 20

// JSONLLoader reads a dataset dump with one article object per line
// (the wiki export format: id, title, text).
type JSONLLoader struct {
	path  string
	label string
}

func NewJSONLLoader(path, label string) *JSONLLoader {
	return &JSONLLoader{path: path, label: label}
}

type datasetRecord struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Text  string `json:"text"`
}

// Load reads up to maxArticles records (0 = unlimited), skipping
// entries with an empty title or text after normalization.
func (l *JSONLLoader) Load(ctx context.Context, maxArticles int) ([]domain.Article, error) {
	f, err := os.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("open dataset file: %w", err)
	}
	defer f.Close()

	var articles []domain.Article
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), maxArticleLine)

	line := 0
	for scanner.Scan() {
		line++
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if maxArticles > 0 && len(articles) >= maxArticles {
			break
		}

		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}

		var rec datasetRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			return nil, fmt.Errorf("corrupt dataset record at line %d: %w", line, err)
		}
		if rec.Title == "" {
			continue
		}

		text := NormalizeText(rec.Text)
		if text == "" {
			continue
		}

		id := rec.ID
		if id == "" {
			id = strconv.Itoa(line)
		}

		articles = append(articles, domain.Article{
			ID:     id,
			Title:  rec.Title,
			Text:   text,
			Source: l.label + ":" + rec.Title,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read dataset file: %w", err)
	}

	return articles, nil
}
