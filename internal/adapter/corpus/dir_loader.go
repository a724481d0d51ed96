package corpus

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/RentoYabuki06/wikipedia-rag/internal/domain"
)

// DirLoader reads article files from a directory tree. Each matching
// file becomes one article: the file name (without extension) is the
// title, the relative path is the id.
type DirLoader struct {
	root     string
	label    string
	includes []string
	excludes []string
}

func NewDirLoader(root, label string, includes, excludes []string) *DirLoader {
	if len(includes) == 0 {
		includes = []string{"**/*.txt"}
	}
	return &DirLoader{
		root:     root,
		label:    label,
		includes: includes,
		excludes: excludes,
	}
}

// Load walks the tree and returns normalized articles in path order.
// Files that normalize to empty text are skipped. maxArticles caps the
// result; 0 means unlimited.
func (l *DirLoader) Load(ctx context.Context, maxArticles int) ([]domain.Article, error) {
	var paths []string
	err := filepath.WalkDir(l.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(l.root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if l.matches(rel) {
			paths = append(paths, rel)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk corpus dir: %w", err)
	}
	sort.Strings(paths)

	var articles []domain.Article
	for _, rel := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if maxArticles > 0 && len(articles) >= maxArticles {
			break
		}

		data, err := os.ReadFile(filepath.Join(l.root, rel))
		if err != nil {
			return nil, fmt.Errorf("read article file %s: %w", rel, err)
		}

		text := NormalizeText(string(data))
		if text == "" {
			continue
		}

		title := strings.TrimSuffix(filepath.Base(rel), filepath.Ext(rel))
		articles = append(articles, domain.Article{
			ID:     rel,
			Title:  title,
			Text:   text,
			Source: l.label + ":" + title,
		})
	}

	return articles, nil
}

func (l *DirLoader) matches(rel string) bool {
	included := false
	for _, pattern := range l.includes {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			included = true
			break
		}
	}
	if !included {
		return false
	}
	for _, pattern := range l.excludes {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return false
		}
	}
	return true
}
