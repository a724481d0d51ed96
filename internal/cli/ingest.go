package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/RentoYabuki06/wikipedia-rag/config"
	"github.com/RentoYabuki06/wikipedia-rag/internal/adapter/corpus"
	"github.com/RentoYabuki06/wikipedia-rag/internal/adapter/store"
	"github.com/RentoYabuki06/wikipedia-rag/internal/port"
)

var (
	ingestDataset     string
	ingestMaxArticles int
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [path]",
	Short: "Load corpus articles into the article store",
	Long: `Load articles from a directory of text files or a JSONL dataset into
the local corpus store. Text is whitespace-normalized on the way in.

Examples:
  wikirag ingest ./corpus                      # Directory of .txt/.md files
  wikirag ingest --dataset dump.jsonl          # JSONL with title/text records
  wikirag ingest ./corpus --max-articles 100   # Cap the corpus size`,
	Args: cobra.MaximumNArgs(1),
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
	ingestCmd.Flags().StringVar(&ingestDataset, "dataset", "", "JSONL dataset file instead of a directory")
	ingestCmd.Flags().IntVar(&ingestMaxArticles, "max-articles", 0, "maximum articles to load (0 = config default)")
}

func runIngest(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	log := GetLogger()

	var loader port.CorpusLoader
	switch {
	case ingestDataset != "":
		if _, err := os.Stat(ingestDataset); err != nil {
			return fmt.Errorf("dataset does not exist: %w", err)
		}
		loader = corpus.NewJSONLLoader(ingestDataset, cfg.Corpus.Label)
	case len(args) > 0:
		path, err := filepath.Abs(args[0])
		if err != nil {
			return fmt.Errorf("invalid path: %w", err)
		}
		info, err := os.Stat(path)
		if err != nil {
			return fmt.Errorf("path does not exist: %w", err)
		}
		if !info.IsDir() {
			return fmt.Errorf("path is not a directory: %s", path)
		}
		loader = corpus.NewDirLoader(path, cfg.Corpus.Label, cfg.Corpus.Includes, cfg.Corpus.Excludes)
	default:
		return fmt.Errorf("specify a corpus directory or --dataset")
	}

	maxArticles := cfg.Corpus.MaxArticles
	if ingestMaxArticles > 0 {
		maxArticles = ingestMaxArticles
	}

	articles, err := loader.Load(cmd.Context(), maxArticles)
	if err != nil {
		return fmt.Errorf("failed to load corpus: %w", err)
	}
	if len(articles) == 0 {
		return fmt.Errorf("no usable articles found")
	}

	if err := cfg.EnsureArtifactsDir(); err != nil {
		return fmt.Errorf("failed to create artifacts directory: %w", err)
	}

	st, err := openArticleStore(cfg)
	if err != nil {
		return fmt.Errorf("failed to open corpus store: %w", err)
	}
	defer st.Close()

	if err := st.PutArticles(articles); err != nil {
		return fmt.Errorf("failed to store articles: %w", err)
	}

	total, err := st.CountArticles()
	if err != nil {
		return fmt.Errorf("failed to count articles: %w", err)
	}

	log.Info("corpus ingested", "loaded", len(articles), "total", total)

	fmt.Printf("Ingest complete:\n")
	fmt.Printf("  Articles loaded: %d\n", len(articles))
	fmt.Printf("  Articles stored: %d\n", total)
	fmt.Printf("\nCorpus stored at: %s\n", cfg.CorpusDBPath())
	return nil
}

// openArticleStore opens the bbolt-backed corpus store shared by the
// ingest, build and stats commands.
func openArticleStore(cfg *config.Config) (port.ArticleStore, error) {
	return store.NewBoltStore(cfg.CorpusDBPath())
}
