package cli

import (
	"fmt"
	"os"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/RentoYabuki06/wikipedia-rag/config"
	"github.com/RentoYabuki06/wikipedia-rag/internal/adapter/chunker"
	"github.com/RentoYabuki06/wikipedia-rag/internal/adapter/embedding"
	"github.com/RentoYabuki06/wikipedia-rag/internal/adapter/index"
	"github.com/RentoYabuki06/wikipedia-rag/internal/port"
	"github.com/RentoYabuki06/wikipedia-rag/internal/usecase"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Chunk, embed and index the ingested corpus",
	Long: `Build the retrieval artifacts from the ingested corpus: split every
article into overlapping windows, embed each window as a passage, and
write the chunk metadata file and the vector index side by side. Line i
of the metadata file always describes vector i of the index.

Examples:
  wikirag build
  wikirag build --artifacts ./out`,
	RunE: runBuild,
}

func init() {
	rootCmd.AddCommand(buildCmd)
}

func runBuild(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	log := GetLogger()

	if _, err := os.Stat(cfg.CorpusDBPath()); os.IsNotExist(err) {
		return fmt.Errorf("no corpus found. Run 'wikirag ingest' first")
	}

	st, err := openArticleStore(cfg)
	if err != nil {
		return fmt.Errorf("failed to open corpus store: %w", err)
	}
	defer st.Close()

	articles, err := st.ListArticles()
	if err != nil {
		return fmt.Errorf("failed to list articles: %w", err)
	}
	if len(articles) == 0 {
		return fmt.Errorf("corpus is empty. Run 'wikirag ingest' first")
	}

	ck, err := chunker.NewWindowChunker(
		cfg.Chunking.Size,
		cfg.Chunking.Overlap,
		cfg.Chunking.MinLength,
		cfg.Chunking.Lookback,
	)
	if err != nil {
		return fmt.Errorf("invalid chunking config: %w", err)
	}

	embedder, err := newEmbedder(cfg)
	if err != nil {
		return fmt.Errorf("failed to create embedder: %w", err)
	}

	idx := index.NewFlatIndex(embedder.Dimension())

	fmt.Printf("Building index from %d articles (model: %s)...\n", len(articles), embedder.ModelName())

	var bar *progressbar.ProgressBar
	progress := func(processed, total int) {
		if bar == nil {
			bar = progressbar.NewOptions(total,
				progressbar.OptionEnableColorCodes(true),
				progressbar.OptionShowBytes(false),
				progressbar.OptionSetWidth(40),
				progressbar.OptionShowCount(),
				progressbar.OptionSetDescription("[cyan]Embedding[reset]"),
				progressbar.OptionOnCompletion(func() {
					fmt.Println()
				}),
			)
		}
		bar.Set(processed)
	}

	builder := usecase.NewIndexBuilder(ck, embedder, idx, cfg.Embedding.BatchSize, log, progress)

	stats, err := builder.Build(cmd.Context(), articles, cfg.ChunksPath(), cfg.IndexPath())
	if err != nil {
		return fmt.Errorf("build failed: %w", err)
	}

	if err := st.UpdateStats(stats); err != nil {
		return fmt.Errorf("failed to record corpus stats: %w", err)
	}

	fmt.Printf("\nBuild complete:\n")
	fmt.Printf("  Articles:  %d\n", stats.Articles)
	fmt.Printf("  Chunks:    %d\n", stats.Chunks)
	fmt.Printf("  Vectors:   %d\n", stats.Vectors)
	fmt.Printf("  Dimension: %d\n", stats.Dimension)
	fmt.Printf("\nArtifacts:\n")
	fmt.Printf("  %s\n", cfg.ChunksPath())
	fmt.Printf("  %s\n", cfg.IndexPath())
	return nil
}

// newEmbedder builds the configured embedding encoder. The mock
// provider keeps the pipeline runnable without network access.
func newEmbedder(cfg *config.Config) (port.Embedder, error) {
	var backend embedding.Backend
	switch cfg.Embedding.Provider {
	case "openai":
		b, err := embedding.NewOpenAIBackend(cfg.Embedding.APIKeyEnv, cfg.Embedding.Model)
		if err != nil {
			return nil, err
		}
		backend = b
	case "mock":
		backend = embedding.NewMockBackend(cfg.Embedding.Dimension)
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", cfg.Embedding.Provider)
	}
	return embedding.NewEncoder(backend), nil
}
