package cli

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/RentoYabuki06/wikipedia-rag/config"
	"github.com/RentoYabuki06/wikipedia-rag/internal/adapter/cache"
	"github.com/RentoYabuki06/wikipedia-rag/internal/adapter/generation"
	"github.com/RentoYabuki06/wikipedia-rag/internal/adapter/index"
	"github.com/RentoYabuki06/wikipedia-rag/internal/adapter/retriever"
	"github.com/RentoYabuki06/wikipedia-rag/internal/adapter/store"
	"github.com/RentoYabuki06/wikipedia-rag/internal/domain"
	"github.com/RentoYabuki06/wikipedia-rag/internal/port"
	"github.com/RentoYabuki06/wikipedia-rag/internal/usecase"
)

var (
	queryText        string
	queryTopK        int
	queryTopN        int
	queryNoRerank    bool
	queryJSON        bool
	queryAnswer      bool
	queryInteractive bool
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Retrieve answer context for a question",
	Long: `Embed the question, search the vector index, and print the top
context chunks. Reranking runs when enabled in config and the reranker
loaded; otherwise results keep their vector-similarity order.

Examples:
  wikirag query -q "日本一高い山は？"
  wikirag query -q "琵琶湖の面積は？" --top-k 10 --top-n 5 --json
  wikirag query -q "富士山の標高は？" --answer
  wikirag query -i                      # Interactive session`,
	RunE: runQuery,
}

func init() {
	rootCmd.AddCommand(queryCmd)
	queryCmd.Flags().StringVarP(&queryText, "question", "q", "", "question to retrieve context for")
	queryCmd.Flags().IntVarP(&queryTopK, "top-k", "k", 0, "vector search candidates (default from config)")
	queryCmd.Flags().IntVarP(&queryTopN, "top-n", "n", 0, "final context size (default from config)")
	queryCmd.Flags().BoolVar(&queryNoRerank, "no-rerank", false, "skip reranking even if enabled")
	queryCmd.Flags().BoolVar(&queryJSON, "json", false, "output as JSON")
	queryCmd.Flags().BoolVar(&queryAnswer, "answer", false, "generate an answer from the retrieved context")
	queryCmd.Flags().BoolVarP(&queryInteractive, "interactive", "i", false, "read questions from stdin")
}

func runQuery(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	log := GetLogger()

	if queryText == "" && !queryInteractive {
		return fmt.Errorf("specify a question with -q or start an interactive session with -i")
	}

	if _, err := os.Stat(cfg.IndexPath()); os.IsNotExist(err) {
		return fmt.Errorf("no index found. Run 'wikirag build' first")
	}

	chunks, err := store.LoadChunks(cfg.ChunksPath())
	if err != nil {
		return fmt.Errorf("failed to load chunk metadata: %w", err)
	}

	embedder, err := newEmbedder(cfg)
	if err != nil {
		return fmt.Errorf("failed to create embedder: %w", err)
	}

	idx := index.NewFlatIndex(embedder.Dimension())
	if err := idx.Load(cfg.IndexPath()); err != nil {
		return fmt.Errorf("failed to load index: %w", err)
	}

	reranker := newReranker(cfg, log)

	r, err := usecase.NewRetriever(embedder, idx, chunks, reranker, log)
	if err != nil {
		return fmt.Errorf("failed to assemble retriever: %w", err)
	}

	var gen port.Generator
	if queryAnswer {
		gen, err = generation.NewGenerator(
			cfg.Generation.APIKeyEnv,
			cfg.Generation.Model,
			cfg.Generation.MaxTokens,
			cfg.Generation.MaxContexts,
			cfg.Generation.MaxContextChars,
		)
		if err != nil {
			return fmt.Errorf("failed to create generator: %w", err)
		}
	}

	opts := usecase.RetrieveOptions{
		TopK:      cfg.Retrieve.TopK,
		TopN:      cfg.Retrieve.TopN,
		UseRerank: cfg.Rerank.Enabled && !queryNoRerank,
	}
	if queryTopK > 0 {
		opts.TopK = queryTopK
	}
	if queryTopN > 0 {
		opts.TopN = queryTopN
	}

	if queryInteractive {
		return runInteractive(cmd, r, gen, opts)
	}

	set := r.Retrieve(cmd.Context(), queryText, opts)
	return printContextSet(cmd, set, gen)
}

// runInteractive serves questions from stdin, caching answered
// retrievals for the lifetime of the session.
func runInteractive(cmd *cobra.Command, r *usecase.Retriever, gen port.Generator, opts usecase.RetrieveOptions) error {
	qc := cache.NewQueryCache(128, 10*time.Minute)
	scanner := bufio.NewScanner(os.Stdin)

	fmt.Println("Enter questions, one per line (Ctrl-D to exit).")
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		question := strings.TrimSpace(scanner.Text())
		if question == "" {
			continue
		}

		set, hit := qc.Get(question, opts.TopK, opts.TopN, opts.UseRerank)
		if !hit {
			set = r.Retrieve(cmd.Context(), question, opts)
			qc.Put(question, opts.TopK, opts.TopN, opts.UseRerank, set)
		}

		if err := printContextSet(cmd, set, gen); err != nil {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		fmt.Println()
	}
	return scanner.Err()
}

func printContextSet(cmd *cobra.Command, set domain.ContextSet, gen port.Generator) error {
	if set.Failed() {
		return fmt.Errorf("retrieval failed at %s stage: %s", set.FailedStage, set.Error)
	}

	if queryJSON {
		output, err := json.MarshalIndent(set, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(output))
		if set.Empty() {
			return nil
		}
	} else {
		if set.Empty() {
			fmt.Println("No matching context found.")
			return nil
		}

		fmt.Printf("Found %d contexts for: %s (rerank: %v)\n\n", len(set.Candidates), set.Question, set.Stats.RerankUsed)
		for _, c := range set.Candidates {
			fmt.Printf("--- [%d] %s (vector: %.4f", c.FinalRank+1, c.Source, c.VectorScore)
			if set.Stats.RerankUsed {
				fmt.Printf(", rerank: %.4f", c.RerankScore)
			}
			fmt.Printf(") ---\n")
			text := c.Text
			if len([]rune(text)) > 300 {
				text = string([]rune(text)[:300]) + "..."
			}
			fmt.Println(text)
			fmt.Println()
		}
	}

	// Generation only ever sees non-empty context.
	if gen != nil {
		answer, err := gen.GenerateAnswer(cmd.Context(), set.Question, set.Candidates)
		if err != nil {
			return fmt.Errorf("answer generation failed: %w", err)
		}
		fmt.Printf("Answer:\n%s\n", answer)
	}
	return nil
}

// newReranker builds the configured cross-encoder. A missing API key
// degrades it to unavailable rather than failing the command; results
// then keep their vector order and report rerank_used=false.
func newReranker(cfg *config.Config, log *slog.Logger) port.Reranker {
	if !cfg.Rerank.Enabled {
		return retriever.NewCrossEncoder(nil, nil)
	}
	scorer, err := retriever.NewCohereScorer(cfg.Rerank.APIKeyEnv, cfg.Rerank.Model)
	if err != nil {
		log.Warn("reranker unavailable, falling back to vector order", "error", err)
		return retriever.NewCrossEncoder(nil, err)
	}
	return retriever.NewCrossEncoder(scorer, nil)
}
