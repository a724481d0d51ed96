package cli

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/RentoYabuki06/wikipedia-rag/config"
)

var (
	cfgFile      string
	artifactsDir string
	verbose      bool
	cfg          *config.Config
	logger       *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "wikirag",
	Short: "Wikipedia RAG - chunk, embed and retrieve encyclopedia articles",
	Long: `wikirag builds a retrieval pipeline over a Wikipedia-style corpus:
articles are split into overlapping windows, embedded with role-prefixed
vectors, indexed for exact inner-product search, and optionally reranked
with a cross-encoder before being assembled into answer context.

Example usage:
  wikirag ingest ./corpus              # Load articles into the corpus store
  wikirag build                        # Chunk, embed and index the corpus
  wikirag query -q "日本一高い山は？"    # Retrieve context for a question
  wikirag stats                        # Show corpus and index statistics`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error

		if cfgFile != "" {
			cfg, err = config.Load(cfgFile)
		} else {
			wd, werr := os.Getwd()
			if werr != nil {
				return fmt.Errorf("failed to get working directory: %w", werr)
			}
			cfg, err = config.LoadFromDir(wd)
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		if artifactsDir != "" {
			cfg.Artifacts.Dir = artifactsDir
		}

		level := cfg.Logging.Level
		if verbose {
			level = "debug"
		}
		logger = newLogger(level)
		return nil
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./wikirag.yaml)")
	rootCmd.PersistentFlags().StringVar(&artifactsDir, "artifacts", "", "artifacts directory (overrides config)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

func GetConfig() *config.Config {
	return cfg
}

func GetLogger() *slog.Logger {
	return logger
}
