package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/RentoYabuki06/wikipedia-rag/internal/domain"
)

var statsJSON bool

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show corpus and index statistics",
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "output as JSON")
}

func runStats(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	var stats domain.CorpusStats

	if _, err := os.Stat(cfg.CorpusDBPath()); err == nil {
		st, err := openArticleStore(cfg)
		if err != nil {
			return fmt.Errorf("failed to open corpus store: %w", err)
		}
		defer st.Close()

		stats, err = st.GetStats()
		if err != nil {
			return fmt.Errorf("failed to read stats: %w", err)
		}

		// The live article count may exceed the last build.
		if n, err := st.CountArticles(); err == nil {
			stats.Articles = n
		}
	}

	if statsJSON {
		output, err := json.MarshalIndent(stats, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(output))
		return nil
	}

	fmt.Printf("Corpus:\n")
	fmt.Printf("  Articles:  %d\n", stats.Articles)
	fmt.Printf("Index:\n")
	fmt.Printf("  Chunks:    %d\n", stats.Chunks)
	fmt.Printf("  Vectors:   %d\n", stats.Vectors)
	fmt.Printf("  Dimension: %d\n", stats.Dimension)

	if _, err := os.Stat(cfg.IndexPath()); os.IsNotExist(err) {
		fmt.Println("\nNo index built yet. Run 'wikirag build'.")
	}
	return nil
}
