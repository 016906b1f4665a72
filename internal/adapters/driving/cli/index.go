package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/veldt-labs/quarry/internal/core/domain"
)

var indexCmd = &cobra.Command{
	Use:   "index [files...]",
	Short: "Add documents to the search corpus",
	Long: `Extracts text from the given files, chunks it, embeds every chunk and
rebuilds both indexes. Plain text and Markdown files are supported; any
other extension is treated as plain text.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIndex,
}

func init() {
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	eng, err := ensureEngine(ctx)
	if err != nil {
		return err
	}

	inputs := make([]domain.DocumentInput, 0, len(args))
	for _, path := range args {
		text, err := extractText(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		inputs = append(inputs, domain.DocumentInput{
			Filename: filepath.Base(path),
			Content:  text,
		})
	}

	results, err := eng.AddDocuments(ctx, inputs)
	if err != nil {
		return fmt.Errorf("indexing failed: %w", err)
	}

	indexed := 0
	for _, r := range results {
		if r.Err != nil {
			cmd.Printf("  skipped %s: %v\n", r.Filename, r.Err)
			continue
		}
		cmd.Printf("  indexed %s (%d chunks)\n", r.Filename, r.ChunkCount)
		indexed++
	}

	stats, err := eng.Stats(ctx)
	if err != nil {
		return err
	}
	cmd.Printf("\n%d of %d files indexed. Corpus: %d/%d documents, %d chunks.\n",
		indexed, len(args), stats.Documents, stats.MaxDocuments, stats.Chunks)
	return nil
}
