package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all documents from the corpus",
	Long: `Discards every document, chunk and both derived indexes.
Clearing an already-empty corpus is a no-op.`,
	RunE: runClear,
}

func init() {
	rootCmd.AddCommand(clearCmd)
}

func runClear(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	eng, err := ensureEngine(ctx)
	if err != nil {
		return err
	}

	if err := eng.Clear(ctx); err != nil {
		return fmt.Errorf("clear failed: %w", err)
	}

	cmd.Println("Corpus cleared.")
	return nil
}
