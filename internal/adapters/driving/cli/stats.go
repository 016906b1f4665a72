package cli

import (
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show corpus statistics",
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	eng, err := ensureEngine(ctx)
	if err != nil {
		return err
	}

	stats, err := eng.Stats(ctx)
	if err != nil {
		return err
	}

	cmd.Printf("Documents:  %d / %d\n", stats.Documents, stats.MaxDocuments)
	cmd.Printf("Chunks:     %d\n", stats.Chunks)
	cmd.Printf("Model:      %s\n", stats.Model)
	cmd.Printf("Dimensions: %d\n", stats.Dimensions)
	return nil
}
