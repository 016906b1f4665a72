package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/veldt-labs/quarry/internal/adapters/driven/config/file"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and edit the configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the active configuration",
	RunE:  runConfigShow,
}

var configSetKeyCmd = &cobra.Command{
	Use:   "set-key",
	Short: "Store the OpenAI API key",
	Long:  `Prompts for the OpenAI API key without echoing it, then saves it to the config file.`,
	RunE:  runConfigSetKey,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetKeyCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	cfg, err := file.Load(flagConfigDir)
	if err != nil {
		return err
	}

	cmd.Printf("Config file: %s\n\n", cfg.Path())
	cmd.Printf("[engine]\n")
	cmd.Printf("  max_documents   = %d\n", cfg.Engine.MaxDocuments)
	cmd.Printf("  chunk_size      = %d\n", cfg.Engine.ChunkSize)
	cmd.Printf("  chunk_overlap   = %d\n", cfg.Engine.ChunkOverlap)
	cmd.Printf("  lexical_weight  = %g\n", cfg.Engine.LexicalWeight)
	cmd.Printf("  semantic_weight = %g\n", cfg.Engine.SemanticWeight)
	cmd.Printf("  top_k_lexical   = %d\n", cfg.Engine.TopKLexical)
	cmd.Printf("  top_k_semantic  = %d\n", cfg.Engine.TopKSemantic)
	cmd.Printf("  snippet_length  = %d\n", cfg.Engine.SnippetLength)
	cmd.Printf("\n[embedding]\n")
	cmd.Printf("  providers = %v\n", cfg.Embedding.Providers)
	cmd.Printf("\n[ollama]\n")
	cmd.Printf("  base_url = %s\n", cfg.Ollama.BaseURL)
	cmd.Printf("  model    = %s\n", cfg.Ollama.Model)
	cmd.Printf("\n[openai]\n")
	cmd.Printf("  api_key = %s\n", maskAPIKey(cfg.OpenAI.APIKey))
	cmd.Printf("  model   = %s\n", cfg.OpenAI.Model)
	return nil
}

func runConfigSetKey(cmd *cobra.Command, _ []string) error {
	cfg, err := file.Load(flagConfigDir)
	if err != nil {
		return err
	}

	cmd.Print("OpenAI API key: ")
	key := readPassword()
	cmd.Println()

	if key == "" {
		return fmt.Errorf("no key entered")
	}

	cfg.OpenAI.APIKey = key
	if err := cfg.Save(); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	cmd.Printf("API key saved to %s\n", cfg.Path())
	return nil
}

//nolint:errcheck // CLI helper, error ignored for UX
func readPassword() string {
	// Read without echo when attached to a terminal
	if term.IsTerminal(int(os.Stdin.Fd())) {
		password, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err == nil {
			return strings.TrimSpace(string(password))
		}
	}
	// Fallback to regular input
	reader := bufio.NewReader(os.Stdin)
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func maskAPIKey(key string) string {
	if key == "" {
		return "(not set)"
	}
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
