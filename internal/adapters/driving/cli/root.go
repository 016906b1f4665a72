// Package cli wires the engine behind cobra commands.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/veldt-labs/quarry/internal/adapters/driven/config/file"
	"github.com/veldt-labs/quarry/internal/adapters/driven/embedding"
	"github.com/veldt-labs/quarry/internal/adapters/driven/embedding/ollama"
	"github.com/veldt-labs/quarry/internal/adapters/driven/embedding/openai"
	"github.com/veldt-labs/quarry/internal/adapters/driven/index/bm25"
	"github.com/veldt-labs/quarry/internal/adapters/driven/index/flat"
	"github.com/veldt-labs/quarry/internal/adapters/driven/storage/memory"
	"github.com/veldt-labs/quarry/internal/adapters/driven/storage/sqlite"
	"github.com/veldt-labs/quarry/internal/core/ports/driven"
	"github.com/veldt-labs/quarry/internal/core/ports/driving"
	"github.com/veldt-labs/quarry/internal/core/services"
	"github.com/veldt-labs/quarry/internal/logger"
	"github.com/veldt-labs/quarry/internal/normalisers"
	"github.com/veldt-labs/quarry/internal/normalisers/markdown"
	"github.com/veldt-labs/quarry/internal/normalisers/plaintext"
)

var version = "0.1.0"

var (
	flagVerbose   bool
	flagConfigDir string
	flagDataDir   string
	flagInMemory  bool
)

// engine is built lazily by ensureEngine; tests inject their own.
var (
	engine   driving.Engine
	teardown []func()
)

// registry routes raw files to text extraction by extension.
var registry = normalisers.NewRegistry(plaintext.New(), markdown.New())

var rootCmd = &cobra.Command{
	Use:   "quarry",
	Short: "Hybrid document search from your terminal",
	Long: `Quarry indexes local documents and searches them by combining
keyword (BM25) and semantic (embedding) relevance.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(flagVerbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "verbose logging to stderr")
	rootCmd.PersistentFlags().StringVar(&flagConfigDir, "config-dir", "", "configuration directory (default ~/.quarry)")
	rootCmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", "", "corpus data directory (default ~/.quarry/data)")
	rootCmd.PersistentFlags().BoolVar(&flagInMemory, "memory", false, "keep the corpus in memory only")
}

// Execute runs the root command. Ctrl-C cancels the command context, which
// stops long-running commands like watch.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	defer runTeardown()
	return rootCmd.ExecuteContext(ctx)
}

func runTeardown() {
	for _, fn := range teardown {
		fn()
	}
	teardown = nil
}

// ensureEngine builds the full stack on first use: config, corpus store,
// embedding provider selection and both indexes, then hydrates from disk.
func ensureEngine(ctx context.Context) (driving.Engine, error) {
	if engine != nil {
		return engine, nil
	}

	cfg, err := file.Load(flagConfigDir)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	var (
		store driven.DocumentStore
		meta  driven.MetaStore
	)
	if flagInMemory {
		m := memory.NewDocumentStore()
		store, meta = m, m
	} else {
		s, err := sqlite.NewStore(flagDataDir)
		if err != nil {
			return nil, fmt.Errorf("opening corpus store: %w", err)
		}
		teardown = append(teardown, func() { _ = s.Close() })
		store, meta = s, s
	}

	embedder, err := selectEmbedder(ctx, cfg)
	if err != nil {
		return nil, err
	}
	teardown = append(teardown, func() { _ = embedder.Close() })
	logger.Info("Embedding provider: %s (%d dimensions)", embedder.ModelName(), embedder.Dimensions())

	eng, err := services.NewEngine(cfg.EngineConfig(), store, meta, embedder, bm25.New(), flat.New())
	if err != nil {
		return nil, err
	}
	if err := eng.Load(ctx); err != nil {
		return nil, fmt.Errorf("loading corpus: %w", err)
	}

	engine = eng
	return engine, nil
}

// selectEmbedder builds a candidate per configured provider and picks the
// first one that answers a ping.
func selectEmbedder(ctx context.Context, cfg *file.Config) (driven.EmbeddingService, error) {
	var candidates []embedding.Candidate

	for _, provider := range cfg.Embedding.Providers {
		switch provider {
		case "ollama":
			ollamaCfg := ollama.Config{
				BaseURL: cfg.Ollama.BaseURL,
				Model:   cfg.Ollama.Model,
			}
			candidates = append(candidates, embedding.Candidate{
				Name: "ollama/" + cfg.Ollama.Model,
				New: func() (driven.EmbeddingService, error) {
					return ollama.NewEmbeddingService(ollamaCfg), nil
				},
			})
		case "openai":
			if cfg.OpenAI.APIKey == "" {
				logger.Debug("Skipping openai provider: no API key configured")
				continue
			}
			openaiCfg := openai.Config{
				APIKey: cfg.OpenAI.APIKey,
				Model:  cfg.OpenAI.Model,
			}
			candidates = append(candidates, embedding.Candidate{
				Name: "openai/" + cfg.OpenAI.Model,
				New: func() (driven.EmbeddingService, error) {
					return openai.NewEmbeddingService(openaiCfg)
				},
			})
		default:
			logger.Warn("Unknown embedding provider %q in config, skipping", provider)
		}
	}

	return embedding.Select(ctx, candidates)
}

// extractText reads a file and runs it through the normaliser for its
// extension.
func extractText(path string) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	n := registry.ForExtension(strings.ToLower(filepath.Ext(path)))
	return n.Normalise(content)
}
