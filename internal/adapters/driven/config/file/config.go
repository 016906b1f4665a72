package file

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/veldt-labs/quarry/internal/core/domain"
)

// Config is the on-disk configuration, stored as TOML in the quarry
// config directory.
type Config struct {
	Engine    EngineSection    `toml:"engine"`
	Embedding EmbeddingSection `toml:"embedding"`
	Ollama    OllamaSection    `toml:"ollama"`
	OpenAI    OpenAISection    `toml:"openai"`

	path string
}

// EngineSection holds the retrieval engine parameters.
type EngineSection struct {
	MaxDocuments   int     `toml:"max_documents"`
	ChunkSize      int     `toml:"chunk_size"`
	ChunkOverlap   int     `toml:"chunk_overlap"`
	LexicalWeight  float64 `toml:"lexical_weight"`
	SemanticWeight float64 `toml:"semantic_weight"`
	TopKLexical    int     `toml:"top_k_lexical"`
	TopKSemantic   int     `toml:"top_k_semantic"`
	SnippetLength  int     `toml:"snippet_length"`
}

// EmbeddingSection selects which providers to try, in order.
type EmbeddingSection struct {
	Providers []string `toml:"providers"`
}

// OllamaSection configures the local Ollama provider.
type OllamaSection struct {
	BaseURL string `toml:"base_url"`
	Model   string `toml:"model"`
}

// OpenAISection configures the OpenAI provider.
type OpenAISection struct {
	APIKey string `toml:"api_key"`
	Model  string `toml:"model"`
}

// DefaultConfig returns a Config populated with the built-in defaults.
func DefaultConfig() Config {
	ec := domain.DefaultEngineConfig()
	return Config{
		Engine: EngineSection{
			MaxDocuments:   ec.MaxDocuments,
			ChunkSize:      ec.ChunkSize,
			ChunkOverlap:   ec.ChunkOverlap,
			LexicalWeight:  ec.LexicalWeight,
			SemanticWeight: ec.SemanticWeight,
			TopKLexical:    ec.TopKLexical,
			TopKSemantic:   ec.TopKSemantic,
			SnippetLength:  ec.SnippetLength,
		},
		Embedding: EmbeddingSection{
			Providers: []string{"ollama", "openai"},
		},
		Ollama: OllamaSection{
			BaseURL: "http://localhost:11434",
			Model:   "nomic-embed-text",
		},
		OpenAI: OpenAISection{
			Model: "text-embedding-3-small",
		},
	}
}

// Load reads the configuration from configDir/config.toml, creating the
// directory if needed. If configDir is empty, defaults to ~/.quarry.
// A missing file yields the defaults.
func Load(configDir string) (*Config, error) {
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		configDir = filepath.Join(home, ".quarry")
	}

	if err := os.MkdirAll(configDir, 0700); err != nil {
		return nil, err
	}

	cfg := DefaultConfig()
	cfg.path = filepath.Join(configDir, "config.toml")

	data, err := os.ReadFile(cfg.path)
	if os.IsNotExist(err) {
		return &cfg, nil
	}
	if err != nil {
		return nil, err
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: parsing %s: %v", domain.ErrInvalidConfiguration, cfg.path, err)
	}
	return &cfg, nil
}

// Save persists the configuration to disk with restricted permissions,
// since it may contain an API key.
func (c *Config) Save() error {
	data, err := toml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(c.path, data, 0600)
}

// EngineConfig converts the engine section into the domain configuration.
func (c *Config) EngineConfig() domain.EngineConfig {
	return domain.EngineConfig{
		MaxDocuments:   c.Engine.MaxDocuments,
		ChunkSize:      c.Engine.ChunkSize,
		ChunkOverlap:   c.Engine.ChunkOverlap,
		LexicalWeight:  c.Engine.LexicalWeight,
		SemanticWeight: c.Engine.SemanticWeight,
		TopKLexical:    c.Engine.TopKLexical,
		TopKSemantic:   c.Engine.TopKSemantic,
		SnippetLength:  c.Engine.SnippetLength,
	}
}

// Path returns the configuration file path.
func (c *Config) Path() string {
	return c.path
}
