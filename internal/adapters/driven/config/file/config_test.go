package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veldt-labs/quarry/internal/core/domain"
)

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, 10, cfg.Engine.MaxDocuments)
	assert.Equal(t, 500, cfg.Engine.ChunkSize)
	assert.Equal(t, 50, cfg.Engine.ChunkOverlap)
	assert.InDelta(t, 0.4, cfg.Engine.LexicalWeight, 1e-9)
	assert.InDelta(t, 0.6, cfg.Engine.SemanticWeight, 1e-9)
	assert.Equal(t, []string{"ollama", "openai"}, cfg.Embedding.Providers)
	assert.Equal(t, "nomic-embed-text", cfg.Ollama.Model)

	require.NoError(t, cfg.EngineConfig().Validate())
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	dir := t.TempDir()
	content := `
[engine]
max_documents = 25

[embedding]
providers = ["openai"]
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0600))

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, 25, cfg.Engine.MaxDocuments)
	// Untouched fields keep their defaults.
	assert.Equal(t, 500, cfg.Engine.ChunkSize)
	assert.Equal(t, []string{"openai"}, cfg.Embedding.Providers)
}

func TestLoad_MalformedFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte("not [valid toml"), 0600))

	_, err := Load(dir)
	assert.ErrorIs(t, err, domain.ErrInvalidConfiguration)
}

func TestSave_RoundTrip(t *testing.T) {
	dir := t.TempDir()

	cfg, err := Load(dir)
	require.NoError(t, err)

	cfg.OpenAI.APIKey = "sk-test"
	cfg.Engine.SnippetLength = 100
	require.NoError(t, cfg.Save())

	reloaded, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "sk-test", reloaded.OpenAI.APIKey)
	assert.Equal(t, 100, reloaded.Engine.SnippetLength)
}

func TestSave_RestrictedPermissions(t *testing.T) {
	dir := t.TempDir()

	cfg, err := Load(dir)
	require.NoError(t, err)
	require.NoError(t, cfg.Save())

	info, err := os.Stat(cfg.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}
