package services

import (
	"context"
	"fmt"
	"hash/fnv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veldt-labs/quarry/internal/adapters/driven/index/bm25"
	"github.com/veldt-labs/quarry/internal/adapters/driven/index/flat"
	"github.com/veldt-labs/quarry/internal/adapters/driven/storage/memory"
	"github.com/veldt-labs/quarry/internal/analysis"
	"github.com/veldt-labs/quarry/internal/core/domain"
)

// --- Mock implementations ---

// hashEmbedder is a deterministic bag-of-words embedder: each token is
// hashed into a bucket, so texts sharing tokens get similar vectors. Good
// enough to exercise the semantic path without a live model.
type hashEmbedder struct {
	name     string
	dims     int
	embedErr error
}

func newHashEmbedder() *hashEmbedder {
	return &hashEmbedder{name: "hash-embedder", dims: 64}
}

func (m *hashEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	v := make([]float32, m.dims)
	for _, tok := range analysis.Tokenize(text) {
		h := fnv.New32a()
		h.Write([]byte(tok))
		v[int(h.Sum32())%m.dims]++
	}
	return v, nil
}

func (m *hashEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, err := m.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (m *hashEmbedder) Dimensions() int              { return m.dims }
func (m *hashEmbedder) ModelName() string            { return m.name }
func (m *hashEmbedder) Ping(_ context.Context) error { return nil }
func (m *hashEmbedder) Close() error                 { return nil }

// --- Helpers ---

func testConfig() domain.EngineConfig {
	cfg := domain.DefaultEngineConfig()
	// Small windows so short test documents still produce several chunks.
	cfg.ChunkSize = 40
	cfg.ChunkOverlap = 10
	return cfg
}

func newTestEngine(t *testing.T, cfg domain.EngineConfig) (*Engine, *memory.DocumentStore, *hashEmbedder) {
	t.Helper()
	store := memory.NewDocumentStore()
	embedder := newHashEmbedder()
	engine, err := NewEngine(cfg, store, store, embedder, bm25.New(), flat.New())
	require.NoError(t, err)
	return engine, store, embedder
}

func addDoc(t *testing.T, e *Engine, filename, text string) domain.AddResult {
	t.Helper()
	result, err := e.AddDocument(context.Background(), text, filename)
	require.NoError(t, err)
	return result
}

const (
	mlText      = "machine learning models learn vector representations of text for semantic retrieval and ranking"
	cookingText = "slow cooked tomato sauce with garlic and fresh basil served over pasta"
	searchText  = "search engines combine keyword matching with learned ranking signals for relevance"
)

// --- Tests ---

func TestNewEngine_InvalidConfig(t *testing.T) {
	cfg := testConfig()
	cfg.LexicalWeight = 0.7 // weights no longer sum to 1

	store := memory.NewDocumentStore()
	_, err := NewEngine(cfg, store, store, newHashEmbedder(), bm25.New(), flat.New())
	assert.ErrorIs(t, err, domain.ErrInvalidConfiguration)
}

func TestAddDocument_RejectsEmptyText(t *testing.T) {
	engine, _, _ := newTestEngine(t, testConfig())

	_, err := engine.AddDocument(context.Background(), "   \n\t ", "empty.txt")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = engine.AddDocument(context.Background(), "actual text", "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestAddDocument_ChunksAndIndexes(t *testing.T) {
	engine, store, _ := newTestEngine(t, testConfig())
	ctx := context.Background()

	result := addDoc(t, engine, "ml.txt", mlText)
	assert.NotEmpty(t, result.DocumentID)
	assert.Greater(t, result.ChunkCount, 1, "text longer than the window must produce several chunks")

	chunks, err := store.Chunks(ctx)
	require.NoError(t, err)
	require.Len(t, chunks, result.ChunkCount)
	for i, c := range chunks {
		assert.Equal(t, i, c.Index)
		assert.NotEmpty(t, c.Embedding, "every stored chunk must be embedded")
	}

	// Model metadata is recorded alongside the first document.
	name, dims, err := store.GetModel(ctx)
	require.NoError(t, err)
	assert.Equal(t, "hash-embedder", name)
	assert.Equal(t, 64, dims)
}

func TestAddDocument_CapacityExceeded(t *testing.T) {
	cfg := testConfig()
	cfg.MaxDocuments = 2
	engine, _, _ := newTestEngine(t, cfg)
	ctx := context.Background()

	addDoc(t, engine, "one.txt", mlText)
	addDoc(t, engine, "two.txt", cookingText)

	_, err := engine.AddDocument(ctx, searchText, "three.txt")
	assert.ErrorIs(t, err, domain.ErrCapacityExceeded)

	// The rejected document must not have changed the corpus.
	stats, err := engine.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Documents)

	results, err := engine.Search(ctx, "machine learning", 5)
	require.NoError(t, err)
	for _, r := range results {
		assert.NotEqual(t, "three.txt", r.Filename)
	}
}

func TestAddDocuments_BatchReportsPerDocumentErrors(t *testing.T) {
	engine, _, _ := newTestEngine(t, testConfig())
	ctx := context.Background()

	results, err := engine.AddDocuments(ctx, []domain.DocumentInput{
		{Filename: "ml.txt", Content: mlText},
		{Filename: "empty.txt", Content: "   "},
		{Filename: "cooking.txt", Content: cookingText},
	})
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.NoError(t, results[0].Err)
	assert.ErrorIs(t, results[1].Err, domain.ErrInvalidInput)
	assert.NoError(t, results[2].Err)

	stats, err := engine.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Documents, "valid documents must survive a partial batch failure")

	// The indexes were rebuilt: search over the batch works immediately.
	_, err = engine.Search(ctx, "pasta", 5)
	assert.NoError(t, err)
}

func TestSearch_EmptyCorpus(t *testing.T) {
	engine, _, _ := newTestEngine(t, testConfig())

	_, err := engine.Search(context.Background(), "anything", 5)
	assert.ErrorIs(t, err, domain.ErrEmptyIndex)
}

func TestSearch_RejectsBadInput(t *testing.T) {
	engine, _, _ := newTestEngine(t, testConfig())
	addDoc(t, engine, "ml.txt", mlText)

	_, err := engine.Search(context.Background(), "   ", 5)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = engine.Search(context.Background(), "query", 0)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSearch_RanksTopicalDocumentFirst(t *testing.T) {
	engine, _, _ := newTestEngine(t, testConfig())
	ctx := context.Background()

	addDoc(t, engine, "ml.txt", mlText)
	addDoc(t, engine, "cooking.txt", cookingText)
	addDoc(t, engine, "search.txt", searchText)

	results, err := engine.Search(ctx, "machine learning models", 3)
	require.NoError(t, err)
	require.NotEmpty(t, results)

	assert.Equal(t, "ml.txt", results[0].Filename)
	for _, r := range results {
		assert.GreaterOrEqual(t, r.Score, 0.0)
		assert.LessOrEqual(t, r.Score, 1.0+1e-9)
		assert.NotEmpty(t, r.Snippet)
	}
}

func TestSearch_DeduplicatesToOneResultPerDocument(t *testing.T) {
	engine, _, _ := newTestEngine(t, testConfig())
	ctx := context.Background()

	// Repetition makes every chunk of the document match the query.
	repetitive := strings.Repeat("machine learning improves ranking. ", 12)
	addDoc(t, engine, "repeat.txt", repetitive)
	addDoc(t, engine, "cooking.txt", cookingText)

	results, err := engine.Search(ctx, "machine learning ranking", 10)
	require.NoError(t, err)

	seen := map[string]bool{}
	for _, r := range results {
		assert.False(t, seen[r.DocumentID], "document %s appears more than once", r.Filename)
		seen[r.DocumentID] = true
	}
}

func TestSearch_Deterministic(t *testing.T) {
	engine, _, _ := newTestEngine(t, testConfig())
	ctx := context.Background()

	addDoc(t, engine, "ml.txt", mlText)
	addDoc(t, engine, "cooking.txt", cookingText)
	addDoc(t, engine, "search.txt", searchText)

	first, err := engine.Search(ctx, "learned ranking", 3)
	require.NoError(t, err)
	second, err := engine.Search(ctx, "learned ranking", 3)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestSearch_TieBreaksByInsertionOrder(t *testing.T) {
	engine, _, _ := newTestEngine(t, testConfig())
	ctx := context.Background()

	// Identical content scores identically; insertion order must decide.
	addDoc(t, engine, "first.txt", cookingText)
	addDoc(t, engine, "second.txt", cookingText)

	results, err := engine.Search(ctx, "tomato sauce", 2)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "first.txt", results[0].Filename)
	assert.Equal(t, "second.txt", results[1].Filename)
	assert.Equal(t, results[0].Score, results[1].Score)
}

func TestSearch_PureLexicalAndPureSemanticWeights(t *testing.T) {
	for _, tt := range []struct {
		name     string
		lexical  float64
		semantic float64
	}{
		{"pure lexical", 1, 0},
		{"pure semantic", 0, 1},
	} {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			cfg.LexicalWeight = tt.lexical
			cfg.SemanticWeight = tt.semantic
			engine, _, _ := newTestEngine(t, cfg)
			ctx := context.Background()

			addDoc(t, engine, "ml.txt", mlText)
			addDoc(t, engine, "cooking.txt", cookingText)

			results, err := engine.Search(ctx, "garlic basil pasta", 2)
			require.NoError(t, err)
			require.NotEmpty(t, results)
			assert.Equal(t, "cooking.txt", results[0].Filename)
		})
	}
}

func TestSearch_TopKLimitsResults(t *testing.T) {
	engine, _, _ := newTestEngine(t, testConfig())
	ctx := context.Background()

	addDoc(t, engine, "ml.txt", mlText)
	addDoc(t, engine, "cooking.txt", cookingText)
	addDoc(t, engine, "search.txt", searchText)

	results, err := engine.Search(ctx, "ranking text relevance", 1)
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestSearch_SnippetTruncation(t *testing.T) {
	cfg := testConfig()
	cfg.ChunkSize = 200
	cfg.ChunkOverlap = 20
	cfg.SnippetLength = 30
	engine, _, _ := newTestEngine(t, cfg)
	ctx := context.Background()

	addDoc(t, engine, "ml.txt", mlText)

	results, err := engine.Search(ctx, "machine learning", 1)
	require.NoError(t, err)
	require.Len(t, results, 1)

	assert.True(t, strings.HasSuffix(results[0].Snippet, "..."))
	assert.LessOrEqual(t, len([]rune(results[0].Snippet)), 30+3)
}

func TestClear_IsIdempotent(t *testing.T) {
	engine, _, _ := newTestEngine(t, testConfig())
	ctx := context.Background()

	addDoc(t, engine, "ml.txt", mlText)

	require.NoError(t, engine.Clear(ctx))
	require.NoError(t, engine.Clear(ctx))

	stats, err := engine.Stats(ctx)
	require.NoError(t, err)
	assert.Zero(t, stats.Documents)
	assert.Zero(t, stats.Chunks)

	_, err = engine.Search(ctx, "machine learning", 5)
	assert.ErrorIs(t, err, domain.ErrEmptyIndex)
}

func TestStats(t *testing.T) {
	engine, _, _ := newTestEngine(t, testConfig())
	ctx := context.Background()

	result := addDoc(t, engine, "ml.txt", mlText)

	stats, err := engine.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Documents)
	assert.Equal(t, result.ChunkCount, stats.Chunks)
	assert.Equal(t, domain.DefaultMaxDocuments, stats.MaxDocuments)
	assert.Equal(t, "hash-embedder", stats.Model)
	assert.Equal(t, 64, stats.Dimensions)
}

func TestLoad_RestoresCorpusFromStore(t *testing.T) {
	store := memory.NewDocumentStore()
	embedder := newHashEmbedder()
	cfg := testConfig()

	first, err := NewEngine(cfg, store, store, embedder, bm25.New(), flat.New())
	require.NoError(t, err)
	ctx := context.Background()

	_, err = first.AddDocument(ctx, mlText, "ml.txt")
	require.NoError(t, err)

	// A fresh engine over the same store picks up where the first left off.
	second, err := NewEngine(cfg, store, store, embedder, bm25.New(), flat.New())
	require.NoError(t, err)
	require.NoError(t, second.Load(ctx))

	results, err := second.Search(ctx, "machine learning", 5)
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Equal(t, "ml.txt", results[0].Filename)
}

func TestLoad_ReembedsWhenModelChanges(t *testing.T) {
	store := memory.NewDocumentStore()
	cfg := testConfig()
	ctx := context.Background()

	first, err := NewEngine(cfg, store, store, newHashEmbedder(), bm25.New(), flat.New())
	require.NoError(t, err)
	_, err = first.AddDocument(ctx, mlText, "ml.txt")
	require.NoError(t, err)

	replacement := newHashEmbedder()
	replacement.name = "hash-embedder-v2"
	replacement.dims = 32

	second, err := NewEngine(cfg, store, store, replacement, bm25.New(), flat.New())
	require.NoError(t, err)
	require.NoError(t, second.Load(ctx))

	name, dims, err := store.GetModel(ctx)
	require.NoError(t, err)
	assert.Equal(t, "hash-embedder-v2", name)
	assert.Equal(t, 32, dims)

	chunks, err := store.Chunks(ctx)
	require.NoError(t, err)
	for _, c := range chunks {
		assert.Len(t, c.Embedding, 32, "stored embeddings must match the new model")
	}

	_, err = second.Search(ctx, "machine learning", 5)
	assert.NoError(t, err)
}

func TestLoad_EmptyStore(t *testing.T) {
	engine, _, _ := newTestEngine(t, testConfig())
	require.NoError(t, engine.Load(context.Background()))
}

func TestSearch_EmbeddingFailureSurfaces(t *testing.T) {
	engine, _, embedder := newTestEngine(t, testConfig())
	ctx := context.Background()

	addDoc(t, engine, "ml.txt", mlText)

	embedder.embedErr = fmt.Errorf("%w: model offline", domain.ErrModelUnavailable)
	_, err := engine.Search(ctx, "machine learning", 5)
	assert.ErrorIs(t, err, domain.ErrModelUnavailable)
}
