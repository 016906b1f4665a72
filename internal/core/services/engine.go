package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/veldt-labs/quarry/internal/analysis"
	"github.com/veldt-labs/quarry/internal/chunker"
	"github.com/veldt-labs/quarry/internal/core/domain"
	"github.com/veldt-labs/quarry/internal/core/ports/driven"
	"github.com/veldt-labs/quarry/internal/core/ports/driving"
	"github.com/veldt-labs/quarry/internal/logger"
	"github.com/veldt-labs/quarry/internal/vectormath"
)

// Ensure Engine implements the interface.
var _ driving.Engine = (*Engine)(nil)

// Engine is the hybrid retrieval engine. It owns the corpus store and both
// derived indexes, and rebuilds the indexes whenever the corpus changes.
//
// A single RWMutex serializes mutations; searches run concurrently under the
// read lock. The in-memory document and chunk caches mirror the store, with
// the invariant that chunks[i].Index == i.
type Engine struct {
	mu sync.RWMutex

	cfg      domain.EngineConfig
	splitter *chunker.Chunker

	store    driven.DocumentStore
	meta     driven.MetaStore
	embedder driven.EmbeddingService
	lexical  driven.LexicalIndex
	vector   driven.VectorIndex

	docs   []domain.Document
	chunks []domain.Chunk
}

// NewEngine creates the engine. The configuration is validated once here;
// all later operations may assume it is sound.
func NewEngine(
	cfg domain.EngineConfig,
	store driven.DocumentStore,
	meta driven.MetaStore,
	embedder driven.EmbeddingService,
	lexical driven.LexicalIndex,
	vector driven.VectorIndex,
) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	splitter, err := chunker.New(cfg.ChunkSize, cfg.ChunkOverlap)
	if err != nil {
		return nil, err
	}

	return &Engine{
		cfg:      cfg,
		splitter: splitter,
		store:    store,
		meta:     meta,
		embedder: embedder,
		lexical:  lexical,
		vector:   vector,
	}, nil
}

// Load hydrates the engine from the corpus store and rebuilds both indexes.
// If the stored embeddings were produced by a different model than the one
// currently active, the whole corpus is re-embedded first.
func (e *Engine) Load(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	docs, err := e.store.Documents(ctx)
	if err != nil {
		return fmt.Errorf("loading documents: %w", err)
	}
	chunks, err := e.store.Chunks(ctx)
	if err != nil {
		return fmt.Errorf("loading chunks: %w", err)
	}

	e.docs = docs
	e.chunks = chunks

	if len(docs) == 0 {
		logger.Debug("Corpus is empty, nothing to index")
		return nil
	}

	if err := e.reembedIfModelChanged(ctx); err != nil {
		return err
	}

	logger.Info("Loaded %d documents (%d chunks)", len(e.docs), len(e.chunks))
	return e.rebuildIndexes(ctx)
}

// reembedIfModelChanged compares the recorded model metadata against the
// active embedding service and re-embeds every chunk on a mismatch. Caller
// must hold the write lock.
func (e *Engine) reembedIfModelChanged(ctx context.Context) error {
	name, dims, err := e.meta.GetModel(ctx)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		// No recorded model; fall through to re-embed.
	case err != nil:
		return fmt.Errorf("reading model metadata: %w", err)
	case name == e.embedder.ModelName() && dims == e.embedder.Dimensions():
		return nil
	}

	logger.Info("Embedding model changed (was %q/%d, now %q/%d), re-embedding corpus",
		name, dims, e.embedder.ModelName(), e.embedder.Dimensions())

	texts := make([]string, len(e.chunks))
	for i, c := range e.chunks {
		texts[i] = c.Content
	}

	vectors, err := e.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return fmt.Errorf("re-embedding corpus: %w", err)
	}
	for i := range e.chunks {
		vectormath.NormalizeL2InPlace(vectors[i])
		e.chunks[i].Embedding = vectors[i]
	}

	if err := e.store.UpdateEmbeddings(ctx, e.chunks); err != nil {
		return fmt.Errorf("persisting embeddings: %w", err)
	}
	return e.meta.SetModel(ctx, e.embedder.ModelName(), e.embedder.Dimensions())
}

// AddDocument chunks, embeds, stores and indexes one document.
func (e *Engine) AddDocument(ctx context.Context, text, filename string) (domain.AddResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	result, err := e.add(ctx, domain.DocumentInput{Filename: filename, Content: text})
	if err != nil {
		return domain.AddResult{}, err
	}

	if err := e.meta.SetModel(ctx, e.embedder.ModelName(), e.embedder.Dimensions()); err != nil {
		return domain.AddResult{}, fmt.Errorf("recording model metadata: %w", err)
	}
	if err := e.rebuildIndexes(ctx); err != nil {
		return domain.AddResult{}, err
	}
	return result, nil
}

// AddDocuments appends a batch of documents and rebuilds the indexes once at
// the end. Documents that fail validation or exceed capacity are reported in
// their result's Err; the remaining documents are still added.
func (e *Engine) AddDocuments(ctx context.Context, inputs []domain.DocumentInput) ([]domain.AddResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	results := make([]domain.AddResult, len(inputs))
	added := 0

	for i, input := range inputs {
		result, err := e.add(ctx, input)
		if err != nil {
			logger.Warn("Skipping %q: %v", input.Filename, err)
			results[i] = domain.AddResult{Filename: input.Filename, Err: err}
			continue
		}
		results[i] = result
		added++
	}

	if added == 0 {
		return results, nil
	}

	if err := e.meta.SetModel(ctx, e.embedder.ModelName(), e.embedder.Dimensions()); err != nil {
		return results, fmt.Errorf("recording model metadata: %w", err)
	}
	if err := e.rebuildIndexes(ctx); err != nil {
		return results, err
	}
	return results, nil
}

// add validates, chunks, embeds and stores one document without rebuilding
// the indexes. Caller must hold the write lock.
func (e *Engine) add(ctx context.Context, input domain.DocumentInput) (domain.AddResult, error) {
	if strings.TrimSpace(input.Content) == "" {
		return domain.AddResult{}, fmt.Errorf("%w: document text is empty", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(input.Filename) == "" {
		return domain.AddResult{}, fmt.Errorf("%w: filename is empty", domain.ErrInvalidInput)
	}
	if len(e.docs) >= e.cfg.MaxDocuments {
		return domain.AddResult{}, fmt.Errorf("%w: corpus holds %d of %d documents",
			domain.ErrCapacityExceeded, len(e.docs), e.cfg.MaxDocuments)
	}

	doc := domain.Document{
		ID:        uuid.NewString(),
		Filename:  input.Filename,
		Content:   input.Content,
		Position:  len(e.docs),
		CreatedAt: time.Now().UTC(),
	}

	chunks := e.splitter.Chunk(doc.ID, input.Content)
	doc.ChunkCount = len(chunks)
	base := len(e.chunks)
	for i := range chunks {
		chunks[i].Index = base + i
	}
	logger.Debug("Chunked %q into %d chunks", doc.Filename, len(chunks))

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Content
	}
	vectors, err := e.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return domain.AddResult{}, fmt.Errorf("embedding %q: %w", doc.Filename, err)
	}
	if len(vectors) != len(chunks) {
		return domain.AddResult{}, fmt.Errorf("%w: got %d embeddings for %d chunks",
			domain.ErrInvalidInput, len(vectors), len(chunks))
	}
	for i := range chunks {
		vectormath.NormalizeL2InPlace(vectors[i])
		chunks[i].Embedding = vectors[i]
	}

	if err := e.store.SaveDocument(ctx, doc, chunks); err != nil {
		return domain.AddResult{}, fmt.Errorf("storing %q: %w", doc.Filename, err)
	}

	e.docs = append(e.docs, doc)
	e.chunks = append(e.chunks, chunks...)

	return domain.AddResult{
		DocumentID: doc.ID,
		Filename:   doc.Filename,
		ChunkCount: len(chunks),
	}, nil
}

// rebuildIndexes rebuilds both derived indexes from the chunk cache.
// Caller must hold the write lock.
func (e *Engine) rebuildIndexes(ctx context.Context) error {
	if err := e.lexical.Rebuild(ctx, e.chunks); err != nil {
		return fmt.Errorf("rebuilding lexical index: %w", err)
	}
	if err := e.vector.Rebuild(ctx, e.chunks); err != nil {
		return fmt.Errorf("rebuilding vector index: %w", err)
	}
	logger.Debug("Rebuilt indexes over %d chunks", len(e.chunks))
	return nil
}

// candidate is one chunk in the fusion pool with its raw per-signal scores.
type candidate struct {
	chunk    int
	lexical  float64
	semantic float64
	fused    float64
}

// Search runs the hybrid query: lexical and semantic candidates are pooled,
// every candidate is re-scored against the query embedding, both score sets
// are min-max normalized within this query, and the weighted sum is
// deduplicated to the best chunk per document.
func (e *Engine) Search(ctx context.Context, query string, topK int) ([]domain.SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: query is empty", domain.ErrInvalidInput)
	}
	if topK <= 0 {
		return nil, fmt.Errorf("%w: top k must be positive, got %d", domain.ErrInvalidInput, topK)
	}

	e.mu.RLock()
	defer e.mu.RUnlock()

	if len(e.docs) == 0 {
		return nil, fmt.Errorf("%w: no documents indexed", domain.ErrEmptyIndex)
	}

	logger.Section("Search")
	logger.Debug("Query: %q, top k: %d", query, topK)

	// Lexical candidates: best TopKLexical chunks by BM25.
	lexScores, err := e.lexical.Score(ctx, analysis.Tokenize(query))
	if err != nil && !errors.Is(err, domain.ErrEmptyIndex) {
		return nil, fmt.Errorf("lexical scoring: %w", err)
	}
	lexTop := topLexical(lexScores, e.cfg.TopKLexical)
	logger.Debug("Lexical candidates: %d", len(lexTop))

	// Semantic candidates: the fan-out widens with the requested result
	// count so deduplication still has enough documents to choose from.
	queryVec, err := e.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}
	vectormath.NormalizeL2InPlace(queryVec)

	fanout := e.cfg.TopKSemantic
	if k := topK * 5; k > fanout {
		fanout = k
	}
	hits, err := e.vector.Search(ctx, queryVec, fanout)
	if err != nil && !errors.Is(err, domain.ErrEmptyIndex) {
		return nil, fmt.Errorf("vector search: %w", err)
	}
	logger.Debug("Semantic candidates: %d", len(hits))

	// Union of both candidate sets, then an explicit semantic re-score of
	// every candidate so lexical-only hits also get a true similarity.
	pool := make(map[int]bool, len(lexTop)+len(hits))
	for _, idx := range lexTop {
		pool[idx] = true
	}
	for _, h := range hits {
		pool[h.ChunkIndex] = true
	}

	candidates := make([]candidate, 0, len(pool))
	for idx := range pool {
		candidates = append(candidates, candidate{
			chunk:    idx,
			lexical:  lexScores[idx],
			semantic: float64(vectormath.Dot(queryVec, e.chunks[idx].Embedding)),
		})
	}

	e.fuse(candidates)

	return e.collect(candidates, topK), nil
}

// fuse normalizes both score sets across the candidate pool and combines
// them with the configured weights.
func (e *Engine) fuse(candidates []candidate) {
	lex := make([]float64, len(candidates))
	sem := make([]float64, len(candidates))
	for i, c := range candidates {
		lex[i] = c.lexical
		sem[i] = c.semantic
	}
	normalizeScores(lex)
	normalizeScores(sem)

	for i := range candidates {
		candidates[i].fused = e.cfg.LexicalWeight*lex[i] + e.cfg.SemanticWeight*sem[i]
	}
}

// normalizeScores rescales scores to [0, 1] in place via min-max. When all
// scores are equal there is no spread to rescale: everything becomes 1 if
// the shared score is positive, 0 otherwise.
func normalizeScores(scores []float64) {
	if len(scores) == 0 {
		return
	}

	min, max := scores[0], scores[0]
	for _, s := range scores[1:] {
		if s < min {
			min = s
		}
		if s > max {
			max = s
		}
	}

	if max == min {
		value := 0.0
		if max > 0 {
			value = 1.0
		}
		for i := range scores {
			scores[i] = value
		}
		return
	}

	for i := range scores {
		scores[i] = (scores[i] - min) / (max - min)
	}
}

// collect deduplicates candidates to the best chunk per document, orders by
// fused score with document insertion order as the tie-breaker, and builds
// the final results. Caller must hold at least the read lock.
func (e *Engine) collect(candidates []candidate, topK int) []domain.SearchResult {
	// Lower chunk index wins ties within a document, keeping results stable
	// across runs.
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].chunk < candidates[j].chunk })

	best := make(map[string]candidate, len(candidates))
	for _, c := range candidates {
		docID := e.chunks[c.chunk].DocumentID
		if prev, ok := best[docID]; !ok || c.fused > prev.fused {
			best[docID] = c
		}
	}

	docByID := make(map[string]domain.Document, len(e.docs))
	for _, d := range e.docs {
		docByID[d.ID] = d
	}

	type scoredDoc struct {
		doc   domain.Document
		chunk int
		fused float64
	}
	ranked := make([]scoredDoc, 0, len(best))
	for docID, c := range best {
		ranked = append(ranked, scoredDoc{doc: docByID[docID], chunk: c.chunk, fused: c.fused})
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].fused != ranked[j].fused {
			return ranked[i].fused > ranked[j].fused
		}
		return ranked[i].doc.Position < ranked[j].doc.Position
	})

	if topK < len(ranked) {
		ranked = ranked[:topK]
	}

	results := make([]domain.SearchResult, len(ranked))
	for i, r := range ranked {
		results[i] = domain.SearchResult{
			DocumentID: r.doc.ID,
			Filename:   r.doc.Filename,
			Snippet:    snippet(e.chunks[r.chunk].Content, e.cfg.SnippetLength),
			Score:      r.fused,
		}
	}

	logger.Info("Results: %d documents", len(results))
	return results
}

// topLexical returns the chunk indexes of the k best lexical scores,
// breaking score ties by lower chunk index.
func topLexical(scores map[int]float64, k int) []int {
	indexes := make([]int, 0, len(scores))
	for idx := range scores {
		indexes = append(indexes, idx)
	}
	sort.Slice(indexes, func(i, j int) bool {
		if scores[indexes[i]] != scores[indexes[j]] {
			return scores[indexes[i]] > scores[indexes[j]]
		}
		return indexes[i] < indexes[j]
	})
	if k < len(indexes) {
		indexes = indexes[:k]
	}
	return indexes
}

// snippet trims chunk text for display, truncating at a rune boundary.
func snippet(text string, limit int) string {
	text = strings.TrimSpace(text)
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit]) + "..."
}

// Clear discards the corpus and both indexes. Clearing an empty engine is a
// no-op.
func (e *Engine) Clear(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.store.Clear(ctx); err != nil {
		return fmt.Errorf("clearing store: %w", err)
	}
	e.docs = nil
	e.chunks = nil

	logger.Info("Corpus cleared")
	return e.rebuildIndexes(ctx)
}

// Stats describes the current corpus and the active embedding model.
func (e *Engine) Stats(_ context.Context) (domain.Stats, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return domain.Stats{
		Documents:    len(e.docs),
		Chunks:       len(e.chunks),
		MaxDocuments: e.cfg.MaxDocuments,
		Model:        e.embedder.ModelName(),
		Dimensions:   e.embedder.Dimensions(),
	}, nil
}
