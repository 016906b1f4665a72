// Package bm25 provides an in-memory BM25 lexical index over chunks.
package bm25

import (
	"context"
	"math"
	"sync"

	"github.com/veldt-labs/quarry/internal/analysis"
	"github.com/veldt-labs/quarry/internal/core/domain"
	"github.com/veldt-labs/quarry/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var _ driven.LexicalIndex = (*Index)(nil)

// BM25 parameters.
const (
	k1 = 1.2
	b  = 0.75
)

type posting struct {
	chunk int
	count int
}

// Index is a simple in-memory BM25 index over the corpus chunk set.
// It is a pure function of the chunks passed to the last Rebuild.
type Index struct {
	mu          sync.RWMutex
	inverted    map[string][]posting
	chunkLength map[int]int
	totalLength int64
}

// New creates an empty index.
func New() *Index {
	return &Index{
		inverted:    make(map[string][]posting),
		chunkLength: make(map[int]int),
	}
}

// Rebuild replaces the index contents with the given chunks.
func (idx *Index) Rebuild(_ context.Context, chunks []domain.Chunk) error {
	inverted := make(map[string][]posting)
	chunkLength := make(map[int]int, len(chunks))
	var totalLength int64

	for _, c := range chunks {
		tokens := analysis.Tokenize(c.Content)
		if len(tokens) == 0 {
			continue
		}

		chunkLength[c.Index] = len(tokens)
		totalLength += int64(len(tokens))

		tf := make(map[string]int, len(tokens))
		for _, t := range tokens {
			tf[t]++
		}
		for t, count := range tf {
			inverted[t] = append(inverted[t], posting{chunk: c.Index, count: count})
		}
	}

	idx.mu.Lock()
	idx.inverted = inverted
	idx.chunkLength = chunkLength
	idx.totalLength = totalLength
	idx.mu.Unlock()

	return nil
}

// Score computes BM25 relevance per chunk for the given query tokens.
// Chunks sharing no query terms are absent from the returned map.
func (idx *Index) Score(_ context.Context, tokens []string) (map[int]float64, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	if len(idx.chunkLength) == 0 {
		return nil, domain.ErrEmptyIndex
	}

	scores := make(map[int]float64)
	avgLength := float64(idx.totalLength) / float64(len(idx.chunkLength))

	for _, t := range tokens {
		postings, ok := idx.inverted[t]
		if !ok {
			continue
		}

		idf := idx.idf(len(postings))

		for _, p := range postings {
			tf := float64(p.count)
			length := float64(idx.chunkLength[p.chunk])

			num := tf * (k1 + 1)
			denom := tf + k1*(1-b+b*(length/avgLength))
			scores[p.chunk] += idf * (num / denom)
		}
	}

	return scores, nil
}

// idf computes IDF = log(1 + (N - n + 0.5) / (n + 0.5)).
func (idx *Index) idf(df int) float64 {
	n := float64(len(idx.chunkLength))
	d := float64(df)
	return math.Log(1 + (n-d+0.5)/(d+0.5))
}

// Close releases resources.
func (idx *Index) Close() error {
	return nil
}
