// Package flat provides an exact brute-force vector index over chunk
// embeddings. At the corpus sizes in scope (tens of documents) exhaustive
// search is both simpler and faster than an approximate structure.
package flat

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/veldt-labs/quarry/internal/core/domain"
	"github.com/veldt-labs/quarry/internal/core/ports/driven"
	"github.com/veldt-labs/quarry/internal/vectormath"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

// row pairs a global chunk index with its stored vector.
type row struct {
	chunk  int
	vector []float32
}

// Index stores one L2-normalized vector per chunk and answers nearest
// neighbour queries by exhaustive inner-product scan, which equals cosine
// similarity over normalized vectors.
type Index struct {
	mu        sync.RWMutex
	rows      []row
	dimension int
}

// New creates an empty index. The dimension is fixed by the first Rebuild.
func New() *Index {
	return &Index{}
}

// Rebuild replaces the index contents with the embeddings of the given
// chunks. Vectors are normalized on the way in; chunks without an embedding
// are rejected, as are vectors of mixed dimension.
func (idx *Index) Rebuild(_ context.Context, chunks []domain.Chunk) error {
	rows := make([]row, 0, len(chunks))
	dimension := 0

	for _, c := range chunks {
		if len(c.Embedding) == 0 {
			return fmt.Errorf("%w: chunk %d has no embedding", domain.ErrInvalidInput, c.Index)
		}
		if dimension == 0 {
			dimension = len(c.Embedding)
		} else if len(c.Embedding) != dimension {
			return fmt.Errorf("%w: chunk %d has dimension %d, index has %d",
				domain.ErrDimensionMismatch, c.Index, len(c.Embedding), dimension)
		}

		vector := make([]float32, len(c.Embedding))
		copy(vector, c.Embedding)
		vectormath.NormalizeL2InPlace(vector)
		rows = append(rows, row{chunk: c.Index, vector: vector})
	}

	idx.mu.Lock()
	idx.rows = rows
	idx.dimension = dimension
	idx.mu.Unlock()

	return nil
}

// Search finds the k most similar chunks to the query vector, descending by
// cosine similarity. When k exceeds the number of indexed vectors, all are
// returned.
func (idx *Index) Search(_ context.Context, query []float32, k int) ([]driven.VectorHit, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	if len(idx.rows) == 0 {
		return nil, domain.ErrEmptyIndex
	}
	if len(query) != idx.dimension {
		return nil, fmt.Errorf("%w: query has dimension %d, index has %d",
			domain.ErrDimensionMismatch, len(query), idx.dimension)
	}
	if k <= 0 {
		return nil, nil
	}

	normalized := make([]float32, len(query))
	copy(normalized, query)
	vectormath.NormalizeL2InPlace(normalized)

	hits := make([]driven.VectorHit, 0, len(idx.rows))
	for _, r := range idx.rows {
		hits = append(hits, driven.VectorHit{
			ChunkIndex: r.chunk,
			Similarity: float64(vectormath.Dot(normalized, r.vector)),
		})
	}

	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].Similarity != hits[j].Similarity {
			return hits[i].Similarity > hits[j].Similarity
		}
		return hits[i].ChunkIndex < hits[j].ChunkIndex
	})

	if k < len(hits) {
		hits = hits[:k]
	}
	return hits, nil
}

// Close releases resources.
func (idx *Index) Close() error {
	return nil
}
