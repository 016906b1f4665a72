package driven

import (
	"context"

	"github.com/veldt-labs/quarry/internal/core/domain"
)

// VectorIndex provides semantic similarity search over chunk embeddings,
// keyed by the same global chunk index as the lexical index.
type VectorIndex interface {
	// Rebuild replaces the index contents with the embeddings of the given
	// chunks. Every chunk must already carry an embedding of the same
	// dimension; a mismatch fails with domain.ErrDimensionMismatch.
	Rebuild(ctx context.Context, chunks []domain.Chunk) error

	// Search finds the k most similar chunks to the query vector, descending
	// by similarity. If k exceeds the number of indexed vectors, all are
	// returned. Fails with domain.ErrEmptyIndex before any vectors exist.
	Search(ctx context.Context, query []float32, k int) ([]VectorHit, error)

	// Close releases resources.
	Close() error
}

// VectorHit represents a similarity search result.
type VectorHit struct {
	// ChunkIndex is the matched chunk's global index.
	ChunkIndex int

	// Similarity is the cosine similarity score.
	Similarity float64
}
