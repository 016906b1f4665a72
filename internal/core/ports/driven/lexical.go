package driven

import (
	"context"

	"github.com/veldt-labs/quarry/internal/core/domain"
)

// LexicalIndex provides keyword relevance scoring over chunks.
// It is a pure function of the current chunk set: Rebuild replaces the whole
// index, which is acceptable at the small corpus sizes in scope.
type LexicalIndex interface {
	// Rebuild replaces the index contents with the given chunks.
	// Rebuilding with no chunks empties the index.
	Rebuild(ctx context.Context, chunks []domain.Chunk) error

	// Score computes a relevance score per chunk for the given query tokens,
	// keyed by global chunk index. Chunks sharing no query terms are absent
	// from the result. Fails with domain.ErrEmptyIndex before any chunks
	// exist; callers must treat that as "no lexical candidates".
	Score(ctx context.Context, tokens []string) (map[int]float64, error)

	// Close releases resources.
	Close() error
}
