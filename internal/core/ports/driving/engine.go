package driving

import (
	"context"

	"github.com/veldt-labs/quarry/internal/core/domain"
)

// Engine exposes the hybrid retrieval engine to external actors.
type Engine interface {
	// AddDocument chunks, embeds and indexes one document of extracted plain
	// text. Fails with domain.ErrInvalidInput for empty text and
	// domain.ErrCapacityExceeded once the document limit is reached.
	AddDocument(ctx context.Context, text, filename string) (domain.AddResult, error)

	// AddDocuments appends a batch of documents, rebuilding the indexes once
	// at the end. Per-document failures are reported in the results slice;
	// valid documents are still added.
	AddDocuments(ctx context.Context, inputs []domain.DocumentInput) ([]domain.AddResult, error)

	// Search returns the fused, per-document deduplicated top-k results.
	// Fails with domain.ErrEmptyIndex when the corpus has zero documents.
	Search(ctx context.Context, query string, topK int) ([]domain.SearchResult, error)

	// Clear discards all documents, chunks and both derived indexes.
	// It always succeeds and is idempotent.
	Clear(ctx context.Context) error

	// Stats describes the current corpus and model.
	Stats(ctx context.Context) (domain.Stats, error)
}
