package driven

import (
	"context"

	"github.com/veldt-labs/quarry/internal/core/domain"
)

// DocumentStore is the corpus store: the ordered collection of documents and
// their chunks that both indexes are built over.
//
// Documents and Chunks must be returned in insertion order; the engine relies
// on that order for deterministic tie-breaking and for the global chunk index
// to be dense and stable.
type DocumentStore interface {
	// SaveDocument appends a document together with its chunks.
	SaveDocument(ctx context.Context, doc domain.Document, chunks []domain.Chunk) error

	// UpdateEmbeddings replaces the stored embeddings for the given chunks,
	// matched by global chunk index. Used when the embedding model changes
	// and the whole corpus is re-embedded.
	UpdateEmbeddings(ctx context.Context, chunks []domain.Chunk) error

	// Documents returns all documents in insertion order.
	Documents(ctx context.Context) ([]domain.Document, error)

	// Document returns a single document by ID, or domain.ErrNotFound.
	Document(ctx context.Context, id string) (domain.Document, error)

	// Chunks returns all chunks across all documents, ordered by global
	// chunk index.
	Chunks(ctx context.Context) ([]domain.Chunk, error)

	// Count returns the number of stored documents.
	Count(ctx context.Context) (int, error)

	// Clear discards all documents and chunks.
	Clear(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// MetaStore records which embedding model the stored chunk embeddings were
// produced with. Stores that do not persist between runs may return
// domain.ErrNotFound from GetModel.
type MetaStore interface {
	// GetModel returns the recorded model name and dimension.
	GetModel(ctx context.Context) (name string, dimensions int, err error)

	// SetModel records the model name and dimension.
	SetModel(ctx context.Context, name string, dimensions int) error
}
