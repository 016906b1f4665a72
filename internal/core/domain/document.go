package domain

import "time"

// Document represents one indexed document.
// It is the canonical representation after text extraction.
type Document struct {
	// ID is the unique identifier for the document.
	ID string

	// Filename is the original name of the supplied file.
	Filename string

	// Content is the full extracted text before chunking.
	Content string

	// Position is the insertion order within the corpus.
	// It is the deterministic tie-breaker when fused scores are equal.
	Position int

	// ChunkCount is the number of chunks produced from Content.
	ChunkCount int

	// CreatedAt is when the document was added.
	CreatedAt time.Time
}

// Chunk represents a searchable unit within a document.
// Documents are split into overlapping fixed-size windows; the chunk's
// global index is the row key shared by the lexical and vector indexes.
type Chunk struct {
	// Index is the global chunk index, unique across the corpus.
	Index int

	// DocumentID links to the owning Document.
	DocumentID string

	// Ordinal is the position within the owning document.
	Ordinal int

	// Start and End are byte offsets into the document content such that
	// Content == document.Content[Start:End].
	Start int
	End   int

	// Content is the chunk text, overlapping the preceding chunk.
	Content string

	// Embedding is the L2-normalized vector representation. It is populated
	// lazily, once the chunk has been embedded.
	Embedding []float32
}
