package domain

// SearchResult represents a single search hit after fusion and
// per-document deduplication.
type SearchResult struct {
	// DocumentID is the owning document of the winning chunk.
	DocumentID string

	// Filename is the original name of the matched document.
	Filename string

	// Snippet is the winning chunk's text, trimmed for display.
	Snippet string

	// Score is the fused relevance score.
	Score float64
}

// AddResult reports the outcome of adding one document.
type AddResult struct {
	// DocumentID is the identifier assigned to the new document.
	DocumentID string

	// Filename is the original file name, echoed back for batch reporting.
	Filename string

	// ChunkCount is the number of chunks the document was split into.
	ChunkCount int

	// Err is set when this document was rejected during a batch addition.
	Err error
}

// DocumentInput is one document in a batch addition.
type DocumentInput struct {
	// Filename is the original file name.
	Filename string

	// Content is the extracted plain text.
	Content string
}

// Stats describes the current state of the engine.
type Stats struct {
	// Documents is the number of documents in the corpus.
	Documents int

	// Chunks is the number of chunks across all documents.
	Chunks int

	// MaxDocuments is the configured capacity.
	MaxDocuments int

	// Model is the active embedding model name.
	Model string

	// Dimensions is the embedding vector size.
	Dimensions int
}
