package driven

import "context"

// EmbeddingService generates vector embeddings from text.
//
// All chunk texts and all query texts must pass through the same model: the
// engine enforces a fixed dimension for the lifetime of the process and
// re-embeds the whole corpus if the model changes.
//
// Implementations may include:
//   - Ollama (nomic-embed-text, all-minilm)
//   - OpenAI (text-embedding-3-small, text-embedding-3-large)
type EmbeddingService interface {
	// Embed generates a vector embedding for the given text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts efficiently.
	// This is more efficient than calling Embed in a loop for large batches.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the embedding vector size (e.g., 384, 768, 1536).
	// This is determined by the model and must match the vector index.
	Dimensions() int

	// ModelName returns the name of the embedding model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight test
	// request. Used at startup when selecting between the primary and
	// secondary model.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
