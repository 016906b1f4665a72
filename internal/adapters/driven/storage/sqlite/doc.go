// Package sqlite provides the persistent corpus store.
//
// Only raw corpus data is persisted: documents, their chunks and the chunk
// embeddings, plus the name and dimension of the model that produced those
// embeddings. Neither the lexical nor the vector index is ever written to
// disk; both are rebuilt in memory from this corpus when the engine starts.
package sqlite
