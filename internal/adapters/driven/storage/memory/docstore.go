// Package memory provides the in-memory corpus store.
package memory

import (
	"context"
	"sync"

	"github.com/veldt-labs/quarry/internal/core/domain"
	"github.com/veldt-labs/quarry/internal/core/ports/driven"
)

// Ensure DocumentStore implements the interfaces.
var (
	_ driven.DocumentStore = (*DocumentStore)(nil)
	_ driven.MetaStore     = (*DocumentStore)(nil)
)

// DocumentStore holds the corpus entirely in memory. Documents and chunks
// are kept in slices so insertion order is preserved; the engine depends on
// that order for deterministic tie-breaking.
type DocumentStore struct {
	mu         sync.RWMutex
	documents  []domain.Document
	chunks     []domain.Chunk
	model      string
	dimensions int
}

// NewDocumentStore creates an empty in-memory corpus store.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{}
}

// SaveDocument appends a document together with its chunks.
func (s *DocumentStore) SaveDocument(_ context.Context, doc domain.Document, chunks []domain.Chunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.documents = append(s.documents, doc)
	s.chunks = append(s.chunks, chunks...)
	return nil
}

// UpdateEmbeddings replaces stored embeddings, matched by global chunk index.
func (s *DocumentStore) UpdateEmbeddings(_ context.Context, chunks []domain.Chunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	byIndex := make(map[int][]float32, len(chunks))
	for _, c := range chunks {
		byIndex[c.Index] = c.Embedding
	}
	for i := range s.chunks {
		if embedding, ok := byIndex[s.chunks[i].Index]; ok {
			s.chunks[i].Embedding = embedding
		}
	}
	return nil
}

// Documents returns all documents in insertion order.
func (s *DocumentStore) Documents(_ context.Context) ([]domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Document, len(s.documents))
	copy(out, s.documents)
	return out, nil
}

// Document returns a single document by ID.
func (s *DocumentStore) Document(_ context.Context, id string) (domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, doc := range s.documents {
		if doc.ID == id {
			return doc, nil
		}
	}
	return domain.Document{}, domain.ErrNotFound
}

// Chunks returns all chunks ordered by global chunk index.
func (s *DocumentStore) Chunks(_ context.Context) ([]domain.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Chunk, len(s.chunks))
	copy(out, s.chunks)
	return out, nil
}

// Count returns the number of stored documents.
func (s *DocumentStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.documents), nil
}

// Clear discards all documents and chunks.
func (s *DocumentStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.documents = nil
	s.chunks = nil
	return nil
}

// GetModel returns the recorded embedding model metadata.
func (s *DocumentStore) GetModel(_ context.Context) (string, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.model == "" {
		return "", 0, domain.ErrNotFound
	}
	return s.model, s.dimensions, nil
}

// SetModel records the embedding model metadata.
func (s *DocumentStore) SetModel(_ context.Context, name string, dimensions int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.model = name
	s.dimensions = dimensions
	return nil
}

// Close releases resources.
func (s *DocumentStore) Close() error {
	return nil
}
