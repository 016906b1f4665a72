package memory

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veldt-labs/quarry/internal/core/domain"
)

func saveDoc(t *testing.T, s *DocumentStore, id string, chunkBase, chunkCount int) {
	t.Helper()
	doc := domain.Document{ID: id, Filename: id + ".txt", Content: "text"}
	chunks := make([]domain.Chunk, chunkCount)
	for i := range chunks {
		chunks[i] = domain.Chunk{
			Index:      chunkBase + i,
			DocumentID: id,
			Ordinal:    i,
			Content:    fmt.Sprintf("chunk %d of %s", i, id),
		}
	}
	require.NoError(t, s.SaveDocument(context.Background(), doc, chunks))
}

func TestSaveDocument_PreservesInsertionOrder(t *testing.T) {
	s := NewDocumentStore()
	ctx := context.Background()

	saveDoc(t, s, "doc-b", 0, 2)
	saveDoc(t, s, "doc-a", 2, 3)
	saveDoc(t, s, "doc-c", 5, 1)

	docs, err := s.Documents(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 3)
	assert.Equal(t, "doc-b", docs[0].ID)
	assert.Equal(t, "doc-a", docs[1].ID)
	assert.Equal(t, "doc-c", docs[2].ID)

	chunks, err := s.Chunks(ctx)
	require.NoError(t, err)
	require.Len(t, chunks, 6)
	for i, c := range chunks {
		assert.Equal(t, i, c.Index)
	}
}

func TestDocument_NotFound(t *testing.T) {
	s := NewDocumentStore()

	_, err := s.Document(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUpdateEmbeddings(t *testing.T) {
	s := NewDocumentStore()
	ctx := context.Background()
	saveDoc(t, s, "doc-1", 0, 2)

	require.NoError(t, s.UpdateEmbeddings(ctx, []domain.Chunk{
		{Index: 1, Embedding: []float32{0.1, 0.2}},
	}))

	chunks, err := s.Chunks(ctx)
	require.NoError(t, err)
	assert.Nil(t, chunks[0].Embedding)
	assert.Equal(t, []float32{0.1, 0.2}, chunks[1].Embedding)
}

func TestClear_DiscardsEverything(t *testing.T) {
	s := NewDocumentStore()
	ctx := context.Background()
	saveDoc(t, s, "doc-1", 0, 2)

	require.NoError(t, s.Clear(ctx))

	count, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)

	chunks, err := s.Chunks(ctx)
	require.NoError(t, err)
	assert.Empty(t, chunks)

	// Clearing an already empty store is fine.
	assert.NoError(t, s.Clear(ctx))
}

func TestModelMetadata(t *testing.T) {
	s := NewDocumentStore()
	ctx := context.Background()

	_, _, err := s.GetModel(ctx)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, s.SetModel(ctx, "nomic-embed-text", 768))

	name, dims, err := s.GetModel(ctx)
	require.NoError(t, err)
	assert.Equal(t, "nomic-embed-text", name)
	assert.Equal(t, 768, dims)
}
