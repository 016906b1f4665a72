package flat

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veldt-labs/quarry/internal/core/domain"
)

func embedded(index int, v ...float32) domain.Chunk {
	return domain.Chunk{Index: index, DocumentID: "doc-1", Embedding: v}
}

func TestSearch_EmptyIndex(t *testing.T) {
	idx := New()

	_, err := idx.Search(context.Background(), []float32{1, 0}, 3)
	assert.ErrorIs(t, err, domain.ErrEmptyIndex)
}

func TestSearch_RanksByCosineSimilarity(t *testing.T) {
	idx := New()
	ctx := context.Background()

	require.NoError(t, idx.Rebuild(ctx, []domain.Chunk{
		embedded(0, 1, 0, 0),
		embedded(1, 0, 1, 0),
		embedded(2, 1, 1, 0),
	}))

	hits, err := idx.Search(ctx, []float32{1, 0, 0}, 3)
	require.NoError(t, err)
	require.Len(t, hits, 3)

	assert.Equal(t, 0, hits[0].ChunkIndex)
	assert.InDelta(t, 1.0, hits[0].Similarity, 1e-6)
	assert.Equal(t, 2, hits[1].ChunkIndex)
	assert.InDelta(t, 1/math.Sqrt2, hits[1].Similarity, 1e-6)
	assert.Equal(t, 1, hits[2].ChunkIndex)
	assert.InDelta(t, 0.0, hits[2].Similarity, 1e-6)
}

func TestSearch_MagnitudeDoesNotMatter(t *testing.T) {
	idx := New()
	ctx := context.Background()

	// Same direction, wildly different magnitudes.
	require.NoError(t, idx.Rebuild(ctx, []domain.Chunk{
		embedded(0, 100, 0),
		embedded(1, 0.001, 0),
	}))

	hits, err := idx.Search(ctx, []float32{7, 0}, 2)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.InDelta(t, hits[0].Similarity, hits[1].Similarity, 1e-6)
}

func TestSearch_KLargerThanIndexReturnsAll(t *testing.T) {
	idx := New()
	ctx := context.Background()

	require.NoError(t, idx.Rebuild(ctx, []domain.Chunk{
		embedded(0, 1, 0),
		embedded(1, 0, 1),
	}))

	hits, err := idx.Search(ctx, []float32{1, 1}, 50)
	require.NoError(t, err)
	assert.Len(t, hits, 2)
}

func TestRebuild_RejectsMixedDimensions(t *testing.T) {
	idx := New()

	err := idx.Rebuild(context.Background(), []domain.Chunk{
		embedded(0, 1, 0, 0),
		embedded(1, 1, 0),
	})
	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)
}

func TestRebuild_RejectsMissingEmbedding(t *testing.T) {
	idx := New()

	err := idx.Rebuild(context.Background(), []domain.Chunk{
		{Index: 0, Content: "never embedded"},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSearch_QueryDimensionMismatch(t *testing.T) {
	idx := New()
	ctx := context.Background()

	require.NoError(t, idx.Rebuild(ctx, []domain.Chunk{embedded(0, 1, 0, 0)}))

	_, err := idx.Search(ctx, []float32{1, 0}, 1)
	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)
}

func TestRebuild_WithNoChunksEmptiesIndex(t *testing.T) {
	idx := New()
	ctx := context.Background()

	require.NoError(t, idx.Rebuild(ctx, []domain.Chunk{embedded(0, 1, 0)}))
	require.NoError(t, idx.Rebuild(ctx, nil))

	_, err := idx.Search(ctx, []float32{1, 0}, 1)
	assert.ErrorIs(t, err, domain.ErrEmptyIndex)
}
