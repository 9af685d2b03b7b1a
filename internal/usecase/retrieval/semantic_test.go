package retrieval_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qa-search-orchestrator/internal/domain"
	"qa-search-orchestrator/internal/usecase/retrieval"
)

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name  string
		query []float32
		doc   []float32
		want  float64
	}{
		{"identical vectors", []float32{1, 0}, []float32{1, 0}, 1},
		{"orthogonal vectors", []float32{1, 0}, []float32{0, 1}, 0},
		{"opposite vectors", []float32{1, 0}, []float32{-1, 0}, -1},
		{"zero query vector", []float32{0, 0}, []float32{1, 1}, 0},
		{"zero document vector", []float32{1, 1}, []float32{0, 0}, 0},
		{"shorter document treated as zero padded", []float32{1, 1}, []float32{1}, 0.7071067811865475},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, retrieval.CosineSimilarity(tt.query, tt.doc), 1e-9)
		})
	}
}

func TestSemanticSearch_FiltersAndSorts(t *testing.T) {
	repo := new(MockDocumentRepository)
	encoder := new(MockVectorEncoder)
	ctx := context.Background()

	encoder.On("Embed", ctx, "login").Return(&domain.Embedding{Vector: []float32{1, 0}, ModelID: "m1"}, nil)
	repo.On("ListEmbedded", ctx).Return([]domain.Document{
		{ID: "doc-low", Embedding: []float32{0.3, 1}},  // below floor
		{ID: "doc-high", Embedding: []float32{1, 0.1}}, // near 1
		{ID: "doc-mid", Embedding: []float32{1, 1}},    // about 0.707
	}, nil)

	cfg := retrieval.SemanticConfig{SimilarityFloor: 0.3, Limit: 20}
	result, err := retrieval.SemanticSearch(ctx, repo, encoder, "login", cfg, newTestLogger())

	require.NoError(t, err)
	assert.Equal(t, domain.StageSemantic, result.Stage)
	require.Len(t, result.Results, 2)
	assert.Equal(t, "doc-high", result.Results[0].ID)
	assert.Equal(t, "doc-mid", result.Results[1].ID)
	assert.Greater(t, result.Results[0].SemanticScore, result.Results[1].SemanticScore)
}

func TestSemanticSearch_LimitCapsResults(t *testing.T) {
	repo := new(MockDocumentRepository)
	encoder := new(MockVectorEncoder)
	ctx := context.Background()

	encoder.On("Embed", ctx, "q").Return(&domain.Embedding{Vector: []float32{1}, ModelID: "m1"}, nil)
	repo.On("ListEmbedded", ctx).Return([]domain.Document{
		{ID: "a", Embedding: []float32{1}},
		{ID: "b", Embedding: []float32{1}},
		{ID: "c", Embedding: []float32{1}},
	}, nil)

	cfg := retrieval.SemanticConfig{SimilarityFloor: 0.3, Limit: 2}
	result, err := retrieval.SemanticSearch(ctx, repo, encoder, "q", cfg, newTestLogger())

	require.NoError(t, err)
	require.Len(t, result.Results, 2)
	// Equal scores tie-break on document ID for deterministic output.
	assert.Equal(t, "a", result.Results[0].ID)
	assert.Equal(t, "b", result.Results[1].ID)
}

func TestSemanticSearch_ZeroQueryEmbeddingMatchesNothing(t *testing.T) {
	repo := new(MockDocumentRepository)
	encoder := new(MockVectorEncoder)
	ctx := context.Background()

	encoder.On("Embed", ctx, "q").Return(&domain.Embedding{Vector: []float32{0, 0, 0}, ModelID: "m1"}, nil)
	repo.On("ListEmbedded", ctx).Return([]domain.Document{
		{ID: "a", Embedding: []float32{1, 0, 0}},
		{ID: "b", Embedding: []float32{0.2, 0.9, 0.1}},
	}, nil)

	result, err := retrieval.SemanticSearch(ctx, repo, encoder, "q", retrieval.DefaultSemanticConfig(), newTestLogger())

	// Every similarity is 0 and sits below the floor, so the stage returns
	// cleanly with no matches instead of erroring.
	require.NoError(t, err)
	assert.Equal(t, domain.StageSemantic, result.Stage)
	assert.Empty(t, result.Results)
	assert.Equal(t, 0, result.Count)
}

func TestSemanticSearch_EmbedFailureReturnsEmbeddingError(t *testing.T) {
	repo := new(MockDocumentRepository)
	encoder := new(MockVectorEncoder)
	ctx := context.Background()

	encoder.On("Embed", ctx, "q").Return(nil, errors.New("endpoint unreachable"))

	result, err := retrieval.SemanticSearch(ctx, repo, encoder, "q", retrieval.DefaultSemanticConfig(), newTestLogger())

	assert.Nil(t, result)
	var embErr *domain.EmbeddingError
	require.ErrorAs(t, err, &embErr)
}

func TestSemanticSearch_EmptyEmbeddingReturnsEmbeddingError(t *testing.T) {
	repo := new(MockDocumentRepository)
	encoder := new(MockVectorEncoder)
	ctx := context.Background()

	encoder.On("Embed", ctx, "q").Return(&domain.Embedding{Vector: nil, ModelID: "m1"}, nil)

	result, err := retrieval.SemanticSearch(ctx, repo, encoder, "q", retrieval.DefaultSemanticConfig(), newTestLogger())

	assert.Nil(t, result)
	var embErr *domain.EmbeddingError
	require.ErrorAs(t, err, &embErr)
}

func TestSemanticSearch_StoreFailureReturnsSearchError(t *testing.T) {
	repo := new(MockDocumentRepository)
	encoder := new(MockVectorEncoder)
	ctx := context.Background()

	encoder.On("Embed", ctx, "q").Return(&domain.Embedding{Vector: []float32{1}, ModelID: "m1"}, nil)
	repo.On("ListEmbedded", ctx).Return(nil, errors.New("db down"))

	result, err := retrieval.SemanticSearch(ctx, repo, encoder, "q", retrieval.DefaultSemanticConfig(), newTestLogger())

	assert.Nil(t, result)
	var searchErr *domain.SearchError
	require.ErrorAs(t, err, &searchErr)
	assert.Equal(t, "semantic", searchErr.Stage)
}
