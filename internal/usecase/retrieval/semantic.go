package retrieval

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"sort"
	"time"

	"qa-search-orchestrator/internal/domain"
)

var errEmptyEmbedding = errors.New("encoder returned an empty embedding")

// SemanticConfig holds semantic search parameters. The similarity floor is a
// tunable default, not a constant.
type SemanticConfig struct {
	// SimilarityFloor discards documents at or below this cosine similarity.
	SimilarityFloor float64
	// Limit caps the result set.
	Limit int
}

// DefaultSemanticConfig returns the stock floor and cap.
func DefaultSemanticConfig() SemanticConfig {
	return SemanticConfig{
		SimilarityFloor: 0.3,
		Limit:           20,
	}
}

// CosineSimilarity computes cosine similarity between a query vector and a
// stored document vector. A zero-magnitude vector on either side yields 0,
// never a division fault. Document vectors shorter than the query vector
// are treated as zero-padded.
func CosineSimilarity(query, doc []float32) float64 {
	var dot, queryMag, docMag float64
	for i := range query {
		q := float64(query[i])
		var d float64
		if i < len(doc) {
			d = float64(doc[i])
		}
		dot += q * d
		queryMag += q * q
		docMag += d * d
	}
	if queryMag == 0 || docMag == 0 {
		return 0
	}
	return dot / (math.Sqrt(queryMag) * math.Sqrt(docMag))
}

// SemanticSearch embeds the processed query and scores every stored document
// embedding by cosine similarity, filtered to the floor and capped. An
// embedding failure returns EmbeddingError so the pipeline can degrade to
// lexical-only retrieval; it is never fatal on its own.
func SemanticSearch(
	ctx context.Context,
	repo domain.DocumentRepository,
	encoder domain.VectorEncoder,
	query string,
	cfg SemanticConfig,
	logger *slog.Logger,
) (*domain.SearchResult, error) {
	start := time.Now()

	embedding, err := encoder.Embed(ctx, query)
	if err != nil {
		logger.Warn("query_embedding_failed", slog.String("error", err.Error()))
		return nil, &domain.EmbeddingError{Err: err}
	}
	if embedding == nil || len(embedding.Vector) == 0 {
		logger.Warn("query_embedding_empty")
		return nil, &domain.EmbeddingError{Err: errEmptyEmbedding}
	}

	docs, err := repo.ListEmbedded(ctx)
	if err != nil {
		return nil, &domain.SearchError{Stage: "semantic", Err: err}
	}

	scored := make([]domain.ScoredDocument, 0, len(docs))
	for _, doc := range docs {
		similarity := CosineSimilarity(embedding.Vector, doc.Embedding)
		if similarity > cfg.SimilarityFloor {
			scored = append(scored, domain.ScoredDocument{
				Document:      doc,
				SemanticScore: similarity,
			})
		}
	}

	sort.Slice(scored, func(i, j int) bool {
		if scored[i].SemanticScore != scored[j].SemanticScore {
			return scored[i].SemanticScore > scored[j].SemanticScore
		}
		return scored[i].ID < scored[j].ID
	})
	if cfg.Limit > 0 && len(scored) > cfg.Limit {
		scored = scored[:cfg.Limit]
	}

	logger.Info("semantic_search_completed",
		slog.String("model", embedding.ModelID),
		slog.Int("candidate_count", len(docs)),
		slog.Int("result_count", len(scored)),
		slog.Int64("duration_ms", time.Since(start).Milliseconds()))

	return &domain.SearchResult{
		Stage:   domain.StageSemantic,
		Results: scored,
		Count:   len(scored),
	}, nil
}
