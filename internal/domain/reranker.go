package domain

import "context"

// RerankCandidate is a fused document handed to the ranking collaborator.
type RerankCandidate struct {
	// ID is the document identifier used to map results back.
	ID string
	// Title and Content are the text the judge scores against the query.
	Title   string
	Content string
	// Score is the fused retrieval score, for logging.
	Score float64
}

// Ranking is one entry of the collaborator's relevance ordering.
type Ranking struct {
	DocID          string
	Rank           int
	RelevanceScore float64
	Reason         string
}

// Reranker defines the external relevance-ranking collaborator. If an error
// occurs or the returned identifiers do not all resolve against the
// candidate set, callers must keep the fused order unchanged.
type Reranker interface {
	Rank(ctx context.Context, query string, candidates []RerankCandidate, topK int) ([]Ranking, error)
	ModelName() string
}
