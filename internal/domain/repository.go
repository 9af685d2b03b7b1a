package domain

import "context"

// DocumentRepository defines the document store operations the retrieval
// pipeline depends on. The store is an external collaborator; transport and
// schema belong to the implementation.
type DocumentRepository interface {
	// FullTextSearch runs a ranked full-text query over title and body.
	// Returned documents carry the store-native relevance score in
	// LexicalScore, ordered descending.
	FullTextSearch(ctx context.Context, query string, limit int) ([]ScoredDocument, error)

	// SearchByKeywords runs a case-insensitive containment query requiring
	// every keyword to appear in title or body (AND semantics). Results are
	// unscored; callers assign positional scores. Ordering is stable.
	SearchByKeywords(ctx context.Context, keywords []string, limit int) ([]Document, error)

	// EnsureTextIndex creates the full-text index if it does not exist.
	// Idempotent and safe to call concurrently.
	EnsureTextIndex(ctx context.Context) error

	// ListEmbedded returns every document that has a stored embedding
	// vector, including the vector itself.
	ListEmbedded(ctx context.Context) ([]Document, error)

	// Stats reports document counts for diagnostics.
	Stats(ctx context.Context) (*DocumentStats, error)
}
