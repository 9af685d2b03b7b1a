package domain

import "context"

// Embedding is the result of a single embed call.
type Embedding struct {
	Vector  []float32
	ModelID string
}

// VectorEncoder defines the embedding collaborator. A single call per query,
// no batching; may fail or time out, in which case semantic search is
// skipped entirely.
type VectorEncoder interface {
	Embed(ctx context.Context, text string) (*Embedding, error)
	Version() string
}
