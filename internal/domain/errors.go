package domain

import "fmt"

// ValidationError rejects bad input immediately. Never retried.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// NewValidationError builds a ValidationError from a format string.
func NewValidationError(format string, args ...any) *ValidationError {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// SearchError marks a retrieval stage failure. It triggers that stage's
// fallback and only becomes user-visible when every retrieval stage fails.
type SearchError struct {
	Stage string
	Err   error
}

func (e *SearchError) Error() string {
	return fmt.Sprintf("%s search failed: %v", e.Stage, e.Err)
}

func (e *SearchError) Unwrap() error { return e.Err }

// EmbeddingError means the semantic path is unavailable; the pipeline
// degrades to lexical-only retrieval.
type EmbeddingError struct {
	Err error
}

func (e *EmbeddingError) Error() string {
	return fmt.Sprintf("embedding failed: %v", e.Err)
}

func (e *EmbeddingError) Unwrap() error { return e.Err }

// RerankError marks a best-effort reranking failure; the fused order passes
// through unchanged.
type RerankError struct {
	Err error
}

func (e *RerankError) Error() string {
	return fmt.Sprintf("rerank failed: %v", e.Err)
}

func (e *RerankError) Unwrap() error { return e.Err }

// GenerationError marks a best-effort answer-synthesis failure; a templated
// summary takes the answer's place.
type GenerationError struct {
	Err error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generation failed: %v", e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }
