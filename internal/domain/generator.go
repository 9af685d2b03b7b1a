package domain

import "context"

// Generator defines the text-generation collaborator used for answer
// synthesis. May fail or time out; callers fall back to a templated answer.
type Generator interface {
	Generate(ctx context.Context, prompt string, maxTokens int) (string, error)
	Version() string
}
