package usecase

import (
	"fmt"
	"time"

	"qa-search-orchestrator/internal/usecase/preprocess"
	"qa-search-orchestrator/internal/usecase/retrieval"
)

// LexicalConfig holds lexical search parameters.
type LexicalConfig struct {
	// Limit caps both the full-text and the keyword-fallback result sets.
	Limit int
}

// DefaultLexicalConfig returns the stock lexical cap.
func DefaultLexicalConfig() LexicalConfig {
	return LexicalConfig{Limit: 20}
}

// SynthesisConfig holds answer synthesis parameters.
type SynthesisConfig struct {
	Enabled bool
	// MaxDocuments caps how many documents are placed in the prompt.
	MaxDocuments int
	// MaxTokens bounds the generated answer length.
	MaxTokens int
	// BodyLimit truncates document bodies before prompting.
	BodyLimit int
	// Timeout bounds the generation call.
	Timeout time.Duration
}

// DefaultSynthesisConfig returns the stock synthesis parameters.
func DefaultSynthesisConfig() SynthesisConfig {
	return SynthesisConfig{
		Enabled:      true,
		MaxDocuments: 3,
		MaxTokens:    300,
		BodyLimit:    500,
		Timeout:      30 * time.Second,
	}
}

// CacheConfig holds response cache parameters. Size 0 disables caching.
type CacheConfig struct {
	Size int
	TTL  time.Duration
}

// DefaultCacheConfig returns the stock cache sizing.
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		Size: 256,
		TTL:  5 * time.Minute,
	}
}

// PipelineConfig bundles every tunable of the search pipeline. Similarity
// floor, fusion weights, and limits are runtime configuration, not
// constants.
type PipelineConfig struct {
	Preprocess preprocess.Options
	Lexical    LexicalConfig
	Semantic   retrieval.SemanticConfig
	Fusion     retrieval.FusionConfig
	Rerank     retrieval.RerankConfig
	Synthesis  SynthesisConfig
	Cache      CacheConfig

	// DefaultTopK applies when the caller does not request a count.
	DefaultTopK int
	// SearchTimeout bounds each retrieval branch (store queries plus, for
	// the semantic branch, the embed call).
	SearchTimeout time.Duration
}

// DefaultPipelineConfig returns the stock pipeline tuning.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		Preprocess:    preprocess.DefaultOptions(),
		Lexical:       DefaultLexicalConfig(),
		Semantic:      retrieval.DefaultSemanticConfig(),
		Fusion:        retrieval.DefaultFusionConfig(),
		Rerank:        retrieval.DefaultRerankConfig(),
		Synthesis:     DefaultSynthesisConfig(),
		Cache:         DefaultCacheConfig(),
		DefaultTopK:   5,
		SearchTimeout: 10 * time.Second,
	}
}

// Validate checks the configuration values.
func (c PipelineConfig) Validate() error {
	if c.Lexical.Limit <= 0 {
		return fmt.Errorf("lexical limit must be positive, got %d", c.Lexical.Limit)
	}
	if c.Semantic.Limit <= 0 {
		return fmt.Errorf("semantic limit must be positive, got %d", c.Semantic.Limit)
	}
	if c.Semantic.SimilarityFloor < -1 || c.Semantic.SimilarityFloor > 1 {
		return fmt.Errorf("similarity floor must be in [-1,1], got %f", c.Semantic.SimilarityFloor)
	}
	if err := c.Fusion.Validate(); err != nil {
		return fmt.Errorf("fusion config invalid: %w", err)
	}
	if err := c.Rerank.Validate(); err != nil {
		return fmt.Errorf("rerank config invalid: %w", err)
	}
	if c.DefaultTopK <= 0 {
		return fmt.Errorf("default topK must be positive, got %d", c.DefaultTopK)
	}
	if c.SearchTimeout <= 0 {
		return fmt.Errorf("search timeout must be positive, got %v", c.SearchTimeout)
	}
	if c.Cache.Size < 0 {
		return fmt.Errorf("cache size must be non-negative, got %d", c.Cache.Size)
	}
	return nil
}
