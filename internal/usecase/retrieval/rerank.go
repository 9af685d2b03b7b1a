package retrieval

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"
	"unicode/utf8"

	"qa-search-orchestrator/internal/domain"
)

// RerankConfig holds reranking stage parameters.
type RerankConfig struct {
	Enabled bool
	// Candidates caps how many fused documents are sent to the judge.
	Candidates int
	// TopK is the target count requested from the judge.
	TopK int
	// Timeout bounds the ranking call.
	Timeout time.Duration
	// BodyLimit truncates candidate bodies before sending.
	BodyLimit int
}

// DefaultRerankConfig returns the stock reranking parameters.
func DefaultRerankConfig() RerankConfig {
	return RerankConfig{
		Enabled:    true,
		Candidates: 15,
		TopK:       5,
		Timeout:    30 * time.Second,
		BodyLimit:  500,
	}
}

// Validate checks the reranking configuration.
func (c RerankConfig) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.Candidates <= 0 {
		return fmt.Errorf("rerank candidates must be positive, got %d", c.Candidates)
	}
	if c.TopK <= 0 {
		return fmt.Errorf("rerank topK must be positive, got %d", c.TopK)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("rerank timeout must be positive, got %v", c.Timeout)
	}
	return nil
}

// Rerank asks the ranking collaborator to reorder the fused candidates
// against the original (pre-expansion) user query and remaps the returned
// document identifiers onto the input ScoredDocuments, attaching relevance
// score and rationale. On any failure (unreachable collaborator, malformed
// output, identifiers that do not all resolve) the fused order passes
// through unchanged. The returned bool reports whether reranking was
// applied.
func Rerank(
	ctx context.Context,
	reranker domain.Reranker,
	rawQuery string,
	fused []domain.ScoredDocument,
	cfg RerankConfig,
	logger *slog.Logger,
) ([]domain.ScoredDocument, bool) {
	if !cfg.Enabled || reranker == nil || len(fused) == 0 {
		return fused, false
	}

	start := time.Now()

	candidates := fused
	if cfg.Candidates > 0 && len(candidates) > cfg.Candidates {
		candidates = candidates[:cfg.Candidates]
	}

	rerankCandidates := make([]domain.RerankCandidate, len(candidates))
	byID := make(map[string]domain.ScoredDocument, len(candidates))
	for i, doc := range candidates {
		body := truncateRunes(doc.Body, cfg.BodyLimit)
		rerankCandidates[i] = domain.RerankCandidate{
			ID:      doc.ID,
			Title:   doc.Title,
			Content: body,
			Score:   doc.FusedScore,
		}
		byID[doc.ID] = doc
	}

	rankCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	rankings, err := reranker.Rank(rankCtx, rawQuery, rerankCandidates, cfg.TopK)
	cancel()

	if err != nil {
		logger.Warn("reranking_failed_using_fused_order",
			slog.String("error", err.Error()),
			slog.Int64("duration_ms", time.Since(start).Milliseconds()))
		return fused, false
	}
	if len(rankings) == 0 {
		logger.Warn("reranking_returned_no_rankings")
		return fused, false
	}

	// All returned identifiers must resolve or the whole result is
	// discarded; a partially-applied ordering is worse than none.
	for _, ranking := range rankings {
		if _, ok := byID[ranking.DocID]; !ok {
			logger.Warn("reranking_returned_unknown_document",
				slog.String("doc_id", ranking.DocID))
			return fused, false
		}
	}

	sort.Slice(rankings, func(i, j int) bool { return rankings[i].Rank < rankings[j].Rank })

	reranked := make([]domain.ScoredDocument, 0, len(rankings))
	seen := make(map[string]bool, len(rankings))
	for _, ranking := range rankings {
		if seen[ranking.DocID] {
			continue
		}
		seen[ranking.DocID] = true
		doc := byID[ranking.DocID]
		score := ranking.RelevanceScore
		doc.RerankScore = &score
		doc.RerankReason = ranking.Reason
		reranked = append(reranked, doc)
	}

	logger.Info("reranking_completed",
		slog.Int("candidate_count", len(rerankCandidates)),
		slog.Int("reranked_count", len(reranked)),
		slog.String("model", reranker.ModelName()),
		slog.Int64("duration_ms", time.Since(start).Milliseconds()))

	return reranked, true
}

// truncateRunes cuts s to at most limit bytes without splitting a rune.
// Non-positive limits leave s untouched.
func truncateRunes(s string, limit int) string {
	if limit <= 0 || len(s) <= limit {
		return s
	}
	for limit > 0 && !utf8.RuneStart(s[limit]) {
		limit--
	}
	return s[:limit]
}
