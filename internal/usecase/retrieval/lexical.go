package retrieval

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"qa-search-orchestrator/internal/domain"
)

// Synthetic score assignment for keyword-fallback results: descending by
// position so downstream fusion still has a monotonic signal.
const (
	fallbackBaseScore = 100.0
	fallbackScoreStep = 5.0
)

// minKeywordLength drops short tokens when deriving fallback keywords.
const minKeywordLength = 3

// KeywordTokens derives fallback keywords from the processed query: unique
// whitespace-delimited tokens of at least minKeywordLength characters.
func KeywordTokens(query string) []string {
	seen := make(map[string]bool)
	var keywords []string
	for _, token := range strings.Fields(query) {
		if len(token) < minKeywordLength || seen[token] {
			continue
		}
		seen[token] = true
		keywords = append(keywords, token)
	}
	return keywords
}

// LexicalSearch runs the full-text query against the store, bootstrapping
// the text index first (idempotent, warn-only on failure). When full-text
// search itself errors, and only then, it falls back to a case-insensitive
// multi-keyword containment query with positional synthetic scores. The
// returned bool reports whether the fallback was used.
func LexicalSearch(
	ctx context.Context,
	repo domain.DocumentRepository,
	query string,
	limit int,
	logger *slog.Logger,
) (*domain.SearchResult, bool, error) {
	start := time.Now()

	if err := repo.EnsureTextIndex(ctx); err != nil {
		logger.Warn("text_index_bootstrap_failed", slog.String("error", err.Error()))
	}

	docs, err := repo.FullTextSearch(ctx, query, limit)
	if err == nil {
		logger.Info("lexical_search_completed",
			slog.Int("result_count", len(docs)),
			slog.Int64("duration_ms", time.Since(start).Milliseconds()))
		return &domain.SearchResult{
			Stage:   domain.StageLexical,
			Results: docs,
			Count:   len(docs),
		}, false, nil
	}

	logger.Warn("lexical_fallback_triggered", slog.String("error", err.Error()))

	keywords := KeywordTokens(query)
	if len(keywords) == 0 {
		return nil, false, &domain.SearchError{Stage: "lexical", Err: err}
	}

	fallbackDocs, fbErr := repo.SearchByKeywords(ctx, keywords, limit)
	if fbErr != nil {
		logger.Warn("keyword_fallback_failed", slog.String("error", fbErr.Error()))
		return nil, false, &domain.SearchError{Stage: "lexical", Err: fbErr}
	}

	scored := make([]domain.ScoredDocument, len(fallbackDocs))
	for i, doc := range fallbackDocs {
		scored[i] = domain.ScoredDocument{
			Document:     doc,
			LexicalScore: fallbackBaseScore - fallbackScoreStep*float64(i),
		}
	}

	logger.Info("keyword_fallback_completed",
		slog.Int("keyword_count", len(keywords)),
		slog.Int("result_count", len(scored)),
		slog.Int64("duration_ms", time.Since(start).Milliseconds()))

	return &domain.SearchResult{
		Stage:   domain.StageKeyword,
		Results: scored,
		Count:   len(scored),
	}, true, nil
}
