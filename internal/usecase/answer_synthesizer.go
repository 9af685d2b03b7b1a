package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"qa-search-orchestrator/internal/domain"
)

// answerPromptTemplate instructs the generation collaborator to answer only
// from the supplied documents and to say so when the answer is absent.
const answerPromptTemplate = `Based on these documents:

%s

Answer this question: %q

Requirements:
- Only use information from the provided documents
- If the answer is not found, explicitly state "Information not available in documents"
- Keep answer to 2-3 sentences
- Include relevant document IDs if applicable
- Be factual and cite sources`

// fallbackTitleCount bounds the templated summary to the top document titles.
const fallbackTitleCount = 3

// AnswerSynthesizer turns the final top-K documents into a short grounded
// natural-language answer, falling back to a deterministic templated summary
// whenever generation is unavailable. It never blocks the caller from seeing
// search results.
type AnswerSynthesizer struct {
	generator domain.Generator
	cfg       SynthesisConfig
	logger    *slog.Logger
}

// NewAnswerSynthesizer builds a synthesizer around the generation
// collaborator; generator may be nil, in which case every answer is the
// templated fallback.
func NewAnswerSynthesizer(generator domain.Generator, cfg SynthesisConfig, logger *slog.Logger) *AnswerSynthesizer {
	return &AnswerSynthesizer{generator: generator, cfg: cfg, logger: logger}
}

// Synthesize produces the answer for the query over the given documents.
// The returned bool reports whether the templated fallback was used.
func (s *AnswerSynthesizer) Synthesize(ctx context.Context, query string, docs []domain.ScoredDocument) (string, bool) {
	if len(docs) == 0 {
		return fmt.Sprintf("No results found for %q", query), true
	}
	if !s.cfg.Enabled || s.generator == nil {
		return s.templatedAnswer(query, docs), true
	}

	prompt := s.buildPrompt(query, docs)

	genCtx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	answer, err := s.generator.Generate(genCtx, prompt, s.cfg.MaxTokens)
	cancel()

	if err != nil {
		genErr := &domain.GenerationError{Err: err}
		s.logger.Warn("answer_generation_failed_using_template",
			slog.String("error", genErr.Error()))
		return s.templatedAnswer(query, docs), true
	}
	if strings.TrimSpace(answer) == "" {
		s.logger.Warn("answer_generation_empty_using_template")
		return s.templatedAnswer(query, docs), true
	}

	return strings.TrimSpace(answer), false
}

func (s *AnswerSynthesizer) buildPrompt(query string, docs []domain.ScoredDocument) string {
	limit := s.cfg.MaxDocuments
	if limit <= 0 || limit > len(docs) {
		limit = len(docs)
	}

	sections := make([]string, 0, limit)
	for _, doc := range docs[:limit] {
		body := truncateRunes(doc.Body, s.cfg.BodyLimit)
		sections = append(sections, fmt.Sprintf("Document ID: %s\nTitle: %s\nContent: %s", doc.ID, doc.Title, body))
	}

	return fmt.Sprintf(answerPromptTemplate, strings.Join(sections, "\n---\n"), query)
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

// templatedAnswer is the deterministic fallback: the result count plus the
// top document titles, derived only from the returned documents.
func (s *AnswerSynthesizer) templatedAnswer(query string, docs []domain.ScoredDocument) string {
	count := fallbackTitleCount
	if len(docs) < count {
		count = len(docs)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Found %d relevant document(s):\n", len(docs))
	for _, doc := range docs[:count] {
		title := doc.Title
		if title == "" {
			title = "Document"
		}
		fmt.Fprintf(&b, "- %s\n", title)
	}
	b.WriteString("\nTry expanding your search terms for more results.")
	return b.String()
}
