package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"qa-search-orchestrator/internal/domain"
)

// rerankPromptTemplate asks the model to judge numbered candidates against
// the query and emit strict JSON rankings.
const rerankPromptTemplate = `You are a relevance judge for a QA document search system.

Query: %q

Candidates:
%s

Rank the %d most relevant candidates for this query. Respond with JSON only, in this exact shape:
{"rankings":[{"doc_id":"<candidate id>","rank":1,"relevance_score":0.95,"reason":"<short reason>"}]}

Rules:
- rank 1 is the most relevant
- relevance_score is between 0.0 and 1.0
- doc_id must be copied exactly from the candidate list
- include at most %d rankings`

// rankingsEnvelope is the JSON document the judge is instructed to return.
type rankingsEnvelope struct {
	Rankings []struct {
		DocID          string  `json:"doc_id"`
		Rank           int     `json:"rank"`
		RelevanceScore float64 `json:"relevance_score"`
		Reason         string  `json:"reason"`
	} `json:"rankings"`
}

// RerankerClient implements domain.Reranker via an OpenAI-compatible chat
// completions endpoint acting as an LLM judge.
type RerankerClient struct {
	BaseURL string
	Model   string
	APIKey  string
	Client  *http.Client
	logger  *slog.Logger
}

// NewRerankerClient constructs a new RerankerClient. If client is nil, a
// default http.Client is created with the given timeout.
func NewRerankerClient(baseURL, model, apiKey string, timeout time.Duration, logger *slog.Logger, client ...*http.Client) *RerankerClient {
	var c *http.Client
	if len(client) > 0 && client[0] != nil {
		c = client[0]
	} else {
		c = &http.Client{Timeout: timeout}
	}
	return &RerankerClient{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Model:   model,
		APIKey:  apiKey,
		Client:  c,
		logger:  logger,
	}
}

var _ domain.Reranker = (*RerankerClient)(nil)

// Rank asks the judge to reorder the candidates against the query. Candidate
// identifiers in the response are returned as-is; validating them is the
// caller's responsibility.
func (c *RerankerClient) Rank(ctx context.Context, query string, candidates []domain.RerankCandidate, topK int) ([]domain.Ranking, error) {
	if len(candidates) == 0 {
		return []domain.Ranking{}, nil
	}

	startTime := time.Now()

	c.logger.Info("reranking_started",
		slog.String("query", truncateString(query, 100)),
		slog.Int("candidate_count", len(candidates)),
		slog.String("model", c.Model))

	var b strings.Builder
	for i, cand := range candidates {
		fmt.Fprintf(&b, "%d. id=%s title=%q\n%s\n\n", i+1, cand.ID, cand.Title, cand.Content)
	}
	prompt := fmt.Sprintf(rerankPromptTemplate, query, b.String(), topK, topK)

	reqBody := chatRequest{
		Model: c.Model,
		Messages: []chatMessage{
			{Role: "user", Content: prompt},
		},
		Temperature:    0,
		ResponseFormat: &responseFormat{Type: "json_object"},
	}

	url := fmt.Sprintf("%s/v1/chat/completions", c.BaseURL)
	var resp chatResponse
	if err := postJSON(ctx, c.Client, url, c.APIKey, reqBody, &resp); err != nil {
		return nil, &domain.RerankError{Err: fmt.Errorf("rerank request failed: %w", err)}
	}

	content, err := chatContent(&resp)
	if err != nil {
		return nil, &domain.RerankError{Err: err}
	}

	var envelope rankingsEnvelope
	if err := json.Unmarshal([]byte(content), &envelope); err != nil {
		return nil, &domain.RerankError{Err: fmt.Errorf("failed to parse rankings JSON: %w", err)}
	}

	rankings := make([]domain.Ranking, len(envelope.Rankings))
	for i, r := range envelope.Rankings {
		rankings[i] = domain.Ranking{
			DocID:          r.DocID,
			Rank:           r.Rank,
			RelevanceScore: r.RelevanceScore,
			Reason:         r.Reason,
		}
	}

	c.logger.Info("reranking_judge_completed",
		slog.Int("ranking_count", len(rankings)),
		slog.Int64("elapsed_ms", time.Since(startTime).Milliseconds()))

	return rankings, nil
}

// ModelName returns the judge model identifier for logging.
func (c *RerankerClient) ModelName() string {
	return c.Model
}
