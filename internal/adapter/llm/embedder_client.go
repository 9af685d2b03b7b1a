package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"qa-search-orchestrator/internal/domain"
)

// Retry tuning for the embeddings endpoint. Exported so tests can shrink
// the backoff.
var (
	RetryBase  = 500 * time.Millisecond
	MaxRetries = 3
)

// embeddingRequest is the OpenAI-compatible embeddings payload.
type embeddingRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

// embeddingResponse is the subset of the embeddings response we read.
type embeddingResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
	Model string `json:"model"`
}

// EmbedderClient implements domain.VectorEncoder via an OpenAI-compatible
// embeddings endpoint. A token-bucket limiter spaces the calls so bursts of
// pipeline runs do not trip provider rate limits.
type EmbedderClient struct {
	BaseURL string
	Model   string
	APIKey  string
	Client  *http.Client
	limiter *rate.Limiter
	logger  *slog.Logger
}

// NewEmbedderClient constructs a new EmbedderClient. rps bounds the sustained
// request rate; rps <= 0 disables the limiter. If client is nil, a default
// http.Client is created with the given timeout.
func NewEmbedderClient(baseURL, model, apiKey string, rps float64, timeout time.Duration, logger *slog.Logger, client ...*http.Client) *EmbedderClient {
	var c *http.Client
	if len(client) > 0 && client[0] != nil {
		c = client[0]
	} else {
		c = &http.Client{Timeout: timeout}
	}
	var limiter *rate.Limiter
	if rps > 0 {
		limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
	return &EmbedderClient{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Model:   model,
		APIKey:  apiKey,
		Client:  c,
		limiter: limiter,
		logger:  logger,
	}
}

var _ domain.VectorEncoder = (*EmbedderClient)(nil)

// Embed converts the text into its embedding vector. Transport errors and
// 5xx responses are retried with exponential backoff; 4xx responses fail
// immediately since retrying cannot help.
func (c *EmbedderClient) Embed(ctx context.Context, text string) (*domain.Embedding, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("cannot embed empty text")
	}

	startTime := time.Now()
	url := fmt.Sprintf("%s/v1/embeddings", c.BaseURL)
	reqBody := embeddingRequest{Model: c.Model, Input: []string{text}}

	var lastErr error
	for attempt := 0; attempt <= MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := RetryBase * time.Duration(1<<(attempt-1))
			c.logger.Warn("embedding_retry",
				slog.Int("attempt", attempt),
				slog.String("error", lastErr.Error()),
				slog.Duration("backoff", backoff))
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("embedding cancelled during backoff: %w", ctx.Err())
			case <-time.After(backoff):
			}
		}

		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return nil, fmt.Errorf("embedding rate limit wait: %w", err)
			}
		}

		var embResp embeddingResponse
		err := postJSON(ctx, c.Client, url, c.APIKey, reqBody, &embResp)
		if err == nil {
			if len(embResp.Data) == 0 || len(embResp.Data[0].Embedding) == 0 {
				return nil, fmt.Errorf("embeddings endpoint returned no vector")
			}
			c.logger.Info("embedding_completed",
				slog.Int("dimensions", len(embResp.Data[0].Embedding)),
				slog.Int("attempts", attempt+1),
				slog.Int64("elapsed_ms", time.Since(startTime).Milliseconds()))
			return &domain.Embedding{Vector: embResp.Data[0].Embedding, ModelID: c.Model}, nil
		}

		if !retryable(err) {
			return nil, fmt.Errorf("embedding request failed: %w", err)
		}
		lastErr = err
	}

	return nil, fmt.Errorf("embedding request failed after %d retries: %w", MaxRetries, lastErr)
}

// Version returns the embedding model identifier. Vectors from different
// model versions are not comparable, so this participates in cache keys.
func (c *EmbedderClient) Version() string {
	return c.Model
}

// retryable reports whether the failure may resolve on a later attempt.
func retryable(err error) bool {
	var statusErr *httpStatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode >= 500
	}
	// Anything else is a transport-level failure.
	return true
}
