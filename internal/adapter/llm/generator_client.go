package llm

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"qa-search-orchestrator/internal/domain"
)

// GeneratorClient implements domain.Generator via an OpenAI-compatible chat
// completions endpoint.
type GeneratorClient struct {
	BaseURL string
	Model   string
	APIKey  string
	Client  *http.Client
	logger  *slog.Logger
}

// NewGeneratorClient constructs a new GeneratorClient. If client is nil, a
// default http.Client is created with the given timeout.
func NewGeneratorClient(baseURL, model, apiKey string, timeout time.Duration, logger *slog.Logger, client ...*http.Client) *GeneratorClient {
	var c *http.Client
	if len(client) > 0 && client[0] != nil {
		c = client[0]
	} else {
		c = &http.Client{Timeout: timeout}
	}
	return &GeneratorClient{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Model:   model,
		APIKey:  apiKey,
		Client:  c,
		logger:  logger,
	}
}

var _ domain.Generator = (*GeneratorClient)(nil)

// Generate completes the prompt and returns the model's text.
func (c *GeneratorClient) Generate(ctx context.Context, prompt string, maxTokens int) (string, error) {
	startTime := time.Now()

	reqBody := chatRequest{
		Model: c.Model,
		Messages: []chatMessage{
			{Role: "user", Content: prompt},
		},
		MaxTokens:   maxTokens,
		Temperature: 0.3,
	}

	url := fmt.Sprintf("%s/v1/chat/completions", c.BaseURL)
	var resp chatResponse
	if err := postJSON(ctx, c.Client, url, c.APIKey, reqBody, &resp); err != nil {
		c.logger.Warn("generation_failed",
			slog.String("error", err.Error()),
			slog.Int64("elapsed_ms", time.Since(startTime).Milliseconds()))
		return "", fmt.Errorf("generation request failed: %w", err)
	}

	content, err := chatContent(&resp)
	if err != nil {
		return "", fmt.Errorf("generation response invalid: %w", err)
	}
	content = strings.TrimSpace(content)

	c.logger.Info("generation_completed",
		slog.Int("answer_length", len(content)),
		slog.Int64("elapsed_ms", time.Since(startTime).Milliseconds()))

	return content, nil
}

// Version returns the generation model identifier.
func (c *GeneratorClient) Version() string {
	return c.Model
}
