package httpapi

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"qa-search-orchestrator/internal/domain"
	"qa-search-orchestrator/internal/usecase"
)

// SearchRequest is the POST /v1/search payload.
type SearchRequest struct {
	Query string `json:"query"`
	TopK  int    `json:"top_k"`
}

// SearchResultItem is one ranked document in the response.
type SearchResultItem struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Body          string   `json:"body"`
	LexicalScore  float64  `json:"lexical_score"`
	SemanticScore float64  `json:"semantic_score"`
	FusedScore    float64  `json:"fused_score"`
	RerankScore   *float64 `json:"rerank_score,omitempty"`
	RerankReason  string   `json:"rerank_reason,omitempty"`
}

// StageStatusItem reports one pipeline stage in the response metadata.
type StageStatusItem struct {
	Stage      string `json:"stage"`
	Status     string `json:"status"`
	Detail     string `json:"detail,omitempty"`
	DurationMs int64  `json:"duration_ms"`
}

// SearchMetadata is the diagnostics block of the response.
type SearchMetadata struct {
	PipelineID      string            `json:"pipeline_id"`
	QueryUsed       string            `json:"query_used"`
	Identifiers     []string          `json:"identifiers,omitempty"`
	VariationCount  int               `json:"variation_count"`
	TotalCandidates int               `json:"total_candidates"`
	Stages          []StageStatusItem `json:"stages"`
	ElapsedMs       int64             `json:"elapsed_ms"`
	Cached          bool              `json:"cached"`
}

// SearchResponse is the POST /v1/search response envelope.
type SearchResponse struct {
	Success  bool               `json:"success"`
	Results  []SearchResultItem `json:"results"`
	Answer   string             `json:"answer"`
	Metadata SearchMetadata     `json:"metadata"`
}

// StatsResponse is the GET /v1/stats response.
type StatsResponse struct {
	TotalDocuments    int64 `json:"total_documents"`
	EmbeddedDocuments int64 `json:"embedded_documents"`
}

// errorResponse is the shared error envelope.
type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// Handler exposes the search pipeline over HTTP.
type Handler struct {
	pipeline usecase.SearchPipelineUsecase
	repo     domain.DocumentRepository
	logger   *slog.Logger
}

// NewHandler constructs the HTTP handler.
func NewHandler(pipeline usecase.SearchPipelineUsecase, repo domain.DocumentRepository, logger *slog.Logger) *Handler {
	return &Handler{pipeline: pipeline, repo: repo, logger: logger}
}

// Register attaches the handler's routes to the echo instance.
func (h *Handler) Register(e *echo.Echo) {
	e.POST("/v1/search", h.Search)
	e.GET("/v1/stats", h.Stats)
}

// Search runs the full pipeline for one query.
func (h *Handler) Search(c echo.Context) error {
	var req SearchRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body"})
	}

	resp, err := h.pipeline.Execute(c.Request().Context(), usecase.SearchInput{
		Query: req.Query,
		TopK:  req.TopK,
	})
	if err != nil {
		var validationErr *domain.ValidationError
		if errors.As(err, &validationErr) {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: validationErr.Error()})
		}
		h.logger.Error("search_request_failed", slog.String("error", err.Error()))
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "search failed"})
	}

	return c.JSON(http.StatusOK, toSearchResponse(resp))
}

// Stats reports corpus counts.
func (h *Handler) Stats(c echo.Context) error {
	stats, err := h.repo.Stats(c.Request().Context())
	if err != nil {
		h.logger.Error("stats_request_failed", slog.String("error", err.Error()))
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "stats unavailable"})
	}
	return c.JSON(http.StatusOK, StatsResponse{
		TotalDocuments:    stats.TotalDocuments,
		EmbeddedDocuments: stats.EmbeddedDocuments,
	})
}

func toSearchResponse(resp *usecase.PipelineResponse) SearchResponse {
	results := make([]SearchResultItem, len(resp.Results))
	for i, doc := range resp.Results {
		results[i] = SearchResultItem{
			ID:            doc.ID,
			Title:         doc.Title,
			Body:          doc.Body,
			LexicalScore:  doc.LexicalScore,
			SemanticScore: doc.SemanticScore,
			FusedScore:    doc.FusedScore,
			RerankScore:   doc.RerankScore,
			RerankReason:  doc.RerankReason,
		}
	}

	stages := make([]StageStatusItem, len(resp.Metadata.Stages))
	for i, stage := range resp.Metadata.Stages {
		stages[i] = StageStatusItem{
			Stage:      stage.Stage,
			Status:     stage.Status,
			Detail:     stage.Detail,
			DurationMs: stage.Duration.Milliseconds(),
		}
	}

	return SearchResponse{
		Success: resp.Success,
		Results: results,
		Answer:  resp.Answer,
		Metadata: SearchMetadata{
			PipelineID:      resp.Metadata.PipelineID,
			QueryUsed:       resp.Metadata.QueryUsed,
			Identifiers:     resp.Metadata.Identifiers,
			VariationCount:  resp.Metadata.VariationCount,
			TotalCandidates: resp.Metadata.TotalCandidates,
			Stages:          stages,
			ElapsedMs:       resp.Metadata.Elapsed.Milliseconds(),
			Cached:          resp.Metadata.Cached,
		},
	}
}
