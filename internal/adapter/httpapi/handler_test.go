package httpapi_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"qa-search-orchestrator/internal/adapter/httpapi"
	"qa-search-orchestrator/internal/domain"
	"qa-search-orchestrator/internal/usecase"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

// MockPipeline
type MockPipeline struct {
	mock.Mock
}

func (m *MockPipeline) Execute(ctx context.Context, input usecase.SearchInput) (*usecase.PipelineResponse, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.PipelineResponse), args.Error(1)
}

// MockStatsRepository only backs the stats endpoint in these tests.
type MockStatsRepository struct {
	mock.Mock
}

func (m *MockStatsRepository) FullTextSearch(ctx context.Context, query string, limit int) ([]domain.ScoredDocument, error) {
	args := m.Called(ctx, query, limit)
	return nil, args.Error(1)
}

func (m *MockStatsRepository) SearchByKeywords(ctx context.Context, keywords []string, limit int) ([]domain.Document, error) {
	args := m.Called(ctx, keywords, limit)
	return nil, args.Error(1)
}

func (m *MockStatsRepository) EnsureTextIndex(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockStatsRepository) ListEmbedded(ctx context.Context) ([]domain.Document, error) {
	args := m.Called(ctx)
	return nil, args.Error(1)
}

func (m *MockStatsRepository) Stats(ctx context.Context) (*domain.DocumentStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DocumentStats), args.Error(1)
}

func performJSON(e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestHandler_Search_Success(t *testing.T) {
	pipeline := new(MockPipeline)
	repo := new(MockStatsRepository)

	score := 0.92
	pipeline.On("Execute", mock.Anything, usecase.SearchInput{Query: "payment timeout", TopK: 3}).Return(&usecase.PipelineResponse{
		Success: true,
		Results: []domain.ScoredDocument{{
			Document:     domain.Document{ID: "doc-1", Title: "Payments", Body: "text"},
			LexicalScore: 0.5, SemanticScore: 0.8, FusedScore: 0.68,
			RerankScore: &score, RerankReason: "direct",
		}},
		Answer: "Found it.",
		Metadata: usecase.PipelineMetadata{
			PipelineID:      "pid-1",
			QueryUsed:       "payment timeout",
			TotalCandidates: 7,
			Stages: []usecase.StageStatus{
				{Stage: "lexical", Status: usecase.StatusOK, Duration: 12 * time.Millisecond},
			},
			Elapsed: 40 * time.Millisecond,
		},
	}, nil)

	e := echo.New()
	httpapi.NewHandler(pipeline, repo, newTestLogger()).Register(e)

	rec := performJSON(e, http.MethodPost, "/v1/search", `{"query":"payment timeout","top_k":3}`)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp httpapi.SearchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "doc-1", resp.Results[0].ID)
	require.NotNil(t, resp.Results[0].RerankScore)
	assert.Equal(t, 0.92, *resp.Results[0].RerankScore)
	assert.Equal(t, "Found it.", resp.Answer)
	assert.Equal(t, "pid-1", resp.Metadata.PipelineID)
	assert.Equal(t, 7, resp.Metadata.TotalCandidates)
	require.Len(t, resp.Metadata.Stages, 1)
	assert.Equal(t, int64(12), resp.Metadata.Stages[0].DurationMs)
}

func TestHandler_Search_ValidationErrorReturns400(t *testing.T) {
	pipeline := new(MockPipeline)
	pipeline.On("Execute", mock.Anything, mock.Anything).Return(nil, domain.NewValidationError("query must be a non-empty string"))

	e := echo.New()
	httpapi.NewHandler(pipeline, new(MockStatsRepository), newTestLogger()).Register(e)

	rec := performJSON(e, http.MethodPost, "/v1/search", `{"query":""}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "non-empty")
}

func TestHandler_Search_PipelineFailureReturns500(t *testing.T) {
	pipeline := new(MockPipeline)
	pipeline.On("Execute", mock.Anything, mock.Anything).Return(nil, &domain.SearchError{Stage: "retrieval", Err: errors.New("everything down")})

	e := echo.New()
	httpapi.NewHandler(pipeline, new(MockStatsRepository), newTestLogger()).Register(e)

	rec := performJSON(e, http.MethodPost, "/v1/search", `{"query":"q"}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	// Internal details never leak to the client.
	assert.NotContains(t, rec.Body.String(), "everything down")
}

func TestHandler_Search_MalformedBodyReturns400(t *testing.T) {
	e := echo.New()
	httpapi.NewHandler(new(MockPipeline), new(MockStatsRepository), newTestLogger()).Register(e)

	rec := performJSON(e, http.MethodPost, "/v1/search", `{"query":`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_Stats(t *testing.T) {
	repo := new(MockStatsRepository)
	repo.On("Stats", mock.Anything).Return(&domain.DocumentStats{TotalDocuments: 120, EmbeddedDocuments: 97}, nil)

	e := echo.New()
	httpapi.NewHandler(new(MockPipeline), repo, newTestLogger()).Register(e)

	req := httptest.NewRequest(http.MethodGet, "/v1/stats", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp httpapi.StatsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(120), resp.TotalDocuments)
	assert.Equal(t, int64(97), resp.EmbeddedDocuments)
}

func TestHandler_Stats_RepositoryFailure(t *testing.T) {
	repo := new(MockStatsRepository)
	repo.On("Stats", mock.Anything).Return(nil, errors.New("db down"))

	e := echo.New()
	httpapi.NewHandler(new(MockPipeline), repo, newTestLogger()).Register(e)

	req := httptest.NewRequest(http.MethodGet, "/v1/stats", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
