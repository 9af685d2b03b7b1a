package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/sync/errgroup"

	"qa-search-orchestrator/internal/domain"
	"qa-search-orchestrator/internal/usecase/preprocess"
	"qa-search-orchestrator/internal/usecase/retrieval"
)

// SearchInput defines the pipeline entrypoint parameters.
type SearchInput struct {
	Query string
	TopK  int
}

// Stage status values recorded in the response metadata.
const (
	StatusOK       = "ok"
	StatusFallback = "fallback"
	StatusSkipped  = "skipped"
	StatusFailed   = "failed"
)

// StageStatus reports how one pipeline stage concluded.
type StageStatus struct {
	Stage    string
	Status   string
	Detail   string
	Duration time.Duration
}

// PipelineMetadata carries diagnostics alongside the ranked results.
type PipelineMetadata struct {
	PipelineID      string
	QueryUsed       string
	Identifiers     []string
	VariationCount  int
	TotalCandidates int
	Stages          []StageStatus
	Elapsed         time.Duration
	Cached          bool
}

// PipelineResponse is the final envelope returned to callers.
type PipelineResponse struct {
	Success  bool
	Results  []domain.ScoredDocument
	Answer   string
	Metadata PipelineMetadata
}

// SearchPipelineUsecase is the pipeline entrypoint exposed to callers such
// as the HTTP layer.
type SearchPipelineUsecase interface {
	Execute(ctx context.Context, input SearchInput) (*PipelineResponse, error)
}

type searchPipelineUsecase struct {
	repo         domain.DocumentRepository
	encoder      domain.VectorEncoder
	reranker     domain.Reranker
	preprocessor *preprocess.Preprocessor
	synthesizer  *AnswerSynthesizer
	cfg          PipelineConfig
	logger       *slog.Logger
	cache        *expirable.LRU[string, *PipelineResponse]
}

// NewSearchPipelineUsecase wires the retrieval pipeline. The reranker and
// generator are optional; nil disables those stages.
func NewSearchPipelineUsecase(
	repo domain.DocumentRepository,
	encoder domain.VectorEncoder,
	reranker domain.Reranker,
	generator domain.Generator,
	cfg PipelineConfig,
	logger *slog.Logger,
) SearchPipelineUsecase {
	var cache *expirable.LRU[string, *PipelineResponse]
	if cfg.Cache.Size > 0 {
		cache = expirable.NewLRU[string, *PipelineResponse](cfg.Cache.Size, nil, cfg.Cache.TTL)
	}
	return &searchPipelineUsecase{
		repo:         repo,
		encoder:      encoder,
		reranker:     reranker,
		preprocessor: preprocess.NewPreprocessor(cfg.Preprocess, logger),
		synthesizer:  NewAnswerSynthesizer(generator, cfg.Synthesis, logger),
		cfg:          cfg,
		logger:       logger,
		cache:        cache,
	}
}

func (u *searchPipelineUsecase) Execute(ctx context.Context, input SearchInput) (*PipelineResponse, error) {
	start := time.Now()

	if strings.TrimSpace(input.Query) == "" {
		return nil, domain.NewValidationError("query must be a non-empty string")
	}

	topK := input.TopK
	if topK <= 0 {
		topK = u.cfg.DefaultTopK
	}

	cacheKey := fmt.Sprintf("%d|%s", topK, input.Query)
	if u.cache != nil {
		if cached, ok := u.cache.Get(cacheKey); ok {
			resp := *cached
			resp.Metadata.Cached = true
			return &resp, nil
		}
	}

	pipelineID := uuid.NewString()
	logger := u.logger.With(slog.String("pipeline_id", pipelineID))
	var stages []StageStatus

	// Stage 1: preprocessing. Never fails; degraded results carry Err.
	preStart := time.Now()
	pre := u.preprocessor.Process(input.Query)
	queryUsed := pre.CanonicalQuery()
	preStatus := StageStatus{Stage: "preprocess", Status: StatusOK, Duration: time.Since(preStart)}
	if pre.Err != nil {
		preStatus.Status = StatusFallback
		preStatus.Detail = pre.Err.Error()
	}
	stages = append(stages, preStatus)

	logger.Info("query_preprocessed",
		slog.String("query_used", queryUsed),
		slog.Int("variations", len(pre.Variations)),
		slog.Int("identifiers", len(pre.Identifiers)))

	// Stage 2: lexical and semantic search have no data dependency and run
	// concurrently; fusion waits for both to complete or fail. Branch errors
	// are kept per-branch because one failing side degrades rather than
	// aborts, so neither goroutine reports into the group.
	var (
		lexResult   *domain.SearchResult
		lexFellBack bool
		lexErr      error
		semResult   *domain.SearchResult
		semErr      error
		lexElapsed  time.Duration
		semElapsed  time.Duration
	)

	var g errgroup.Group
	g.Go(func() error {
		branchStart := time.Now()
		branchCtx, cancel := context.WithTimeout(ctx, u.cfg.SearchTimeout)
		defer cancel()
		lexResult, lexFellBack, lexErr = retrieval.LexicalSearch(branchCtx, u.repo, queryUsed, u.cfg.Lexical.Limit, logger)
		lexElapsed = time.Since(branchStart)
		return nil
	})
	g.Go(func() error {
		branchStart := time.Now()
		branchCtx, cancel := context.WithTimeout(ctx, u.cfg.SearchTimeout)
		defer cancel()
		semResult, semErr = retrieval.SemanticSearch(branchCtx, u.repo, u.encoder, queryUsed, u.cfg.Semantic, logger)
		semElapsed = time.Since(branchStart)
		return nil
	})
	_ = g.Wait()

	stages = append(stages, lexicalStatus(lexResult, lexFellBack, lexErr, lexElapsed))
	stages = append(stages, semanticStatus(semErr, semElapsed))

	if lexErr != nil && semErr != nil {
		logger.Error("all_retrieval_stages_failed",
			slog.String("lexical_error", lexErr.Error()),
			slog.String("semantic_error", semErr.Error()))
		return nil, &domain.SearchError{Stage: "retrieval", Err: fmt.Errorf("lexical: %v; semantic: %v", lexErr, semErr)}
	}

	var lexDocs, semDocs []domain.ScoredDocument
	if lexResult != nil {
		lexDocs = lexResult.Results
	}
	if semResult != nil {
		semDocs = semResult.Results
	}

	// Stage 3: score fusion.
	fuseStart := time.Now()
	fusionCfg := u.cfg.Fusion
	if fusionCfg.Limit < topK {
		fusionCfg.Limit = topK
	}
	fused, totalCandidates := retrieval.FuseScores(lexDocs, semDocs, fusionCfg)
	stages = append(stages, StageStatus{Stage: "fusion", Status: StatusOK, Duration: time.Since(fuseStart)})

	logger.Info("scores_fused",
		slog.Int("lexical_count", len(lexDocs)),
		slog.Int("semantic_count", len(semDocs)),
		slog.Int("fused_count", fused.Count),
		slog.Int("total_candidates", totalCandidates))

	// Stage 4: reranking against the original user query, pass-through on
	// any failure.
	rerankStart := time.Now()
	rerankCfg := u.cfg.Rerank
	rerankCfg.TopK = topK
	final, applied := retrieval.Rerank(ctx, u.reranker, input.Query, fused.Results, rerankCfg, logger)
	rerankStatus := StageStatus{Stage: "rerank", Status: StatusOK, Duration: time.Since(rerankStart)}
	if !applied {
		rerankStatus.Status = StatusSkipped
		if rerankCfg.Enabled && u.reranker != nil && len(fused.Results) > 0 {
			rerankStatus.Status = StatusFallback
			rerankStatus.Detail = "fused order passed through"
		}
	}
	stages = append(stages, rerankStatus)

	if len(final) > topK {
		final = final[:topK]
	}

	// Stage 5: answer synthesis, templated fallback on any failure.
	synthStart := time.Now()
	answer, usedTemplate := u.synthesizer.Synthesize(ctx, input.Query, final)
	synthStatus := StageStatus{Stage: "synthesis", Status: StatusOK, Duration: time.Since(synthStart)}
	if usedTemplate {
		synthStatus.Status = StatusFallback
		synthStatus.Detail = "templated answer"
	}
	stages = append(stages, synthStatus)

	response := &PipelineResponse{
		Success: true,
		Results: final,
		Answer:  answer,
		Metadata: PipelineMetadata{
			PipelineID:      pipelineID,
			QueryUsed:       queryUsed,
			Identifiers:     pre.Identifiers,
			VariationCount:  len(pre.Variations),
			TotalCandidates: totalCandidates,
			Stages:          stages,
			Elapsed:         time.Since(start),
		},
	}

	if u.cache != nil {
		u.cache.Add(cacheKey, response)
	}

	logger.Info("pipeline_completed",
		slog.Int("result_count", len(final)),
		slog.Bool("rerank_applied", applied),
		slog.Bool("templated_answer", usedTemplate),
		slog.Int64("elapsed_ms", response.Metadata.Elapsed.Milliseconds()))

	return response, nil
}

func lexicalStatus(result *domain.SearchResult, fellBack bool, err error, elapsed time.Duration) StageStatus {
	status := StageStatus{Stage: "lexical", Status: StatusOK, Duration: elapsed}
	switch {
	case err != nil:
		status.Status = StatusFailed
		status.Detail = err.Error()
	case fellBack:
		status.Status = StatusFallback
		status.Detail = "keyword containment query"
	case result != nil:
		status.Detail = fmt.Sprintf("%d hits", result.Count)
	}
	return status
}

func semanticStatus(err error, elapsed time.Duration) StageStatus {
	status := StageStatus{Stage: "semantic", Status: StatusOK, Duration: elapsed}
	if err != nil {
		var embErr *domain.EmbeddingError
		if errors.As(err, &embErr) {
			status.Status = StatusSkipped
			status.Detail = "embedding unavailable, lexical-only"
		} else {
			status.Status = StatusFailed
			status.Detail = err.Error()
		}
	}
	return status
}
