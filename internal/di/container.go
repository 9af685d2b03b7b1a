package di

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"qa-search-orchestrator/internal/adapter/llm"
	"qa-search-orchestrator/internal/adapter/repository"
	"qa-search-orchestrator/internal/domain"
	"qa-search-orchestrator/internal/infra/config"
	"qa-search-orchestrator/internal/infra/httpclient"
	"qa-search-orchestrator/internal/usecase"
)

// ApplicationComponents holds all wired dependencies for the application.
type ApplicationComponents struct {
	DocumentRepo domain.DocumentRepository
	Encoder      domain.VectorEncoder
	Pipeline     usecase.SearchPipelineUsecase
}

// NewApplicationComponents wires all dependencies from config and database
// pool. Misconfigured pipeline tunables (for example fusion weights whose sum
// exceeds 1) are rejected here so they never reach a running pipeline.
func NewApplicationComponents(cfg *config.Config, pool *pgxpool.Pool, log *slog.Logger) (*ApplicationComponents, error) {
	pipelineCfg, err := buildPipelineConfig(cfg)
	if err != nil {
		return nil, err
	}

	docRepo := repository.NewPgxDocumentRepository(pool)

	// Shared HTTP clients with connection pooling
	embedderHTTP := httpclient.NewPooledClient(time.Duration(cfg.Embedder.Timeout) * time.Second)
	generatorHTTP := httpclient.NewPooledClient(time.Duration(cfg.Generator.Timeout) * time.Second)
	rerankHTTP := httpclient.NewPooledClient(time.Duration(cfg.Rerank.Timeout) * time.Second)

	encoder := llm.NewEmbedderClient(
		cfg.Embedder.URL,
		cfg.Embedder.Model,
		cfg.Embedder.APIKey,
		cfg.Embedder.RPS,
		time.Duration(cfg.Embedder.Timeout)*time.Second,
		log,
		embedderHTTP,
	)
	generator := llm.NewGeneratorClient(
		cfg.Generator.URL,
		cfg.Generator.Model,
		cfg.Generator.APIKey,
		time.Duration(cfg.Generator.Timeout)*time.Second,
		log,
		generatorHTTP,
	)

	var reranker domain.Reranker
	if cfg.Rerank.Enabled {
		reranker = llm.NewRerankerClient(
			cfg.Rerank.URL,
			cfg.Rerank.Model,
			cfg.Rerank.APIKey,
			time.Duration(cfg.Rerank.Timeout)*time.Second,
			log,
			rerankHTTP,
		)
		log.Info("reranker_enabled",
			slog.String("url", cfg.Rerank.URL),
			slog.String("model", cfg.Rerank.Model))
	}

	pipeline := usecase.NewSearchPipelineUsecase(docRepo, encoder, reranker, generator, pipelineCfg, log)

	return &ApplicationComponents{
		DocumentRepo: docRepo,
		Encoder:      encoder,
		Pipeline:     pipeline,
	}, nil
}

// buildPipelineConfig maps environment configuration onto the pipeline
// tunables, starting from defaults so unset knobs keep their stock values.
func buildPipelineConfig(cfg *config.Config) (usecase.PipelineConfig, error) {
	pc := usecase.DefaultPipelineConfig()
	pc.DefaultTopK = cfg.Pipeline.DefaultTopK
	pc.SearchTimeout = time.Duration(cfg.Pipeline.SearchTimeout) * time.Second
	pc.Lexical.Limit = cfg.Pipeline.LexicalLimit
	pc.Semantic.Limit = cfg.Pipeline.SemanticLimit
	pc.Semantic.SimilarityFloor = cfg.Pipeline.SimilarityFloor
	pc.Fusion.LexicalWeight = cfg.Pipeline.LexicalWeight
	pc.Fusion.SemanticWeight = cfg.Pipeline.SemanticWeight
	pc.Fusion.Limit = cfg.Pipeline.FusionLimit
	pc.Rerank.Enabled = cfg.Rerank.Enabled
	pc.Rerank.Candidates = cfg.Rerank.Candidates
	pc.Rerank.Timeout = time.Duration(cfg.Rerank.Timeout) * time.Second
	pc.Synthesis.Enabled = cfg.Pipeline.SynthesisOn
	pc.Synthesis.MaxTokens = cfg.Pipeline.MaxAnswerTokens
	pc.Synthesis.Timeout = time.Duration(cfg.Generator.Timeout) * time.Second
	pc.Cache.Size = cfg.Pipeline.CacheSize
	pc.Cache.TTL = time.Duration(cfg.Pipeline.CacheTTLMinutes) * time.Minute
	if err := pc.Validate(); err != nil {
		return usecase.PipelineConfig{}, fmt.Errorf("pipeline configuration invalid: %w", err)
	}
	return pc, nil
}
