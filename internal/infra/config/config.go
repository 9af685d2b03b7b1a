package config

import (
	"os"
	"strconv"
	"strings"
)

// DBConfig holds PostgreSQL connection settings.
type DBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	MaxConns int
}

// EmbedderConfig holds the embeddings endpoint settings.
type EmbedderConfig struct {
	URL     string
	Model   string
	APIKey  string
	Timeout int
	RPS     float64
}

// GeneratorConfig holds the answer generation endpoint settings.
type GeneratorConfig struct {
	URL     string
	Model   string
	APIKey  string
	Timeout int
}

// RerankConfig holds the LLM judge endpoint settings.
type RerankConfig struct {
	Enabled    bool
	URL        string
	Model      string
	APIKey     string
	Timeout    int
	Candidates int
}

// PipelineTuning holds the search pipeline knobs.
type PipelineTuning struct {
	DefaultTopK     int
	SearchTimeout   int
	LexicalLimit    int
	SemanticLimit   int
	SimilarityFloor float64
	LexicalWeight   float64
	SemanticWeight  float64
	FusionLimit     int
	SynthesisOn     bool
	MaxAnswerTokens int
	CacheSize       int
	CacheTTLMinutes int
}

// Config is the full application configuration loaded from the environment.
type Config struct {
	Env         string
	Port        string
	OTelEnabled bool
	DB          DBConfig
	Embedder    EmbedderConfig
	Generator   GeneratorConfig
	Rerank      RerankConfig
	Pipeline    PipelineTuning
}

// Load reads the configuration from environment variables with defaults
// suitable for local development.
func Load() *Config {
	return &Config{
		Env:         getEnv("ENV", "development"),
		Port:        getEnv("PORT", "9020"),
		OTelEnabled: getEnvBool("OTEL_ENABLED", false),
		DB: DBConfig{
			Host:     getEnv("DB_HOST", "search-db"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "search_user"),
			Password: getSecret("DB_PASSWORD", "DB_PASSWORD_FILE", "search_password"),
			Name:     getEnv("DB_NAME", "search_db"),
			MaxConns: getEnvInt("DB_MAX_CONNS", 10),
		},
		Embedder: EmbedderConfig{
			URL:     getEnv("EMBEDDER_URL", "http://llm-gateway:11434"),
			Model:   getEnv("EMBEDDING_MODEL", "embeddinggemma"),
			APIKey:  getSecret("EMBEDDER_API_KEY", "EMBEDDER_API_KEY_FILE", ""),
			Timeout: getEnvInt("EMBEDDER_TIMEOUT", 30),
			RPS:     getEnvFloat("EMBEDDER_RPS", 5),
		},
		Generator: GeneratorConfig{
			URL:     getEnv("GENERATOR_URL", "http://llm-gateway:11434"),
			Model:   getEnv("GENERATOR_MODEL", "gpt-oss20b-cpu"),
			APIKey:  getSecret("GENERATOR_API_KEY", "GENERATOR_API_KEY_FILE", ""),
			Timeout: getEnvInt("GENERATOR_TIMEOUT", 60),
		},
		Rerank: RerankConfig{
			Enabled:    getEnvBool("RERANK_ENABLED", true),
			URL:        getEnv("RERANK_URL", "http://llm-gateway:11434"),
			Model:      getEnv("RERANK_MODEL", "gpt-oss20b-cpu"),
			APIKey:     getSecret("RERANK_API_KEY", "RERANK_API_KEY_FILE", ""),
			Timeout:    getEnvInt("RERANK_TIMEOUT", 30),
			Candidates: getEnvInt("RERANK_CANDIDATES", 15),
		},
		Pipeline: PipelineTuning{
			DefaultTopK:     getEnvInt("SEARCH_DEFAULT_TOP_K", 5),
			SearchTimeout:   getEnvInt("SEARCH_TIMEOUT", 10),
			LexicalLimit:    getEnvInt("LEXICAL_LIMIT", 20),
			SemanticLimit:   getEnvInt("SEMANTIC_LIMIT", 20),
			SimilarityFloor: getEnvFloat("SEMANTIC_SIMILARITY_FLOOR", 0.3),
			LexicalWeight:   getEnvFloat("FUSION_LEXICAL_WEIGHT", 0.4),
			SemanticWeight:  getEnvFloat("FUSION_SEMANTIC_WEIGHT", 0.6),
			FusionLimit:     getEnvInt("FUSION_LIMIT", 15),
			SynthesisOn:     getEnvBool("SYNTHESIS_ENABLED", true),
			MaxAnswerTokens: getEnvInt("SYNTHESIS_MAX_TOKENS", 300),
			CacheSize:       getEnvInt("SEARCH_CACHE_SIZE", 256),
			CacheTTLMinutes: getEnvInt("SEARCH_CACHE_TTL_MINUTES", 5),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

// getSecret resolves a secret from the environment directly or, failing
// that, from a file path named by fileEnvKey (docker/k8s secret mounts).
func getSecret(envKey, fileEnvKey, fallback string) string {
	if value, ok := os.LookupEnv(envKey); ok {
		return value
	}
	if filePath, ok := os.LookupEnv(fileEnvKey); ok {
		content, err := os.ReadFile(filePath)
		if err == nil {
			return strings.TrimSpace(string(content))
		}
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return fallback
}
