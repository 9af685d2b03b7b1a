package domain

// Document is a read-only record owned by the document store. The pipeline
// never mutates documents; it only annotates transient copies with scores.
type Document struct {
	ID        string
	Title     string
	Body      string
	Embedding []float32
}

// ScoredDocument carries a document through the pipeline together with the
// independent relevance signals collected along the way. LexicalScore is on
// the store's native scale, SemanticScore is cosine similarity, FusedScore
// is always in [0,1]. RerankScore, when set, supersedes FusedScore for
// ordering but both are retained for inspection.
type ScoredDocument struct {
	Document
	LexicalScore  float64
	SemanticScore float64
	FusedScore    float64
	RerankScore   *float64
	RerankReason  string
}

// Stage identifies which pipeline stage produced a result set.
type Stage string

const (
	StageLexical  Stage = "lexical"
	StageKeyword  Stage = "keyword"
	StageSemantic Stage = "semantic"
	StageHybrid   Stage = "hybrid"
	StageReranked Stage = "reranked"
)

// SearchResult is the hand-off contract between stages: an ordered list of
// scored documents tagged with the stage that produced it.
type SearchResult struct {
	Stage   Stage
	Results []ScoredDocument
	Count   int
}

// DocumentStats summarizes the store contents for diagnostics.
type DocumentStats struct {
	TotalDocuments    int64
	EmbeddedDocuments int64
}
