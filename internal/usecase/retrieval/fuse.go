package retrieval

import (
	"fmt"
	"sort"

	"qa-search-orchestrator/internal/domain"
)

// FusionConfig holds score fusion parameters. Weights are tunable defaults;
// their sum must not exceed 1 so fused scores stay in [0,1].
type FusionConfig struct {
	LexicalWeight  float64
	SemanticWeight float64
	// Limit caps the fused list (the rerank candidate pool).
	Limit int
}

// DefaultFusionConfig returns the stock weight pair and pool size.
func DefaultFusionConfig() FusionConfig {
	return FusionConfig{
		LexicalWeight:  0.4,
		SemanticWeight: 0.6,
		Limit:          15,
	}
}

// Validate checks the weight pair.
func (c FusionConfig) Validate() error {
	if c.LexicalWeight < 0 || c.SemanticWeight < 0 {
		return fmt.Errorf("fusion weights must be non-negative, got %.2f/%.2f", c.LexicalWeight, c.SemanticWeight)
	}
	if sum := c.LexicalWeight + c.SemanticWeight; sum > 1 {
		return fmt.Errorf("fusion weights must sum to at most 1, got %.2f", sum)
	}
	if c.Limit <= 0 {
		return fmt.Errorf("fusion limit must be positive, got %d", c.Limit)
	}
	return nil
}

const absentRank = 1 << 30

// normalizeScore min-max normalizes a raw score within its source's range.
// A degenerate range (min == max) maps every score to 0.5 instead of
// collapsing the source to 0.
func normalizeScore(score, min, max float64) float64 {
	if max == min {
		return 0.5
	}
	return (score - min) / (max - min)
}

// FuseScores merges a lexical and a semantic result list into one ranked
// list keyed by document identity. Each source's scores are min-max
// normalized across that source's own result set; a document absent from a
// source contributes 0 for it. Fused score = lexical weight x normalized
// lexical + semantic weight x normalized semantic, sorted descending with
// ties broken by lexical rank, then semantic rank, then document ID. The
// returned int is the total number of unique candidates before truncation.
func FuseScores(lexical, semantic []domain.ScoredDocument, cfg FusionConfig) (*domain.SearchResult, int) {
	type entry struct {
		doc     domain.ScoredDocument
		lexRank int
		semRank int
		inLex   bool
		inSem   bool
	}

	entries := make(map[string]*entry)
	order := make([]string, 0, len(lexical)+len(semantic))

	for rank, doc := range lexical {
		if _, ok := entries[doc.ID]; ok {
			continue
		}
		d := doc
		entries[doc.ID] = &entry{doc: d, lexRank: rank, semRank: absentRank, inLex: true}
		order = append(order, doc.ID)
	}
	for rank, doc := range semantic {
		if e, ok := entries[doc.ID]; ok {
			// Lexical and semantic hits for the same document merge.
			e.doc.SemanticScore = doc.SemanticScore
			if e.doc.Embedding == nil {
				e.doc.Embedding = doc.Embedding
			}
			if !e.inSem {
				e.semRank = rank
				e.inSem = true
			}
			continue
		}
		d := doc
		entries[doc.ID] = &entry{doc: d, lexRank: absentRank, semRank: rank, inSem: true}
		order = append(order, doc.ID)
	}

	lexMin, lexMax := scoreRange(lexical, func(d domain.ScoredDocument) float64 { return d.LexicalScore })
	semMin, semMax := scoreRange(semantic, func(d domain.ScoredDocument) float64 { return d.SemanticScore })

	fused := make([]domain.ScoredDocument, 0, len(order))
	ranks := make(map[string]*entry, len(entries))
	for _, id := range order {
		e := entries[id]
		var normLex, normSem float64
		if e.inLex {
			normLex = normalizeScore(e.doc.LexicalScore, lexMin, lexMax)
		}
		if e.inSem {
			normSem = normalizeScore(e.doc.SemanticScore, semMin, semMax)
		}
		e.doc.FusedScore = cfg.LexicalWeight*normLex + cfg.SemanticWeight*normSem
		ranks[id] = e
		fused = append(fused, e.doc)
	}

	sort.Slice(fused, func(i, j int) bool {
		a, b := fused[i], fused[j]
		if a.FusedScore != b.FusedScore {
			return a.FusedScore > b.FusedScore
		}
		ra, rb := ranks[a.ID], ranks[b.ID]
		if ra.lexRank != rb.lexRank {
			return ra.lexRank < rb.lexRank
		}
		if ra.semRank != rb.semRank {
			return ra.semRank < rb.semRank
		}
		return a.ID < b.ID
	})

	total := len(fused)
	if cfg.Limit > 0 && len(fused) > cfg.Limit {
		fused = fused[:cfg.Limit]
	}

	return &domain.SearchResult{
		Stage:   domain.StageHybrid,
		Results: fused,
		Count:   len(fused),
	}, total
}

func scoreRange(docs []domain.ScoredDocument, score func(domain.ScoredDocument) float64) (float64, float64) {
	if len(docs) == 0 {
		return 0, 0
	}
	min, max := score(docs[0]), score(docs[0])
	for _, doc := range docs[1:] {
		s := score(doc)
		if s < min {
			min = s
		}
		if s > max {
			max = s
		}
	}
	return min, max
}
