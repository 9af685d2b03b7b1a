package preprocess

import (
	"errors"
	"log/slog"
	"strings"
	"time"
)

// Options configures the preprocessing pipeline. Custom dictionaries are
// merged over the built-ins with caller entries winning on collision.
type Options struct {
	EnableAbbreviations bool
	EnableSynonyms      bool
	MaxVariations       int
	CustomAbbreviations map[string]string
	CustomSynonyms      map[string][]string
}

// DefaultOptions enables every step with the default variation cap.
func DefaultOptions() Options {
	return Options{
		EnableAbbreviations: true,
		EnableSynonyms:      true,
		MaxVariations:       DefaultMaxVariations,
	}
}

// Metadata carries preprocessing diagnostics into the pipeline response.
type Metadata struct {
	Duration              time.Duration
	OriginalLength        int
	NormalizedLength      int
	AbbreviationsExpanded int
	VariationsGenerated   int
	IdentifiersExtracted  int
}

// Result is the immutable outcome of preprocessing one query. Variations is
// bounded and ordered; its first element, when present, is the canonical
// query used downstream.
type Result struct {
	Original     string
	Normalized   string
	Expanded     string
	Variations   []string
	Identifiers  []string
	Replacements []Replacement
	Metadata     Metadata
	Err          error
}

// CanonicalQuery selects the query actually used by the retrieval stages:
// first synonym variation, else abbreviation-expanded text, else normalized
// text, else the raw query. Guards against any step degrading to empty
// output.
func (r Result) CanonicalQuery() string {
	if len(r.Variations) > 0 && r.Variations[0] != "" {
		return r.Variations[0]
	}
	if r.Expanded != "" {
		return r.Expanded
	}
	if r.Normalized != "" {
		return r.Normalized
	}
	return r.Original
}

// Preprocessor composes normalization, abbreviation expansion, and synonym
// expansion into one pipeline.
type Preprocessor struct {
	opts   Options
	logger *slog.Logger
}

// NewPreprocessor builds a preprocessor with the given options and event
// sink.
func NewPreprocessor(opts Options, logger *slog.Logger) *Preprocessor {
	if opts.MaxVariations <= 0 {
		opts.MaxVariations = DefaultMaxVariations
	}
	return &Preprocessor{opts: opts, logger: logger}
}

// Process runs the full preprocessing pipeline. It never fails its caller:
// on empty input it returns the best-available degraded result annotated
// with Err, so retrieval can always proceed with something.
func (p *Preprocessor) Process(raw string) Result {
	start := time.Now()

	result := Result{
		Original: raw,
		Metadata: Metadata{OriginalLength: len(raw)},
	}

	if strings.TrimSpace(raw) == "" {
		result.Normalized = strings.ToLower(raw)
		result.Err = errors.New("query is empty")
		result.Metadata.Duration = time.Since(start)
		p.logger.Warn("preprocessing_degraded", slog.String("reason", result.Err.Error()))
		return result
	}

	result.Normalized = NormalizeText(raw)
	result.Identifiers = ExtractIdentifiers(raw)

	result.Expanded = result.Normalized
	if p.opts.EnableAbbreviations {
		expansion := ExpandAbbreviations(result.Normalized, p.opts.CustomAbbreviations)
		result.Expanded = expansion.Expanded
		result.Replacements = expansion.Replacements
	}

	result.Variations = []string{result.Expanded}
	if p.opts.EnableSynonyms {
		result.Variations = ExpandSynonyms(result.Expanded, p.opts.CustomSynonyms, p.opts.MaxVariations)
	}

	result.Metadata = Metadata{
		Duration:              time.Since(start),
		OriginalLength:        len(raw),
		NormalizedLength:      len(result.Normalized),
		AbbreviationsExpanded: len(result.Replacements),
		VariationsGenerated:   len(result.Variations),
		IdentifiersExtracted:  len(result.Identifiers),
	}

	p.logger.Debug("preprocessing_completed",
		slog.String("normalized", result.Normalized),
		slog.Int("replacements", len(result.Replacements)),
		slog.Int("variations", len(result.Variations)),
		slog.Int("identifiers", len(result.Identifiers)),
		slog.Int64("duration_ms", result.Metadata.Duration.Milliseconds()))

	return result
}
