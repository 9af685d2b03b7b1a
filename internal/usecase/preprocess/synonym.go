package preprocess

import (
	"regexp"
	"strings"
)

// DefaultMaxVariations bounds the variation list when no cap is given.
const DefaultMaxVariations = 5

var tokenCleanRe = regexp.MustCompile(`[^\w]`)

// ExpandSynonyms generates alternate phrasings of text by substituting
// dictionary synonyms for recognized whole-word tokens, one substitution per
// variant. The original text is always element 0; variants are de-duplicated
// and the list is truncated to maxVariations (DefaultMaxVariations when
// non-positive). Deliberately single-substitution-per-pass: simultaneous
// substitutions are never combined, keeping variation counts bounded.
func ExpandSynonyms(text string, custom map[string][]string, maxVariations int) []string {
	if text == "" {
		return nil
	}
	if maxVariations <= 0 {
		maxVariations = DefaultMaxVariations
	}

	combined := make(map[string][]string, len(Synonyms)+len(custom))
	for word, alts := range Synonyms {
		combined[strings.ToLower(word)] = alts
	}
	for word, alts := range custom {
		combined[strings.ToLower(word)] = alts
	}

	variations := []string{text}
	seen := map[string]bool{text: true}

	for _, token := range strings.Fields(strings.ToLower(text)) {
		word := tokenCleanRe.ReplaceAllString(token, "")
		alts, ok := combined[word]
		if !ok || word == "" {
			continue
		}
		pattern := regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(word) + `\b`)
		for _, synonym := range alts {
			variant := pattern.ReplaceAllString(text, synonym)
			if !seen[variant] {
				seen[variant] = true
				variations = append(variations, variant)
			}
		}
	}

	if len(variations) > maxVariations {
		variations = variations[:maxVariations]
	}
	return variations
}
