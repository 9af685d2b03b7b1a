package preprocess

import (
	"regexp"
	"sort"
	"strings"
)

// Replacement records one abbreviation substitution.
type Replacement struct {
	From string
	To   string
}

// Expansion is the result of expanding abbreviations in a query.
type Expansion struct {
	Expanded     string
	Replacements []Replacement
}

// ExpandAbbreviations replaces every dictionary key matched as a whole word
// (case-insensitive) with its full form. Caller entries in custom are merged
// over the built-in dictionary and win on collision. Replacements are
// applied and recorded in sorted dictionary-key order; this ordering is
// implementation-defined, not left-to-right occurrence order in the text.
// Idempotent on already-expanded text.
func ExpandAbbreviations(text string, custom map[string]string) Expansion {
	if text == "" {
		return Expansion{Expanded: text}
	}

	combined := make(map[string]string, len(Abbreviations)+len(custom))
	for abbr, full := range Abbreviations {
		combined[strings.ToLower(abbr)] = full
	}
	for abbr, full := range custom {
		combined[strings.ToLower(abbr)] = full
	}

	keys := make([]string, 0, len(combined))
	for abbr := range combined {
		keys = append(keys, abbr)
	}
	sort.Strings(keys)

	expanded := strings.ToLower(text)
	var replacements []Replacement
	for _, abbr := range keys {
		pattern := regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(abbr) + `\b`)
		if pattern.MatchString(expanded) {
			replacements = append(replacements, Replacement{From: abbr, To: combined[abbr]})
			expanded = pattern.ReplaceAllString(expanded, combined[abbr])
		}
	}

	return Expansion{Expanded: expanded, Replacements: replacements}
}
