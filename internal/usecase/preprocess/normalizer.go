package preprocess

import (
	"regexp"
	"strings"
)

var (
	specialCharsRe = regexp.MustCompile(`[^\w\s-]`)
	whitespaceRe   = regexp.MustCompile(`\s+`)
)

// NormalizeText lowercases, trims, replaces special characters other than
// hyphen with single spaces, and collapses internal whitespace. Idempotent;
// empty input yields an empty string rather than an error, which callers
// must treat as "nothing to search".
func NormalizeText(text string) string {
	s := strings.ToLower(strings.TrimSpace(text))
	s = specialCharsRe.ReplaceAllString(s, " ")
	s = whitespaceRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// ExtractIdentifiers pulls ticket-style identifier tokens out of the raw
// query, de-duplicated in first-seen order and upper-cased.
func ExtractIdentifiers(text string) []string {
	seen := make(map[string]bool)
	var ids []string
	for _, pattern := range identifierPatterns {
		for _, match := range pattern.FindAllString(text, -1) {
			id := strings.ToUpper(match)
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}
	return ids
}
