// Package fuzzy provides search-query normalization for upstream catalog search.
package fuzzy

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var (
	punctRegex      = regexp.MustCompile(`[^\p{L}\p{N}\s]+`)
	whitespaceRegex = regexp.MustCompile(`\s+`)
)

type Normalizer struct{}

func NewNormalizer() *Normalizer {
	return &Normalizer{}
}

// NormalizeQuery prepares a free-form search query for the upstream search
// endpoint: decomposed accents are stripped, punctuation collapses to spaces
// and runs of whitespace fold to one. CJK text passes through untouched apart
// from the whitespace folding.
func (n *Normalizer) NormalizeQuery(query string) string {
	query = norm.NFKD.String(query)

	var result strings.Builder
	for _, r := range query {
		if !unicode.IsMark(r) {
			result.WriteRune(r)
		}
	}
	query = result.String()

	query = punctRegex.ReplaceAllString(query, " ")
	query = whitespaceRegex.ReplaceAllString(query, " ")

	return strings.TrimSpace(query)
}
