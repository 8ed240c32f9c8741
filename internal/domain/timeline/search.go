package timeline

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var foldTransformer = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// FoldSearch lowercases a string and strips diacritics so "reunión" matches
// a search for "reunion".
func FoldSearch(s string) string {
	folded, _, err := transform.String(foldTransformer, s)
	if err != nil {
		folded = s
	}
	return strings.ToLower(folded)
}

// MatchesQuery reports whether the milestone's title, description, tags or
// category name contain the query, accent- and case-insensitively. An empty
// query matches everything.
func (m *Milestone) MatchesQuery(query string) bool {
	query = FoldSearch(strings.TrimSpace(query))
	if query == "" {
		return true
	}
	if strings.Contains(FoldSearch(m.Title), query) ||
		strings.Contains(FoldSearch(m.Description), query) ||
		strings.Contains(FoldSearch(m.Category.Name), query) {
		return true
	}
	for _, t := range m.Tags {
		if strings.Contains(FoldSearch(t), query) {
			return true
		}
	}
	return false
}
