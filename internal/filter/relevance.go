package filter

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"go-jobradar-automation/internal/jobs"
)

// Relevance is the per-role-category allow-list classifier. Pure and
// stateless: same input and category always produce the same output, in
// input order. Binary include/exclude, no ranking.
type Relevance struct {
	//role category -> allow-list terms, matched case-insensitively
	allowlists map[string][]string
}

func NewRelevance(allowlists map[string][]string) *Relevance {
	//pre-fold terms once so Filter only folds the record side
	folded := make(map[string][]string, len(allowlists))
	for category, terms := range allowlists {
		ts := make([]string, 0, len(terms))
		for _, term := range terms {
			if t := normalizeText(term); t != "" {
				ts = append(ts, t)
			}
		}
		folded[category] = ts
	}
	return &Relevance{allowlists: folded}
}

// Filter returns the records whose title or description contains any
// allow-list term for the category. An unknown or empty category keeps
// everything: a source without an allow-list is trusted as pre-filtered.
func (r *Relevance) Filter(records []jobs.Record, category string) []jobs.Record {
	terms := r.allowlists[category]
	if len(terms) == 0 {
		return records
	}

	out := make([]jobs.Record, 0, len(records))
	for _, rec := range records {
		text := normalizeText(rec.Title + " " + rec.Description)
		for _, term := range terms {
			if strings.Contains(text, term) {
				out = append(out, rec)
				break
			}
		}
	}
	return out
}

// normalizeText lower-cases and strips diacritics so "Kỹ sư" matches "ky su".
func normalizeText(str string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, _ := transform.String(t, str)
	return strings.ToLower(result)
}
