// Package search implements the property search pipeline: query parameter
// intake, synonym expansion of free-text queries, and assembly of a
// store-neutral composite filter.
package search

import (
	"regexp"
	"sort"
	"strings"
)

// synonymTable maps a canonical housing term to its alternate spellings and
// abbreviations. Loaded once, never mutated; safe for concurrent reads.
var synonymTable = map[string][]string{
	"bedroom":    {"bed", "br", "room", "bedrooms"},
	"bathroom":   {"bath", "ba", "washroom", "bathrooms"},
	"apartment":  {"apt", "flat", "unit"},
	"house":      {"home", "villa", "bungalow"},
	"studio":     {"bachelor", "bedsit"},
	"parking":    {"garage", "carport"},
	"furnished":  {"furniture", "equipped"},
	"garden":     {"yard", "backyard", "lawn"},
	"pool":       {"swimming pool", "swimmingpool"},
	"balcony":    {"terrace", "patio"},
	"elevator":   {"lift"},
	"luxury":     {"luxurious", "premium", "upscale"},
	"affordable": {"cheap", "budget"},
	"modern":     {"contemporary"},
}

// MatchStrategy controls how a token is matched against synonym table
// entries.
type MatchStrategy int

const (
	// MatchFuzzy triggers a synonym group when the token equals the
	// canonical term or an alternate, or when either the token or the
	// canonical term contains the other as a substring. This broadens
	// recall at the cost of occasional over-expansion for short tokens.
	MatchFuzzy MatchStrategy = iota

	// MatchExact triggers only on exact canonical/alternate equality.
	MatchExact
)

// TokenGroup holds a lower-cased query token and its expansion set. The
// token itself is always the first variant.
type TokenGroup struct {
	Token    string
	Variants []string
}

// Pattern returns a case-insensitive "contains" alternation over all
// variants, with every variant escaped for literal regex use.
func (g TokenGroup) Pattern() string {
	escaped := make([]string, len(g.Variants))
	for i, v := range g.Variants {
		escaped[i] = regexp.QuoteMeta(v)
	}
	return strings.Join(escaped, "|")
}

// Expander expands free-text search queries using the synonym table.
type Expander struct {
	table    map[string][]string
	strategy MatchStrategy
}

// NewExpander creates an Expander with the default fuzzy match strategy.
func NewExpander() *Expander {
	return NewExpanderWithStrategy(MatchFuzzy)
}

// NewExpanderWithStrategy creates an Expander with an explicit strategy.
func NewExpanderWithStrategy(strategy MatchStrategy) *Expander {
	return &Expander{table: synonymTable, strategy: strategy}
}

// Expand lower-cases and tokenizes the query, then builds one TokenGroup
// per token. Every token expands to at least itself; an empty query
// yields nil.
func (e *Expander) Expand(query string) []TokenGroup {
	trimmed := strings.ToLower(strings.TrimSpace(query))
	if trimmed == "" {
		return nil
	}

	tokens := strings.Fields(trimmed)
	groups := make([]TokenGroup, 0, len(tokens))
	for _, token := range tokens {
		groups = append(groups, e.expandToken(token))
	}
	return groups
}

func (e *Expander) expandToken(token string) TokenGroup {
	seen := map[string]bool{token: true}
	extra := []string{}

	for canonical, alternates := range e.table {
		if !e.triggers(token, canonical, alternates) {
			continue
		}
		if !seen[canonical] {
			seen[canonical] = true
			extra = append(extra, canonical)
		}
		for _, alt := range alternates {
			if !seen[alt] {
				seen[alt] = true
				extra = append(extra, alt)
			}
		}
	}

	// Map iteration order is random; sort the expansion tail so the
	// resulting pattern is deterministic. The token always stays first.
	sort.Strings(extra)
	return TokenGroup{Token: token, Variants: append([]string{token}, extra...)}
}

func (e *Expander) triggers(token, canonical string, alternates []string) bool {
	if token == canonical {
		return true
	}
	for _, alt := range alternates {
		if token == alt {
			return true
		}
	}
	if e.strategy == MatchFuzzy {
		return strings.Contains(canonical, token) || strings.Contains(token, canonical)
	}
	return false
}
