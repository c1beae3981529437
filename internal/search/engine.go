// Package search implements the scored, scoped search core (spec §4.7):
// tokenized scoring with platform/kind filters, technology and global
// scope, and a two-stage fallback pass when the primary search comes up
// empty.
package search

import (
	"regexp"
	"sort"
	"strings"

	"docsmcp/internal/tokenize"
	"docsmcp/pkg/models"
)

// Scope selects whether a search is confined to the active technology or
// spans every known technology.
type Scope string

const (
	ScopeTechnology Scope = "technology"
	ScopeGlobal     Scope = "global"
)

// Options configures one Search call.
type Options struct {
	MaxResults int
	Platform   string // substring match, case-insensitive
	SymbolType string // exact kind match, case-insensitive
	Scope      Scope
}

// Normalize applies spec defaults: MaxResults default 20 min 1, Scope
// default technology.
func (o Options) Normalize() Options {
	if o.MaxResults <= 0 {
		o.MaxResults = 20
	}
	if o.Scope == "" {
		o.Scope = ScopeTechnology
	}
	return o
}

// Result is everything Search returns for one call: the primary hits, and,
// when the primary pass was empty and a fallback ran, the fallback hits
// separately so the caller can render them under their own "Fallback
// suggestions" heading (spec §8 scenario 6).
type Result struct {
	Hits           []models.SearchHit
	FallbackUsed   bool
	FallbackKind   string // "hierarchical" or "regex"
}

// Local runs the primary scored search over a single technology's index.
func Local(index []models.Reference, query string, opts Options) []models.SearchHit {
	opts = opts.Normalize()
	terms := strings.Fields(strings.ToLower(query))
	if len(terms) == 0 {
		return nil
	}
	var hits []models.SearchHit
	for _, ref := range index {
		if !passesFilters(ref, opts) {
			continue
		}
		score := scoreTokens(ref.Tokens, terms)
		if score == 0 {
			continue
		}
		hits = append(hits, models.SearchHit{Reference: ref, Score: score})
	}
	return dedupAndRank(hits, opts.MaxResults)
}

func passesFilters(ref models.Reference, opts Options) bool {
	if opts.Platform != "" && len(ref.Platforms) > 0 {
		matched := false
		needle := strings.ToLower(opts.Platform)
		for _, p := range ref.Platforms {
			if strings.Contains(strings.ToLower(p), needle) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	if opts.SymbolType != "" {
		if !strings.EqualFold(ref.Kind, opts.SymbolType) {
			return false
		}
	}
	return true
}

// scoreTokens adds 3 for an exact token match, 1 for a substring match, per
// query term; terms matching neither contribute 0.
func scoreTokens(tokens []string, terms []string) int {
	score := 0
	for _, term := range terms {
		best := 0
		for _, tok := range tokens {
			if tok == term {
				best = 3
				break
			}
			if best < 1 && strings.Contains(tok, term) {
				best = 1
			}
		}
		score += best
	}
	return score
}

// dedupAndRank sorts by score desc, title asc, then drops duplicate
// (url,title) pairs, keeping the highest-scored occurrence.
func dedupAndRank(hits []models.SearchHit, max int) []models.SearchHit {
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].Title < hits[j].Title
	})
	seen := make(map[string]struct{})
	out := make([]models.SearchHit, 0, len(hits))
	for _, h := range hits {
		key := h.URL
		if key == "" {
			key = "title:" + h.Title
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, h)
		if len(out) >= max {
			break
		}
	}
	return out
}

// Global runs Local over every technology's index (each built lazily by
// indexOf) and merges, re-ranking and deduping the combined set, tagging
// each hit with its owning technology.
func Global(technologies []models.Technology, indexOf func(models.Technology) []models.Reference, query string, opts Options) []models.SearchHit {
	opts = opts.Normalize()
	var all []models.SearchHit
	for _, tech := range technologies {
		idx := indexOf(tech)
		local := Local(idx, query, Options{MaxResults: opts.MaxResults, Platform: opts.Platform, SymbolType: opts.SymbolType, Scope: ScopeTechnology})
		for _, h := range local {
			h.TechID = tech.ID
			h.TechTitle = tech.Title
			all = append(all, h)
		}
	}
	return dedupAndRank(all, opts.MaxResults)
}

// Fallback runs when the primary pass is empty and there is still room for
// more results. It tries a case-insensitive substring pass first, then a
// fuzzy regex pass (query characters joined by ".*?"), first non-empty
// pass wins (spec §4.7).
func Fallback(index []models.Reference, query string, opts Options) ([]models.SearchHit, string) {
	opts = opts.Normalize()
	if opts.MaxResults <= 0 {
		return nil, ""
	}
	needle := strings.ToLower(query)

	var hierarchical []models.SearchHit
	for _, ref := range index {
		if !passesFilters(ref, opts) {
			continue
		}
		haystack := strings.ToLower(ref.Title + " " + ref.URL + " " + ref.Abstract)
		if strings.Contains(haystack, needle) {
			hierarchical = append(hierarchical, models.SearchHit{Reference: ref, Score: 1, FromFallback: true})
		}
	}
	if len(hierarchical) > 0 {
		return dedupAndRank(hierarchical, opts.MaxResults), "hierarchical"
	}

	re, err := fuzzyRegex(query)
	if err != nil {
		return nil, ""
	}
	var fuzzy []models.SearchHit
	for _, ref := range index {
		if !passesFilters(ref, opts) {
			continue
		}
		haystack := ref.Title + " " + ref.URL + " " + ref.Abstract
		if re.MatchString(haystack) {
			fuzzy = append(fuzzy, models.SearchHit{Reference: ref, Score: 1, FromFallback: true})
		}
	}
	if len(fuzzy) == 0 {
		return nil, ""
	}
	return dedupAndRank(fuzzy, opts.MaxResults), "regex"
}

// fuzzyRegex escapes each character of query and inserts ".*?" between
// them, compiled case-insensitively, so "pane" can match "PaneTabView".
func fuzzyRegex(query string) (*regexp.Regexp, error) {
	var b strings.Builder
	b.WriteString("(?i)")
	for i, r := range query {
		if i > 0 {
			b.WriteString(".*?")
		}
		b.WriteString(regexp.QuoteMeta(string(r)))
	}
	return regexp.Compile(b.String())
}

// BuildIndex is re-exported for callers that only import search.
var BuildIndex = tokenize.BuildIndex
