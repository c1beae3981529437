// query.go implements the `query` tool (spec §1/§6): resolve a
// natural-language documentation request against the active provider's
// search engine and render the hits, consulting the knowledge overlay and
// supporting inline technology selection, `;`-batched queries, and a bare
// "more" continuation of the previous discovery.
package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"docsmcp/internal/docsmcperr"
	"docsmcp/internal/knowledge"
	"docsmcp/internal/provider"
	"docsmcp/internal/search"
	"docsmcp/internal/state"
	"docsmcp/internal/tokenize"
	"docsmcp/pkg/models"
)

// maxExpansions bounds spec §4.6's identifier-expansion pass: at most this
// many not-yet-expanded identifiers are fetched and folded per query, so
// one query can never trigger an unbounded fan-out of symbol fetches.
const maxExpansions = 5

// QueryArgs is the `query` tool's input schema (spec §6).
type QueryArgs struct {
	Query      string `json:"query"`
	MaxResults int    `json:"maxResults,omitempty"`
}

// QueryHandler resolves documentation requests across every configured
// provider, using state to track the active provider/technology and the
// per-technology framework index cache (spec §3/§4.7).
type QueryHandler struct {
	providers map[models.Provider]provider.Provider
	order     []models.Provider
	state     *state.State
	knowledge *knowledge.Store
	defaultP  models.Provider
}

// NewQueryHandler builds a handler over the given providers, in the order
// they should appear for global-scope search. defaultProvider is selected
// when state has none active yet.
func NewQueryHandler(st *state.State, ks *knowledge.Store, defaultProvider models.Provider, providers ...provider.Provider) *QueryHandler {
	h := &QueryHandler{
		providers: make(map[models.Provider]provider.Provider, len(providers)),
		state:     st,
		knowledge: ks,
		defaultP:  defaultProvider,
	}
	for _, p := range providers {
		h.providers[p.Name()] = p
		h.order = append(h.order, p.Name())
	}
	return h
}

// Definition returns the tools/list entry for `query`.
func (h *QueryHandler) Definition() Definition {
	return Definition{
		Name:        "query",
		Description: "Resolve a natural-language documentation request against the active documentation provider.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"query":      map[string]any{"type": "string"},
				"maxResults": map[string]any{"type": "number"},
			},
			"required": []string{"query"},
		},
	}
}

// Handle implements Handler for the `query` tool.
func (h *QueryHandler) Handle(ctx context.Context, raw []byte) (Response, error) {
	var args QueryArgs
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &args); err != nil {
			return Response{}, docsmcperr.New(docsmcperr.InvalidArgs, "query", err)
		}
	}
	if strings.TrimSpace(args.Query) == "" {
		return Response{}, docsmcperr.New(docsmcperr.InvalidArgs, "query", fmt.Errorf("query must not be empty"))
	}

	// ';'-separated batch fetch: one query call resolving several symbol
	// references.
	if parts := strings.Split(args.Query, ";"); len(parts) > 1 {
		var sections []string
		for _, part := range parts {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			sub := args
			sub.Query = part
			resp, err := h.resolveOne(ctx, sub)
			if err != nil {
				sections = append(sections, fmt.Sprintf("### %s\n\nerror: %v", part, err))
				continue
			}
			sections = append(sections, textOf(resp))
		}
		return Text(strings.Join(sections, "\n\n---\n\n")), nil
	}

	return h.resolveOne(ctx, args)
}

func textOf(r Response) string {
	var b strings.Builder
	for _, c := range r.Content {
		b.WriteString(c.Text)
	}
	return b.String()
}

func (h *QueryHandler) resolveOne(ctx context.Context, args QueryArgs) (Response, error) {
	query := strings.TrimSpace(args.Query)

	// A bare "more" continues the last discovery snapshot.
	if strings.EqualFold(query, "more") {
		return h.continueDiscovery()
	}

	activeP := h.activeProvider()
	p, ok := h.providers[activeP]
	if !ok {
		return Response{}, docsmcperr.New(docsmcperr.NotConfigured, "query", fmt.Errorf("no active provider configured"))
	}

	// "tech: rest" inline-selects a technology and queries it in the same
	// call, folded into the same active-technology scope resolution
	// spec.md already describes.
	if techID, rest, ok := h.splitInlineTechnology(ctx, p, query); ok {
		h.state.SetActiveTechnology(techID)
		query = rest
	}

	techID := h.state.ActiveTechnology()
	if techID == "" {
		return Response{}, docsmcperr.New(docsmcperr.NotConfigured, "query", fmt.Errorf("no active technology selected"))
	}

	opts := search.Options{MaxResults: args.MaxResults, Scope: search.ScopeTechnology}.Normalize()

	index, err := h.indexFor(ctx, p, techID)
	if err != nil {
		return Response{}, err
	}

	hits := search.Local(index, query, opts)
	fallbackKind := ""
	if len(hits) == 0 {
		index = h.expand(ctx, p, techID, index, query)
		hits = search.Local(index, query, opts)
	}
	if len(hits) == 0 {
		hits, fallbackKind = search.Fallback(index, query, opts)
	}

	h.state.RecordQuery(models.SearchQueryLogEntry{
		Technology: techID, Scope: string(search.ScopeTechnology), Query: query, Matches: len(hits),
	})

	return h.render(query, hits, fallbackKind), nil
}

// activeProvider returns the active provider or the configured default.
func (h *QueryHandler) activeProvider() models.Provider {
	if p := h.state.ActiveProvider(); p != "" {
		return p
	}
	return h.defaultP
}

// splitInlineTechnology checks whether query starts with "<technologyID>:
// rest", matching a known technology for p case-insensitively.
func (h *QueryHandler) splitInlineTechnology(ctx context.Context, p provider.Provider, query string) (string, string, bool) {
	prefix, rest, ok := strings.Cut(query, ":")
	if !ok || strings.TrimSpace(rest) == "" {
		return "", "", false
	}
	prefix = strings.TrimSpace(prefix)
	techs, err := p.Technologies(ctx, false)
	if err != nil {
		return "", "", false
	}
	for _, t := range techs {
		if strings.EqualFold(t.ID, prefix) {
			return t.ID, strings.TrimSpace(rest), true
		}
	}
	return "", "", false
}

// indexFor returns the cached framework index for technologyID, building
// and publishing it on first use (spec §4.6/§4.7's Empty->Built
// transition).
func (h *QueryHandler) indexFor(ctx context.Context, p provider.Provider, techID string) ([]models.Reference, error) {
	if idx, ok := h.state.FrameworkIndex(techID); ok {
		return idx, nil
	}
	idx, err := p.FrameworkIndex(ctx, techID)
	if err != nil {
		return nil, err
	}
	h.state.StoreFrameworkIndex(techID, idx)
	return idx, nil
}

// expand implements spec §4.6's identifier-expansion pass: for up to
// maxExpansions not-yet-expanded identifiers in index, fetch the symbol
// page and fold its Related identifiers in as new reference entries
// (tokenized from the identifier alone), then republish the index.
// Built->Built(expanded) (spec §4.7).
func (h *QueryHandler) expand(ctx context.Context, p provider.Provider, techID string, index []models.Reference, query string) []models.Reference {
	expanded := 0
	known := make(map[string]bool, len(index))
	for _, r := range index {
		known[r.ID] = true
	}
	additions := make([]models.Reference, 0)
	for _, r := range index {
		if expanded >= maxExpansions {
			break
		}
		if !h.state.MarkExpanded(r.ID) {
			continue
		}
		expanded++
		sym, err := p.Item(ctx, r.ID)
		if err != nil {
			continue
		}
		for _, relID := range sym.Related {
			if known[relID] {
				continue
			}
			known[relID] = true
			additions = append(additions, tokenize.IndexReference(models.Reference{ID: relID, Title: relID}))
		}
	}
	if len(additions) == 0 {
		return index
	}
	merged := append(append([]models.Reference{}, index...), additions...)
	h.state.StoreFrameworkIndex(techID, merged)
	return merged
}

func (h *QueryHandler) continueDiscovery() (Response, error) {
	snap, ok := h.state.Discovery()
	if !ok {
		return Response{}, docsmcperr.New(docsmcperr.NotFound, "more", fmt.Errorf("no prior discovery to continue"))
	}
	const pageSize = 10
	start := snap.Offset
	if start >= len(snap.Technologies) {
		return Text("No further results for \"" + snap.Query + "\"."), nil
	}
	end := start + pageSize
	if end > len(snap.Technologies) {
		end = len(snap.Technologies)
	}
	page := snap.Technologies[start:end]
	h.state.StoreDiscovery(models.DiscoverySnapshot{Query: snap.Query, Technologies: snap.Technologies, Offset: end})

	var b strings.Builder
	fmt.Fprintf(&b, "# More results for \"%s\" (%d-%d of %d)\n\n", snap.Query, start+1, end, len(snap.Technologies))
	for _, t := range page {
		fmt.Fprintf(&b, "- **%s** (%s)\n", t.Title, t.ID)
	}
	return Text(b.String()), nil
}

// render produces the Markdown the query tool returns, prepending any
// matching knowledge recipes and, when the primary pass came up empty,
// labeling the results as fallback suggestions (spec §8 scenario 6).
func (h *QueryHandler) render(query string, hits []models.SearchHit, fallbackKind string) Response {
	var b strings.Builder

	if h.knowledge != nil {
		if recipes := h.knowledge.Table().Match(tokenize.Tokens(query)); len(recipes) > 0 {
			b.WriteString("## Related guidance\n\n")
			for _, r := range recipes {
				fmt.Fprintf(&b, "**%s**: %s\n\n", r.Title, r.Body)
			}
		}
	}

	if len(hits) == 0 {
		b.WriteString("No matches found for \"" + query + "\".")
		return Response{
			Content:  []Content{{Type: "text", Text: b.String()}},
			Metadata: map[string]any{"matches": 0},
		}
	}

	if fallbackKind != "" {
		fmt.Fprintf(&b, "_Primary search found zero matches._\n\n## Fallback suggestions (%s)\n\n", fallbackKind)
	} else {
		b.WriteString("## Results\n\n")
	}
	for _, hit := range hits {
		if hit.TechTitle != "" {
			fmt.Fprintf(&b, "- **%s** _(%s)_ — %s\n", hit.Title, hit.TechTitle, hit.URL)
		} else {
			fmt.Fprintf(&b, "- **%s** — %s\n", hit.Title, hit.URL)
		}
	}
	return Response{
		Content: []Content{{Type: "text", Text: b.String()}},
		Metadata: map[string]any{
			"matches":  len(hits),
			"fallback": fallbackKind != "",
		},
	}
}
