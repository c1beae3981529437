// Package apple implements the Apple Developer Documentation provider:
// a JSON API (the same shape apple.com's own web client consumes) fetched
// through the shared cache/single-flight plumbing, with the richer path
// normalization scheme spec §4.5 calls out by name.
package apple

import (
	"context"
	"fmt"
	"strings"
	"time"

	"docsmcp/internal/cache"
	"docsmcp/internal/docsmcperr"
	"docsmcp/internal/httpfetch"
	"docsmcp/internal/tokenize"
	"docsmcp/pkg/models"
)

// baseURL is a var rather than a const so tests can point it at a local
// httptest server instead of the real Apple Developer Documentation host.
var baseURL = "https://developer.apple.com/tutorials/data"

// techIndexURL is the curated entry point listing every framework; Apple's
// own site builds this from a build-time manifest, which this service
// treats as just another cached JSON fetch.
func techIndexURL() string { return baseURL + "/documentation/technologies.json" }

// Provider implements provider.Provider for Apple Developer Documentation.
type Provider struct {
	fetch      *httpfetch.Fetcher
	techDisk   *cache.Disk[[]models.Technology]
	itemDisk   *cache.Disk[renderNode]
	indexDisk  *cache.Disk[[]models.Reference]
	activeTech func() string // returns the currently active technology slug, or ""
}

// New constructs the Apple provider. activeTech resolves the caller's
// current technology selection for bare-name path normalization; it may be
// nil (bare names then resolve directly under "documentation/").
func New(cacheDir string, diskBudget int64, activeTech func() string) *Provider {
	return &Provider{
		fetch:      httpfetch.New(httpfetch.Config{Timeout: 15 * time.Second, TTL: 15 * time.Minute}),
		techDisk:   cache.NewDisk[[]models.Technology](cacheDir, diskBudget),
		itemDisk:   cache.NewDisk[renderNode](cacheDir, diskBudget),
		indexDisk:  cache.NewDisk[[]models.Reference](cacheDir, diskBudget),
		activeTech: activeTech,
	}
}

func (p *Provider) Name() models.Provider { return models.ProviderApple }

// Technologies returns the framework catalog, single-flighted and disk
// cached under "technologies.json".
func (p *Provider) Technologies(ctx context.Context, refresh bool) ([]models.Technology, error) {
	if refresh {
		return p.fetchTechnologies(ctx)
	}
	return httpfetch.Coalesced(ctx, p.fetch, p.techDisk, "apple:technologies", "technologies.json",
		func(ctx context.Context) ([]models.Technology, error) { return p.fetchTechnologies(ctx) })
}

func (p *Provider) fetchTechnologies(ctx context.Context) ([]models.Technology, error) {
	doc, err := httpfetch.FetchJSON[technologiesDoc](ctx, p.fetch, techIndexURL())
	if err != nil {
		return nil, err
	}
	out := make([]models.Technology, 0, len(doc.References))
	for _, ref := range doc.References {
		out = append(out, models.Technology{
			ID:       slugFromPath(ref.URL),
			Title:    ref.Title,
			Abstract: flatten(ref.Abstract),
			URL:      ref.URL,
			Kind:     models.KindFramework,
			Provider: models.ProviderApple,
		})
	}
	return out, nil
}

// Category is not meaningful for Apple: technologies are browsed directly
// via their framework index rather than a named sub-category.
func (p *Provider) Category(ctx context.Context, technologyID, identifier string) (models.Category, error) {
	return models.Category{}, docsmcperr.New(docsmcperr.NotFound, identifier, fmt.Errorf("apple provider has no categories"))
}

// Item fetches one symbol page by its normalized documentation path.
func (p *Provider) Item(ctx context.Context, path string) (models.Symbol, error) {
	norm := NormalizePath(path, p.activeFor())
	url := fmt.Sprintf("%s/%s.json", baseURL, norm)
	fileName := cache.KeyToFileName(norm)
	node, err := httpfetch.Coalesced(ctx, p.fetch, p.itemDisk, "apple:item:"+norm, fileName,
		func(ctx context.Context) (renderNode, error) {
			return httpfetch.FetchJSON[renderNode](ctx, p.fetch, url)
		})
	if err != nil {
		return models.Symbol{}, err
	}
	return node.toSymbol(norm), nil
}

func (p *Provider) activeFor() string {
	if p.activeTech == nil {
		return ""
	}
	return p.activeTech()
}

// FrameworkIndex builds (or returns the disk-cached) tokenized reference
// list for one technology, by loading that technology's top-level page and
// flattening its "references" map (spec §4.6's identifier-expansion source).
func (p *Provider) FrameworkIndex(ctx context.Context, technologyID string) ([]models.Reference, error) {
	fileName := cache.KeyToFileName("index__" + technologyID)
	return httpfetch.Coalesced(ctx, p.fetch, p.indexDisk, "apple:index:"+technologyID, fileName,
		func(ctx context.Context) ([]models.Reference, error) {
			url := fmt.Sprintf("%s/documentation/%s.json", baseURL, technologyID)
			node, err := httpfetch.FetchJSON[renderNode](ctx, p.fetch, url)
			if err != nil {
				return nil, err
			}
			refs := make([]models.Reference, 0, len(node.References))
			for id, ref := range node.References {
				refs = append(refs, models.Reference{
					ID:        id,
					Title:     ref.Title,
					Kind:      ref.Kind,
					Platforms: ref.Platforms(),
					URL:       ref.URL,
					Abstract:  flatten(ref.Abstract),
				})
			}
			return tokenize.BuildIndex(refs), nil
		})
}

// NormalizePath implements spec §4.5's Apple path-normalization rule:
// accept a full doc URL, a doc://com.apple.documentation/... identifier, a
// /documentation/... path, or a bare symbol name resolved against
// activeTechnology.
func NormalizePath(raw, activeTechnology string) string {
	p := strings.TrimSpace(raw)
	switch {
	case strings.HasPrefix(p, "https://developer.apple.com/"):
		p = strings.TrimPrefix(p, "https://developer.apple.com/")
	case strings.HasPrefix(p, "doc://com.apple.documentation/documentation/"):
		p = strings.TrimPrefix(p, "doc://com.apple.documentation/")
	case strings.HasPrefix(p, "doc://com.apple.documentation/"):
		p = strings.TrimPrefix(p, "doc://com.apple.documentation/")
	}
	p = strings.TrimPrefix(p, "/")
	if strings.HasPrefix(p, "documentation/") || strings.HasPrefix(p, "design/") {
		return p
	}
	if activeTechnology != "" {
		return fmt.Sprintf("documentation/%s/%s", activeTechnology, p)
	}
	return "documentation/" + p
}

func slugFromPath(url string) string {
	parts := strings.Split(strings.Trim(url, "/"), "/")
	if len(parts) == 0 {
		return url
	}
	return parts[len(parts)-1]
}

// --- upstream JSON shapes (names, not grammar — spec §1 scopes the exact
// vocabulary as external) ---

type technologiesDoc struct {
	References map[string]refNode `json:"references"`
}

type renderNode struct {
	Metadata struct {
		Title     string   `json:"title"`
		Platforms []platform `json:"platforms"`
	} `json:"metadata"`
	Abstract           []inlineRun         `json:"abstract"`
	PrimaryContentSections []contentSection `json:"primaryContentSections"`
	References         map[string]refNode  `json:"references"`
}

type refNode struct {
	Title     string      `json:"title"`
	URL       string      `json:"url"`
	Kind      string      `json:"kind"`
	Abstract  []inlineRun `json:"abstract"`
	PlatformsField []platform `json:"platforms"`
}

func (r refNode) Platforms() []string {
	out := make([]string, 0, len(r.PlatformsField))
	for _, p := range r.PlatformsField {
		out = append(out, p.Name)
	}
	return out
}

type platform struct {
	Name string `json:"name"`
}

type inlineRun struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type contentSection struct {
	Kind    string      `json:"kind"`
	Content []inlineRun `json:"content"`
}

func flatten(runs []inlineRun) string {
	parts := make([]string, 0, len(runs))
	for _, r := range runs {
		if r.Text != "" {
			parts = append(parts, r.Text)
		}
	}
	return strings.Join(parts, " ")
}

func (n renderNode) toSymbol(path string) models.Symbol {
	sections := make([]models.RichTextSection, 0, len(n.PrimaryContentSections))
	for _, sec := range n.PrimaryContentSections {
		sections = append(sections, models.RichTextSection{Kind: sec.Kind, Text: flatten(sec.Content)})
	}
	platforms := make([]string, 0, len(n.Metadata.Platforms))
	for _, p := range n.Metadata.Platforms {
		platforms = append(platforms, p.Name)
	}
	related := make([]string, 0, len(n.References))
	for id := range n.References {
		related = append(related, id)
	}
	return models.Symbol{
		ID:          path,
		Title:       n.Metadata.Title,
		Description: flatten(n.Abstract),
		Kind:        "symbol",
		Provider:    models.ProviderApple,
		Body: models.SymbolBody{Apple: &models.AppleBody{
			Sections:  sections,
			Platforms: platforms,
		}},
		Related: related,
	}
}
