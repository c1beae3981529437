// Package webframeworks implements the generic "framework index table"
// provider (spec §1's "a set of framework index tables"): a configurable
// list of web framework documentation sites (React, Vue, Svelte, Next.js,
// ...), each scraped the same way since they share one content shape
// (spec §4.5's web-framework content+examples+API signature).
package webframeworks

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"docsmcp/internal/cache"
	"docsmcp/internal/docsmcperr"
	"docsmcp/internal/httpfetch"
	"docsmcp/internal/provider"
	"docsmcp/internal/render"
	"docsmcp/internal/tokenize"
	"docsmcp/pkg/models"
)

// FrameworkSpec names one framework's documentation site: a stable ID,
// display title, and base URL of its reference index. Unlike Hugging
// Face/MLX's fixed topic table, this provider's table is configuration,
// since "a set of framework index tables" (spec §1) is itself the
// deployment's choice of which frameworks to index.
type FrameworkSpec struct {
	ID        string
	Title     string
	IndexURL  string // page listing every reference entry
	DocsBase  string // base URL item paths are relative to
}

type Provider struct {
	fetch      *httpfetch.Fetcher
	scraper    *httpfetch.HTMLScraper
	indexDisk  *cache.Disk[[]models.Reference]
	itemDisk   *cache.Disk[models.Symbol]
	frameworks map[string]FrameworkSpec
	order      []string
}

func New(cacheDir string, diskBudget int64, specs []FrameworkSpec) (*Provider, error) {
	scraper, err := httpfetch.NewHTMLScraper(30*time.Second, httpfetch.UserAgent)
	if err != nil {
		return nil, err
	}
	p := &Provider{
		fetch:      httpfetch.New(httpfetch.Config{Timeout: 30 * time.Second, TTL: 15 * time.Minute}),
		scraper:    scraper,
		indexDisk:  cache.NewDisk[[]models.Reference](cacheDir, diskBudget),
		itemDisk:   cache.NewDisk[models.Symbol](cacheDir, diskBudget),
		frameworks: make(map[string]FrameworkSpec, len(specs)),
	}
	for _, s := range specs {
		p.frameworks[s.ID] = s
		p.order = append(p.order, s.ID)
	}
	return p, nil
}

func (p *Provider) Name() models.Provider { return models.ProviderWebFrameworks }

func (p *Provider) Technologies(ctx context.Context, refresh bool) ([]models.Technology, error) {
	out := make([]models.Technology, 0, len(p.order))
	for _, id := range p.order {
		s := p.frameworks[id]
		out = append(out, models.Technology{
			ID: s.ID, Title: s.Title, URL: s.IndexURL,
			Kind: models.KindFramework, Provider: models.ProviderWebFrameworks,
		})
	}
	return out, nil
}

// Category returns one framework's full reference index; these sites have
// no further sub-category grouping beyond the index table itself.
func (p *Provider) Category(ctx context.Context, technologyID, identifier string) (models.Category, error) {
	refs, err := p.FrameworkIndex(ctx, technologyID)
	if err != nil {
		return models.Category{}, err
	}
	return models.Category{Identifier: technologyID, Items: refs}, nil
}

// Item scrapes one reference page's main content.
func (p *Provider) Item(ctx context.Context, path string) (models.Symbol, error) {
	spec, rest, ok := p.splitPath(path)
	if !ok {
		return models.Symbol{}, docsmcperr.New(docsmcperr.InvalidArgs, path, fmt.Errorf("expected 'frameworkID:path'"))
	}
	norm := provider.NormalizePath(rest)
	fileName := cache.KeyToFileName(spec.ID + "__" + norm)
	return httpfetch.Coalesced(ctx, p.fetch, p.itemDisk, "webframeworks:item:"+spec.ID+":"+norm, fileName,
		func(ctx context.Context) (models.Symbol, error) {
			url := fmt.Sprintf("%s/%s", strings.TrimRight(spec.DocsBase, "/"), strings.TrimLeft(norm, "/"))
			doc, _, err := p.scraper.Fetch(url)
			if err != nil {
				return models.Symbol{}, err
			}
			title := strings.TrimSpace(doc.Find("h1").First().Text())
			signature := strings.TrimSpace(doc.Find("code.signature, .api-signature").First().Text())
			contentHTML, herr := doc.Find("main, article, .markdown").First().Html()
			if herr != nil || strings.TrimSpace(contentHTML) == "" {
				return models.Symbol{ID: norm, Title: title, Provider: models.ProviderWebFrameworks, Kind: "doc-page"}, nil
			}
			md, err := render.HTML(contentHTML)
			if err != nil {
				md = contentHTML
			}
			var examples []string
			doc.Find("pre code").Each(func(_ int, s *goquery.Selection) {
				if txt := strings.TrimSpace(s.Text()); txt != "" {
					examples = append(examples, txt)
				}
			})
			return models.Symbol{
				ID:       norm,
				Title:    title,
				Kind:     "doc-page",
				Provider: models.ProviderWebFrameworks,
				Body: models.SymbolBody{WebFramework: &models.WebFrameworkBody{
					Content: md, Examples: examples, Signature: signature,
				}},
			}, nil
		})
}

// FrameworkIndex scrapes one framework's index page for every reference
// entry link.
func (p *Provider) FrameworkIndex(ctx context.Context, technologyID string) ([]models.Reference, error) {
	spec, ok := p.frameworks[technologyID]
	if !ok {
		return nil, docsmcperr.New(docsmcperr.NotFound, technologyID, fmt.Errorf("unknown framework"))
	}
	fileName := cache.KeyToFileName("index__" + technologyID)
	return httpfetch.Coalesced(ctx, p.fetch, p.indexDisk, "webframeworks:index:"+technologyID, fileName,
		func(ctx context.Context) ([]models.Reference, error) {
			doc, _, err := p.scraper.Fetch(spec.IndexURL)
			if err != nil {
				return nil, err
			}
			var refs []models.Reference
			doc.Find("nav a, aside a, .sidebar a").Each(func(_ int, s *goquery.Selection) {
				href, ok := s.Attr("href")
				if !ok || href == "" {
					return
				}
				refs = append(refs, models.Reference{
					ID:    technologyID + ":" + strings.TrimPrefix(href, spec.DocsBase),
					Title: strings.TrimSpace(s.Text()),
					URL:   href,
				})
			})
			if len(refs) == 0 {
				return nil, docsmcperr.New(docsmcperr.ParseFailure, spec.IndexURL, fmt.Errorf("no nav links found"))
			}
			return tokenize.BuildIndex(refs), nil
		})
}

// splitPath resolves which framework owns an item path. Every framework
// shares Item's signature (path only, no technology parameter — spec
// §4.5's Provider interface is uniform across providers), so this
// provider accepts a "frameworkID:path" composite identifier, which is
// exactly what FrameworkIndex must therefore emit as each Reference's ID
// for the round-trip rule (spec §4.5) to hold.
func (p *Provider) splitPath(path string) (FrameworkSpec, string, bool) {
	id, rest, ok := strings.Cut(path, ":")
	if !ok {
		return FrameworkSpec{}, "", false
	}
	spec, ok := p.frameworks[id]
	return spec, rest, ok
}
