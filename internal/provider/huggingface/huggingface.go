// Package huggingface implements the Hugging Face docs provider: a small
// static table of top-level doc sets (Transformers, Diffusers, Datasets,
// ...) combined with live HTML parsing of each page (spec §4.5 "Hugging
// Face/MLX combine a static topic table with live HTML parsing").
package huggingface

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

// base is a var rather than a const so tests can point it at a local
// httptest server instead of the real Hugging Face docs host.
var base = "https://huggingface.co/docs"

// topics is the static topic table; Hugging Face has no machine-readable
// index of its doc sets, so a curated list stands in (spec §9 note b
// territory: best-effort over a moving target).
var topics = []struct{ id, title string }{
	{"transformers", "Transformers"},
	{"diffusers", "Diffusers"},
	{"datasets", "Datasets"},
	{"tokenizers", "Tokenizers"},
	{"hub", "Hub"},
}

type Provider struct {
	fetch     *httpfetch.Fetcher
	scraper   *httpfetch.HTMLScraper
	indexDisk *cache.Disk[[]models.Reference]
	itemDisk  *cache.Disk[models.Symbol]
}

func New(cacheDir string, diskBudget int64) (*Provider, error) {
	scraper, err := httpfetch.NewHTMLScraper(30*time.Second, httpfetch.UserAgent)
	if err != nil {
		return nil, err
	}
	return &Provider{
		fetch:     httpfetch.New(httpfetch.Config{Timeout: 30 * time.Second, TTL: 15 * time.Minute}),
		scraper:   scraper,
		indexDisk: cache.NewDisk[[]models.Reference](cacheDir, diskBudget),
		itemDisk:  cache.NewDisk[models.Symbol](cacheDir, diskBudget),
	}, nil
}

func (p *Provider) Name() models.Provider { return models.ProviderHuggingFace }

func (p *Provider) Technologies(ctx context.Context, refresh bool) ([]models.Technology, error) {
	out := make([]models.Technology, 0, len(topics))
	for _, t := range topics {
		out = append(out, models.Technology{
			ID: t.id, Title: t.title, URL: fmt.Sprintf("%s/%s/index", base, t.id),
			Kind: models.KindDocSection, Provider: models.ProviderHuggingFace,
		})
	}
	return out, nil
}

// Category returns the left-nav page list for one doc set, scraped live.
func (p *Provider) Category(ctx context.Context, technologyID, identifier string) (models.Category, error) {
	refs, err := p.FrameworkIndex(ctx, technologyID)
	if err != nil {
		return models.Category{}, err
	}
	return models.Category{Identifier: technologyID, Items: refs}, nil
}

// Item scrapes one doc page's main content.
func (p *Provider) Item(ctx context.Context, path string) (models.Symbol, error) {
	norm := provider.NormalizePath(path)
	fileName := cache.KeyToFileName(norm)
	return httpfetch.Coalesced(ctx, p.fetch, p.itemDisk, "huggingface:item:"+norm, fileName,
		func(ctx context.Context) (models.Symbol, error) {
			url := fmt.Sprintf("%s/%s", base, norm)
			doc, _, err := p.scraper.Fetch(url)
			if err != nil {
				return models.Symbol{}, err
			}
			title := strings.TrimSpace(doc.Find("h1").First().Text())
			body, herr := doc.Find("main, article, .prose").First().Html()
			if herr != nil || strings.TrimSpace(body) == "" {
				return models.Symbol{ID: norm, Title: title, Provider: models.ProviderHuggingFace, Kind: "doc-page"}, nil
			}
			md, err := render.HTML(body)
			if err != nil {
				md = body
			}
			var examples []string
			doc.Find("pre code").Each(func(_ int, s *goquery.Selection) { examples = append(examples, strings.TrimSpace(s.Text())) })
			return models.Symbol{
				ID: norm, Title: title, Kind: "doc-page", Provider: models.ProviderHuggingFace,
				Body: models.SymbolBody{WebFramework: &models.WebFrameworkBody{Content: md, Examples: examples}},
			}, nil
		})
}

// FrameworkIndex scrapes one doc set's index page for its sub-page links.
func (p *Provider) FrameworkIndex(ctx context.Context, technologyID string) ([]models.Reference, error) {
	fileName := cache.KeyToFileName("index__" + technologyID)
	return httpfetch.Coalesced(ctx, p.fetch, p.indexDisk, "huggingface:index:"+technologyID, fileName,
		func(ctx context.Context) ([]models.Reference, error) {
			url := fmt.Sprintf("%s/%s/index", base, technologyID)
			doc, _, err := p.scraper.Fetch(url)
			if err != nil {
				return nil, err
			}
			var refs []models.Reference
			doc.Find("nav a, aside a").Each(func(_ int, s *goquery.Selection) {
				href, ok := s.Attr("href")
				if !ok || href == "" {
					return
				}
				refs = append(refs, models.Reference{
					ID:    strings.TrimPrefix(href, "/docs/"),
					Title: strings.TrimSpace(s.Text()),
					URL:   href,
				})
			})
			if len(refs) == 0 {
				return nil, docsmcperr.New(docsmcperr.ParseFailure, url, fmt.Errorf("no nav links found"))
			}
			return tokenize.BuildIndex(refs), nil
		})
}
