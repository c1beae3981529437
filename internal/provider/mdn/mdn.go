// Package mdn implements the MDN Web Docs provider: a JSON API for most
// reference pages, falling back to HTML scraping (via render.ExtractMain)
// when the API path 404s, per spec §4.5.
package mdn

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"docsmcp/internal/cache"
	"docsmcp/internal/docsmcperr"
	"docsmcp/internal/httpfetch"
	"docsmcp/internal/provider"
	"docsmcp/internal/render"
	"docsmcp/internal/tokenize"
	"docsmcp/pkg/models"
)

// apiBase/docsBase are vars rather than consts so tests can point them at a
// local httptest server instead of the real MDN host.
var (
	apiBase  = "https://developer.mozilla.org/api/v1"
	docsBase = "https://developer.mozilla.org/en-US/docs"
)

var mainSelectors = []string{"main", "article", "#content"}

// Provider implements provider.Provider for developer.mozilla.org.
type Provider struct {
	fetch     *httpfetch.Fetcher
	scraper   *httpfetch.HTMLScraper
	techDisk  *cache.Disk[[]models.Technology]
	itemDisk  *cache.Disk[models.Symbol]
	indexDisk *cache.Disk[[]models.Reference]
}

func New(cacheDir string, diskBudget int64) (*Provider, error) {
	scraper, err := httpfetch.NewHTMLScraper(30*time.Second, httpfetch.UserAgent)
	if err != nil {
		return nil, err
	}
	return &Provider{
		fetch:     httpfetch.New(httpfetch.Config{Timeout: 30 * time.Second, TTL: 15 * time.Minute}),
		scraper:   scraper,
		techDisk:  cache.NewDisk[[]models.Technology](cacheDir, diskBudget),
		itemDisk:  cache.NewDisk[models.Symbol](cacheDir, diskBudget),
		indexDisk: cache.NewDisk[[]models.Reference](cacheDir, diskBudget),
	}, nil
}

func (p *Provider) Name() models.Provider { return models.ProviderMDN }

// Technologies returns MDN's top-level documentation sections (Web/API,
// Web/JavaScript, Web/CSS, ...), each treated as a technology whose
// category is the section's sub-index.
func (p *Provider) Technologies(ctx context.Context, refresh bool) ([]models.Technology, error) {
	fetchFn := func(ctx context.Context) ([]models.Technology, error) {
		doc, err := httpfetch.FetchJSON[sectionsDoc](ctx, p.fetch, apiBase+"/doc_sections")
		if err != nil {
			return nil, err
		}
		out := make([]models.Technology, 0, len(doc.Sections))
		for _, s := range doc.Sections {
			out = append(out, models.Technology{
				ID:       s.Slug,
				Title:    s.Title,
				URL:      docsBase + "/" + s.Slug,
				Kind:     models.KindDocSection,
				Provider: models.ProviderMDN,
			})
		}
		return out, nil
	}
	if refresh {
		return fetchFn(ctx)
	}
	return httpfetch.Coalesced(ctx, p.fetch, p.techDisk, "mdn:sections", "doc_sections.json", fetchFn)
}

// Category returns the reference list under one doc section.
func (p *Provider) Category(ctx context.Context, technologyID, identifier string) (models.Category, error) {
	refs, err := p.FrameworkIndex(ctx, identifier)
	if err != nil {
		return models.Category{}, err
	}
	return models.Category{Identifier: identifier, Items: refs}, nil
}

// Item fetches one reference page: the JSON API first, HTML scrape on a
// 404 (spec §4.5/§9 "degraded extraction... when structured selectors
// fail" applies to the HTML path).
func (p *Provider) Item(ctx context.Context, path string) (models.Symbol, error) {
	norm := provider.NormalizePath(path)
	fileName := cache.KeyToFileName(norm)
	return httpfetch.Coalesced(ctx, p.fetch, p.itemDisk, "mdn:item:"+norm, fileName,
		func(ctx context.Context) (models.Symbol, error) {
			sym, err := p.fetchAPI(ctx, norm)
			if err == nil {
				return sym, nil
			}
			var herr *docsmcperr.Error
			if !errors.As(err, &herr) || herr.Kind != docsmcperr.UpstreamHTTP || herr.Status != http.StatusNotFound {
				return models.Symbol{}, err
			}
			return p.fetchHTML(norm)
		})
}

func (p *Provider) fetchAPI(ctx context.Context, path string) (models.Symbol, error) {
	url := fmt.Sprintf("%s/document?url=/en-US/docs/%s", apiBase, path)
	doc, err := httpfetch.FetchJSON[pageDoc](ctx, p.fetch, url)
	if err != nil {
		return models.Symbol{}, err
	}
	return models.Symbol{
		ID:          path,
		Title:       doc.Title,
		Description: doc.Summary,
		Kind:        "reference",
		Provider:    models.ProviderMDN,
		Body: models.SymbolBody{MDN: &models.MDNBody{
			Syntax:   doc.Syntax,
			Examples: doc.Examples,
		}},
	}, nil
}

func (p *Provider) fetchHTML(path string) (models.Symbol, error) {
	url := docsBase + "/" + path
	doc, _, err := p.scraper.Fetch(url)
	if err != nil {
		return models.Symbol{}, err
	}
	html, err := doc.Find("body").Html()
	if err != nil {
		return models.Symbol{}, docsmcperr.New(docsmcperr.ParseFailure, url, err)
	}
	main, err := render.ExtractMain(html, mainSelectors)
	if err != nil {
		// degraded extraction: title only (spec §9 note b)
		title := strings.TrimSpace(doc.Find("title").First().Text())
		return models.Symbol{ID: path, Title: title, Provider: models.ProviderMDN, Kind: "reference"}, nil
	}
	md, err := render.HTML(main)
	if err != nil {
		md = main
	}
	title := strings.TrimSpace(doc.Find("h1").First().Text())
	return models.Symbol{
		ID:       path,
		Title:    title,
		Kind:     "reference",
		Provider: models.ProviderMDN,
		Body:     models.SymbolBody{MDN: &models.MDNBody{Syntax: "", Examples: []string{md}}},
	}, nil
}

// FrameworkIndex builds the tokenized reference list for one doc section.
func (p *Provider) FrameworkIndex(ctx context.Context, technologyID string) ([]models.Reference, error) {
	fileName := cache.KeyToFileName("index__" + technologyID)
	return httpfetch.Coalesced(ctx, p.fetch, p.indexDisk, "mdn:index:"+technologyID, fileName,
		func(ctx context.Context) ([]models.Reference, error) {
			url := fmt.Sprintf("%s/subpages?url=/en-US/docs/%s", apiBase, technologyID)
			doc, err := httpfetch.FetchJSON[subpagesDoc](ctx, p.fetch, url)
			if err != nil {
				return nil, err
			}
			refs := make([]models.Reference, 0, len(doc.Subpages))
			for _, sp := range doc.Subpages {
				refs = append(refs, models.Reference{
					ID:    sp.Slug,
					Title: sp.Title,
					URL:   docsBase + "/" + sp.Slug,
				})
			}
			return tokenize.BuildIndex(refs), nil
		})
}

type sectionsDoc struct {
	Sections []struct {
		Slug  string `json:"slug"`
		Title string `json:"title"`
	} `json:"sections"`
}

type pageDoc struct {
	Title    string   `json:"title"`
	Summary  string   `json:"summary"`
	Syntax   string   `json:"syntax"`
	Examples []string `json:"examples"`
}

type subpagesDoc struct {
	Subpages []struct {
		Slug  string `json:"slug"`
		Title string `json:"title"`
	} `json:"subpages"`
}
