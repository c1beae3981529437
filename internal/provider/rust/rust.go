// Package rust implements the docs.rs provider: crates are technologies,
// crate modules are categories, and item pages are parsed from rustdoc's
// generated HTML (spec §4.5 "Rust parses rustdoc HTML").
package rust

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
// httptest server instead of the real docs.rs host.
var base = "https://docs.rs"

// Provider implements provider.Provider for docs.rs.
type Provider struct {
	fetch     *httpfetch.Fetcher
	scraper   *httpfetch.HTMLScraper
	techDisk  *cache.Disk[[]models.Technology]
	itemDisk  *cache.Disk[models.Symbol]
	indexDisk *cache.Disk[[]models.Reference]
	crates    []string // curated crate list; docs.rs has no technology index API
}

// New builds the provider with a curated crate list, since docs.rs (unlike
// Apple or MDN) exposes no index endpoint listing every crate — spec §1
// treats the exact upstream vocabulary as out of scope, but the set of
// crates a deployment cares about is a configuration concern.
func New(cacheDir string, diskBudget int64, crates []string) (*Provider, error) {
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
		crates:    crates,
	}, nil
}

func (p *Provider) Name() models.Provider { return models.ProviderRust }

func (p *Provider) Technologies(ctx context.Context, refresh bool) ([]models.Technology, error) {
	fetchFn := func(ctx context.Context) ([]models.Technology, error) {
		out := make([]models.Technology, 0, len(p.crates))
		for _, name := range p.crates {
			out = append(out, models.Technology{
				ID:       name,
				Title:    name,
				URL:      fmt.Sprintf("%s/%s/latest/%s/", base, name, name),
				Kind:     models.KindRustCrate,
				Provider: models.ProviderRust,
			})
		}
		return out, nil
	}
	if refresh {
		return fetchFn(ctx)
	}
	return httpfetch.Coalesced(ctx, p.fetch, p.techDisk, "rust:crates", "crates.json", fetchFn)
}

// Category filters the crate's all-items index (FrameworkIndex) down to the
// items whose ID starts with "<identifier>::" or whose Kind equals identifier.
func (p *Provider) Category(ctx context.Context, technologyID, identifier string) (models.Category, error) {
	refs, err := p.FrameworkIndex(ctx, technologyID)
	if err != nil {
		return models.Category{}, err
	}
	var items []models.Reference
	for _, r := range refs {
		if strings.HasPrefix(r.ID, identifier+"::") || r.Kind == identifier {
			items = append(items, r)
		}
	}
	return models.Category{Identifier: identifier, Items: items}, nil
}

// Item parses one rustdoc item page's signature and doc prose.
func (p *Provider) Item(ctx context.Context, path string) (models.Symbol, error) {
	norm := provider.NormalizePath(path)
	fileName := cache.KeyToFileName(norm)
	return httpfetch.Coalesced(ctx, p.fetch, p.itemDisk, "rust:item:"+norm, fileName,
		func(ctx context.Context) (models.Symbol, error) {
			url := fmt.Sprintf("%s/%s", base, norm)
			doc, _, err := p.scraper.Fetch(url)
			if err != nil {
				return models.Symbol{}, err
			}
			title := strings.TrimSpace(doc.Find("h1.fqn, h1").First().Text())
			signature := strings.TrimSpace(doc.Find("pre.rust.item-decl, .item-decl").First().Text())
			docsHTML, herr := doc.Find(".docblock").First().Html()
			if herr != nil {
				// degraded extraction: title only (spec §9 note b)
				return models.Symbol{ID: norm, Title: title, Provider: models.ProviderRust, Kind: "item"}, nil
			}
			docs := strings.TrimSpace(docsHTML)
			if md, rerr := render.HTML(docs); rerr == nil {
				docs = md
			}
			return models.Symbol{
				ID:       norm,
				Title:    title,
				Kind:     "item",
				Provider: models.ProviderRust,
				Body: models.SymbolBody{Rust: &models.RustBody{
					Signature: signature,
					Docs:      docs,
					SourceURL: url + "#source",
				}},
			}, nil
		})
}

// FrameworkIndex scrapes a crate's "all items" page into a tokenized
// reference list.
func (p *Provider) FrameworkIndex(ctx context.Context, technologyID string) ([]models.Reference, error) {
	fileName := cache.KeyToFileName("index__" + technologyID)
	return httpfetch.Coalesced(ctx, p.fetch, p.indexDisk, "rust:index:"+technologyID, fileName,
		func(ctx context.Context) ([]models.Reference, error) {
			url := fmt.Sprintf("%s/%s/latest/%s/all.html", base, technologyID, technologyID)
			doc, _, err := p.scraper.Fetch(url)
			if err != nil {
				return nil, err
			}
			var refs []models.Reference
			doc.Find("ul.all-items a").Each(func(_ int, s *goquery.Selection) {
				href, ok := s.Attr("href")
				if !ok {
					return
				}
				refs = append(refs, models.Reference{
					ID:    strings.TrimPrefix(href, "./"),
					Title: strings.TrimSpace(s.Text()),
					URL:   href,
				})
			})
			if len(refs) == 0 {
				return nil, docsmcperr.New(docsmcperr.ParseFailure, url, fmt.Errorf("no items found on all-items page"))
			}
			return tokenize.BuildIndex(refs), nil
		})
}
