// Package quicknode implements the QuickNode (Solana/EVM RPC reference)
// provider: a curated list of chain API groups, each scraped from
// QuickNode's documentation site since it exposes no machine-readable
// index (spec §4.5 "QuickNode scrapes HTML").
package quicknode

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
// httptest server instead of the real QuickNode docs site.
var base = "https://www.quicknode.com/docs"

// groups is the curated chain-API group list; QuickNode's docs site has no
// index endpoint enumerating every chain (spec §9 note b territory).
var groups = []struct{ id, title string }{
	{"solana", "Solana"},
	{"ethereum", "Ethereum"},
	{"bitcoin", "Bitcoin"},
	{"polygon", "Polygon"},
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

func (p *Provider) Name() models.Provider { return models.ProviderQuickNode }

func (p *Provider) Technologies(ctx context.Context, refresh bool) ([]models.Technology, error) {
	out := make([]models.Technology, 0, len(groups))
	for _, g := range groups {
		out = append(out, models.Technology{
			ID: g.id, Title: g.title, URL: fmt.Sprintf("%s/%s", base, g.id),
			Kind: models.KindBlockchainAPI, Provider: models.ProviderQuickNode,
		})
	}
	return out, nil
}

// Category returns one chain group's method list, scraped live.
func (p *Provider) Category(ctx context.Context, technologyID, identifier string) (models.Category, error) {
	refs, err := p.FrameworkIndex(ctx, technologyID)
	if err != nil {
		return models.Category{}, err
	}
	return models.Category{Identifier: technologyID, Items: refs}, nil
}

// Item scrapes one RPC method reference page.
func (p *Provider) Item(ctx context.Context, path string) (models.Symbol, error) {
	norm := provider.NormalizePath(path)
	fileName := cache.KeyToFileName(norm)
	return httpfetch.Coalesced(ctx, p.fetch, p.itemDisk, "quicknode:item:"+norm, fileName,
		func(ctx context.Context) (models.Symbol, error) {
			url := fmt.Sprintf("%s/%s", base, norm)
			doc, _, err := p.scraper.Fetch(url)
			if err != nil {
				return models.Symbol{}, err
			}
			title := strings.TrimSpace(doc.Find("h1").First().Text())
			signature := strings.TrimSpace(doc.Find("code.method-signature, pre.signature").First().Text())
			contentHTML, herr := doc.Find("main, article, .docs-content").First().Html()
			if herr != nil || strings.TrimSpace(contentHTML) == "" {
				return models.Symbol{ID: norm, Title: title, Provider: models.ProviderQuickNode, Kind: "rpc-method"}, nil
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
				Kind:     "rpc-method",
				Provider: models.ProviderQuickNode,
				Body: models.SymbolBody{WebFramework: &models.WebFrameworkBody{
					Content: md, Examples: examples, Signature: signature,
				}},
			}, nil
		})
}

// FrameworkIndex scrapes one chain group's method index page.
func (p *Provider) FrameworkIndex(ctx context.Context, technologyID string) ([]models.Reference, error) {
	fileName := cache.KeyToFileName("index__" + technologyID)
	return httpfetch.Coalesced(ctx, p.fetch, p.indexDisk, "quicknode:index:"+technologyID, fileName,
		func(ctx context.Context) ([]models.Reference, error) {
			url := fmt.Sprintf("%s/%s", base, technologyID)
			doc, _, err := p.scraper.Fetch(url)
			if err != nil {
				return nil, err
			}
			var refs []models.Reference
			doc.Find("nav a, .sidebar a").Each(func(_ int, s *goquery.Selection) {
				href, ok := s.Attr("href")
				if !ok || href == "" {
					return
				}
				refs = append(refs, models.Reference{
					ID:    strings.TrimPrefix(href, "/docs/"),
					Title: strings.TrimSpace(s.Text()),
					URL:   href,
					Kind:  "rpc-method",
				})
			})
			if len(refs) == 0 {
				return nil, docsmcperr.New(docsmcperr.ParseFailure, url, fmt.Errorf("no method links found"))
			}
			return tokenize.BuildIndex(refs), nil
		})
}
