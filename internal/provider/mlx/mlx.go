// Package mlx implements the Apple MLX docs provider: a static topic
// table (Python API, C++ API, Neural Networks) plus live HTML parsing of each
// page, mirroring internal/provider/huggingface's shape per spec §4.5.
package mlx

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
// httptest server instead of the real MLX docs host.
var base = "https://ml-explore.github.io/mlx"

var topics = []struct{ id, title string }{
	{"python/python_api", "Python API"},
	{"cpp/cpp_api", "C++ API"},
	{"python/nn", "Neural Networks"},
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

func (p *Provider) Name() models.Provider { return models.ProviderMLX }

func (p *Provider) Technologies(ctx context.Context, refresh bool) ([]models.Technology, error) {
	out := make([]models.Technology, 0, len(topics))
	for _, t := range topics {
		out = append(out, models.Technology{
			ID: t.id, Title: t.title, URL: fmt.Sprintf("%s/build/html/%s.html", base, t.id),
			Kind: models.KindDocSection, Provider: models.ProviderMLX,
		})
	}
	return out, nil
}

func (p *Provider) Category(ctx context.Context, technologyID, identifier string) (models.Category, error) {
	refs, err := p.FrameworkIndex(ctx, technologyID)
	if err != nil {
		return models.Category{}, err
	}
	return models.Category{Identifier: technologyID, Items: refs}, nil
}

func (p *Provider) Item(ctx context.Context, path string) (models.Symbol, error) {
	norm := provider.NormalizePath(path)
	fileName := cache.KeyToFileName(norm)
	return httpfetch.Coalesced(ctx, p.fetch, p.itemDisk, "mlx:item:"+norm, fileName,
		func(ctx context.Context) (models.Symbol, error) {
			url := fmt.Sprintf("%s/build/html/%s.html", base, norm)
			doc, _, err := p.scraper.Fetch(url)
			if err != nil {
				return models.Symbol{}, err
			}
			title := strings.TrimSpace(doc.Find("h1").First().Text())
			body, herr := doc.Find(".section, .body").First().Html()
			if herr != nil || strings.TrimSpace(body) == "" {
				return models.Symbol{ID: norm, Title: title, Provider: models.ProviderMLX, Kind: "doc-page"}, nil
			}
			md, err := render.HTML(body)
			if err != nil {
				md = body
			}
			var examples []string
			doc.Find("pre").Each(func(_ int, s *goquery.Selection) { examples = append(examples, strings.TrimSpace(s.Text())) })
			sig := strings.TrimSpace(doc.Find("dt .sig-name, .sig").First().Text())
			return models.Symbol{
				ID: norm, Title: title, Kind: "doc-page", Provider: models.ProviderMLX,
				Body: models.SymbolBody{WebFramework: &models.WebFrameworkBody{Content: md, Examples: examples, Signature: sig}},
			}, nil
		})
}

func (p *Provider) FrameworkIndex(ctx context.Context, technologyID string) ([]models.Reference, error) {
	fileName := cache.KeyToFileName("index__" + technologyID)
	return httpfetch.Coalesced(ctx, p.fetch, p.indexDisk, "mlx:index:"+technologyID, fileName,
		func(ctx context.Context) ([]models.Reference, error) {
			url := fmt.Sprintf("%s/build/html/%s.html", base, technologyID)
			doc, _, err := p.scraper.Fetch(url)
			if err != nil {
				return nil, err
			}
			var refs []models.Reference
			doc.Find("dl.py dt, dl.cpp dt").Each(func(_ int, s *goquery.Selection) {
				id, ok := s.Attr("id")
				if !ok {
					return
				}
				refs = append(refs, models.Reference{ID: id, Title: strings.TrimSpace(s.Text()), URL: url + "#" + id})
			})
			if len(refs) == 0 {
				return nil, docsmcperr.New(docsmcperr.ParseFailure, url, fmt.Errorf("no definitions found"))
			}
			return tokenize.BuildIndex(refs), nil
		})
}
