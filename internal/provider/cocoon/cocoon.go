// Package cocoon implements the "Cocoon" provider: a curated documentation
// tree hosted as plain Markdown files in a GitHub repository, browsed
// through GitHub's contents API and fetched as raw text (spec §4.5
// "Cocoon fetches raw markdown from a Git forge").
package cocoon

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"docsmcp/internal/cache"
	"docsmcp/internal/docsmcperr"
	"docsmcp/internal/httpfetch"
	"docsmcp/internal/provider"
	"docsmcp/internal/tokenize"
	"docsmcp/pkg/models"
)

// apiBase/rawBase are vars rather than consts so tests can point them at a
// local httptest server instead of the real GitHub hosts.
var (
	apiBase = "https://api.github.com/repos"
	rawBase = "https://raw.githubusercontent.com"
)

// Provider implements provider.Provider for a GitHub-hosted Markdown
// documentation tree. Owner/Repo/Ref/Root identify the forge location;
// spec §1 scopes the exact repository layout as an external/data concern,
// so these are configuration, not constants.
type Provider struct {
	fetch     *httpfetch.Fetcher
	techDisk  *cache.Disk[[]models.Technology]
	itemDisk  *cache.Disk[models.Symbol]
	indexDisk *cache.Disk[[]models.Reference]

	owner, repo, ref, root string
}

// Config names the GitHub repository this deployment's Cocoon knowledge
// tree lives in.
type Config struct {
	Owner string
	Repo  string
	Ref   string // branch or tag; "main" if empty
	Root  string // root directory within the repo holding Markdown sections
}

func New(cacheDir string, diskBudget int64, cfg Config) *Provider {
	ref := cfg.Ref
	if ref == "" {
		ref = "main"
	}
	return &Provider{
		fetch:     httpfetch.New(httpfetch.Config{Timeout: 30 * time.Second, TTL: 15 * time.Minute}),
		techDisk:  cache.NewDisk[[]models.Technology](cacheDir, diskBudget),
		itemDisk:  cache.NewDisk[models.Symbol](cacheDir, diskBudget),
		indexDisk: cache.NewDisk[[]models.Reference](cacheDir, diskBudget),
		owner:     cfg.Owner,
		repo:      cfg.Repo,
		ref:       ref,
		root:      strings.Trim(cfg.Root, "/"),
	}
}

func (p *Provider) Name() models.Provider { return models.ProviderCocoon }

// Technologies lists the top-level section directories under Root, each a
// DocSection technology.
func (p *Provider) Technologies(ctx context.Context, refresh bool) ([]models.Technology, error) {
	fetchFn := func(ctx context.Context) ([]models.Technology, error) {
		entries, err := p.listContents(ctx, p.root)
		if err != nil {
			return nil, err
		}
		out := make([]models.Technology, 0, len(entries))
		for _, e := range entries {
			if e.Type != "dir" {
				continue
			}
			out = append(out, models.Technology{
				ID:       e.Name,
				Title:    titleFromSlug(e.Name),
				URL:      e.Path,
				Kind:     models.KindDocSection,
				Provider: models.ProviderCocoon,
			})
		}
		return out, nil
	}
	if refresh {
		return fetchFn(ctx)
	}
	return httpfetch.Coalesced(ctx, p.fetch, p.techDisk, "cocoon:sections", "sections.json", fetchFn)
}

// Category returns every Markdown file under one section directory; Cocoon
// has no further nesting beyond section -> file.
func (p *Provider) Category(ctx context.Context, technologyID, identifier string) (models.Category, error) {
	refs, err := p.FrameworkIndex(ctx, technologyID)
	if err != nil {
		return models.Category{}, err
	}
	return models.Category{Identifier: technologyID, Items: refs}, nil
}

// Item fetches one Markdown file's raw content. path is "section/file.md",
// matching what FrameworkIndex emits as an ID (spec §4.5 round-trip rule).
func (p *Provider) Item(ctx context.Context, itemPath string) (models.Symbol, error) {
	norm := provider.NormalizePath(itemPath)
	fileName := cache.KeyToFileName(norm)
	return httpfetch.Coalesced(ctx, p.fetch, p.itemDisk, "cocoon:item:"+norm, fileName,
		func(ctx context.Context) (models.Symbol, error) {
			url := fmt.Sprintf("%s/%s/%s/%s/%s", rawBase, p.owner, p.repo, p.ref, path.Join(p.root, norm))
			md, err := httpfetch.FetchText(ctx, p.fetch, url)
			if err != nil {
				return models.Symbol{}, err
			}
			return models.Symbol{
				ID:       norm,
				Title:    titleFromSlug(path.Base(strings.TrimSuffix(norm, ".md"))),
				Kind:     "markdown-page",
				Provider: models.ProviderCocoon,
				Body:     models.SymbolBody{Cocoon: &models.CocoonBody{Markdown: md, Path: norm}},
			}, nil
		})
}

// FrameworkIndex lists every file under one section directory, tokenizing
// titles derived from filenames (Cocoon pages carry no separate metadata
// index, spec §9 note b: best effort over raw directory listings).
func (p *Provider) FrameworkIndex(ctx context.Context, technologyID string) ([]models.Reference, error) {
	fileName := cache.KeyToFileName("index__" + technologyID)
	return httpfetch.Coalesced(ctx, p.fetch, p.indexDisk, "cocoon:index:"+technologyID, fileName,
		func(ctx context.Context) ([]models.Reference, error) {
			entries, err := p.listContents(ctx, path.Join(p.root, technologyID))
			if err != nil {
				return nil, err
			}
			var refs []models.Reference
			for _, e := range entries {
				if e.Type != "file" || !strings.HasSuffix(e.Name, ".md") {
					continue
				}
				id := path.Join(technologyID, e.Name)
				refs = append(refs, models.Reference{
					ID:    id,
					Title: titleFromSlug(strings.TrimSuffix(e.Name, ".md")),
					URL:   e.Path,
				})
			}
			if len(refs) == 0 {
				return nil, docsmcperr.New(docsmcperr.NotFound, technologyID, fmt.Errorf("no markdown files in section"))
			}
			return tokenize.BuildIndex(refs), nil
		})
}

func (p *Provider) listContents(ctx context.Context, dir string) ([]contentsEntry, error) {
	url := fmt.Sprintf("%s/%s/%s/contents/%s?ref=%s", apiBase, p.owner, p.repo, dir, p.ref)
	return httpfetch.FetchJSON[[]contentsEntry](ctx, p.fetch, url)
}

func titleFromSlug(slug string) string {
	words := strings.FieldsFunc(slug, func(r rune) bool { return r == '-' || r == '_' })
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

type contentsEntry struct {
	Name string `json:"name"`
	Path string `json:"path"`
	Type string `json:"type"` // "file" or "dir"
}
