// Package telegram implements the Telegram Bot API provider: a single
// upstream JSON spec document split into "Methods" and "Types"
// technologies, each a category of fields (spec §4.5/§1).
package telegram

import (
	"context"
	"fmt"
	"time"

	"docsmcp/internal/cache"
	"docsmcp/internal/docsmcperr"
	"docsmcp/internal/httpfetch"
	"docsmcp/internal/provider"
	"docsmcp/internal/tokenize"
	"docsmcp/pkg/models"
)

// specURL is a machine-readable JSON rendering of the Bot API, hosted
// outside Telegram's own domain. It is a
// var rather than a const so tests can point it at a local httptest server.
var specURL = "https://ark0f.github.io/tg-bot-api/custom.json"

const (
	TechMethods = "methods"
	TechTypes   = "types"
)

type Provider struct {
	fetch    *httpfetch.Fetcher
	specDisk *cache.Disk[botAPISpec]
}

func New(cacheDir string, diskBudget int64) *Provider {
	return &Provider{
		fetch:    httpfetch.New(httpfetch.Config{Timeout: 30 * time.Second, TTL: 30 * time.Minute}),
		specDisk: cache.NewDisk[botAPISpec](cacheDir, diskBudget),
	}
}

func (p *Provider) Name() models.Provider { return models.ProviderTelegram }

func (p *Provider) spec(ctx context.Context) (botAPISpec, error) {
	return httpfetch.Coalesced(ctx, p.fetch, p.specDisk, "telegram:spec", "spec.json",
		func(ctx context.Context) (botAPISpec, error) {
			return httpfetch.FetchJSON[botAPISpec](ctx, p.fetch, specURL)
		})
}

// Technologies returns the two fixed top-level groupings the Bot API
// documentation is organized into.
func (p *Provider) Technologies(ctx context.Context, refresh bool) ([]models.Technology, error) {
	return []models.Technology{
		{ID: TechMethods, Title: "Methods", Kind: models.KindAPICategory, Provider: models.ProviderTelegram},
		{ID: TechTypes, Title: "Types", Kind: models.KindAPICategory, Provider: models.ProviderTelegram},
	}, nil
}

// Category returns every method or type under one of the two groupings;
// identifier is ignored beyond selecting methods vs types since Telegram's
// spec is already flat within each.
func (p *Provider) Category(ctx context.Context, technologyID, identifier string) (models.Category, error) {
	refs, err := p.FrameworkIndex(ctx, technologyID)
	if err != nil {
		return models.Category{}, err
	}
	return models.Category{Identifier: technologyID, Items: refs}, nil
}

// Item returns one method or type's field list.
func (p *Provider) Item(ctx context.Context, path string) (models.Symbol, error) {
	norm := provider.NormalizePath(path)
	s, err := p.spec(ctx)
	if err != nil {
		return models.Symbol{}, err
	}
	if m, ok := s.Methods[norm]; ok {
		return toSymbol(norm, m.Description, m.Returns, m.Fields), nil
	}
	if t, ok := s.Types[norm]; ok {
		return toSymbol(norm, t.Description, "", t.Fields), nil
	}
	return models.Symbol{}, docsmcperr.New(docsmcperr.NotFound, norm, fmt.Errorf("no such method or type"))
}

func toSymbol(name, desc, returns string, fields []specField) models.Symbol {
	out := make([]models.TelegramField, 0, len(fields))
	for _, f := range fields {
		out = append(out, models.TelegramField{
			Name: f.Name, Type: f.Types(), Required: f.Required, Description: f.Description,
		})
	}
	return models.Symbol{
		ID:          name,
		Title:       name,
		Description: desc,
		Kind:        "bot-api",
		Provider:    models.ProviderTelegram,
		Body:        models.SymbolBody{Telegram: &models.TelegramBody{Fields: out, Returns: returns}},
	}
}

// FrameworkIndex tokenizes every method or type name in the named group.
func (p *Provider) FrameworkIndex(ctx context.Context, technologyID string) ([]models.Reference, error) {
	s, err := p.spec(ctx)
	if err != nil {
		return nil, err
	}
	var refs []models.Reference
	switch technologyID {
	case TechMethods:
		for name, m := range s.Methods {
			refs = append(refs, models.Reference{ID: name, Title: name, Kind: "method", Abstract: m.Description})
		}
	case TechTypes:
		for name, t := range s.Types {
			refs = append(refs, models.Reference{ID: name, Title: name, Kind: "type", Abstract: t.Description})
		}
	default:
		return nil, docsmcperr.New(docsmcperr.NotFound, technologyID, fmt.Errorf("unknown technology"))
	}
	return tokenize.BuildIndex(refs), nil
}

type botAPISpec struct {
	Methods map[string]specMethod `json:"methods"`
	Types   map[string]specType   `json:"types"`
}

type specMethod struct {
	Description string      `json:"description"`
	Returns     string      `json:"returns"`
	Fields      []specField `json:"fields"`
}

type specType struct {
	Description string      `json:"description"`
	Fields      []specField `json:"fields"`
}

type specField struct {
	Name        string   `json:"name"`
	TypesField  []string `json:"types"`
	Required    bool     `json:"required"`
	Description string   `json:"description"`
}

func (f specField) Types() string {
	out := ""
	for i, t := range f.TypesField {
		if i > 0 {
			out += " | "
		}
		out += t
	}
	return out
}
