// Package ton implements the TON blockchain OpenAPI provider: the
// OpenAPI document's tags become technologies, operations under each tag
// become the category/item content (spec §4.5's "TON API tags").
package ton

import (
	"context"
	"fmt"
	"strings"
	"time"

	"docsmcp/internal/cache"
	"docsmcp/internal/docsmcperr"
	"docsmcp/internal/httpfetch"
	"docsmcp/internal/provider"
	"docsmcp/internal/tokenize"
	"docsmcp/pkg/models"
)

// specURL is a var rather than a const so tests can point it at a local
// httptest server instead of the real TON API host.
var specURL = "https://tonapi.io/api-docs.json"

type Provider struct {
	fetch    *httpfetch.Fetcher
	specDisk *cache.Disk[openAPISpec]
}

func New(cacheDir string, diskBudget int64) *Provider {
	return &Provider{
		fetch:    httpfetch.New(httpfetch.Config{Timeout: 30 * time.Second, TTL: 30 * time.Minute}),
		specDisk: cache.NewDisk[openAPISpec](cacheDir, diskBudget),
	}
}

func (p *Provider) Name() models.Provider { return models.ProviderTON }

func (p *Provider) spec(ctx context.Context) (openAPISpec, error) {
	return httpfetch.Coalesced(ctx, p.fetch, p.specDisk, "ton:spec", "spec.json",
		func(ctx context.Context) (openAPISpec, error) {
			return httpfetch.FetchJSON[openAPISpec](ctx, p.fetch, specURL)
		})
}

func (p *Provider) Technologies(ctx context.Context, refresh bool) ([]models.Technology, error) {
	s, err := p.spec(ctx)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	var out []models.Technology
	for _, tag := range s.Tags {
		if seen[tag.Name] {
			continue
		}
		seen[tag.Name] = true
		out = append(out, models.Technology{
			ID: tag.Name, Title: tag.Name, Abstract: tag.Description,
			Kind: models.KindBlockchainAPI, Provider: models.ProviderTON,
		})
	}
	return out, nil
}

// Category lists every operation tagged with technologyID.
func (p *Provider) Category(ctx context.Context, technologyID, identifier string) (models.Category, error) {
	refs, err := p.FrameworkIndex(ctx, technologyID)
	if err != nil {
		return models.Category{}, err
	}
	return models.Category{Identifier: technologyID, Items: refs}, nil
}

// Item returns one operation's method, path, parameters, and responses.
// path is "METHOD path", matching what FrameworkIndex emits as an ID.
func (p *Provider) Item(ctx context.Context, path string) (models.Symbol, error) {
	norm := provider.NormalizePath(path)
	s, err := p.spec(ctx)
	if err != nil {
		return models.Symbol{}, err
	}
	method, opPath, ok := splitOperationID(norm)
	if !ok {
		return models.Symbol{}, docsmcperr.New(docsmcperr.InvalidArgs, norm, fmt.Errorf("expected 'METHOD /path'"))
	}
	pathItem, ok := s.Paths[opPath]
	if !ok {
		return models.Symbol{}, docsmcperr.New(docsmcperr.NotFound, norm, fmt.Errorf("no such path"))
	}
	op, ok := pathItem[strings.ToLower(method)]
	if !ok {
		return models.Symbol{}, docsmcperr.New(docsmcperr.NotFound, norm, fmt.Errorf("no such method on path"))
	}
	params := make([]models.TONParameter, 0, len(op.Parameters))
	for _, prm := range op.Parameters {
		params = append(params, models.TONParameter{Name: prm.Name, In: prm.In, Required: prm.Required, Description: prm.Description})
	}
	responses := make(map[string]string, len(op.Responses))
	for code, r := range op.Responses {
		responses[code] = r.Description
	}
	return models.Symbol{
		ID:          norm,
		Title:       op.Summary,
		Description: op.Description,
		Kind:        "operation",
		Provider:    models.ProviderTON,
		Body: models.SymbolBody{TON: &models.TONBody{
			Method: strings.ToUpper(method), Path: opPath, Parameters: params, Responses: responses,
		}},
	}, nil
}

func splitOperationID(id string) (method, path string, ok bool) {
	parts := strings.SplitN(id, " ", 2)
	if len(parts) != 2 {
		return "", "", false
	}
	return parts[0], parts[1], true
}

// FrameworkIndex tokenizes every operation tagged with technologyID.
func (p *Provider) FrameworkIndex(ctx context.Context, technologyID string) ([]models.Reference, error) {
	s, err := p.spec(ctx)
	if err != nil {
		return nil, err
	}
	var refs []models.Reference
	for path, methods := range s.Paths {
		for method, op := range methods {
			if !containsTag(op.Tags, technologyID) {
				continue
			}
			id := fmt.Sprintf("%s %s", strings.ToUpper(method), path)
			refs = append(refs, models.Reference{ID: id, Title: op.Summary, Kind: "operation", URL: path, Abstract: op.Description})
		}
	}
	if len(refs) == 0 {
		return nil, docsmcperr.New(docsmcperr.NotFound, technologyID, fmt.Errorf("no operations for tag"))
	}
	return tokenize.BuildIndex(refs), nil
}

func containsTag(tags []string, want string) bool {
	for _, t := range tags {
		if t == want {
			return true
		}
	}
	return false
}

type openAPISpec struct {
	Tags  []specTag                        `json:"tags"`
	Paths map[string]map[string]specOp     `json:"paths"`
}

type specTag struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type specOp struct {
	Summary     string                    `json:"summary"`
	Description string                    `json:"description"`
	Tags        []string                  `json:"tags"`
	Parameters  []specParameter           `json:"parameters"`
	Responses   map[string]specResponse   `json:"responses"`
}

type specParameter struct {
	Name        string `json:"name"`
	In          string `json:"in"`
	Required    bool   `json:"required"`
	Description string `json:"description"`
}

type specResponse struct {
	Description string `json:"description"`
}
