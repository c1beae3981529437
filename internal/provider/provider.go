// Package provider defines the common interface every documentation
// provider implements (spec §4.5/§9): technologies, category, item, and the
// framework index that internal/search scores queries against.
// Each concrete provider (apple, mdn, rust, telegram, ton, huggingface,
// mlx, cocoon, quicknode, webframeworks) is its own sub-package; none
// shares concrete types with another beyond this interface and pkg/models.
package provider

import (
	"context"
	"strings"

	"docsmcp/pkg/models"
)

// Provider is the quartet of operations spec §4.5 requires of every
// documentation source.
type Provider interface {
	// Name identifies the provider for state/telemetry keys.
	Name() models.Provider

	// Technologies returns the provider's top-level units. Always
	// consults the two-tier cache unless refresh is true.
	Technologies(ctx context.Context, refresh bool) ([]models.Technology, error)

	// Category returns the indexed item list under a technology that has
	// sub-categories (Telegram Methods/Types, TON tags, Rust crate
	// modules, ...). Providers without sub-categories return NotFound.
	Category(ctx context.Context, technologyID, identifier string) (models.Category, error)

	// Item fetches and parses one detail page. path is whatever a prior
	// list/search call returned as an identifier (round-trip guarantee,
	// spec §4.5).
	Item(ctx context.Context, path string) (models.Symbol, error)

	// FrameworkIndex returns the tokenized reference list backing search
	// for one technology, building it on first use (spec §4.6/§4.7).
	FrameworkIndex(ctx context.Context, technologyID string) ([]models.Reference, error)
}

// NormalizePath implements spec §4.5's generic identifier round-trip rule
// for providers that don't need Apple's doc://-scheme handling: it trims
// whitespace, nothing more. Apple's own normalizer lives in provider/apple
// since it is materially richer (multiple accepted prefixes).
func NormalizePath(raw string) string {
	return strings.TrimSpace(raw)
}
