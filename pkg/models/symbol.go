package models

// Symbol is a fully loaded documentation item: a title, description, the
// provider it came from, a provider-specific Body variant, and the list of
// related references (modeled by identifier, not by pointer, so the arena
// of loaded symbols never forms ownership cycles).
type Symbol struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Kind        string     `json:"kind,omitempty"`
	Provider    Provider   `json:"provider"`
	Body        SymbolBody `json:"body"`
	Related     []string   `json:"related,omitempty"`
}

// SymbolBody is a closed set of provider-specific payload shapes. At most
// one field is populated (none after a degraded, title-only extraction),
// matching the owning Symbol's Provider tag; callers should switch on
// Provider rather than on which field is non-nil.
type SymbolBody struct {
	Apple         *AppleBody         `json:"apple,omitempty"`
	Telegram      *TelegramBody      `json:"telegram,omitempty"`
	TON           *TONBody           `json:"ton,omitempty"`
	Cocoon        *CocoonBody        `json:"cocoon,omitempty"`
	Rust          *RustBody          `json:"rust,omitempty"`
	MDN           *MDNBody           `json:"mdn,omitempty"`
	WebFramework  *WebFrameworkBody  `json:"web_framework,omitempty"`
}

// AppleBody holds an Apple Developer Documentation symbol's sections and
// supported platform list.
type AppleBody struct {
	Sections  []RichTextSection `json:"sections,omitempty"`
	Platforms []string          `json:"platforms,omitempty"`
}

// TelegramBody holds a Bot API method or type's field list and return shape.
type TelegramBody struct {
	Fields  []TelegramField `json:"fields,omitempty"`
	Returns string          `json:"returns,omitempty"`
}

type TelegramField struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Required    bool   `json:"required"`
	Description string `json:"description,omitempty"`
}

// TONBody holds a TON OpenAPI method's path, parameters and responses.
type TONBody struct {
	Method     string          `json:"method"`
	Path       string          `json:"path"`
	Parameters []TONParameter  `json:"parameters,omitempty"`
	Responses  map[string]string `json:"responses,omitempty"`
}

type TONParameter struct {
	Name        string `json:"name"`
	In          string `json:"in"`
	Required    bool   `json:"required"`
	Description string `json:"description,omitempty"`
}

// CocoonBody holds raw markdown fetched from a Git-forge-hosted repository.
type CocoonBody struct {
	Markdown string `json:"markdown"`
	Path     string `json:"path"`
}

// RustBody holds a rustdoc item's signature, rendered documentation and an
// optional link to the crate source.
type RustBody struct {
	Signature string `json:"signature,omitempty"`
	Docs      string `json:"docs,omitempty"`
	SourceURL string `json:"source_url,omitempty"`
}

// MDNBody holds an MDN reference entry's syntax block, example list and
// parameter table.
type MDNBody struct {
	Syntax     string       `json:"syntax,omitempty"`
	Examples   []string     `json:"examples,omitempty"`
	Parameters []MDNParam   `json:"parameters,omitempty"`
}

type MDNParam struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// WebFrameworkBody holds content scraped from a framework's index table:
// prose content, code examples and an optional API signature line. Shared
// by Hugging Face, MLX, QuickNode and the generic framework-index providers.
type WebFrameworkBody struct {
	Content   string   `json:"content,omitempty"`
	Examples  []string `json:"examples,omitempty"`
	Signature string   `json:"signature,omitempty"`
}

// RichTextSection is a flattened rich-text segment (Apple's abstract/
// discussion sections are an array of typed inline runs upstream; by the
// time they reach this model they are plain text plus a section kind).
type RichTextSection struct {
	Kind string `json:"kind"`
	Text string `json:"text"`
}
