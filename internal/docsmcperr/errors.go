// Package docsmcperr defines the error kinds in spec §7 as a single wrapping
// error type, so every layer (provider, cache, transport) can propagate a
// typed failure without the transport needing to know provider internals.
package docsmcperr

import "fmt"

// Kind tags the category of failure, used by the transport to choose a
// JSON-RPC error code and by callers that want to branch on failure mode.
type Kind string

const (
	NotConfigured     Kind = "not_configured"
	UpstreamHTTP      Kind = "upstream_http"
	UpstreamTransport Kind = "upstream_transport"
	ParseFailure      Kind = "parse_failure"
	NotFound          Kind = "not_found"
	InvalidArgs       Kind = "invalid_args"
	CacheIO           Kind = "cache_io"
	UnknownTool       Kind = "unknown_tool"
)

// Error wraps an underlying error with a Kind and the context that produced
// it, using a single free-form Context string since each Kind needs
// different fields (a URL for upstream errors, a tool name for invalid
// args, a path for not-found).
type Error struct {
	Kind    Kind
	Context string
	Status  int // populated for UpstreamHTTP
	Err     error
}

func (e *Error) Error() string {
	if e.Context == "" {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s (%s): %v", e.Kind, e.Context, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func New(kind Kind, context string, err error) *Error {
	return &Error{Kind: kind, Context: context, Err: err}
}

// HTTPStatus builds an UpstreamHTTP error carrying the offending status code.
func HTTPStatus(url string, status int) *Error {
	return &Error{Kind: UpstreamHTTP, Context: url, Status: status, Err: fmt.Errorf("status %d", status)}
}

// KindOf extracts the Kind from err if it (or something it wraps) is an
// *Error; otherwise returns "" so callers can fall back to a generic code.
func KindOf(err error) Kind {
	var e *Error
	for err != nil {
		if as, ok := err.(*Error); ok {
			e = as
			break
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			break
		}
		err = u.Unwrap()
	}
	if e == nil {
		return ""
	}
	return e.Kind
}
