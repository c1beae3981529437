package docsmcperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorMessageIncludesContextWhenPresent(t *testing.T) {
	err := New(NotFound, "swiftui/list", errors.New("missing"))
	assert.Equal(t, "not_found (swiftui/list): missing", err.Error())
}

func TestErrorMessageOmitsContextWhenEmpty(t *testing.T) {
	err := New(ParseFailure, "", errors.New("bad markup"))
	assert.Equal(t, "parse_failure: bad markup", err.Error())
}

func TestUnwrapExposesUnderlyingError(t *testing.T) {
	underlying := errors.New("boom")
	err := New(CacheIO, "disk", underlying)
	assert.Same(t, underlying, err.Unwrap())
}

func TestHTTPStatusSetsKindAndStatus(t *testing.T) {
	err := HTTPStatus("https://example.com", 404)
	assert.Equal(t, UpstreamHTTP, err.Kind)
	assert.Equal(t, 404, err.Status)
}

func TestKindOfDirectError(t *testing.T) {
	err := New(InvalidArgs, "query", errors.New("empty"))
	assert.Equal(t, InvalidArgs, KindOf(err))
}

func TestKindOfWrappedError(t *testing.T) {
	inner := New(UpstreamHTTP, "url", errors.New("503"))
	wrapped := fmt.Errorf("fetch failed: %w", inner)
	assert.Equal(t, UpstreamHTTP, KindOf(wrapped))
}

func TestKindOfNonDocsMCPErrorReturnsEmptyKind(t *testing.T) {
	assert.Equal(t, Kind(""), KindOf(errors.New("plain")))
}

func TestKindOfNilErrorReturnsEmptyKind(t *testing.T) {
	assert.Equal(t, Kind(""), KindOf(nil))
}
