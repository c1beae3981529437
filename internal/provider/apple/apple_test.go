package apple

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withFakeAppleDocs(t *testing.T, srv *httptest.Server) {
	t.Helper()
	orig := baseURL
	baseURL = srv.URL
	t.Cleanup(func() { baseURL = orig })
}

func TestNormalizePathAcceptsFullURL(t *testing.T) {
	got := NormalizePath("https://developer.apple.com/documentation/swiftui/list", "")
	assert.Equal(t, "documentation/swiftui/list", got)
}

func TestNormalizePathAcceptsDocScheme(t *testing.T) {
	got := NormalizePath("doc://com.apple.documentation/documentation/swiftui/list", "")
	assert.Equal(t, "documentation/swiftui/list", got)
}

func TestNormalizePathResolvesBareNameAgainstActiveTechnology(t *testing.T) {
	got := NormalizePath("List", "swiftui")
	assert.Equal(t, "documentation/swiftui/List", got)
}

func TestNormalizePathBareNameWithNoActiveTechnology(t *testing.T) {
	got := NormalizePath("List", "")
	assert.Equal(t, "documentation/List", got)
}

func TestTechnologiesParsesReferences(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/documentation/technologies.json", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"references":{"doc://swiftui":{"title":"SwiftUI","url":"/documentation/swiftui"}}}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()
	withFakeAppleDocs(t, srv)

	p := New(t.TempDir(), 1<<20, func() string { return "" })
	techs, err := p.Technologies(context.Background(), true)
	require.NoError(t, err)
	require.Len(t, techs, 1)
	assert.Equal(t, "swiftui", techs[0].ID)
	assert.Equal(t, "SwiftUI", techs[0].Title)
}

func TestFrameworkIndexFlattensReferences(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/documentation/swiftui.json", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"references":{"doc://swiftui/list":{"title":"List","url":"/documentation/swiftui/list","kind":"symbol"}}}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()
	withFakeAppleDocs(t, srv)

	p := New(t.TempDir(), 1<<20, func() string { return "" })
	refs, err := p.FrameworkIndex(context.Background(), "swiftui")
	require.NoError(t, err)
	require.Len(t, refs, 1)
	assert.Equal(t, "doc://swiftui/list", refs[0].ID)
	assert.NotEmpty(t, refs[0].Tokens)
}

func TestItemFetchesSymbolPageAndCollectsRelated(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/documentation/swiftui/list.json", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"metadata":{"title":"List","platforms":[{"name":"iOS"}]},
			"abstract":[{"type":"text","text":"A container."}],
			"primaryContentSections":[{"kind":"declarations","content":[{"type":"text","text":"struct List"}]}],
			"references":{"doc://swiftui/forEach":{"title":"ForEach"}}
		}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()
	withFakeAppleDocs(t, srv)

	p := New(t.TempDir(), 1<<20, func() string { return "swiftui" })
	sym, err := p.Item(context.Background(), "list")
	require.NoError(t, err)
	assert.Equal(t, "List", sym.Title)
	assert.Equal(t, "A container.", sym.Description)
	require.NotNil(t, sym.Body.Apple)
	assert.Equal(t, []string{"iOS"}, sym.Body.Apple.Platforms)
	assert.Contains(t, sym.Related, "doc://swiftui/forEach")
}

func TestCategoryIsNotSupported(t *testing.T) {
	p := New(t.TempDir(), 1<<20, nil)
	_, err := p.Category(context.Background(), "swiftui", "x")
	assert.Error(t, err)
}
