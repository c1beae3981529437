package cocoon

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docsmcp/pkg/models"
)

// withFakeGitHub points apiBase/rawBase at srv for the duration of one
// test, restoring the real hosts afterward.
func withFakeGitHub(t *testing.T, srv *httptest.Server) {
	t.Helper()
	origAPI, origRaw := apiBase, rawBase
	apiBase = srv.URL + "/repos"
	rawBase = srv.URL
	t.Cleanup(func() { apiBase, rawBase = origAPI, origRaw })
}

func TestTitleFromSlug(t *testing.T) {
	assert.Equal(t, "Async Navigation", titleFromSlug("async-navigation"))
	assert.Equal(t, "Error Boundaries", titleFromSlug("error_boundaries"))
	assert.Equal(t, "", titleFromSlug(""))
}

func TestTechnologiesListsSectionDirectories(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/acme/docs/contents/guides", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[
			{"name":"async-navigation","path":"guides/async-navigation","type":"dir"},
			{"name":"README.md","path":"guides/README.md","type":"file"}
		]`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()
	withFakeGitHub(t, srv)

	p := New(t.TempDir(), 1<<20, Config{Owner: "acme", Repo: "docs", Root: "guides"})
	techs, err := p.Technologies(context.Background(), true)
	require.NoError(t, err)
	require.Len(t, techs, 1, "only directory entries become technologies")
	assert.Equal(t, "async-navigation", techs[0].ID)
	assert.Equal(t, "Async Navigation", techs[0].Title)
	assert.Equal(t, models.KindDocSection, techs[0].Kind)
}

func TestFrameworkIndexListsMarkdownFilesOnly(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/acme/docs/contents/guides/async-navigation", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[
			{"name":"intro.md","path":"guides/async-navigation/intro.md","type":"file"},
			{"name":"assets","path":"guides/async-navigation/assets","type":"dir"}
		]`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()
	withFakeGitHub(t, srv)

	p := New(t.TempDir(), 1<<20, Config{Owner: "acme", Repo: "docs", Root: "guides"})
	refs, err := p.FrameworkIndex(context.Background(), "async-navigation")
	require.NoError(t, err)
	require.Len(t, refs, 1)
	assert.Equal(t, "async-navigation/intro.md", refs[0].ID)
	assert.NotEmpty(t, refs[0].Tokens)
}

func TestFrameworkIndexNoMarkdownFilesIsNotFound(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/acme/docs/contents/guides/empty", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()
	withFakeGitHub(t, srv)

	p := New(t.TempDir(), 1<<20, Config{Owner: "acme", Repo: "docs", Root: "guides"})
	_, err := p.FrameworkIndex(context.Background(), "empty")
	assert.Error(t, err)
}

func TestItemFetchesRawMarkdown(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/acme/docs/main/guides/async-navigation/intro.md", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("# Intro\n\nBody text."))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()
	withFakeGitHub(t, srv)

	p := New(t.TempDir(), 1<<20, Config{Owner: "acme", Repo: "docs", Root: "guides"})
	sym, err := p.Item(context.Background(), "async-navigation/intro.md")
	require.NoError(t, err)
	require.NotNil(t, sym.Body.Cocoon)
	assert.Contains(t, sym.Body.Cocoon.Markdown, "Body text.")
	assert.Equal(t, models.ProviderCocoon, sym.Provider)
}
