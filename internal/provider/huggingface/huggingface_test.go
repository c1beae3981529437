package huggingface

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withFakeHuggingFace(t *testing.T, srv *httptest.Server) {
	t.Helper()
	orig := base
	base = srv.URL
	t.Cleanup(func() { base = orig })
}

func TestTechnologiesListsStaticTopicTable(t *testing.T) {
	p, err := New(t.TempDir(), 1<<20)
	require.NoError(t, err)

	techs, err := p.Technologies(context.Background(), false)
	require.NoError(t, err)
	require.Len(t, techs, len(topics))
	assert.Equal(t, "transformers", techs[0].ID)
}

func TestFrameworkIndexScrapesNavLinks(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/transformers/index", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body><nav><a href="/docs/transformers/quicktour">Quick tour</a></nav></body></html>`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()
	withFakeHuggingFace(t, srv)

	p, err := New(t.TempDir(), 1<<20)
	require.NoError(t, err)

	refs, err := p.FrameworkIndex(context.Background(), "transformers")
	require.NoError(t, err)
	require.Len(t, refs, 1)
	assert.Equal(t, "transformers/quicktour", refs[0].ID)
}

func TestFrameworkIndexNoLinksIsParseFailure(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/transformers/index", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body></body></html>`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()
	withFakeHuggingFace(t, srv)

	p, err := New(t.TempDir(), 1<<20)
	require.NoError(t, err)

	_, err = p.FrameworkIndex(context.Background(), "transformers")
	assert.Error(t, err)
}

func TestItemScrapesContentAndExamples(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/transformers/quicktour", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body><h1>Quick tour</h1><main><p>Intro text.</p><pre><code>from transformers import pipeline</code></pre></main></body></html>`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()
	withFakeHuggingFace(t, srv)

	p, err := New(t.TempDir(), 1<<20)
	require.NoError(t, err)

	sym, err := p.Item(context.Background(), "transformers/quicktour")
	require.NoError(t, err)
	assert.Equal(t, "Quick tour", sym.Title)
	require.NotNil(t, sym.Body.WebFramework)
	assert.Len(t, sym.Body.WebFramework.Examples, 1)
}

func TestCategoryDelegatesToFrameworkIndex(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/transformers/index", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body><aside><a href="/docs/transformers/quicktour">Quick tour</a></aside></body></html>`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()
	withFakeHuggingFace(t, srv)

	p, err := New(t.TempDir(), 1<<20)
	require.NoError(t, err)

	cat, err := p.Category(context.Background(), "transformers", "transformers")
	require.NoError(t, err)
	require.Len(t, cat.Items, 1)
}
