package webframeworks

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docsmcp/pkg/models"
)

func newTestProvider(t *testing.T, indexHTML, pageHTML string) (*Provider, *httptest.Server) {
	t.Helper()
	var srv *httptest.Server
	mux := http.NewServeMux()
	mux.HandleFunc("/docs/react", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(indexHTML))
	})
	mux.HandleFunc("/docs/react/useState", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(pageHTML))
	})
	srv = httptest.NewServer(mux)

	p, err := New(t.TempDir(), 1<<20, []FrameworkSpec{
		{ID: "react", Title: "React", IndexURL: srv.URL + "/docs/react", DocsBase: srv.URL},
	})
	require.NoError(t, err)
	return p, srv
}

func TestTechnologiesListsConfiguredFrameworks(t *testing.T) {
	p, err := New(t.TempDir(), 1<<20, []FrameworkSpec{
		{ID: "react", Title: "React"},
		{ID: "vue", Title: "Vue"},
	})
	require.NoError(t, err)

	techs, err := p.Technologies(context.Background(), false)
	require.NoError(t, err)
	require.Len(t, techs, 2)
	assert.Equal(t, "react", techs[0].ID)
	assert.Equal(t, models.ProviderWebFrameworks, techs[0].Provider)
}

func TestFrameworkIndexScrapesNavLinks(t *testing.T) {
	index := `<html><body><nav><a href="/docs/react/useState">useState</a></nav></body></html>`
	p, srv := newTestProvider(t, index, "")
	defer srv.Close()

	refs, err := p.FrameworkIndex(context.Background(), "react")
	require.NoError(t, err)
	require.Len(t, refs, 1)
	assert.Equal(t, "react:/docs/react/useState", refs[0].ID)
	assert.Equal(t, "useState", refs[0].Title)
	assert.NotEmpty(t, refs[0].Tokens, "index entries should come back tokenized")
}

func TestFrameworkIndexUnknownTechnologyIsNotFound(t *testing.T) {
	p, err := New(t.TempDir(), 1<<20, nil)
	require.NoError(t, err)

	_, err = p.FrameworkIndex(context.Background(), "nonexistent")
	assert.Error(t, err)
}

func TestItemRejectsPathWithoutFrameworkPrefix(t *testing.T) {
	p, err := New(t.TempDir(), 1<<20, []FrameworkSpec{{ID: "react", Title: "React"}})
	require.NoError(t, err)

	_, err = p.Item(context.Background(), "no-colon-here")
	assert.Error(t, err)
}

func TestItemScrapesPageContentAndExamples(t *testing.T) {
	index := `<html><body><nav><a href="/docs/react/useState">useState</a></nav></body></html>`
	page := `<html><body><h1>useState</h1><main><p>Hook docs.</p><pre><code>const [x] = useState(0)</code></pre></main></body></html>`
	p, srv := newTestProvider(t, index, page)
	defer srv.Close()

	sym, err := p.Item(context.Background(), "react:/docs/react/useState")
	require.NoError(t, err)
	assert.Equal(t, "useState", sym.Title)
	require.NotNil(t, sym.Body.WebFramework)
	assert.Contains(t, sym.Body.WebFramework.Content, "Hook docs")
	require.Len(t, sym.Body.WebFramework.Examples, 1)
}

func TestItemRoundTripsIdentifierFromFrameworkIndex(t *testing.T) {
	index := `<html><body><nav><a href="/docs/react/useState">useState</a></nav></body></html>`
	page := `<html><body><h1>useState</h1><main><p>content</p></main></body></html>`
	p, srv := newTestProvider(t, index, page)
	defer srv.Close()

	refs, err := p.FrameworkIndex(context.Background(), "react")
	require.NoError(t, err)
	require.Len(t, refs, 1)

	_, err = p.Item(context.Background(), refs[0].ID)
	assert.NoError(t, err, "whatever FrameworkIndex returns as an identifier must be accepted by Item")
}
