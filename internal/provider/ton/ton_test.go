package ton

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fakeSpec = `{
	"tags": [{"name": "accounts", "description": "Account operations"}, {"name": "accounts", "description": "Account operations"}],
	"paths": {
		"/v2/accounts/{address}": {
			"get": {
				"summary": "Get account",
				"description": "Returns account info.",
				"tags": ["accounts"],
				"parameters": [{"name": "address", "in": "path", "required": true, "description": "account address"}],
				"responses": {"200": {"description": "OK"}}
			}
		}
	}
}`

func withFakeTON(t *testing.T, srv *httptest.Server) {
	t.Helper()
	orig := specURL
	specURL = srv.URL + "/api-docs.json"
	t.Cleanup(func() { specURL = orig })
}

func newFakeTONServer(t *testing.T) *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/api-docs.json", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(fakeSpec))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestTechnologiesDedupsTagNames(t *testing.T) {
	withFakeTON(t, newFakeTONServer(t))
	p := New(t.TempDir(), 1<<20)

	techs, err := p.Technologies(context.Background(), false)
	require.NoError(t, err)
	require.Len(t, techs, 1)
	assert.Equal(t, "accounts", techs[0].ID)
}

func TestFrameworkIndexFiltersOperationsByTag(t *testing.T) {
	withFakeTON(t, newFakeTONServer(t))
	p := New(t.TempDir(), 1<<20)

	refs, err := p.FrameworkIndex(context.Background(), "accounts")
	require.NoError(t, err)
	require.Len(t, refs, 1)
	assert.Equal(t, "GET /v2/accounts/{address}", refs[0].ID)
}

func TestFrameworkIndexUnknownTagIsNotFound(t *testing.T) {
	withFakeTON(t, newFakeTONServer(t))
	p := New(t.TempDir(), 1<<20)

	_, err := p.FrameworkIndex(context.Background(), "nonexistent")
	assert.Error(t, err)
}

func TestItemParsesMethodAndParameters(t *testing.T) {
	withFakeTON(t, newFakeTONServer(t))
	p := New(t.TempDir(), 1<<20)

	sym, err := p.Item(context.Background(), "GET /v2/accounts/{address}")
	require.NoError(t, err)
	assert.Equal(t, "Get account", sym.Title)
	require.NotNil(t, sym.Body.TON)
	assert.Equal(t, "GET", sym.Body.TON.Method)
	require.Len(t, sym.Body.TON.Parameters, 1)
	assert.Equal(t, "address", sym.Body.TON.Parameters[0].Name)
}

func TestItemRejectsMalformedOperationID(t *testing.T) {
	withFakeTON(t, newFakeTONServer(t))
	p := New(t.TempDir(), 1<<20)

	_, err := p.Item(context.Background(), "not-an-operation-id")
	assert.Error(t, err)
}

func TestItemUnknownPathIsNotFound(t *testing.T) {
	withFakeTON(t, newFakeTONServer(t))
	p := New(t.TempDir(), 1<<20)

	_, err := p.Item(context.Background(), "GET /v2/nonexistent")
	assert.Error(t, err)
}
