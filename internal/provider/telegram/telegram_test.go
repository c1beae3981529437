package telegram

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fakeBotAPISpec = `{
	"methods": {
		"sendMessage": {
			"description": "Send a text message.",
			"returns": "Message",
			"fields": [{"name": "chat_id", "types": ["Integer", "String"], "required": true, "description": "target chat"}]
		}
	},
	"types": {
		"Message": {
			"description": "A message.",
			"fields": [{"name": "message_id", "types": ["Integer"], "required": true, "description": "id"}]
		}
	}
}`

func withFakeTelegram(t *testing.T, srv *httptest.Server) {
	t.Helper()
	orig := specURL
	specURL = srv.URL + "/custom.json"
	t.Cleanup(func() { specURL = orig })
}

func newFakeTelegramServer(t *testing.T) *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/custom.json", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(fakeBotAPISpec))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestTechnologiesReturnsMethodsAndTypes(t *testing.T) {
	p := New(t.TempDir(), 1<<20)
	techs, err := p.Technologies(context.Background(), false)
	require.NoError(t, err)
	require.Len(t, techs, 2)
	assert.Equal(t, TechMethods, techs[0].ID)
	assert.Equal(t, TechTypes, techs[1].ID)
}

func TestFrameworkIndexMethods(t *testing.T) {
	withFakeTelegram(t, newFakeTelegramServer(t))
	p := New(t.TempDir(), 1<<20)

	refs, err := p.FrameworkIndex(context.Background(), TechMethods)
	require.NoError(t, err)
	require.Len(t, refs, 1)
	assert.Equal(t, "sendMessage", refs[0].ID)
}

func TestFrameworkIndexUnknownTechnologyIsNotFound(t *testing.T) {
	withFakeTelegram(t, newFakeTelegramServer(t))
	p := New(t.TempDir(), 1<<20)

	_, err := p.FrameworkIndex(context.Background(), "bogus")
	assert.Error(t, err)
}

func TestItemResolvesMethod(t *testing.T) {
	withFakeTelegram(t, newFakeTelegramServer(t))
	p := New(t.TempDir(), 1<<20)

	sym, err := p.Item(context.Background(), "sendMessage")
	require.NoError(t, err)
	require.NotNil(t, sym.Body.Telegram)
	assert.Equal(t, "Message", sym.Body.Telegram.Returns)
	require.Len(t, sym.Body.Telegram.Fields, 1)
	assert.Equal(t, "Integer | String", sym.Body.Telegram.Fields[0].Type)
}

func TestItemResolvesType(t *testing.T) {
	withFakeTelegram(t, newFakeTelegramServer(t))
	p := New(t.TempDir(), 1<<20)

	sym, err := p.Item(context.Background(), "Message")
	require.NoError(t, err)
	require.NotNil(t, sym.Body.Telegram)
	assert.Equal(t, "A message.", sym.Description)
}

func TestItemUnknownNameIsNotFound(t *testing.T) {
	withFakeTelegram(t, newFakeTelegramServer(t))
	p := New(t.TempDir(), 1<<20)

	_, err := p.Item(context.Background(), "bogusMethod")
	assert.Error(t, err)
}
