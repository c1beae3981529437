package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docsmcp/internal/docsmcperr"
	"docsmcp/internal/state"
	"docsmcp/internal/tool"
)

var errFailsTool = errors.New("boom")

func newTestServer() (*Server, *tool.Registry) {
	r := tool.NewRegistry()
	r.Register(tool.Definition{Name: "echo", Description: "echoes args"}, func(ctx context.Context, args []byte) (tool.Response, error) {
		var s string
		if err := json.Unmarshal(args, &s); err != nil {
			return tool.Response{}, err
		}
		return tool.Text(s), nil
	})
	r.Register(tool.Definition{Name: "fails"}, func(ctx context.Context, args []byte) (tool.Response, error) {
		return tool.Response{}, docsmcperr.New(docsmcperr.InvalidArgs, "fails", errFailsTool)
	})
	st := state.New()
	exec := tool.NewExecutor(r, st, tool.WithoutTelemetry())
	srv := New(ServerInfo{Name: "docsmcp", Version: "test"}, r, exec, nil, false)
	return srv, r
}

func decodeLines(t *testing.T, raw []byte) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimRight(string(raw), "\n"), "\n") {
		if line == "" {
			continue
		}
		var m map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &m))
		out = append(out, m)
	}
	return out
}

func TestServeHandlesInitializeListAndCall(t *testing.T) {
	srv, _ := newTestServer()

	input := strings.Join([]string{
		`{"jsonrpc":"2.0","id":1,"method":"initialize"}`,
		`{"jsonrpc":"2.0","id":2,"method":"tools/list"}`,
		`{"jsonrpc":"2.0","id":3,"method":"tools/call","params":{"name":"echo","arguments":"hi"}}`,
	}, "\n") + "\n"

	var out bytes.Buffer
	err := srv.Serve(context.Background(), strings.NewReader(input), &out)
	require.NoError(t, err)

	lines := decodeLines(t, out.Bytes())
	require.Len(t, lines, 3)

	assert.Contains(t, lines[0], "result")
	result0 := lines[0]["result"].(map[string]any)
	assert.Equal(t, "docsmcp", result0["serverInfo"].(map[string]any)["name"])

	result1 := lines[1]["result"].(map[string]any)
	tools := result1["tools"].([]any)
	assert.Len(t, tools, 2)

	result2 := lines[2]["result"].(map[string]any)
	content := result2["content"].([]any)
	first := content[0].(map[string]any)
	assert.Equal(t, "hi", first["text"])
}

func TestServeUnknownMethodReturnsError(t *testing.T) {
	srv, _ := newTestServer()
	input := `{"jsonrpc":"2.0","id":1,"method":"bogus"}` + "\n"

	var out bytes.Buffer
	require.NoError(t, srv.Serve(context.Background(), strings.NewReader(input), &out))

	lines := decodeLines(t, out.Bytes())
	require.Len(t, lines, 1)
	errObj := lines[0]["error"].(map[string]any)
	assert.EqualValues(t, codeMethodNotFound, errObj["code"])
}

func TestServeToolCallErrorMapsInvalidArgsCode(t *testing.T) {
	srv, _ := newTestServer()
	input := `{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"fails"}}` + "\n"

	var out bytes.Buffer
	require.NoError(t, srv.Serve(context.Background(), strings.NewReader(input), &out))

	lines := decodeLines(t, out.Bytes())
	require.Len(t, lines, 1)
	errObj := lines[0]["error"].(map[string]any)
	assert.EqualValues(t, codeInvalidParams, errObj["code"])
}

func TestServeUnknownToolNameMapsMethodNotFoundCode(t *testing.T) {
	srv, _ := newTestServer()
	input := `{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"missing"}}` + "\n"

	var out bytes.Buffer
	require.NoError(t, srv.Serve(context.Background(), strings.NewReader(input), &out))

	lines := decodeLines(t, out.Bytes())
	require.Len(t, lines, 1)
	errObj := lines[0]["error"].(map[string]any)
	assert.EqualValues(t, codeMethodNotFound, errObj["code"])
}

func TestServeNotificationProducesNoResponse(t *testing.T) {
	srv, _ := newTestServer()
	input := `{"jsonrpc":"2.0","method":"notifications/initialized"}` + "\n"

	var out bytes.Buffer
	require.NoError(t, srv.Serve(context.Background(), strings.NewReader(input), &out))

	assert.Empty(t, out.Bytes())
}

func TestServeMalformedJSONReturnsParseError(t *testing.T) {
	srv, _ := newTestServer()
	input := `{not valid json` + "\n"

	var out bytes.Buffer
	require.NoError(t, srv.Serve(context.Background(), strings.NewReader(input), &out))

	lines := decodeLines(t, out.Bytes())
	require.Len(t, lines, 1)
	errObj := lines[0]["error"].(map[string]any)
	assert.EqualValues(t, codeParseError, errObj["code"])
}

func TestCorrelationIDForUsesRequestIDWhenPresent(t *testing.T) {
	assert.Equal(t, "abc", correlationIDFor("abc"))
	assert.Equal(t, "3", correlationIDFor(float64(3)))
}

func TestCorrelationIDForMintsIDWhenAbsent(t *testing.T) {
	a := correlationIDFor(nil)
	b := correlationIDFor(nil)
	assert.NotEmpty(t, a)
	assert.NotEqual(t, a, b, "each missing id gets a distinct generated correlation id")
}

func TestServeFeedbackPromptFiresOnlyOnceAfterFirstInitialized(t *testing.T) {
	r := tool.NewRegistry()
	st := state.New()
	exec := tool.NewExecutor(r, st, tool.WithoutTelemetry())
	srv := New(ServerInfo{Name: "docsmcp"}, r, exec, nil, true)

	input := strings.Repeat(`{"jsonrpc":"2.0","method":"notifications/initialized"}`+"\n", 2)

	var out bytes.Buffer
	require.NoError(t, srv.Serve(context.Background(), strings.NewReader(input), &out))

	lines := decodeLines(t, out.Bytes())
	require.Len(t, lines, 1, "the feedback-prompt notification should fire only after the first initialized")
}
