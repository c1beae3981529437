// Package transport implements the line-delimited JSON-RPC stdio
// transport (spec §4.9/§6): a scanner-over-stdin loop that decodes one
// JSON-RPC envelope per line and dispatches initialize/tools/list/
// tools/call through this service's tool.Registry and tool.Executor.
package transport

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/google/uuid"

	"docsmcp/internal/docsmcperr"
	"docsmcp/internal/telemetry"
	"docsmcp/internal/tool"
)

const (
	codeParseError     = -32700
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
	codeServerError    = -32000
)

// ServerInfo names this service for the initialize handshake.
type ServerInfo struct {
	Name         string
	Version      string
	Instructions string
}

// request/response mirror JSON-RPC 2.0's envelope (spec §6).
type request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      any             `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

type response struct {
	JSONRPC string    `json:"jsonrpc"`
	ID      any       `json:"id,omitempty"`
	Result  any       `json:"result,omitempty"`
	Error   *rpcError `json:"error,omitempty"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type toolCallParams struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments,omitempty"`
}

// Server dispatches JSON-RPC requests to a tool.Registry/tool.Executor
// pair over an arbitrary reader/writer pair (stdio in production, pipes
// in tests).
type Server struct {
	info     ServerInfo
	registry *tool.Registry
	executor *tool.Executor
	logger   telemetry.Logger

	// emitFeedbackPrompt, when true, sends a notifications/message after
	// the first notifications/initialized (spec §4.9's optional banner),
	// unless DOCSMCP_DISABLE_FEEDBACK_PROMPT suppressed it upstream.
	emitFeedbackPrompt bool
	initializedOnce    bool
}

func New(info ServerInfo, registry *tool.Registry, executor *tool.Executor, logger telemetry.Logger, emitFeedbackPrompt bool) *Server {
	return &Server{info: info, registry: registry, executor: executor, logger: logger, emitFeedbackPrompt: emitFeedbackPrompt}
}

// Serve reads one JSON object per line from r, dispatches it, and writes
// one JSON object per line to w, until r is exhausted (spec §6's exit
// code 0 on clean EOF).
func (s *Server) Serve(ctx context.Context, r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		resp, notify := s.dispatch(ctx, append([]byte(nil), line...))
		if resp == nil && notify == nil {
			continue
		}
		if resp != nil {
			if err := writeMessage(w, resp); err != nil {
				return err
			}
		}
		if notify != nil {
			if err := writeMessage(w, notify); err != nil {
				return err
			}
		}
	}
	return scanner.Err()
}

func writeMessage(w io.Writer, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("transport: marshal response: %w", err)
	}
	raw = append(raw, '\n')
	_, err = w.Write(raw)
	return err
}

// dispatch decodes one line and returns the response to send (nil for a
// bare notification with no reply) plus an optional second message (the
// feedback-prompt notification after the first initialized).
func (s *Server) dispatch(ctx context.Context, line []byte) (*response, *response) {
	var req request
	if err := json.Unmarshal(line, &req); err != nil {
		return errorResponse(nil, codeParseError, "parse error: "+err.Error()), nil
	}

	isNotification := req.ID == nil

	switch req.Method {
	case "initialize":
		return s.handleInitialize(req), nil

	case "tools/list", "list_tools":
		return okResponse(req.ID, map[string]any{"tools": s.registry.Definitions()}), nil

	case "tools/call", "call_tool":
		return s.handleToolCall(ctx, req), nil

	case "notifications/initialized":
		first := !s.initializedOnce
		s.initializedOnce = true
		if s.logger != nil {
			s.logger.InfoCtx(ctx, "client initialized")
		}
		if first && s.emitFeedbackPrompt {
			return nil, &response{
				JSONRPC: "2.0",
				Result: map[string]any{
					"method": "notifications/message",
					"params": map[string]any{"level": "info", "message": "If docsmcp was helpful, consider calling submit_feedback."},
				},
			}
		}
		return nil, nil

	default:
		if isNotification {
			return nil, nil
		}
		return errorResponse(req.ID, codeMethodNotFound, "unknown method: "+req.Method), nil
	}
}

func (s *Server) handleInitialize(req request) *response {
	return okResponse(req.ID, map[string]any{
		"protocolVersion": "2024-11-05",
		"serverInfo":      map[string]any{"name": s.info.Name, "version": s.info.Version},
		"capabilities":    map[string]any{"tools": map[string]any{}},
		"instructions":    s.info.Instructions,
	})
}

func (s *Server) handleToolCall(ctx context.Context, req request) *response {
	var params toolCallParams
	if len(req.Params) > 0 {
		if err := json.Unmarshal(req.Params, &params); err != nil {
			return errorResponse(req.ID, codeInvalidParams, "invalid params: "+err.Error())
		}
	}
	if params.Name == "" {
		return errorResponse(req.ID, codeInvalidParams, "missing tool name")
	}

	ctx = telemetry.WithCorrelationID(ctx, correlationIDFor(req.ID))
	if s.logger != nil {
		s.logger.InfoCtx(ctx, "tool call", "tool", params.Name)
	}

	resp, err := s.executor.Call(ctx, params.Name, params.Arguments)
	if err != nil {
		if s.logger != nil {
			s.logger.WarnCtx(ctx, "tool call failed", "tool", params.Name, "error", err)
		}
		return errorResponse(req.ID, codeForError(err), err.Error())
	}
	return okResponse(req.ID, resp)
}

// correlationIDFor derives a log correlation id from the request's JSON-RPC
// id when present (stable across retries a client might log by id), or
// mints a fresh one so every tool call is still traceable through the logs
// when a client sends no id.
func correlationIDFor(id any) string {
	if id == nil {
		return uuid.NewString()
	}
	switch v := id.(type) {
	case string:
		if v != "" {
			return v
		}
	case float64:
		return fmt.Sprintf("%v", v)
	}
	return uuid.NewString()
}

// codeForError maps a docsmcperr.Kind to a JSON-RPC error code (spec §6/§7).
func codeForError(err error) int {
	switch docsmcperr.KindOf(err) {
	case docsmcperr.InvalidArgs:
		return codeInvalidParams
	case docsmcperr.UnknownTool:
		return codeMethodNotFound
	default:
		return codeServerError
	}
}

func okResponse(id any, result any) *response {
	return &response{JSONRPC: "2.0", ID: id, Result: result}
}

func errorResponse(id any, code int, msg string) *response {
	return &response{JSONRPC: "2.0", ID: id, Error: &rpcError{Code: code, Message: msg}}
}
