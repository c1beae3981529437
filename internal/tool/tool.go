// Package tool implements the MCP tool registry and executor (spec §4.8):
// a name->handler map, asynchronous invocation, and per-call telemetry
// recording keyed by tool name.
package tool

import (
	"context"
	"fmt"

	"docsmcp/internal/clockutil"
	"docsmcp/internal/docsmcperr"
	"docsmcp/internal/state"
	"docsmcp/internal/telemetry/metrics"
	"docsmcp/pkg/models"
)

// Content is one chunk of a ToolResponse: a MIME-ish type tag plus text.
type Content struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Response is what every tool handler returns: ordered content chunks plus
// optional structured metadata (spec §4.8).
type Response struct {
	Content  []Content      `json:"content"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Text is a convenience constructor for the common single-text-chunk case.
func Text(s string) Response {
	return Response{Content: []Content{{Type: "text", Text: s}}}
}

// Definition is what tools/list advertises: name, description, and the
// JSON Schema of accepted arguments (spec §6).
type Definition struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	InputSchema any    `json:"inputSchema"`
}

// Handler is one tool's asynchronous implementation.
type Handler func(ctx context.Context, args []byte) (Response, error)

// entry pairs a handler with the definition advertised for it.
type entry struct {
	def     Definition
	handler Handler
}

// Registry is a name->handler map (spec §4.8). Zero value is usable.
type Registry struct {
	entries map[string]entry
	order   []string
}

// NewRegistry constructs an empty Registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]entry)}
}

// Register adds a named handler. Registering the same name twice replaces
// the previous handler but keeps its original position in Definitions().
func (r *Registry) Register(def Definition, h Handler) {
	if _, exists := r.entries[def.Name]; !exists {
		r.order = append(r.order, def.Name)
	}
	r.entries[def.Name] = entry{def: def, handler: h}
}

// Definitions returns every registered tool's definition, in registration
// order (spec §9 note (c): only query/submit_feedback are wired here by
// default, but the registry itself places no limit).
func (r *Registry) Definitions() []Definition {
	out := make([]Definition, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.entries[name].def)
	}
	return out
}

// Lookup returns the handler registered for name, if any.
func (r *Registry) Lookup(name string) (Handler, bool) {
	e, ok := r.entries[name]
	if !ok {
		return nil, false
	}
	return e.handler, true
}

// Executor invokes a Registry's handlers, recording telemetry into a
// state.State for every call (spec §4.8/§5).
type Executor struct {
	registry         *Registry
	state            *state.State
	clock            clockutil.Clock
	disableTelemetry bool
	calls            metrics.Counter
	latency          metrics.Histogram
}

// Option configures an Executor.
type Option func(*Executor)

// WithoutTelemetry suppresses telemetry recording, for tests that don't
// want the ring buffer populated (spec §4.8's "executor option suppresses
// telemetry recording for tests").
func WithoutTelemetry() Option {
	return func(e *Executor) { e.disableTelemetry = true }
}

// WithClock overrides the clock used for latency measurement.
func WithClock(c clockutil.Clock) Option {
	return func(e *Executor) { e.clock = c }
}

// WithMetrics records a call counter (labeled tool/success) and a latency
// histogram (labeled tool) into provider, in addition to the telemetry
// ring every Call already populates.
func WithMetrics(provider metrics.Provider) Option {
	return func(e *Executor) {
		e.calls = provider.NewCounter(metrics.CounterOpts{CommonOpts: metrics.CommonOpts{
			Namespace: "docsmcp", Subsystem: "tool", Name: "calls_total",
			Help: "Tool calls by name and outcome.", Labels: []string{"tool", "success"},
		}})
		e.latency = provider.NewHistogram(metrics.HistogramOpts{
			CommonOpts: metrics.CommonOpts{
				Namespace: "docsmcp", Subsystem: "tool", Name: "call_latency_seconds",
				Help: "Tool call latency in seconds.", Labels: []string{"tool"},
			},
			Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 5},
		})
	}
}

func NewExecutor(registry *Registry, st *state.State, opts ...Option) *Executor {
	e := &Executor{registry: registry, state: st, clock: clockutil.Real}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Call invokes the named tool, recording a telemetry entry capturing
// start time, latency, success, and (on success) response metadata or
// (on failure) the error string (spec §4.8).
func (e *Executor) Call(ctx context.Context, name string, args []byte) (Response, error) {
	h, ok := e.registry.Lookup(name)
	if !ok {
		return Response{}, docsmcperr.New(docsmcperr.UnknownTool, name, fmt.Errorf("unknown tool: %s", name))
	}
	start := e.clock.Now()
	resp, err := h(ctx, args)
	latency := e.clock.Now().Sub(start)

	if e.calls != nil {
		e.calls.Inc(1, name, fmt.Sprintf("%t", err == nil))
	}
	if e.latency != nil {
		e.latency.Observe(latency.Seconds(), name)
	}

	if !e.disableTelemetry && e.state != nil {
		entry := models.TelemetryEntry{
			Tool:      name,
			Timestamp: start,
			LatencyMS: latency.Milliseconds(),
			Success:   err == nil,
		}
		if err != nil {
			entry.Error = err.Error()
		} else {
			entry.Metadata = resp.Metadata
		}
		e.state.RecordTelemetry(entry)
	}
	return resp, err
}
