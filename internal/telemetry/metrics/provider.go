// Package metrics defines a small Provider abstraction over counters,
// gauges and histograms, with prometheus and otel backends plus a noop
// backend. The only instruments created in this repository are the tool
// executor's call counter and call-latency histogram (tool.WithMetrics);
// cache hit rate and HTTP fetch latency are not recorded here. Mirrors
// engine/telemetry/metrics's Provider/CounterOpts/GaugeOpts/HistogramOpts
// shape. Metrics stay process-local: spec.md scopes telemetry export out,
// so no exporter is wired to either backend.
package metrics

// CommonOpts names a metric; Namespace+Subsystem+Name form the FQ name.
type CommonOpts struct {
	Namespace string
	Subsystem string
	Name      string
	Help      string
	Labels    []string
}

type CounterOpts struct{ CommonOpts }
type GaugeOpts struct{ CommonOpts }
type HistogramOpts struct {
	CommonOpts
	Buckets []float64
}

// Counter is a monotonically increasing instrument.
type Counter interface {
	Inc(delta float64, labelValues ...string)
}

// Gauge can move in either direction.
type Gauge interface {
	Set(value float64, labelValues ...string)
}

// Histogram observes a distribution of values (e.g. latencies in seconds).
type Histogram interface {
	Observe(value float64, labelValues ...string)
}

// Timer records an elapsed duration into a histogram when Stop is called.
// No Provider method returns one.
type Timer interface {
	Stop(labelValues ...string)
}

// Provider is the backend-agnostic metrics factory every component that
// wants metrics depends on, instead of on prometheus or otel directly.
type Provider interface {
	NewCounter(opts CounterOpts) Counter
	NewGauge(opts GaugeOpts) Gauge
	NewHistogram(opts HistogramOpts) Histogram
}
