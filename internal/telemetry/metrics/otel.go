package metrics

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// NewOTelProvider returns a Provider backed by an OTel MeterProvider with
// no exporter registered — metrics stay process-local, since exporting
// telemetry is out of scope (spec.md).
func NewOTelProvider() Provider {
	mp := sdkmetric.NewMeterProvider()
	meter := mp.Meter("docsmcp")
	return &otelProvider{meter: meter, counters: map[string]metric.Float64Counter{}, gauges: map[string]metric.Float64UpDownCounter{}, histograms: map[string]metric.Float64Histogram{}}
}

type otelProvider struct {
	meter metric.Meter

	mu         sync.Mutex
	counters   map[string]metric.Float64Counter
	gauges     map[string]metric.Float64UpDownCounter
	histograms map[string]metric.Float64Histogram
}

func (p *otelProvider) NewCounter(opts CounterOpts) Counter {
	fq, err := buildFQName(opts.CommonOpts)
	if err != nil {
		return noopInstrument{}
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	c, ok := p.counters[fq]
	if !ok {
		c, _ = p.meter.Float64Counter(fq, metric.WithDescription(opts.Help))
		p.counters[fq] = c
	}
	return &otelCounter{c: c, labels: opts.Labels}
}

func (p *otelProvider) NewGauge(opts GaugeOpts) Gauge {
	fq, err := buildFQName(opts.CommonOpts)
	if err != nil {
		return noopInstrument{}
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	g, ok := p.gauges[fq]
	if !ok {
		g, _ = p.meter.Float64UpDownCounter(fq, metric.WithDescription(opts.Help))
		p.gauges[fq] = g
	}
	return &otelGauge{g: g, labels: opts.Labels, last: make(map[string]float64)}
}

func (p *otelProvider) NewHistogram(opts HistogramOpts) Histogram {
	fq, err := buildFQName(opts.CommonOpts)
	if err != nil {
		return noopInstrument{}
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	h, ok := p.histograms[fq]
	if !ok {
		h, _ = p.meter.Float64Histogram(fq, metric.WithDescription(opts.Help))
		p.histograms[fq] = h
	}
	return &otelHistogram{h: h, labels: opts.Labels}
}

func attrsFor(labels, values []string) []attribute.KeyValue {
	n := len(labels)
	if len(values) < n {
		n = len(values)
	}
	out := make([]attribute.KeyValue, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, attribute.String(labels[i], values[i]))
	}
	return out
}

type otelCounter struct {
	c      metric.Float64Counter
	labels []string
}

func (c *otelCounter) Inc(delta float64, labelValues ...string) {
	c.c.Add(context.Background(), delta, metric.WithAttributes(attrsFor(c.labels, labelValues)...))
}

// otelGauge simulates Set semantics via an UpDownCounter delta, since OTel
// metrics has no native gauge-with-Set instrument.
type otelGauge struct {
	g      metric.Float64UpDownCounter
	labels []string
	mu     sync.Mutex
	last   map[string]float64
}

func (g *otelGauge) Set(value float64, labelValues ...string) {
	key := ""
	for _, v := range labelValues {
		key += v + "\x00"
	}
	g.mu.Lock()
	delta := value - g.last[key]
	g.last[key] = value
	g.mu.Unlock()
	g.g.Add(context.Background(), delta, metric.WithAttributes(attrsFor(g.labels, labelValues)...))
}

type otelHistogram struct {
	h      metric.Float64Histogram
	labels []string
}

func (h *otelHistogram) Observe(value float64, labelValues ...string) {
	h.h.Record(context.Background(), value, metric.WithAttributes(attrsFor(h.labels, labelValues)...))
}
