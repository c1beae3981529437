package metrics

// NewNoopProvider returns a Provider whose instruments discard every
// observation, selected by DOCSMCP_METRICS_BACKEND=noop.
func NewNoopProvider() Provider { return noopProvider{} }

type noopProvider struct{}

func (noopProvider) NewCounter(CounterOpts) Counter     { return noopInstrument{} }
func (noopProvider) NewGauge(GaugeOpts) Gauge           { return noopInstrument{} }
func (noopProvider) NewHistogram(HistogramOpts) Histogram { return noopInstrument{} }

type noopInstrument struct{}

func (noopInstrument) Inc(float64, ...string)     {}
func (noopInstrument) Set(float64, ...string)     {}
func (noopInstrument) Observe(float64, ...string) {}
