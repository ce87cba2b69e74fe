package metrics

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"
)

// ErrLabelCountMismatch is returned when the number of label values does not
// match the metric's declared label names.
var ErrLabelCountMismatch = errors.New("label count mismatch")

// Sample is a single metric observation for exposition.
type Sample struct {
	Name   string
	Labels map[string]string
	Value  float64
}

// Metric is anything the registry can collect.
type Metric interface {
	Name() string
	Help() string
	Type() string
	Collect() []Sample
}

// Registry holds metrics and serves the text exposition endpoint.
type Registry struct {
	mu      sync.Mutex
	metrics []Metric
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// NewCounter creates and registers a counter.
func (r *Registry) NewCounter(name, help string, labelNames ...string) *Counter {
	c := &Counter{labeledMetric{name: name, help: help, labelNames: labelNames, values: make(map[string]*metricValue)}}
	r.register(c)
	return c
}

// NewGauge creates and registers a gauge.
func (r *Registry) NewGauge(name, help string, labelNames ...string) *Gauge {
	g := &Gauge{labeledMetric{name: name, help: help, labelNames: labelNames, values: make(map[string]*metricValue)}}
	r.register(g)
	return g
}

func (r *Registry) register(m Metric) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.metrics = append(r.metrics, m)
}

// Handler returns an http.Handler exposing all metrics in the Prometheus
// text format.
func (r *Registry) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
		r.mu.Lock()
		metrics := make([]Metric, len(r.metrics))
		copy(metrics, r.metrics)
		r.mu.Unlock()

		var b strings.Builder
		for _, m := range metrics {
			fmt.Fprintf(&b, "# HELP %s %s\n", m.Name(), m.Help())
			fmt.Fprintf(&b, "# TYPE %s %s\n", m.Name(), m.Type())
			for _, s := range m.Collect() {
				b.WriteString(s.Name)
				b.WriteString(formatLabels(s.Labels))
				fmt.Fprintf(&b, " %g\n", s.Value)
			}
		}
		_, _ = w.Write([]byte(b.String()))
	})
}

func formatLabels(labels map[string]string) string {
	if len(labels) == 0 {
		return ""
	}
	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, fmt.Sprintf("%s=%q", k, labels[k]))
	}
	return "{" + strings.Join(pairs, ",") + "}"
}

// metricValue is one label combination's value.
type metricValue struct {
	labels map[string]string
	mu     sync.Mutex
	value  float64
}

func (v *metricValue) add(delta float64) {
	v.mu.Lock()
	v.value += delta
	v.mu.Unlock()
}

func (v *metricValue) set(val float64) {
	v.mu.Lock()
	v.value = val
	v.mu.Unlock()
}

func (v *metricValue) load() float64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.value
}

// labeledMetric holds shared state for counters and gauges.
type labeledMetric struct {
	name       string
	help       string
	labelNames []string
	mu         sync.RWMutex
	values     map[string]*metricValue
}

func (m *labeledMetric) value(labelValues []string) (*metricValue, error) {
	if len(labelValues) != len(m.labelNames) {
		return nil, fmt.Errorf("%w: %s expected %d labels, got %d",
			ErrLabelCountMismatch, m.name, len(m.labelNames), len(labelValues))
	}

	key := strings.Join(labelValues, "\x00")
	m.mu.RLock()
	v, ok := m.values[key]
	m.mu.RUnlock()
	if ok {
		return v, nil
	}

	labels := make(map[string]string, len(m.labelNames))
	for i, name := range m.labelNames {
		labels[name] = labelValues[i]
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	// Double-check after acquiring the write lock.
	if v, ok = m.values[key]; !ok {
		v = &metricValue{labels: labels}
		m.values[key] = v
	}
	return v, nil
}

func (m *labeledMetric) collect(name string) []Sample {
	m.mu.RLock()
	defer m.mu.RUnlock()

	samples := make([]Sample, 0, len(m.values))
	for _, v := range m.values {
		samples = append(samples, Sample{Name: name, Labels: v.labels, Value: v.load()})
	}
	return samples
}

// Counter is a monotonically increasing metric.
type Counter struct {
	labeledMetric
}

// Name returns the metric name.
func (c *Counter) Name() string { return c.name }

// Help returns the help text.
func (c *Counter) Help() string { return c.help }

// Type returns the metric type.
func (c *Counter) Type() string { return "counter" }

// Inc increments the counter by 1 for the given label values.
// Mismatched label counts are reported as an error.
func (c *Counter) Inc(labelValues ...string) error {
	v, err := c.value(labelValues)
	if err != nil {
		return err
	}
	v.add(1)
	return nil
}

// Collect returns all samples.
func (c *Counter) Collect() []Sample { return c.collect(c.name) }

// Gauge is a metric that can go up and down.
type Gauge struct {
	labeledMetric
}

// Name returns the metric name.
func (g *Gauge) Name() string { return g.name }

// Help returns the help text.
func (g *Gauge) Help() string { return g.help }

// Type returns the metric type.
func (g *Gauge) Type() string { return "gauge" }

// Set sets the gauge for the given label values.
func (g *Gauge) Set(val float64, labelValues ...string) error {
	v, err := g.value(labelValues)
	if err != nil {
		return err
	}
	v.set(val)
	return nil
}

// Collect returns all samples.
func (g *Gauge) Collect() []Sample { return g.collect(g.name) }
