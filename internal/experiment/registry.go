package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/bmisim/internal/metrics"
)

type Registry struct {
	metrics map[string]func() Metric
}

func NewRegistry() *Registry {
	r := &Registry{
		metrics: make(map[string]func() Metric),
	}

	r.metrics["mean"] = func() Metric { return metrics.NewMean() }
	r.metrics["interior_max"] = func() Metric { return metrics.NewInteriorMax() }
	r.metrics["residual"] = func() Metric { return metrics.NewResidual() }
	r.metrics["boundary_drift"] = func() Metric { return metrics.NewBoundaryDrift() }

	return r
}

func (r *Registry) GetMetric(name string) (Metric, error) {
	fn, ok := r.metrics[name]
	if !ok {
		return nil, fmt.Errorf("unknown metric: %s", name)
	}
	return fn(), nil
}

func (r *Registry) ListMetrics() []string {
	names := make([]string, 0, len(r.metrics))
	for name := range r.metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultMetrics returns a fresh instance of every registered metric.
func (r *Registry) DefaultMetrics() []Metric {
	out := make([]Metric, 0, len(r.metrics))
	for _, name := range r.ListMetrics() {
		out = append(out, r.metrics[name]())
	}
	return out
}
