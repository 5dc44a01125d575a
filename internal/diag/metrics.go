package diag

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts the work done by assembly and the frequency solvers. A nil
// *Metrics records nothing.
type Metrics struct {
	registry *prometheus.Registry

	assemblies   prometheus.Counter
	determinants prometheus.Counter
	iterations   *prometheus.CounterVec
	roots        *prometheus.CounterVec
	searchSteps  prometheus.Histogram
}

// NewMetrics registers the counters on a private registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		assemblies: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "branchwave",
			Subsystem: "frame",
			Name:      "assemblies_total",
			Help:      "Equation matrices assembled.",
		}),
		determinants: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "branchwave",
			Subsystem: "frame",
			Name:      "determinants_total",
			Help:      "Determinants evaluated.",
		}),
		iterations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "branchwave",
			Subsystem: "solver",
			Name:      "iterations_total",
			Help:      "Root search iterations.",
		}, []string{"method"}),
		roots: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "branchwave",
			Subsystem: "solver",
			Name:      "searches_total",
			Help:      "Root searches by outcome.",
		}, []string{"method", "outcome"}),
		searchSteps: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "branchwave",
			Subsystem: "solver",
			Name:      "search_iterations",
			Help:      "Iterations needed per root search.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 8),
		}),
	}
	m.registry.MustRegister(m.assemblies, m.determinants, m.iterations, m.roots, m.searchSteps)
	return m
}

func (m *Metrics) Assembled() {
	if m != nil {
		m.assemblies.Inc()
	}
}

func (m *Metrics) Determinant() {
	if m != nil {
		m.determinants.Inc()
	}
}

func (m *Metrics) Iteration(method string) {
	if m != nil {
		m.iterations.WithLabelValues(method).Inc()
	}
}

// Search records one finished root search.
func (m *Metrics) Search(method, outcome string, iterations int) {
	if m == nil {
		return
	}
	m.roots.WithLabelValues(method, outcome).Inc()
	m.searchSteps.Observe(float64(iterations))
}

// Gatherer exposes the registry.
func (m *Metrics) Gatherer() prometheus.Gatherer {
	return m.registry
}

// WriteFile writes the current values in the text exposition format.
func (m *Metrics) WriteFile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}
