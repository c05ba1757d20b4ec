package compiler

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics exposes watch-mode compile counters on a private registry so
// the endpoint serves only praxis metrics.
type Metrics struct {
	registry *prometheus.Registry

	compileRuns     prometheus.Counter
	compileErrors   prometheus.Counter
	rolesCompiled   prometheus.Counter
	compileDuration prometheus.Gauge
}

// NewMetrics creates the watch-mode metric set.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		compileRuns: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "praxis_compile_runs_total",
			Help: "Compile runs executed by watch mode.",
		}),
		compileErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "praxis_compile_errors_total",
			Help: "Compile runs that failed outright.",
		}),
		rolesCompiled: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "praxis_roles_compiled_total",
			Help: "Roles compiled successfully across all runs.",
		}),
		compileDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "praxis_compile_duration_seconds",
			Help: "Duration of the most recent compile run.",
		}),
	}

	m.registry.MustRegister(
		m.compileRuns,
		m.compileErrors,
		m.rolesCompiled,
		m.compileDuration,
	)

	return m
}

// Handler returns the scrape endpoint handler.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// observeRun records the outcome of one compile run.
func (m *Metrics) observeRun(compiled int, err error, elapsed time.Duration) {
	m.compileRuns.Inc()
	if err != nil {
		m.compileErrors.Inc()
		return
	}
	m.rolesCompiled.Add(float64(compiled))
	m.compileDuration.Set(elapsed.Seconds())
}
