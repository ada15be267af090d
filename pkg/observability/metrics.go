package observability

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aretw0/stepwise/pkg/domain"
)

// Metrics holds the pipeline collectors and the registry they are bound to.
type Metrics struct {
	Registry     *prometheus.Registry
	Runs         *prometheus.CounterVec
	RunDuration  prometheus.Histogram
	Steps        *prometheus.CounterVec
	StepDuration prometheus.Histogram
}

// NewMetrics creates the collectors and registers them on a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		Runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stepwise_runs_total",
				Help: "Total number of pipeline runs by result",
			},
			[]string{"result"},
		),
		RunDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "stepwise_run_duration_seconds",
				Help:    "Duration of pipeline runs",
				Buckets: prometheus.ExponentialBuckets(0.0005, 4, 8),
			},
		),
		Steps: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stepwise_steps_total",
				Help: "Total number of executed steps by result",
			},
			[]string{"result"},
		),
		StepDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "stepwise_step_duration_seconds",
				Help:    "Duration of step evaluations",
				Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
			},
		),
	}
	m.Registry.MustRegister(m.Runs, m.RunDuration, m.Steps, m.StepDuration)
	return m
}

// Hooks returns lifecycle hooks feeding the collectors.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnRunComplete: func(_ context.Context, e *domain.RunEvent) {
			result := "ok"
			if e.Failed {
				result = "error"
			}
			m.Runs.WithLabelValues(result).Inc()
			m.RunDuration.Observe(e.Duration.Seconds())
		},
		OnStepLeave: func(_ context.Context, e *domain.StepEvent) {
			m.Steps.WithLabelValues("ok").Inc()
			m.StepDuration.Observe(e.Duration.Seconds())
		},
		OnStepError: func(_ context.Context, e *domain.StepEvent) {
			m.Steps.WithLabelValues("error").Inc()
			m.StepDuration.Observe(e.Duration.Seconds())
		},
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}
