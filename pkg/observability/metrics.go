package observability

import (
	"context"

	"github.com/aretw0/cardflow/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors fed by plan execution.
type Metrics struct {
	Runs         *prometheus.CounterVec
	RunDuration  prometheus.Histogram
	Steps        *prometheus.CounterVec
	StepErrors   *prometheus.CounterVec
	StepDuration *prometheus.HistogramVec
	Compilations *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg.
// A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cardflow_runs_total",
				Help: "Total number of plan executions by outcome",
			},
			[]string{"outcome"},
		),
		RunDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "cardflow_run_duration_seconds",
				Help:    "Duration of plan executions",
				Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10),
			},
		),
		Steps: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cardflow_steps_total",
				Help: "Total number of card process calls",
			},
			[]string{"card_id"},
		),
		StepErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cardflow_step_errors_total",
				Help: "Total number of advisory errors reported by cards",
			},
			[]string{"card_id"},
		),
		StepDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "cardflow_step_duration_seconds",
				Help:    "Duration of card process calls",
				Buckets: prometheus.ExponentialBuckets(0.00001, 4, 10),
			},
			[]string{"card_id"},
		),
		Compilations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cardflow_compilations_total",
				Help: "Total number of graph compilations by outcome",
			},
			[]string{"outcome"},
		),
	}
	if reg != nil {
		reg.MustRegister(m.Runs, m.RunDuration, m.Steps, m.StepErrors, m.StepDuration, m.Compilations)
	}
	return m
}

// Hooks returns lifecycle hooks recording into m.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnRunEnd: func(_ context.Context, e *domain.RunEvent) {
			outcome := "ok"
			if e.Err != nil {
				outcome = "error"
			}
			m.Runs.WithLabelValues(outcome).Inc()
			m.RunDuration.Observe(e.Duration.Seconds())
		},
		OnStepEnd: func(_ context.Context, e *domain.StepEvent) {
			m.Steps.WithLabelValues(e.CardID).Inc()
			m.StepDuration.WithLabelValues(e.CardID).Observe(e.Duration.Seconds())
			if n := len(e.Errors); n > 0 {
				m.StepErrors.WithLabelValues(e.CardID).Add(float64(n))
			}
		},
	}
}

// ObserveCompile records the outcome of a compilation. ok is false for cyclic graphs.
func (m *Metrics) ObserveCompile(ok bool) {
	if ok {
		m.Compilations.WithLabelValues("ok").Inc()
		return
	}
	m.Compilations.WithLabelValues("cycle").Inc()
}
