// Package metrics exposes triage lifecycle events as Prometheus collectors.
package metrics

import (
	"context"
	"net/http"

	"github.com/aretw0/triage/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "triage"

// Metrics groups the collectors fed by LifecycleHooks.
type Metrics struct {
	registry *prometheus.Registry

	NodeVisits      *prometheus.CounterVec
	Outcomes        *prometheus.CounterVec
	OutcomeDepth    prometheus.Histogram
	Classifications *prometheus.CounterVec
}

// New creates the collectors on a private registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		NodeVisits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "node_visits_total",
				Help:      "Total number of triage node visits",
			},
			[]string{"node_id"},
		),
		Outcomes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "outcomes_total",
				Help:      "Finished guided sessions by outcome kind and specialization",
			},
			[]string{"kind", "specialization"},
		),
		OutcomeDepth: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "outcome_depth",
				Help:      "Number of answers given before a guided session finished",
				Buckets:   prometheus.LinearBuckets(0, 1, 8),
			},
		),
		Classifications: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "classifications_total",
				Help:      "Free-text classifications by matched rule and specialization",
			},
			[]string{"rule_id", "specialization"},
		),
	}
	m.registry.MustRegister(m.NodeVisits, m.Outcomes, m.OutcomeDepth, m.Classifications)
	return m
}

// Hooks returns lifecycle hooks that record into m.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnNodeEnter: func(_ context.Context, e *domain.NodeEvent) {
			m.NodeVisits.WithLabelValues(e.NodeID).Inc()
		},
		OnOutcome: func(_ context.Context, e *domain.OutcomeEvent) {
			m.Outcomes.WithLabelValues(string(e.Kind), label(e.Recommendation)).Inc()
			m.OutcomeDepth.Observe(float64(e.Depth))
		},
		OnClassify: func(_ context.Context, e *domain.ClassifyEvent) {
			rule := e.RuleID
			if rule == "" {
				rule = "fallback"
			}
			m.Classifications.WithLabelValues(rule, label(e.Recommendation)).Inc()
		},
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry exposes the underlying registry for extra collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func label(rec domain.Recommendation) string {
	if !rec.HasSpecialization() {
		return "none"
	}
	return string(rec.Specialization)
}
