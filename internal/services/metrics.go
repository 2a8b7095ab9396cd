package services

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/temcen/storefront/internal/search"
	"github.com/temcen/storefront/pkg/models"
)

// Metrics are the storefront's Prometheus collectors.
type Metrics struct {
	transitions   *prometheus.CounterVec
	interactions  *prometheus.CounterVec
	searches      *prometheus.CounterVec
	searchLatency *prometheus.HistogramVec
	sessions      prometheus.Counter
}

func NewMetrics(registerer prometheus.Registerer, logger *logrus.Logger) *Metrics {
	m := &Metrics{
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "storefront_transitions_total",
			Help: "Session actions by action and outcome",
		}, []string{"action", "outcome"}),
		interactions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "storefront_interactions_total",
			Help: "Interaction recording attempts by type and result",
		}, []string{"interaction_type", "result"}),
		searches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "storefront_searches_total",
			Help: "Search and browse requests by source and result",
		}, []string{"source", "result"}),
		searchLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "storefront_search_duration_seconds",
			Help:    "Search and browse latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"source"}),
		sessions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "storefront_sessions_created_total",
			Help: "Sessions started",
		}),
	}

	for _, collector := range []prometheus.Collector{m.transitions, m.interactions, m.searches, m.searchLatency, m.sessions} {
		if err := registerer.Register(collector); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
				logger.WithError(err).Warn("Failed to register storefront metric")
			}
		}
	}

	return m
}

func (m *Metrics) ObserveTransition(action string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "rejected"
	}
	m.transitions.WithLabelValues(action, outcome).Inc()
}

func (m *Metrics) ObserveInteraction(interactionType models.InteractionType, err error) {
	result := "recorded"
	if err != nil {
		result = "failed"
	}
	m.interactions.WithLabelValues(string(interactionType), result).Inc()
}

func (m *Metrics) ObserveSearch(source search.Source, started time.Time, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.searches.WithLabelValues(string(source), result).Inc()
	m.searchLatency.WithLabelValues(string(source)).Observe(time.Since(started).Seconds())
}

func (m *Metrics) ObserveSessionCreated() {
	m.sessions.Inc()
}
