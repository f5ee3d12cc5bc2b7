// Package metrics holds the Prometheus collectors shared by the moderation
// service. Collectors are registered on a private registry so tests can build
// as many instances as they need.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry *prometheus.Registry

	Votes          *prometheus.CounterVec
	Flags          *prometheus.CounterVec
	FlagTransition *prometheus.CounterVec
	MessageActions *prometheus.CounterVec
	StoreConflicts *prometheus.CounterVec
}

func New(namespace string) *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		Votes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "votes_total",
			Help:      "Vote, like and dislike toggles applied, by target type and kind.",
		}, []string{"target", "kind"}),
		Flags: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "flags_created_total",
			Help:      "Moderation flags created, by target type.",
		}, []string{"target"}),
		FlagTransition: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "flag_transitions_total",
			Help:      "Flag status updates, by resulting status.",
		}, []string{"status"}),
		MessageActions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "message_actions_total",
			Help:      "Chat message moderation actions, by action.",
		}, []string{"action"}),
		StoreConflicts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_update_conflicts_total",
			Help:      "Optimistic update retries caused by concurrent writers, by collection key.",
		}, []string{"key"}),
	}
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.Votes, m.Flags, m.FlagTransition, m.MessageActions, m.StoreConflicts,
	)
	return m
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
