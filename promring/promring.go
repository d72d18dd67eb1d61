// Package promring provides Prometheus instrumentation for hashring.Ring.
package promring

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/cryptlink/hashring"
	"github.com/cryptlink/hashring/hash"
)

// Metrics holds Prometheus metrics fed by ring events.
type Metrics struct {
	registrations *prometheus.CounterVec
	removals      *prometheus.CounterVec
	rebuilds      prometheus.Counter
	overwrites    prometheus.Counter
	entries       prometheus.Gauge
	nodes         prometheus.Gauge
}

// New creates ring metrics and registers them in reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		registrations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hashring_registrations_total",
			Help: "Total number of node registrations",
		}, []string{"result"}),

		removals: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hashring_removals_total",
			Help: "Total number of node removals",
		}, []string{"result"}),

		rebuilds: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "hashring_index_rebuilds_total",
			Help: "Total number of index rebuilds",
		}),

		overwrites: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "hashring_overwrites_total",
			Help: "Total number of ring entries overwritten due to hash collisions",
		}),

		entries: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "hashring_indexed_entries",
			Help: "Number of ring entries, including replicas, at the last index rebuild",
		}),

		nodes: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "hashring_indexed_nodes",
			Help: "Number of unique nodes at the last index rebuild",
		}),
	}

	reg.MustRegister(
		m.registrations,
		m.removals,
		m.rebuilds,
		m.overwrites,
		m.entries,
		m.nodes,
	)

	return m
}

// Trace returns ring trace which updates m.
// Use it with hashring.WithTrace().
func (m *Metrics) Trace() hashring.Trace {
	return hashring.Trace{
		OnRegister: func(hash.Hash, int) func(error) {
			return func(err error) {
				m.registrations.WithLabelValues(result(err)).Inc()
			}
		},
		OnRemove: func(hash.Hash) func(error) {
			return func(err error) {
				m.removals.WithLabelValues(result(err)).Inc()
			}
		},
		OnRebuild: func(info hashring.RebuildInfo) {
			m.rebuilds.Inc()
			m.entries.Set(float64(info.Entries))
			m.nodes.Set(float64(info.Nodes))
		},
		OnOverwrite: func(hash.Hash) {
			m.overwrites.Inc()
		},
	}
}

func result(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, hashring.ErrNotFound):
		return "not_found"
	case errors.Is(err, hashring.ErrCorrupted):
		return "corrupted"
	}
	return "invalid"
}
