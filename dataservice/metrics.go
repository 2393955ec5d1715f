package dataservice

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Query labels.
const (
	queryList = "list"
	queryRow  = "row"
)

// Metrics counts how requests move through the fallback chain. A nil
// *Metrics records nothing.
type Metrics struct {
	CacheReads    *prometheus.CounterVec
	RemoteFetches *prometheus.CounterVec
	Fallbacks     *prometheus.CounterVec
	WriteBacks    *prometheus.CounterVec
}

// NewMetrics registers the collectors on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		CacheReads: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "rowcache",
				Subsystem: "cache",
				Name:      "reads_total",
				Help:      "Cache reads by query and outcome",
			},
			[]string{"query", "outcome"},
		),
		RemoteFetches: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "rowcache",
				Subsystem: "remote",
				Name:      "fetches_total",
				Help:      "Remote fetches by query and outcome",
			},
			[]string{"query", "outcome"},
		),
		Fallbacks: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "rowcache",
				Name:      "fallbacks_total",
				Help:      "Fallbacks taken by query and destination",
			},
			[]string{"query", "to"},
		),
		WriteBacks: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "rowcache",
				Name:      "writebacks_total",
				Help:      "Asynchronous cache write-backs by query and outcome",
			},
			[]string{"query", "outcome"},
		),
	}
}

func (m *Metrics) cacheRead(query, outcome string) {
	if m != nil {
		m.CacheReads.WithLabelValues(query, outcome).Inc()
	}
}

func (m *Metrics) remoteFetch(query, outcome string) {
	if m != nil {
		m.RemoteFetches.WithLabelValues(query, outcome).Inc()
	}
}

func (m *Metrics) fallback(query, to string) {
	if m != nil {
		m.Fallbacks.WithLabelValues(query, to).Inc()
	}
}

func (m *Metrics) writeBack(query, outcome string) {
	if m != nil {
		m.WriteBacks.WithLabelValues(query, outcome).Inc()
	}
}
