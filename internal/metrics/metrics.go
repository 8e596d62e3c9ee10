package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Pipeline counters. Registered on the default registry; the CLI exposes
// them via promhttp when -metrics-addr is set.
var (
	QueriesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "safepulse_queries_total",
		Help: "News search queries issued.",
	})

	QueryFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "safepulse_query_failures_total",
		Help: "News search queries that failed, by kind.",
	}, []string{"kind"})

	GeocodeCallsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "safepulse_geocode_calls_total",
		Help: "Calls made to the external geocoding service.",
	})

	GeocodeMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "safepulse_geocode_misses_total",
		Help: "Geocoding calls that produced no coordinate.",
	})

	IncidentsMergedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "safepulse_incidents_merged_total",
		Help: "Incident records accepted into the store.",
	})

	IncidentsEvictedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "safepulse_incidents_evicted_total",
		Help: "Incident records evicted by the capacity bound.",
	})
)
