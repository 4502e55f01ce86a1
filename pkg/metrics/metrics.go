// Package metrics exposes switchboard's Prometheus instrumentation.
//
// Metrics follow the naming convention switchboard_<name>.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds every counter/gauge switchboard records.
type Metrics struct {
	RequestsForwardedTotal *prometheus.CounterVec
	RequestsFailedTotal    *prometheus.CounterVec
	ConfigReloadsTotal     prometheus.Counter
	ActiveRequests         prometheus.Gauge
	DispatchDuration       *prometheus.HistogramVec
}

// New registers and returns switchboard's metrics against reg. Pass
// prometheus.NewRegistry() in tests to avoid collisions with the global
// default registry.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		RequestsForwardedTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "switchboard",
			Name:      "requests_forwarded_total",
			Help:      "Requests successfully forwarded to a primary target.",
		}, []string{"route"}),
		RequestsFailedTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "switchboard",
			Name:      "requests_failed_total",
			Help:      "Requests whose primary dispatch ended in a failure state (transport error, timeout, or body read error).",
		}, []string{"route", "reason"}),
		ConfigReloadsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "switchboard",
			Name:      "config_reloads_total",
			Help:      "Number of times the live config cell has been swapped.",
		}),
		ActiveRequests: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "switchboard",
			Name:      "active_requests",
			Help:      "In-flight proxied requests.",
		}),
		DispatchDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "switchboard",
			Name:      "dispatch_duration_seconds",
			Help:      "Latency of a single target dispatch.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "outcome"}),
	}
}
