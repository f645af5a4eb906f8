// Package metrics exposes vscobot's Prometheus collectors and the small HTTP
// server that serves them alongside a health endpoint.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Registry holds every vscobot collector plus the Go runtime and process collectors.
var Registry = prometheus.NewRegistry()

// Outcome labels for MessagesTotal.
const (
	OutcomeSent        = "sent"
	OutcomeInvalidLink = "invalid_link"
	OutcomeFailed      = "failed"
	OutcomeCommand     = "command"
	OutcomeRejected    = "rejected"
)

var (
	MessagesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "vscobot_messages_total",
		Help: "Messages handled, by outcome.",
	}, []string{"outcome"})

	MediaSent = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "vscobot_media_sent_total",
		Help: "Media replies delivered, by kind.",
	}, []string{"kind"})

	Failures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "vscobot_failures_total",
		Help: "Handling failures, by error kind.",
	}, []string{"kind"})

	ResolveRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "vscobot_resolve_requests_total",
		Help: "Calls to the media resolver service, by result.",
	}, []string{"result"})

	ResolveDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "vscobot_resolve_duration_seconds",
		Help:    "Latency of media resolver calls in seconds.",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
	})

	UpdateDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "vscobot_update_duration_seconds",
		Help:    "Time spent handling one Telegram update in seconds.",
		Buckets: []float64{0.05, 0.1, 0.5, 1, 2, 5, 10, 30},
	})

	InFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "vscobot_updates_in_flight",
		Help: "Updates currently being handled.",
	})
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		MessagesTotal,
		MediaSent,
		Failures,
		ResolveRequests,
		ResolveDuration,
		UpdateDuration,
		InFlight,
	)
}
