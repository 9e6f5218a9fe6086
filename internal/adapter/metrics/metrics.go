package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "yapli"

// Metrics holds all Prometheus metrics for the chat service.
type Metrics struct {
	NameChecks      *prometheus.CounterVec
	RoomsCreated    *prometheus.CounterVec
	MessagesPosted  prometheus.Counter
	AuthAttempts    *prometheus.CounterVec
	RateLimited     prometheus.Counter
	SSEClients      prometheus.Gauge
	RequestDuration *prometheus.HistogramVec
}

// New initializes the metrics and registers them with reg. Tests pass a fresh
// prometheus.NewRegistry(); the server passes prometheus.DefaultRegisterer.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		NameChecks: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "rooms",
			Name:      "name_checks_total",
			Help:      "Total number of room-name availability checks by outcome.",
		}, []string{"outcome"}), // outcome: available, unavailable, invalid, unauthenticated, owner_not_found, error
		RoomsCreated: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "rooms",
			Name:      "created_total",
			Help:      "Total number of room creation attempts by outcome.",
		}, []string{"outcome"}), // outcome: created, name_taken, invalid, error
		MessagesPosted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "messages",
			Name:      "posted_total",
			Help:      "Total number of messages posted.",
		}),
		AuthAttempts: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "auth",
			Name:      "attempts_total",
			Help:      "Total number of register and login attempts by outcome.",
		}, []string{"action", "outcome"}),
		RateLimited: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "rate_limited_total",
			Help:      "Total number of requests rejected by the per-owner rate limiter.",
		}),
		SSEClients: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "stream",
			Name:      "clients",
			Help:      "Number of connected room event-stream clients.",
		}),
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by route and status.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}
}
