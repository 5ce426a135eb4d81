package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// MatchRequests records match selections by resulting tier (ideal|near|none).
	MatchRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "carelink_match_requests_total",
			Help: "Total number of match selections",
		},
		[]string{"tier"},
	)

	// AdmissionPasses counts completed admission passes.
	AdmissionPasses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "carelink_admission_passes_total",
			Help: "Total number of admission passes executed",
		},
	)

	// InvitationsSent counts waitlist promotions to the invited state.
	InvitationsSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "carelink_invitations_sent_total",
			Help: "Total number of waitlist invitations issued",
		},
	)

	// InvitationDeliveryFailures counts invitation emails that could not be delivered.
	InvitationDeliveryFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "carelink_invitation_delivery_failures_total",
			Help: "Total number of invitation emails that failed to send",
		},
	)

	// InvitationsExpired counts invited entries reclaimed by the expiry sweep.
	InvitationsExpired = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "carelink_invitations_expired_total",
			Help: "Total number of invitations expired by the sweep",
		},
	)

	// APILatency measures HTTP request latencies.
	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "carelink_api_latency_seconds",
			Help:    "API endpoint latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
