package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "realty"

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status_code"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency distribution",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_requests_in_flight",
			Help:      "Current number of HTTP requests being processed",
		},
	)
)

// Quota and query metrics
var (
	QuotaDecisionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quota_decisions_total",
			Help:      "Quota checks by action, outcome (allow, deny, error) and stage (gate, tx)",
		},
		[]string{"action", "outcome", "stage"},
	)

	ListingQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "listing_query_duration_seconds",
			Help:      "Listing query latency by scope",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"scope"},
	)

	ListingQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "listing_query_errors_total",
			Help:      "Listing queries that failed in the store",
		},
		[]string{"scope"},
	)
)

// Background job metrics
var (
	JobsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "jobs_total",
			Help:      "Total number of background job runs",
		},
		[]string{"type", "status"},
	)

	JobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "job_duration_seconds",
			Help:      "Background job execution time distribution",
			Buckets:   []float64{.01, .05, .1, .5, 1, 5, 10, 30},
		},
		[]string{"type"},
	)

	FeaturedExpiredTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "featured_listings_expired_total",
			Help:      "Featured listings whose featured period ended and were cleared",
		},
	)
)

// Business metrics
var (
	ListingsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "listings_created_total",
			Help:      "Total number of listings created",
		},
	)

	EmailsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "emails_sent_total",
			Help:      "Notification emails by template and status",
		},
		[]string{"template", "status"},
	)
)

// Quota check stages. A gated write is checked once by the route gate and
// again inside its write transaction.
const (
	QuotaStageGate = "gate"
	QuotaStageTx   = "tx"
)

// QuotaDecision records the outcome of one quota check at stage.
func QuotaDecision(action, outcome, stage string) {
	QuotaDecisionsTotal.WithLabelValues(action, outcome, stage).Inc()
}

// ListingQuery records a listing query's latency and, when failed, an error.
func ListingQuery(scope string, duration time.Duration, failed bool) {
	ListingQueryDuration.WithLabelValues(scope).Observe(duration.Seconds())
	if failed {
		ListingQueryErrors.WithLabelValues(scope).Inc()
	}
}

// JobCompleted records a successful job run
func JobCompleted(jobType string, duration time.Duration) {
	JobsTotal.WithLabelValues(jobType, "completed").Inc()
	JobDuration.WithLabelValues(jobType).Observe(duration.Seconds())
}

// JobFailed records a job failure
func JobFailed(jobType string) {
	JobsTotal.WithLabelValues(jobType, "failed").Inc()
}

// EmailSent records a notification delivery attempt
func EmailSent(template string, err error) {
	status := "sent"
	if err != nil {
		status = "failed"
	}
	EmailsSent.WithLabelValues(template, status).Inc()
}
