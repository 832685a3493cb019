// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "yamdb_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "route", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "yamdb_api_request_duration_seconds",
			Help:    "API request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	RateLimited = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "yamdb_rate_limited_total",
			Help: "Requests rejected by the rate limiter",
		},
		[]string{"scope"},
	)

	// Signup / token exchange
	ConfirmationCodesIssued = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "yamdb_confirmation_codes_total",
			Help: "Confirmation code requests by outcome",
		},
		[]string{"outcome"}, // "created", "rotated", "rejected", "delivery_failed"
	)

	TokenExchanges = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "yamdb_token_exchanges_total",
			Help: "Token exchange attempts by outcome",
		},
		[]string{"outcome"}, // "issued", "unknown_user", "invalid_code"
	)

	// Mail
	MailSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "yamdb_mail_sent_total",
			Help: "Outgoing mail attempts by backend and result",
		},
		[]string{"backend", "result"},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "yamdb_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	// Cache
	TaxonomyCacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "yamdb_taxonomy_cache_hits_total",
			Help: "Category and genre list cache hits",
		},
		[]string{"kind"},
	)

	TaxonomyCacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "yamdb_taxonomy_cache_misses_total",
			Help: "Category and genre list cache misses",
		},
		[]string{"kind"},
	)

	// Bulk import
	ImportRows = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "yamdb_import_rows_total",
			Help: "CSV rows processed by the bulk loader",
		},
		[]string{"file", "result"}, // "imported", "skipped"
	)
)

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, route string, status int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	APIRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

func RecordMail(backend string, err error) {
	result := "success"
	if err != nil {
		result = "failure"
	}
	MailSent.WithLabelValues(backend, result).Inc()
}

func RecordCacheLookup(kind string, hit bool) {
	if hit {
		TaxonomyCacheHits.WithLabelValues(kind).Inc()
		return
	}
	TaxonomyCacheMisses.WithLabelValues(kind).Inc()
}
