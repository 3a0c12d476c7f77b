package client

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for catalog client operations.
var (
	bggRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bgg_requests_total",
		Help: "Total BGG requests by endpoint and status",
	}, []string{"endpoint", "status"})

	bggRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "bgg_request_duration_seconds",
		Help:    "BGG request duration in seconds by endpoint, excluding pacer wait",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30},
	}, []string{"endpoint"})

	bggErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bgg_errors_total",
		Help: "Total BGG errors by kind",
	}, []string{"kind"})

	bggQueuedResponsesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bgg_queued_responses_total",
		Help: "Queued-message envelopes received by endpoint",
	}, []string{"endpoint"})

	bggQueuedRetryExhaustedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bgg_queued_retry_exhausted_total",
		Help: "Collection requests still queued after the single retry",
	})

	bggCircuitBreakerState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "bgg_circuit_breaker_state",
		Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
	}, []string{"name"})

	bggCircuitBreakerTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bgg_circuit_breaker_transitions_total",
		Help: "Circuit breaker state transitions",
	}, []string{"name", "from", "to"})
)
