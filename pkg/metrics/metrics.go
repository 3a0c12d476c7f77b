// Package metrics exposes the Prometheus registry used by bggstats.
// Collectors are declared with promauto next to the code they measure
// (client, ratelimit, collection); this package serves them and keeps the
// catalogue below.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry is the registerer all promauto collectors use.
var Registry = prometheus.DefaultRegisterer

// Gatherer is the gatherer backing Handler.
var Gatherer = prometheus.DefaultGatherer

// Handler returns the /metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.HandlerFor(Gatherer, promhttp.HandlerOpts{})
}

// Catalogue of collector names, in the order they are documented below.
var Catalogue = []string{
	"bgg_requests_total",
	"bgg_request_duration_seconds",
	"bgg_errors_total",
	"bgg_queued_responses_total",
	"bgg_queued_retry_exhausted_total",
	"bgg_circuit_breaker_state",
	"bgg_circuit_breaker_transitions_total",
	"bgg_pacer_wait_seconds",
	"bgg_pacer_acquire_total",
	"bgg_batches_total",
	"bgg_items_folded_total",
	"bgg_fetch_duration_seconds",
}

// Client (pkg/client):
//   - bgg_requests_total{endpoint, status}: requests by endpoint and HTTP
//     status, plus "network_error" and "breaker_open"
//   - bgg_request_duration_seconds{endpoint}: round trip, excluding pacer wait
//   - bgg_errors_total{kind}: transport_failure, protocol_violation
//   - bgg_queued_responses_total{endpoint}: queued-message envelopes
//   - bgg_queued_retry_exhausted_total: listings still queued after the retry
//   - bgg_circuit_breaker_state{name}: 0 closed, 1 half-open, 2 open
//   - bgg_circuit_breaker_transitions_total{name, from, to}
//
// Pacer (pkg/ratelimit):
//   - bgg_pacer_wait_seconds: time to obtain the outbound slot
//   - bgg_pacer_acquire_total{result}: acquired, cancelled, error
//
// Collection (pkg/collection):
//   - bgg_batches_total: detail batches folded
//   - bgg_items_folded_total: detail records folded
//   - bgg_fetch_duration_seconds{outcome}: full fetch by outcome
//
// Example queries:
//
//	# queued listings that came back empty
//	increase(bgg_queued_retry_exhausted_total[1h])
//
//	# P95 per-request latency
//	histogram_quantile(0.95, rate(bgg_request_duration_seconds_bucket[5m]))
//
//	# average pacer wait
//	rate(bgg_pacer_wait_seconds_sum[5m]) / rate(bgg_pacer_wait_seconds_count[5m])
