package observability

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels for RecordRequest.
const (
	OutcomeOK             = "ok"
	OutcomeNotFound       = "not_found"
	OutcomeServerError    = "server_error"
	OutcomeTransportError = "transport_error"
)

var (
	registerOnce sync.Once

	requests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sundial",
			Subsystem: "client",
			Name:      "requests_total",
			Help:      "Total protocol requests by operation and outcome.",
		},
		[]string{"op", "outcome"},
	)
	requestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "sundial",
			Subsystem: "client",
			Name:      "request_duration_seconds",
			Help:      "Round-trip duration per protocol request in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"op"},
	)
	listKeysChunks = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "sundial",
			Subsystem: "client",
			Name:      "list_keys_chunks_total",
			Help:      "Key-list chunks received across paginated listings.",
		},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(requests, requestDuration, listKeysChunks)
	})
}

// RecordRequest counts one request round trip. The outcome reflects
// what came back on the wire; a get that the caller sees as an empty
// success still records not_found here.
func RecordRequest(op, outcome string, duration time.Duration) {
	RegisterMetrics()
	requests.WithLabelValues(op, outcome).Inc()
	requestDuration.WithLabelValues(op).Observe(duration.Seconds())
}

// RecordListKeysChunk counts one received key-list chunk, final chunks
// included.
func RecordListKeysChunk() {
	RegisterMetrics()
	listKeysChunks.Inc()
}
