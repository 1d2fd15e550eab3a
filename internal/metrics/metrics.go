// Package metrics exposes Prometheus collectors for upstream traffic and
// batch outcomes.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels for upstream attempts.
const (
	OutcomeSuccess     = "success"
	OutcomeRateLimited = "rate_limited"
	OutcomeRejected    = "rejected"
	OutcomeNetwork     = "network_error"
)

// Metrics holds the collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	upstreamAttempts *prometheus.CounterVec
	backoffSeconds   prometheus.Histogram
	pollsTotal       *prometheus.CounterVec
	batches          *prometheus.CounterVec
	batchDuration    prometheus.Histogram
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		upstreamAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tokenflex",
			Subsystem: "upstream",
			Name:      "attempts_total",
			Help:      "Upstream request attempts by operation and outcome.",
		}, []string{"operation", "outcome"}),
		backoffSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "tokenflex",
			Subsystem: "upstream",
			Name:      "backoff_seconds",
			Help:      "Time spent waiting after a 429 response.",
			Buckets:   []float64{0.5, 1, 2, 4, 8, 16},
		}),
		pollsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tokenflex",
			Subsystem: "pipeline",
			Name:      "polls_total",
			Help:      "Query status polls by reported status.",
		}, []string{"status"}),
		batches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tokenflex",
			Subsystem: "pipeline",
			Name:      "batches_total",
			Help:      "Completed batch runs by outcome.",
		}, []string{"outcome"}),
		batchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "tokenflex",
			Subsystem: "pipeline",
			Name:      "batch_duration_seconds",
			Help:      "Wall-clock time of a submit and collect cycle.",
			Buckets:   prometheus.ExponentialBuckets(0.5, 2, 10),
		}),
	}

	if reg != nil {
		reg.MustRegister(m.upstreamAttempts, m.backoffSeconds, m.pollsTotal, m.batches, m.batchDuration)
	}
	return m
}

// ObserveAttempt counts one upstream attempt.
func (m *Metrics) ObserveAttempt(operation, outcome string) {
	if m == nil {
		return
	}
	m.upstreamAttempts.WithLabelValues(operation, outcome).Inc()
}

// ObserveBackoff records a rate-limit wait.
func (m *Metrics) ObserveBackoff(d time.Duration) {
	if m == nil {
		return
	}
	m.backoffSeconds.Observe(d.Seconds())
}

// ObservePoll counts one status poll.
func (m *Metrics) ObservePoll(status string) {
	if m == nil {
		return
	}
	m.pollsTotal.WithLabelValues(status).Inc()
}

// ObserveBatch records a finished batch run.
func (m *Metrics) ObserveBatch(outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.batches.WithLabelValues(outcome).Inc()
	m.batchDuration.Observe(elapsed.Seconds())
}
