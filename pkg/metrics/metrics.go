// Package metrics exposes Prometheus instrumentation for the engine.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP request latency in seconds.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"method", "path", "status"},
	)

	// Proposals submitted, by outcome (created, rejected_validation, rejected_duplicate).
	ProposalsSubmitted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "proposals_submitted_total",
			Help: "Total number of proposal submissions",
		},
		[]string{"outcome"},
	)

	// Proposal decisions, by kind (accepted, rejected, withdrawn, cascade_rejected).
	ProposalsDecided = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "proposals_decided_total",
			Help: "Total number of proposal decisions",
		},
		[]string{"decision"},
	)

	// Contracts closed, by outcome (completed, cancelled).
	ContractsClosed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "contracts_closed_total",
			Help: "Total number of contracts reaching a terminal state",
		},
		[]string{"outcome"},
	)

	// Accept-cascade races lost to a concurrent transition.
	AcceptConflicts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "proposal_accept_conflicts_total",
			Help: "Total number of accept operations that lost a concurrency race",
		},
	)
)

// RecordHTTPRequestDuration records one served request.
func RecordHTTPRequestDuration(method, path, status string, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// IncrementProposalSubmitted counts a submission outcome.
func IncrementProposalSubmitted(outcome string) {
	ProposalsSubmitted.WithLabelValues(outcome).Inc()
}

// IncrementProposalDecided counts a proposal decision.
func IncrementProposalDecided(decision string) {
	ProposalsDecided.WithLabelValues(decision).Inc()
}

// IncrementContractClosed counts a contract reaching a terminal state.
func IncrementContractClosed(outcome string) {
	ContractsClosed.WithLabelValues(outcome).Inc()
}
