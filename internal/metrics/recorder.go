// Package metrics counts submissions, status queries and settlement outcomes.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/example/pickup/internal/ports/secondary"
)

// DefaultNamespace prefixes every metric name.
const DefaultNamespace = "pickup"

// Recorder implements secondary.OutcomeRecorder with prometheus counters on
// its own registry.
type Recorder struct {
	registry    *prometheus.Registry
	submissions *prometheus.CounterVec
	queries     *prometheus.CounterVec
	outcomes    *prometheus.CounterVec
}

// NewRecorder creates a Recorder. An empty namespace uses DefaultNamespace.
func NewRecorder(namespace string) *Recorder {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	registry := prometheus.NewRegistry()
	submissions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "submissions_total",
		Help:      "Pickup submit attempts by result.",
	}, []string{"result"})
	queries := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "settlement_queries_total",
		Help:      "Settlement status queries by result.",
	}, []string{"result"})
	outcomes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "settlements_total",
		Help:      "Resolved settlements by outcome. Presumed outcomes are counted apart from confirmed ones.",
	}, []string{"outcome"})
	registry.MustRegister(submissions, queries, outcomes)

	return &Recorder{
		registry:    registry,
		submissions: submissions,
		queries:     queries,
		outcomes:    outcomes,
	}
}

// RecordSubmission counts a submit attempt.
func (r *Recorder) RecordSubmission(result string) {
	r.submissions.WithLabelValues(result).Inc()
}

// RecordPollQuery counts a status query.
func (r *Recorder) RecordPollQuery(result string) {
	r.queries.WithLabelValues(result).Inc()
}

// RecordOutcome counts a resolved settlement.
func (r *Recorder) RecordOutcome(outcome string) {
	r.outcomes.WithLabelValues(outcome).Inc()
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// WriteTextfile writes the current counters in the node-exporter textfile format.
func (r *Recorder) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.registry)
}

// Ensure Recorder implements the interface
var _ secondary.OutcomeRecorder = (*Recorder)(nil)
