package secondary

import (
	"context"
	"time"
)

// EventPublisher defines the secondary port for domain event notifications.
// Delivery is best-effort; callers ignore returned errors.
type EventPublisher interface {
	Publish(ctx context.Context, event DomainEvent) error
}

// DomainEvent is a notification for external listeners.
type DomainEvent struct {
	ID         string
	Name       string // e.g., "offramp:success"
	Amount     float64
	OccurredAt time.Time
}

// OutcomeRecorder defines the secondary port for settlement metrics.
type OutcomeRecorder interface {
	// RecordSubmission counts a submit attempt by result
	// ("accepted", "rejected", "ledger_error", "illegal").
	RecordSubmission(result string)

	// RecordPollQuery counts a status query by result
	// ("pending", "success", "failed", "error").
	RecordPollQuery(result string)

	// RecordOutcome counts a resolved settlement by outcome.
	RecordOutcome(outcome string)
}
