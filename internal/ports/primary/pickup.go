package primary

import (
	"context"
	"time"
)

// PickupService defines the primary port for cash pickup transfers.
// A single instance owns at most one active request at a time.
type PickupService interface {
	// Submit validates a pickup request and, if accepted, submits the transfer
	// and starts settlement tracking. Returns ErrValidation, ErrSubmission or
	// ErrIllegalTransition; the state machine has already moved when it returns.
	Submit(ctx context.Context, req SubmitPickupRequest) (*PickupStatus, error)

	// Status returns a snapshot of the state machine.
	Status(ctx context.Context) *PickupStatus

	// Wait blocks until the active request leaves the processing state.
	Wait(ctx context.Context) (*PickupStatus, error)

	// ListCompleted returns completed pickups, most recent first.
	ListCompleted(ctx context.Context) ([]*CompletedPickup, error)

	// GetCompleted returns one completed pickup by id.
	GetCompleted(ctx context.Context, id string) (*CompletedPickup, error)

	// InvalidateSession reacts to a wallet/session change. Polling stops and an
	// unresolved transfer degrades to idle without a durable record.
	InvalidateSession(ctx context.Context)

	// Close tears down every timer and poll session owned by the service.
	Close() error
}

// SubmitPickupRequest contains parameters for a cash pickup submission.
type SubmitPickupRequest struct {
	AgentID string `validate:"required"`
	Amount  string `validate:"required"`
}

// PickupStatus is a snapshot of the transfer state machine.
type PickupStatus struct {
	State   string
	Request *ActivePickup    // nil when idle
	Outcome string           // settlement outcome once resolved
	Error   string           // reason for the error state
	Record  *CompletedPickup // set in the success state
}

// ActivePickup is the in-flight request owned by the orchestrator.
type ActivePickup struct {
	RequestID    string
	Amount       float64
	Agent        *Agent
	TransferRef  string
	SettlementID string
	SubmittedAt  time.Time
}

// CompletedPickup is a durable record of a settled pickup.
type CompletedPickup struct {
	ID           string
	Agent        *Agent
	Amount       float64
	TransferRef  string
	CreatedAt    time.Time
	ProofPayload string
}

// Pickup state constants
const (
	PickupStateIdle       = "idle"
	PickupStateProcessing = "processing"
	PickupStateSuccess    = "success"
	PickupStateError      = "error"
)
