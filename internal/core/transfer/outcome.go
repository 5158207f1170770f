package transfer

// Outcome is the single terminal report of a settlement poll session.
type Outcome string

const (
	// OutcomeConfirmed means the ledger reported success.
	OutcomeConfirmed Outcome = "confirmed"
	// OutcomeFailed means the ledger reported failure.
	OutcomeFailed Outcome = "failed"
	// OutcomeTimedOutSuccess means the deadline elapsed without a terminal
	// status and the optimistic policy resolved it as success.
	OutcomeTimedOutSuccess Outcome = "timed_out_success"
	// OutcomeTimedOutFailure means the deadline elapsed and the optimistic
	// policy is disabled.
	OutcomeTimedOutFailure Outcome = "timed_out_failure"
)

// Succeeded reports whether the outcome leads to the success state.
func (o Outcome) Succeeded() bool {
	return o == OutcomeConfirmed || o == OutcomeTimedOutSuccess
}

// Presumed reports whether the outcome was inferred from a timeout rather
// than observed on the ledger.
func (o Outcome) Presumed() bool {
	return o == OutcomeTimedOutSuccess || o == OutcomeTimedOutFailure
}

// TimeoutOutcome returns the outcome reported when the deadline elapses.
func TimeoutOutcome(optimistic bool) Outcome {
	if optimistic {
		return OutcomeTimedOutSuccess
	}
	return OutcomeTimedOutFailure
}

// EventForOutcome maps a poll outcome to the state machine event it triggers.
func EventForOutcome(o Outcome) Event {
	if o.Succeeded() {
		return EventSettled
	}
	return EventSettlementFailed
}
