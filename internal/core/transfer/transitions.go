// Package transfer contains the pure business logic for cash pickup transfers.
// This is part of the Functional Core - no I/O, only pure functions.
package transfer

import (
	"errors"
	"fmt"

	"github.com/example/pickup/internal/core/effects"
)

// State represents the lifecycle state of the active transfer request.
type State string

const (
	StateIdle       State = "idle"
	StateProcessing State = "processing"
	StateSuccess    State = "success"
	StateError      State = "error"
)

// Event is a trigger fed into the state machine.
type Event string

const (
	EventSubmitRejected   Event = "submit_rejected"   // guard failed on submit
	EventSubmitAccepted   Event = "submit_accepted"   // guard passed on submit
	EventSubmitFailed     Event = "submit_failed"     // ledger rejected the transfer
	EventSettled          Event = "settled"           // poller reported success
	EventSettlementFailed Event = "settlement_failed" // poller reported failure
	EventDisplayElapsed   Event = "display_elapsed"   // success/error display window over
	EventAbandoned        Event = "abandoned"         // wallet/session invalidated mid-flight
)

// Timer names used in ScheduleEffect.
const (
	TimerReset = "reset"
	TimerClear = "clear"
)

// ErrIllegalTransition is returned when an event is not valid from the current state.
var ErrIllegalTransition = errors.New("illegal transition")

// TransitionResult captures the next state and the side effects the shell
// must perform to complete the transition.
type TransitionResult struct {
	From    State
	To      State
	Event   Event
	Effects []effects.Effect
}

type transitionKey struct {
	from  State
	event Event
}

type transitionRule struct {
	to      State
	effects func() []effects.Effect
}

var rules = map[transitionKey]transitionRule{
	{StateIdle, EventSubmitRejected}: {
		to:      StateError,
		effects: scheduleReset,
	},
	{StateIdle, EventSubmitAccepted}: {
		to:      StateProcessing,
		effects: none,
	},
	{StateProcessing, EventSubmitFailed}: {
		to:      StateError,
		effects: scheduleReset,
	},
	{StateProcessing, EventSettled}: {
		to: StateSuccess,
		effects: func() []effects.Effect {
			return []effects.Effect{
				effects.PollEffect{Operation: "cancel"},
				effects.PersistEffect{Entity: "pickup_record", Operation: "append"},
				effects.EmitEffect{Event: "offramp:success"},
				effects.ScheduleEffect{Timer: TimerClear, Event: string(EventDisplayElapsed)},
			}
		},
	},
	{StateProcessing, EventSettlementFailed}: {
		to: StateError,
		effects: func() []effects.Effect {
			return []effects.Effect{
				effects.PollEffect{Operation: "cancel"},
				effects.ScheduleEffect{Timer: TimerReset, Event: string(EventDisplayElapsed)},
			}
		},
	},
	{StateProcessing, EventAbandoned}: {
		to: StateIdle,
		effects: func() []effects.Effect {
			return []effects.Effect{
				effects.PollEffect{Operation: "cancel"},
				effects.ClearEffect{},
			}
		},
	},
	{StateSuccess, EventDisplayElapsed}: {
		to:      StateIdle,
		effects: clearActive,
	},
	{StateError, EventDisplayElapsed}: {
		to:      StateIdle,
		effects: clearActive,
	},
}

func none() []effects.Effect { return nil }

func clearActive() []effects.Effect { return []effects.Effect{effects.ClearEffect{}} }

func scheduleReset() []effects.Effect {
	return []effects.Effect{effects.ScheduleEffect{Timer: TimerReset, Event: string(EventDisplayElapsed)}}
}

// Apply evaluates an event against the current state.
// Returns ErrIllegalTransition (wrapped) when the table has no rule for the pair.
func Apply(from State, event Event) (TransitionResult, error) {
	rule, ok := rules[transitionKey{from, event}]
	if !ok {
		return TransitionResult{From: from, To: from, Event: event},
			fmt.Errorf("%w: %s from %s", ErrIllegalTransition, event, from)
	}
	return TransitionResult{
		From:    from,
		To:      rule.to,
		Event:   event,
		Effects: rule.effects(),
	}, nil
}

// InitialState returns the state of a freshly constructed orchestrator.
func InitialState() State {
	return StateIdle
}
