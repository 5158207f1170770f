// Package effects defines effect types as data structures representing I/O operations.
// This is the foundation of the Functional Core / Imperative Shell pattern.
// Effects are pure data - they describe what should happen, not how.
package effects

// Effect is the base interface for all effects.
// Effects represent I/O operations as data that can be interpreted by the shell.
type Effect interface {
	// EffectType returns a string identifier for the effect type.
	EffectType() string
}

// PersistEffect represents a durable store operation.
type PersistEffect struct {
	Entity    string // e.g., "pickup_record"
	Operation string // e.g., "append"
}

func (e PersistEffect) EffectType() string { return "persist" }

// ScheduleEffect asks the shell to arm a one-shot timer that feeds an event
// back into the state machine when it elapses.
type ScheduleEffect struct {
	Timer string // e.g., "reset", "clear"
	Event string // event delivered when the timer elapses
}

func (e ScheduleEffect) EffectType() string { return "schedule" }

// PollEffect represents a settlement polling operation.
type PollEffect struct {
	Operation string // "start" or "cancel"
}

func (e PollEffect) EffectType() string { return "poll" }

// EmitEffect represents a fire-and-forget domain event.
type EmitEffect struct {
	Event string
}

func (e EmitEffect) EffectType() string { return "emit" }

// ClearEffect drops the active request fields held by the shell.
type ClearEffect struct{}

func (e ClearEffect) EffectType() string { return "clear" }
