// Package events contains EventPublisher implementations.
package events

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/example/pickup/internal/ports/secondary"
)

// LoggingPublisher writes every event to a structured log.
type LoggingPublisher struct {
	log logrus.FieldLogger
}

// NewLoggingPublisher creates a new LoggingPublisher.
func NewLoggingPublisher(log logrus.FieldLogger) *LoggingPublisher {
	return &LoggingPublisher{log: log}
}

// Publish logs the event at info.
func (p *LoggingPublisher) Publish(ctx context.Context, event secondary.DomainEvent) error {
	p.log.WithFields(logrus.Fields{
		"event_id":    event.ID,
		"event":       event.Name,
		"amount":      event.Amount,
		"occurred_at": event.OccurredAt,
	}).Info("domain event")
	return nil
}

// FanoutPublisher delivers each event to every sink.
// A failing sink does not stop delivery to the others.
type FanoutPublisher struct {
	sinks []secondary.EventPublisher
}

// NewFanoutPublisher creates a publisher over sinks. Nil sinks are skipped.
func NewFanoutPublisher(sinks ...secondary.EventPublisher) *FanoutPublisher {
	p := &FanoutPublisher{}
	for _, s := range sinks {
		if s != nil {
			p.sinks = append(p.sinks, s)
		}
	}
	return p
}

// Publish delivers event to all sinks and joins their errors.
func (p *FanoutPublisher) Publish(ctx context.Context, event secondary.DomainEvent) error {
	var errs []error
	for _, s := range p.sinks {
		if err := s.Publish(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Ensure publishers implement the interface
var (
	_ secondary.EventPublisher = (*LoggingPublisher)(nil)
	_ secondary.EventPublisher = (*FanoutPublisher)(nil)
)
