package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/example/pickup/internal/ports/secondary"
)

// EventRepository persists domain events with SQLite.
// It implements secondary.EventPublisher.
type EventRepository struct {
	db *sql.DB
}

// NewEventRepository creates a new SQLite event repository.
func NewEventRepository(db *sql.DB) *EventRepository {
	return &EventRepository{db: db}
}

// Publish stores an event. Republishing the same event ID is ignored.
func (r *EventRepository) Publish(ctx context.Context, event secondary.DomainEvent) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT OR IGNORE INTO domain_events (id, name, amount, occurred_at) VALUES (?, ?, ?, ?)",
		event.ID, event.Name, event.Amount, event.OccurredAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to store event: %w", err)
	}

	return nil
}

// List returns stored events newest first. A limit of zero returns all.
func (r *EventRepository) List(ctx context.Context, name string, limit int) ([]secondary.DomainEvent, error) {
	query := "SELECT id, name, amount, occurred_at FROM domain_events WHERE 1=1"
	args := []any{}

	if name != "" {
		query += " AND name = ?"
		args = append(args, name)
	}

	query += " ORDER BY occurred_at DESC, id"

	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	var events []secondary.DomainEvent
	for rows.Next() {
		var e secondary.DomainEvent
		if err := rows.Scan(&e.ID, &e.Name, &e.Amount, &e.OccurredAt); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, e)
	}

	return events, rows.Err()
}

// Ensure EventRepository implements the interface
var _ secondary.EventPublisher = (*EventRepository)(nil)
