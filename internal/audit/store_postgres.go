package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// PostgresStore persists events in the audit_events table.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Append(ctx context.Context, event Event) error {
	attrs, err := json.Marshal(event.Attributes)
	if err != nil {
		return fmt.Errorf("marshal audit attributes: %w", err)
	}
	if event.Attributes == nil {
		attrs = []byte("{}")
	}

	query := `
		INSERT INTO audit_events (
			id, timestamp, owner, action, entity_type, entity_id, request_id, attributes
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err = s.db.ExecContext(ctx, query,
		uuid.New(),
		event.Timestamp,
		event.Owner,
		string(event.Action),
		event.EntityType,
		event.EntityID,
		event.RequestID,
		attrs,
	)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

// ListByOwner returns the owner's events in insertion order.
func (s *PostgresStore) ListByOwner(ctx context.Context, owner string) ([]Event, error) {
	query := `
		SELECT timestamp, owner, action, entity_type, entity_id, request_id, attributes
		FROM audit_events
		WHERE owner = $1
		ORDER BY seq ASC
	`
	rows, err := s.db.QueryContext(ctx, query, owner)
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var (
			e      Event
			action string
			attrs  []byte
		)
		if err := rows.Scan(&e.Timestamp, &e.Owner, &action, &e.EntityType, &e.EntityID, &e.RequestID, &attrs); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		e.Action = Action(action)
		if len(attrs) > 0 {
			if err := json.Unmarshal(attrs, &e.Attributes); err != nil {
				return nil, fmt.Errorf("unmarshal audit attributes: %w", err)
			}
			if len(e.Attributes) == 0 {
				e.Attributes = nil
			}
		}
		e.Timestamp = e.Timestamp.UTC()
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit events: %w", err)
	}
	return events, nil
}
