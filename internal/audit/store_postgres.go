package audit

import (
	"context"
	"database/sql"
	"fmt"
)

// PostgresStore persists audit events in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Schema is the table this store expects. Applied by the deployment's
// migration tooling.
const Schema = `
CREATE TABLE IF NOT EXISTS audit_events (
	id         UUID PRIMARY KEY,
	timestamp  TIMESTAMPTZ NOT NULL,
	action     TEXT NOT NULL,
	user_id    TEXT,
	username   TEXT,
	session_id TEXT,
	subject    TEXT,
	ip_address TEXT,
	device     TEXT,
	reason     TEXT,
	request_id TEXT
);
CREATE INDEX IF NOT EXISTS audit_events_timestamp_idx ON audit_events (timestamp DESC)`

func (s *PostgresStore) Append(ctx context.Context, event Event) error {
	query := `
		INSERT INTO audit_events (id, timestamp, action, user_id, username, session_id, subject, ip_address, device, reason, request_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO NOTHING
	`
	_, err := s.db.ExecContext(ctx, query,
		event.ID,
		event.Timestamp,
		string(event.Action),
		nullable(event.UserID),
		nullable(event.Username),
		nullable(event.SessionID),
		nullable(event.Subject),
		nullable(event.IPAddress),
		nullable(event.Device),
		nullable(event.Reason),
		nullable(event.RequestID),
	)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListRecent(ctx context.Context, limit int) ([]Event, error) {
	if limit <= 0 {
		limit = 100
	}
	query := `
		SELECT id, timestamp, action, user_id, username, session_id, subject, ip_address, device, reason, request_id
		FROM audit_events
		ORDER BY timestamp DESC
		LIMIT $1
	`
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var event Event
		var action string
		var userID, username, sessionID, subject, ip, device, reason, requestID sql.NullString
		if err := rows.Scan(&event.ID, &event.Timestamp, &action, &userID, &username, &sessionID, &subject, &ip, &device, &reason, &requestID); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		event.Action = Action(action)
		event.UserID = userID.String
		event.Username = username.String
		event.SessionID = sessionID.String
		event.Subject = subject.String
		event.IPAddress = ip.String
		event.Device = device.String
		event.Reason = reason.String
		event.RequestID = requestID.String
		events = append(events, event)
	}
	return events, rows.Err()
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
