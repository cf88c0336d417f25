package lockout

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// PostgresStore persists failure records in PostgreSQL, for deployments that
// already run the audit database and want lockout state to survive restarts
// without Redis. Expiry is carried as a column and enforced on read.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Schema is the table this store expects. It is applied by the deployment's
// migration tooling, not by the store.
const Schema = `
CREATE TABLE IF NOT EXISTS login_lockouts (
	identifier      TEXT PRIMARY KEY,
	failure_count   INTEGER NOT NULL,
	first_failed_at TIMESTAMPTZ NOT NULL,
	last_failed_at  TIMESTAMPTZ NOT NULL,
	locked_until    TIMESTAMPTZ,
	expires_at      TIMESTAMPTZ NOT NULL
)`

func (s *PostgresStore) Get(ctx context.Context, key string) (*Record, error) {
	query := `
		SELECT identifier, failure_count, first_failed_at, last_failed_at, locked_until
		FROM login_lockouts
		WHERE identifier = $1 AND expires_at > NOW()
	`
	var record Record
	var lockedUntil sql.NullTime
	err := s.db.QueryRowContext(ctx, query, key).Scan(
		&record.Identifier,
		&record.FailureCount,
		&record.FirstFailedAt,
		&record.LastFailedAt,
		&lockedUntil,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get lockout record: %w", err)
	}
	if lockedUntil.Valid {
		record.LockedUntil = &lockedUntil.Time
	}
	return &record, nil
}

func (s *PostgresStore) Put(ctx context.Context, record *Record, ttl time.Duration) error {
	query := `
		INSERT INTO login_lockouts (identifier, failure_count, first_failed_at, last_failed_at, locked_until, expires_at)
		VALUES ($1, $2, $3, $4, $5, NOW() + make_interval(secs => $6))
		ON CONFLICT (identifier) DO UPDATE SET
			failure_count = EXCLUDED.failure_count,
			first_failed_at = EXCLUDED.first_failed_at,
			last_failed_at = EXCLUDED.last_failed_at,
			locked_until = EXCLUDED.locked_until,
			expires_at = EXCLUDED.expires_at
	`
	var lockedUntil sql.NullTime
	if record.LockedUntil != nil {
		lockedUntil = sql.NullTime{Time: *record.LockedUntil, Valid: true}
	}
	_, err := s.db.ExecContext(ctx, query,
		record.Identifier,
		record.FailureCount,
		record.FirstFailedAt,
		record.LastFailedAt,
		lockedUntil,
		ttl.Seconds(),
	)
	if err != nil {
		return fmt.Errorf("store lockout record: %w", err)
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM login_lockouts WHERE identifier = $1`, key); err != nil {
		return fmt.Errorf("delete lockout record: %w", err)
	}
	return nil
}
