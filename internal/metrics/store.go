// Package metrics keeps a lightweight log of day mutations in SQLite.
// Recording is best effort: callers log a failed Record and move on.
package metrics

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// MutationMetric records metadata for a single repository mutation.
type MutationMetric struct {
	Operation string
	Date      string
	Duration  time.Duration
	Timestamp time.Time
}

// Store handles persistence of metrics to SQLite.
type Store struct {
	db *sql.DB
}

// NewStore initializes the Store with an existing database connection.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Record saves a metric.
func (s *Store) Record(ctx context.Context, m MutationMetric) error {
	ts := m.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO mutation_log (operation, day_date, duration_ms, recorded_at) VALUES (?, ?, ?, ?)",
		m.Operation, m.Date, m.Duration.Milliseconds(), ts,
	)
	if err != nil {
		return fmt.Errorf("failed to record mutation metric: %w", err)
	}
	return nil
}

// Recent returns the most recent metrics, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]MutationMetric, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT operation, day_date, duration_ms, recorded_at FROM mutation_log ORDER BY recorded_at DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query mutation metrics: %w", err)
	}
	defer rows.Close()

	var metrics []MutationMetric
	for rows.Next() {
		var m MutationMetric
		var durationMS int64
		if err := rows.Scan(&m.Operation, &m.Date, &durationMS, &m.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan mutation metric: %w", err)
		}
		m.Duration = time.Duration(durationMS) * time.Millisecond
		metrics = append(metrics, m)
	}
	return metrics, rows.Err()
}
