package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/respicare/triage-engine/internal/domain"
)

// PostgresStore implements domain.HistoryStore on PostgreSQL. The
// schema is expected to exist already (created via migrations).
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore wraps an existing connection.
func NewPostgresStore(db *sql.DB) (*PostgresStore, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

// NewPostgresStoreFromURL opens a pooled connection from a URL.
func NewPostgresStoreFromURL(databaseURL string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	store, err := NewPostgresStore(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// Save inserts one triage record.
func (s *PostgresStore) Save(ctx context.Context, rec *domain.TriageRecord) error {
	symptoms, err := json.Marshal(rec.Symptoms)
	if err != nil {
		return fmt.Errorf("failed to encode symptoms: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO triage_history (
			id, request_id, input_hash, symptoms,
			condition_name, confidence, urgency, severity,
			is_emergency, validation_status, model_used, duration_ms, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`,
		rec.ID, rec.RequestID, rec.InputHash, string(symptoms),
		rec.ConditionName, rec.Confidence, string(rec.Urgency), string(rec.Severity),
		rec.IsEmergency, rec.Validation, rec.ModelUsed, rec.DurationMS, rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save triage record: %w", err)
	}
	return nil
}

// Recent returns the newest records, most recent first.
func (s *PostgresStore) Recent(ctx context.Context, limit int) ([]*domain.TriageRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, request_id, input_hash, symptoms,
			condition_name, confidence, urgency, severity,
			is_emergency, validation_status, model_used, duration_ms, created_at
		FROM triage_history
		ORDER BY created_at DESC, id
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query triage history: %w", err)
	}
	defer rows.Close()

	var records []*domain.TriageRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan triage record: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// CountByCondition returns how many records each condition has.
func (s *PostgresStore) CountByCondition(ctx context.Context) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT condition_name, COUNT(*)
		FROM triage_history
		GROUP BY condition_name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query condition counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var name string
		var n int
		if err := rows.Scan(&name, &n); err != nil {
			return nil, fmt.Errorf("failed to scan condition count: %w", err)
		}
		counts[name] = n
	}
	return counts, rows.Err()
}

// Ping verifies the database is reachable.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the underlying database.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}
